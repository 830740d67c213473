/*
Copyright © 2025 tieubaoca
*/
package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/spf13/cobra"
	"github.com/tieubaoca/invoice-agent-be/types"
)

// processCmd runs the full pipeline over one file from the command line.
var processCmd = &cobra.Command{
	Use:   "process <file>",
	Short: "Process an invoice file and print the extracted data",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		a, err := buildApp(cfgFile)
		if err != nil {
			log.Fatalf("Failed to initialize: %v", err)
		}

		ctx := context.Background()
		pages, err := a.extractor.ExtractPages(ctx, args[0])
		if err != nil {
			log.Fatalf("Failed to extract text: %v", err)
		}

		resp, err := a.agent.ProcessPages(ctx, args[0], pages, func(status types.ProcessingStatus) {
			log.Println(status.Message)
		})
		if err != nil {
			log.Fatalf("Failed to process invoice: %v", err)
		}

		out, err := json.MarshalIndent(resp, "", "  ")
		if err != nil {
			log.Fatalf("Failed to marshal result: %v", err)
		}
		fmt.Println(string(out))
	},
}

func init() {
	rootCmd.AddCommand(processCmd)
}
