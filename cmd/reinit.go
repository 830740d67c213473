/*
Copyright © 2025 tieubaoca
*/
package cmd

import (
	"context"
	"fmt"
	"log"

	"github.com/spf13/cobra"
	"github.com/tieubaoca/invoice-agent-be/config"
)

// reinitCmd drops and recreates the vector store schema. Run it when the
// chunk class definition changes or the store needs a clean slate.
var reinitCmd = &cobra.Command{
	Use:   "reinit",
	Short: "Reset the vector store",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.LoadConfig(cfgFile)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}

		store, err := buildVectorStore(cfg)
		if err != nil {
			log.Fatalf("Failed to connect to vector store: %v", err)
		}
		if err := store.Reset(context.Background()); err != nil {
			log.Fatalf("Failed to reset vector store: %v", err)
		}
		fmt.Println("Vector store reset")
	},
}

func init() {
	rootCmd.AddCommand(reinitCmd)
}
