/*
Copyright © 2025 tieubaoca
*/
package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "invoice-agent-be",
	Short: "Invoice extraction and correction backend",
	Long: `invoice-agent-be turns invoice documents into structured records.

It indexes each page into a vector store, extracts a structured record
through a generative oracle, and then refines that record with
retrieval-scoped natural language corrections. Resolved vendors are
deduplicated into a persistent vendor store.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "config/config.yaml", "config file")
}
