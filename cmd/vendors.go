/*
Copyright © 2025 tieubaoca
*/
package cmd

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"
	"github.com/tieubaoca/invoice-agent-be/config"
	"github.com/tieubaoca/invoice-agent-be/repository"
)

// vendorsCmd lists the vendor store without touching the rest of the stack.
var vendorsCmd = &cobra.Command{
	Use:   "vendors",
	Short: "List the vendors in the vendor store",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.LoadConfig(cfgFile)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}

		repo := repository.NewFileVendorRepo(cfg.VendorDBPath)
		vendors, err := repo.LoadAll()
		if err != nil {
			log.Fatalf("Failed to load vendor store: %v", err)
		}

		if len(vendors) == 0 {
			fmt.Println("No vendors stored yet")
			return
		}
		for _, vendor := range vendors {
			address := ""
			if vendor.Address != nil {
				address = *vendor.Address
			}
			fmt.Printf("%s\t%s\t%s\n", vendor.VendorID, vendor.Name, address)
		}
	},
}

func init() {
	rootCmd.AddCommand(vendorsCmd)
}
