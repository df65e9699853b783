package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/okempf/jobscout/internal/source"
)

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "List all configured job sources",
	Long:  "Reads the config and prints a table of all job sources and whether they can serve requests.",
	RunE:  runSources,
}

func init() {
	rootCmd.AddCommand(sourcesCmd)
}

func runSources(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("%-18s %-30s %s\n", "Source", "Description", "Status")
	fmt.Println(strings.Repeat("─", 64))

	usable := 0
	for _, info := range source.Describe(cfg.Sources) {
		status := "disabled"
		switch {
		case info.Usable:
			status = "usable"
			usable++
		case info.Enabled && info.RequiresKey && !info.HasKey:
			status = "missing API key"
		}
		fmt.Printf("%-18s %-30s %s\n", info.DisplayName, info.Description, status)
	}

	fmt.Printf("\nTotal: %d sources (%d usable)\n", len(source.Describe(cfg.Sources)), usable)
	return nil
}
