package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pazarbot/pazarbot/internal/config"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show pazarbot status",
	RunE:  runStatus,
}

func runStatus(_ *cobra.Command, _ []string) error {
	cfgPath := config.ConfigPath()

	fmt.Printf("%s pazarbot Status\n\n", logo)

	_, statErr := os.Stat(cfgPath)
	cfgMark := "✗"
	if statErr == nil {
		cfgMark = "✓"
	}
	fmt.Printf("Config:    %s %s\n", cfgPath, cfgMark)

	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Printf("  (could not load config: %v)\n", err)
		return nil
	}

	keyMark := "(not set)"
	if cfg.Provider.APIKey != "" {
		keyMark = "✓"
	}
	fmt.Printf("Provider:  %s (%s) %s\n", cfg.Provider.Name, cfg.Provider.Model, keyMark)
	fmt.Printf("Search:    %s (collection %s)\n", cfg.Search.BaseURL, cfg.Search.Collection)

	if cfg.Catalog.Enabled {
		dsnMark := "✗"
		if _, err := os.Stat(cfg.Catalog.DSN); err == nil {
			dsnMark = "✓"
		}
		fmt.Printf("Catalog:   %s %s %s\n", cfg.Catalog.Driver, cfg.Catalog.DSN, dsnMark)
	} else {
		fmt.Println("Catalog:   disabled")
	}

	fmt.Printf("Memory:    window %d, compact at %d, hard cap %d\n",
		cfg.Memory.WindowSize, cfg.Memory.CompactThreshold, cfg.Memory.HardCap)
	return nil
}
