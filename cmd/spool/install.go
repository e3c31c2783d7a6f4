package main

import (
	"context"
	"fmt"

	"spool/internal/domain"

	"github.com/spf13/cobra"
)

var installDownload string

var installCmd = &cobra.Command{
	Use:   "install <mod-id>",
	Short: "Install a mod",
	Long: `Install a mod from the aggregated catalog into the game directory.

Uses the mod's first download unless --download selects one by label.

Examples:
  spool install lantern-of-lumafly
  spool install lantern-of-lumafly --download "Download v2.0.2"`,
	Args: cobra.ExactArgs(1),
	RunE: runInstall,
}

func init() {
	installCmd.Flags().StringVar(&installDownload, "download", "", "download label to install (default: first)")

	rootCmd.AddCommand(installCmd)
}

func runInstall(cmd *cobra.Command, args []string) error {
	modID := args[0]

	a, err := initApp()
	if err != nil {
		return fmt.Errorf("initializing: %w", err)
	}
	defer a.Close()

	path, err := a.gamePathOrConfig()
	if err != nil {
		return err
	}

	ctx := context.Background()

	mod, ok := a.catalog.ModByID(ctx, modID)
	if !ok {
		return fmt.Errorf("mod not found: %s", modID)
	}

	download, err := pickDownload(mod, installDownload)
	if err != nil {
		return err
	}

	fmt.Printf("Installing: %s (%s)\n", mod.Title, download.Label)

	result := a.installer.Install(ctx, mod, download, path)
	if !result.Success {
		return fmt.Errorf("installation failed: %s", result.Message)
	}

	fmt.Printf("✓ %s\n", result.Message)
	return nil
}

// pickDownload selects a download by label, or the first when label is empty.
func pickDownload(mod domain.Mod, label string) (domain.Download, error) {
	if len(mod.Downloads) == 0 {
		return domain.Download{}, fmt.Errorf("%s has no downloads", mod.Title)
	}
	if label == "" {
		return mod.Downloads[0], nil
	}
	for _, d := range mod.Downloads {
		if d.Label == label {
			return d, nil
		}
	}
	return domain.Download{}, fmt.Errorf("no download labeled %q for %s", label, mod.Title)
}
