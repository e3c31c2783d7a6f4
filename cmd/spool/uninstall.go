package main

import (
	"context"
	"fmt"

	"spool/internal/domain"

	"github.com/spf13/cobra"
)

var uninstallCmd = &cobra.Command{
	Use:   "uninstall <mod-id>",
	Short: "Uninstall a mod",
	Args:  cobra.ExactArgs(1),
	RunE:  runUninstall,
}

func init() {
	rootCmd.AddCommand(uninstallCmd)
}

func runUninstall(cmd *cobra.Command, args []string) error {
	modID := args[0]

	a, err := initApp()
	if err != nil {
		return fmt.Errorf("initializing: %w", err)
	}
	defer a.Close()

	installed, ok := a.store.GetInstalledMod(modID)
	if !ok {
		return fmt.Errorf("mod not installed: %s", modID)
	}

	path := installed.GamePath
	if path == "" {
		path, err = a.gamePathOrConfig()
		if err != nil {
			return err
		}
	}

	fmt.Printf("Uninstalling: %s v%s\n", installed.ModTitle, installed.Version)

	result := a.installer.Uninstall(context.Background(), domain.Mod{ID: installed.ModID, Title: installed.ModTitle}, path)
	if !result.Success {
		return fmt.Errorf("uninstallation failed: %s", result.Message)
	}

	fmt.Printf("✓ %s\n", result.Message)
	return nil
}
