package main

import (
	"fmt"

	"spool/internal/tui"

	"github.com/spf13/cobra"
)

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Browse mods interactively",
	Long:  `Open the interactive catalog browser.`,
	RunE:  runBrowse,
}

func init() {
	rootCmd.AddCommand(browseCmd)
}

func runBrowse(cmd *cobra.Command, args []string) error {
	a, err := initApp()
	if err != nil {
		return fmt.Errorf("initializing: %w", err)
	}
	defer a.Close()

	path, err := a.gamePathOrConfig()
	if err != nil {
		return err
	}

	return tui.Run(tui.Deps{
		Catalog:   a.catalog,
		Store:     a.store,
		Installer: a.installer,
		Hub:       a.hub,
		GamePath:  path,
	})
}
