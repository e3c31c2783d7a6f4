package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List installed mods",
	RunE:  runList,
}

func init() {
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	a, err := initApp()
	if err != nil {
		return fmt.Errorf("initializing: %w", err)
	}
	defer a.Close()

	mods := a.store.GetInstalledMods()

	if jsonOutput {
		return json.NewEncoder(os.Stdout).Encode(mods)
	}

	if len(mods) == 0 {
		fmt.Println("No mods installed.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tVERSION\tINSTALLED\tFILES\t")
	fmt.Fprintln(w, "--\t-----\t-------\t---------\t-----\t")

	for _, mod := range mods {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\n",
			mod.ModID,
			truncate(mod.ModTitle, 40),
			mod.Version,
			mod.InstalledAt,
			len(mod.InstalledFiles),
		)
	}
	w.Flush()

	return nil
}
