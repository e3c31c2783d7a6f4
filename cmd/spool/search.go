package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"spool/internal/search"

	"github.com/spf13/cobra"
)

var (
	searchSort     string
	searchOrder    string
	searchAuthors  []string
	searchRequires []string
	searchLimit    int
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search the mod catalog",
	Long: `Search the aggregated mod catalog. Without a query, lists all mods.

Examples:
  spool search lantern
  spool search --author Elderbug --sort name
  spool search --requires Satchel --requires "Silksong API"`,
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().StringVar(&searchSort, "sort", "date", "sort key: name, date, relevance")
	searchCmd.Flags().StringVar(&searchOrder, "order", "desc", "sort order: asc, desc")
	searchCmd.Flags().StringSliceVar(&searchAuthors, "author", nil, "filter by author (repeatable, any match)")
	searchCmd.Flags().StringSliceVar(&searchRequires, "requires", nil, "filter by requirement (repeatable, all must match)")
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "l", 0, "maximum number of results (0 = all)")

	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	query := strings.Join(args, " ")

	a, err := initApp()
	if err != nil {
		return fmt.Errorf("initializing: %w", err)
	}
	defer a.Close()

	ctx := context.Background()
	filters := search.FilterOptions{
		Requirements: searchRequires,
		Authors:      searchAuthors,
		SortBy:       search.SortBy(searchSort),
		SortOrder:    search.SortOrder(searchOrder),
	}

	mods := search.SearchMods(a.catalog.GetAllMods(ctx), query, filters)
	if searchLimit > 0 && len(mods) > searchLimit {
		mods = mods[:searchLimit]
	}

	if jsonOutput {
		return json.NewEncoder(os.Stdout).Encode(mods)
	}

	if len(mods) == 0 {
		fmt.Println("No mods found.")
		return nil
	}

	installedIDs := make(map[string]bool)
	for _, im := range a.store.GetInstalledMods() {
		installedIDs[im.ModID] = true
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tAUTHORS\tUPDATED\t")
	fmt.Fprintln(w, "--\t-----\t-------\t-------\t")

	for _, mod := range mods {
		installedMark := ""
		if installedIDs[mod.ID] {
			installedMark = "[installed]"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			mod.ID,
			truncate(mod.Title, 40),
			truncate(strings.Join(mod.Authors, ", "), 25),
			mod.UpdatedAt,
			installedMark,
		)
	}
	w.Flush()

	if verbose {
		fmt.Printf("\n%d results.\n", len(mods))
	}

	return nil
}
