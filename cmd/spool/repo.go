package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var repoCmd = &cobra.Command{
	Use:   "repo",
	Short: "Manage mod repositories",
	Long: `Manage the mod repositories aggregated into the catalog.

Examples:
  spool repo list
  spool repo add https://example.com/repository.json
  spool repo remove https://example.com/repository.json
  spool repo refresh`,
}

var repoListCmd = &cobra.Command{
	Use:   "list",
	Short: "List available repositories",
	RunE:  runRepoList,
}

var repoAddCmd = &cobra.Command{
	Use:   "add <url>",
	Short: "Add a repository by URL",
	Args:  cobra.ExactArgs(1),
	RunE:  runRepoAdd,
}

var repoRemoveCmd = &cobra.Command{
	Use:   "remove <url>",
	Short: "Remove a repository",
	Args:  cobra.ExactArgs(1),
	RunE:  runRepoRemove,
}

var repoRefreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Re-fetch all user repositories",
	RunE:  runRepoRefresh,
}

var repoValidateCmd = &cobra.Command{
	Use:   "validate <url>",
	Short: "Fetch and validate a repository without adding it",
	Args:  cobra.ExactArgs(1),
	RunE:  runRepoValidate,
}

func init() {
	repoCmd.AddCommand(repoListCmd, repoAddCmd, repoRemoveCmd, repoRefreshCmd, repoValidateCmd)
	rootCmd.AddCommand(repoCmd)
}

func runRepoList(cmd *cobra.Command, args []string) error {
	a, err := initApp()
	if err != nil {
		return fmt.Errorf("initializing: %w", err)
	}
	defer a.Close()

	repos := a.catalog.GetAllRepositories(context.Background())

	if jsonOutput {
		return json.NewEncoder(os.Stdout).Encode(repos)
	}

	if len(repos) == 0 {
		fmt.Println("No repositories available.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tMODS\tVERSION\tLAST UPDATED\t")
	fmt.Fprintln(w, "--\t----\t----\t-------\t------------\t")

	for _, r := range repos {
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%s\n",
			r.ID,
			truncate(r.Name, 40),
			r.ModCount,
			r.Version,
			r.LastUpdated,
		)
	}
	w.Flush()

	return nil
}

func runRepoAdd(cmd *cobra.Command, args []string) error {
	url := args[0]

	a, err := initApp()
	if err != nil {
		return fmt.Errorf("initializing: %w", err)
	}
	defer a.Close()

	if !a.catalog.AddRepository(context.Background(), url) {
		return fmt.Errorf("could not add repository: %s", url)
	}

	fmt.Printf("✓ Added repository %s\n", url)
	return nil
}

func runRepoRemove(cmd *cobra.Command, args []string) error {
	url := args[0]

	a, err := initApp()
	if err != nil {
		return fmt.Errorf("initializing: %w", err)
	}
	defer a.Close()

	if !a.catalog.RemoveRepository(context.Background(), url) {
		return fmt.Errorf("could not remove repository: %s", url)
	}

	fmt.Printf("✓ Removed repository %s\n", url)
	return nil
}

func runRepoRefresh(cmd *cobra.Command, args []string) error {
	a, err := initApp()
	if err != nil {
		return fmt.Errorf("initializing: %w", err)
	}
	defer a.Close()

	if err := a.cache.RefreshAll(context.Background()); err != nil {
		return fmt.Errorf("refreshing repositories: %w", err)
	}

	fmt.Println("✓ Repositories refreshed")
	return nil
}

func runRepoValidate(cmd *cobra.Command, args []string) error {
	url := args[0]

	a, err := initApp()
	if err != nil {
		return fmt.Errorf("initializing: %w", err)
	}
	defer a.Close()

	result := a.catalog.FetchRepository(context.Background(), url)
	if !result.Success {
		return fmt.Errorf("invalid repository: %s", result.Error)
	}

	fmt.Printf("✓ %s (%d mods, version %d)\n", result.Data.Name, len(result.Data.Mods), result.Data.Version)
	return nil
}
