package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"spool/internal/backend/local"
	"spool/internal/installer"
	"spool/internal/notify"
	"spool/internal/repo"
	"spool/internal/storage/config"
	"spool/internal/storage/repocache"
	"spool/internal/store"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// ErrCancelled is returned when the user cancels an operation.
// When returned from a command, Execute exits with code 2.
var ErrCancelled = errors.New("cancelled")

var (
	version = "0.3.0"

	// Global flags
	configDir  string
	dataDir    string
	gamePath   string
	verbose    bool
	jsonOutput bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "spool",
	Short: "spool - Mod manager for Hollow Knight: Silksong",
	Long: `spool is a terminal mod manager for Hollow Knight: Silksong. It aggregates
mod repositories, searches and filters the combined catalog, and installs
mods into the game's BepInEx directory.

Use subcommands for operations. Run 'spool --help' for available commands.`,
	Version:       version,
	SilenceUsage:  true, // Runtime errors should not print usage
	SilenceErrors: true, // We handle error output in Execute()
}

func init() {
	// Persistent flags available to all commands
	rootCmd.PersistentFlags().StringVar(&configDir, "config", "", "config directory (default: ~/.config/spool)")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", "", "data directory (default: ~/.local/share/spool)")
	rootCmd.PersistentFlags().StringVar(&gamePath, "game-path", "", "game install path (default: from config)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output in JSON format (list, search, repo list)")
}

// Execute runs the root command. Exit codes: 0 = success, 1 = error, 2 = user cancelled.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		if errors.Is(err, ErrCancelled) {
			os.Exit(2)
		}
		if jsonOutput {
			fmt.Printf(`{"error":%q}`+"\n", err.Error())
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

// app bundles the wired services for a single command invocation.
type app struct {
	cfg       *config.Config
	hub       *notify.Hub
	store     *store.Store
	catalog   *repo.Aggregator
	installer *installer.Orchestrator
	cache     *repocache.Cache
	log       *zap.Logger
}

// initApp builds the service graph: config, repository cache, local install
// backend, notification hub, installed-mods store, aggregator, orchestrator.
func initApp() (*app, error) {
	cfgDir, dtDir, err := resolveDirs()
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(cfgDir, 0755); err != nil {
		return nil, fmt.Errorf("creating config dir: %w", err)
	}
	if err := os.MkdirAll(dtDir, 0755); err != nil {
		return nil, fmt.Errorf("creating data dir: %w", err)
	}

	cfg, err := config.Load(cfgDir)
	if err != nil {
		return nil, err
	}

	log := zap.NewNop()
	if verbose {
		log, err = zap.NewDevelopment()
		if err != nil {
			return nil, fmt.Errorf("creating logger: %w", err)
		}
	}

	cache, err := repocache.New(filepath.Join(dtDir, "repositories.db"), http.DefaultClient, log)
	if err != nil {
		return nil, fmt.Errorf("opening repository cache: %w", err)
	}

	hub := notify.NewHub()
	backend := local.New(dtDir, http.DefaultClient, log)

	mods := store.New(backend, hub, log)
	mods.LoadInstalledMods(context.Background())

	catalog := repo.NewAggregator(cache, repo.Options{
		OfficialURL: cfg.OfficialRepo,
		BuiltinPath: cfg.BuiltinRepo,
		Logger:      log,
	})

	orch := installer.New(backend, mods, hub, log)

	return &app{
		cfg:       cfg,
		hub:       hub,
		store:     mods,
		catalog:   catalog,
		installer: orch,
		cache:     cache,
		log:       log,
	}, nil
}

// Close releases the app's resources.
func (a *app) Close() error {
	return a.cache.Close()
}

// gamePathOrConfig resolves the game path from the flag or config, erroring
// when neither is set.
func (a *app) gamePathOrConfig() (string, error) {
	if gamePath != "" {
		return gamePath, nil
	}
	if a.cfg.GamePath != "" {
		return a.cfg.GamePath, nil
	}
	return "", errors.New("no game path configured; use --game-path or set game_path in config.yaml")
}

// resolveDirs returns the config and data directories, applying defaults.
func resolveDirs() (string, string, error) {
	cfgDir, dtDir := configDir, dataDir
	if cfgDir != "" && dtDir != "" {
		return cfgDir, dtDir, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", "", fmt.Errorf("home directory: %w", err)
	}
	if cfgDir == "" {
		cfgDir = filepath.Join(homeDir, ".config", "spool")
	}
	if dtDir == "" {
		dtDir = filepath.Join(homeDir, ".local", "share", "spool")
	}
	return cfgDir, dtDir, nil
}

// truncate shortens a string to maxLen runes, adding "..." if truncated
func truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}
