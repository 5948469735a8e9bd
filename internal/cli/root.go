// Package cli implements the casepipe CLI commands.
package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/openjurist/casepipe/internal/config"
	"github.com/openjurist/casepipe/internal/enrich"
	"github.com/openjurist/casepipe/internal/index"
	"github.com/openjurist/casepipe/internal/pipeline"
	"github.com/openjurist/casepipe/internal/registry"
	"github.com/openjurist/casepipe/internal/source"
	"github.com/openjurist/casepipe/internal/store"
)

var (
	configPath      string
	dbPathFlag      string
	indexURLFlag    string
	concurrencyFlag string
	orderFlag       string

	// strictCLI is set by commands whose --strict flag was explicitly
	// passed; an untouched flag must not shadow config or env values.
	strictCLI string
)

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:   "casepipe",
	Short: "Legal document enhancement pipeline",
	Long: "casepipe enriches legal case documents (opinions, dockets, orders) with\n" +
		"court resolution, citation extraction, reporter normalization, and judge\n" +
		"attribution, then persists the results idempotently in SQLite.",
}

func init() {
	RootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default: ~/.casepipe/config.yaml)")
	RootCmd.PersistentFlags().StringVarP(&dbPathFlag, "db", "d", "", "Database path (default: $CASEPIPE_DB or ~/.casepipe/casepipe.db)")
	RootCmd.PersistentFlags().StringVar(&indexURLFlag, "index-url", "", "Index service bulk endpoint (empty disables the hand-off)")
	RootCmd.PersistentFlags().StringVar(&concurrencyFlag, "concurrency", "", "Worker pool size")
	RootCmd.PersistentFlags().StringVar(&orderFlag, "order", "", "Fetch order: oldest-enrichment-first or newest-first")
}

// resolveConfig merges the config file, environment, and CLI flags.
func resolveConfig() (config.ResolvedConfig, error) {
	return config.Resolve(config.ResolveOptions{
		ConfigPath:     configPath,
		CLIDBPath:      dbPathFlag,
		CLIIndexURL:    indexURLFlag,
		CLIConcurrency: concurrencyFlag,
		CLIStrict:      strictCLI,
		CLIOrder:       orderFlag,
	})
}

func openStore(cfg config.ResolvedConfig) (*store.Store, error) {
	return store.Open(store.Config{DBPath: cfg.DBPath.Value})
}

// buildOrchestrator wires the full pipeline: store-backed source, registries,
// enricher, and (when configured) the HTTP indexer.
func buildOrchestrator(cfg config.ResolvedConfig, st *store.Store) (*pipeline.Orchestrator, error) {
	reg, err := registry.Load()
	if err != nil {
		return nil, fmt.Errorf("loading registries: %w", err)
	}

	var idx index.Indexer
	if url := cfg.IndexURL.Value; url != "" {
		idx = index.NewHTTPIndexer(url, cfg.IndexRPSValue(0))
	}

	return pipeline.New(source.NewStoreSource(st), st, enrich.New(reg), idx), nil
}

func exitErr(msg string, err error) {
	fmt.Fprintf(os.Stderr, "error: %s: %v\n", msg, err)
	os.Exit(1)
}

// printJSON writes the report struct as indented JSON to stdout.
func printJSON(v any) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		exitErr("encoding report", err)
	}
	fmt.Println(string(b))
}
