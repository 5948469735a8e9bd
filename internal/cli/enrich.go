package cli

import (
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/openjurist/casepipe/internal/pipeline"
	"github.com/openjurist/casepipe/internal/store"
)

var (
	enrichLimit  int
	enrichStrict bool
)

func init() {
	cmd := &cobra.Command{
		Use:   "enrich",
		Short: "Run the enhancement pipeline over pending documents",
		Long: "Fetch a batch of documents, run every enhancement stage (type\n" +
			"detection, validation, court resolution, citations, reporters, judge,\n" +
			"structure, keywords), persist the results, and print the run report.",
		Run: runEnrich,
	}
	cmd.Flags().IntVarP(&enrichLimit, "limit", "l", 100, "Maximum documents to process")
	cmd.Flags().BoolVar(&enrichStrict, "strict", false, "Exclude documents failing validation instead of warning")

	RootCmd.AddCommand(cmd)
}

func runEnrich(cmd *cobra.Command, args []string) {
	if cmd.Flags().Changed("strict") {
		strictCLI = strconv.FormatBool(enrichStrict)
	}
	cfg, err := resolveConfig()
	if err != nil {
		exitErr("resolve config", err)
	}
	st, err := openStore(cfg)
	if err != nil {
		exitErr("open store", err)
	}
	defer st.Close()

	orch, err := buildOrchestrator(cfg, st)
	if err != nil {
		exitErr("build pipeline", err)
	}

	run := orch.RunBatch(cmd.Context(), pipeline.Options{
		Limit:       enrichLimit,
		Strict:      cfg.StrictValue(false),
		Concurrency: cfg.ConcurrencyValue(pipeline.DefaultConcurrency),
		Order:       store.FetchOrder(cfg.Order.Value),
		Weights:     cfg.Weights,
	})

	printJSON(run)

	if !run.Success {
		os.Exit(1)
	}
}
