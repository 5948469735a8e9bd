package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/openjurist/casepipe/internal/source"
)

func init() {
	cmd := &cobra.Command{
		Use:   "ingest <file.jsonl>",
		Short: "Load raw documents from a JSONL export",
		Long: "Load raw documents into the source table from a JSONL file, one\n" +
			"document per line. Rows whose content hash already exists are skipped,\n" +
			"so re-ingesting the same file is a no-op.",
		Args: cobra.ExactArgs(1),
		Run:  runIngest,
	}

	RootCmd.AddCommand(cmd)
}

func runIngest(cmd *cobra.Command, args []string) {
	docs, warnings, err := source.ReadJSONL(args[0])
	if err != nil {
		exitErr("read jsonl", err)
	}
	for _, w := range warnings {
		fmt.Fprintf(os.Stderr, "warning: %s\n", w)
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

	report, err := st.InsertDocuments(cmd.Context(), docs)
	if err != nil {
		exitErr("ingest", err)
	}

	printJSON(report)
}
