package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "get <natural-key>",
		Short: "Fetch the stored enriched record for a natural key",
		Args:  cobra.ExactArgs(1),
		Run:   runGet,
	}

	RootCmd.AddCommand(cmd)
}

func runGet(cmd *cobra.Command, args []string) {
	cfg, err := resolveConfig()
	if err != nil {
		exitErr("resolve config", err)
	}
	st, err := openStore(cfg)
	if err != nil {
		exitErr("open store", err)
	}
	defer st.Close()

	rec, err := st.FindByNaturalKey(cmd.Context(), args[0])
	if err != nil {
		exitErr("lookup", err)
	}
	if rec == nil {
		fmt.Printf("no record stored for %q\n", args[0])
		return
	}
	fmt.Println(string(rec.Enrichment))
}
