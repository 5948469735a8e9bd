package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Show the most recent run's verification report",
		Run:   runVerify,
	}

	RootCmd.AddCommand(cmd)
}

func runVerify(cmd *cobra.Command, args []string) {
	cfg, err := resolveConfig()
	if err != nil {
		exitErr("resolve config", err)
	}
	st, err := openStore(cfg)
	if err != nil {
		exitErr("open store", err)
	}
	defer st.Close()

	run, err := st.LatestRun(cmd.Context())
	if err != nil {
		exitErr("load latest run", err)
	}
	if run == nil {
		fmt.Println("no pipeline runs recorded yet")
		return
	}
	fmt.Println(string(run.Report))
}
