package cli

import (
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show resolved configuration and where each value came from",
		Run:   runConfig,
	}

	RootCmd.AddCommand(cmd)
}

func runConfig(cmd *cobra.Command, args []string) {
	cfg, err := resolveConfig()
	if err != nil {
		exitErr("resolve config", err)
	}

	printJSON(cfg)
}
