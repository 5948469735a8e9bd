package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Version is stamped at build time via -ldflags.
var Version = "dev"

func init() {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print the casepipe version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("casepipe", Version)
		},
	}

	RootCmd.AddCommand(cmd)
}
