package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/openjurist/casepipe/internal/registry"
)

func init() {
	cmd := &cobra.Command{
		Use:   "lookup <court|reporter|judge> <query>",
		Short: "Look up reference data",
		Long: "Look up a court by id or name, a reporter edition by token, or a\n" +
			"judge by name in the embedded registries.",
		Args: cobra.ExactArgs(2),
		Run:  runLookup,
	}

	RootCmd.AddCommand(cmd)
}

func runLookup(cmd *cobra.Command, args []string) {
	reg, err := registry.Load()
	if err != nil {
		exitErr("load registries", err)
	}

	kind, query := args[0], args[1]
	var result any
	switch kind {
	case "court":
		if c, ok := reg.CourtByID(query); ok {
			result = c
		} else if matches := reg.SearchCourtsByName(query); len(matches) > 0 {
			result = matches
		}
	case "reporter":
		if r, ok := reg.ReporterByKey(query); ok {
			result = r
		} else if r, ok := reg.ReporterByKeyFold(query); ok {
			result = r
		} else if r, ok := reg.ReporterByVariation(query); ok {
			result = r
		}
	case "judge":
		if j, ok := reg.JudgeByName(query); ok {
			result = j
		}
	default:
		exitErr("lookup", fmt.Errorf("unknown kind %q (want court, reporter, or judge)", kind))
	}

	if result == nil {
		fmt.Printf("no %s matched %q\n", kind, query)
		return
	}
	printJSON(result)
}
