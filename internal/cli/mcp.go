package cli

import (
	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/openjurist/casepipe/internal/mcp"
	"github.com/openjurist/casepipe/internal/registry"
)

func init() {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Serve the pipeline over the Model Context Protocol (stdio)",
		Long: "Start an MCP server on stdio exposing case_enrich, case_verify,\n" +
			"case_lookup, and case_get tools plus the casepipe://stats resource.\n" +
			"Point an MCP-compatible assistant at the casepipe binary with\n" +
			"arguments [\"mcp\"].",
		Run: runMCP,
	}

	RootCmd.AddCommand(cmd)
}

func runMCP(cmd *cobra.Command, args []string) {
	cfg, err := resolveConfig()
	if err != nil {
		exitErr("resolve config", err)
	}
	st, err := openStore(cfg)
	if err != nil {
		exitErr("open store", err)
	}
	defer st.Close()

	reg, err := registry.Load()
	if err != nil {
		exitErr("load registries", err)
	}
	orch, err := buildOrchestrator(cfg, st)
	if err != nil {
		exitErr("build pipeline", err)
	}

	s := mcp.NewServer(mcp.ServerConfig{
		Store:        st,
		Registries:   reg,
		Orchestrator: orch,
		Weights:      cfg.Weights,
		Version:      Version,
	})

	if err := server.ServeStdio(s); err != nil {
		exitErr("mcp server", err)
	}
}
