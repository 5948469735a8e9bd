// Package mcp provides a Model Context Protocol server for casepipe.
//
// It exposes the enhancement pipeline (run a batch, inspect the latest
// verification report, look up registry entries, fetch stored records) as
// MCP tools over stdio, and store statistics as an MCP resource.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/openjurist/casepipe/internal/pipeline"
	"github.com/openjurist/casepipe/internal/registry"
	"github.com/openjurist/casepipe/internal/store"
	"github.com/openjurist/casepipe/internal/verify"
)

// ServerConfig holds configuration for the MCP server.
type ServerConfig struct {
	Store        *store.Store
	Registries   *registry.Registries
	Orchestrator *pipeline.Orchestrator
	Weights      verify.Weights
	Version      string
}

// dbMu serializes tool calls that touch the database. The mcp-go library
// dispatches handlers concurrently, and SQLite supports one writer at a
// time; a single mutex keeps enrich runs from interleaving with reads.
var dbMu sync.Mutex

// NewServer creates a configured MCP server with all casepipe tools and
// resources.
func NewServer(cfg ServerConfig) *server.MCPServer {
	ver := cfg.Version
	if ver == "" {
		ver = "dev"
	}

	s := server.NewMCPServer(
		"casepipe",
		ver,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(true, false),
	)

	registerEnrichTool(s, cfg)
	registerVerifyTool(s, cfg.Store)
	registerLookupTool(s, cfg.Registries)
	registerGetTool(s, cfg.Store)
	registerStatsResource(s, cfg.Store)

	return s
}

func registerEnrichTool(s *server.MCPServer, cfg ServerConfig) {
	tool := mcp.NewTool("case_enrich",
		mcp.WithDescription("Run the document enhancement pipeline over a batch of pending documents. Returns the full run report: statistics, storage counts, verification scores, and grouped errors."),
		mcp.WithNumber("limit",
			mcp.Description("Maximum documents to process (default: 100, max: 1000)"),
		),
		mcp.WithBoolean("strict",
			mcp.Description("Exclude documents failing validation instead of warning (default: false)"),
		),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		dbMu.Lock()
		defer dbMu.Unlock()

		opts := pipeline.Options{Limit: 100, Weights: cfg.Weights}
		if v, err := req.RequireFloat("limit"); err == nil {
			limit := int(v)
			if limit > 1000 {
				limit = 1000
			}
			if limit > 0 {
				opts.Limit = limit
			}
		}
		if v, err := req.RequireBool("strict"); err == nil {
			opts.Strict = v
		}

		run := cfg.Orchestrator.RunBatch(ctx, opts)
		return jsonResult(run)
	})
}

func registerVerifyTool(s *server.MCPServer, st *store.Store) {
	tool := mcp.NewTool("case_verify",
		mcp.WithDescription("Return the verification report of the most recent pipeline run: completeness and quality scores, per-type breakdowns, and insights."),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		dbMu.Lock()
		defer dbMu.Unlock()

		run, err := st.LatestRun(ctx)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("loading latest run: %v", err)), nil
		}
		if run == nil {
			return mcp.NewToolResultText("no pipeline runs recorded yet"), nil
		}
		return mcp.NewToolResultText(string(run.Report)), nil
	})
}

func registerLookupTool(s *server.MCPServer, reg *registry.Registries) {
	tool := mcp.NewTool("case_lookup",
		mcp.WithDescription("Look up reference data: a court by id or name, a reporter edition by token, or a judge by name."),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithString("kind",
			mcp.Required(),
			mcp.Description("Registry to query"),
			mcp.Enum("court", "reporter", "judge"),
		),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Court id or name, reporter token, or judge name"),
		),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		kind, err := req.RequireString("kind")
		if err != nil {
			return mcp.NewToolResultError("kind is required"), nil
		}
		query, err := req.RequireString("query")
		if err != nil {
			return mcp.NewToolResultError("query is required"), nil
		}

		switch kind {
		case "court":
			if c, ok := reg.CourtByID(query); ok {
				return jsonResult(c)
			}
			if matches := reg.SearchCourtsByName(query); len(matches) > 0 {
				return jsonResult(matches)
			}
			return mcp.NewToolResultText("no court matched"), nil
		case "reporter":
			if r, ok := reg.ReporterByKey(query); ok {
				return jsonResult(r)
			}
			if r, ok := reg.ReporterByKeyFold(query); ok {
				return jsonResult(r)
			}
			if r, ok := reg.ReporterByVariation(query); ok {
				return jsonResult(r)
			}
			return mcp.NewToolResultText("no reporter matched"), nil
		case "judge":
			if j, ok := reg.JudgeByName(query); ok {
				return jsonResult(j)
			}
			return mcp.NewToolResultText("no judge matched"), nil
		default:
			return mcp.NewToolResultError(fmt.Sprintf("unknown kind %q", kind)), nil
		}
	})
}

func registerGetTool(s *server.MCPServer, st *store.Store) {
	tool := mcp.NewTool("case_get",
		mcp.WithDescription("Fetch the stored enriched record for a natural key (case or docket number)."),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithString("natural_key",
			mcp.Required(),
			mcp.Description("The case/docket number the record was stored under"),
		),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		dbMu.Lock()
		defer dbMu.Unlock()

		key, err := req.RequireString("natural_key")
		if err != nil {
			return mcp.NewToolResultError("natural_key is required"), nil
		}
		rec, err := st.FindByNaturalKey(ctx, key)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("lookup failed: %v", err)), nil
		}
		if rec == nil {
			return mcp.NewToolResultText("no record stored for that natural key"), nil
		}
		return mcp.NewToolResultText(string(rec.Enrichment)), nil
	})
}

func registerStatsResource(s *server.MCPServer, st *store.Store) {
	resource := mcp.NewResource(
		"casepipe://stats",
		"Store statistics",
		mcp.WithResourceDescription("Document, enriched-record, and run counts plus database size"),
		mcp.WithMIMEType("application/json"),
	)

	s.AddResource(resource, func(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		dbMu.Lock()
		defer dbMu.Unlock()

		stats, err := st.Stats(ctx)
		if err != nil {
			return nil, fmt.Errorf("reading stats: %w", err)
		}
		b, err := json.MarshalIndent(stats, "", "  ")
		if err != nil {
			return nil, err
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      "casepipe://stats",
				MIMEType: "application/json",
				Text:     string(b),
			},
		}, nil
	})
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("marshaling result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(b)), nil
}
