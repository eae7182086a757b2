package main

import (
	"context"

	"github.com/felixgeelhaar/actor/internal/adapters/filesystem"
	"github.com/felixgeelhaar/actor/internal/domain/pipeline"
	"github.com/felixgeelhaar/actor/internal/library"
	mcptools "github.com/felixgeelhaar/actor/internal/mcp"
	"github.com/felixgeelhaar/actor/internal/ports"
	"github.com/felixgeelhaar/mcp-go"
	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start MCP server for AI agent integration",
	Long: `Start a Model Context Protocol (MCP) server for AI agent integration.

The MCP server lets agents inspect pipelines and job progress without
running anything.

Available tools:
  - actor_steps         List the step types definitions can use
  - actor_plan          Show which steps of a definition would run
  - actor_wait_check    Check once whether wait specs are satisfied
  - actor_jobs          List journaled job submissions
  - actor_status        Version info and definition health

Examples:
  actor mcp                              # Start stdio MCP server
  actor mcp --http :8080                 # Start HTTP MCP server
  actor mcp --definition rnaseq.yaml     # Default definition for tools`,
	RunE: runMCP,
}

var (
	mcpHTTP       string
	mcpDefinition string
	mcpJournal    string
)

func init() {
	rootCmd.AddCommand(mcpCmd)

	mcpCmd.Flags().StringVar(&mcpHTTP, "http", "", "Start HTTP server on address (e.g., :8080)")
	mcpCmd.Flags().StringVarP(&mcpDefinition, "definition", "d", "pipeline.yaml", "Default pipeline definition")
	mcpCmd.Flags().StringVar(&mcpJournal, "journal", "", "Path to the journal database")
}

func newMCPServer() *mcp.Server {
	srv := mcp.NewServer(mcp.ServerInfo{
		Name:    "actor",
		Version: version,
	})
	mcptools.RegisterAll(srv, mcptools.Options{
		Registry:          pipeline.NewRegistry(library.Builtin()),
		DefaultDefinition: mcpDefinition,
		FileSystem:        filesystem.NewRealFileSystem(),
		OpenJournal:       func() (ports.JobJournal, error) { return openJournal(mcpJournal) },
		Version: mcptools.VersionInfo{
			Version:   version,
			Commit:    commit,
			BuildDate: date,
		},
	})
	return srv
}

func runMCP(_ *cobra.Command, _ []string) error {
	ctx := context.Background()
	srv := newMCPServer()

	if mcpHTTP != "" {
		return mcp.ServeHTTP(ctx, srv, mcpHTTP)
	}
	return mcp.ServeStdio(ctx, srv)
}
