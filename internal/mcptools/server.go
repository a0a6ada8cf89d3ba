package mcptools

import (
	"context"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"golang.org/x/sync/errgroup"
)

// NewServer creates an MCP server with the pipeline tools registered.
func NewServer(svc *Service, version string) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "issueforge",
		Version: version,
	}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "generate_issue",
		Description: "Run the configured unit pipeline for a feature description: analyze the project, research the feature, and write a GitHub-ready issue specification to the generated-issues directory.",
	}, svc.GenerateIssue)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_units",
		Description: "List the processing units discovered in the configured units directory and the execution order they will run in.",
	}, svc.ListUnits)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "scan_symbols",
		Description: "Scan a source tree with tree-sitter and return the declared symbols (functions, methods, types) per file.",
	}, svc.ScanSymbols)

	return server
}

// Serve exposes the MCP tools over streamable HTTP on addr until ctx is
// cancelled.
func Serve(ctx context.Context, svc *Service, version, addr string) error {
	server := NewServer(svc, version)

	handler := mcp.NewStreamableHTTPHandler(
		func(_ *http.Request) *mcp.Server { return server },
		nil,
	)

	httpServer := &http.Server{
		Addr:    addr,
		Handler: handler,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		return httpServer.Shutdown(context.Background())
	})
	return g.Wait()
}
