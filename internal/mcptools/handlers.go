// Package mcptools exposes the issue pipeline over the Model Context
// Protocol so agent hosts can drive it as a tool.
package mcptools

import (
	"context"
	"fmt"
	"os"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/dusk-indust/issueforge/internal/config"
	"github.com/dusk-indust/issueforge/internal/contextstore"
	"github.com/dusk-indust/issueforge/internal/orchestrator"
	"github.com/dusk-indust/issueforge/internal/treescan"
	"github.com/dusk-indust/issueforge/internal/unit"
)

// PipelineRunner is the slice of the orchestrator the MCP handlers use.
type PipelineRunner interface {
	RunSequence(ctx context.Context, task string) (string, error)
	UnitNames() []string
	ExecutionOrder() []string
	Context() *contextstore.Store
	RunID() string
}

// Service holds the configuration the MCP tool handlers run against. Each
// generate_issue call builds a fresh pipeline so concurrent requests do not
// share a context store.
type Service struct {
	cfg       *config.Store
	scanner   *treescan.Scanner
	newRunner func(cfg *config.Store) (PipelineRunner, error)
}

// NewService creates a Service running pipelines against cfg.
func NewService(cfg *config.Store) *Service {
	return &Service{
		cfg:     cfg,
		scanner: treescan.NewScanner(),
		newRunner: func(cfg *config.Store) (PipelineRunner, error) {
			return orchestrator.New(cfg)
		},
	}
}

// GenerateIssue runs the configured unit pipeline for a feature description
// and returns the final result plus the generated file, when one was
// written.
func (s *Service) GenerateIssue(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input GenerateIssueInput,
) (*mcp.CallToolResult, GenerateIssueOutput, error) {
	if input.Feature == "" {
		return nil, GenerateIssueOutput{}, fmt.Errorf("feature is required")
	}

	runner, err := s.newRunner(s.cfg)
	if err != nil {
		return nil, GenerateIssueOutput{}, fmt.Errorf("build pipeline: %w", err)
	}

	result, err := runner.RunSequence(ctx, input.Feature)
	if err != nil {
		return nil, GenerateIssueOutput{}, err
	}

	store := runner.Context()
	outputFile, _ := store.Get(unit.KeyGeneratedIssuePath,
		store.Get(unit.KeyOutputFilePath, "")).(string)

	return nil, GenerateIssueOutput{
		RunID:      runner.RunID(),
		Result:     result,
		OutputFile: outputFile,
	}, nil
}

// ListUnits reports the discovered units and the resolved execution order.
func (s *Service) ListUnits(
	_ context.Context,
	_ *mcp.CallToolRequest,
	_ ListUnitsInput,
) (*mcp.CallToolResult, ListUnitsOutput, error) {
	runner, err := s.newRunner(s.cfg)
	if err != nil {
		return nil, ListUnitsOutput{}, fmt.Errorf("build pipeline: %w", err)
	}

	return nil, ListUnitsOutput{
		Units:          runner.UnitNames(),
		ExecutionOrder: runner.ExecutionOrder(),
	}, nil
}

// ScanSymbols runs the tree-sitter symbol scan over a source tree.
func (s *Service) ScanSymbols(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input ScanSymbolsInput,
) (*mcp.CallToolResult, ScanSymbolsOutput, error) {
	if input.Path == "" {
		return nil, ScanSymbolsOutput{}, fmt.Errorf("path is required")
	}
	if info, err := os.Stat(input.Path); err != nil || !info.IsDir() {
		return nil, ScanSymbolsOutput{}, fmt.Errorf("path is not a readable directory: %s", input.Path)
	}

	limit := input.Limit
	if limit <= 0 {
		limit = 100
	}

	symbols, err := s.scanner.ScanTree(input.Path, func(name string) bool {
		return name == ".git" || name == "vendor" || name == "node_modules"
	})
	if err != nil {
		return nil, ScanSymbolsOutput{}, fmt.Errorf("scan: %w", err)
	}

	total := len(symbols)
	if len(symbols) > limit {
		symbols = symbols[:limit]
	}
	return nil, ScanSymbolsOutput{Symbols: symbols, Total: total}, nil
}
