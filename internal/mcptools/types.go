package mcptools

import "github.com/dusk-indust/issueforge/internal/treescan"

// --- MCP Tool Input Types ---
// These structs define the JSON schema for each MCP tool's input.
// The MCP Go SDK auto-generates JSON schemas from struct tags.

// GenerateIssueInput is the input for the generate_issue MCP tool.
type GenerateIssueInput struct {
	Feature string `json:"feature" jsonschema:"the free-text feature description to turn into an issue specification"`
}

// GenerateIssueOutput is the result of the generate_issue MCP tool.
type GenerateIssueOutput struct {
	RunID      string `json:"runId"`
	Result     string `json:"result"`
	OutputFile string `json:"outputFile,omitempty"`
}

// ListUnitsInput is the input for the list_units MCP tool.
type ListUnitsInput struct{}

// ListUnitsOutput is the result of the list_units MCP tool.
type ListUnitsOutput struct {
	Units          []string `json:"units"`
	ExecutionOrder []string `json:"executionOrder"`
}

// ScanSymbolsInput is the input for the scan_symbols MCP tool.
type ScanSymbolsInput struct {
	Path  string `json:"path" jsonschema:"the absolute path of the source tree to scan"`
	Limit int    `json:"limit,omitempty" jsonschema:"maximum number of symbols to return (default: 100)"`
}

// ScanSymbolsOutput is the result of the scan_symbols MCP tool.
type ScanSymbolsOutput struct {
	Symbols []treescan.Symbol `json:"symbols"`
	Total   int               `json:"total"`
}
