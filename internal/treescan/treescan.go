// Package treescan extracts a lightweight symbol inventory from a project
// tree using tree-sitter grammars. The project-analysis unit folds the
// resulting summary into its prompt so the model sees real function, type,
// and class names instead of just a directory listing.
package treescan

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_go "github.com/tree-sitter/tree-sitter-go/bindings/go"
	tree_sitter_python "github.com/tree-sitter/tree-sitter-python/bindings/go"
	tree_sitter_rust "github.com/tree-sitter/tree-sitter-rust/bindings/go"
	tree_sitter_typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"
)

// Language names a supported grammar.
type Language string

const (
	LangGo         Language = "go"
	LangPython     Language = "python"
	LangRust       Language = "rust"
	LangTypeScript Language = "typescript"
)

// Symbol is one extracted declaration.
type Symbol struct {
	Name string
	Kind string // function, method, type, class, interface, struct, enum, trait
	File string // relative to the scanned root
	Line int    // 1-based
}

// extToLanguage maps source file extensions to grammars.
var extToLanguage = map[string]Language{
	".go":  LangGo,
	".py":  LangPython,
	".rs":  LangRust,
	".ts":  LangTypeScript,
	".tsx": LangTypeScript,
}

// declKinds maps, per language, the AST node kinds that declare a named
// symbol to the symbol kind we report. Every listed node kind carries a
// "name" field in its grammar.
var declKinds = map[Language]map[string]string{
	LangGo: {
		"function_declaration": "function",
		"method_declaration":   "method",
	},
	LangPython: {
		"function_definition": "function",
		"class_definition":    "class",
	},
	LangRust: {
		"function_item": "function",
		"struct_item":   "struct",
		"enum_item":     "enum",
		"trait_item":    "trait",
	},
	LangTypeScript: {
		"function_declaration":  "function",
		"class_declaration":     "class",
		"interface_declaration": "interface",
		"method_definition":     "method",
	},
}

// Scanner parses source files with tree-sitter. A Scanner is safe for
// sequential use only; individual Scan calls create fresh parsers.
type Scanner struct {
	languages map[Language]*tree_sitter.Language
}

// NewScanner builds a Scanner with the Go, Python, Rust, and TypeScript
// grammars registered.
func NewScanner() *Scanner {
	return &Scanner{
		languages: map[Language]*tree_sitter.Language{
			LangGo:         tree_sitter.NewLanguage(tree_sitter_go.Language()),
			LangPython:     tree_sitter.NewLanguage(tree_sitter_python.Language()),
			LangRust:       tree_sitter.NewLanguage(tree_sitter_rust.Language()),
			LangTypeScript: tree_sitter.NewLanguage(tree_sitter_typescript.LanguageTypescript()),
		},
	}
}

// ScanFile extracts symbols from a single source file. Unsupported
// extensions yield an empty result, not an error.
func (s *Scanner) ScanFile(path, rel string) ([]Symbol, error) {
	lang, ok := extToLanguage[strings.ToLower(filepath.Ext(path))]
	if !ok {
		return nil, nil
	}

	source, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("treescan: read %s: %w", path, err)
	}
	return s.extract(source, rel, lang)
}

// extract parses source and walks the tree collecting declared symbols.
func (s *Scanner) extract(source []byte, rel string, lang Language) ([]Symbol, error) {
	parser := tree_sitter.NewParser()
	defer parser.Close()

	if err := parser.SetLanguage(s.languages[lang]); err != nil {
		return nil, fmt.Errorf("treescan: set language %s: %w", lang, err)
	}

	tree := parser.Parse(source, nil)
	if tree == nil {
		return nil, fmt.Errorf("treescan: nil tree for %s", rel)
	}
	defer tree.Close()

	kinds := declKinds[lang]
	var symbols []Symbol

	cursor := tree.RootNode().Walk()
	defer cursor.Close()
	walk(cursor, func(node *tree_sitter.Node) {
		kind, declares := kinds[node.Kind()]
		if !declares {
			return
		}
		nameNode := node.ChildByFieldName("name")
		if nameNode == nil {
			return
		}
		symbols = append(symbols, Symbol{
			Name: nameNode.Utf8Text(source),
			Kind: kind,
			File: rel,
			Line: int(node.StartPosition().Row) + 1,
		})
	})

	// Go type declarations wrap their type_spec children without a name
	// field on the outer node; handle them directly.
	if lang == LangGo {
		symbols = append(symbols, goTypeSpecs(tree.RootNode(), source, rel)...)
	}

	sort.Slice(symbols, func(i, j int) bool { return symbols[i].Line < symbols[j].Line })
	return symbols, nil
}

// goTypeSpecs collects type_spec declarations anywhere in a Go file.
func goTypeSpecs(root *tree_sitter.Node, source []byte, rel string) []Symbol {
	var symbols []Symbol
	cursor := root.Walk()
	defer cursor.Close()
	walk(cursor, func(node *tree_sitter.Node) {
		if node.Kind() != "type_spec" {
			return
		}
		nameNode := node.ChildByFieldName("name")
		if nameNode == nil {
			return
		}
		kind := "type"
		if typeNode := node.ChildByFieldName("type"); typeNode != nil && typeNode.Kind() == "interface_type" {
			kind = "interface"
		}
		symbols = append(symbols, Symbol{
			Name: nameNode.Utf8Text(source),
			Kind: kind,
			File: rel,
			Line: int(node.StartPosition().Row) + 1,
		})
	})
	return symbols
}

// walk visits every node reachable from the cursor in depth-first order.
func walk(cursor *tree_sitter.TreeCursor, visit func(*tree_sitter.Node)) {
	visit(cursor.Node())
	if cursor.GotoFirstChild() {
		walk(cursor, visit)
		for cursor.GotoNextSibling() {
			walk(cursor, visit)
		}
		cursor.GotoParent()
	}
}

// ScanTree walks root and extracts symbols from every supported source
// file, skipping directories for which skip returns true. Per-file parse
// errors are skipped, not fatal: a broken source file should not sink the
// whole analysis.
func (s *Scanner) ScanTree(root string, skip func(name string) bool) ([]Symbol, error) {
	var symbols []Symbol
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // unreadable entries are skipped
		}
		if d.IsDir() {
			if path != root && skip != nil && skip(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			rel = path
		}
		found, scanErr := s.ScanFile(path, rel)
		if scanErr != nil {
			return nil
		}
		symbols = append(symbols, found...)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("treescan: walk %s: %w", root, err)
	}
	return symbols, nil
}

// Summary renders symbols as a markdown listing grouped by file, capped at
// maxSymbols entries to keep prompts bounded.
func Summary(symbols []Symbol, maxSymbols int) string {
	if len(symbols) == 0 {
		return "_No recognized source symbols found._"
	}
	if maxSymbols > 0 && len(symbols) > maxSymbols {
		symbols = symbols[:maxSymbols]
	}

	byFile := make(map[string][]Symbol)
	var files []string
	for _, sym := range symbols {
		if _, seen := byFile[sym.File]; !seen {
			files = append(files, sym.File)
		}
		byFile[sym.File] = append(byFile[sym.File], sym)
	}
	sort.Strings(files)

	var b strings.Builder
	for _, file := range files {
		fmt.Fprintf(&b, "- `%s`\n", file)
		for _, sym := range byFile[file] {
			fmt.Fprintf(&b, "  - %s `%s` (line %d)\n", sym.Kind, sym.Name, sym.Line)
		}
	}
	return b.String()
}
