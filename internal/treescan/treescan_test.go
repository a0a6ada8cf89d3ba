package treescan

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func symbolNames(symbols []Symbol) []string {
	names := make([]string, len(symbols))
	for i, s := range symbols {
		names[i] = s.Name
	}
	return names
}

func TestScanFile_Go(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "svc.go")
	require.NoError(t, os.WriteFile(path, []byte(`package svc

type Store interface {
	Get(key string) string
}

type entry struct {
	value string
}

func Lookup(key string) string { return "" }

func (e *entry) Value() string { return e.value }
`), 0o644))

	symbols, err := NewScanner().ScanFile(path, "svc.go")
	require.NoError(t, err)

	names := symbolNames(symbols)
	assert.Contains(t, names, "Store")
	assert.Contains(t, names, "entry")
	assert.Contains(t, names, "Lookup")
	assert.Contains(t, names, "Value")

	kinds := make(map[string]string)
	for _, s := range symbols {
		kinds[s.Name] = s.Kind
	}
	assert.Equal(t, "interface", kinds["Store"])
	assert.Equal(t, "type", kinds["entry"])
	assert.Equal(t, "function", kinds["Lookup"])
	assert.Equal(t, "method", kinds["Value"])
}

func TestScanFile_Python(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mod.py")
	require.NoError(t, os.WriteFile(path, []byte(`class Widget:
    def render(self):
        return ""

def build():
    return Widget()
`), 0o644))

	symbols, err := NewScanner().ScanFile(path, "mod.py")
	require.NoError(t, err)

	names := symbolNames(symbols)
	assert.Contains(t, names, "Widget")
	assert.Contains(t, names, "render")
	assert.Contains(t, names, "build")
}

func TestScanFile_Rust(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "lib.rs")
	require.NoError(t, os.WriteFile(path, []byte(`pub struct Config {
    pub name: String,
}

pub enum Mode { Fast, Slow }

pub trait Runner {
    fn run(&self);
}

pub fn start() {}
`), 0o644))

	symbols, err := NewScanner().ScanFile(path, "lib.rs")
	require.NoError(t, err)

	names := symbolNames(symbols)
	assert.Contains(t, names, "Config")
	assert.Contains(t, names, "Mode")
	assert.Contains(t, names, "Runner")
	assert.Contains(t, names, "start")
}

func TestScanFile_TypeScript(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "app.ts")
	require.NoError(t, os.WriteFile(path, []byte(`interface Props {
  title: string;
}

class App {
  render(): string { return ""; }
}

function mount(): void {}
`), 0o644))

	symbols, err := NewScanner().ScanFile(path, "app.ts")
	require.NoError(t, err)

	names := symbolNames(symbols)
	assert.Contains(t, names, "Props")
	assert.Contains(t, names, "App")
	assert.Contains(t, names, "render")
	assert.Contains(t, names, "mount")
}

func TestScanFile_UnsupportedExtension(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("nothing here"), 0o644))

	symbols, err := NewScanner().ScanFile(path, "notes.txt")
	require.NoError(t, err)
	assert.Empty(t, symbols)
}

func TestScanTree_SkipsDirectories(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "vendor"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "main.go"), []byte("package main\n\nfunc main() {}\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "vendor", "dep.go"), []byte("package dep\n\nfunc Hidden() {}\n"), 0o644))

	symbols, err := NewScanner().ScanTree(root, func(name string) bool { return name == "vendor" })
	require.NoError(t, err)

	names := symbolNames(symbols)
	assert.Contains(t, names, "main")
	assert.NotContains(t, names, "Hidden")
}

func TestSummary(t *testing.T) {
	symbols := []Symbol{
		{Name: "Lookup", Kind: "function", File: "svc.go", Line: 3},
		{Name: "Store", Kind: "interface", File: "svc.go", Line: 1},
	}

	out := Summary(symbols, 0)

	assert.Contains(t, out, "`svc.go`")
	assert.Contains(t, out, "function `Lookup` (line 3)")
	assert.Contains(t, out, "interface `Store` (line 1)")
}

func TestSummary_EmptyAndCapped(t *testing.T) {
	assert.Contains(t, Summary(nil, 10), "No recognized source symbols")

	many := []Symbol{
		{Name: "a", Kind: "function", File: "f.go", Line: 1},
		{Name: "b", Kind: "function", File: "f.go", Line: 2},
	}
	out := Summary(many, 1)
	assert.Contains(t, out, "`a`")
	assert.NotContains(t, out, "`b`")
}
