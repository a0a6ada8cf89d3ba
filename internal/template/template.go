// Package template loads and renders the markdown prompt templates used by
// the processing units. Templates are plain text with two placeholder
// dialects carried over from the artifact formats the units produce:
//
//   - {{ name }} and {{ context.name }} substitution markers
//   - [NAME_PLACEHOLDER] markers in the meta-prompt template
//
// Lookup order is the configured template directories first, then the
// defaults embedded in the binary.
package template

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// defaultsFS contains the templates shipped inside the binary so a fresh
// checkout works before the user customizes anything.
//
//go:embed defaults/*.md
var defaultsFS embed.FS

// placeholderRe matches {{ name }} markers, including dotted names.
var placeholderRe = regexp.MustCompile(`\{\{\s*([\w.\- ]+?)\s*\}\}`)

// contextLoopRe matches the legacy context-loop block some templates carry;
// the whole block is replaced by the rendered context section.
var contextLoopRe = regexp.MustCompile(`(?s)\{%\s*for\s+key,\s*value\s+in\s+available_context\.items\(\)\s*%\}.*?\{%\s*endfor\s*%\}`)

// Loader finds templates by name across the configured directories, falling
// back to the embedded defaults.
type Loader struct {
	dirs []string
}

// NewLoader builds a Loader searching dirs in order.
func NewLoader(dirs []string) *Loader {
	return &Loader{dirs: dirs}
}

// Find returns the on-disk path of the first directory containing name, or
// "" when no configured directory has it.
func (l *Loader) Find(name string) string {
	for _, dir := range l.dirs {
		path := filepath.Join(dir, name)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path
		}
	}
	return ""
}

// Load returns the contents of the named template. A ".md" extension is
// appended when missing. Configured directories win over the embedded
// defaults; a template found nowhere is an error naming every location
// tried.
func (l *Loader) Load(name string) (string, error) {
	if !strings.HasSuffix(name, ".md") {
		name += ".md"
	}

	if path := l.Find(name); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("template: read %s: %w", path, err)
		}
		return string(data), nil
	}

	if data, err := defaultsFS.ReadFile("defaults/" + name); err == nil {
		return string(data), nil
	}

	return "", fmt.Errorf("template: %q not found in %v or embedded defaults", name, l.dirs)
}

// Render substitutes {{ name }} markers from values. Unknown placeholders
// are left intact so a missing value is visible in the output rather than
// silently blanked.
func Render(content string, values map[string]string) string {
	return placeholderRe.ReplaceAllStringFunc(content, func(match string) string {
		name := strings.TrimSpace(strings.Trim(match, "{}"))
		if value, ok := values[name]; ok {
			return value
		}
		return match
	})
}

// RenderContext substitutes {{ context.name }} markers from context values.
// Missing keys render as empty strings; prompt templates tolerate absent
// context.
func RenderContext(content string, context map[string]string) string {
	for key, value := range context {
		re := regexp.MustCompile(`\{\{\s*context\.` + regexp.QuoteMeta(key) + `\s*\}\}`)
		content = re.ReplaceAllString(content, value)
	}
	return content
}

// ExpandContextLoop replaces the legacy context-loop block with section;
// content without the block is returned unchanged.
func ExpandContextLoop(content, section string) string {
	return contextLoopRe.ReplaceAllString(content, section)
}

// ReplaceMarkers substitutes [NAME_PLACEHOLDER] style markers wholesale.
func ReplaceMarkers(content string, markers map[string]string) string {
	for marker, value := range markers {
		content = strings.ReplaceAll(content, marker, value)
	}
	return content
}
