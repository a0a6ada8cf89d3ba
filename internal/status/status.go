// Package status reports what the pipeline has produced so far: the
// specification files in the generated-issues directory.
package status

import (
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"
)

// SpecInfo describes one generated specification file.
type SpecInfo struct {
	Name     string // filename, e.g. 003-card-search.md
	Title    string // first markdown heading, "" when none
	FilePath string
	ModTime  time.Time
}

var headingRe = regexp.MustCompile(`(?m)^#+\s*(?:FEATURE:)?\s*(.+)$`)

// ListSpecs returns the markdown specifications under dir, newest first.
// A missing directory yields an empty list: nothing was generated yet.
func ListSpecs(dir string) ([]SpecInfo, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var specs []SpecInfo
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".md" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		info, err := entry.Info()
		if err != nil {
			continue
		}
		specs = append(specs, SpecInfo{
			Name:     entry.Name(),
			Title:    firstHeading(path),
			FilePath: path,
			ModTime:  info.ModTime(),
		})
	}

	sort.Slice(specs, func(i, j int) bool { return specs[i].ModTime.After(specs[j].ModTime) })
	return specs, nil
}

// firstHeading extracts the first markdown heading text from the file.
func firstHeading(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	if m := headingRe.FindSubmatch(data); m != nil {
		return strings.TrimSpace(string(m[1]))
	}
	return ""
}
