package unit

import (
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

var (
	slugStripRe    = regexp.MustCompile(`[^\w\s-]`)
	slugCollapseRe = regexp.MustCompile(`[-\s]+`)
	seqFileRe      = regexp.MustCompile(`^(\d{3})-`)
	fenceOpenRe    = regexp.MustCompile("(?m)^```\\w*\n?")
	fenceCloseRe   = regexp.MustCompile("(?m)\n?```\\s*$")
)

// slugify converts text to a lowercase hyphenated slug capped at max runes.
// Empty input yields an empty slug; callers supply their own fallback.
func slugify(text string, max int) string {
	slug := strings.ToLower(text)
	slug = slugStripRe.ReplaceAllString(slug, "")
	slug = slugCollapseRe.ReplaceAllString(slug, "-")
	slug = strings.Trim(slug, "-")
	if len(slug) > max {
		slug = slug[:max]
		slug = strings.Trim(slug, "-")
	}
	return slug
}

// extractFeatureTitle pulls the title out of generated markdown: the
// "# FEATURE:" marker wins, then any other top-level heading.
func extractFeatureTitle(content string) string {
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "# FEATURE:") {
			if title := strings.TrimSpace(strings.TrimPrefix(line, "# FEATURE:")); title != "" {
				return title
			}
		} else if strings.HasPrefix(line, "# ") {
			title := strings.TrimSpace(strings.TrimLeft(line, "# "))
			if title != "" && !strings.HasPrefix(strings.ToLower(title), "feature") {
				return title
			}
		}
	}
	return ""
}

// extractHeadingTitle pulls a title from assembled output: a markdown
// heading, or the tail of a "Development Task:" line.
func extractHeadingTitle(content string) string {
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "# ") {
			title := strings.TrimSpace(strings.TrimLeft(line, "# "))
			if len(title) > 3 {
				return title
			}
		} else if idx := strings.Index(line, "Development Task:"); idx != -1 {
			if title := strings.TrimSpace(line[idx+len("Development Task:"):]); title != "" {
				return title
			}
		}
	}
	return ""
}

// extractStructuredOutput trims LLM chatter around the structured issue
// body. Preference order: the "# FEATURE:" marker, a heading mentioning the
// feature or spec, a fenced block, any second-level heading. When nothing
// matches, the raw result is returned under a generic heading so the output
// is never lost.
func extractStructuredOutput(raw string) string {
	if pos := strings.Index(raw, "# FEATURE:"); pos != -1 {
		return raw[pos:]
	}

	lines := strings.Split(raw, "\n")
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if !strings.HasPrefix(trimmed, "# ") {
			continue
		}
		lower := strings.ToLower(trimmed)
		if strings.Contains(lower, "feature") || strings.Contains(lower, "spec") || strings.Contains(lower, "implementation") {
			return strings.Join(lines[i:], "\n")
		}
	}

	if start := strings.Index(raw, "```"); start != -1 {
		contentStart := strings.Index(raw[start:], "\n")
		if contentStart != -1 {
			contentStart += start + 1
			if end := strings.Index(raw[contentStart:], "```"); end != -1 {
				return strings.TrimSpace(raw[contentStart : contentStart+end])
			}
		}
	}

	for i, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), "## ") {
			return strings.Join(lines[i:], "\n")
		}
	}

	return "# EXTRACTED OUTPUT\n\n" + raw
}

// cleanLLMOutput strips stray markdown code fences wrapping the whole
// response.
func cleanLLMOutput(content string) string {
	content = fenceOpenRe.ReplaceAllString(content, "")
	content = fenceCloseRe.ReplaceAllString(content, "")
	return strings.TrimSpace(content)
}

// nextSequenceNumber scans dir for NNN-name.md files and returns the next
// free number, starting at 1 for an empty or missing directory.
func nextSequenceNumber(dir string) int {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 1
	}
	max := 0
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".md" {
			continue
		}
		m := seqFileRe.FindStringSubmatch(entry.Name())
		if m == nil {
			continue
		}
		if n, err := strconv.Atoi(m[1]); err == nil && n > max {
			max = n
		}
	}
	return max + 1
}
