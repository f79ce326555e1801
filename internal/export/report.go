// internal/export/report.go
package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"writon/internal/prefs"
	"writon/internal/provider"
	"writon/internal/stats"
)

// timestampLayout is an ISO timestamp with the colons swapped for hyphens
const timestampLayout = "2006-01-02T15-04-05"

// Report is a processed result ready to be saved as plain text
type Report struct {
	Original       string
	Processed      string
	Mode           string
	CaseStyle      string
	Provider       string
	TargetLanguage string
	CreatedAt      time.Time
}

// RenderReport formats the original text, the processed text and their stats
func RenderReport(r *Report) string {
	o, p := stats.Count(r.Original), stats.Count(r.Processed)

	var sb strings.Builder
	sb.WriteString("--- Original Text ---\n")
	sb.WriteString(r.Original)
	sb.WriteString("\n\n--- Processed Text ---\n")
	sb.WriteString(r.Processed)
	sb.WriteString("\n\n--- Stats ---\n")
	sb.WriteString(fmt.Sprintf("Mode: %s\n", prefs.ModeLabel(r.Mode)))
	sb.WriteString(fmt.Sprintf("Case Style: %s\n", prefs.CaseLabel(r.CaseStyle)))
	sb.WriteString(fmt.Sprintf("AI Provider: %s\n", provider.DisplayName(r.Provider)))
	sb.WriteString(fmt.Sprintf("Original Character Count: %d\n", o.Chars))
	sb.WriteString(fmt.Sprintf("Processed Character Count: %d\n", p.Chars))
	sb.WriteString(fmt.Sprintf("Original Word Count: %d\n", o.Words))
	sb.WriteString(fmt.Sprintf("Processed Word Count: %d\n", p.Words))
	return sb.String()
}

// ReportFilename names the report after its mode, and its language when translating
func ReportFilename(r *Report) string {
	ts := r.CreatedAt.UTC().Format(timestampLayout)
	if r.Mode == prefs.ModeTranslate && strings.TrimSpace(r.TargetLanguage) != "" {
		return fmt.Sprintf("writon-translate-%s-%s.txt", sanitizeFilename(r.TargetLanguage), ts)
	}
	return fmt.Sprintf("writon-%s-%s.txt", sanitizeFilename(r.Mode), ts)
}

// WriteReport saves the report into dir and returns its path
func WriteReport(r *Report, dir string) (string, error) {
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now()
	}
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create directory: %w", err)
	}

	path := filepath.Join(dir, ReportFilename(r))
	if err := os.WriteFile(path, []byte(RenderReport(r)), 0644); err != nil {
		return "", fmt.Errorf("write file: %w", err)
	}
	return path, nil
}

// sanitizeFilename lowercases name, turns whitespace into hyphens and drops
// anything that is not a letter, digit, hyphen or underscore
func sanitizeFilename(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))

	var sb strings.Builder
	for _, r := range name {
		switch {
		case unicode.IsSpace(r):
			sb.WriteRune('-')
		case unicode.IsLetter(r), unicode.IsDigit(r):
			sb.WriteRune(r)
		case r == '-' || r == '_':
			sb.WriteRune(r)
		}
	}

	result := sb.String()
	for strings.Contains(result, "--") {
		result = strings.ReplaceAll(result, "--", "-")
	}
	result = strings.Trim(result, "-")

	if result == "" {
		result = "result"
	}
	if r := []rune(result); len(r) > 50 {
		result = string(r[:50])
	}
	return result
}
