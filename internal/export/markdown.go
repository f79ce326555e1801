// internal/export/markdown.go
package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"writon/internal/db"
	"writon/internal/prefs"
	"writon/internal/provider"
)

// ExportHistory renders processing history as a markdown document, newest first
func ExportHistory(entries []db.HistoryEntry, now time.Time) string {
	var sb strings.Builder

	sb.WriteString("# Writon History\n\n")
	sb.WriteString("---\n\n")
	sb.WriteString(fmt.Sprintf("**Entries:** %d\n\n", len(entries)))
	sb.WriteString("---\n\n")

	for i, e := range entries {
		ts := e.CreatedAt.Local().Format("2006-01-02 15:04:05")
		sb.WriteString(fmt.Sprintf("## [%s] %s\n\n", ts, prefs.ModeLabel(e.Mode)))

		sb.WriteString(fmt.Sprintf("**Provider:** %s", provider.DisplayName(e.Provider)))
		if e.Model != "" {
			sb.WriteString(fmt.Sprintf(" (`%s`)", e.Model))
		}
		sb.WriteString("\n\n")
		if e.TargetLanguage != "" {
			sb.WriteString(fmt.Sprintf("**Language:** %s\n\n", e.TargetLanguage))
		}
		if e.CaseStyle != "" {
			sb.WriteString(fmt.Sprintf("**Case:** %s\n\n", prefs.CaseLabel(e.CaseStyle)))
		}
		if e.Duration > 0 {
			sb.WriteString(fmt.Sprintf("**Time:** %.1fs\n\n", e.Duration.Seconds()))
		}

		sb.WriteString("### Original\n\n")
		writeQuoted(&sb, e.OriginalText)
		sb.WriteString("\n### Processed\n\n")
		writeQuoted(&sb, e.ProcessedText)
		sb.WriteString("\n")

		if i < len(entries)-1 {
			sb.WriteString("---\n\n")
		}
	}

	sb.WriteString("\n---\n\n")
	sb.WriteString(fmt.Sprintf("*Exported from Writon on %s*\n", now.Format("2006-01-02 15:04:05")))

	return sb.String()
}

// writeQuoted writes content as a blockquote, or as-is when it already holds code blocks
func writeQuoted(sb *strings.Builder, content string) {
	content = strings.TrimSpace(content)
	if containsCodeBlock(content) {
		sb.WriteString(content)
		sb.WriteString("\n")
		return
	}
	for _, line := range strings.Split(content, "\n") {
		sb.WriteString("> ")
		sb.WriteString(line)
		sb.WriteString("\n")
	}
}

// WriteHistory exports history to a markdown file in dir
func WriteHistory(entries []db.HistoryEntry, dir string, now time.Time) (string, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create directory: %w", err)
	}

	filename := fmt.Sprintf("writon-history-%s.md", now.UTC().Format(timestampLayout))
	path := filepath.Join(dir, filename)

	if err := os.WriteFile(path, []byte(ExportHistory(entries, now)), 0644); err != nil {
		return "", fmt.Errorf("write file: %w", err)
	}
	return path, nil
}

// containsCodeBlock checks if content already has markdown code blocks
func containsCodeBlock(content string) bool {
	return strings.Contains(content, "```")
}
