// internal/export/report_test.go
package export

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestRenderReport(t *testing.T) {
	r := &Report{
		Original:  "i has a apple",
		Processed: "I have an apple.",
		Mode:      "grammar",
		CaseStyle: "sentence",
		Provider:  "groq",
	}

	want := `--- Original Text ---
i has a apple

--- Processed Text ---
I have an apple.

--- Stats ---
Mode: Grammar Correction
Case Style: Sentence case
AI Provider: Groq
Original Character Count: 13
Processed Character Count: 16
Original Word Count: 4
Processed Word Count: 4
`
	if got := RenderReport(r); got != want {
		t.Errorf("RenderReport() =\n%s\nwant\n%s", got, want)
	}
}

func TestReportFilename(t *testing.T) {
	at := time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)

	tests := []struct {
		name string
		r    Report
		want string
	}{
		{"grammar", Report{Mode: "grammar", CreatedAt: at}, "writon-grammar-2026-03-04T05-06-07.txt"},
		{"translate", Report{Mode: "translate", TargetLanguage: "Brazilian Portuguese", CreatedAt: at}, "writon-translate-brazilian-portuguese-2026-03-04T05-06-07.txt"},
		{"translate without language", Report{Mode: "translate", CreatedAt: at}, "writon-translate-2026-03-04T05-06-07.txt"},
		{"local time is converted", Report{Mode: "summarize", CreatedAt: at.In(time.FixedZone("X", 3600))}, "writon-summarize-2026-03-04T05-06-07.txt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ReportFilename(&tt.r); got != tt.want {
				t.Errorf("ReportFilename() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestWriteReport(t *testing.T) {
	tmpDir := t.TempDir()
	r := &Report{
		Original:  "hello",
		Processed: "HELLO",
		Mode:      "process",
		CaseStyle: "upper",
		Provider:  "anthropic",
		CreatedAt: time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC),
	}

	path, err := WriteReport(r, filepath.Join(tmpDir, "out"))
	if err != nil {
		t.Fatalf("WriteReport() failed: %v", err)
	}
	if filepath.Base(path) != "writon-process-2026-02-01T10-00-00.txt" {
		t.Errorf("filename = %q", filepath.Base(path))
	}

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file: %v", err)
	}
	if string(content) != RenderReport(r) {
		t.Error("file content does not match rendered report")
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Simple Name", "simple-name"},
		{"Test/Language", "testlanguage"},
		{"Old  Norse", "old-norse"},
		{"   spaces   ", "spaces"},
		{"Multiple---Hyphens", "multiple-hyphens"},
		{"中文", "中文"},
		{"", "result"},
		{"This is a very long name that should be truncated to fifty characters maximum", "this-is-a-very-long-name-that-should-be-truncated-"},
	}

	for _, test := range tests {
		result := sanitizeFilename(test.input)
		if result != test.expected {
			t.Errorf("sanitizeFilename(%q) = %q, expected %q", test.input, result, test.expected)
		}
	}
}
