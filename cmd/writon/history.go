// cmd/writon/history.go
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"writon/internal/db"
	"writon/internal/export"
	"writon/internal/input"
	"writon/internal/prefs"
)

func newHistoryCmd(g *globals) *cobra.Command {
	var (
		limit     int
		show      string
		exportDir string
		clear     bool
		asJSON    bool
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List, show, export or clear past results",
		Example: `  writon history -n 5
  writon history --show 3f2c...
  writon history --export ~/notes
  writon history --clear`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := g.open(false)
			if err != nil {
				return err
			}
			defer e.Close()

			out := cmd.OutOrStdout()
			switch {
			case clear:
				if err := e.db.ClearHistory(); err != nil {
					return err
				}
				fmt.Fprintln(out, "History cleared")
				return nil

			case show != "":
				entry, err := e.db.GetHistory(show)
				if errors.Is(err, db.ErrNotFound) {
					return fmt.Errorf("no history entry %q", show)
				} else if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd, entry)
				}
				fmt.Fprintf(out, "%s  %s  %s  %s\n\n", entry.CreatedAt.Local().Format(time.DateTime),
					prefs.ModeLabel(entry.Mode), entry.Provider, entry.Duration.Round(time.Millisecond))
				fmt.Fprintf(out, "ORIGINAL\n%s\n\nPROCESSED\n%s\n", entry.OriginalText, entry.ProcessedText)
				return nil
			}

			entries, err := e.db.ListHistory(limit)
			if err != nil {
				return err
			}

			if exportDir != "" {
				if len(entries) == 0 {
					return fmt.Errorf("no history to export")
				}
				path, err := export.WriteHistory(entries, input.ExpandHome(exportDir), time.Now())
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "Exported %d entries to %s\n", len(entries), path)
				return nil
			}

			if asJSON {
				return writeJSON(cmd, entries)
			}
			if len(entries) == 0 {
				fmt.Fprintln(out, "No history yet")
				return nil
			}
			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tWHEN\tMODE\tPROVIDER\tTEXT")
			for _, h := range entries {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", h.ID, h.CreatedAt.Local().Format(time.DateTime),
					h.Mode, h.Provider, oneLine(h.OriginalText, 48))
			}
			return w.Flush()
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of entries to list or export")
	cmd.Flags().StringVar(&show, "show", "", "Print one entry in full")
	cmd.Flags().StringVar(&exportDir, "export", "", "Write the entries as Markdown into this directory")
	cmd.Flags().BoolVar(&clear, "clear", false, "Delete all history")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print as JSON")
	cmd.MarkFlagsMutuallyExclusive("show", "export", "clear")
	return cmd
}

func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// oneLine collapses whitespace and truncates to max runes
func oneLine(s string, max int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
