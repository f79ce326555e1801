// internal/ui/history.go
package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"writon/internal/api"
	"writon/internal/db"
	"writon/internal/prefs"
	"writon/internal/provider"
)

// historyLimit caps how many past runs the browser lists
const historyLimit = 200

// HistoryStore is the part of the database the history browser needs
type HistoryStore interface {
	ListHistory(limit int) ([]db.HistoryEntry, error)
}

// HistoryState holds the state for the history browser
type HistoryState struct {
	entries   []db.HistoryEntry
	cursor    int
	scrollTop int
	maxHeight int
}

// NewHistoryState creates a new history state
func NewHistoryState() *HistoryState {
	return &HistoryState{
		maxHeight: 20, // default, will be updated based on terminal size
	}
}

// Up moves the cursor up
func (h *HistoryState) Up() {
	if h.cursor > 0 {
		h.cursor--
		if h.cursor < h.scrollTop {
			h.scrollTop = h.cursor
		}
	}
}

// Down moves the cursor down
func (h *HistoryState) Down() {
	if h.cursor < len(h.entries)-1 {
		h.cursor++
		if h.cursor >= h.scrollTop+h.maxHeight {
			h.scrollTop = h.cursor - h.maxHeight + 1
		}
	}
}

// Selected returns the currently selected entry, or nil if none
func (h *HistoryState) Selected() *db.HistoryEntry {
	if h.cursor >= 0 && h.cursor < len(h.entries) {
		return &h.entries[h.cursor]
	}
	return nil
}

// Entries returns the loaded entries, newest first
func (h *HistoryState) Entries() []db.HistoryEntry {
	return h.entries
}

// Load reads the most recent runs from the database
func (h *HistoryState) Load(store HistoryStore) error {
	if store == nil {
		return fmt.Errorf("database not available")
	}
	entries, err := store.ListHistory(historyLimit)
	if err != nil {
		return err
	}
	h.entries = entries
	h.cursor = 0
	h.scrollTop = 0
	return nil
}

// SetMaxHeight updates the max visible height
func (h *HistoryState) SetMaxHeight(height int) {
	h.maxHeight = height - 10 // Leave room for header/footer
	if h.maxHeight < 5 {
		h.maxHeight = 5
	}
}

// ResultOf turns a stored run back into a result for display
func ResultOf(e *db.HistoryEntry) api.ProcessResult {
	return api.ProcessResult{
		OriginalText:   e.OriginalText,
		ProcessedText:  e.ProcessedText,
		Mode:           e.Mode,
		Provider:       e.Provider,
		CaseStyle:      e.CaseStyle,
		TargetLanguage: e.TargetLanguage,
	}
}

// preview flattens text to one line of at most n runes
func preview(text string, n int) string {
	flat := strings.Join(strings.Fields(text), " ")
	runes := []rune(flat)
	if len(runes) > n {
		return string(runes[:n-2]) + ".."
	}
	return flat
}

// Render renders the history browser overlay
func (h *HistoryState) Render(width, height int) string {
	var content strings.Builder

	content.WriteString(TitleStyle.Render("PROCESSING HISTORY"))
	content.WriteString("\n")
	content.WriteString(DimStyle.Render("Select a past run to reopen it"))
	content.WriteString("\n\n")

	if len(h.entries) == 0 {
		content.WriteString(DimStyle.Render("No history yet."))
		content.WriteString("\n\n")
		content.WriteString(DimStyle.Render("Process some text and it will appear here."))
	} else {
		visibleEnd := h.scrollTop + h.maxHeight
		if visibleEnd > len(h.entries) {
			visibleEnd = len(h.entries)
		}

		header := fmt.Sprintf("  %-16s  %-10s  %-10s  %s", "When", "Mode", "Provider", "Text")
		content.WriteString(DimStyle.Render(header))
		content.WriteString("\n")
		content.WriteString(DimStyle.Render(strings.Repeat("-", 75)))
		content.WriteString("\n")

		for i := h.scrollTop; i < visibleEnd; i++ {
			e := h.entries[i]

			created := e.CreatedAt.Local()
			timeStr := created.Format("2006-01-02 15:04")
			if time.Since(created) < 24*time.Hour {
				timeStr = created.Format("Today 15:04")
			}

			mode := e.Mode
			if mode == prefs.ModeTranslate && e.TargetLanguage != "" {
				mode = "to " + e.TargetLanguage
			}

			cursor := "  "
			lineStyle := DimStyle
			if i == h.cursor {
				cursor = "> "
				lineStyle = lipgloss.NewStyle().Foreground(Cyan)
			}

			providerStr := lipgloss.NewStyle().
				Foreground(ProviderColor(e.Provider)).
				Width(10).
				Render(provider.DisplayName(e.Provider))
			line := fmt.Sprintf("%-16s  %-10s  %s  %s",
				timeStr, preview(mode, 10), providerStr, preview(e.OriginalText, 32))

			content.WriteString(cursor)
			content.WriteString(lineStyle.Render(line))
			content.WriteString("\n")
		}

		if len(h.entries) > h.maxHeight {
			scrollInfo := fmt.Sprintf("Showing %d-%d of %d",
				h.scrollTop+1, visibleEnd, len(h.entries))
			content.WriteString("\n")
			content.WriteString(DimStyle.Render(scrollInfo))
		}
	}

	content.WriteString("\n\n")
	content.WriteString(DimStyle.Render("Up/Down: Navigate | Enter: Open | e: Export | Esc: Close"))

	return overlayBox(width, height, 2, content.String())
}
