// internal/ui/actions.go
package ui

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sergi/go-diff/diffmatchpatch"
	"go.uber.org/zap"

	"writon/internal/commands"
	"writon/internal/export"
	"writon/internal/input"
	"writon/internal/prefs"
	"writon/internal/provider"
	"writon/internal/session"
	"writon/internal/stats"
	"writon/internal/validate"
)

// Swapped out in tests
var (
	readClipboard  = clipboard.ReadAll
	writeClipboard = clipboard.WriteAll
)

func (m *Model) submit() tea.Cmd {
	if m.processing {
		return m.flash(statusError, session.ErrBusy.Error(), shortStatus)
	}
	if err := validate.ValidateSubmission(m.ctrl.Configuration(), m.ctrl.Text()); err != nil {
		return m.flash(statusError, err.Error(), longStatus)
	}

	m.processing = true
	m.status = ""
	return tea.Batch(m.processCmd(), m.spinner.Tick)
}

// processCmd runs the submission off the update loop
func (m *Model) processCmd() tea.Cmd {
	ctrl := m.ctrl
	return func() tea.Msg {
		result, err := ctrl.Submit(context.Background())
		return processedMsg{result: result, err: err}
	}
}

func (m *Model) healthCmd() tea.Cmd {
	ctrl := m.ctrl
	return func() tea.Msg {
		return connectivityMsg(ctrl.CheckNow(context.Background()))
	}
}

func (m *Model) uploadCmd(path string) tea.Cmd {
	server := m.server
	return func() tea.Msg {
		f, name, err := input.OpenForUpload(path)
		if err != nil {
			return uploadedMsg{err: err}
		}
		defer f.Close()
		result, err := server.UploadFile(context.Background(), name, f)
		return uploadedMsg{result: result, err: err}
	}
}

func (m *Model) providersCmd() tea.Cmd {
	server := m.server
	return func() tea.Msg {
		info, err := server.Providers(context.Background())
		return providersMsg{info: info, err: err}
	}
}

func (m *Model) copyResult() tea.Cmd {
	text := m.ctrl.ProcessedText()
	if text == "" {
		return m.flash(statusError, "Nothing to copy yet", shortStatus)
	}
	if err := writeClipboard(text); err != nil {
		m.log.Warn("clipboard write", zap.Error(err))
		return m.flash(statusError, "Unable to access clipboard. Select the result and copy manually.", longStatus)
	}
	return m.flash(statusSuccess, "Text copied to clipboard!", shortStatus)
}

func (m *Model) paste() tea.Cmd {
	text, err := readClipboard()
	if err != nil {
		m.log.Warn("clipboard read", zap.Error(err))
		m.setFocus(focusInput)
		return m.flash(statusError, "Unable to access clipboard. Please paste manually.", longStatus)
	}
	if text == "" {
		return nil
	}
	m.setInput(text)
	m.setFocus(focusInput)
	return m.flash(statusSuccess, "Text pasted from clipboard", shortStatus)
}

// clearText asks for a second press before discarding non-empty input
func (m *Model) clearText() tea.Cmd {
	if strings.TrimSpace(m.ctrl.Text()) == "" {
		return nil
	}
	if !m.confirmClear {
		m.confirmClear = true
		return m.flash(statusInfo, "Press Ctrl+L again to clear all text", longStatus)
	}
	m.confirmClear = false
	m.ctrl.ClearText()
	m.input.Reset()
	m.setFocus(focusInput)
	return m.flash(statusInfo, "Text cleared", shortStatus)
}

func (m *Model) download(dir string) tea.Cmd {
	r := m.ctrl.Result()
	if r == nil {
		return m.flash(statusError, "Nothing to download yet", shortStatus)
	}
	if dir == "" {
		dir = m.exportDir
	}
	path, err := export.WriteReport(&export.Report{
		Original:       r.OriginalText,
		Processed:      r.ProcessedText,
		Mode:           r.Mode,
		CaseStyle:      r.CaseStyle,
		Provider:       r.Provider,
		TargetLanguage: r.TargetLanguage,
		CreatedAt:      m.now(),
	}, input.ExpandHome(dir))
	if err != nil {
		return m.flash(statusError, err.Error(), longStatus)
	}
	return m.flash(statusSuccess, "File downloaded: "+filepath.Base(path), longStatus)
}

func (m *Model) again() tea.Cmd {
	m.ctrl.Reset()
	m.showChanges = false
	m.refreshResult()
	m.setFocus(focusInput)
	return m.flash(statusInfo, "Ready to process again!", shortStatus)
}

func (m *Model) openHistory() tea.Cmd {
	if err := m.browser.Load(m.history); err != nil {
		return m.flash(statusError, "History unavailable: "+err.Error(), longStatus)
	}
	m.overlay = overlayHistory
	return nil
}

func (m *Model) exportHistory() tea.Cmd {
	entries := m.browser.Entries()
	if len(entries) == 0 {
		return m.flash(statusError, "No history to export", shortStatus)
	}
	path, err := export.WriteHistory(entries, input.ExpandHome(m.exportDir), m.now())
	if err != nil {
		return m.flash(statusError, err.Error(), longStatus)
	}
	m.overlay = overlayNone
	return m.flash(statusSuccess, "History exported: "+filepath.Base(path), longStatus)
}

func (m *Model) setMode(mode string) tea.Cmd {
	m.ctrl.SetMode(mode)
	return m.flash(statusSuccess, strings.ToUpper(mode[:1])+mode[1:]+" mode selected", shortStatus)
}

func (m *Model) setCase(style string) tea.Cmd {
	m.ctrl.SetCaseStyle(style)
	return m.flash(statusInfo, "Case style: "+prefs.CaseLabel(style), shortStatus)
}

func (m *Model) setProvider(id string) tea.Cmd {
	m.ctrl.SetProvider(id)
	return m.flash(statusInfo, "Provider: "+provider.DisplayName(id)+" (get a key at "+provider.KeyURL(id)+")", longStatus)
}

func (m *Model) setKey(key string) tea.Cmd {
	m.ctrl.SetAPIKey(key)
	cfg := m.ctrl.Configuration()
	switch {
	case strings.TrimSpace(key) == "":
		return m.flash(statusInfo, "API key cleared", shortStatus)
	case !validate.IsValidAPIKeyFormat(cfg.Provider, strings.TrimSpace(key)):
		return m.flash(statusError, "Invalid API key format", longStatus)
	default:
		return m.flash(statusSuccess, "API key updated", shortStatus)
	}
}

// runCommandBar executes the command bar contents and returns to the input
func (m *Model) runCommandBar() tea.Cmd {
	line := strings.TrimSpace(m.command.Value())
	m.command.SetValue("")
	m.maskKeyCommand()
	m.setFocus(focusInput)
	if line == "" {
		return nil
	}
	if !strings.HasPrefix(line, "/") {
		line = "/" + line
	}
	return m.dispatch(commands.Parse(line))
}

// dispatch applies one parsed slash command
func (m *Model) dispatch(cmd commands.Command) tea.Cmd {
	switch c := cmd.(type) {
	case nil:
		return nil
	case commands.ParseError:
		return m.flash(statusError, c.Message, longStatus)
	case commands.Help:
		m.overlay = overlayHelp
	case commands.SetMode:
		return m.setMode(c.Mode)
	case commands.SetProvider:
		return m.setProvider(c.Provider)
	case commands.SetModel:
		m.ctrl.SetModel(c.Model)
		if c.Model == "" {
			return m.flash(statusInfo, "Using the default model ("+m.ctrl.ModelPlaceholder()+")", shortStatus)
		}
		return m.flash(statusInfo, "Model: "+c.Model, shortStatus)
	case commands.SetKey:
		return m.setKey(c.Key)
	case commands.SetCase:
		return m.setCase(c.Style)
	case commands.SetLanguage:
		m.ctrl.SetTargetLanguage(c.Target)
		lang := c.Target
		if c.Target == prefs.CustomLanguage {
			m.ctrl.SetCustomLanguage(c.Custom)
			lang = c.Custom
		}
		if !m.ctrl.LanguageVisible() {
			return m.flash(statusInfo, "Target language: "+lang+" (used in translate mode)", shortStatus)
		}
		return m.flash(statusInfo, "Target language: "+lang, shortStatus)
	case commands.Upload:
		m.status = "Uploading " + filepath.Base(c.Path) + "..."
		m.statusKind = statusInfo
		return m.uploadCmd(c.Path)
	case commands.Download:
		return m.download(c.Dir)
	case commands.ExportConfig:
		dir := c.Dir
		if dir == "" {
			dir = m.exportDir
		}
		path, err := export.WriteConfig(m.ctrl.Configuration(), input.ExpandHome(dir), m.now())
		if err != nil {
			return m.flash(statusError, err.Error(), longStatus)
		}
		m.log.Info("configuration exported", zap.String("path", path))
		return m.flash(statusSuccess, "Configuration exported successfully! ("+filepath.Base(path)+")", longStatus)
	case commands.ImportConfig:
		next, err := export.ReadConfig(input.ExpandHome(c.Path), m.ctrl.Configuration())
		if err != nil {
			return m.flash(statusError, "Failed to import configuration: "+err.Error(), longStatus)
		}
		m.ctrl.ApplyConfiguration(next)
		return m.flash(statusSuccess, "Configuration imported successfully!", longStatus)
	case commands.Copy:
		return m.copyResult()
	case commands.Paste:
		return m.paste()
	case commands.Clear:
		m.confirmClear = true
		return m.clearText()
	case commands.Health:
		return tea.Batch(m.healthCmd(), m.flash(statusInfo, "Checking API key...", shortStatus))
	case commands.ShowHistory:
		return m.openHistory()
	case commands.Again:
		return m.again()
	case commands.Providers:
		return m.providersCmd()
	case commands.Quit:
		return tea.Quit
	}
	return nil
}

// renderChanges shows the result with deletions struck out and insertions
// underlined
func renderChanges(original, processed string) string {
	var sb strings.Builder
	for _, seg := range stats.Segments(original, processed) {
		switch seg.Op {
		case diffmatchpatch.DiffInsert:
			sb.WriteString(InsertStyle.Render(seg.Text))
		case diffmatchpatch.DiffDelete:
			sb.WriteString(DeleteStyle.Render(seg.Text))
		default:
			sb.WriteString(seg.Text)
		}
	}
	return sb.String()
}
