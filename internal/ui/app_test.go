package ui

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sergi/go-diff/diffmatchpatch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"writon/internal/api"
	"writon/internal/commands"
	"writon/internal/db"
	"writon/internal/prefs"
	"writon/internal/session"
	"writon/internal/stats"
)

const testKey = "gsk_abcdefghijklmnopqrstuvwxyz0123456789"

type stubRemote struct {
	processed string
	err       error
}

func (s *stubRemote) Process(ctx context.Context, cfg prefs.Configuration, text string) (*api.ProcessResult, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &api.ProcessResult{
		OriginalText:  strings.TrimSpace(text),
		ProcessedText: s.processed,
		Mode:          cfg.Mode,
		Provider:      cfg.Provider,
		CaseStyle:     cfg.CaseStyle,
	}, nil
}

func (s *stubRemote) CheckHealth(ctx context.Context, cfg prefs.Configuration) api.HealthResult {
	return api.HealthResult{Status: api.HealthConnected}
}

type stubServer struct {
	gotName    string
	gotContent string
}

func (s *stubServer) UploadFile(ctx context.Context, name string, r io.Reader) (*api.UploadResult, error) {
	data, _ := io.ReadAll(r)
	s.gotName, s.gotContent = name, string(data)
	return &api.UploadResult{Filename: name, Content: "extracted: " + string(data)}, nil
}

func (s *stubServer) Providers(ctx context.Context) (*api.ProvidersInfo, error) {
	return &api.ProvidersInfo{
		AvailableProviders: []string{"groq", "openai"},
		CurrentProvider:    "groq",
		SupportedModes:     []string{"grammar"},
		SupportedCases:     []string{"sentence"},
	}, nil
}

func newTestModel(t *testing.T, remote *stubRemote) (*Model, *db.Store) {
	t.Helper()

	store, err := db.Open(filepath.Join(t.TempDir(), "writon.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	ctrl := session.New(
		prefs.NewStore(store, prefs.WithScratchDelay(10*time.Millisecond)),
		remote,
		session.WithHistory(store),
		session.WithHealthDelay(time.Hour),
	)
	t.Cleanup(ctrl.Close)

	m := New(Options{
		Controller: ctrl,
		Server:     &stubServer{},
		History:    store,
		ExportDir:  t.TempDir(),
	})
	m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return m, store
}

func TestView_LoadingUntilSized(t *testing.T) {
	ctrl := session.New(prefs.NewStore(newMemKV()), &stubRemote{})
	t.Cleanup(ctrl.Close)
	m := New(Options{Controller: ctrl})
	assert.Equal(t, "Loading...", m.View())

	m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	view := m.View()
	assert.Contains(t, view, "WRITON")
	assert.Contains(t, view, "Grammar Correction")
	assert.Contains(t, view, "Not connected")
}

func TestSubmit_ValidationErrorStaysLocal(t *testing.T) {
	m, _ := newTestModel(t, &stubRemote{processed: "x"})

	m.submit()
	assert.False(t, m.processing)
	assert.Equal(t, statusError, m.statusKind)
	assert.Equal(t, "Please enter some text to process", m.status)
}

func TestSubmit_ProcessesAndRecordsHistory(t *testing.T) {
	m, store := newTestModel(t, &stubRemote{processed: "This is a test."})
	m.dispatch(commands.SetKey{Key: testKey})
	m.setInput("Ths is a tset.")

	require.NotNil(t, m.submit())
	assert.True(t, m.processing)

	msg := m.processCmd()()
	m.Update(msg)

	assert.False(t, m.processing)
	assert.Equal(t, "Text processed successfully!", m.status)
	assert.Equal(t, focusResult, m.focus)
	assert.Equal(t, "This is a test.", m.ctrl.ProcessedText())
	assert.Contains(t, m.resultHeaderView(), "Words:")

	entries, err := store.ListHistory(10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "Ths is a tset.", entries[0].OriginalText)
}

func TestSubmit_FailureShowsError(t *testing.T) {
	m, _ := newTestModel(t, &stubRemote{err: &api.RemoteError{Status: 401, Message: "Invalid API key"}})
	m.dispatch(commands.SetKey{Key: testKey})
	m.setInput("hello")

	m.submit()
	m.Update(m.processCmd()())

	assert.Equal(t, statusError, m.statusKind)
	assert.Equal(t, "Invalid API key", m.status)
	assert.Nil(t, m.ctrl.Result())
	assert.Equal(t, "hello", m.input.Value())
}

func TestDispatch_Configuration(t *testing.T) {
	m, _ := newTestModel(t, &stubRemote{})

	m.dispatch(commands.SetMode{Mode: prefs.ModeTranslate})
	assert.Equal(t, "Translate mode selected", m.status)

	m.dispatch(commands.SetLanguage{Target: prefs.CustomLanguage, Custom: "Klingon"})
	m.dispatch(commands.SetProvider{Provider: "openai"})
	m.dispatch(commands.SetCase{Style: prefs.CaseUpper})
	m.dispatch(commands.SetModel{Model: "gpt-4o-mini"})

	cfg := m.ctrl.Configuration()
	assert.Equal(t, prefs.ModeTranslate, cfg.Mode)
	assert.Equal(t, prefs.CustomLanguage, cfg.TargetLanguage)
	assert.Equal(t, "Klingon", cfg.CustomLanguage)
	assert.Equal(t, "openai", cfg.Provider)
	assert.Equal(t, prefs.CaseUpper, cfg.CaseStyle)
	assert.Equal(t, "gpt-4o-mini", cfg.Model)
	assert.Contains(t, m.headerView(), "to Klingon")
}

func TestDispatch_KeyFormat(t *testing.T) {
	m, _ := newTestModel(t, &stubRemote{})

	m.dispatch(commands.SetKey{Key: "short"})
	assert.Equal(t, "Invalid API key format", m.status)
	assert.NotContains(t, m.View(), "short", "key must not be shown")

	m.dispatch(commands.SetKey{Key: testKey})
	assert.Equal(t, "API key updated", m.status)
	assert.NotContains(t, m.View(), testKey)
}

func TestDispatch_ParseError(t *testing.T) {
	m, _ := newTestModel(t, &stubRemote{})
	m.dispatch(commands.Parse("/mode poetry"))
	assert.Equal(t, statusError, m.statusKind)
	assert.Contains(t, m.status, "poetry")
}

func TestCommandBar(t *testing.T) {
	m, _ := newTestModel(t, &stubRemote{})

	m.Update(tea.KeyMsg{Type: tea.KeyCtrlP})
	assert.Equal(t, focusCommand, m.focus)

	m.command.SetValue("mode summarize")
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})

	assert.Equal(t, focusInput, m.focus)
	assert.Equal(t, prefs.ModeSummarize, m.ctrl.Configuration().Mode)
	assert.Empty(t, m.command.Value())
}

func TestMaskKeyCommand(t *testing.T) {
	m, _ := newTestModel(t, &stubRemote{})

	m.command.SetValue("/key gsk_secret")
	m.maskKeyCommand()
	assert.NotContains(t, m.command.View(), "gsk_secret")

	m.command.SetValue("/mode grammar")
	m.maskKeyCommand()
	assert.Contains(t, m.command.View(), "mode grammar")
}

func TestClipboard(t *testing.T) {
	m, _ := newTestModel(t, &stubRemote{})

	var copied string
	origRead, origWrite := readClipboard, writeClipboard
	t.Cleanup(func() { readClipboard, writeClipboard = origRead, origWrite })
	readClipboard = func() (string, error) { return "from clipboard", nil }
	writeClipboard = func(s string) error { copied = s; return nil }

	m.copyResult()
	assert.Equal(t, statusError, m.statusKind, "nothing to copy before a result")

	m.paste()
	assert.Equal(t, "from clipboard", m.input.Value())
	assert.Equal(t, "from clipboard", m.ctrl.Text())
	assert.Equal(t, "Text pasted from clipboard", m.status)

	m.ctrl.ShowResult(api.ProcessResult{OriginalText: "a", ProcessedText: "b"}, time.Second)
	m.copyResult()
	assert.Equal(t, "b", copied)
	assert.Equal(t, "Text copied to clipboard!", m.status)

	readClipboard = func() (string, error) { return "", errors.New("no display") }
	m.paste()
	assert.Equal(t, "Unable to access clipboard. Please paste manually.", m.status)
	assert.Equal(t, "from clipboard", m.input.Value())
}

func TestClearText_NeedsSecondPress(t *testing.T) {
	m, _ := newTestModel(t, &stubRemote{})
	m.setInput("keep me?")

	m.Update(tea.KeyMsg{Type: tea.KeyCtrlL})
	assert.Equal(t, "keep me?", m.ctrl.Text())
	assert.Contains(t, m.status, "again")

	m.Update(tea.KeyMsg{Type: tea.KeyCtrlL})
	assert.Empty(t, m.ctrl.Text())
	assert.Empty(t, m.input.Value())
	assert.Equal(t, "Text cleared", m.status)
}

func TestClearText_OtherKeyCancelsConfirm(t *testing.T) {
	m, _ := newTestModel(t, &stubRemote{})
	m.setInput("keep me")

	m.Update(tea.KeyMsg{Type: tea.KeyCtrlL})
	m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m.Update(tea.KeyMsg{Type: tea.KeyCtrlL})
	assert.Equal(t, "keep me", m.ctrl.Text())
}

func TestUpload(t *testing.T) {
	m, _ := newTestModel(t, &stubRemote{})
	server := m.server.(*stubServer)

	path := filepath.Join(t.TempDir(), "notes.pdf")
	require.NoError(t, os.WriteFile(path, []byte("pdf bytes"), 0644))

	m.Update(m.uploadCmd(path)())

	assert.Equal(t, "notes.pdf", server.gotName)
	assert.Equal(t, "pdf bytes", server.gotContent)
	assert.Equal(t, "extracted: pdf bytes", m.input.Value())
	assert.Equal(t, "Successfully uploaded notes.pdf", m.status)

	m.Update(m.uploadCmd(filepath.Join(t.TempDir(), "missing.pdf"))())
	assert.Equal(t, statusError, m.statusKind)
}

func TestDownloadAndAgain(t *testing.T) {
	m, _ := newTestModel(t, &stubRemote{})

	m.download("")
	assert.Equal(t, "Nothing to download yet", m.status)

	m.ctrl.ShowResult(api.ProcessResult{
		OriginalText: "a", ProcessedText: "b", Mode: prefs.ModeGrammar, Provider: "groq", CaseStyle: prefs.CaseSentence,
	}, time.Second)
	dir := t.TempDir()
	m.download(dir)
	assert.Contains(t, m.status, "File downloaded: writon-grammar-")

	files, _ := os.ReadDir(dir)
	require.Len(t, files, 1)

	m.again()
	assert.Nil(t, m.ctrl.Result())
	assert.Equal(t, "Ready to process again!", m.status)
	assert.Equal(t, focusInput, m.focus)
}

func TestConfigExportImport(t *testing.T) {
	m, _ := newTestModel(t, &stubRemote{})
	m.dispatch(commands.SetMode{Mode: prefs.ModeSummarize})
	m.dispatch(commands.SetKey{Key: testKey})

	dir := t.TempDir()
	m.dispatch(commands.ExportConfig{Dir: dir})
	assert.Contains(t, m.status, "Configuration exported successfully!")

	files, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, files, 1)

	m.dispatch(commands.SetMode{Mode: prefs.ModeGrammar})
	m.dispatch(commands.ImportConfig{Path: filepath.Join(dir, files[0].Name())})
	assert.Equal(t, "Configuration imported successfully!", m.status)
	assert.Equal(t, prefs.ModeSummarize, m.ctrl.Configuration().Mode)
	assert.Equal(t, testKey, m.ctrl.Configuration().APIKey, "import keeps the current key")

	bad := filepath.Join(dir, "bad.json")
	os.WriteFile(bad, []byte(`{"provider":"groq"}`), 0644)
	m.dispatch(commands.ImportConfig{Path: bad})
	assert.Equal(t, "Failed to import configuration: Invalid configuration file", m.status)
}

func TestHistoryBrowser(t *testing.T) {
	m, store := newTestModel(t, &stubRemote{})
	_, err := store.AddHistory(db.HistoryEntry{
		Mode: prefs.ModeGrammar, Provider: "groq", CaseStyle: prefs.CaseSentence,
		OriginalText: "teh cat", ProcessedText: "the cat", Duration: 1500 * time.Millisecond,
	})
	require.NoError(t, err)

	m.Update(tea.KeyMsg{Type: tea.KeyCtrlR})
	require.Equal(t, overlayHistory, m.overlay)
	assert.Contains(t, m.View(), "PROCESSING HISTORY")

	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, overlayNone, m.overlay)
	assert.Equal(t, "the cat", m.ctrl.ProcessedText())
	assert.Equal(t, "teh cat", m.input.Value())
	assert.Equal(t, 1500*time.Millisecond, m.ctrl.Elapsed())
}

func TestHistoryState_Navigation(t *testing.T) {
	h := NewHistoryState()
	assert.Nil(t, h.Selected())

	h.entries = []db.HistoryEntry{{ID: "a"}, {ID: "b"}, {ID: "c"}}
	h.Up()
	assert.Equal(t, "a", h.Selected().ID)
	h.Down()
	h.Down()
	h.Down()
	assert.Equal(t, "c", h.Selected().ID)
	h.Up()
	assert.Equal(t, "b", h.Selected().ID)
}

func TestHelpOverlay(t *testing.T) {
	m, _ := newTestModel(t, &stubRemote{})

	m.Update(tea.KeyMsg{Type: tea.KeyF1})
	assert.Equal(t, overlayHelp, m.overlay)
	assert.Contains(t, m.View(), "WRITON HELP")

	m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, overlayNone, m.overlay)
}

func TestCycleKeys(t *testing.T) {
	m, _ := newTestModel(t, &stubRemote{})

	m.Update(tea.KeyMsg{Type: tea.KeyF2})
	assert.Equal(t, prefs.ModeTranslate, m.ctrl.Configuration().Mode)
	m.Update(tea.KeyMsg{Type: tea.KeyF4})
	assert.Equal(t, "openai", m.ctrl.Configuration().Provider)
}

func TestStatusClears(t *testing.T) {
	m, _ := newTestModel(t, &stubRemote{})

	m.flash(statusInfo, "first", time.Second)
	stale := clearStatusMsg{seq: m.statusSeq}
	m.flash(statusInfo, "second", time.Second)

	m.Update(stale)
	assert.Equal(t, "second", m.status, "an older timer must not clear a newer status")

	m.Update(clearStatusMsg{seq: m.statusSeq})
	assert.Empty(t, m.status)
}

func TestRenderChanges(t *testing.T) {
	original, processed := "teh cat", "the cat"
	segs := stats.Segments(original, processed)

	var before, after, all strings.Builder
	var inserts, deletes int
	for _, seg := range segs {
		all.WriteString(seg.Text)
		switch seg.Op {
		case diffmatchpatch.DiffInsert:
			inserts++
			after.WriteString(seg.Text)
		case diffmatchpatch.DiffDelete:
			deletes++
			before.WriteString(seg.Text)
		default:
			before.WriteString(seg.Text)
			after.WriteString(seg.Text)
		}
	}
	assert.Equal(t, original, before.String())
	assert.Equal(t, processed, after.String())
	assert.Positive(t, inserts)
	assert.Positive(t, deletes)

	// Without a color profile the styles render bare text, so deleted and
	// inserted runs appear side by side in segment order
	out := renderChanges(original, processed)
	assert.Equal(t, all.String(), out)
	assert.True(t, strings.HasSuffix(out, " cat"), out)
}

func TestHelpContent_CharacterMeter(t *testing.T) {
	out := HelpContent(140, 200)
	assert.Contains(t, out, "CHARACTER METER")
	for _, level := range []string{"dim", "orange", "red"} {
		assert.Contains(t, out, level)
	}
	assert.Equal(t, Orange, LevelStyle(stats.LevelWarning).GetForeground())
	assert.Equal(t, Red, LevelStyle(stats.LevelOver).GetForeground())
}

func TestNext(t *testing.T) {
	items := []string{"a", "b", "c"}
	assert.Equal(t, "b", next(items, "a"))
	assert.Equal(t, "a", next(items, "c"))
	assert.Equal(t, "a", next(items, "zzz"))
}

type memKV struct{ data map[string]string }

func newMemKV() *memKV { return &memKV{data: map[string]string{}} }

func (m *memKV) Get(key string) (string, bool, error) {
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *memKV) Set(key, value string) error {
	m.data[key] = value
	return nil
}

func (m *memKV) Delete(key string) error {
	delete(m.data, key)
	return nil
}
