// Package ui is the writon terminal front end: an input editor, a result pane,
// a slash-command bar and overlays for help and history.
package ui

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"writon/internal/api"
	"writon/internal/prefs"
	"writon/internal/provider"
	"writon/internal/session"
	"writon/internal/stats"
	"writon/internal/validate"
)

// Server is the part of the API client the UI calls directly. Processing
// and key checks go through the session controller.
type Server interface {
	UploadFile(ctx context.Context, name string, r io.Reader) (*api.UploadResult, error)
	Providers(ctx context.Context) (*api.ProvidersInfo, error)
}

// Options wires the model to the rest of the program
type Options struct {
	Controller *session.Controller
	Server     Server
	History    HistoryStore
	Log        *zap.Logger
	// Where downloads and exports go when a command names no directory
	ExportDir string
}

type focusArea int

const (
	focusInput focusArea = iota
	focusResult
	focusCommand
)

type overlayKind int

const (
	overlayNone overlayKind = iota
	overlayHelp
	overlayHistory
)

type statusKind int

const (
	statusInfo statusKind = iota
	statusSuccess
	statusError
)

// Status lifetimes
const (
	shortStatus = 2 * time.Second
	longStatus  = 5 * time.Second
)

// Messages
type processedMsg struct {
	result *api.ProcessResult
	err    error
}

type uploadedMsg struct {
	result *api.UploadResult
	err    error
}

type providersMsg struct {
	info *api.ProvidersInfo
	err  error
}

type connectivityMsg session.ConnectivityState

type clearStatusMsg struct{ seq int }

type Model struct {
	ctrl      *session.Controller
	server    Server
	history   HistoryStore
	log       *zap.Logger
	exportDir string
	now       func() time.Time

	input    textarea.Model
	result   viewport.Model
	command  textinput.Model
	spinner  spinner.Model
	renderer *glamour.TermRenderer
	browser  *HistoryState

	focus        focusArea
	overlay      overlayKind
	processing   bool
	showChanges  bool
	confirmClear bool

	status     string
	statusKind statusKind
	statusSeq  int

	width, height int
	ready         bool
}

// New builds the model and restores the scratch buffer into the editor
func New(opts Options) *Model {
	log := opts.Log
	if log == nil {
		log = zap.NewNop()
	}

	in := textarea.New()
	in.Placeholder = "Type or paste the text to process..."
	in.CharLimit = 0
	in.ShowLineNumbers = false
	// Ctrl+V replaces the whole input instead of inserting
	in.KeyMap.Paste.SetEnabled(false)
	in.Focus()

	cmd := textinput.New()
	cmd.Prompt = "/ "
	cmd.Placeholder = "mode translate, lang French, upload ~/notes.txt ..."

	sp := spinner.New(spinner.WithSpinner(spinner.Dot))
	sp.Style = StatusWarn

	m := &Model{
		ctrl:      opts.Controller,
		server:    opts.Server,
		history:   opts.History,
		log:       log,
		exportDir: opts.ExportDir,
		now:       time.Now,
		input:     in,
		result:    viewport.New(80, 10),
		command:   cmd,
		spinner:   sp,
		browser:   NewHistoryState(),
		status:    "Ready. Ctrl+S to process, F1 for help",
	}

	if m.ctrl.Restore() {
		m.input.SetValue(m.ctrl.Text())
	}
	m.refreshResult()
	return m
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(textarea.Blink, m.healthCmd())
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		return m, m.handleKey(msg)

	case processedMsg:
		m.processing = false
		if msg.err != nil {
			return m, m.flash(statusError, msg.err.Error(), longStatus)
		}
		m.showChanges = false
		m.refreshResult()
		m.setFocus(focusResult)
		return m, m.flash(statusSuccess, "Text processed successfully!", longStatus)

	case uploadedMsg:
		if msg.err != nil {
			return m, m.flash(statusError, msg.err.Error(), longStatus)
		}
		m.setInput(msg.result.Content)
		m.setFocus(focusInput)
		return m, m.flash(statusSuccess, "Successfully uploaded "+msg.result.Filename, longStatus)

	case providersMsg:
		if msg.err != nil {
			return m, m.flash(statusError, msg.err.Error(), longStatus)
		}
		return m, m.flash(statusInfo, describeProviders(msg.info), longStatus)

	case connectivityMsg:
		// Rendered from the controller's state; the message only wakes the view
		return m, nil

	case clearStatusMsg:
		if msg.seq == m.statusSeq {
			m.status = ""
		}
		return m, nil

	case spinner.TickMsg:
		if !m.processing {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, m.updateFocused(msg)
}

// updateFocused forwards a message to the focused widget
func (m *Model) updateFocused(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch m.focus {
	case focusInput:
		m.input, cmd = m.input.Update(msg)
		if v := m.input.Value(); v != m.ctrl.Text() {
			m.ctrl.SetText(v)
		}
	case focusResult:
		m.result, cmd = m.result.Update(msg)
	case focusCommand:
		m.command, cmd = m.command.Update(msg)
		m.maskKeyCommand()
	}
	return cmd
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	key := msg.String()
	if key == "ctrl+c" {
		return tea.Quit
	}

	switch m.overlay {
	case overlayHelp:
		if key == "esc" || key == "f1" || key == "q" {
			m.overlay = overlayNone
		}
		return nil
	case overlayHistory:
		return m.handleHistoryKey(key)
	}

	if key != "ctrl+l" {
		m.confirmClear = false
	}

	switch key {
	case "f1":
		m.overlay = overlayHelp
		return nil
	case "ctrl+s":
		return m.submit()
	case "ctrl+y":
		return m.copyResult()
	case "ctrl+v":
		return m.paste()
	case "ctrl+l":
		return m.clearText()
	case "ctrl+d":
		return m.download("")
	case "ctrl+n":
		return m.again()
	case "ctrl+t":
		m.showChanges = !m.showChanges
		m.refreshResult()
		return nil
	case "ctrl+r":
		return m.openHistory()
	case "ctrl+p":
		m.setFocus(focusCommand)
		return textinput.Blink
	case "f2":
		return m.setMode(next(prefs.Modes, m.ctrl.Configuration().Mode))
	case "f3":
		return m.setCase(next(prefs.CaseStyles, m.ctrl.Configuration().CaseStyle))
	case "f4":
		return m.setProvider(next(provider.IDs(), m.ctrl.Configuration().Provider))
	case "tab":
		if m.focus == focusInput {
			m.setFocus(focusResult)
		} else {
			m.setFocus(focusInput)
		}
		return nil
	case "esc":
		m.setFocus(focusInput)
		return nil
	case "enter":
		if m.focus == focusCommand {
			return m.runCommandBar()
		}
	}

	return m.updateFocused(msg)
}

func (m *Model) handleHistoryKey(key string) tea.Cmd {
	switch key {
	case "esc", "q", "ctrl+r":
		m.overlay = overlayNone
	case "up", "k":
		m.browser.Up()
	case "down", "j":
		m.browser.Down()
	case "enter":
		e := m.browser.Selected()
		if e == nil {
			return nil
		}
		m.overlay = overlayNone
		m.ctrl.ShowResult(ResultOf(e), e.Duration)
		m.setInput(e.OriginalText)
		m.showChanges = false
		m.refreshResult()
		m.setFocus(focusResult)
		return m.flash(statusInfo, "Reopened run from "+e.CreatedAt.Local().Format("2006-01-02 15:04"), shortStatus)
	case "e":
		return m.exportHistory()
	}
	return nil
}

func (m *Model) setFocus(f focusArea) {
	m.focus = f
	m.input.Blur()
	m.command.Blur()
	switch f {
	case focusInput:
		m.input.Focus()
	case focusCommand:
		m.command.Focus()
	}
}

// setInput replaces the editor contents and the controller's text together
func (m *Model) setInput(text string) {
	m.input.SetValue(text)
	m.ctrl.SetText(text)
}

// maskKeyCommand hides a key being typed into the command bar
func (m *Model) maskKeyCommand() {
	if strings.HasPrefix(strings.ToLower(strings.TrimPrefix(m.command.Value(), "/")), "key ") {
		m.command.EchoMode = textinput.EchoPassword
	} else {
		m.command.EchoMode = textinput.EchoNormal
	}
}

// flash shows a status line that clears itself after d
func (m *Model) flash(kind statusKind, text string, d time.Duration) tea.Cmd {
	m.statusSeq++
	seq := m.statusSeq
	m.status = text
	m.statusKind = kind
	return tea.Tick(d, func(time.Time) tea.Msg { return clearStatusMsg{seq: seq} })
}

func (m *Model) resize(width, height int) {
	m.width, m.height = width, height
	m.ready = true

	inner := width - 4
	if inner < 20 {
		inner = 20
	}
	body := height - 12
	if body < 10 {
		body = 10
	}
	inputHeight := body / 2
	m.input.SetWidth(inner)
	m.input.SetHeight(inputHeight)
	m.result.Width = inner
	m.result.Height = body - inputHeight
	m.command.Width = inner - 4
	m.browser.SetMaxHeight(height)

	renderer, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithWordWrap(inner),
	)
	if err != nil {
		m.log.Debug("markdown renderer unavailable", zap.Error(err))
		renderer = nil
	}
	m.renderer = renderer
	m.refreshResult()
}

// refreshResult redraws the result pane from the controller
func (m *Model) refreshResult() {
	m.result.SetContent(m.resultBody())
	m.result.GotoTop()
}

func (m *Model) resultBody() string {
	r := m.ctrl.Result()
	if r == nil {
		return DimStyle.Render("Results appear here. Press Ctrl+S to process the input.")
	}

	width := m.result.Width
	if m.showChanges {
		return lipgloss.NewStyle().Width(width).Render(renderChanges(r.OriginalText, r.ProcessedText))
	}
	if r.Mode == prefs.ModeSummarize && m.renderer != nil {
		if out, err := m.renderer.Render(r.ProcessedText); err == nil {
			return strings.TrimRight(out, "\n")
		}
	}
	return lipgloss.NewStyle().Width(width).Render(r.ProcessedText)
}

// next returns the item after current, wrapping around
func next(items []string, current string) string {
	for i, it := range items {
		if it == current {
			return items[(i+1)%len(items)]
		}
	}
	return items[0]
}

func describeProviders(info *api.ProvidersInfo) string {
	return fmt.Sprintf("Server providers: %s (current: %s) | modes: %s | cases: %s",
		strings.Join(info.AvailableProviders, ", "),
		info.CurrentProvider,
		strings.Join(info.SupportedModes, ", "),
		strings.Join(info.SupportedCases, ", "))
}

// View renders the screen
func (m *Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	switch m.overlay {
	case overlayHelp:
		return m.renderHelp()
	case overlayHistory:
		return m.browser.Render(m.width, m.height)
	}

	var sb strings.Builder
	sb.WriteString(m.headerView())
	sb.WriteString("\n")
	sb.WriteString(m.box(m.focus == focusInput).Render(m.input.View()))
	sb.WriteString("\n")
	sb.WriteString(m.meterView())
	sb.WriteString("\n")
	sb.WriteString(m.resultHeaderView())
	sb.WriteString("\n")
	sb.WriteString(m.box(m.focus == focusResult).Render(m.result.View()))
	sb.WriteString("\n")
	if m.focus == focusCommand {
		sb.WriteString(m.command.View())
	} else {
		sb.WriteString(DimStyle.Render("Ctrl+P commands | Ctrl+R history | F1 help | Ctrl+C quit"))
	}
	sb.WriteString("\n")
	sb.WriteString(m.statusView())
	return sb.String()
}

func (m *Model) box(active bool) lipgloss.Style {
	if active {
		return ActiveBox
	}
	return InactiveBox
}

func (m *Model) headerView() string {
	cfg := m.ctrl.Configuration()

	parts := []string{
		TitleStyle.Render("WRITON"),
		LabelStyle.Render(prefs.ModeLabel(cfg.Mode)),
		lipgloss.NewStyle().Foreground(ProviderColor(cfg.Provider)).Bold(true).Render(provider.DisplayName(cfg.Provider)),
	}
	if model := strings.TrimSpace(cfg.Model); model != "" {
		parts = append(parts, model)
	} else {
		parts = append(parts, DimStyle.Render(m.ctrl.ModelPlaceholder()))
	}
	parts = append(parts, prefs.CaseLabel(cfg.CaseStyle))
	if m.ctrl.LanguageVisible() {
		lang, ok := validate.ResolveTargetLanguage(cfg.Mode, cfg.TargetLanguage, cfg.CustomLanguage)
		if !ok {
			parts = append(parts, ErrorStyle.Render("no target language"))
		} else {
			parts = append(parts, "to "+lang)
		}
	}

	conn := m.ctrl.Connectivity()
	left := strings.Join(parts, DimStyle.Render(" | "))
	right := ConnectivityStyle(conn.Status).Render("● " + conn.Text())

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	return left + strings.Repeat(" ", gap) + right
}

func (m *Model) meterView() string {
	s := m.ctrl.TextStats()
	meter := LevelStyle(stats.CharLevel(s.Chars)).Render(fmt.Sprintf("%d/%d chars", s.Chars, stats.MaxChars))
	return fmt.Sprintf("%s %s", meter, DimStyle.Render(fmt.Sprintf("| %d words | %d sentences", s.Words, s.Sentences)))
}

func (m *Model) resultHeaderView() string {
	if m.processing {
		return m.spinner.View() + StatusWarn.Render(fmt.Sprintf(" Processing... %.1fs", m.ctrl.Elapsed().Seconds()))
	}

	r := m.ctrl.Result()
	if r == nil {
		return LabelStyle.Render("Result")
	}

	meta := []string{prefs.ModeLabel(r.Mode), provider.DisplayName(r.Provider), prefs.CaseLabel(r.CaseStyle)}
	if r.TargetLanguage != "" {
		meta = append(meta, r.TargetLanguage)
	}
	meta = append(meta, fmt.Sprintf("%.1fs", m.ctrl.Elapsed().Seconds()))

	line := LabelStyle.Render("Result") + DimStyle.Render(" | "+strings.Join(meta, " | "))
	if d, ok := m.ctrl.ResultStats(); ok {
		line += "  " + DimStyle.Render(fmt.Sprintf("%d words, %d chars", d.Original.Words, d.Original.Chars)) +
			"  " + deltaStyle(d.Words.Diff).Render("Words: "+d.Words.String()) +
			"  " + deltaStyle(d.Chars.Diff).Render("Chars: "+d.Chars.String())
	}
	if m.showChanges {
		line += "  " + StatusWarn.Render("[changes]")
	}
	return line
}

func deltaStyle(diff int) lipgloss.Style {
	switch {
	case diff > 0:
		return SuccessStyle
	case diff < 0:
		return lipgloss.NewStyle().Foreground(Red)
	default:
		return DimStyle
	}
}

func (m *Model) statusView() string {
	if m.status == "" {
		return ""
	}
	switch m.statusKind {
	case statusError:
		return ErrorStyle.Render(m.status)
	case statusSuccess:
		return SuccessStyle.Render(m.status)
	default:
		return LabelStyle.Render(m.status)
	}
}

// Relay forwards controller callbacks into the running program
type Relay struct {
	mu sync.Mutex
	p  *tea.Program
}

func (r *Relay) attach(p *tea.Program) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.p = p
}

// Connectivity is passed to session.OnConnectivity
func (r *Relay) Connectivity(s session.ConnectivityState) {
	r.mu.Lock()
	p := r.p
	r.mu.Unlock()
	if p != nil {
		// The callback can fire inside Update, where a blocking Send would deadlock
		go p.Send(connectivityMsg(s))
	}
}

// Run starts the TUI and blocks until the user quits
func Run(opts Options, relay *Relay) error {
	p := tea.NewProgram(New(opts), tea.WithAltScreen())
	if relay != nil {
		relay.attach(p)
	}
	_, err := p.Run()
	return err
}
