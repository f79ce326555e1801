// internal/ui/help.go
package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"writon/internal/provider"
	"writon/internal/stats"
)

var (
	helpTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(Cyan).
			MarginBottom(1)

	helpSectionStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(Yellow).
				MarginTop(1)

	helpKeyStyle = lipgloss.NewStyle().
			Foreground(Green).
			Bold(true)

	helpCmdStyle = lipgloss.NewStyle().
			Foreground(Magenta)

	helpDescStyle = lipgloss.NewStyle().
			Foreground(White)

	helpDimStyle = lipgloss.NewStyle().
			Foreground(Dim)
)

var keybindings = []struct {
	key  string
	desc string
}{
	{"Ctrl+S", "Process the input text"},
	{"Ctrl+Y", "Copy the result to the clipboard"},
	{"Ctrl+V", "Replace the input with the clipboard"},
	{"Ctrl+L", "Clear the input (press twice)"},
	{"Ctrl+D", "Download the result as a text report"},
	{"Ctrl+N", "Process again: drop the result, edit the input"},
	{"Ctrl+T", "Toggle inline changes in the result"},
	{"Ctrl+R", "Browse processing history"},
	{"Ctrl+P", "Open the command bar"},
	{"F2 / F3 / F4", "Cycle mode / case style / provider"},
	{"Tab", "Switch focus between input and result"},
	{"F1", "Toggle this help overlay"},
	{"Esc", "Close overlay / return to input"},
	{"Ctrl+C", "Quit"},
}

var slashCommands = []struct {
	cmd  string
	desc string
}{
	{"/mode <mode>", "grammar, translate, summarize or process"},
	{"/provider <id>", "groq, openai, google or anthropic"},
	{"/key <api-key>", "Set the provider API key (empty clears it)"},
	{"/model [name]", "Override the model (empty uses the default)"},
	{"/case <style>", "sentence, lower, upper or title"},
	{"/lang <language>", "Translation target; any other name is custom"},
	{"/upload <path>", "Extract a file's text into the input"},
	{"/download [dir]", "Save the result report"},
	{"/export [dir]", "Export settings without the API key"},
	{"/import <path>", "Import settings from an exported file"},
	{"/health", "Check the API key now"},
	{"/providers", "Show what the server supports"},
	{"/history", "Browse processing history"},
	{"/copy /paste /clear /again", "Same as their shortcuts"},
	{"/quit", "Quit"},
}

// HelpContent returns the formatted help overlay content
func HelpContent(width, height int) string {
	var b strings.Builder
	b.WriteString(helpTitleStyle.Render("WRITON HELP") + "\n")

	section(&b, "KEYBINDINGS")
	for _, kb := range keybindings {
		row(&b, helpKeyStyle.Width(14).Render(kb.key), kb.desc)
	}

	section(&b, "SLASH COMMANDS")
	for _, c := range slashCommands {
		row(&b, helpCmdStyle.Width(26).Render(c.cmd), c.desc)
	}

	section(&b, "API KEYS")
	for _, p := range provider.All() {
		name := lipgloss.NewStyle().Foreground(ProviderColor(p.ID)).Bold(true).Width(16).Render(p.Name)
		b.WriteString("  " + name + "  " + helpDimStyle.Render(p.KeyURL) + "\n")
	}

	section(&b, "CHARACTER METER")
	meter := []struct {
		level stats.Level
		name  string
		desc  string
	}{
		{stats.LevelNormal, "dim", "under the warning threshold"},
		{stats.LevelWarning, "orange", "close to the limit"},
		{stats.LevelOver, "red", "over the limit, submission is refused"},
	}
	for _, l := range meter {
		row(&b, LevelStyle(l.level).Width(8).Render(l.name), l.desc)
	}

	b.WriteString("\n")
	b.WriteString(lipgloss.PlaceHorizontal(width-8, lipgloss.Center,
		helpDimStyle.Render("F1 or Esc closes this help")))

	return overlayBox(width, height, 3, b.String())
}

func section(b *strings.Builder, title string) {
	b.WriteString("\n" + helpSectionStyle.Render(title) + "\n\n")
}

func row(b *strings.Builder, label, desc string) {
	b.WriteString("  " + label + "  " + helpDescStyle.Render(desc) + "\n")
}

func (m *Model) renderHelp() string {
	return HelpContent(m.width, m.height)
}
