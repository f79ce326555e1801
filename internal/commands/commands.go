// Package commands handles slash command parsing for the writon TUI.
package commands

import (
	"strings"

	"writon/internal/prefs"
	"writon/internal/provider"
)

// Command interface for all command types
type Command interface {
	Type() string
}

// Help returns help text
type Help struct{}

func (Help) Type() string { return "help" }

// SetMode switches the processing mode
type SetMode struct {
	Mode string
}

func (SetMode) Type() string { return "mode" }

// SetProvider switches the LLM provider
type SetProvider struct {
	Provider string
}

func (SetProvider) Type() string { return "provider" }

// SetModel overrides the model; an empty name restores the provider default
type SetModel struct {
	Model string
}

func (SetModel) Type() string { return "model" }

// SetKey replaces the API key; an empty key clears it
type SetKey struct {
	Key string
}

func (SetKey) Type() string { return "key" }

// SetCase picks the case style
type SetCase struct {
	Style string
}

func (SetCase) Type() string { return "case" }

// SetLanguage picks a translation target. Custom is set when Target is the
// Custom sentinel.
type SetLanguage struct {
	Target string
	Custom string
}

func (SetLanguage) Type() string { return "lang" }

// Upload sends a file to the server and loads its text into the input
type Upload struct {
	Path string
}

func (Upload) Type() string { return "upload" }

// ExportConfig writes the shareable configuration file
type ExportConfig struct {
	Dir string
}

func (ExportConfig) Type() string { return "export" }

// ImportConfig loads a configuration file
type ImportConfig struct {
	Path string
}

func (ImportConfig) Type() string { return "import" }

// Download saves the current result as a text report
type Download struct {
	Dir string
}

func (Download) Type() string { return "download" }

// Copy puts the processed text on the clipboard
type Copy struct{}

func (Copy) Type() string { return "copy" }

// Paste replaces the input with the clipboard contents
type Paste struct{}

func (Paste) Type() string { return "paste" }

// Clear empties the input
type Clear struct{}

func (Clear) Type() string { return "clear" }

// Health checks the API key now
type Health struct{}

func (Health) Type() string { return "health" }

// ShowHistory opens the history browser
type ShowHistory struct{}

func (ShowHistory) Type() string { return "history" }

// Again returns focus to the input for another run
type Again struct{}

func (Again) Type() string { return "again" }

// Providers asks the server what it supports
type Providers struct{}

func (Providers) Type() string { return "providers" }

// Quit exits the program
type Quit struct{}

func (Quit) Type() string { return "quit" }

// ParseError represents a command parsing error
type ParseError struct {
	Message string
}

func (ParseError) Type() string { return "error" }

// Parse parses user input and returns the appropriate Command.
// Returns nil if the input is not a slash command.
func Parse(input string) Command {
	input = strings.TrimSpace(input)
	if !strings.HasPrefix(input, "/") {
		return nil
	}

	// Split into command and arguments
	parts := strings.Fields(input)
	if len(parts) == 0 {
		return nil
	}

	cmd := strings.ToLower(parts[0])
	args := parts[1:]
	rest := strings.Join(args, " ")

	switch cmd {
	case "/help":
		return Help{}

	case "/mode":
		if len(args) == 0 {
			return ParseError{Message: "/mode requires one of: " + strings.Join(prefs.Modes, ", ")}
		}
		mode, ok := match(args[0], prefs.Modes)
		if !ok {
			return ParseError{Message: "unknown mode: " + args[0]}
		}
		return SetMode{Mode: mode}

	case "/provider":
		if len(args) == 0 {
			return ParseError{Message: "/provider requires one of: " + strings.Join(provider.IDs(), ", ")}
		}
		id, ok := match(args[0], provider.IDs())
		if !ok {
			return ParseError{Message: "unknown provider: " + args[0]}
		}
		return SetProvider{Provider: id}

	case "/model":
		return SetModel{Model: rest}

	case "/key":
		// Keys are case-sensitive; only the first field is used
		if len(args) == 0 {
			return SetKey{}
		}
		return SetKey{Key: args[0]}

	case "/case":
		if len(args) == 0 {
			return ParseError{Message: "/case requires one of: " + strings.Join(prefs.CaseStyles, ", ")}
		}
		style, ok := match(args[0], prefs.CaseStyles)
		if !ok {
			return ParseError{Message: "unknown case style: " + args[0]}
		}
		return SetCase{Style: style}

	case "/lang":
		if rest == "" {
			return ParseError{Message: "/lang requires a language"}
		}
		if lang, ok := match(rest, prefs.Languages); ok && lang != prefs.CustomLanguage {
			return SetLanguage{Target: lang}
		}
		return SetLanguage{Target: prefs.CustomLanguage, Custom: rest}

	case "/upload":
		if rest == "" {
			return ParseError{Message: "/upload requires a file path"}
		}
		return Upload{Path: rest}

	case "/export":
		return ExportConfig{Dir: rest}

	case "/import":
		if rest == "" {
			return ParseError{Message: "/import requires a file path"}
		}
		return ImportConfig{Path: rest}

	case "/download", "/save":
		return Download{Dir: rest}

	case "/copy":
		return Copy{}

	case "/paste":
		return Paste{}

	case "/clear":
		return Clear{}

	case "/health":
		return Health{}

	case "/history":
		return ShowHistory{}

	case "/again":
		return Again{}

	case "/providers":
		return Providers{}

	case "/quit", "/exit":
		return Quit{}

	default:
		return ParseError{Message: "unknown command: " + cmd}
	}
}

// match finds value in options, ignoring case
func match(value string, options []string) (string, bool) {
	for _, opt := range options {
		if strings.EqualFold(value, opt) {
			return opt, true
		}
	}
	return "", false
}

// HelpText returns the help text for all available commands.
func HelpText() string {
	return `Available commands:
  /help                  - Show this help
  /mode <mode>           - grammar, translate, summarize or process
  /provider <name>       - groq, openai, google or anthropic
  /model [name]          - Override the model (empty for default)
  /key [key]             - Set the API key (empty to clear)
  /case <style>          - sentence, lower, upper or title
  /lang <language>       - Translation target (any name works)
  /upload <path>         - Load a file's text through the server
  /export [dir]          - Export configuration (without key)
  /import <path>         - Import a configuration file
  /download [dir]        - Save the result as a text report
  /copy                  - Copy the result to the clipboard
  /paste                 - Replace the input with the clipboard
  /clear                 - Clear the input
  /health                - Check the API key now
  /history               - Browse past results
  /again                 - Edit the input for another run
  /providers             - Show what the server supports
  /quit                  - Exit`
}
