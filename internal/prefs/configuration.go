// Package prefs persists the user's processing preferences and the scratch
// text buffer to a durable key/value backend.
package prefs

import (
	"encoding/json"

	"writon/internal/provider"
)

// Storage keys. These must stay stable across releases.
const (
	ConfigKey  = "writon-config"
	ScratchKey = "writon-current-text"
)

// Processing modes
const (
	ModeGrammar   = "grammar"
	ModeTranslate = "translate"
	ModeSummarize = "summarize"
	ModeProcess   = "process"
)

// Case styles understood by the server
const (
	CaseSentence = "sentence"
	CaseLower    = "lower"
	CaseUpper    = "upper"
	CaseTitle    = "title"
)

// CustomLanguage is the target-language sentinel that defers to the free-form field
const CustomLanguage = "Custom"

// Modes lists the selectable modes in display order
var Modes = []string{ModeGrammar, ModeTranslate, ModeSummarize, ModeProcess}

// CaseStyles lists the selectable case styles in display order
var CaseStyles = []string{CaseSentence, CaseLower, CaseUpper, CaseTitle}

// Languages lists the preset translation targets
var Languages = []string{
	"Spanish", "French", "German", "Italian", "Portuguese", "Dutch",
	"Russian", "Chinese", "Japanese", "Korean", "Arabic", "Hindi",
	CustomLanguage,
}

// Configuration is the persisted user preference set
type Configuration struct {
	Provider       string `json:"provider"`
	APIKey         string `json:"apiKey"`
	Model          string `json:"model"`
	Mode           string `json:"mode"`
	CaseStyle      string `json:"caseStyle"`
	TargetLanguage string `json:"targetLanguage"`
	CustomLanguage string `json:"customLanguage"`
}

// DefaultConfiguration returns the configuration used when nothing is stored
func DefaultConfiguration() Configuration {
	return Configuration{
		Provider:       provider.Groq,
		Mode:           ModeGrammar,
		CaseStyle:      CaseSentence,
		TargetLanguage: "Spanish",
	}
}

// decodeConfiguration applies stored fields over the defaults. A field only
// overrides its default when it is a non-empty JSON string; malformed
// top-level JSON yields the defaults unchanged.
func decodeConfiguration(data string) (Configuration, error) {
	cfg := DefaultConfiguration()

	var raw map[string]json.RawMessage
	if err := json.Unmarshal([]byte(data), &raw); err != nil {
		return cfg, err
	}

	fields := map[string]*string{
		"provider":       &cfg.Provider,
		"apiKey":         &cfg.APIKey,
		"model":          &cfg.Model,
		"mode":           &cfg.Mode,
		"caseStyle":      &cfg.CaseStyle,
		"targetLanguage": &cfg.TargetLanguage,
		"customLanguage": &cfg.CustomLanguage,
	}
	for name, dst := range fields {
		msg, ok := raw[name]
		if !ok {
			continue
		}
		var s string
		if err := json.Unmarshal(msg, &s); err != nil || s == "" {
			continue
		}
		*dst = s
	}

	return cfg, nil
}

var modeLabels = map[string]string{
	ModeGrammar:   "Grammar Correction",
	ModeTranslate: "Translation",
	ModeSummarize: "Summarization",
	ModeProcess:   "General Processing",
}

var caseLabels = map[string]string{
	CaseSentence: "Sentence case",
	CaseLower:    "lowercase",
	CaseUpper:    "UPPERCASE",
	CaseTitle:    "Title Case",
}

// ModeLabel returns the display name of a mode, or the mode itself if unknown
func ModeLabel(mode string) string {
	if l, ok := modeLabels[mode]; ok {
		return l
	}
	return mode
}

// CaseLabel returns the display name of a case style, or the style itself if unknown
func CaseLabel(style string) string {
	if l, ok := caseLabels[style]; ok {
		return l
	}
	return style
}
