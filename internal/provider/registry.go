// internal/provider/registry.go
package provider

import (
	"regexp"
	"strings"
)

const (
	Groq      = "groq"
	OpenAI    = "openai"
	Google    = "google"
	Anthropic = "anthropic"
)

// Header suffixes understood by the processing API
const (
	SuffixKey   = "key"
	SuffixModel = "model"
)

// ProviderHeader carries the provider name on every request
const ProviderHeader = "X-Provider"

// Info describes a supported LLM vendor
type Info struct {
	ID               string
	Name             string // Display name
	KeyPattern       *regexp.Regexp
	ModelPlaceholder string
	KeyURL           string // Where users obtain a key
}

var registry = []Info{
	{
		ID:               Groq,
		Name:             "Groq",
		KeyPattern:       regexp.MustCompile(`^gsk_[a-zA-Z0-9_-]{32,}$`),
		ModelPlaceholder: "llama-3.1-70b-versatile",
		KeyURL:           "https://console.groq.com/keys",
	},
	{
		ID:               OpenAI,
		Name:             "OpenAI",
		KeyPattern:       regexp.MustCompile(`^sk-[a-zA-Z0-9_-]{32,}$`),
		ModelPlaceholder: "gpt-4o",
		KeyURL:           "https://platform.openai.com/api-keys",
	},
	{
		ID:               Google,
		Name:             "Google Gemini",
		KeyPattern:       regexp.MustCompile(`^AI[a-zA-Z0-9_-]{32,}$`),
		ModelPlaceholder: "gemini-1.5-flash",
		KeyURL:           "https://aistudio.google.com/app/apikey",
	},
	{
		ID:               Anthropic,
		Name:             "Anthropic Claude",
		KeyPattern:       regexp.MustCompile(`^sk-ant-[a-zA-Z0-9_-]{32,}$`),
		ModelPlaceholder: "claude-3-haiku-20240307",
		KeyURL:           "https://console.anthropic.com/settings/keys",
	},
}

var byID = func() map[string]Info {
	m := make(map[string]Info, len(registry))
	for _, info := range registry {
		m[info.ID] = info
	}
	return m
}()

// Lookup returns the registry entry for a provider ID
func Lookup(id string) (Info, bool) {
	info, ok := byID[id]
	return info, ok
}

// All returns every registered provider in display order
func All() []Info {
	result := make([]Info, len(registry))
	copy(result, registry)
	return result
}

// IDs returns the registered provider IDs in display order
func IDs() []string {
	ids := make([]string, 0, len(registry))
	for _, info := range registry {
		ids = append(ids, info.ID)
	}
	return ids
}

// HeaderFor builds the per-provider header name, e.g. x-groq-key
func HeaderFor(id, suffix string) string {
	return "x-" + strings.ToLower(id) + "-" + suffix
}

// DisplayName returns a human-readable name, falling back to the raw ID
func DisplayName(id string) string {
	if info, ok := byID[id]; ok {
		return info.Name
	}
	return id
}

// ModelPlaceholder returns the example model shown when no override is set
func ModelPlaceholder(id string) string {
	if info, ok := byID[id]; ok {
		return info.ModelPlaceholder
	}
	return "Default model"
}

// KeyURL returns the key portal for a provider, or "" if unknown
func KeyURL(id string) string {
	return byID[id].KeyURL
}
