// internal/api/types.go
package api

// Endpoint paths on the processing API
const (
	PathProcess   = "/process"
	PathGrammar   = "/grammar"
	PathTranslate = "/translate"
	PathSummarize = "/summarize"
	PathUpload    = "/upload"
	PathHealth    = "/health"
	PathProviders = "/providers"
)

// ProcessRequest is the JSON body sent to a processing endpoint
type ProcessRequest struct {
	Text           string `json:"text"`
	CaseStyle      string `json:"case_style"`
	TargetLanguage string `json:"target_language,omitempty"`
}

// ProcessResult is a successful processing response
type ProcessResult struct {
	OriginalText   string `json:"original_text"`
	ProcessedText  string `json:"processed_text"`
	Mode           string `json:"mode"`
	Provider       string `json:"provider"`
	CaseStyle      string `json:"case_style"`
	TargetLanguage string `json:"target_language,omitempty"`
}

// UploadResult is the extracted content of an uploaded file
type UploadResult struct {
	Filename string `json:"filename"`
	Content  string `json:"content"`
}

// ProvidersInfo is what the server reports it can do
type ProvidersInfo struct {
	AvailableProviders []string `json:"available_providers"`
	CurrentProvider    string   `json:"current_provider"`
	SupportedModes     []string `json:"supported_modes"`
	SupportedCases     []string `json:"supported_cases"`
}

// HealthStatus is the outcome of a key check
type HealthStatus int

const (
	HealthConnected HealthStatus = iota
	HealthError
)

func (s HealthStatus) String() string {
	switch s {
	case HealthConnected:
		return "connected"
	case HealthError:
		return "error"
	default:
		return "unknown"
	}
}

// Health labels shown next to an error status
const (
	LabelKeyInvalid  = "Key invalid"
	LabelCheckFailed = "Check failed"
)

// HealthResult is a health check outcome with its display label
type HealthResult struct {
	Status HealthStatus
	Label  string
}
