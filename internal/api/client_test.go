// internal/api/client_test.go
package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"writon/internal/prefs"
)

func testConfig() prefs.Configuration {
	cfg := prefs.DefaultConfiguration()
	cfg.APIKey = "gsk_testkey"
	return cfg
}

func TestEndpointFor(t *testing.T) {
	tests := map[string]string{
		"grammar":       "/grammar",
		"translate":     "/translate",
		"summarize":     "/summarize",
		"process":       "/process",
		"unknown-value": "/process",
		"":              "/process",
	}
	for mode, want := range tests {
		if got := EndpointFor(mode); got != want {
			t.Errorf("EndpointFor(%q) = %q, want %q", mode, got, want)
		}
	}
}

func TestProcess_RequestShape(t *testing.T) {
	var gotPath string
	var gotHeader http.Header
	var gotBody map[string]any

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotHeader = r.Header.Clone()
		assert.Equal(t, http.MethodPost, r.Method)
		json.NewDecoder(r.Body).Decode(&gotBody)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(ProcessResult{
			OriginalText:   "hello",
			ProcessedText:  "hola",
			Mode:           "translate",
			Provider:       "openai",
			CaseStyle:      "sentence",
			TargetLanguage: "Spanish",
		})
	}))
	defer server.Close()

	cfg := testConfig()
	cfg.Provider = "openai"
	cfg.APIKey = "  sk-abc  "
	cfg.Model = "gpt-4o"
	cfg.Mode = prefs.ModeTranslate

	client := New(server.URL+"/", time.Second)
	result, err := client.Process(context.Background(), cfg, "  hello  ")
	require.NoError(t, err)

	assert.Equal(t, "/translate", gotPath)
	assert.Equal(t, "application/json", gotHeader.Get("Content-Type"))
	assert.Equal(t, "openai", gotHeader.Get("X-Provider"))
	assert.Equal(t, "sk-abc", gotHeader.Get("x-openai-key"))
	assert.Equal(t, "gpt-4o", gotHeader.Get("x-openai-model"))

	assert.Equal(t, "hello", gotBody["text"])
	assert.Equal(t, "sentence", gotBody["case_style"])
	assert.Equal(t, "Spanish", gotBody["target_language"])

	assert.Equal(t, "hola", result.ProcessedText)
	assert.Equal(t, "Spanish", result.TargetLanguage)
}

func TestProcess_OptionalFieldsOmitted(t *testing.T) {
	var gotHeader http.Header
	var gotBody map[string]any

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotHeader = r.Header.Clone()
		json.NewDecoder(r.Body).Decode(&gotBody)
		json.NewEncoder(w).Encode(ProcessResult{ProcessedText: "ok"})
	}))
	defer server.Close()

	cfg := testConfig()
	cfg.Model = "   "
	cfg.TargetLanguage = "French"

	_, err := New(server.URL, time.Second).Process(context.Background(), cfg, "text")
	require.NoError(t, err)

	assert.Empty(t, gotHeader.Get("x-groq-model"), "blank model sends no header")
	assert.Equal(t, "gsk_testkey", gotHeader.Get("x-groq-key"))
	_, hasLang := gotBody["target_language"]
	assert.False(t, hasLang, "target_language only sent in translate mode")
}

func TestProcess_CustomLanguage(t *testing.T) {
	cfg := testConfig()
	cfg.Mode = prefs.ModeTranslate
	cfg.TargetLanguage = prefs.CustomLanguage
	cfg.CustomLanguage = " Klingon "

	req := BuildRequest(cfg, "hello")
	assert.Equal(t, "Klingon", req.TargetLanguage)
}

func TestProcess_ErrorNormalization(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   string
	}{
		{"detail", 401, `{"detail":"bad key"}`, "bad key"},
		{"message preferred over detail", 400, `{"message":"from message","detail":"from detail"}`, "from message"},
		{"unparseable", 500, `<html>oops</html>`, "HTTP 500"},
		{"empty json", 502, `{}`, "HTTP 502"},
		{"validation list", 422, `{"detail":[{"loc":["body","text"],"msg":"field required"}]}`, "field required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				io.WriteString(w, tt.body)
			}))
			defer server.Close()

			_, err := New(server.URL, time.Second).Process(context.Background(), testConfig(), "text")

			var remote *RemoteError
			require.ErrorAs(t, err, &remote)
			assert.Equal(t, tt.status, remote.Status)
			assert.Equal(t, tt.want, remote.Message)
			assert.Equal(t, tt.want, err.Error())
		})
	}
}

func TestProcess_NetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	_, err := New(url, time.Second).Process(context.Background(), testConfig(), "text")

	var netErr *NetworkError
	require.ErrorAs(t, err, &netErr)
	assert.False(t, netErr.Timeout())
	assert.NotEmpty(t, err.Error())
}

func TestProcess_Timeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	_, err := New(server.URL, 50*time.Millisecond).Process(context.Background(), testConfig(), "text")

	var netErr *NetworkError
	require.ErrorAs(t, err, &netErr)
	assert.True(t, netErr.Timeout())
}

func TestCheckHealth(t *testing.T) {
	var gotHeader http.Header
	status := http.StatusOK

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/health", r.URL.Path)
		gotHeader = r.Header.Clone()
		w.WriteHeader(status)
	}))
	defer server.Close()

	client := New(server.URL, time.Second)
	cfg := testConfig()
	cfg.Model = "llama"

	got := client.CheckHealth(context.Background(), cfg)
	assert.Equal(t, HealthConnected, got.Status)
	assert.Equal(t, "groq", gotHeader.Get("X-Provider"))
	assert.Equal(t, "gsk_testkey", gotHeader.Get("x-groq-key"))
	assert.Empty(t, gotHeader.Get("x-groq-model"))

	status = http.StatusUnauthorized
	got = client.CheckHealth(context.Background(), cfg)
	assert.Equal(t, HealthResult{Status: HealthError, Label: LabelKeyInvalid}, got)
}

func TestCheckHealth_NetworkFailureNeverErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	got := New(url, time.Second).CheckHealth(context.Background(), testConfig())
	assert.Equal(t, HealthResult{Status: HealthError, Label: LabelCheckFailed}, got)
}

func TestUploadFile(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/upload", r.URL.Path)
		file, header, err := r.FormFile("file")
		if !assert.NoError(t, err) {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		defer file.Close()
		data, _ := io.ReadAll(file)

		json.NewEncoder(w).Encode(UploadResult{Filename: header.Filename, Content: strings.ToUpper(string(data))})
	}))
	defer server.Close()

	result, err := New(server.URL, time.Second).UploadFile(context.Background(), "notes.txt", strings.NewReader("some notes"))
	require.NoError(t, err)
	assert.Equal(t, "notes.txt", result.Filename)
	assert.Equal(t, "SOME NOTES", result.Content)
}

func TestUploadFile_Errors(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"detail", `{"detail":"Unsupported file type"}`, "Unsupported file type"},
		{"message", `{"message":"Too large"}`, "Too large"},
		{"unparseable", `nope`, "Failed to upload file."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadRequest)
				io.WriteString(w, tt.body)
			}))
			defer server.Close()

			_, err := New(server.URL, time.Second).UploadFile(context.Background(), "a.pdf", strings.NewReader("x"))

			var upErr *UploadError
			require.ErrorAs(t, err, &upErr)
			assert.Equal(t, tt.want, upErr.Message)
			assert.Equal(t, http.StatusBadRequest, upErr.Status)
		})
	}
}

func TestUploadFile_NetworkFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	_, err := New(url, time.Second).UploadFile(context.Background(), "a.txt", strings.NewReader("x"))

	var upErr *UploadError
	require.ErrorAs(t, err, &upErr)
	var netErr *NetworkError
	assert.True(t, errors.As(err, &netErr))
}

func TestProviders(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/providers", r.URL.Path)
		io.WriteString(w, `{"available_providers":["groq","openai"],"current_provider":"groq",
			"supported_modes":["grammar","translate"],"supported_cases":["sentence","upper"]}`)
	}))
	defer server.Close()

	info, err := New(server.URL, time.Second).Providers(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"groq", "openai"}, info.AvailableProviders)
	assert.Equal(t, "groq", info.CurrentProvider)
	assert.Equal(t, []string{"grammar", "translate"}, info.SupportedModes)
	assert.Equal(t, []string{"sentence", "upper"}, info.SupportedCases)
}
