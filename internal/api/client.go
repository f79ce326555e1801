// Package api talks to the Writon processing server.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"writon/internal/prefs"
	"writon/internal/provider"
	"writon/internal/validate"
)

// maxErrorBody caps how much of a failed response is read for its message
const maxErrorBody = 64 << 10

// Client issues one request per call against a single server
type Client struct {
	baseURL string
	http    *http.Client
	log     *zap.Logger
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the tuned default client, mostly for tests
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithLogger sets the request logger
func WithLogger(log *zap.Logger) Option {
	return func(c *Client) {
		if log != nil {
			c.log = log
		}
	}
}

// New creates a client for the server at baseURL
func New(baseURL string, timeout time.Duration, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    newHTTPClient(timeout),
		log:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the server address requests go to
func (c *Client) BaseURL() string {
	return c.baseURL
}

// EndpointFor maps a mode to its path. Unknown modes use the generic endpoint.
func EndpointFor(mode string) string {
	switch mode {
	case prefs.ModeGrammar:
		return PathGrammar
	case prefs.ModeTranslate:
		return PathTranslate
	case prefs.ModeSummarize:
		return PathSummarize
	default:
		return PathProcess
	}
}

// setProviderHeaders adds the provider name and credentials
func setProviderHeaders(req *http.Request, cfg prefs.Configuration, withModel bool) {
	key := strings.TrimSpace(cfg.APIKey)
	req.Header.Set(provider.ProviderHeader, cfg.Provider)
	req.Header.Set(provider.HeaderFor(cfg.Provider, provider.SuffixKey), key)
	if !withModel {
		return
	}
	if model := strings.TrimSpace(cfg.Model); model != "" {
		req.Header.Set(provider.HeaderFor(cfg.Provider, provider.SuffixModel), model)
	}
}

// BuildRequest constructs the processing body for cfg and text
func BuildRequest(cfg prefs.Configuration, text string) ProcessRequest {
	body := ProcessRequest{
		Text:      strings.TrimSpace(text),
		CaseStyle: cfg.CaseStyle,
	}
	if lang, ok := validate.ResolveTargetLanguage(cfg.Mode, cfg.TargetLanguage, cfg.CustomLanguage); ok {
		body.TargetLanguage = lang
	}
	return body
}

// Process sends text for processing in cfg's mode
func (c *Client) Process(ctx context.Context, cfg prefs.Configuration, text string) (*ProcessResult, error) {
	endpoint := EndpointFor(cfg.Mode)

	payload, err := json.Marshal(BuildRequest(cfg, text))
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	setProviderHeaders(req, cfg, true)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warn("process request failed",
			zap.String("endpoint", endpoint), zap.String("provider", cfg.Provider), zap.Error(err))
		return nil, &NetworkError{Op: "process", Err: err}
	}
	defer resp.Body.Close()

	c.log.Debug("process response",
		zap.String("endpoint", endpoint),
		zap.String("provider", cfg.Provider),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &RemoteError{Status: resp.StatusCode, Message: statusMessage(resp.StatusCode, body)}
	}

	var result ProcessResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &result, nil
}

// CheckHealth verifies the key against the server. It never fails; every
// outcome maps to a status and label.
func (c *Client) CheckHealth(ctx context.Context, cfg prefs.Configuration) HealthResult {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+PathHealth, nil)
	if err != nil {
		return HealthResult{Status: HealthError, Label: LabelCheckFailed}
	}
	setProviderHeaders(req, cfg, false)

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Debug("health check failed", zap.String("provider", cfg.Provider), zap.Error(err))
		return HealthResult{Status: HealthError, Label: LabelCheckFailed}
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, maxErrorBody))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return HealthResult{Status: HealthError, Label: LabelKeyInvalid}
	}
	return HealthResult{Status: HealthConnected}
}

// UploadFile sends file content for text extraction
func (c *Client) UploadFile(ctx context.Context, name string, r io.Reader) (*UploadResult, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", name)
	if err != nil {
		return nil, fmt.Errorf("build upload: %w", err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("build upload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+PathUpload, &buf)
	if err != nil {
		return nil, fmt.Errorf("build upload: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.http.Do(req)
	if err != nil {
		netErr := &NetworkError{Op: "upload", Err: err}
		return nil, &UploadError{Message: netErr.Error(), Err: netErr}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &UploadError{Status: resp.StatusCode, Message: uploadMessage(body)}
	}

	var result UploadResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, &UploadError{Status: resp.StatusCode, Message: uploadFallback, Err: err}
	}
	c.log.Debug("file uploaded", zap.String("filename", result.Filename), zap.Int("chars", len(result.Content)))
	return &result, nil
}

// Providers asks the server which providers, modes and cases it supports
func (c *Client) Providers(ctx context.Context) (*ProvidersInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+PathProviders, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &NetworkError{Op: "providers", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &RemoteError{Status: resp.StatusCode, Message: statusMessage(resp.StatusCode, body)}
	}

	var info ProvidersInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("decode providers: %w", err)
	}
	return &info, nil
}
