// Package session holds the view model shared by the terminal UI and the CLI:
// the live configuration, the input text, the current result and the key
// connectivity status.
package session

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"writon/internal/api"
	"writon/internal/db"
	"writon/internal/prefs"
	"writon/internal/provider"
	"writon/internal/stats"
	"writon/internal/validate"
)

// DefaultHealthDelay is the quiet window after a key edit before it is checked
const DefaultHealthDelay = 1500 * time.Millisecond

// ErrBusy is returned when a submission is already in flight
var ErrBusy = errors.New("a request is already being processed")

// Remote is the part of the API client the controller drives
type Remote interface {
	Process(ctx context.Context, cfg prefs.Configuration, text string) (*api.ProcessResult, error)
	CheckHealth(ctx context.Context, cfg prefs.Configuration) api.HealthResult
}

// HistoryRecorder stores successful runs
type HistoryRecorder interface {
	AddHistory(e db.HistoryEntry) (string, error)
}

// Controller mediates between input fields, persistence and the remote API.
// It is safe for concurrent use.
type Controller struct {
	store   *prefs.Store
	remote  Remote
	history HistoryRecorder
	log     *zap.Logger
	now     func() time.Time
	persist bool

	ctx    context.Context
	cancel context.CancelFunc

	mu        sync.Mutex
	cfg       prefs.Configuration
	text      string
	result    *api.ProcessResult
	processed string
	started   time.Time
	duration  time.Duration

	busy atomic.Bool

	health    *prefs.Debouncer
	healthGen uint64
	checks    singleflight.Group
	conn      ConnectivityState
	onConn    func(ConnectivityState)
}

// Option configures a Controller
type Option func(*Controller)

// WithHistory records every successful submission
func WithHistory(h HistoryRecorder) Option {
	return func(c *Controller) { c.history = h }
}

// WithLogger sets the controller's logger
func WithLogger(log *zap.Logger) Option {
	return func(c *Controller) {
		if log != nil {
			c.log = log
		}
	}
}

// WithHealthDelay overrides the key check debounce window
func WithHealthDelay(d time.Duration) Option {
	return func(c *Controller) { c.health = prefs.NewDebouncer(d) }
}

// OnConnectivity registers a callback for every connectivity change. It runs
// on whichever goroutine caused the change.
func OnConnectivity(fn func(ConnectivityState)) Option {
	return func(c *Controller) { c.onConn = fn }
}

// WithClock replaces time.Now
func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

// WithoutPersistence keeps edits in memory only. One-shot CLI commands use it
// so flag overrides do not overwrite saved preferences.
func WithoutPersistence() Option {
	return func(c *Controller) { c.persist = false }
}

// New creates a controller and loads the saved configuration
func New(store *prefs.Store, remote Remote, opts ...Option) *Controller {
	ctx, cancel := context.WithCancel(context.Background())
	c := &Controller{
		store:   store,
		remote:  remote,
		log:     zap.NewNop(),
		now:     time.Now,
		persist: true,
		ctx:     ctx,
		cancel:  cancel,
		health:  prefs.NewDebouncer(DefaultHealthDelay),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.cfg = store.Load()
	return c
}

// Close stops pending key checks and flushes the scratch buffer
func (c *Controller) Close() {
	c.health.Cancel()
	c.cancel()
	if c.persist {
		c.store.Flush()
	}
}

// Configuration returns a copy of the live configuration
func (c *Controller) Configuration() prefs.Configuration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cfg
}

// update applies fn to the configuration and saves the result
func (c *Controller) update(fn func(*prefs.Configuration)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fn(&c.cfg)
	if c.persist {
		c.store.Save(c.cfg)
	}
}

// SetProvider switches provider. The old result no longer applies, so the
// status resets and a saved key is checked again against the new provider.
func (c *Controller) SetProvider(id string) {
	c.update(func(cfg *prefs.Configuration) { cfg.Provider = id })
	c.recheckProvider()
}

// SetAPIKey stores the key and schedules a debounced check
func (c *Controller) SetAPIKey(key string) {
	c.update(func(cfg *prefs.Configuration) { cfg.APIKey = key })
	c.scheduleCheck()
}

func (c *Controller) SetModel(model string) {
	c.update(func(cfg *prefs.Configuration) { cfg.Model = model })
}

func (c *Controller) SetMode(mode string) {
	c.update(func(cfg *prefs.Configuration) { cfg.Mode = mode })
}

func (c *Controller) SetCaseStyle(style string) {
	c.update(func(cfg *prefs.Configuration) { cfg.CaseStyle = style })
}

func (c *Controller) SetTargetLanguage(lang string) {
	c.update(func(cfg *prefs.Configuration) { cfg.TargetLanguage = lang })
}

func (c *Controller) SetCustomLanguage(lang string) {
	c.update(func(cfg *prefs.Configuration) { cfg.CustomLanguage = lang })
}

// ApplyConfiguration replaces every field at once, as after an import
func (c *Controller) ApplyConfiguration(next prefs.Configuration) {
	c.mu.Lock()
	providerChanged := c.cfg.Provider != next.Provider
	keyChanged := c.cfg.APIKey != next.APIKey
	c.mu.Unlock()

	c.update(func(cfg *prefs.Configuration) { *cfg = next })

	switch {
	case providerChanged:
		c.recheckProvider()
	case keyChanged:
		c.scheduleCheck()
	}
}

// Text returns the live input text
func (c *Controller) Text() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.text
}

// SetText replaces the input text and schedules a scratch buffer write
func (c *Controller) SetText(text string) {
	c.mu.Lock()
	c.text = text
	c.mu.Unlock()
	if c.persist {
		c.store.SaveScratch(text)
	}
}

// ClearText empties the input and forgets the scratch buffer
func (c *Controller) ClearText() {
	c.mu.Lock()
	c.text = ""
	c.mu.Unlock()
	if c.persist {
		c.store.ClearScratch()
	}
}

// Restore loads the scratch buffer when the input is empty. It reports
// whether anything was restored.
func (c *Controller) Restore() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.text != "" {
		return false
	}
	saved := c.store.LoadScratch()
	if saved == "" {
		return false
	}
	c.text = saved
	return true
}

// Reset drops the current result
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.result = nil
	c.processed = ""
	c.duration = 0
}

// Busy reports whether a submission is in flight
func (c *Controller) Busy() bool {
	return c.busy.Load()
}

// Submit validates the input and sends it for processing. Only one
// submission runs at a time; a second caller gets ErrBusy. On failure the
// input text and previous result are left as they were.
func (c *Controller) Submit(ctx context.Context) (*api.ProcessResult, error) {
	c.mu.Lock()
	cfg, text := c.cfg, c.text
	c.mu.Unlock()

	if err := validate.ValidateSubmission(cfg, text); err != nil {
		return nil, err
	}

	if !c.busy.CompareAndSwap(false, true) {
		return nil, ErrBusy
	}
	defer c.busy.Store(false)

	start := c.now()
	c.mu.Lock()
	c.started = start
	c.mu.Unlock()

	result, err := c.remote.Process(ctx, cfg, text)
	if err != nil {
		c.log.Warn("processing failed",
			zap.String("mode", cfg.Mode),
			zap.String("provider", cfg.Provider),
			zap.Error(err))
		return nil, err
	}
	elapsed := c.now().Sub(start)

	c.mu.Lock()
	c.result = result
	c.processed = result.ProcessedText
	c.duration = elapsed
	c.mu.Unlock()

	c.log.Info("text processed",
		zap.String("mode", cfg.Mode),
		zap.String("provider", cfg.Provider),
		zap.Int("chars", validate.Length(text)),
		zap.Duration("elapsed", elapsed))

	c.recordHistory(cfg, result, start, elapsed)
	return result, nil
}

func (c *Controller) recordHistory(cfg prefs.Configuration, r *api.ProcessResult, at time.Time, elapsed time.Duration) {
	if c.history == nil {
		return
	}
	_, err := c.history.AddHistory(db.HistoryEntry{
		CreatedAt:      at,
		Mode:           cfg.Mode,
		Provider:       cfg.Provider,
		Model:          strings.TrimSpace(cfg.Model),
		CaseStyle:      cfg.CaseStyle,
		TargetLanguage: r.TargetLanguage,
		OriginalText:   r.OriginalText,
		ProcessedText:  r.ProcessedText,
		Duration:       elapsed,
	})
	if err != nil {
		c.log.Warn("record history", zap.Error(err))
	}
}

// Result returns the current result, or nil
func (c *Controller) Result() *api.ProcessResult {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.result == nil {
		return nil
	}
	r := *c.result
	return &r
}

// ShowResult makes r the current result, as when reopening a history entry
func (c *Controller) ShowResult(r api.ProcessResult, elapsed time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.result = &r
	c.processed = r.ProcessedText
	c.duration = elapsed
}

// ProcessedText is the text of the current result, used for copy and download
func (c *Controller) ProcessedText() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.processed
}

// Elapsed is the running time of the in-flight submission, or the duration
// of the last one
func (c *Controller) Elapsed() time.Duration {
	if c.busy.Load() {
		c.mu.Lock()
		started := c.started
		c.mu.Unlock()
		return c.now().Sub(started)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.duration
}

// TextStats are the live counts for the input
func (c *Controller) TextStats() stats.TextStats {
	return stats.Count(c.Text())
}

// CharLevel classifies the input length for the meter
func (c *Controller) CharLevel() stats.Level {
	return stats.CharLevel(c.TextStats().Chars)
}

// ResultStats compares the current result with its original. The second
// value is false when there is no result.
func (c *Controller) ResultStats() (stats.DiffStats, bool) {
	r := c.Result()
	if r == nil {
		return stats.DiffStats{}, false
	}
	return stats.Diff(r.OriginalText, r.ProcessedText), true
}

// LanguageVisible reports whether the target language picker applies
func (c *Controller) LanguageVisible() bool {
	return c.Configuration().Mode == prefs.ModeTranslate
}

// CustomLanguageVisible reports whether the free-form language field applies
func (c *Controller) CustomLanguageVisible() bool {
	cfg := c.Configuration()
	return cfg.Mode == prefs.ModeTranslate && cfg.TargetLanguage == prefs.CustomLanguage
}

// ModelPlaceholder is the example model for the selected provider
func (c *Controller) ModelPlaceholder() string {
	return provider.ModelPlaceholder(c.Configuration().Provider)
}

// KeyLink is where to get a key for the selected provider
func (c *Controller) KeyLink() string {
	return provider.KeyURL(c.Configuration().Provider)
}
