// internal/session/health.go
package session

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"writon/internal/api"
	"writon/internal/prefs"
	"writon/internal/validate"
)

// Connectivity returns the current key check status
func (c *Controller) Connectivity() ConnectivityState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn
}

// setConn publishes a new state if gen is still the latest edit
func (c *Controller) setConn(gen uint64, state ConnectivityState) bool {
	c.mu.Lock()
	if gen != c.healthGen {
		c.mu.Unlock()
		return false
	}
	changed := c.conn != state
	c.conn = state
	fn := c.onConn
	c.mu.Unlock()

	if changed && fn != nil {
		fn(state)
	}
	return true
}

// nextGen invalidates every check started before it
func (c *Controller) nextGen() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.healthGen++
	return c.healthGen
}

func (c *Controller) resetConnectivity() {
	c.health.Cancel()
	gen := c.nextGen()
	c.setConn(gen, ConnectivityState{Status: Disconnected})
}

// recheckProvider drops the previous provider's status and schedules a
// check when there is a key to check
func (c *Controller) recheckProvider() {
	c.resetConnectivity()
	if strings.TrimSpace(c.Configuration().APIKey) != "" {
		c.scheduleCheck()
	}
}

// scheduleCheck reacts to a key edit. An empty key disconnects at once;
// anything else is checked after the debounce window.
func (c *Controller) scheduleCheck() {
	gen := c.nextGen()
	if strings.TrimSpace(c.Configuration().APIKey) == "" {
		c.health.Cancel()
		c.setConn(gen, ConnectivityState{Status: Disconnected})
		return
	}
	c.health.Call(func() { c.runCheck(c.ctx, gen) })
}

// Connect checks the saved key right away, as on startup. It returns
// without waiting; the result arrives through OnConnectivity.
func (c *Controller) Connect() {
	c.health.Cancel()
	gen := c.nextGen()
	go c.runCheck(c.ctx, gen)
}

// CheckNow runs a key check synchronously and returns its outcome
func (c *Controller) CheckNow(ctx context.Context) ConnectivityState {
	c.health.Cancel()
	gen := c.nextGen()
	return c.runCheck(ctx, gen)
}

func (c *Controller) runCheck(ctx context.Context, gen uint64) ConnectivityState {
	cfg := c.Configuration()
	key := strings.TrimSpace(cfg.APIKey)

	var state ConnectivityState
	switch {
	case key == "":
		state = ConnectivityState{Status: Disconnected}
	case !validate.IsValidAPIKeyFormat(cfg.Provider, key):
		state = ConnectivityState{Status: Failed, Label: LabelInvalidFormat}
	default:
		if !c.setConn(gen, ConnectivityState{Status: Checking}) {
			return c.Connectivity()
		}
		state = c.check(ctx, cfg)
	}

	c.setConn(gen, state)
	return state
}

// check asks the server, sharing one request among callers with the same
// provider and key
func (c *Controller) check(ctx context.Context, cfg prefs.Configuration) ConnectivityState {
	v, _, _ := c.checks.Do(cfg.Provider+"\x00"+strings.TrimSpace(cfg.APIKey), func() (any, error) {
		return c.remote.CheckHealth(ctx, cfg), nil
	})
	result := v.(api.HealthResult)

	c.log.Debug("key check", zap.String("provider", cfg.Provider), zap.Stringer("status", result.Status))

	if result.Status == api.HealthConnected {
		return ConnectivityState{Status: Connected}
	}
	return ConnectivityState{Status: Failed, Label: result.Label}
}
