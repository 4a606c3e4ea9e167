package webhelpers

import (
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"
)

// CircuitState represents the current state of a circuit breaker.
type CircuitState int

const (
	// CircuitClosed lets requests through.
	CircuitClosed CircuitState = iota
	// CircuitOpen rejects requests until the cool-down ends.
	CircuitOpen
	// CircuitHalfOpen lets a limited number of probe requests through.
	CircuitHalfOpen
)

// String returns the string representation of the circuit state.
func (s CircuitState) String() string {
	switch s {
	case CircuitClosed:
		return "closed"
	case CircuitOpen:
		return "open"
	case CircuitHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// ErrCircuitOpen is returned for requests to a host whose circuit is open.
var ErrCircuitOpen = errors.New("circuit breaker is open")

// BreakerConfig configures the per-host circuit breaker that guards SVG
// downloads.
type BreakerConfig struct {
	// FailureThreshold is the number of consecutive failures that opens a
	// host's circuit. Default: 5
	FailureThreshold int

	// SuccessThreshold is the number of consecutive half-open successes
	// that closes it again. Default: 2
	SuccessThreshold int

	// Timeout is how long a circuit stays open. Default: 30 seconds
	Timeout time.Duration

	// MaxHalfOpenRequests bounds concurrent probes. Default: 1
	MaxHalfOpenRequests int

	// OnStateChange is called with the host and the transition.
	OnStateChange func(host string, from, to CircuitState)
}

// DefaultBreakerConfig returns a BreakerConfig with the documented defaults.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		FailureThreshold:    5,
		SuccessThreshold:    2,
		Timeout:             30 * time.Second,
		MaxHalfOpenRequests: 1,
	}
}

func (c BreakerConfig) withDefaults() BreakerConfig {
	d := DefaultBreakerConfig()
	if c.FailureThreshold <= 0 {
		c.FailureThreshold = d.FailureThreshold
	}
	if c.SuccessThreshold <= 0 {
		c.SuccessThreshold = d.SuccessThreshold
	}
	if c.Timeout <= 0 {
		c.Timeout = d.Timeout
	}
	if c.MaxHalfOpenRequests <= 0 {
		c.MaxHalfOpenRequests = d.MaxHalfOpenRequests
	}
	return c
}

type hostCircuit struct {
	state     CircuitState
	failures  int
	successes int
	inFlight  int
	openedAt  time.Time
}

// BreakerTransport is an http.RoundTripper that tracks failures per host.
// Transport errors and 5xx responses count as failures; anything else is a
// success.
type BreakerTransport struct {
	base  http.RoundTripper
	cfg   BreakerConfig
	now   func() time.Time
	mu    sync.Mutex
	hosts map[string]*hostCircuit
}

// NewBreakerTransport wraps base, or http.DefaultTransport when base is nil.
func NewBreakerTransport(base http.RoundTripper, cfg BreakerConfig) *BreakerTransport {
	if base == nil {
		base = http.DefaultTransport
	}
	return &BreakerTransport{
		base:  base,
		cfg:   cfg.withDefaults(),
		now:   time.Now,
		hosts: make(map[string]*hostCircuit),
	}
}

// RoundTrip implements http.RoundTripper.
func (t *BreakerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	host := req.URL.Host
	if !t.acquire(host) {
		return nil, fmt.Errorf("%w: %s", ErrCircuitOpen, host)
	}

	resp, err := t.base.RoundTrip(req)
	t.release(host, err == nil && resp.StatusCode < http.StatusInternalServerError)
	return resp, err
}

// State returns the circuit state for host, taking the open timeout into
// account.
func (t *BreakerTransport) State(host string) CircuitState {
	t.mu.Lock()
	defer t.mu.Unlock()
	c, ok := t.hosts[host]
	if !ok {
		return CircuitClosed
	}
	t.expire(host, c)
	return c.state
}

// Reset closes every circuit.
func (t *BreakerTransport) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.hosts = make(map[string]*hostCircuit)
}

func (t *BreakerTransport) acquire(host string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	c, ok := t.hosts[host]
	if !ok {
		c = &hostCircuit{}
		t.hosts[host] = c
	}
	t.expire(host, c)

	switch c.state {
	case CircuitOpen:
		return false
	case CircuitHalfOpen:
		if c.inFlight >= t.cfg.MaxHalfOpenRequests {
			return false
		}
	}
	c.inFlight++
	return true
}

func (t *BreakerTransport) release(host string, ok bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	c := t.hosts[host]
	if c == nil {
		return
	}
	c.inFlight--

	if ok {
		c.failures = 0
		if c.state == CircuitHalfOpen {
			c.successes++
			if c.successes >= t.cfg.SuccessThreshold {
				t.transition(host, c, CircuitClosed)
			}
		}
		return
	}

	switch c.state {
	case CircuitHalfOpen:
		t.transition(host, c, CircuitOpen)
	case CircuitClosed:
		c.failures++
		if c.failures >= t.cfg.FailureThreshold {
			t.transition(host, c, CircuitOpen)
		}
	}
}

// expire moves an open circuit to half-open once its timeout has elapsed.
// Callers hold mu.
func (t *BreakerTransport) expire(host string, c *hostCircuit) {
	if c.state == CircuitOpen && t.now().Sub(c.openedAt) >= t.cfg.Timeout {
		t.transition(host, c, CircuitHalfOpen)
	}
}

// transition changes state and resets counters. Callers hold mu.
func (t *BreakerTransport) transition(host string, c *hostCircuit, to CircuitState) {
	from := c.state
	if from == to {
		return
	}
	c.state = to
	c.failures = 0
	c.successes = 0
	if to == CircuitOpen {
		c.openedAt = t.now()
	}
	if t.cfg.OnStateChange != nil {
		go t.cfg.OnStateChange(host, from, to)
	}
}
