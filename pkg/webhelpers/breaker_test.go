package webhelpers

import (
	"errors"
	"net/http"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

func statusTransport(status *atomic.Int32, calls *atomic.Int32) http.RoundTripper {
	return roundTripFunc(func(r *http.Request) (*http.Response, error) {
		calls.Add(1)
		code := int(status.Load())
		if code == 0 {
			return nil, errors.New("connection refused")
		}
		return &http.Response{StatusCode: code, Body: http.NoBody, Request: r}, nil
	})
}

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestBreaker(status, calls *atomic.Int32) (*BreakerTransport, *fakeClock) {
	clock := &fakeClock{t: time.Unix(1_700_000_000, 0)}
	bt := NewBreakerTransport(statusTransport(status, calls), BreakerConfig{
		FailureThreshold: 3,
		SuccessThreshold: 2,
		Timeout:          time.Minute,
	})
	bt.now = clock.now
	return bt, clock
}

func get(t *testing.T, rt http.RoundTripper, url string) error {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := rt.RoundTrip(req)
	if resp != nil {
		resp.Body.Close()
	}
	return err
}

func TestBreakerOpensAfterFailures(t *testing.T) {
	var status, calls atomic.Int32
	status.Store(http.StatusBadGateway)
	bt, _ := newTestBreaker(&status, &calls)

	for i := 0; i < 3; i++ {
		if err := get(t, bt, "http://a.example/x.svg"); err != nil {
			t.Fatalf("request %d: %v", i, err)
		}
	}
	if got := bt.State("a.example"); got != CircuitOpen {
		t.Fatalf("state = %v, want open", got)
	}

	err := get(t, bt, "http://a.example/x.svg")
	if !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("err = %v, want ErrCircuitOpen", err)
	}
	if calls.Load() != 3 {
		t.Errorf("base transport called %d times, want 3", calls.Load())
	}

	// Other hosts are unaffected.
	status.Store(http.StatusOK)
	if err := get(t, bt, "http://b.example/x.svg"); err != nil {
		t.Errorf("other host: %v", err)
	}
}

func TestBreakerClientErrorsAreSuccesses(t *testing.T) {
	var status, calls atomic.Int32
	status.Store(http.StatusNotFound)
	bt, _ := newTestBreaker(&status, &calls)

	for i := 0; i < 10; i++ {
		_ = get(t, bt, "http://a.example/missing.svg")
	}
	if got := bt.State("a.example"); got != CircuitClosed {
		t.Errorf("state = %v, want closed", got)
	}
}

func TestBreakerRecovers(t *testing.T) {
	var status, calls atomic.Int32
	bt, clock := newTestBreaker(&status, &calls)

	for i := 0; i < 3; i++ {
		_ = get(t, bt, "http://a.example/x.svg")
	}
	if bt.State("a.example") != CircuitOpen {
		t.Fatal("expected open circuit")
	}

	clock.advance(time.Minute)
	if got := bt.State("a.example"); got != CircuitHalfOpen {
		t.Fatalf("state = %v, want half-open", got)
	}

	status.Store(http.StatusOK)
	for i := 0; i < 2; i++ {
		if err := get(t, bt, "http://a.example/x.svg"); err != nil {
			t.Fatalf("probe %d: %v", i, err)
		}
	}
	if got := bt.State("a.example"); got != CircuitClosed {
		t.Errorf("state = %v, want closed", got)
	}
}

func TestBreakerHalfOpenFailureReopens(t *testing.T) {
	var status, calls atomic.Int32
	bt, clock := newTestBreaker(&status, &calls)

	for i := 0; i < 3; i++ {
		_ = get(t, bt, "http://a.example/x.svg")
	}
	clock.advance(time.Minute)
	_ = get(t, bt, "http://a.example/x.svg")

	if got := bt.State("a.example"); got != CircuitOpen {
		t.Errorf("state = %v, want open", got)
	}
}

func TestBreakerStateChangeCallback(t *testing.T) {
	changes := make(chan string, 4)
	bt := NewBreakerTransport(roundTripFunc(func(*http.Request) (*http.Response, error) {
		return nil, errors.New("down")
	}), BreakerConfig{
		FailureThreshold: 1,
		OnStateChange: func(host string, from, to CircuitState) {
			changes <- host + ":" + from.String() + "->" + to.String()
		},
	})

	_ = get(t, bt, "http://a.example/x.svg")

	select {
	case got := <-changes:
		if got != "a.example:closed->open" {
			t.Errorf("change = %q", got)
		}
	case <-time.After(time.Second):
		t.Fatal("no state change reported")
	}
}

func TestBreakerReset(t *testing.T) {
	var status, calls atomic.Int32
	bt, _ := newTestBreaker(&status, &calls)
	for i := 0; i < 3; i++ {
		_ = get(t, bt, "http://a.example/x.svg")
	}
	bt.Reset()
	if bt.State("a.example") != CircuitClosed {
		t.Error("Reset did not close the circuit")
	}
}

func TestBreakerConfigDefaults(t *testing.T) {
	cfg := BreakerConfig{}.withDefaults()
	def := DefaultBreakerConfig()
	if cfg.FailureThreshold != def.FailureThreshold || cfg.SuccessThreshold != def.SuccessThreshold ||
		cfg.Timeout != def.Timeout || cfg.MaxHalfOpenRequests != def.MaxHalfOpenRequests {
		t.Errorf("withDefaults() = %+v", cfg)
	}
	if !strings.Contains(CircuitState(7).String(), "unknown") {
		t.Error("unexpected string for unknown state")
	}
}
