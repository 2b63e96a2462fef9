// pkg/health/health_test.go
package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"
)

// stubCheck fails with err when err is non-nil.
type stubCheck struct {
	name string
	err  error
}

func (s *stubCheck) Name() string { return s.name }
func (s *stubCheck) Check(ctx context.Context) error { return s.err }

// slowCheck waits for delay unless the context ends first.
type slowCheck struct {
	delay time.Duration
}

func (s *slowCheck) Name() string { return "slow" }

func (s *slowCheck) Check(ctx context.Context) error {
	select {
	case <-time.After(s.delay):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func TestHealthChecker_Registry(t *testing.T) {
	hc := NewHealthChecker()
	hc.AddCheck(&stubCheck{name: "b"})
	hc.AddCheck(&stubCheck{name: "a"})
	hc.AddCheck(&stubCheck{name: "a", err: errors.New("replaced")})

	if got := hc.Names(); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Errorf("Names() = %v, expected [a b]", got)
	}
	if status := hc.CheckHealth(context.Background()); status.Checks["a"].Message != "replaced" {
		t.Errorf("check a = %+v, expected the replacement to run", status.Checks["a"])
	}

	hc.RemoveCheck("a")
	hc.RemoveCheck("missing")
	if got := hc.Names(); !reflect.DeepEqual(got, []string{"b"}) {
		t.Errorf("Names() after removal = %v, expected [b]", got)
	}
}

func TestHealthChecker_CheckHealth(t *testing.T) {
	down := errors.New("down")
	tests := []struct {
		name   string
		checks []*stubCheck
		want   string
	}{
		{"no checks", nil, "healthy"},
		{"all pass", []*stubCheck{{name: "x"}, {name: "y"}}, "healthy"},
		{"one fails", []*stubCheck{{name: "x"}, {name: "y", err: down}}, "unhealthy"},
		{"all fail", []*stubCheck{{name: "x", err: down}, {name: "y", err: down}}, "unhealthy"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hc := NewHealthChecker()
			for _, c := range tt.checks {
				hc.AddCheck(c)
			}

			status := hc.CheckHealth(context.Background())
			if status.Status != tt.want {
				t.Errorf("Status = %q, expected %q", status.Status, tt.want)
			}
			if len(status.Checks) != len(tt.checks) {
				t.Fatalf("got %d results, expected %d", len(status.Checks), len(tt.checks))
			}
			for _, c := range tt.checks {
				result := status.Checks[c.name]
				if (c.err != nil) != (result.Status == "unhealthy") {
					t.Errorf("check %s = %+v", c.name, result)
				}
				if c.err != nil && result.Message != c.err.Error() {
					t.Errorf("check %s message = %q", c.name, result.Message)
				}
			}
		})
	}
}

func TestHealthChecker_CheckHealthTimeout(t *testing.T) {
	hc := NewHealthChecker()
	hc.AddCheck(&slowCheck{delay: time.Second})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	status := hc.CheckHealth(ctx)
	if status.Status != "unhealthy" || status.Checks["slow"].Status != "unhealthy" {
		t.Errorf("status = %+v, expected the slow check to time out", status)
	}
}

func TestHealthChecker_LivenessHandler(t *testing.T) {
	hc := NewHealthChecker()
	hc.AddCheck(&stubCheck{name: "x", err: errors.New("down")})

	w := httptest.NewRecorder()
	hc.LivenessHandler(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	if w.Code != http.StatusOK {
		t.Errorf("status code = %d, expected 200 regardless of checks", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}
	var body map[string]string
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("decode error = %v", err)
	}
	if body["status"] != "alive" {
		t.Errorf("status = %q, expected alive", body["status"])
	}
}

func TestHealthChecker_ReadinessHandler(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		want     string
	}{
		{"ready", nil, http.StatusOK, "healthy"},
		{"not ready", errors.New("down"), http.StatusServiceUnavailable, "unhealthy"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hc := NewHealthChecker()
			hc.AddCheck(&stubCheck{name: "x", err: tt.err})

			w := httptest.NewRecorder()
			hc.ReadinessHandler(w, httptest.NewRequest(http.MethodGet, "/ready", nil))

			if w.Code != tt.wantCode {
				t.Errorf("status code = %d, expected %d", w.Code, tt.wantCode)
			}
			var body HealthStatus
			if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
				t.Fatalf("decode error = %v", err)
			}
			if body.Status != tt.want {
				t.Errorf("Status = %q, expected %q", body.Status, tt.want)
			}
		})
	}
}

func TestGameEngineHealthCheck(t *testing.T) {
	now := time.Now()
	tests := []struct {
		name     string
		running  bool
		lastTick time.Time
		wantErr  bool
	}{
		{"ticking", true, now, false},
		{"stopped", false, now, true},
		{"never ticked", true, time.Time{}, true},
		{"stalled", true, now.Add(-time.Minute), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			check := NewGameEngineHealthCheck(
				func() bool { return tt.running },
				func() time.Time { return tt.lastTick },
				time.Second,
			)
			if check.Name() != "game_engine" {
				t.Errorf("Name() = %q", check.Name())
			}
			if err := check.Check(context.Background()); (err != nil) != tt.wantErr {
				t.Errorf("Check() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestNetworkHealthCheck(t *testing.T) {
	for _, tt := range []struct {
		addr    string
		wantErr bool
	}{
		{"127.0.0.1:8080", false},
		{"", true},
	} {
		check := NewNetworkHealthCheck(func() string { return tt.addr })
		if check.Name() != "network" {
			t.Errorf("Name() = %q", check.Name())
		}
		if err := check.Check(context.Background()); (err != nil) != tt.wantErr {
			t.Errorf("Check() with address %q error = %v, wantErr %v", tt.addr, err, tt.wantErr)
		}
	}
}
