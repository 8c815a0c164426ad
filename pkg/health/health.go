package health

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/pkg/errors"
)

type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusUnhealthy Status = "unhealthy"
)

const defaultCheckTimeout = 2 * time.Second

type CheckFunc func(ctx context.Context) error

// Checker runs named readiness checks and serves liveness/readiness probes.
type Checker struct {
	mu      sync.RWMutex
	checks  map[string]CheckFunc
	version string
	timeout time.Duration
}

func NewChecker(version string) *Checker {
	return &Checker{
		checks:  make(map[string]CheckFunc),
		version: version,
		timeout: defaultCheckTimeout,
	}
}

func (c *Checker) Register(name string, check CheckFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.checks[name] = check
}

// Require registers a check that fails with reason whenever ok reports false.
func (c *Checker) Require(name string, ok func() bool, reason string) {
	c.Register(name, func(context.Context) error {
		if !ok() {
			return errors.New(reason)
		}
		return nil
	})
}

type CheckResult struct {
	Status  Status            `json:"status"`
	Version string            `json:"version,omitempty"`
	Details map[string]string `json:"details,omitempty"`
}

// Check runs every registered check, each bounded by the checker timeout.
func (c *Checker) Check(ctx context.Context) CheckResult {
	c.mu.RLock()
	defer c.mu.RUnlock()

	result := CheckResult{
		Status:  StatusHealthy,
		Version: c.version,
		Details: make(map[string]string, len(c.checks)),
	}

	for name, check := range c.checks {
		checkCtx, cancel := context.WithTimeout(ctx, c.timeout)
		err := check(checkCtx)
		cancel()
		if err != nil {
			result.Status = StatusUnhealthy
			result.Details[name] = err.Error()
		} else {
			result.Details[name] = "ok"
		}
	}

	return result
}

func (c *Checker) LivenessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, CheckResult{Status: StatusHealthy, Version: c.version})
	}
}

func (c *Checker) ReadinessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		result := c.Check(r.Context())
		code := http.StatusOK
		if result.Status != StatusHealthy {
			code = http.StatusServiceUnavailable
		}
		writeJSON(w, code, result)
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
