package observability

import (
	"context"
	"time"
)

// HealthStatus represents the outcome of a check.
type HealthStatus string

const (
	HealthStatusUp       HealthStatus = "up"
	HealthStatusDown     HealthStatus = "down"
	HealthStatusDegraded HealthStatus = "degraded"
)

// Health describes the result of one check against a backend.
type Health struct {
	Name     string            `json:"name"`
	Status   HealthStatus      `json:"status"`
	Message  string            `json:"message,omitempty"`
	Duration time.Duration     `json:"duration_ns,omitempty"`
	Details  map[string]string `json:"details,omitempty"`
}

// Passed reports whether the check succeeded.
func (h Health) Passed() bool {
	return h.Status == HealthStatusUp
}

// ServiceHealth aggregates the checks run against one backend.
type ServiceHealth struct {
	Service    string       `json:"service"`
	Status     HealthStatus `json:"status"`
	Version    string       `json:"version,omitempty"`
	Components []Health     `json:"components,omitempty"`
}

// HealthChecker is implemented by checks that can report a result.
type HealthChecker interface {
	CheckHealth(ctx context.Context) Health
}

// CheckFunc adapts a function returning an error to HealthChecker.
type CheckFunc struct {
	Name string
	Fn   func(ctx context.Context) (message string, err error)
}

// CheckHealth runs the function and times it.
func (c CheckFunc) CheckHealth(ctx context.Context) Health {
	start := time.Now()
	msg, err := c.Fn(ctx)
	h := Health{Name: c.Name, Status: HealthStatusUp, Message: msg, Duration: time.Since(start)}
	if err != nil {
		h.Status = HealthStatusDown
		h.Message = err.Error()
	}
	return h
}

// NewServiceHealth creates a ServiceHealth with status up.
func NewServiceHealth(service, version string) *ServiceHealth {
	return &ServiceHealth{
		Service: service,
		Status:  HealthStatusUp,
		Version: version,
	}
}

// AddComponent adds a check result and degrades overall status if needed.
func (sh *ServiceHealth) AddComponent(ch Health) {
	sh.Components = append(sh.Components, ch)

	switch ch.Status {
	case HealthStatusDown:
		sh.Status = HealthStatusDown
	case HealthStatusDegraded:
		if sh.Status != HealthStatusDown {
			sh.Status = HealthStatusDegraded
		}
	}
}

// Run executes every checker in order and adds its result.
func (sh *ServiceHealth) Run(ctx context.Context, checkers ...HealthChecker) {
	for _, c := range checkers {
		sh.AddComponent(c.CheckHealth(ctx))
	}
}

// Summary counts passed and failed checks.
func (sh *ServiceHealth) Summary() (passed, failed int) {
	for _, c := range sh.Components {
		if c.Passed() {
			passed++
		} else {
			failed++
		}
	}
	return passed, failed
}
