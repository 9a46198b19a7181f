package health

import (
	"context"
	"sort"
)

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates partial failure.
	Degraded Status = "degraded"
	// Unhealthy indicates total failure.
	Unhealthy Status = "error"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

type component struct {
	name   string
	pinger Pinger
}

// Service coordinates health checks.
type Service struct {
	components []component
}

// New creates a Service checking the database under the name "database".
func New(db Pinger) *Service {
	s := &Service{}
	return s.With("database", db)
}

// With registers an additional named component. Nil pingers are ignored.
func (s *Service) With(name string, p Pinger) *Service {
	if p != nil {
		s.components = append(s.components, component{name: name, pinger: p})
	}
	return s
}

// Components returns the registered component names in sorted order.
func (s *Service) Components() []string {
	names := make([]string, 0, len(s.components))
	for _, c := range s.components {
		names = append(names, c.name)
	}
	sort.Strings(names)
	return names
}

// Check runs health checks against all components.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult, len(s.components))
	failed := 0

	for _, c := range s.components {
		if err := c.pinger.Ping(ctx); err != nil {
			checks[c.name] = CheckError
			failed++
		} else {
			checks[c.name] = CheckOK
		}
	}

	status := Healthy
	switch {
	case failed == 0:
	case failed == len(s.components):
		status = Unhealthy
	default:
		status = Degraded
	}

	return Report{Status: status, Checks: checks}
}
