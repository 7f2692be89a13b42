package health

import "context"

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates partial failure; the engine still answers queries.
	Degraded Status = "degraded"
	// Unhealthy indicates the store is unreachable.
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

// Service coordinates health checks. The store is the only critical
// dependency: provider outages degrade answers but never stop them.
type Service struct {
	db        DBPinger
	providers map[string]ProviderChecker
}

// New creates a Service. providers maps check names to optional upstreams.
func New(db DBPinger, providers map[string]ProviderChecker) *Service {
	return &Service{db: db, providers: providers}
}

// Check runs health checks against all components.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult)

	dbOK := true
	if err := s.db.Ping(ctx); err != nil {
		checks["database"] = CheckError
		dbOK = false
	} else {
		checks["database"] = CheckOK
	}

	providersOK := true
	for name, p := range s.providers {
		if p == nil {
			continue
		}
		if err := p.HealthCheck(ctx); err != nil {
			checks[name] = CheckError
			providersOK = false
		} else {
			checks[name] = CheckOK
		}
	}

	status := Healthy
	switch {
	case !dbOK:
		status = Unhealthy
	case !providersOK:
		status = Degraded
	}

	return Report{Status: status, Checks: checks}
}
