package health

import "context"

// DBPinger checks database availability.
type DBPinger interface {
	Ping(ctx context.Context) error
}

// ProviderChecker checks an embedding or completion provider.
type ProviderChecker interface {
	HealthCheck(ctx context.Context) error
}
