package health

import (
	"context"
	"errors"
	"testing"
)

type mockPinger struct {
	err error
}

func (m *mockPinger) Ping(context.Context) error { return m.err }

type mockChecker struct {
	err error
}

func (m *mockChecker) HealthCheck(context.Context) error { return m.err }

func TestCheck_AllHealthy(t *testing.T) {
	svc := New(&mockPinger{}, map[string]ProviderChecker{
		"embedding_openai": &mockChecker{},
	})

	report := svc.Check(context.Background())
	if report.Status != Healthy {
		t.Fatalf("status = %s, want %s", report.Status, Healthy)
	}
	if report.Checks["database"] != CheckOK || report.Checks["embedding_openai"] != CheckOK {
		t.Errorf("checks = %v", report.Checks)
	}
}

func TestCheck_ProviderFailureDegrades(t *testing.T) {
	svc := New(&mockPinger{}, map[string]ProviderChecker{
		"embedding_openai": &mockChecker{err: errors.New("401")},
		"embedding_nebius": &mockChecker{},
	})

	report := svc.Check(context.Background())
	if report.Status != Degraded {
		t.Fatalf("status = %s, want %s", report.Status, Degraded)
	}
	if report.Checks["embedding_openai"] != CheckError {
		t.Errorf("checks = %v", report.Checks)
	}
	if report.Checks["embedding_nebius"] != CheckOK {
		t.Errorf("healthy provider misreported: %v", report.Checks)
	}
}

func TestCheck_StoreFailureIsUnhealthy(t *testing.T) {
	svc := New(&mockPinger{err: errors.New("connection refused")}, map[string]ProviderChecker{
		"embedding_openai": &mockChecker{},
	})

	report := svc.Check(context.Background())
	if report.Status != Unhealthy {
		t.Fatalf("status = %s, want %s", report.Status, Unhealthy)
	}
	if report.Checks["database"] != CheckError {
		t.Errorf("checks = %v", report.Checks)
	}
}

func TestCheck_NilProviderSkipped(t *testing.T) {
	svc := New(&mockPinger{}, map[string]ProviderChecker{
		"embedding_openai": nil,
	})

	report := svc.Check(context.Background())
	if report.Status != Healthy {
		t.Fatalf("status = %s, want %s", report.Status, Healthy)
	}
	if _, ok := report.Checks["embedding_openai"]; ok {
		t.Error("nil provider must not appear in checks")
	}
}
