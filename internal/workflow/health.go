package workflow

import (
	"context"

	"voltcheck/internal/records"
	"voltcheck/internal/stage"
)

// Health combines stage readiness with record store counts.
type Health struct {
	Stage   stage.Health
	Records records.HealthSummary
}

// Health reports daemon readiness for status output.
func (m *Manager) Health(ctx context.Context) (Health, error) {
	summary, err := m.store.Health(ctx)
	if err != nil {
		return Health{}, err
	}
	return Health{
		Stage:   m.handler.HealthCheck(ctx),
		Records: summary,
	}, nil
}
