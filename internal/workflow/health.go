package workflow

import (
	"context"

	"bindery/internal/stage"
	"bindery/internal/stages"
)

// Health reports the readiness of every configured stage.
func (m *Manager) Health(ctx context.Context) []stage.Health {
	state := &stages.State{}
	bindings := m.bindings(state)
	checks := make([]stage.Health, 0, len(bindings))
	for _, b := range bindings {
		checks = append(checks, b.handler.HealthCheck(ctx))
	}
	return checks
}
