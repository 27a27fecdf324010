package manager

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"sumbench/internal/engine"
	"sumbench/internal/registry"
	"sumbench/pkg/types"
)

// Manager owns the resident-model table. Construct one at startup, pass
// it to every consumer, and Close it at shutdown; there is no process
// singleton.
type Manager struct {
	mu        sync.RWMutex
	residents map[string]*residency
	usedMB    int

	// Load serialization: at most one load runs at a time manager-wide;
	// queued requests are served strictly in request order.
	loadBusy    bool
	loadWaiters []chan struct{}

	registry     *registry.Registry
	engine       engine.Engine
	budgetMB     int
	drainTimeout time.Duration
	publisher    EventPublisher
	log          zerolog.Logger

	closed bool
}

// ListModels returns catalog rows overlaid with residency state.
func (m *Manager) ListModels(f registry.Filter) []types.ModelStatus {
	rows := m.registry.List(f)
	m.mu.RLock()
	defer m.mu.RUnlock()
	for i := range rows {
		rec, ok := m.residents[rows[i].ID]
		if !ok {
			rows[i].State = string(PhaseUnloaded)
			continue
		}
		rows[i].State = string(rec.phase)
		if rec.phase == PhaseLoading {
			rows[i].Progress = rec.progress
		}
	}
	return rows
}

// UsedMB reports the summed measured footprint of resident models.
func (m *Manager) UsedMB() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.usedMB
}

// BudgetMB reports the configured memory budget (0 = unlimited).
func (m *Manager) BudgetMB() int { return m.budgetMB }

// Close unloads every resident model and rejects further loads.
// In-flight loads observe cancellation through their caller contexts.
func (m *Manager) Close() error {
	m.mu.Lock()
	m.closed = true
	var ids []string
	for id, rec := range m.residents {
		if rec.phase == PhaseResident {
			ids = append(ids, id)
		}
	}
	m.mu.Unlock()
	for _, id := range ids {
		if err := m.Unload(id); err != nil && !IsNotResident(err) {
			m.log.Warn().Str("model", id).Err(err).Msg("unload at close")
		}
	}
	return nil
}
