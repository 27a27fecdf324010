package manager

import (
	"time"

	"sumbench/pkg/types"
)

// State returns the residency snapshot for one model id. Unknown and
// never-loaded ids report Unloaded.
func (m *Manager) State(modelID string) ResidencyState {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.residents[modelID]
	if !ok {
		return ResidencyState{Phase: PhaseUnloaded}
	}
	return ResidencyState{Phase: rec.phase, Progress: rec.progress, Handle: rec.handle, Err: rec.err}
}

// Progress reports load progress in [0,1]. Non-decreasing for the
// lifetime of a single Loading episode; a fresh attempt resets it.
func (m *Manager) Progress(modelID string) float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if rec, ok := m.residents[modelID]; ok {
		return rec.progress
	}
	return 0
}

// HandleFor is a read-only handle lookup, safe for any number of
// concurrent readers. The second return is false unless Resident.
func (m *Manager) HandleFor(modelID string) (*Handle, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.residents[modelID]
	if !ok || rec.phase != PhaseResident || !rec.handle.Valid() {
		return nil, false
	}
	return rec.handle, true
}

// Status builds the report served by /status and the CLI.
func (m *Manager) Status() types.StatusResponse {
	m.mu.RLock()
	defer m.mu.RUnlock()
	resp := types.StatusResponse{BudgetMB: m.budgetMB, UsedMB: m.usedMB}
	now := time.Now()
	for id, rec := range m.residents {
		switch rec.phase {
		case PhaseLoading:
			resp.Loading = id
			resp.Progress = rec.progress
		case PhaseResident:
			resp.Residents = append(resp.Residents, types.ResidentStatus{
				ModelID:      id,
				FootprintMB:  rec.handle.FootprintMB(),
				ResidentSecs: now.Sub(rec.handle.LoadedAt()).Seconds(),
			})
		}
	}
	return resp
}
