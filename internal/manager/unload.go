package manager

// Unload releases a resident model. The handle is invalidated first, so
// any summarize call still borrowing it fails with ModelUnloaded; the
// runtime is freed only after in-flight borrows drain (bounded by the
// drain timeout). Unloading an Unloaded or Failed model is a no-op;
// racing a not-yet-resident load fails with NotResident and leaves the
// load untouched.
func (m *Manager) Unload(modelID string) error {
	m.mu.Lock()
	rec, ok := m.residents[modelID]
	if !ok {
		if _, known := m.registry.Lookup(modelID); !known {
			m.mu.Unlock()
			return ErrModelNotFound(modelID)
		}
		m.mu.Unlock()
		return nil
	}
	switch rec.phase {
	case PhaseUnloaded, PhaseFailed:
		m.mu.Unlock()
		return nil
	case PhaseLoading:
		m.mu.Unlock()
		return ErrNotResident(modelID, string(PhaseLoading))
	}
	if rec.op != nil {
		// Queued load that has not transitioned to Loading yet.
		m.mu.Unlock()
		return ErrNotResident(modelID, "load pending")
	}
	h := rec.handle
	rec.phase = PhaseUnloaded
	rec.progress = 0
	rec.handle = nil
	rec.err = nil
	m.usedMB -= h.FootprintMB()
	if m.usedMB < 0 {
		m.usedMB = 0
	}
	used := m.usedMB
	m.mu.Unlock()

	m.publish(Event{Name: "unload_start", ModelID: modelID})
	h.invalidate()
	if !h.drain(m.drainTimeout) {
		m.publish(Event{Name: "unload_timeout", ModelID: modelID})
		m.log.Warn().Str("model", modelID).Msg("drain timeout; freeing runtime anyway")
	}
	if err := h.runtime.Close(); err != nil {
		m.log.Warn().Str("model", modelID).Err(err).Msg("runtime close")
	}

	managerUnloadsTotal.Inc()
	managerResidentMB.Set(float64(used))
	m.publish(Event{Name: "unload_done", ModelID: modelID, Fields: map[string]any{"freed_mb": h.FootprintMB()}})
	m.log.Info().Str("model", modelID).Int("freed_mb", h.FootprintMB()).Msg("model unloaded")
	return nil
}
