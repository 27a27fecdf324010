package manager

import (
	"context"
	"errors"
	"time"

	"sumbench/pkg/types"
)

// RequestLoad makes modelID resident and returns its handle. The caller
// is suspended until the load resolves. Requests for an id that is
// already loading attach to the in-flight operation; requests for
// distinct ids queue behind the manager-wide load slot in request
// order, since weight loading contends for the accelerator memory bus.
func (m *Manager) RequestLoad(ctx context.Context, modelID string) (*Handle, error) {
	spec, ok := m.registry.Lookup(modelID)
	if !ok {
		return nil, ErrModelNotFound(modelID)
	}
	if !m.registry.Available(spec) {
		return nil, ErrModelNotAvailable(modelID, m.registry.WeightPath(spec))
	}

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil, errors.New("manager is closed")
	}
	rec := m.record(modelID)
	if rec.phase == PhaseResident && rec.handle.Valid() {
		// Idempotent: an existing resident handle is returned as-is,
		// with no duplicate progress events or memory commit.
		h := rec.handle
		m.mu.Unlock()
		return h, nil
	}
	if rec.op != nil {
		// Coalesce onto the in-flight (or still queued) load.
		op := rec.op
		m.mu.Unlock()
		return awaitOp(ctx, op)
	}
	op := newLoadOp()
	rec.op = op
	m.mu.Unlock()

	// This caller serves the load. Acquire the single manager-wide slot
	// first so two models never report Loading at the same instant.
	if err := m.acquireLoadSlot(ctx); err != nil {
		m.abandonOp(modelID, op, err)
		return nil, err
	}
	defer m.releaseLoadSlot()
	return m.performLoad(ctx, spec, op)
}

// performLoad runs admission, the engine load, and the state commit.
// Caller holds the load slot.
func (m *Manager) performLoad(ctx context.Context, spec types.ModelSpec, op *loadOp) (*Handle, error) {
	start := time.Now()
	m.mu.Lock()
	rec := m.record(spec.ID)
	required := spec.ExpectedMB()
	if m.budgetMB > 0 && m.usedMB+required > m.budgetMB {
		used := m.usedMB
		rec.op = nil
		m.mu.Unlock()
		err := ErrInsufficientMemory(spec.ID, required, used, m.budgetMB)
		managerLoadsTotal.WithLabelValues("rejected").Inc()
		op.resolve(nil, err)
		return nil, err
	}
	rec.phase = PhaseLoading
	rec.progress = 0
	rec.err = nil
	rec.handle = nil
	m.mu.Unlock()

	m.publish(Event{Name: "load_start", ModelID: spec.ID})
	m.log.Info().Str("model", spec.ID).Int("expected_mb", required).Msg("loading model")

	rt, err := m.engine.Load(ctx, spec, m.registry.WeightPath(spec), func(f float64) {
		m.advanceProgress(spec.ID, f)
	})
	if err != nil {
		if ctx.Err() == nil {
			err = ErrLoadFailed(spec.ID, err)
		}
		m.mu.Lock()
		rec.phase = PhaseFailed
		rec.err = err
		rec.op = nil
		m.mu.Unlock()
		managerLoadsTotal.WithLabelValues("failed").Inc()
		m.publish(Event{Name: "load_failed", ModelID: spec.ID, Fields: map[string]any{"error": err.Error()}})
		m.log.Error().Str("model", spec.ID).Err(err).Msg("load failed")
		op.resolve(nil, err)
		return nil, err
	}

	measured := rt.MemoryMB()
	if measured <= 0 {
		measured = required
	}
	h := newHandle(spec.ID, rt, measured)

	m.mu.Lock()
	rec.phase = PhaseResident
	rec.progress = 1
	rec.handle = h
	rec.err = nil
	rec.op = nil
	m.usedMB += measured
	used := m.usedMB
	m.mu.Unlock()

	managerLoadsTotal.WithLabelValues("ok").Inc()
	managerLoadSeconds.Observe(time.Since(start).Seconds())
	managerResidentMB.Set(float64(used))
	m.publish(Event{Name: "load_done", ModelID: spec.ID, Fields: map[string]any{"footprint_mb": measured}})
	m.log.Info().Str("model", spec.ID).Int("footprint_mb", measured).
		Dur("took", time.Since(start)).Msg("model resident")
	op.resolve(h, nil)
	return h, nil
}

// advanceProgress applies a monotonic clamp for one Loading episode.
func (m *Manager) advanceProgress(modelID string, f float64) {
	if f < 0 {
		f = 0
	}
	if f > 1 {
		f = 1
	}
	m.mu.Lock()
	advanced := false
	if rec, ok := m.residents[modelID]; ok && rec.phase == PhaseLoading && f > rec.progress {
		rec.progress = f
		advanced = true
	}
	m.mu.Unlock()
	if advanced {
		m.publish(Event{Name: "load_progress", ModelID: modelID, Fields: map[string]any{"progress": f}})
	}
}

// abandonOp resolves a load that never started (queue wait canceled).
// Residency stays in its prior phase.
func (m *Manager) abandonOp(modelID string, op *loadOp, err error) {
	m.mu.Lock()
	if rec, ok := m.residents[modelID]; ok && rec.op == op {
		rec.op = nil
	}
	m.mu.Unlock()
	op.resolve(nil, err)
}

// awaitOp blocks an attached caller on the shared load operation.
func awaitOp(ctx context.Context, op *loadOp) (*Handle, error) {
	select {
	case <-op.done:
		return op.handle, op.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// record returns the residency record for id, creating it Unloaded.
// Caller holds m.mu.
func (m *Manager) record(id string) *residency {
	rec, ok := m.residents[id]
	if !ok {
		rec = &residency{phase: PhaseUnloaded}
		m.residents[id] = rec
	}
	return rec
}

// acquireLoadSlot blocks until this caller may load, strictly FIFO.
func (m *Manager) acquireLoadSlot(ctx context.Context) error {
	m.mu.Lock()
	if !m.loadBusy {
		m.loadBusy = true
		m.mu.Unlock()
		return nil
	}
	ch := make(chan struct{})
	m.loadWaiters = append(m.loadWaiters, ch)
	m.mu.Unlock()

	select {
	case <-ch:
		return nil
	case <-ctx.Done():
		m.mu.Lock()
		for i, w := range m.loadWaiters {
			if w == ch {
				m.loadWaiters = append(m.loadWaiters[:i], m.loadWaiters[i+1:]...)
				m.mu.Unlock()
				return ctx.Err()
			}
		}
		m.mu.Unlock()
		// The slot was granted concurrently with cancellation; hand it on.
		m.releaseLoadSlot()
		return ctx.Err()
	}
}

// releaseLoadSlot wakes the oldest waiter, or frees the slot.
func (m *Manager) releaseLoadSlot() {
	m.mu.Lock()
	if len(m.loadWaiters) > 0 {
		ch := m.loadWaiters[0]
		m.loadWaiters = m.loadWaiters[1:]
		m.mu.Unlock()
		close(ch)
		return
	}
	m.loadBusy = false
	m.mu.Unlock()
}
