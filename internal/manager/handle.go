package manager

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"sumbench/internal/engine"
)

// Handle is the opaque capability to a resident model's runtime state.
// It is exclusively owned by the Manager; consumers borrow it via
// Begin/End and must never cache the runtime across calls. Unload
// invalidates the handle, cancels its context, and waits for borrows to
// drain before freeing the runtime.
type Handle struct {
	modelID     string
	runtime     engine.Runtime
	footprintMB int
	loadedAt    time.Time

	ctx    context.Context
	cancel context.CancelFunc

	invalid  atomic.Bool
	inflight sync.WaitGroup
	// genSlot serializes borrows: the runtime's execution context is not
	// reentrant, so at most one generation runs per handle regardless of
	// how many consumers hold it. Waiters are admitted in queue order.
	genSlot chan struct{}
}

func newHandle(modelID string, rt engine.Runtime, footprintMB int) *Handle {
	ctx, cancel := context.WithCancel(context.Background())
	return &Handle{
		modelID:     modelID,
		runtime:     rt,
		footprintMB: footprintMB,
		loadedAt:    time.Now(),
		ctx:         ctx,
		cancel:      cancel,
		genSlot:     make(chan struct{}, 1),
	}
}

func (h *Handle) ModelID() string     { return h.modelID }
func (h *Handle) FootprintMB() int    { return h.footprintMB }
func (h *Handle) LoadedAt() time.Time { return h.loadedAt }

// Valid reports whether the handle still references live runtime state.
func (h *Handle) Valid() bool { return h != nil && !h.invalid.Load() }

// Begin borrows the runtime for one call, queuing behind any borrow
// already in flight on this handle. The returned context is canceled
// when the model is unloaded, so in-flight generation stops promptly
// instead of touching freed state. Callers must invoke end.
func (h *Handle) Begin(ctx context.Context) (engine.Runtime, context.Context, func(), error) {
	if !h.Valid() {
		return nil, nil, nil, ErrModelUnloaded(h.modelID)
	}
	select {
	case h.genSlot <- struct{}{}:
	case <-ctx.Done():
		return nil, nil, nil, ctx.Err()
	case <-h.ctx.Done():
		return nil, nil, nil, ErrModelUnloaded(h.modelID)
	}
	h.inflight.Add(1)
	// Re-check after registering: an unload between the check and the
	// Add would otherwise slip past the drain.
	if !h.Valid() {
		h.inflight.Done()
		<-h.genSlot
		return nil, nil, nil, ErrModelUnloaded(h.modelID)
	}
	callCtx, cancel := mergeContexts(ctx, h.ctx)
	end := func() {
		cancel()
		h.inflight.Done()
		<-h.genSlot
	}
	return h.runtime, callCtx, end, nil
}

// invalidate marks the handle stale and cancels in-flight borrows.
func (h *Handle) invalidate() {
	h.invalid.Store(true)
	h.cancel()
}

// drain waits until all borrows finished or the timeout elapsed.
// Returns true when fully drained.
func (h *Handle) drain(timeout time.Duration) bool {
	done := make(chan struct{})
	go func() {
		h.inflight.Wait()
		close(done)
	}()
	select {
	case <-done:
		return true
	case <-time.After(timeout):
		return false
	}
}

// mergeContexts derives a context canceled when either parent is.
func mergeContexts(a, b context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(a)
	stop := make(chan struct{})
	go func() {
		select {
		case <-b.Done():
			cancel()
		case <-ctx.Done():
		case <-stop:
		}
	}()
	return ctx, func() {
		close(stop)
		cancel()
	}
}
