package manager

// Phase is the residency lifecycle phase of one model id.
type Phase string

const (
	PhaseUnloaded Phase = "unloaded"
	PhaseLoading  Phase = "loading"
	PhaseResident Phase = "resident"
	PhaseFailed   Phase = "failed"
)

// ResidencyState is a read-only snapshot of one model's residency.
type ResidencyState struct {
	Phase    Phase
	Progress float64
	Handle   *Handle
	Err      error
}

// residency is the per-model record in the shared state table.
// Guarded by Manager.mu.
type residency struct {
	phase    Phase
	progress float64
	handle   *Handle
	err      error
	// op is the in-flight (possibly still queued) load operation that
	// coalesces concurrent requests for this id. Non-nil from the moment
	// a load is requested until it resolves.
	op *loadOp
}

// loadOp is one underlying load serving any number of coalesced callers.
// done is closed exactly once, after handle/err are set.
type loadOp struct {
	done   chan struct{}
	handle *Handle
	err    error
}

func newLoadOp() *loadOp { return &loadOp{done: make(chan struct{})} }

func (op *loadOp) resolve(h *Handle, err error) {
	op.handle = h
	op.err = err
	close(op.done)
}
