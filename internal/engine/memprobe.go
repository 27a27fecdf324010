package engine

import (
	"os"

	"github.com/shirou/gopsutil/v4/process"
)

// MemProbe samples this process's resident set size. On unified-memory
// accelerators the weights and KV cache live in process memory, so an
// RSS delta across a generation approximates the accelerator delta.
type MemProbe struct {
	proc *process.Process
}

// NewMemProbe builds a probe for the current process. The zero probe is
// usable and reports 0.
func NewMemProbe() *MemProbe {
	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return &MemProbe{}
	}
	return &MemProbe{proc: p}
}

// SampleMB returns the current RSS in megabytes, 0 if unavailable.
func (m *MemProbe) SampleMB() float64 {
	if m == nil || m.proc == nil {
		return 0
	}
	mi, err := m.proc.MemoryInfo()
	if err != nil || mi == nil {
		return 0
	}
	return float64(mi.RSS) / (1024 * 1024)
}

// DeltaMB returns after-before clamped at zero; freed buffers between
// samples must not read as negative consumption.
func DeltaMB(before, after float64) float64 {
	d := after - before
	if d < 0 {
		return 0
	}
	return d
}
