package manager

import (
	"time"

	"github.com/rs/zerolog"

	"sumbench/internal/engine"
	"sumbench/internal/registry"
)

// Defaults applied when corresponding Config fields are unset.
const (
	defaultDrainTimeout = 5 * time.Second
)

// Config encapsulates all tunables for Manager construction.
type Config struct {
	Registry *registry.Registry
	Engine   engine.Engine
	// BudgetMB caps the summed footprint of resident models plus the
	// expected footprint of an admitted load. 0 means unlimited.
	BudgetMB int
	// DrainTimeout bounds how long Unload waits for in-flight borrows.
	DrainTimeout time.Duration
	Publisher    EventPublisher
	Logger       zerolog.Logger
}

// NewWithConfig constructs a Manager from Config, applying defaults.
func NewWithConfig(cfg Config) *Manager {
	m := &Manager{
		registry:     cfg.Registry,
		engine:       cfg.Engine,
		budgetMB:     cfg.BudgetMB,
		drainTimeout: cfg.DrainTimeout,
		publisher:    cfg.Publisher,
		log:          cfg.Logger,
		residents:    make(map[string]*residency),
	}
	if m.drainTimeout <= 0 {
		m.drainTimeout = defaultDrainTimeout
	}
	if m.publisher == nil {
		m.publisher = noopPublisher{}
	}
	managerBudgetMB.Set(float64(m.budgetMB))
	return m
}
