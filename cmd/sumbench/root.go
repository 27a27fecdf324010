package main

import (
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"sumbench/internal/config"
	"sumbench/internal/engine"
	"sumbench/internal/manager"
	"sumbench/internal/registry"
)

// app carries the resolved configuration and constructed core shared by
// all subcommands. The manager is explicitly owned here: built in
// PersistentPreRunE, torn down after the command returns.
type app struct {
	cfg config.Config
	log zerolog.Logger
	reg *registry.Registry
	mgr *manager.Manager
}

func newRootCmd() *cobra.Command {
	a := &app{}
	var (
		cfgPath   string
		logLevel  string
		modelsDir string
		budgetMB  int
	)

	root := &cobra.Command{
		Use:           "sumbench",
		Short:         "Benchmark LLM text summarization on a local accelerator",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&cfgPath, "config", "", "Config file (yaml/json/toml)")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug|info|warn|error")
	root.PersistentFlags().StringVar(&modelsDir, "models-dir", "", "Directory holding model weights (defaults SUMMARIZATION_MODEL_DIR or ~/models/sumbench)")
	root.PersistentFlags().IntVar(&budgetMB, "budget-mb", 0, "Accelerator memory budget in MB (0=unlimited)")

	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgPath)
		if err != nil {
			return err
		}
		// Flags win over file and env.
		if modelsDir != "" {
			cfg.ModelsDir = modelsDir
		}
		if budgetMB != 0 {
			cfg.BudgetMB = budgetMB
		}
		if logLevel != "" {
			cfg.LogLevel = logLevel
		}
		a.cfg = cfg
		a.log = newLogger(cfg.LogLevel)
		if !engine.Built() {
			a.log.Warn().Msg("built without the llama tag; inference calls will fail")
		}

		reg, err := registry.New(registry.Catalog(), cfg.ModelsDir)
		if err != nil {
			return err
		}
		a.reg = reg
		a.mgr = manager.NewWithConfig(manager.Config{
			Registry:  reg,
			Engine:    engine.NewLlamaEngine(cfg.EngineCtx, cfg.Threads),
			BudgetMB:  cfg.BudgetMB,
			Publisher: eventLogger{log: a.log},
			Logger:    a.log,
		})
		return nil
	}
	root.PersistentPostRun = func(cmd *cobra.Command, args []string) {
		if a.mgr != nil {
			_ = a.mgr.Close()
		}
	}

	root.AddCommand(newSummarizeCmd(a), newListModelsCmd(a), newBenchmarkCmd(a), newServeCmd(a))
	return root
}

func newLogger(level string) zerolog.Logger {
	lvl := zerolog.InfoLevel
	switch strings.ToLower(level) {
	case "debug":
		lvl = zerolog.DebugLevel
	case "warn", "warning":
		lvl = zerolog.WarnLevel
	case "error", "err":
		lvl = zerolog.ErrorLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		With().Timestamp().Logger().Level(lvl)
}

// eventLogger forwards manager lifecycle events to the structured log.
type eventLogger struct {
	log zerolog.Logger
}

func (l eventLogger) Publish(e manager.Event) {
	ev := l.log.Debug().Str("model", e.ModelID)
	for k, v := range e.Fields {
		ev = ev.Interface(k, v)
	}
	ev.Msg(e.Name)
}
