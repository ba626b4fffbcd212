package logging

import (
	"go.uber.org/zap/zapcore"
)

// newSampledCore gives each level listed in cfg.Levels its own sampler.
// Unlisted levels, and Error and above, are written unsampled.
func newSampledCore(core zapcore.Core, cfg SamplingConfig) zapcore.Core {
	if !cfg.Enabled || len(cfg.Levels) == 0 {
		return core
	}

	sampled := func(lvl zapcore.Level) bool {
		_, ok := cfg.Levels[lvl]
		return ok && lvl < zapcore.ErrorLevel
	}

	cores := []zapcore.Core{
		&levelGate{Core: core, allow: func(lvl zapcore.Level) bool { return !sampled(lvl) }},
	}
	for lvl, rate := range cfg.Levels {
		if !sampled(lvl) {
			continue
		}
		only := &levelGate{Core: core, allow: func(l zapcore.Level) bool { return l == lvl }}
		cores = append(cores, zapcore.NewSamplerWithOptions(only, cfg.Tick.Duration(), rate.Initial, rate.Thereafter))
	}
	return zapcore.NewTee(cores...)
}

// levelGate restricts a core to the levels allow accepts.
type levelGate struct {
	zapcore.Core
	allow func(zapcore.Level) bool
}

func (g *levelGate) Enabled(lvl zapcore.Level) bool {
	return g.allow(lvl) && g.Core.Enabled(lvl)
}

func (g *levelGate) Check(e zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if !g.allow(e.Level) {
		return ce
	}
	return g.Core.Check(e, ce)
}

func (g *levelGate) With(fields []zapcore.Field) zapcore.Core {
	return &levelGate{Core: g.Core.With(fields), allow: g.allow}
}
