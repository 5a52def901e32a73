// Package symlog wraps github.com/rs/zerolog the way the teacher calls
// straight into github.com/rs/zerolog/log from runtime.go and
// preprocessor/parser.go, generalized into a per-component logger so
// every package tags its entries instead of sharing one global logger.
package symlog

import (
	"os"
	"sync"

	"github.com/rs/zerolog"
)

var (
	base     zerolog.Logger
	baseOnce sync.Once
)

func rootLogger() zerolog.Logger {
	baseOnce.Do(func() {
		base = zerolog.New(os.Stderr).With().Timestamp().Logger()
	})
	return base
}

// For returns a logger tagged with the given component name, e.g.
// symlog.For("executor").Debug().Str("rule", id).Msg("evaluating").
func For(component string) zerolog.Logger {
	return rootLogger().With().Str("component", component).Logger()
}

// SetLevel adjusts the global minimum level, letting a host silence
// debug-level rule tracing in production the way the teacher's cmd/*
// binaries leave at Info by default.
func SetLevel(level zerolog.Level) {
	zerolog.SetGlobalLevel(level)
}
