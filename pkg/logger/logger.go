// Package logger holds the process-wide zerolog logger.
//
// main calls Init once; code that cannot receive a logger by injection uses
// Get. Components derive tagged children with For.
package logger

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Options configures Init.
type Options struct {
	// Level is a zerolog level name ("warning" is accepted for warn).
	// Unknown or empty values mean info.
	Level string
	// Pretty switches to the coloured console writer for local runs.
	Pretty bool
	// Output defaults to os.Stdout.
	Output io.Writer
	// Service, Env and Version are stamped on every entry when set.
	Service string
	Env     string
	Version string
}

var (
	mu   sync.RWMutex
	root *zerolog.Logger
)

// Init builds the root logger on first call and returns it. Later calls
// return the existing logger and ignore opts.
func Init(opts Options) zerolog.Logger {
	mu.Lock()
	defer mu.Unlock()
	if root != nil {
		return *root
	}

	zerolog.TimeFieldFormat = time.RFC3339Nano
	lvl := parseLevel(opts.Level)
	zerolog.SetGlobalLevel(lvl)

	l := zerolog.New(writer(opts)).Level(lvl).With().Timestamp().Caller().Logger()
	l = withFields(l, map[string]string{
		"service": opts.Service,
		"env":     opts.Env,
		"version": opts.Version,
	})
	root = &l
	return l
}

// Get returns the root logger. It panics when Init has not run.
func Get() zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	if root == nil {
		panic("logger: Get() called before Init()")
	}
	return *root
}

// For returns a child of parent tagged with the component name.
func For(parent zerolog.Logger, component string) zerolog.Logger {
	return parent.With().Str("component", component).Logger()
}

// Reset drops the root logger. Tests only.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	root = nil
}

func writer(opts Options) io.Writer {
	out := opts.Output
	if out == nil {
		out = os.Stdout
	}
	if opts.Pretty {
		return zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}
	return out
}

func withFields(l zerolog.Logger, fields map[string]string) zerolog.Logger {
	ctx := l.With()
	for k, v := range fields {
		if v != "" {
			ctx = ctx.Str(k, v)
		}
	}
	return ctx.Logger()
}

func parseLevel(s string) zerolog.Level {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "warning" {
		s = "warn"
	}
	lvl, err := zerolog.ParseLevel(s)
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}
