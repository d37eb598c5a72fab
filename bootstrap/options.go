package bootstrap

import (
	"io"
	"time"

	"github.com/kbukum/recoverykit/logger"
	"github.com/kbukum/recoverykit/recovery"
)

// Option configures the App during creation.
type Option func(*appOptions)

type appOptions struct {
	logger          *logger.Logger
	gracefulTimeout *time.Duration
	listenAddr      string
	output          io.Writer
	recoveryOpts    []recovery.Option
}

func resolveOptions(opts []Option) *appOptions {
	o := &appOptions{}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithLogger sets the application logger. Without it the global logger is
// initialized from the logging section.
func WithLogger(l *logger.Logger) Option {
	return func(o *appOptions) {
		o.logger = l
	}
}

// WithGracefulTimeout bounds shutdown in Run.
func WithGracefulTimeout(d time.Duration) Option {
	return func(o *appOptions) {
		o.gracefulTimeout = &d
	}
}

// WithListenAddr overrides the host:port built from the server section.
// "127.0.0.1:0" picks a free port.
func WithListenAddr(addr string) Option {
	return func(o *appOptions) {
		o.listenAddr = addr
	}
}

// WithSummaryOutput redirects the startup summary, os.Stdout by default.
func WithSummaryOutput(w io.Writer) Option {
	return func(o *appOptions) {
		o.output = w
	}
}

// WithRecoveryOptions appends manager options after those derived from the
// config, so they take precedence.
func WithRecoveryOptions(opts ...recovery.Option) Option {
	return func(o *appOptions) {
		o.recoveryOpts = append(o.recoveryOpts, opts...)
	}
}
