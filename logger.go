package gid

import "github.com/pixelstream/gid/internal/core"

// Logger is the diagnostic hook a caller may inject into a Descriptor.
// The default is a silent no-op, per spec.md §9's re-architecture note
// ("a global tracing switch, replaced by a logger injected into the
// descriptor, default no-op"). No decoder ever logs above debug, and
// logging never participates in the error path.
type Logger = core.Logger

// Option configures LoadHeader.
type Option func(*options)

type options struct {
	log core.Logger
}

// WithLogger injects a Logger into the Descriptor produced by LoadHeader.
func WithLogger(l Logger) Option {
	return func(o *options) { o.log = l }
}
