package evloop

// loopOptions holds the resolved configuration for a new Loop. Grounded on
// the teacher's eventloop/options.go functional-options pattern.
type loopOptions struct {
	logger Logger
	err    error
}

// LoopOption configures a Loop at construction time.
type LoopOption interface {
	apply(*loopOptions)
}

type loopOptionFunc func(*loopOptions)

func (f loopOptionFunc) apply(o *loopOptions) { f(o) }

// WithLogger installs a per-loop Logger, overriding the package default
// (see SetDefaultLogger).
func WithLogger(logger Logger) LoopOption {
	return loopOptionFunc(func(o *loopOptions) {
		if logger == nil {
			o.err = newError(InvalidArgument, "WithLogger: logger must not be nil", nil)
			return
		}
		o.logger = logger
	})
}

func resolveLoopOptions(opts []LoopOption) *loopOptions {
	o := &loopOptions{}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt.apply(o)
	}
	return o
}
