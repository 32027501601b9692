package blobdetect

import "github.com/benbjohnson/clock"

// options configures a blob detection service.
type options struct {
	// clk times each frame; tests substitute a mock.
	clk clock.Clock
}

// Option configures how we set up the blob detection service.
type Option interface {
	apply(*options)
}

type funcOption struct {
	f func(*options)
}

func (fdo *funcOption) apply(do *options) {
	fdo.f(do)
}

func newFuncOption(f func(*options)) *funcOption {
	return &funcOption{f: f}
}

// WithClock returns an Option which sets the clock used for frame timing.
func WithClock(clk clock.Clock) Option {
	return newFuncOption(func(o *options) {
		o.clk = clk
	})
}
