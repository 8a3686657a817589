package handler

import (
	"slices"
	"time"
)

// Pipeline defines the processing stages for HTTP requests and responses. All
// handlers created from the same Pipeline share its Finalizer.
type Pipeline struct {
	finalizer   *Finalizer
	middlewares []Middleware
	timeNow     func() time.Time
}

// NewPipeline creates a new pipeline without middlewares.
func NewPipeline(f *Finalizer) *Pipeline {
	if f == nil {
		f = NewFinalizer(nil)
	}
	return &Pipeline{finalizer: f, timeNow: time.Now}
}

// With returns a new Pipeline that runs the given middlewares after the ones
// of p, in the order specified. p itself is not modified.
func (p *Pipeline) With(mw ...Middleware) *Pipeline {
	return &Pipeline{
		finalizer:   p.finalizer,
		middlewares: slices.Concat(p.middlewares, mw),
		timeNow:     p.timeNow,
	}
}

// Finalizer returns the Finalizer of the pipeline.
func (p *Pipeline) Finalizer() *Finalizer {
	return p.finalizer
}
