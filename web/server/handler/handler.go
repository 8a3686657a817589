package handler

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"go.hackfix.me/ticketd/web/server/types"
)

// HandlerFunc handles a request and returns either a response or an error.
// Errors should be one of the types.Error variants; any other error is
// reported as types.Internal. A handler must not write to the client
// directly, the response is written once it's finalized.
type HandlerFunc func(r *http.Request) (*Response, error)

// Middleware wraps a HandlerFunc with additional processing, such as
// authorization. It can short-circuit the chain by returning an error without
// calling next.
type Middleware func(next HandlerFunc) HandlerFunc

// Handle creates an HTTP handler function that runs fn through the pipeline
// middlewares, finalizes the result and writes the response.
func (p *Pipeline) Handle(fn HandlerFunc) http.HandlerFunc {
	h := fn
	for i := len(p.middlewares) - 1; i >= 0; i-- {
		h = p.middlewares[i](h)
	}

	return func(w http.ResponseWriter, r *http.Request) {
		start := p.timeNow()

		resp, err := run(h, r)
		final := p.finalizer.finalize(r, resp, err, p.timeNow().Sub(start))

		if werr := final.write(w); werr != nil {
			p.finalizer.logger.Debug("failed writing response",
				"req_uuid", final.Header().Get(HeaderRequestID), "error", werr.Error())
		}
	}
}

// run calls h and converts a panic into an Internal error.
func run(h HandlerFunc, r *http.Request) (resp *Response, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			resp = nil
			err = types.Internal(fmt.Errorf("panic: %v\n%s", rec, debug.Stack()))
		}
	}()

	return h(r)
}
