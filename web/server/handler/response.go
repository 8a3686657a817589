package handler

import (
	"encoding/json"
	"fmt"
	"net/http"

	"go.hackfix.me/ticketd/web/server/types"
)

// Response is a fully buffered HTTP response produced by a handler. Nothing is
// written to the client until the response has passed through the Finalizer.
type Response struct {
	statusCode int
	header     http.Header
	body       []byte
	finalized  bool
}

// NewResponse returns an empty response with the given status code.
func NewResponse(statusCode int) *Response {
	return &Response{statusCode: statusCode, header: http.Header{}}
}

// JSON returns a response with v encoded as JSON.
func JSON(statusCode int, v any) (*Response, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, types.Internal(fmt.Errorf("failed marshalling response into JSON: %w", err))
	}

	resp := NewResponse(statusCode)
	resp.header.Set("Content-Type", "application/json")
	resp.body = data

	return resp, nil
}

// HTML returns a response with an HTML body. The caller is responsible for
// escaping untrusted content.
func HTML(statusCode int, body string) *Response {
	resp := NewResponse(statusCode)
	resp.header.Set("Content-Type", "text/html; charset=utf-8")
	resp.body = []byte(body)
	return resp
}

// NoContent returns an empty 204 response.
func NoContent() *Response {
	return NewResponse(http.StatusNoContent)
}

// StatusCode returns the HTTP status code of the response.
func (r *Response) StatusCode() int {
	return r.statusCode
}

// Header returns the response headers, which can be modified until the
// response is finalized.
func (r *Response) Header() http.Header {
	if r.header == nil {
		r.header = http.Header{}
	}
	return r.header
}

// Body returns the response body.
func (r *Response) Body() []byte {
	return r.body
}

// Finalized returns true if the response already passed through the Finalizer.
func (r *Response) Finalized() bool {
	return r.finalized
}

func (r *Response) write(w http.ResponseWriter) error {
	for k, vals := range r.header {
		for _, v := range vals {
			w.Header().Add(k, v)
		}
	}

	if w.Header().Get("Content-Type") == "" && len(r.body) > 0 {
		w.Header().Set("Content-Type", "application/octet-stream")
	}

	statusCode := r.statusCode
	if statusCode == 0 {
		statusCode = http.StatusOK
	}
	w.WriteHeader(statusCode)

	if len(r.body) == 0 {
		return nil
	}
	_, err := w.Write(r.body)

	return err //nolint:wrapcheck // Wrapped by caller.
}
