package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"go.hackfix.me/ticketd/web/server/types"
)

const maxBodySize = 1024 * 1024 // 1MiB

// DecodeJSON decodes the JSON request body into a new value of type T. It
// enforces a maximum body size limit to prevent resource exhaustion. If T
// implements Validate() error, the value is validated as well.
func DecodeJSON[T any](r *http.Request) (*T, error) {
	if r.Body == nil || r.Body == http.NoBody {
		return nil, types.InvalidParams("empty request body")
	}

	v := new(T)
	decoder := json.NewDecoder(io.LimitReader(r.Body, maxBodySize))
	if err := decoder.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, types.InvalidParams("empty request body")
		}
		return nil, types.InvalidParams(fmt.Sprintf("failed decoding request body: %s", err))
	}

	if vv, ok := any(v).(interface{ Validate() error }); ok {
		if err := vv.Validate(); err != nil {
			return nil, err //nolint:wrapcheck // Validation errors are already typed.
		}
	}

	return v, nil
}
