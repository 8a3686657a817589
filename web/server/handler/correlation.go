package handler

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/nrednav/cuid2"
)

// IDFormat is the format of request correlation IDs.
type IDFormat string

// Supported correlation ID formats.
const (
	IDFormatUUID  IDFormat = "uuid"
	IDFormatCUID2 IDFormat = "cuid2"
)

// NewIDGenerator returns a function that generates correlation IDs in the
// given format. The returned function is safe for concurrent use.
func NewIDGenerator(format IDFormat) (func() string, error) {
	switch format {
	case IDFormatUUID, "":
		return uuid.NewString, nil
	case IDFormatCUID2:
		gen, err := cuid2.Init(cuid2.WithLength(32))
		if err != nil {
			return nil, fmt.Errorf("failed initializing cuid2 generator: %w", err)
		}
		// The cuid2 counter isn't synchronized.
		var mx sync.Mutex
		return func() string {
			mx.Lock()
			defer mx.Unlock()
			return gen()
		}, nil
	default:
		return nil, fmt.Errorf("invalid request ID format: '%s'", format)
	}
}
