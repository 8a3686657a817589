package errors

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
)

// Log logs an error using the given logger, extracting metadata if it's a
// StructuredError.
func Log(logger *slog.Logger, err error) {
	var serr *StructuredError
	if !errors.As(err, &serr) {
		logger.Error(err.Error())
		return
	}

	args := make([]any, 0, len(serr.metadata)*2+2)
	if serr.cause != nil {
		args = append(args, "cause", serr.cause.Error())
	}

	keys := make([]string, 0, len(serr.metadata))
	for k := range serr.metadata {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		args = append(args, k, serr.metadata[k])
	}

	logger.Error(serr.Error(), args...)
}

// Errorf writes err to w in a user friendly format. The cause and hint of a
// StructuredError are written on separate lines.
func Errorf(w io.Writer, err error) {
	fmt.Fprintf(w, "Error: %s\n", err)

	var serr *StructuredError
	if !errors.As(err, &serr) {
		return
	}
	if serr.cause != nil {
		fmt.Fprintf(w, "Cause: %s\n", serr.cause)
	}
	if hint := serr.Hint(); hint != "" {
		fmt.Fprintf(w, "Hint: %s\n", hint)
	}
}
