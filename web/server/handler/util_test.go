package handler

import (
	"context"
	"errors"
	"sync"
)

// recordSink is a Sink that keeps all records in memory.
type recordSink struct {
	mx   sync.Mutex
	recs []RequestLog
	err  error
}

func (s *recordSink) Write(_ context.Context, rec RequestLog) error {
	s.mx.Lock()
	defer s.mx.Unlock()
	s.recs = append(s.recs, rec)
	return s.err
}

func (s *recordSink) records() []RequestLog {
	s.mx.Lock()
	defer s.mx.Unlock()
	return append([]RequestLog(nil), s.recs...)
}

func staticID(id string) func() string {
	return func() string { return id }
}

var errBoom = errors.New("boom")
