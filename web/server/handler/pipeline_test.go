package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.hackfix.me/ticketd/web/server/types"
)

func TestPipelineHandle(t *testing.T) {
	t.Parallel()

	sink := &recordSink{}
	p := NewPipeline(NewFinalizer(sink, WithIDGenerator(staticID("req-1"))))

	h := p.Handle(func(_ *http.Request) (*Response, error) {
		resp := HTML(http.StatusOK, "<p>hi</p>")
		resp.Header().Set("X-Custom", "yes")
		return resp, nil
	})

	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodGet, "/hello", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "<p>hi</p>", rec.Body.String())
	assert.Equal(t, "yes", rec.Header().Get("X-Custom"))
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, "req-1", rec.Header().Get(HeaderRequestID))
	assert.Len(t, sink.records(), 1)
}

func TestPipelinePanic(t *testing.T) {
	t.Parallel()

	sink := &recordSink{}
	p := NewPipeline(NewFinalizer(sink, WithIDGenerator(staticID("req-1"))))

	h := p.Handle(func(_ *http.Request) (*Response, error) {
		panic("handler exploded")
	})

	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":{"type":"SERVICE_ERROR","req_uuid":"req-1"}}`, rec.Body.String())
	assert.NotContains(t, rec.Body.String(), "exploded")

	recs := sink.records()
	require.Len(t, recs, 1)
	require.NotNil(t, recs[0].Err)
	assert.Equal(t, types.KindInternal, recs[0].Err.Kind())
	assert.Contains(t, recs[0].Err.Error(), "panic: handler exploded")
}

func TestPipelineMiddlewareOrder(t *testing.T) {
	t.Parallel()

	var (
		mx    sync.Mutex
		calls []string
	)
	record := func(name string) Middleware {
		return func(next HandlerFunc) HandlerFunc {
			return func(r *http.Request) (*Response, error) {
				mx.Lock()
				calls = append(calls, name)
				mx.Unlock()
				return next(r)
			}
		}
	}

	base := NewPipeline(NewFinalizer(nil)).With(record("first"))
	extended := base.With(record("second"), record("third"))

	handler := func(_ *http.Request) (*Response, error) { return NoContent(), nil }

	extended.Handle(handler)(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, []string{"first", "second", "third"}, calls)

	calls = nil
	base.Handle(handler)(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, []string{"first"}, calls)
	assert.Same(t, base.Finalizer(), extended.Finalizer())
}

func TestPipelineShortCircuit(t *testing.T) {
	t.Parallel()

	sink := &recordSink{}
	deny := func(_ HandlerFunc) HandlerFunc {
		return func(_ *http.Request) (*Response, error) {
			return nil, types.AuthMissingCredential()
		}
	}
	p := NewPipeline(NewFinalizer(sink)).With(deny)

	called := false
	h := p.Handle(func(_ *http.Request) (*Response, error) {
		called = true
		return NoContent(), nil
	})

	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodGet, "/api/whoami", nil))

	assert.False(t, called)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	var env types.ErrorEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.Equal(t, types.ClientNoAuth, env.Error.Type)
	assert.Equal(t, rec.Header().Get(HeaderRequestID), env.Error.ReqUUID)
}

func TestPipelineDuration(t *testing.T) {
	t.Parallel()

	sink := &recordSink{}
	p := NewPipeline(NewFinalizer(sink))
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	n := 0
	p.timeNow = func() time.Time {
		n++
		return start.Add(time.Duration(n-1) * 250 * time.Millisecond)
	}

	p.Handle(func(_ *http.Request) (*Response, error) {
		return NoContent(), nil
	})(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	recs := sink.records()
	require.Len(t, recs, 1)
	assert.Equal(t, 250*time.Millisecond, recs[0].Duration)
}

func TestDecodeJSON(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		body    string
		expErr  string
		expKind types.Kind
	}{
		{name: "ok", body: `{"title":" printer "}`},
		{name: "err/empty", body: "", expErr: "empty request body", expKind: types.KindInvalidParams},
		{name: "err/invalid_json", body: `{"title":`, expErr: "failed decoding request body", expKind: types.KindInvalidParams},
		{name: "err/validation", body: `{"title":"   "}`, expErr: "ticket title must not be empty", expKind: types.KindInvalidParams},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			req := httptest.NewRequest(http.MethodPost, "/api/tickets", strings.NewReader(tt.body))
			v, err := DecodeJSON[types.CreateTicketRequest](req)
			if tt.expErr != "" {
				assert.ErrorContains(t, err, tt.expErr)
				assert.Equal(t, tt.expKind, types.AsError(err).Kind())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "printer", v.Title)
		})
	}
}
