package app

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/mandelsoft/vfs/pkg/vfs"
	"github.com/stretchr/testify/assert"

	"go.hackfix.me/ticketd/app/config"
	aerrors "go.hackfix.me/ticketd/app/errors"
	"go.hackfix.me/ticketd/crypto"
	"go.hackfix.me/ticketd/web/server/auth"
	"go.hackfix.me/ticketd/web/server/types"
)

func TestAppRoutes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		args         []string
		expStdout    []string
		notExpStdout []string
	}{
		{
			name: "ok/all",
			args: []string{"routes"},
			expStdout: []string{
				"/hello", "/hello2/{name}", "/api/login", "/api/whoami",
				"/api/tickets/{id}", "DELETE", "public", "protected",
			},
		},
		{
			name:         "ok/protected",
			args:         []string{"routes", "--protected"},
			expStdout:    []string{"/api/tickets", "/api/whoami", "protected"},
			notExpStdout: []string{"/hello", "/api/login", "public"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			tctx, cancel, h := newTestContext(t, 5*time.Second)
			defer cancel()

			app, err := newTestApp(tctx)
			h(assert.NoError(t, err))

			err = app.Run(tt.args...)
			h(assert.NoError(t, err))

			stdout := app.stdout.String()
			for _, exp := range tt.expStdout {
				h(assert.Contains(t, stdout, exp))
			}
			for _, notExp := range tt.notExpStdout {
				h(assert.NotContains(t, stdout, notExp))
			}
		})
	}
}

func TestAppPasswd(t *testing.T) {
	t.Parallel()

	t.Run("ok", func(t *testing.T) {
		t.Parallel()

		tctx, cancel, h := newTestContext(t, 10*time.Second)
		defer cancel()

		app, err := newTestApp(tctx)
		h(assert.NoError(t, err))

		go func() {
			_, _ = io.WriteString(app.stdin, "welcome\n")
			_ = app.stdin.Close()
		}()

		err = app.Run("passwd")
		h(assert.NoError(t, err))

		hash := strings.TrimSpace(app.stdout.String())
		h(assert.True(t, strings.HasPrefix(hash, "$2a$")))
		h(assert.NoError(t, crypto.CheckPassword(hash, "welcome")))
		h(assert.ErrorIs(t, crypto.CheckPassword(hash, "welcome!"), crypto.ErrPasswordMismatch))
	})

	t.Run("err/no_input", func(t *testing.T) {
		t.Parallel()

		tctx, cancel, h := newTestContext(t, 5*time.Second)
		defer cancel()

		app, err := newTestApp(tctx)
		h(assert.NoError(t, err))
		h(assert.NoError(t, app.stdin.Close()))

		err = app.Run("passwd")
		h(assert.EqualError(t, err, "no password provided"))
		h(assert.Empty(t, app.stdout.String()))
	})
}

func TestAppToken(t *testing.T) {
	t.Parallel()

	users := []config.User{
		{ID: 1, Name: "demo1", PasswordHash: "hash1"},
		{ID: 2, Name: "demo2", PasswordHash: "hash2"},
	}

	tests := []struct {
		name      string
		args      []string
		expUserID uint64
		expExp    time.Time
		expErr    string
	}{
		{
			name:      "ok/default_lifetime",
			args:      []string{"1"},
			expUserID: 1,
			expExp:    timeNow.Add(7 * 24 * time.Hour),
		},
		{
			name:      "ok/relative_expiration",
			args:      []string{"2", "--expiration", "1h30m"},
			expUserID: 2,
			expExp:    timeNow.Add(90 * time.Minute),
		},
		{
			name:      "ok/absolute_expiration",
			args:      []string{"2", "--expiration", "2025-02-01T12:00:00Z"},
			expUserID: 2,
			expExp:    time.Date(2025, 2, 1, 12, 0, 0, 0, time.UTC),
		},
		{
			name:   "err/unknown_user",
			args:   []string{"3"},
			expErr: "unknown user ID: 3",
		},
		{
			name:   "err/past_expiration",
			args:   []string{"1", "--expiration", "2024-12-31T00:00:00Z"},
			expErr: "expiration time is in the past",
		},
		{
			name:   "err/invalid_expiration",
			args:   []string{"1", "--expiration", "tomorrow"},
			expErr: "failed parsing CLI arguments",
		},
		{
			name:   "err/missing_user_id",
			args:   []string{},
			expErr: `failed parsing CLI arguments: expected "<user-id>"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			tctx, cancel, h := newTestContext(t, 5*time.Second)
			defer cancel()

			app, err := newTestApp(tctx)
			h(assert.NoError(t, err))
			h(assert.NoError(t, app.writeConfig(users...)))

			err = app.Run(append([]string{"token"}, tt.args...)...)
			if tt.expErr != "" {
				h(assert.ErrorContains(t, err, tt.expErr))
				h(assert.Empty(t, app.stdout.String()))
				return
			}
			h(assert.NoError(t, err))

			tok, err := auth.ParseToken(strings.TrimSpace(app.stdout.String()))
			h(assert.NoError(t, err))
			h(assert.Equal(t, tt.expUserID, tok.UserID))
			h(assert.True(t, tt.expExp.Equal(tok.ExpiresAt),
				"expected expiration %s, got %s", tt.expExp, tok.ExpiresAt))
		})
	}
}

func TestAppInvalidConfig(t *testing.T) {
	t.Parallel()

	tctx, cancel, h := newTestContext(t, 5*time.Second)
	defer cancel()

	app, err := newTestApp(tctx)
	h(assert.NoError(t, err))

	err = vfs.WriteFile(app.ctx.FS, "/config.json",
		[]byte(`{"server": {"request_id_format": "ulid"}}`), 0o644)
	h(assert.NoError(t, err))

	err = app.Run("routes")
	h(assert.EqualError(t, err, "failed loading configuration"))
	var serr *aerrors.StructuredError
	h(assert.True(t, errors.As(err, &serr)))
	h(assert.ErrorContains(t, serr.Cause(), "invalid request ID format: 'ulid'"))
	h(assert.Equal(t, "/config.json", serr.Metadata()["path"]))
}

func TestAppServe(t *testing.T) {
	t.Parallel()

	tctx, cancel, h := newTestContext(t, 10*time.Second)
	defer cancel()

	app, err := newTestApp(tctx)
	h(assert.NoError(t, err))

	hash, err := crypto.HashPassword("welcome")
	h(assert.NoError(t, err))
	h(assert.NoError(t, app.writeConfig(config.User{ID: 5, Name: "demo1", PasswordHash: hash})))

	addrCh := make(chan string, 1)
	app.stderr.waitFor(`started listener.*address=(\S+)`, 1, addrCh)

	runErr := make(chan error, 1)
	go func() {
		runErr <- app.Run("--log-level", "DEBUG", "serve", "127.0.0.1:0")
	}()

	var baseURL string
	select {
	case addr := <-addrCh:
		baseURL = "http://" + addr
	case err = <-runErr:
		h(assert.NoError(t, err))
		t.Fatal("serve command exited before listening")
	case <-tctx.Done():
		t.Fatal("timed out waiting for the web server to start")
	}

	do := func(method, path, body, cookie string) *http.Response {
		var rbody io.Reader
		if body != "" {
			rbody = strings.NewReader(body)
		}
		req, rerr := http.NewRequestWithContext(tctx, method, baseURL+path, rbody)
		h(assert.NoError(t, rerr))
		if cookie != "" {
			req.AddCookie(&http.Cookie{Name: "auth-token", Value: cookie})
		}
		resp, rerr := http.DefaultClient.Do(req)
		h(assert.NoError(t, rerr))
		t.Cleanup(func() { _ = resp.Body.Close() })
		return resp
	}

	resp := do(http.MethodGet, "/hello?name=ticketd", "", "")
	h(assert.Equal(t, http.StatusOK, resp.StatusCode))
	h(assert.NotEmpty(t, resp.Header.Get("X-Request-ID")))
	body, err := io.ReadAll(resp.Body)
	h(assert.NoError(t, err))
	h(assert.Equal(t, "Hello, <strong>ticketd</strong>", string(body)))

	resp = do(http.MethodGet, "/api/whoami", "", "")
	h(assert.Equal(t, http.StatusForbidden, resp.StatusCode))
	var env types.ErrorEnvelope
	h(assert.NoError(t, json.NewDecoder(resp.Body).Decode(&env)))
	h(assert.Equal(t, types.ClientNoAuth, env.Error.Type))
	h(assert.Equal(t, resp.Header.Get("X-Request-ID"), env.Error.ReqUUID))

	resp = do(http.MethodPost, "/api/login", `{"username":"demo1","pwd":"welcome"}`, "")
	h(assert.Equal(t, http.StatusOK, resp.StatusCode))
	var cookie string
	for _, c := range resp.Cookies() {
		if c.Name == "auth-token" {
			cookie = c.Value
		}
	}
	h(assert.NotEmpty(t, cookie))

	resp = do(http.MethodGet, "/api/whoami", "", cookie)
	h(assert.Equal(t, http.StatusOK, resp.StatusCode))
	var who types.WhoAmIResponse
	h(assert.NoError(t, json.NewDecoder(resp.Body).Decode(&who)))
	h(assert.Equal(t, uint64(5), who.UserID))

	resp = do(http.MethodPost, "/api/tickets", `{"title":"first"}`, cookie)
	h(assert.Equal(t, http.StatusCreated, resp.StatusCode))

	resp = do(http.MethodDelete, "/api/tickets/1", "", cookie)
	h(assert.Equal(t, http.StatusOK, resp.StatusCode))

	// Stop the server.
	cancel()
	select {
	case err = <-runErr:
		assert.NoError(t, err)
	case <-time.After(15 * time.Second):
		t.Fatal("timed out waiting for the serve command to exit")
	}

	stderr := app.stderr.String()
	assert.Contains(t, stderr, "started listener")
	// The serve command waits for the server goroutine to exit.
	assert.Contains(t, stderr, "web server shutdown")
	assert.Contains(t, stderr, fmt.Sprintf("client_error=%s", types.ClientNoAuth))
}
