package api

import (
	"errors"
	"net/http"

	"go.hackfix.me/ticketd/crypto"
	"go.hackfix.me/ticketd/web/server/auth"
	"go.hackfix.me/ticketd/web/server/handler"
	"go.hackfix.me/ticketd/web/server/types"
)

// Login checks the user credentials against the configured users, and on
// success issues an auth token in a cookie.
func (h *Handler) Login(r *http.Request) (*handler.Response, error) {
	req, err := handler.DecodeJSON[types.LoginRequest](r)
	if err != nil {
		return nil, err
	}

	cfg := h.appCtx.Config
	user, ok := cfg.Auth.FindUser(req.Username)
	if !ok {
		h.logger.Debug("login for unknown user", "username", req.Username)
		return nil, types.LoginFail()
	}

	if err = crypto.CheckPassword(user.PasswordHash, req.Password); err != nil {
		if errors.Is(err, crypto.ErrPasswordMismatch) {
			return nil, types.LoginFail()
		}
		return nil, types.Internal(err)
	}

	token, err := auth.NewToken(user.ID, h.appCtx.TimeNow().Add(cfg.Auth.TokenLifetime.V))
	if err != nil {
		return nil, types.Internal(err)
	}

	resp, err := handler.JSON(http.StatusOK, types.LoginResponse{Result: types.LoginResult{Success: true}})
	if err != nil {
		return nil, err
	}

	cookie := &http.Cookie{
		Name:     cfg.Auth.CookieName.V,
		Value:    token.String(),
		Path:     "/",
		Expires:  token.ExpiresAt,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	resp.Header().Add("Set-Cookie", cookie.String())

	return resp, nil
}
