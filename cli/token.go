package cli

import (
	"fmt"
	"time"

	actx "go.hackfix.me/ticketd/app/context"
	aerrors "go.hackfix.me/ticketd/app/errors"
	"go.hackfix.me/ticketd/web/server/auth"
)

// Token issues an auth token for a configured user.
type Token struct {
	UserID uint64 `arg:"" help:"The ID of the user."`
	//nolint:lll // Long struct tags are unavoidable.
	Expiration time.Time `type:"expiration" help:"Token expiration as a duration relative to now (e.g. 1h, 1d, 1w), or a fixed time in RFC 3339 format (e.g. %s). Defaults to the configured token lifetime."`
}

// Run the token command.
func (c *Token) Run(appCtx *actx.Context) error {
	if !c.knownUser(appCtx) {
		return aerrors.NewWith(fmt.Sprintf("unknown user ID: %d", c.UserID),
			"hint", "add the user to the auth.users section of the configuration file")
	}

	exp := c.Expiration
	if exp.IsZero() {
		exp = appCtx.TimeNow().Add(appCtx.Config.Auth.TokenLifetime.V)
	}

	tok, err := auth.NewToken(c.UserID, exp)
	if err != nil {
		return aerrors.NewWithCause("failed issuing token", err)
	}

	appCtx.Logger.Debug("issued token", "user_id", c.UserID, "expires_at", tok.ExpiresAt)
	fmt.Fprintln(appCtx.Stdout, tok.String())

	return nil
}

func (c *Token) knownUser(appCtx *actx.Context) bool {
	for _, u := range appCtx.Config.Auth.Users {
		if u.ID == c.UserID {
			return true
		}
	}
	return false
}
