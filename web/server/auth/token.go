package auth

import (
	"crypto/rand"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/mr-tron/base58"
)

// ErrInvalidToken is returned when a token doesn't have the expected structure.
var ErrInvalidToken = errors.New("invalid token")

const (
	tokenPrefix   = "user-"
	signatureSize = 32
)

// Token is the parsed credential carried by requests. Its format is
// "user-<user ID>.<expiration Unix time>.<base58 signature>".
//
// Only the structure of a token is validated here. Checking the signature and
// expiration is the responsibility of a Verifier.
type Token struct {
	UserID    uint64
	ExpiresAt time.Time
	Signature []byte
}

// String encodes the token.
func (t Token) String() string {
	return fmt.Sprintf("%s%d.%d.%s",
		tokenPrefix, t.UserID, t.ExpiresAt.Unix(), base58.Encode(t.Signature))
}

// NewToken returns a token for userID that expires at expiresAt, with a random
// signature.
func NewToken(userID uint64, expiresAt time.Time) (Token, error) {
	if userID == 0 {
		return Token{}, errors.New("user ID must not be 0")
	}

	sig := make([]byte, signatureSize)
	if _, err := rand.Read(sig); err != nil {
		return Token{}, fmt.Errorf("failed generating token signature: %w", err)
	}

	return Token{UserID: userID, ExpiresAt: expiresAt.UTC().Truncate(time.Second), Signature: sig}, nil
}

// ParseToken parses the encoded token s.
func ParseToken(s string) (Token, error) {
	rest, ok := strings.CutPrefix(s, tokenPrefix)
	if !ok {
		return Token{}, fmt.Errorf("%w: missing '%s' prefix", ErrInvalidToken, tokenPrefix)
	}

	parts := strings.Split(rest, ".")
	if len(parts) != 3 {
		return Token{}, fmt.Errorf("%w: expected 3 parts, got %d", ErrInvalidToken, len(parts))
	}

	userID, err := strconv.ParseUint(parts[0], 10, 64)
	if err != nil || userID == 0 {
		return Token{}, fmt.Errorf("%w: invalid user ID '%s'", ErrInvalidToken, parts[0])
	}

	exp, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return Token{}, fmt.Errorf("%w: invalid expiration '%s'", ErrInvalidToken, parts[1])
	}

	if parts[2] == "" {
		return Token{}, fmt.Errorf("%w: empty signature", ErrInvalidToken)
	}
	sig, err := base58.Decode(parts[2])
	if err != nil || len(sig) == 0 {
		return Token{}, fmt.Errorf("%w: invalid signature encoding", ErrInvalidToken)
	}

	return Token{UserID: userID, ExpiresAt: time.Unix(exp, 0).UTC(), Signature: sig}, nil
}

// parseAuthHeader parses a Bearer token from an Authorization header.
func parseAuthHeader(header string) (string, error) {
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", errors.New("invalid Authorization header scheme")
	}

	token = strings.TrimSpace(token)
	if token == "" {
		return "", errors.New("empty Bearer token")
	}

	return token, nil
}
