package crypto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPassword(t *testing.T) {
	t.Parallel()

	hash, err := HashPassword("hunter2")
	require.NoError(t, err)
	assert.NotEqual(t, "hunter2", hash)

	tests := []struct {
		name     string
		hash     string
		password string
		expErr   error
		expErrS  string
	}{
		{name: "ok", hash: hash, password: "hunter2"},
		{name: "err/mismatch", hash: hash, password: "hunter3", expErr: ErrPasswordMismatch},
		{name: "err/empty_password", hash: hash, password: "", expErr: ErrPasswordMismatch},
		{name: "err/invalid_hash", hash: "nope", password: "hunter2", expErrS: "failed checking password"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := CheckPassword(tt.hash, tt.password)
			switch {
			case tt.expErr != nil:
				assert.ErrorIs(t, err, tt.expErr)
			case tt.expErrS != "":
				assert.ErrorContains(t, err, tt.expErrS)
			default:
				assert.NoError(t, err)
			}
		})
	}
}

func TestHashPasswordEmpty(t *testing.T) {
	t.Parallel()

	_, err := HashPassword("")
	assert.EqualError(t, err, "password must not be empty")
}

func TestRandomData(t *testing.T) {
	t.Parallel()

	data, err := RandomData(16)
	require.NoError(t, err)
	assert.Len(t, data, 16)

	_, err = RandomData(-1)
	assert.Error(t, err)
}
