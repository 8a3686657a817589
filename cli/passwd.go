package cli

import (
	"bufio"
	"fmt"
	"strings"

	actx "go.hackfix.me/ticketd/app/context"
	aerrors "go.hackfix.me/ticketd/app/errors"
	"go.hackfix.me/ticketd/crypto"
)

// Passwd reads a password from stdin and writes its bcrypt hash to stdout.
type Passwd struct{}

// Run the passwd command.
func (c *Passwd) Run(appCtx *actx.Context) error {
	scanner := bufio.NewScanner(appCtx.Stdin)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return fmt.Errorf("failed reading password: %w", err)
		}
		return aerrors.NewWith("no password provided",
			"hint", "write the password to stdin, e.g. echo 'secret' | ticketd passwd")
	}

	password := strings.TrimRight(scanner.Text(), "\r")
	hash, err := crypto.HashPassword(password)
	if err != nil {
		return err //nolint:wrapcheck // Already descriptive.
	}

	fmt.Fprintln(appCtx.Stdout, hash)

	return nil
}
