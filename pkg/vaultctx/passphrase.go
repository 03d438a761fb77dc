// pkg/vaultctx/passphrase.go

package vaultctx

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	cerr "github.com/cockroachdb/errors"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"golang.org/x/term"
)

// MaxPassphraseLength bounds passphrase input.
const MaxPassphraseLength = 256

// PromptPassphrase reads a passphrase from the terminal without echoing
// it. Falls back to a buffered line read when stdin is not a TTY (piped
// input in scripts and tests).
func PromptPassphrase(rc *RuntimeContext, prompt string) (string, error) {
	logger := otelzap.Ctx(rc.Ctx)

	fmt.Fprintf(os.Stderr, "%s: ", prompt)

	var passphrase string
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		raw, err := term.ReadPassword(fd)
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return "", cerr.Wrap(err, "failed to read passphrase")
		}
		passphrase = string(raw)
	} else {
		logger.Debug("stdin is not a terminal, reading passphrase as a line")
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil && line == "" {
			return "", cerr.Wrap(err, "failed to read passphrase")
		}
		passphrase = strings.TrimRight(line, "\r\n")
	}

	if passphrase == "" {
		return "", cerr.New("passphrase cannot be empty")
	}
	if len(passphrase) > MaxPassphraseLength {
		return "", cerr.Newf("passphrase too long (%d chars, max %d)",
			len(passphrase), MaxPassphraseLength)
	}
	if strings.ContainsRune(passphrase, 0) {
		return "", cerr.New("passphrase contains null bytes")
	}

	return passphrase, nil
}

// ConfirmYesNo asks a y/N question on the terminal. Defaults to no.
func ConfirmYesNo(rc *RuntimeContext, prompt string) (bool, error) {
	fmt.Fprintf(os.Stderr, "%s (y/N): ", prompt)

	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && line == "" {
		return false, cerr.Wrap(err, "failed to read confirmation")
	}

	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}
