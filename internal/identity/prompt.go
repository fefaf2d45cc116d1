package identity

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"golang.org/x/term"
)

const minPasswordLength = 8

// PasswordPrompt asks the operator for a password.
type PasswordPrompt func(prompt string) (string, error)

// PromptPassword reads a password from the terminal without echoing it.
//
//nolint:forbidigo // Password input requires direct terminal I/O
func PromptPassword(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)

	passwordBytes, err := term.ReadPassword(int(os.Stdin.Fd()))
	if err != nil {
		return "", errors.Wrap(err, "failed to read password from terminal")
	}

	fmt.Fprintln(os.Stderr)

	return string(passwordBytes), nil
}

// PromptNewPassword asks for a password twice and enforces a minimum length.
func PromptNewPassword(prompt PasswordPrompt) (string, error) {
	password, err := prompt(fmt.Sprintf("Enter password for keystore (min %d characters): ", minPasswordLength))
	if err != nil {
		return "", errors.Wrap(err, "failed to read password")
	}

	if len(password) < minPasswordLength {
		return "", errors.Errorf("password must be at least %d characters", minPasswordLength)
	}

	passwordConfirm, err := prompt("Confirm password: ")
	if err != nil {
		return "", errors.Wrap(err, "failed to read password confirmation")
	}

	if password != passwordConfirm {
		return "", errors.New("passwords do not match")
	}

	return password, nil
}
