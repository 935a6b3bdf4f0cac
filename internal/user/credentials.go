package user

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

const (
	// DefaultUsernameEnv is the environment variable holding the VCS username.
	DefaultUsernameEnv = "username"

	// DefaultTokenEnv is the environment variable holding the VCS token.
	DefaultTokenEnv = "GERRIT"
)

// ErrCredentialsMissing indicates a required credential variable is unset.
var ErrCredentialsMissing = errors.New("credentials missing")

// Credentials authenticate against the remote repository.
type Credentials struct {
	Username string
	Token    string
}

// CredentialsFromEnv reads credentials from the named environment variables.
// Empty names fall back to the defaults.
func CredentialsFromEnv(usernameEnv, tokenEnv string) (Credentials, error) {
	if usernameEnv == "" {
		usernameEnv = DefaultUsernameEnv
	}
	if tokenEnv == "" {
		tokenEnv = DefaultTokenEnv
	}

	c := Credentials{
		Username: strings.TrimSpace(os.Getenv(usernameEnv)),
		Token:    strings.TrimSpace(os.Getenv(tokenEnv)),
	}

	var missing []string
	if c.Username == "" {
		missing = append(missing, usernameEnv)
	}
	if c.Token == "" {
		missing = append(missing, tokenEnv)
	}
	if len(missing) > 0 {
		return c, fmt.Errorf("%w: set %s", ErrCredentialsMissing, strings.Join(missing, ", "))
	}
	return c, nil
}

// IsZero reports whether no credential is set.
func (c Credentials) IsZero() bool {
	return c.Username == "" && c.Token == ""
}

// String never prints the token.
func (c Credentials) String() string {
	if c.Token == "" {
		return c.Username
	}
	return c.Username + ":****"
}
