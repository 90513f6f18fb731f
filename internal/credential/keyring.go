// Package credential finds the secrets the dashboard needs: the Jira API
// token and the IMAP password. They come from the environment, a TOML
// secrets file or the OS keyring.
package credential

import (
	"errors"
	"fmt"

	"github.com/99designs/keyring"
)

const serviceName = "fieldservice"

// Keyring entries.
const (
	KeyAPIToken     = "jira_api_token"
	KeyIMAPPassword = "imap_password"
)

// Keys lists every entry the dashboard writes.
var Keys = []string{KeyAPIToken, KeyIMAPPassword}

// ErrNotFound is returned when the keyring has no entry for a key.
var ErrNotFound = errors.New("credential not found")

var backends = []keyring.BackendType{
	keyring.KeychainBackend,
	keyring.SecretServiceBackend,
	keyring.WinCredBackend,
	keyring.PassBackend,
	keyring.FileBackend,
}

func openKeyring() (keyring.Keyring, error) {
	ring, err := keyring.Open(keyring.Config{
		ServiceName:              serviceName,
		AllowedBackends:          backends,
		FileDir:                  "~/.config/fieldservice/credentials",
		FilePasswordFunc:         keyring.FixedStringPrompt("fieldservice-file-key"),
		KeychainTrustApplication: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening keyring: %w", err)
	}
	return ring, nil
}

func notFound(err error) bool {
	return errors.Is(err, keyring.ErrKeyNotFound)
}

// Get reads key from the keyring. A missing entry wraps ErrNotFound.
func Get(key string) (string, error) {
	ring, err := openKeyring()
	if err != nil {
		return "", err
	}

	item, err := ring.Get(key)
	switch {
	case notFound(err):
		return "", fmt.Errorf("%s: %w", key, ErrNotFound)
	case err != nil:
		return "", fmt.Errorf("reading %s: %w", key, err)
	}
	return string(item.Data), nil
}

// Set writes key to the keyring, replacing any previous value.
func Set(key, value string) error {
	ring, err := openKeyring()
	if err != nil {
		return err
	}

	if err := ring.Set(keyring.Item{
		Key:   key,
		Data:  []byte(value),
		Label: "Field service dashboard " + key,
	}); err != nil {
		return fmt.Errorf("writing %s: %w", key, err)
	}
	return nil
}

// Delete removes key. Removing a missing entry is not an error; the
// returned bool reports whether something was removed.
func Delete(key string) (bool, error) {
	ring, err := openKeyring()
	if err != nil {
		return false, err
	}

	err = ring.Remove(key)
	switch {
	case notFound(err):
		return false, nil
	case err != nil:
		return false, fmt.Errorf("removing %s: %w", key, err)
	}
	return true, nil
}
