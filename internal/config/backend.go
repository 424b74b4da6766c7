package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Backend is the persistent store behind `numera config set`. Values read
// from it sit between the built-in defaults and NUMERA_* env overrides.
type Backend interface {
	GetString(key string) (val string, ok bool, err error)
	GetInt(key string) (val int, ok bool, err error)
	GetBool(key string) (val bool, ok bool, err error)
	SetString(key, val string) error
	SetInt(key string, val int) error
	SetBool(key string, val bool) error
	Delete(key string) error
}

// ErrSecretNotFound is returned by Keychain.Get when no secret is stored.
var ErrSecretNotFound = errors.New("secret not found")

const appDir = "numera"

// xdgPath resolves name under the XDG base directory named by env, using
// fallback (relative to the home directory) when env is unset.
func xdgPath(env, fallback string, name ...string) string {
	base := os.Getenv(env)
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return filepath.Join(append([]string{appDir + "-data"}, name...)...)
		}
		base = filepath.Join(home, fallback)
	}
	return filepath.Join(append([]string{base, appDir}, name...)...)
}

// writeFileAtomic replaces path with data via a temp file in the same
// directory, so readers never observe a partial write.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
