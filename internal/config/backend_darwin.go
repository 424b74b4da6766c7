//go:build darwin

package config

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
)

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return appDir + "-data"
	}
	return filepath.Join(home, "Library", "Application Support", appDir)
}

func newPlatformBackend() Backend {
	return defaultsBackend{domain: "com.numera.app"}
}

// defaultsBackend stores keys in a UserDefaults domain through the
// defaults(1) tool.
type defaultsBackend struct {
	domain string
}

func (b defaultsBackend) run(args ...string) (string, error) {
	out, err := exec.Command("defaults", args...).CombinedOutput()
	return strings.TrimSpace(string(out)), err
}

// read reports ok=false when the key is absent, which defaults signals by
// exiting with status 1.
func (b defaultsBackend) read(key string) (string, bool, error) {
	out, err := b.run("read", b.domain, key)
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && exitErr.ExitCode() == 1 {
			return "", false, nil
		}
		return "", false, fmt.Errorf("defaults read %s: %w: %s", key, err, out)
	}
	return out, true, nil
}

func (b defaultsBackend) write(key, typ, val string) error {
	if out, err := b.run("write", b.domain, key, typ, val); err != nil {
		return fmt.Errorf("defaults write %s: %w: %s", key, err, out)
	}
	return nil
}

func (b defaultsBackend) GetString(key string) (string, bool, error) {
	return b.read(key)
}

func (b defaultsBackend) GetInt(key string) (int, bool, error) {
	s, ok, err := b.read(key)
	if !ok || err != nil {
		return 0, ok, err
	}
	i, err := strconv.Atoi(s)
	if err != nil {
		return 0, true, fmt.Errorf("%s: %w", key, err)
	}
	return i, true, nil
}

// GetBool parses both `-bool` values, which defaults prints as 1 or 0, and
// strings written by hand.
func (b defaultsBackend) GetBool(key string) (bool, bool, error) {
	s, ok, err := b.read(key)
	if !ok || err != nil {
		return false, ok, err
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		return false, true, fmt.Errorf("%s: %w", key, err)
	}
	return v, true, nil
}

func (b defaultsBackend) SetString(key, val string) error {
	return b.write(key, "-string", val)
}

func (b defaultsBackend) SetInt(key string, val int) error {
	return b.write(key, "-int", strconv.Itoa(val))
}

func (b defaultsBackend) SetBool(key string, val bool) error {
	return b.write(key, "-bool", strconv.FormatBool(val))
}

func (b defaultsBackend) Delete(key string) error {
	if _, ok, err := b.read(key); !ok || err != nil {
		return err
	}
	if out, err := b.run("delete", b.domain, key); err != nil {
		return fmt.Errorf("defaults delete %s: %w: %s", key, err, out)
	}
	return nil
}
