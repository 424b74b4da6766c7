//go:build !darwin

package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"math"
	"os"
	"strconv"
)

func defaultDataDir() string {
	return xdgPath("XDG_DATA_HOME", ".local/share")
}

func newPlatformBackend() Backend {
	return openFileBackend(xdgPath("XDG_CONFIG_HOME", ".config", "config.json"))
}

// fileBackend keeps keys in one flat JSON object. An unreadable file is
// logged and treated as empty so a bad edit never blocks startup.
type fileBackend struct {
	path   string
	values map[string]any
}

func openFileBackend(path string) *fileBackend {
	b := &fileBackend{path: path, values: map[string]any{}}
	raw, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		slog.Warn("config file unreadable, using defaults", "path", path, "error", err)
	default:
		if err := json.Unmarshal(raw, &b.values); err != nil {
			slog.Warn("config file is not valid JSON, using defaults", "path", path, "error", err)
			b.values = map[string]any{}
		}
	}
	return b
}

func (b *fileBackend) GetString(key string) (string, bool, error) {
	switch v := b.values[key].(type) {
	case nil:
		return "", false, nil
	case string:
		return v, true, nil
	default:
		return fmt.Sprint(v), true, nil
	}
}

func (b *fileBackend) GetInt(key string) (int, bool, error) {
	switch v := b.values[key].(type) {
	case nil:
		return 0, false, nil
	case float64:
		if v != math.Trunc(v) || v < math.MinInt || v > math.MaxInt {
			return 0, true, fmt.Errorf("%s: %v is not an integer", key, v)
		}
		return int(v), true, nil
	case string:
		i, err := strconv.Atoi(v)
		if err != nil {
			return 0, true, fmt.Errorf("%s: %w", key, err)
		}
		return i, true, nil
	default:
		return 0, true, fmt.Errorf("%s: unexpected %T", key, v)
	}
}

// GetBool accepts JSON booleans and, for hand-edited files, strings
// strconv.ParseBool understands.
func (b *fileBackend) GetBool(key string) (bool, bool, error) {
	switch v := b.values[key].(type) {
	case nil:
		return false, false, nil
	case bool:
		return v, true, nil
	case string:
		p, err := strconv.ParseBool(v)
		if err != nil {
			return false, true, fmt.Errorf("%s: %w", key, err)
		}
		return p, true, nil
	default:
		return false, true, fmt.Errorf("%s: unexpected %T", key, v)
	}
}

func (b *fileBackend) SetString(key, val string) error { return b.put(key, val) }

func (b *fileBackend) SetInt(key string, val int) error { return b.put(key, val) }

func (b *fileBackend) SetBool(key string, val bool) error { return b.put(key, val) }

func (b *fileBackend) Delete(key string) error {
	if _, ok := b.values[key]; !ok {
		return nil
	}
	delete(b.values, key)
	return b.flush()
}

func (b *fileBackend) put(key string, val any) error {
	b.values[key] = val
	return b.flush()
}

func (b *fileBackend) flush() error {
	raw, err := json.MarshalIndent(b.values, "", "  ")
	if err != nil {
		return err
	}
	if err := writeFileAtomic(b.path, append(raw, '\n')); err != nil {
		return fmt.Errorf("writing %s: %w", b.path, err)
	}
	return nil
}
