//go:build !darwin

package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
)

// secretFile holds secrets as service -> account -> value in a 0600 file
// under the XDG data directory.
type secretFile struct {
	path string
}

func platformSecrets() secretFile {
	return secretFile{path: xdgPath("XDG_DATA_HOME", ".local/share", "secrets.json")}
}

func (f secretFile) load() (map[string]map[string]string, error) {
	raw, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]map[string]string{}, nil
	}
	if err != nil {
		return nil, err
	}
	secrets := map[string]map[string]string{}
	if err := json.Unmarshal(raw, &secrets); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", f.path, err)
	}
	return secrets, nil
}

func (f secretFile) get(service, account string) (string, error) {
	secrets, err := f.load()
	if err != nil {
		return "", err
	}
	v, ok := secrets[service][account]
	if !ok {
		return "", fmt.Errorf("%s/%s: %w", service, account, ErrSecretNotFound)
	}
	return v, nil
}

// set rewrites the file. A corrupt file is an error rather than being
// overwritten, so other stored secrets are not lost.
func (f secretFile) set(service, account, value string) error {
	secrets, err := f.load()
	if err != nil {
		return err
	}
	if secrets[service] == nil {
		secrets[service] = map[string]string{}
	}
	secrets[service][account] = value

	raw, err := json.MarshalIndent(secrets, "", "  ")
	if err != nil {
		return err
	}
	return writeFileAtomic(f.path, raw)
}

func keychainGet(service, account string) (string, error) {
	return platformSecrets().get(service, account)
}

func keychainSet(service, account, value string) error {
	return platformSecrets().set(service, account, value)
}
