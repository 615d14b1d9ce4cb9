// Package vault stores secrets such as the assist API key outside the
// config file.
package vault

import (
	"errors"
	"os"
)

// ErrNotFound is returned for a key the vault does not hold.
var ErrNotFound = errors.New("key not found")

// Vault is a small secret store.
type Vault interface {
	Set(key, value string) error
	Get(key string) (string, error)
	Delete(key string) error
	List() ([]string, error)
}

// New returns the vault at DefaultPath.
func New() Vault {
	return NewFileVault(DefaultPath())
}

// Source says where Resolve found a secret.
type Source string

const (
	SourceNone  Source = ""
	SourceEnv   Source = "env"
	SourceVault Source = "vault"
)

// Resolve looks up name in the environment first and then in v. A nil v
// only checks the environment.
func Resolve(v Vault, name string) (string, Source) {
	if val := os.Getenv(name); val != "" {
		return val, SourceEnv
	}
	if v == nil {
		return "", SourceNone
	}
	if val, err := v.Get(name); err == nil && val != "" {
		return val, SourceVault
	}
	return "", SourceNone
}

// Mask returns a masked version of a value for display.
func Mask(value string) string {
	if len(value) <= 8 {
		return "****"
	}
	return value[:4] + "..." + value[len(value)-4:]
}
