// Package secret resolves credentials for the project store backends.
package secret

import (
	"fmt"
	"os"
	"strings"
)

// Store reads and writes named secrets such as store passwords.
type Store interface {
	Set(key string, value []byte) error
	// Get returns nil and no error when key does not exist.
	Get(key string) ([]byte, error)
	Delete(key string) error
}

// EnvStore reads secrets from environment variables named
// CANVASDOC_SECRET_<KEY>, with the key upper-cased and dashes turned into
// underscores. Set and Delete only affect the current process.
type EnvStore struct{}

func envName(key string) string {
	return "CANVASDOC_SECRET_" + strings.ToUpper(strings.NewReplacer("-", "_", ".", "_").Replace(key))
}

func (EnvStore) Set(key string, value []byte) error {
	return os.Setenv(envName(key), string(value))
}

func (EnvStore) Get(key string) ([]byte, error) {
	v, ok := os.LookupEnv(envName(key))
	if !ok {
		return nil, nil
	}
	return []byte(v), nil
}

func (EnvStore) Delete(key string) error {
	return os.Unsetenv(envName(key))
}

// Chain consults stores in order and returns the first value found. Writes go
// to the first store.
type Chain []Store

func (c Chain) Set(key string, value []byte) error {
	if len(c) == 0 {
		return fmt.Errorf("no secret store configured")
	}
	return c[0].Set(key, value)
}

func (c Chain) Get(key string) ([]byte, error) {
	for _, s := range c {
		v, err := s.Get(key)
		if err != nil {
			return nil, err
		}
		if v != nil {
			return v, nil
		}
	}
	return nil, nil
}

func (c Chain) Delete(key string) error {
	for _, s := range c {
		if err := s.Delete(key); err != nil {
			return err
		}
	}
	return nil
}

// Default is the environment first, then the macOS keychain.
func Default() Store {
	return Chain{EnvStore{}, NewKeychainStore()}
}

// ResolvePassword returns plain when set, otherwise the secret stored under
// key. An empty key yields plain.
func ResolvePassword(s Store, plain, key string) (string, error) {
	if plain != "" || key == "" {
		return plain, nil
	}
	v, err := s.Get(key)
	if err != nil {
		return "", fmt.Errorf("resolve secret %q: %w", key, err)
	}
	if v == nil {
		return "", fmt.Errorf("secret %q not found", key)
	}
	return string(v), nil
}
