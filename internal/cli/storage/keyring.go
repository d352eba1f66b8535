package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"
)

// DefaultKeyringService is the keychain service name the CLI writes under
const DefaultKeyringService = "ignitegym-cli"

// KeyringStore persists values in the OS keychain/credential manager.
// Keys are scoped so that sessions against different API hosts never
// overwrite each other.
type KeyringStore struct {
	service string
	scope   string
}

// NewKeyringStore creates a keyring-backed store. scope is usually the API host.
func NewKeyringStore(service, scope string) *KeyringStore {
	if service == "" {
		service = DefaultKeyringService
	}
	return &KeyringStore{service: service, scope: scope}
}

// keyringKey returns a unique key per scope
func (k *KeyringStore) keyringKey(key string) string {
	if k.scope == "" {
		return key
	}
	return fmt.Sprintf("%s-%s", key, k.scope)
}

func (k *KeyringStore) Get(_ context.Context, key string) (string, error) {
	value, err := keyring.Get(k.service, k.keyringKey(key))
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("failed to load %s from keyring: %w", key, err)
	}
	return value, nil
}

func (k *KeyringStore) Set(_ context.Context, key, value string) error {
	if err := keyring.Set(k.service, k.keyringKey(key), value); err != nil {
		return fmt.Errorf("failed to save %s to keyring: %w", key, err)
	}
	return nil
}

func (k *KeyringStore) Remove(_ context.Context, key string) error {
	if err := keyring.Delete(k.service, k.keyringKey(key)); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return nil // Already deleted
		}
		return fmt.Errorf("failed to delete %s from keyring: %w", key, err)
	}
	return nil
}
