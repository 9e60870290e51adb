package prefs

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/zalando/go-keyring"

	"github.com/julianstephens/nightshift/internal/constants"
)

// ErrKeyringUnavailable is returned when the OS keyring cannot be reached
var ErrKeyringUnavailable = errors.New("OS keyring is not available")

// KeyringBackend stores each preference as one secret of the OS keyring
// service. The keyring cannot enumerate secrets, so a reserved index entry
// records the stored keys.
type KeyringBackend struct {
	service string
	mu      sync.Mutex
}

func NewKeyringBackend(service string) *KeyringBackend {
	if service == "" {
		service = constants.KeyringService
	}
	return &KeyringBackend{service: service}
}

func (b *KeyringBackend) Init() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	_, err := b.index()
	if errors.Is(err, ErrNotInitialized) {
		return b.saveIndex(nil)
	}
	return err
}

func (b *KeyringBackend) Load() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	_, err := b.index()
	return err
}

func (b *KeyringBackend) Close() error {
	return nil
}

func (b *KeyringBackend) index() ([]string, error) {
	raw, err := keyring.Get(b.service, constants.KeyringIndexKey)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return nil, ErrNotInitialized
		}
		return nil, fmt.Errorf("%w: %v", ErrKeyringUnavailable, err)
	}

	var keys []string
	if err := json.Unmarshal([]byte(raw), &keys); err != nil {
		return nil, fmt.Errorf("failed to parse keyring index: %w", err)
	}
	return keys, nil
}

func (b *KeyringBackend) saveIndex(keys []string) error {
	if keys == nil {
		keys = []string{}
	}
	sort.Strings(keys)
	data, err := json.Marshal(keys)
	if err != nil {
		return err
	}
	if err := keyring.Set(b.service, constants.KeyringIndexKey, string(data)); err != nil {
		return fmt.Errorf("failed to store keyring index: %w", err)
	}
	return nil
}

// Secrets are stored as "<kind>:<value>"
func encodeSecret(e Entry) string {
	return string(e.Kind) + ":" + e.Value
}

func decodeSecret(key, secret string) (Entry, error) {
	kind, value, ok := strings.Cut(secret, ":")
	if !ok {
		return Entry{}, fmt.Errorf("malformed keyring entry for %q", key)
	}
	return Entry{Key: key, Kind: Kind(kind), Value: value}, nil
}

func (b *KeyringBackend) Read(key string) (Entry, bool, error) {
	if key == constants.KeyringIndexKey {
		return Entry{}, false, nil
	}

	secret, err := keyring.Get(b.service, key)
	if errors.Is(err, keyring.ErrNotFound) {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, fmt.Errorf("%w: %v", ErrKeyringUnavailable, err)
	}

	e, err := decodeSecret(key, secret)
	if err != nil {
		return Entry{}, false, err
	}
	return e, true, nil
}

func (b *KeyringBackend) Write(e Entry) error {
	if e.Key == constants.KeyringIndexKey {
		return fmt.Errorf("key %q is reserved", e.Key)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if err := keyring.Set(b.service, e.Key, encodeSecret(e)); err != nil {
		return fmt.Errorf("failed to store preference in keyring: %w", err)
	}

	keys, err := b.index()
	if err != nil && !errors.Is(err, ErrNotInitialized) {
		return err
	}
	for _, k := range keys {
		if k == e.Key {
			return nil
		}
	}
	return b.saveIndex(append(keys, e.Key))
}

func (b *KeyringBackend) Delete(key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := keyring.Delete(b.service, key); err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("failed to delete preference from keyring: %w", err)
	}

	keys, err := b.index()
	if err != nil {
		if errors.Is(err, ErrNotInitialized) {
			return nil
		}
		return err
	}
	kept := keys[:0]
	for _, k := range keys {
		if k != key {
			kept = append(kept, k)
		}
	}
	return b.saveIndex(kept)
}

func (b *KeyringBackend) Keys() ([]string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	keys, err := b.index()
	if errors.Is(err, ErrNotInitialized) {
		return nil, nil
	}
	return keys, err
}

func (b *KeyringBackend) Path() string {
	return "keyring:" + b.service
}
