// Package prefs is a typed key/value preference store with default-on-miss
// reads over a durable backend.
//
// Reads never fail: a missing key, a value stored under another kind, or a
// backend error all resolve to the caller's default. Writes go straight to the
// backend and are durable when the call returns. Backend failures are logged
// and otherwise swallowed so that losing a preference never takes the host
// application down.
package prefs

import (
	"errors"
	"fmt"
	"strconv"
	"sync"

	"github.com/julianstephens/nightshift/internal/logger"
)

// Kind is the type tag stored next to every value
type Kind string

const (
	KindBool   Kind = "bool"
	KindInt    Kind = "int"
	KindDouble Kind = "double"
	KindString Kind = "string"
)

// ErrNotInitialized is returned by Backend.Load when the medium has never
// been initialized
var ErrNotInitialized = errors.New("preference store not initialized, run 'nightshift init' first")

// ParseKind validates a kind name
func ParseKind(s string) (Kind, error) {
	switch k := Kind(s); k {
	case KindBool, KindInt, KindDouble, KindString:
		return k, nil
	}
	return "", fmt.Errorf("unknown preference kind %q (want bool, int, double or string)", s)
}

// Entry is one stored preference in its canonical text encoding
type Entry struct {
	Key   string
	Kind  Kind
	Value string
}

// NewEntry encodes raw under the given kind, rejecting text that does not
// parse as that kind
func NewEntry(key string, kind Kind, raw string) (Entry, error) {
	var err error
	switch kind {
	case KindBool:
		_, err = strconv.ParseBool(raw)
	case KindInt:
		_, err = strconv.ParseInt(raw, 10, 64)
	case KindDouble:
		_, err = strconv.ParseFloat(raw, 64)
	case KindString:
	default:
		return Entry{}, fmt.Errorf("unknown preference kind %q", kind)
	}
	if err != nil {
		return Entry{}, fmt.Errorf("invalid %s value %q: %w", kind, raw, err)
	}
	return Entry{Key: key, Kind: kind, Value: raw}, nil
}

// Backend is a durable key/value medium. Write must not return before the
// entry is persisted.
type Backend interface {
	Init() error
	Load() error
	Close() error

	Read(key string) (Entry, bool, error)
	Write(Entry) error
	Delete(key string) error
	Keys() ([]string, error)

	Path() string
}

// Store is the typed facade over a Backend. It holds no cached values; every
// read goes to the backend. Access is serialized by an internal mutex.
type Store struct {
	mu      sync.Mutex
	backend Backend
}

// Open loads the backend and wraps it in a Store. The caller owns the Store
// and must Close it.
func Open(b Backend) (*Store, error) {
	if err := b.Load(); err != nil {
		return nil, err
	}
	return &Store{backend: b}, nil
}

// Close releases the backend
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.backend.Close()
}

// Path describes where the backend persists data
func (s *Store) Path() string {
	return s.backend.Path()
}

// Backend exposes the underlying medium for diagnostics
func (s *Store) Backend() Backend {
	return s.backend
}

func (s *Store) lookup(key string) (Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok, err := s.backend.Read(key)
	if err != nil {
		logger.Warn("Preference read failed, using default", "key", key, "error", err)
		return Entry{}, false
	}
	return e, ok
}

func (s *Store) raw(key string, kind Kind) (string, bool) {
	e, ok := s.lookup(key)
	if !ok {
		return "", false
	}
	if e.Kind != kind {
		logger.Debug("Preference kind mismatch, using default", "key", key, "stored", e.Kind, "requested", kind)
		return "", false
	}
	return e.Value, true
}

func (s *Store) write(e Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.backend.Write(e); err != nil {
		logger.Error("Preference write failed", "key", e.Key, "error", err)
	}
}

// Has reports whether key is stored under any kind
func (s *Store) Has(key string) bool {
	_, ok := s.lookup(key)
	return ok
}

// Lookup returns the stored entry for key, if any
func (s *Store) Lookup(key string) (Entry, bool) {
	return s.lookup(key)
}

func (s *Store) GetBool(key string, def bool) bool {
	raw, ok := s.raw(key, KindBool)
	if !ok {
		return def
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		logger.Warn("Malformed bool preference, using default", "key", key, "value", raw)
		return def
	}
	return v
}

func (s *Store) GetInt(key string, def int64) int64 {
	raw, ok := s.raw(key, KindInt)
	if !ok {
		return def
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		logger.Warn("Malformed int preference, using default", "key", key, "value", raw)
		return def
	}
	return v
}

func (s *Store) GetFloat(key string, def float64) float64 {
	raw, ok := s.raw(key, KindDouble)
	if !ok {
		return def
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		logger.Warn("Malformed double preference, using default", "key", key, "value", raw)
		return def
	}
	return v
}

func (s *Store) GetString(key string, def string) string {
	raw, ok := s.raw(key, KindString)
	if !ok {
		return def
	}
	return raw
}

func (s *Store) SetBool(key string, v bool) {
	s.write(Entry{Key: key, Kind: KindBool, Value: strconv.FormatBool(v)})
}

func (s *Store) SetInt(key string, v int64) {
	s.write(Entry{Key: key, Kind: KindInt, Value: strconv.FormatInt(v, 10)})
}

func (s *Store) SetFloat(key string, v float64) {
	s.write(Entry{Key: key, Kind: KindDouble, Value: strconv.FormatFloat(v, 'g', -1, 64)})
}

func (s *Store) SetString(key string, v string) {
	s.write(Entry{Key: key, Kind: KindString, Value: v})
}

// Set stores a pre-validated entry, see NewEntry
func (s *Store) Set(e Entry) {
	s.write(e)
}

// Remove deletes key. Removing a missing key is not an error.
func (s *Store) Remove(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.backend.Delete(key); err != nil {
		logger.Error("Preference delete failed", "key", key, "error", err)
	}
}

// Keys lists stored keys in sorted order. A backend failure yields an empty list.
func (s *Store) Keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	keys, err := s.backend.Keys()
	if err != nil {
		logger.Warn("Listing preferences failed", "error", err)
		return nil
	}
	return keys
}
