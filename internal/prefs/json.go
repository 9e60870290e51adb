package prefs

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/spf13/afero"
)

const jsonDocumentVersion = 1

type jsonDocument struct {
	Version     int                  `json:"version"`
	Preferences map[string]jsonEntry `json:"preferences"`
}

type jsonEntry struct {
	Kind  Kind   `json:"kind"`
	Value string `json:"value"`
}

// JSONBackend keeps preferences in one JSON document. Every read decodes the
// file again and every write replaces it atomically, so the file is the only
// copy of the data.
type JSONBackend struct {
	fs   afero.Fs
	path string
	mu   sync.Mutex
}

func NewJSONBackend(fsys afero.Fs, path string) *JSONBackend {
	return &JSONBackend{fs: fsys, path: path}
}

func (b *JSONBackend) Init() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.fs.MkdirAll(filepath.Dir(b.path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if _, err := b.fs.Stat(b.path); err == nil {
		// Existing document: just make sure it parses
		_, err := b.read()
		return err
	}

	return b.save(&jsonDocument{Version: jsonDocumentVersion, Preferences: map[string]jsonEntry{}})
}

func (b *JSONBackend) Load() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, err := b.fs.Stat(b.path); errors.Is(err, fs.ErrNotExist) {
		return ErrNotInitialized
	}
	_, err := b.read()
	return err
}

func (b *JSONBackend) Close() error {
	return nil
}

func (b *JSONBackend) read() (*jsonDocument, error) {
	data, err := afero.ReadFile(b.fs, b.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read preferences: %w", err)
	}

	doc := &jsonDocument{}
	if err := json.Unmarshal(data, doc); err != nil {
		return nil, fmt.Errorf("failed to parse preferences: %w", err)
	}
	if doc.Version > jsonDocumentVersion {
		return nil, fmt.Errorf("preferences file version %d is newer than supported version %d", doc.Version, jsonDocumentVersion)
	}
	if doc.Preferences == nil {
		doc.Preferences = map[string]jsonEntry{}
	}
	return doc, nil
}

// save writes to a sibling temp file, syncs it and renames it over the
// document
func (b *JSONBackend) save(doc *jsonDocument) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize preferences: %w", err)
	}

	tmp := b.path + ".tmp"
	f, err := b.fs.OpenFile(tmp, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return fmt.Errorf("failed to write preferences: %w", err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return fmt.Errorf("failed to sync preferences: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := b.fs.Rename(tmp, b.path); err != nil {
		return fmt.Errorf("failed to replace preferences: %w", err)
	}
	return nil
}

func (b *JSONBackend) Read(key string) (Entry, bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	doc, err := b.read()
	if err != nil {
		return Entry{}, false, err
	}
	je, ok := doc.Preferences[key]
	if !ok {
		return Entry{}, false, nil
	}
	return Entry{Key: key, Kind: je.Kind, Value: je.Value}, true, nil
}

func (b *JSONBackend) Write(e Entry) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	doc, err := b.read()
	if err != nil {
		return err
	}
	doc.Preferences[e.Key] = jsonEntry{Kind: e.Kind, Value: e.Value}
	doc.Version = jsonDocumentVersion
	return b.save(doc)
}

func (b *JSONBackend) Delete(key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	doc, err := b.read()
	if err != nil {
		return err
	}
	if _, ok := doc.Preferences[key]; !ok {
		return nil
	}
	delete(doc.Preferences, key)
	return b.save(doc)
}

func (b *JSONBackend) Keys() ([]string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	doc, err := b.read()
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(doc.Preferences))
	for k := range doc.Preferences {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

func (b *JSONBackend) Path() string {
	return b.path
}
