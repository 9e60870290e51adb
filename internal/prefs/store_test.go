package prefs

import (
	"errors"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/spf13/afero"
	gokeyring "github.com/zalando/go-keyring"
)

type backendFactory struct {
	name string
	// newBackend returns a fresh handle on the same medium every call
	newBackend func(t *testing.T) func() Backend
}

func backendFactories() []backendFactory {
	return []backendFactory{
		{
			name: "sqlite",
			newBackend: func(t *testing.T) func() Backend {
				path := filepath.Join(t.TempDir(), "prefs.db")
				return func() Backend { return NewSQLiteBackend(path) }
			},
		},
		{
			name: "json",
			newBackend: func(t *testing.T) func() Backend {
				fsys := afero.NewMemMapFs()
				return func() Backend { return NewJSONBackend(fsys, "/config/prefs.json") }
			},
		},
		{
			name: "keyring",
			newBackend: func(t *testing.T) func() Backend {
				gokeyring.MockInit()
				return func() Backend { return NewKeyringBackend("nightshift-test") }
			},
		},
	}
}

func openStore(t *testing.T, b Backend) *Store {
	t.Helper()
	if err := b.Init(); err != nil {
		t.Fatalf("Init() failed: %v", err)
	}
	store, err := Open(b)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestRoundTrip(t *testing.T) {
	for _, f := range backendFactories() {
		t.Run(f.name, func(t *testing.T) {
			store := openStore(t, f.newBackend(t)())

			store.SetBool("automaticTheme", true)
			store.SetInt("sunrise", 1717214400)
			store.SetFloat("zoom", 1.25)
			store.SetString("windowTheme", "dark")

			if got := store.GetBool("automaticTheme", false); got != true {
				t.Errorf("GetBool() = %v, want true", got)
			}
			if got := store.GetInt("sunrise", 0); got != 1717214400 {
				t.Errorf("GetInt() = %d, want 1717214400", got)
			}
			if got := store.GetFloat("zoom", 0); got != 1.25 {
				t.Errorf("GetFloat() = %v, want 1.25", got)
			}
			if got := store.GetString("windowTheme", "light"); got != "dark" {
				t.Errorf("GetString() = %q, want dark", got)
			}

			// Overwrite
			store.SetBool("automaticTheme", false)
			if got := store.GetBool("automaticTheme", true); got != false {
				t.Errorf("GetBool() after overwrite = %v, want false", got)
			}
		})
	}
}

func TestDefaultFallback(t *testing.T) {
	for _, f := range backendFactories() {
		t.Run(f.name, func(t *testing.T) {
			store := openStore(t, f.newBackend(t)())

			if got := store.GetBool("nonexistent", true); got != true {
				t.Errorf("GetBool() = %v, want default true", got)
			}
			if got := store.GetInt("nonexistent", 42); got != 42 {
				t.Errorf("GetInt() = %d, want default 42", got)
			}
			if got := store.GetFloat("nonexistent", 0.5); got != 0.5 {
				t.Errorf("GetFloat() = %v, want default 0.5", got)
			}
			if got := store.GetString("nonexistent", "light"); got != "light" {
				t.Errorf("GetString() = %q, want default light", got)
			}

			// Reading a default must not persist it
			if store.Has("nonexistent") {
				t.Error("default read persisted the key")
			}
		})
	}
}

func TestKindMismatchFallsBackToDefault(t *testing.T) {
	for _, f := range backendFactories() {
		t.Run(f.name, func(t *testing.T) {
			store := openStore(t, f.newBackend(t)())

			store.SetString("sunrise", "06:00")
			if got := store.GetInt("sunrise", -1); got != -1 {
				t.Errorf("GetInt() on string value = %d, want default -1", got)
			}
			if !store.Has("sunrise") {
				t.Error("Has() = false for a key stored under another kind")
			}

			store.SetInt("automaticTheme", 1)
			if got := store.GetBool("automaticTheme", false); got != false {
				t.Errorf("GetBool() on int value = %v, want default false", got)
			}
		})
	}
}

func TestDurableAcrossReopen(t *testing.T) {
	for _, f := range backendFactories() {
		t.Run(f.name, func(t *testing.T) {
			newBackend := f.newBackend(t)

			first := newBackend()
			if err := first.Init(); err != nil {
				t.Fatalf("Init() failed: %v", err)
			}
			store, err := Open(first)
			if err != nil {
				t.Fatalf("Open() failed: %v", err)
			}
			store.SetInt("sunset", 1717264800)
			store.SetString("windowTheme", "dark")
			if err := store.Close(); err != nil {
				t.Fatalf("Close() failed: %v", err)
			}

			reopened, err := Open(newBackend())
			if err != nil {
				t.Fatalf("reopen failed: %v", err)
			}
			defer reopened.Close()

			if got := reopened.GetInt("sunset", 0); got != 1717264800 {
				t.Errorf("GetInt() after reopen = %d, want 1717264800", got)
			}
			if got := reopened.GetString("windowTheme", "light"); got != "dark" {
				t.Errorf("GetString() after reopen = %q, want dark", got)
			}
		})
	}
}

func TestRemoveAndKeys(t *testing.T) {
	for _, f := range backendFactories() {
		t.Run(f.name, func(t *testing.T) {
			store := openStore(t, f.newBackend(t)())

			store.SetInt("sunset", 1)
			store.SetInt("sunrise", 2)
			store.SetBool("automaticTheme", true)

			want := []string{"automaticTheme", "sunrise", "sunset"}
			if got := store.Keys(); !reflect.DeepEqual(got, want) {
				t.Errorf("Keys() = %v, want %v", got, want)
			}

			store.Remove("sunrise")
			store.Remove("never-set")
			if store.Has("sunrise") {
				t.Error("Has() = true after Remove()")
			}
			want = []string{"automaticTheme", "sunset"}
			if got := store.Keys(); !reflect.DeepEqual(got, want) {
				t.Errorf("Keys() after Remove() = %v, want %v", got, want)
			}
		})
	}
}

func TestOpenUninitialized(t *testing.T) {
	gokeyring.MockInit()

	backends := map[string]Backend{
		"sqlite":  NewSQLiteBackend(filepath.Join(t.TempDir(), "missing.db")),
		"json":    NewJSONBackend(afero.NewMemMapFs(), "/missing.json"),
		"keyring": NewKeyringBackend("nightshift-uninitialized"),
	}
	for name, b := range backends {
		t.Run(name, func(t *testing.T) {
			_, err := Open(b)
			if !errors.Is(err, ErrNotInitialized) {
				t.Errorf("Open() error = %v, want ErrNotInitialized", err)
			}
		})
	}
}

func TestCorruptJSONDegradesToDefaults(t *testing.T) {
	fsys := afero.NewMemMapFs()
	b := NewJSONBackend(fsys, "/prefs.json")
	store := openStore(t, b)
	store.SetBool("automaticTheme", true)

	if err := afero.WriteFile(fsys, "/prefs.json", []byte("{not json"), 0600); err != nil {
		t.Fatalf("failed to corrupt file: %v", err)
	}

	if got := store.GetBool("automaticTheme", false); got != false {
		t.Errorf("GetBool() on corrupt file = %v, want default false", got)
	}
	if store.Has("automaticTheme") {
		t.Error("Has() = true on corrupt file")
	}
	// Writes fail quietly
	store.SetString("windowTheme", "dark")
	if keys := store.Keys(); len(keys) != 0 {
		t.Errorf("Keys() on corrupt file = %v, want empty", keys)
	}
}

func TestJSONReadsSeeExternalWrites(t *testing.T) {
	fsys := afero.NewMemMapFs()
	store := openStore(t, NewJSONBackend(fsys, "/prefs.json"))

	// A second handle stands in for another process writing the file
	other := NewJSONBackend(fsys, "/prefs.json")
	if err := other.Write(Entry{Key: "windowTheme", Kind: KindString, Value: "dark"}); err != nil {
		t.Fatalf("Write() failed: %v", err)
	}

	if got := store.GetString("windowTheme", "light"); got != "dark" {
		t.Errorf("GetString() = %q, want dark from external write", got)
	}
}

func TestKeyringReservedIndexKey(t *testing.T) {
	gokeyring.MockInit()
	b := NewKeyringBackend("nightshift-reserved")
	if err := b.Init(); err != nil {
		t.Fatalf("Init() failed: %v", err)
	}
	if err := b.Write(Entry{Key: "__index__", Kind: KindString, Value: "x"}); err == nil {
		t.Error("expected writing the index key to fail")
	}
}

func TestNewEntry(t *testing.T) {
	tests := []struct {
		name    string
		kind    Kind
		raw     string
		wantErr bool
	}{
		{"bool", KindBool, "true", false},
		{"bad bool", KindBool, "yes please", true},
		{"int", KindInt, "-3600", false},
		{"bad int", KindInt, "06:00", true},
		{"double", KindDouble, "1.5", false},
		{"bad double", KindDouble, "one", true},
		{"string", KindString, "anything goes", false},
		{"unknown kind", Kind("bytes"), "00", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, err := NewEntry("k", tt.kind, tt.raw)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewEntry() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && (e.Kind != tt.kind || e.Value != tt.raw) {
				t.Errorf("NewEntry() = %+v", e)
			}
		})
	}
}

func TestParseKind(t *testing.T) {
	for _, s := range []string{"bool", "int", "double", "string"} {
		if _, err := ParseKind(s); err != nil {
			t.Errorf("ParseKind(%q) failed: %v", s, err)
		}
	}
	if _, err := ParseKind("float"); err == nil {
		t.Error("ParseKind(\"float\") should fail")
	}
}

func TestNewBackend(t *testing.T) {
	for _, name := range []string{"", "sqlite", "json", "keyring"} {
		if _, err := NewBackend(name, filepath.Join(t.TempDir(), "p")); err != nil {
			t.Errorf("NewBackend(%q) failed: %v", name, err)
		}
	}
	if _, err := NewBackend("postgres", "x"); err == nil {
		t.Error("NewBackend(\"postgres\") should fail")
	}
}
