package backup

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/afero"

	"github.com/julianstephens/nightshift/internal/prefs"
)

func setupSQLiteStore(t *testing.T) (string, *prefs.Store) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "prefs.db")
	b := prefs.NewSQLiteBackend(path)
	if err := b.Init(); err != nil {
		t.Fatalf("failed to init store: %v", err)
	}
	store, err := prefs.Open(b)
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return path, store
}

func reopen(t *testing.T, b prefs.Backend) *prefs.Store {
	t.Helper()
	store, err := prefs.Open(b)
	if err != nil {
		t.Fatalf("failed to reopen store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestNewManagerUnsupported(t *testing.T) {
	for _, path := range []string{"", "keyring:nightshift-prefs", "/tmp/prefs.yaml"} {
		if _, err := NewManager(path); !errors.Is(err, ErrUnsupported) {
			t.Errorf("NewManager(%q) error = %v, want ErrUnsupported", path, err)
		}
	}
}

func TestCreateAndRestoreSQLite(t *testing.T) {
	path, store := setupSQLiteStore(t)
	store.SetString("windowTheme", "dark")

	mgr, err := NewManager(path)
	if err != nil {
		t.Fatal(err)
	}
	snapshot, err := mgr.Create()
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	if filepath.Dir(snapshot) != mgr.Dir() {
		t.Errorf("snapshot %s not in %s", snapshot, mgr.Dir())
	}

	store.SetString("windowTheme", "light")
	if err := store.Close(); err != nil {
		t.Fatal(err)
	}

	previous, err := mgr.Restore(snapshot)
	if err != nil {
		t.Fatalf("Restore() failed: %v", err)
	}
	if previous == "" {
		t.Error("Restore() did not keep a snapshot of the replaced store")
	}

	restored := reopen(t, prefs.NewSQLiteBackend(path))
	if got := restored.GetString("windowTheme", ""); got != "dark" {
		t.Errorf("windowTheme after restore = %q, want dark", got)
	}
}

func TestCreateAndRestoreJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.json")
	b := prefs.NewJSONBackend(afero.NewOsFs(), path)
	if err := b.Init(); err != nil {
		t.Fatal(err)
	}
	store := reopen(t, b)
	store.SetBool("automaticTheme", true)

	mgr, err := NewManager(path)
	if err != nil {
		t.Fatal(err)
	}
	snapshot, err := mgr.Create()
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}

	store.SetBool("automaticTheme", false)
	if _, err := mgr.Restore(snapshot); err != nil {
		t.Fatalf("Restore() failed: %v", err)
	}
	// The json backend re-reads the file on every access
	if !store.GetBool("automaticTheme", false) {
		t.Error("automaticTheme not restored")
	}
}

func TestRestoreRejectsCorruptBackup(t *testing.T) {
	path, _ := setupSQLiteStore(t)
	mgr, err := NewManager(path)
	if err != nil {
		t.Fatal(err)
	}

	bad := filepath.Join(t.TempDir(), "prefs-20240101-120000.db")
	if err := os.WriteFile(bad, []byte("not a database"), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := mgr.Restore(bad); err == nil {
		t.Error("Restore() accepted a corrupt backup")
	}
	if _, err := mgr.Restore(filepath.Join(t.TempDir(), "missing.db")); err == nil {
		t.Error("Restore() accepted a missing backup")
	}
}

func TestListAndRotate(t *testing.T) {
	path, _ := setupSQLiteStore(t)
	mgr, err := NewManager(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(mgr.Dir(), 0700); err != nil {
		t.Fatal(err)
	}

	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.Local)
	for i := 0; i < MaxBackups+3; i++ {
		name := FilePrefix + base.Add(time.Duration(i)*time.Hour).Format(timestampFormat) + ".db"
		if err := os.WriteFile(filepath.Join(mgr.Dir(), name), []byte("x"), 0600); err != nil {
			t.Fatal(err)
		}
	}
	// Ignored entries
	os.WriteFile(filepath.Join(mgr.Dir(), "notes.txt"), []byte("x"), 0600)
	os.WriteFile(filepath.Join(mgr.Dir(), FilePrefix+"garbage.db"), []byte("x"), 0600)

	backups, err := mgr.List()
	if err != nil {
		t.Fatalf("List() failed: %v", err)
	}
	if len(backups) != MaxBackups+3 {
		t.Fatalf("List() returned %d backups, want %d", len(backups), MaxBackups+3)
	}
	if !backups[0].Timestamp.After(backups[1].Timestamp) {
		t.Error("List() is not newest first")
	}

	if err := mgr.rotate(); err != nil {
		t.Fatalf("rotate() failed: %v", err)
	}
	backups, _ = mgr.List()
	if len(backups) != MaxBackups {
		t.Errorf("after rotation %d backups remain, want %d", len(backups), MaxBackups)
	}
}

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		name string
		ok   bool
	}{
		{"prefs-20240101-120000.db", true},
		{"prefs-20240101-120000-3.db", true},
		{"prefs-20240101.db", false},
		{"prefs-garbage.db", false},
	}
	for _, tt := range tests {
		if _, ok := parseTimestamp(tt.name, ".db"); ok != tt.ok {
			t.Errorf("parseTimestamp(%q) ok = %v, want %v", tt.name, ok, tt.ok)
		}
	}
}
