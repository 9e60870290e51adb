package prefs

import (
	"fmt"

	"github.com/spf13/afero"

	"github.com/julianstephens/nightshift/internal/constants"
)

// NewBackend builds the named backend. path is the database or document
// location and is ignored by the keyring backend.
func NewBackend(name, path string) (Backend, error) {
	switch name {
	case "", constants.BackendSQLite:
		return NewSQLiteBackend(path), nil
	case constants.BackendJSON:
		return NewJSONBackend(afero.NewOsFs(), path), nil
	case constants.BackendKeyring:
		return NewKeyringBackend(""), nil
	default:
		return nil, fmt.Errorf("unknown preference backend %q", name)
	}
}
