package library

import (
	"fmt"
	"path/filepath"
)

// Store persists a library snapshot. Load is called once at startup and Save
// once at shutdown; both replace the whole state.
type Store interface {
	Load() (*Snapshot, error)
	Save(snap *Snapshot) error
	Close() error
}

// Supported store kinds.
const (
	StoreJSON   = "json"
	StoreSQLite = "sqlite"
)

// OpenStore opens the store of the given kind. For json, path is the data
// directory; for sqlite it is the database file.
func OpenStore(kind, path string) (Store, error) {
	switch kind {
	case StoreJSON, "":
		return NewJSONStore(path), nil
	case StoreSQLite:
		return NewSQLiteStore(filepath.Clean(path))
	default:
		return nil, fmt.Errorf("%w: unknown store %q", ErrInvalidInput, kind)
	}
}
