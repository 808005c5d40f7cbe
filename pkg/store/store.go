// Package store persists named options, the key/value records the registry
// reads its configuration from. Values are opaque text, usually JSON or a
// legacy serialized blob.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound is returned by Get when no option has the given name.
var ErrNotFound = errors.New("store: option not found")

// ErrClosed is returned by operations on a closed store.
var ErrClosed = errors.New("store: closed")

// Store reads and writes named options.
type Store interface {
	Get(ctx context.Context, name string) ([]byte, error)
	Set(ctx context.Context, name string, value []byte) error
	Close() error
}

// Supported drivers.
const (
	DriverFile   = "file"
	DriverSQLite = "sqlite"
)

// Open returns the store for driver rooted at path.
func Open(driver, path string) (Store, error) {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "", DriverFile:
		return NewFileStore(path)
	case DriverSQLite:
		return OpenSQLite(path)
	default:
		return nil, fmt.Errorf("store: unknown driver %q", driver)
	}
}

func checkName(name string) error {
	if strings.TrimSpace(name) == "" {
		return errors.New("store: option name required")
	}
	return nil
}
