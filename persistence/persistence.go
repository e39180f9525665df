// Package persistence stores the raw, accepted configuration document so
// a later boot can replay it exactly (§4.E, §6.2): namespace "storage",
// key "json_config". It stores the bytes the ingestor accepted, not the
// parsed tree, so replay produces byte-identical input to the decoder.
package persistence

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/peterbourgon/diskv/v3"
)

const (
	namespace  = "storage"
	configKey  = "json_config"
	cacheBytes = 1 << 20 // 1 MiB: the whole point is one small blob
)

// Store is a namespaced blob key-value store over the local filesystem.
type Store struct {
	d *diskv.Diskv
}

// New opens (creating if absent) a persistence store rooted at baseDir.
func New(baseDir string) *Store {
	d := diskv.New(diskv.Options{
		BasePath:     filepath.Join(baseDir, namespace),
		Transform:    func(string) []string { return nil },
		CacheSizeMax: cacheBytes,
	})
	return &Store{d: d}
}

// SaveConfig persists the raw accepted configuration bytes (§4.D.b).
func (s *Store) SaveConfig(raw []byte) error {
	return s.d.Write(configKey, raw)
}

// LoadConfig returns the previously persisted configuration, if any.
// ok is false (with a nil error) when no config has ever been saved.
func (s *Store) LoadConfig() (raw []byte, ok bool, err error) {
	if !s.d.Has(configKey) {
		return nil, false, nil
	}
	raw, err = s.d.Read(configKey)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return raw, true, nil
}

// DeleteConfig removes the persisted configuration, used before writing
// a freshly accepted one (§4.D.b: "delete the prior blob").
func (s *Store) DeleteConfig() error {
	if !s.d.Has(configKey) {
		return nil
	}
	return s.d.Erase(configKey)
}
