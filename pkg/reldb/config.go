package reldb

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/tailscale/hujson"
)

// EngineConfig holds the engine's tunable knobs: page size, buffer
// cache capacity, and B+ tree fanout.
type EngineConfig struct {
	// PageSize is the fixed heap-page size in bytes. Defaults to 4096;
	// changing it changes on-disk layout, so it must be consistent for
	// the lifetime of a heap file.
	PageSize int `json:"page_size,omitempty"`

	// BufferCacheCapacity is the number of pages the buffer cache
	// holds before evicting under LRU.
	BufferCacheCapacity int `json:"buffer_cache_capacity,omitempty"`

	// BTreeOrder is the default order used by [IndexManager.CreateIndex].
	// Defaults to 4.
	BTreeOrder int `json:"btree_order,omitempty"`

	// DisableLocking disables the advisory per-table-file lock the
	// storage manager otherwise acquires around mutating sequences.
	DisableLocking bool `json:"disable_locking,omitempty"`

	// LockTimeout bounds how long the storage manager polls for the
	// advisory per-table-file lock before giving up with
	// [errLockTimeout]. Defaults to 5s; has no effect when
	// DisableLocking is set.
	LockTimeout time.Duration `json:"lock_timeout,omitempty"`
}

// DefaultEngineConfig returns the engine's built-in defaults.
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		PageSize:            4096,
		BufferCacheCapacity: 128,
		BTreeOrder:          4,
		DisableLocking:      false,
		LockTimeout:         5 * time.Second,
	}
}

// LoadEngineConfig loads an [EngineConfig] from a JSONC file at path,
// layered over [DefaultEngineConfig]. A missing file is not an error;
// it simply yields the defaults. A present-but-malformed file is a
// [KindSchema] error.
//
// The file may omit any subset of fields; present fields override the
// corresponding default. Fields explicitly set to their zero value
// (e.g. "page_size": 0) are rejected, since a zero page size or cache
// capacity is never valid.
func LoadEngineConfig(path string) (EngineConfig, error) {
	cfg := DefaultEngineConfig()

	data, err := os.ReadFile(path) //nolint:gosec // path is caller-controlled
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}

		return EngineConfig{}, newIOError(err, "read engine config %s", path)
	}

	standardized, err := hujson.Standardize(data)
	if err != nil {
		return EngineConfig{}, newSchemaError("invalid JSONC in engine config %s: %w", path, err)
	}

	var raw map[string]any

	if err := json.Unmarshal(standardized, &raw); err != nil {
		return EngineConfig{}, newSchemaError("invalid JSON in engine config %s: %w", path, err)
	}

	for _, field := range []string{"page_size", "buffer_cache_capacity", "btree_order", "lock_timeout"} {
		if v, ok := raw[field]; ok {
			if n, ok := v.(float64); ok && n == 0 {
				return EngineConfig{}, newSchemaError("engine config %s: %s must not be zero", path, field)
			}
		}
	}

	var overlay EngineConfig

	if err := json.Unmarshal(standardized, &overlay); err != nil {
		return EngineConfig{}, newSchemaError("invalid JSON in engine config %s: %w", path, err)
	}

	if overlay.PageSize != 0 {
		cfg.PageSize = overlay.PageSize
	}

	if overlay.BufferCacheCapacity != 0 {
		cfg.BufferCacheCapacity = overlay.BufferCacheCapacity
	}

	if overlay.BTreeOrder != 0 {
		cfg.BTreeOrder = overlay.BTreeOrder
	}

	cfg.DisableLocking = overlay.DisableLocking || cfg.DisableLocking

	if overlay.LockTimeout != 0 {
		cfg.LockTimeout = overlay.LockTimeout
	}

	if err := cfg.validate(); err != nil {
		return EngineConfig{}, err
	}

	return cfg, nil
}

func (c EngineConfig) validate() error {
	if c.PageSize <= 0 {
		return newSchemaError("page_size must be positive, got %d", c.PageSize)
	}

	if c.BufferCacheCapacity <= 0 {
		return newSchemaError("buffer_cache_capacity must be positive, got %d", c.BufferCacheCapacity)
	}

	if c.BTreeOrder < 3 {
		return newSchemaError("btree_order must be >= 3, got %d", c.BTreeOrder)
	}

	if c.LockTimeout <= 0 {
		return newSchemaError("lock_timeout must be positive, got %s", c.LockTimeout)
	}

	return nil
}

// String formats the config for diagnostics.
func (c EngineConfig) String() string {
	return fmt.Sprintf(
		"EngineConfig{PageSize: %d, BufferCacheCapacity: %d, BTreeOrder: %d, DisableLocking: %t, LockTimeout: %s}",
		c.PageSize, c.BufferCacheCapacity, c.BTreeOrder, c.DisableLocking, c.LockTimeout,
	)
}
