// Package config loads and saves streamtree's JSON configuration, following
// the shape of the teacher's internal/config package: a global file under
// the user's home directory, an optional store-local file that overrides
// it, and environment-variable fallbacks for the values that matter most
// when running as a daemon or in CI.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Config is streamtree's full configuration.
type Config struct {
	Store StoreConfig `json:"store"`
}

// StoreConfig holds the store's settings: where streams are kept and a
// default media-type name.
type StoreConfig struct {
	// Root is the directory a StreamStorage opens: <root>/chunks for
	// payload files, <root>/nodes.db for the bbolt node-state database.
	Root string `json:"root,omitempty"`

	// DefaultMediaType is a media-type name (e.g. "application/octet-stream").
	// It is loaded, merged and saved with the rest of the config; inserts do
	// not read it, and a file whose extension isn't recognized is stored as
	// application/octet-stream.
	DefaultMediaType string `json:"default_media_type,omitempty"`
}

// DefaultConfig returns a Config with sensible defaults, honoring the
// STREAMTREE_STORE environment variable the way the teacher's CoreConfig
// honors EDITOR/PAGER.
func DefaultConfig() *Config {
	return &Config{
		Store: StoreConfig{
			Root:             defaultRoot(),
			DefaultMediaType: "application/octet-stream",
		},
	}
}

func defaultRoot() string {
	if v := os.Getenv("STREAMTREE_STORE"); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".streamtree"
	}
	return filepath.Join(home, ".streamtree")
}

// globalConfigPath returns the path to the user-wide config file.
func globalConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("config: get home directory: %w", err)
	}
	return filepath.Join(home, ".streamtreeconfig"), nil
}

// storeConfigPath returns the path to a store-local config file that
// overrides the global one, mirroring the teacher's repository config.
func storeConfigPath(storeDir string) string {
	return filepath.Join(storeDir, "config")
}

// Load reads the global config, then overlays a store-local config file
// found under storeDir if one exists. storeDir may be empty, in which case
// only the global config (or defaults) is returned.
func Load(storeDir string) (*Config, error) {
	cfg := DefaultConfig()

	if globalPath, err := globalConfigPath(); err == nil {
		if data, err := os.ReadFile(globalPath); err == nil {
			var globalCfg Config
			if err := json.Unmarshal(data, &globalCfg); err == nil {
				merge(cfg, &globalCfg)
			}
		}
	}

	if storeDir != "" {
		if data, err := os.ReadFile(storeConfigPath(storeDir)); err == nil {
			var localCfg Config
			if err := json.Unmarshal(data, &localCfg); err == nil {
				merge(cfg, &localCfg)
			}
		}
	}

	return cfg, nil
}

// SaveGlobal writes cfg to the user-wide config file.
func SaveGlobal(cfg *Config) error {
	path, err := globalConfigPath()
	if err != nil {
		return err
	}
	return writeJSON(path, cfg)
}

// SaveStoreLocal writes cfg to storeDir's local config file, creating
// storeDir if needed.
func SaveStoreLocal(storeDir string, cfg *Config) error {
	if err := os.MkdirAll(storeDir, 0755); err != nil {
		return fmt.Errorf("config: create store directory: %w", err)
	}
	return writeJSON(storeConfigPath(storeDir), cfg)
}

func writeJSON(path string, cfg *Config) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("config: marshal: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

// merge overlays non-empty fields of src onto dst.
func merge(dst, src *Config) {
	if src.Store.Root != "" {
		dst.Store.Root = src.Store.Root
	}
	if src.Store.DefaultMediaType != "" {
		dst.Store.DefaultMediaType = src.Store.DefaultMediaType
	}
}
