// Package config locates and loads the build configuration: the
// lokalc.toml manifest naming the default locale, the locale list and
// optional namespaces, and the per-(locale, namespace) resource
// documents under the configured directory.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/lokalc/lokalc/key"
)

// ManifestName is the manifest file looked up in the project root.
const ManifestName = "lokalc.toml"

// manifest mirrors the raw TOML document.
type manifest struct {
	Default    string   `toml:"default"`
	Locales    []string `toml:"locales"`
	Namespaces []string `toml:"namespaces"`
	Path       string   `toml:"path"`
}

// Config is the validated build configuration.
type Config struct {
	// Default is the default locale.
	Default key.Key
	// Locales is the full locale list in configured order, the default
	// locale first.
	Locales []key.Key
	// Namespaces is empty in flat locale mode.
	Namespaces []key.Key
	// Dir is the resource directory, resolved against the project root.
	Dir string
}

// Load reads and validates the manifest from the project root.
func Load(root string) (*Config, error) {
	path := filepath.Join(root, ManifestName)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest %s: %w", path, err)
	}
	cfg, err := parse(data)
	if err != nil {
		return nil, fmt.Errorf("manifest %s: %w", path, err)
	}
	cfg.Dir = filepath.Join(root, cfg.Dir)
	return cfg, nil
}

func parse(data []byte) (*Config, error) {
	var m manifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing TOML: %w", err)
	}

	if m.Default == "" {
		return nil, fmt.Errorf(`missing required field "default"`)
	}
	def, err := key.TryNew(m.Default)
	if err != nil {
		return nil, fmt.Errorf("default locale: %w", err)
	}

	cfg := &Config{Default: def, Dir: m.Path}
	if cfg.Dir == "" {
		cfg.Dir = "locales"
	}

	if len(m.Locales) == 0 {
		return nil, fmt.Errorf(`missing required field "locales"`)
	}

	// The default locale leads; listing it again is allowed but not
	// required.
	cfg.Locales = append(cfg.Locales, def)
	for _, raw := range m.Locales {
		k, err := key.TryNew(raw)
		if err != nil {
			return nil, fmt.Errorf("locale list: %w", err)
		}
		if k == def {
			continue
		}
		cfg.Locales = append(cfg.Locales, k)
	}

	for _, raw := range m.Namespaces {
		k, err := key.TryNew(raw)
		if err != nil {
			return nil, fmt.Errorf("namespace list: %w", err)
		}
		cfg.Namespaces = append(cfg.Namespaces, k)
	}

	return cfg, nil
}
