package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// DefaultPath returns the default config file location,
// <user config dir>/commitmark/config.toml.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "commitmark", "config.toml")
}

// Load reads an Overlay from a TOML file. A missing file is not an
// error and yields an empty overlay.
func Load(path string) (Overlay, error) {
	var o Overlay

	if path == "" {
		return o, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return o, nil
		}
		return o, fmt.Errorf("reading config file %s: %w", path, err)
	}

	if err := toml.Unmarshal(data, &o); err != nil {
		return o, fmt.Errorf("parsing config file %s: %w", path, err)
	}
	return o, nil
}

// Resolve builds a Config from defaults plus the given overlays,
// applied in order.
func Resolve(overlays ...Overlay) Config {
	cfg := Default()
	for _, o := range overlays {
		cfg = cfg.Merge(o)
	}
	return cfg
}
