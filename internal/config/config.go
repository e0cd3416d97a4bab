// Package config holds the process-wide configuration for commitmark.
//
// Configuration is an explicit value passed into the generator at
// construction time, never ambient state. Sources are merged lowest to
// highest precedence: built-in defaults, the TOML config file,
// COMMITMARK_* environment variables, command-line flags. Each source
// produces an Overlay whose unset fields leave prior values untouched.
package config

// DefaultBin is the generator binary invoked when none is configured.
const DefaultBin = "llm-commit-msg"

// Config is the resolved commitmark configuration.
type Config struct {
	// Bin is the generator executable name or path.
	Bin string

	// Args are extra arguments appended after the fixed leading pair
	// ("generate", "--commented-out").
	Args []string

	// Debug enables verbose tracing notifications on stderr.
	Debug bool

	// Auto enables the automatic trigger when a commit-message document
	// appears under a watched repository.
	Auto bool
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Bin:   DefaultBin,
		Args:  nil,
		Debug: false,
		Auto:  true,
	}
}

// Overlay is a partial configuration from a single source. Nil fields
// are "unspecified" and retain the prior value on merge.
type Overlay struct {
	Bin   *string  `toml:"bin"`
	Args  []string `toml:"args"`
	Debug *bool    `toml:"debug"`
	Auto  *bool    `toml:"auto"`
}

// Merge applies an overlay on top of c and returns the result.
// Unspecified overlay fields retain c's values.
func (c Config) Merge(o Overlay) Config {
	if o.Bin != nil {
		c.Bin = *o.Bin
	}
	if o.Args != nil {
		c.Args = append([]string(nil), o.Args...)
	}
	if o.Debug != nil {
		c.Debug = *o.Debug
	}
	if o.Auto != nil {
		c.Auto = *o.Auto
	}
	return c
}
