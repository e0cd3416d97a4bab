package config

import (
	"os"
	"strconv"
	"strings"
)

// Environment variables recognized by FromEnv. ARGS is whitespace-split;
// arguments containing spaces belong in the config file instead.
const (
	EnvBin   = "COMMITMARK_BIN"
	EnvArgs  = "COMMITMARK_ARGS"
	EnvDebug = "COMMITMARK_DEBUG"
	EnvAuto  = "COMMITMARK_AUTO"
)

// FromEnv reads an Overlay from COMMITMARK_* environment variables.
// Unset variables leave their fields unspecified; unparseable booleans
// are ignored.
func FromEnv() Overlay {
	var o Overlay

	if v, ok := os.LookupEnv(EnvBin); ok {
		o.Bin = &v
	}
	if v, ok := os.LookupEnv(EnvArgs); ok {
		o.Args = strings.Fields(v)
	}
	if v, ok := os.LookupEnv(EnvDebug); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			o.Debug = &b
		}
	}
	if v, ok := os.LookupEnv(EnvAuto); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			o.Auto = &b
		}
	}

	return o
}
