// Package env resolves the well-known directories podforge uses between
// runs. Defaults follow the platform's XDG conventions; callers can override
// each one with a flag.
package env

import (
	"path/filepath"

	"github.com/adrg/xdg"
)

// CacheDir returns the default root for the artifact cache.
func CacheDir() string {
	return filepath.Join(xdg.CacheHome, "podforge")
}

// LogDir returns the default directory for toolchain build logs.
func LogDir() string {
	return filepath.Join(xdg.StateHome, "podforge", "logs")
}
