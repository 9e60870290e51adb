//go:build !windows && !darwin

package locator

import (
	"os"
	"path/filepath"
	"strings"
)

// SharedDataDir is the first entry of $XDG_DATA_DIRS, /usr/share by default
func SharedDataDir() string {
	if dirs := os.Getenv("XDG_DATA_DIRS"); dirs != "" {
		first, _, _ := strings.Cut(dirs, string(filepath.ListSeparator))
		if first != "" {
			return first
		}
	}
	return "/usr/share"
}
