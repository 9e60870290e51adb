//go:build darwin

package locator

// SharedDataDir is the system-wide application support directory
func SharedDataDir() string {
	return "/Library/Application Support"
}
