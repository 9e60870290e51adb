//go:build windows

package locator

import "os"

// SharedDataDir is %ProgramData%
func SharedDataDir() string {
	if dir := os.Getenv("ProgramData"); dir != "" {
		return dir
	}
	return `C:\ProgramData`
}
