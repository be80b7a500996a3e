//go:build !windows

package cli_helpers

// InitCli is a no-op outside of Windows, ANSI escape sequences work without
// further setup there.
func InitCli() {
}
