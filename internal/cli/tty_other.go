//go:build !linux && !darwin

package cli

// IsTerminal reports whether fd refers to a terminal. Platforms without
// termios support assume interactive use.
func IsTerminal(fd int) bool { return true }
