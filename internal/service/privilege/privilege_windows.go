//go:build windows

package privilege

import "golang.org/x/sys/windows"

// IsElevated reports whether the process token carries elevated rights.
func IsElevated() bool {
	var token windows.Token

	err := windows.OpenProcessToken(windows.CurrentProcess(), windows.TOKEN_QUERY, &token)
	if err != nil {
		return false
	}

	defer func() {
		_ = token.Close()
	}()

	return token.IsElevated()
}
