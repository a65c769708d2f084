package sradownload

import (
	"os/user"
	"path/filepath"
	"strings"
)

// ExpandHome expands ~ to its proper path, where appropriate. If the current
// user cannot be determined, path is returned unchanged.
func ExpandHome(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}

	usr, err := user.Current()
	if err != nil {
		return path
	}

	return filepath.Join(usr.HomeDir, path[2:])
}
