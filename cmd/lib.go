package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/mddl-lang/mddl/config"
)

// resolveLibraryPath resolves a file name relative to the current
// directory first, then against the configured library directory.
func resolveLibraryPath(name string) (string, error) {
	if _, err := os.Stat(name); err == nil {
		return name, nil
	}

	libPath := filepath.Join(config.LibPath(), name)
	if _, err := os.Stat(libPath); err == nil {
		return libPath, nil
	}

	return "", fmt.Errorf("[mddl] could not find %q (looked in current directory and %s)", name, config.LibPath())
}
