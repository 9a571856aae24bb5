package platform

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/daxaroodles/ttnexus/pkg/core"
)

// FindGameRoot looks upwards from startDir for a directory holding a Mods
// folder and returns its absolute path.
func FindGameRoot(startDir string) (string, error) {
	abs, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	dir := abs
	for {
		if hasDir(dir, core.ModsDirName) {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return "", fmt.Errorf("no %s directory found above %s", core.ModsDirName, abs)
}

func hasDir(dir, name string) bool {
	info, err := os.Stat(filepath.Join(dir, name))
	return err == nil && info.IsDir()
}
