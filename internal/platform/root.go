package platform

import (
	"fmt"
	"os"
	"path/filepath"
)

// Root markers, checked in order.
const (
	SystemDir  = ".studynotes"
	ConfigFile = "studynotes.yaml"
)

// FindRoot walks upwards from startDir looking for a .studynotes directory
// or a studynotes.yaml file and returns the absolute path of the first
// directory holding one.
func FindRoot(startDir string) (string, error) {
	abs, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	dir := abs
	for {
		if hasFile(dir, SystemDir) || hasFile(dir, ConfigFile) {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached filesystem root
			break
		}
		dir = parent
	}

	return "", fmt.Errorf("root not found")
}

func hasFile(dir, name string) bool {
	path := filepath.Join(dir, name)
	_, err := os.Stat(path)
	return err == nil
}
