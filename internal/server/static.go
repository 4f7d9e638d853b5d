package server

import (
	"os"
	"path/filepath"
)

// DetectStaticRoot looks for web/index.html in the working directory and up
// to two parents.
func DetectStaticRoot() string {
	startDir, err := os.Getwd()
	if err != nil {
		return "web"
	}
	candidates := []string{
		startDir,
		filepath.Dir(startDir),
		filepath.Dir(filepath.Dir(startDir)),
	}
	for _, dir := range candidates {
		root := filepath.Join(dir, "web")
		if fileExists(filepath.Join(root, "index.html")) {
			return root
		}
	}
	return filepath.Join(startDir, "web")
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}
