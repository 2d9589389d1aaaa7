package env

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

// ProjectDirEnv overrides project directory discovery when set.
const ProjectDirEnv = "DVBUILD_PROJECT_DIR"

// projectMarkers identify the top of the project tree.
var projectMarkers = []string{"CMakeLists.txt", "go.mod"}

// ProjectDir returns the absolute directory the tool belongs to. The result
// does not depend on the caller's working directory.
func ProjectDir() (string, error) {
	if dir := os.Getenv(ProjectDirEnv); dir != "" {
		return filepath.Abs(dir)
	}
	if _, file, _, ok := runtime.Caller(0); ok && filepath.IsAbs(file) {
		if dir, err := findUp(filepath.Dir(file)); err == nil {
			return dir, nil
		}
	}
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("locate executable: %w", err)
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return filepath.Dir(exe), nil
}

// BuildDir resolves dir against the project directory. Absolute paths are
// returned unchanged.
func BuildDir(projectDir, dir string) string {
	if filepath.IsAbs(dir) {
		return filepath.Clean(dir)
	}
	return filepath.Join(projectDir, dir)
}

// findUp walks from start towards the root and returns the first directory
// holding one of projectMarkers.
func findUp(start string) (string, error) {
	dir := start
	for {
		for _, marker := range projectMarkers {
			if _, err := os.Stat(filepath.Join(dir, marker)); err == nil {
				return dir, nil
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errors.New("project root not found above " + start)
		}
		dir = parent
	}
}
