package devenv

import (
	"attendance-backend/lib/configutil"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

const (
	modulePath  = "attendance-backend"
	statePrefix = "<dev_state>"
	stateDir    = "dev/.state"
)

var moduleDirective = regexp.MustCompile(`(?m)^module\s+(\S+)\s*$`)

func isWorkspaceRoot(dir string) bool {
	mod, err := os.ReadFile(filepath.Join(dir, "go.mod"))
	if err != nil {
		return false
	}
	matches := moduleDirective.FindSubmatch(mod)
	return len(matches) == 2 && string(matches[1]) == modulePath
}

// GetWorkspaceRoot returns the closest parent of the working directory
// holding this module's go.mod.
func GetWorkspaceRoot() (string, error) {
	dir, err := filepath.Abs(".")
	if err != nil {
		return "", err
	}
	for {
		if isWorkspaceRoot(dir) {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", os.ErrNotExist
		}
		dir = parent
	}
}

// GetStateFilePath returns where path lives under dev/.state, the git
// ignored directory holding local databases, dumps and test credentials.
func GetStateFilePath(path string) (string, error) {
	root, err := GetWorkspaceRoot()
	if err != nil {
		return "", err
	}
	return filepath.Join(root, stateDir, path), nil
}

// GetStateConfig reads a configutil config out of dev/.state.
func GetStateConfig[T any](path string) (T, error) {
	configPath, err := GetStateFilePath(path)
	if err != nil {
		var out T
		return out, err
	}
	return configutil.ReadConfig[T](configPath)
}

// IsStatePath reports whether path is placed under dev/.state with the
// "<dev_state>" prefix.
func IsStatePath(path string) bool {
	return strings.HasPrefix(path, statePrefix)
}

// ResolvePath expands a leading "<dev_state>" in path, creating the
// state directory if needed. other paths are returned unchanged.
func ResolvePath(path string) (string, error) {
	if !IsStatePath(path) {
		return path, nil
	}

	state, err := GetStateFilePath("")
	if err != nil {
		return "", err
	}
	err = os.MkdirAll(state, 0777)
	if err != nil {
		return "", err
	}

	subpath := strings.TrimLeft(strings.TrimPrefix(path, statePrefix), `/\`)
	return filepath.Join(state, subpath), nil
}
