package configutil

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"dario.cat/mergo"
	"github.com/titanous/json5"
)

// layers returns the files merged by ReadConfig for name, lowest priority
// first: "config.json5" yields "config.json5" and "config.local.json5".
func layers(name string) []string {
	ext := filepath.Ext(name)
	return []string{
		name,
		strings.TrimSuffix(name, ext) + ".local" + ext,
	}
}

// readLayer decodes a single json5 file into out with $VAR and ${VAR}
// expanded from the environment, found is false when the file is missing.
func readLayer(path string, out any) (found bool, err error) {
	contents, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	err = json5.Unmarshal([]byte(os.ExpandEnv(string(contents))), out)
	if err != nil {
		return true, fmt.Errorf("parse %s: %w", path, err)
	}
	return true, nil
}

// ReadConfig reads the json5 config at name, then merges the fields set in
// its ".local" sibling over it. os.ErrNotExist is returned when neither
// file exists.
func ReadConfig[T any](name string) (T, error) {
	var out T
	foundAny := false

	for i, path := range layers(name) {
		var layer T
		found, err := readLayer(path, &layer)
		if err != nil {
			return out, err
		}
		if !found {
			continue
		}
		foundAny = true
		if i == 0 {
			out = layer
			continue
		}

		err = mergo.Merge(&out, layer, mergo.WithOverride)
		if err != nil {
			return out, err
		}
		slog.Debug("merged config overrides", "path", path)
	}

	if !foundAny {
		return out, os.ErrNotExist
	}
	return out, nil
}

// ReadRecursively calls ReadConfig with name in the working directory and
// every parent of it, returning the first config found.
func ReadRecursively[T any](name string) (T, error) {
	dir, err := os.Getwd()
	if err != nil {
		var out T
		return out, err
	}

	for {
		config, err := ReadConfig[T](filepath.Join(dir, name))
		if !os.IsNotExist(err) {
			return config, err
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return config, os.ErrNotExist
		}
		dir = parent
	}
}
