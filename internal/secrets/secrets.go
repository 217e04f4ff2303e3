// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets reads API credentials from a directory of plain-text
// files, one secret per file: the filename is the key and the trimmed
// file contents are the value.
//
// Supported key files: anthropic-api-key.
package secrets

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Dir is the default secrets directory, relative to the working directory.
const Dir = ".secrets"

// Load reads every regular, non-hidden file in dir into a key/value map.
// A missing directory is not an error; Load returns an empty map so a
// fresh checkout works before `mage init` has run. Unreadable files are
// skipped with a warning on stderr.
func Load(dir string) (map[string]string, error) {
	secrets := map[string]string{}

	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return secrets, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}
		value, err := readSecret(filepath.Join(dir, name))
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: could not read secret %s: %v\n", name, err)
			continue
		}
		if value != "" {
			secrets[name] = value
		}
	}
	return secrets, nil
}

// Key reads a single secret from dir, returning "" when the file is
// missing, unreadable, or blank.
func Key(dir, name string) string {
	value, err := readSecret(filepath.Join(dir, name))
	if err != nil {
		return ""
	}
	return value
}

func readSecret(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}
