package handlers

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"mining-pnl/internal/model"
)

// ReferenceDir is the directory reference tables are served from.
type ReferenceDir string

// NewReferenceDir resolves dir to an absolute path.
func NewReferenceDir(dir string) ReferenceDir {
	if dir == "" {
		dir = "./data"
	}
	if abs, err := filepath.Abs(dir); err == nil {
		dir = abs
	}
	return ReferenceDir(dir)
}

// Resolve maps a request-supplied table name to a path inside the directory.
// Absolute paths and names that escape the directory are rejected.
func (d ReferenceDir) Resolve(field, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", model.MissingField(field)
	}
	if filepath.IsAbs(name) {
		return "", &model.ConfigError{Field: field, Reason: fmt.Sprintf("%q must be a name relative to the reference directory", name)}
	}
	clean := filepath.Clean(name)
	if clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", &model.ConfigError{Field: field, Reason: fmt.Sprintf("%q escapes the reference directory", name)}
	}
	return filepath.Join(string(d), clean), nil
}

// Sources lists the CSV files in the directory. A missing directory is an
// empty list.
func (d ReferenceDir) Sources() ([]os.DirEntry, error) {
	entries, err := os.ReadDir(string(d))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	out := entries[:0]
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".csv") {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}
