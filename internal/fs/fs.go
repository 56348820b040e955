// Package fs provides the root-confined filesystem abstraction the TFTP
// core consumes: open-for-read, create-for-write, and a size query (§1,
// "filesystem abstraction... only the open/read/write/close and
// size-query interface the core consumes"). It is adapted from the
// teacher's per-user FileSystem wrapper, with the user/permission layer
// dropped (authentication is an explicit non-goal, §1) and replaced by a
// single server-wide root confinement check (§9, path traversal).
package fs

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrAccessViolation is returned when a requested filename escapes the
// server root — a leading "/", a ".." path component, or any path that
// resolves outside Root's directory.
var ErrAccessViolation = errors.New("fs: path escapes server root")

// Root is a server's file root: every path accepted by Open/Create/Size is
// confined beneath it.
type Root struct {
	dir string
}

// NewRoot returns a Root confined to dir. dir is created if it does not
// already exist.
func NewRoot(dir string) (*Root, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("fs: create root %s: %w", dir, err)
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("fs: resolve root %s: %w", dir, err)
	}
	return &Root{dir: abs}, nil
}

// resolve maps a TFTP-request filename to a confined filesystem path,
// rejecting anything that tries to escape the root (§6, §9).
func (r *Root) resolve(name string) (string, error) {
	if name == "" || strings.HasPrefix(name, "/") || strings.HasPrefix(name, `\`) {
		return "", ErrAccessViolation
	}
	for _, part := range strings.Split(filepath.ToSlash(name), "/") {
		if part == ".." {
			return "", ErrAccessViolation
		}
	}

	full := filepath.Join(r.dir, filepath.Clean(name))
	if full != r.dir && !strings.HasPrefix(full, r.dir+string(filepath.Separator)) {
		return "", ErrAccessViolation
	}
	return full, nil
}

// Open opens name for reading (the server-RRQ source).
func (r *Root) Open(name string) (*os.File, error) {
	full, err := r.resolve(name)
	if err != nil {
		return nil, err
	}
	return os.Open(full)
}

// Create creates (truncating if present) name for writing (the server-WRQ
// destination). Intermediate directories named by
// name are created as needed, mirroring the teacher's WriteFile.
func (r *Root) Create(name string) (*os.File, error) {
	full, err := r.resolve(name)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
		return nil, fmt.Errorf("fs: create directory for %s: %w", name, err)
	}
	return os.OpenFile(full, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
}

// Size reports the size of name, for callers that want to know a file's
// length before deciding how to proceed (e.g. a client overwrite check).
func (r *Root) Size(name string) (int64, error) {
	full, err := r.resolve(name)
	if err != nil {
		return 0, err
	}
	info, err := os.Stat(full)
	if err != nil {
		return 0, err
	}
	if info.IsDir() {
		return 0, fmt.Errorf("fs: %s is a directory", name)
	}
	return info.Size(), nil
}

// Remove deletes name from beneath the root. The client driver does not use
// it: it removes a partial download with os.Remove on its own local path.
func (r *Root) Remove(name string) error {
	full, err := r.resolve(name)
	if err != nil {
		return err
	}
	return os.Remove(full)
}
