// Package blobstore is a filesystem-backed binary object store. All
// objects live directly under a single root directory; every operation
// re-resolves and re-validates the target path against that root, so a
// hostile key can never reach outside it.
package blobstore

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrPathTraversal indicates a name or key that attempts to escape
	// the store root. Always rejected, never sanitized-and-continued.
	ErrPathTraversal = errors.New("path traversal attempt")

	// ErrNotFound indicates the key resolves to no stored object.
	ErrNotFound = errors.New("object not found")
)

// StoreError wraps a filesystem failure with the operation and key that
// triggered it.
type StoreError struct {
	Op  string
	Key string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("blobstore %s %q: %v", e.Op, e.Key, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

const (
	maxBaseLen  = 100
	maxExtLen   = 10
	fallbackExt = "bin"
	tokenLen    = 8
)

// Store persists byte blobs under a root directory with collision-free
// generated names.
type Store struct {
	root string // absolute, cleaned
}

// New creates a Store rooted at dir, creating the directory and all of
// its ancestors if absent. Fails if the directory cannot be created or
// is not writable - a misconfigured root should stop startup, not
// surface later on the first store call.
func New(dir string) (*Store, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve artifact root: %w", err)
	}
	abs = filepath.Clean(abs)

	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("create artifact root %s: %w", abs, err)
	}

	// Probe writability now rather than on first use.
	probe, err := os.CreateTemp(abs, ".probe-*")
	if err != nil {
		return nil, fmt.Errorf("artifact root %s not writable: %w", abs, err)
	}
	probe.Close()
	os.Remove(probe.Name())

	return &Store{root: abs}, nil
}

// Root returns the absolute root directory of the store.
func (s *Store) Root() string {
	return s.root
}

// Store writes data under a generated collision-free name derived from
// requestedName and returns the key (the generated filename, relative
// to the root). Repeated stores of the same requested name never
// collide: the name carries a wall-clock timestamp and a random token.
//
// The write goes through a temp file in the root followed by a rename,
// so a concurrent Load never observes a partial object.
func (s *Store) Store(data []byte, requestedName string) (string, error) {
	if containsTraversal(requestedName) {
		return "", fmt.Errorf("%w: %q", ErrPathTraversal, requestedName)
	}

	key := uniqueName(requestedName)
	target, err := s.resolve(key)
	if err != nil {
		return "", err
	}

	tmp, err := os.CreateTemp(s.root, ".tmp-*")
	if err != nil {
		return "", &StoreError{Op: "store", Key: requestedName, Err: err}
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return "", &StoreError{Op: "store", Key: requestedName, Err: err}
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return "", &StoreError{Op: "store", Key: requestedName, Err: err}
	}
	if err := os.Rename(tmpName, target); err != nil {
		os.Remove(tmpName)
		return "", &StoreError{Op: "store", Key: requestedName, Err: err}
	}

	return key, nil
}

// Load reads the full content of the object at key. A key that resolves
// to no file, or to a path outside the root, returns ErrNotFound or
// ErrPathTraversal respectively.
func (s *Store) Load(key string) ([]byte, error) {
	target, err := s.resolve(key)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(target)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %q", ErrNotFound, key)
		}
		return nil, &StoreError{Op: "load", Key: key, Err: err}
	}
	return data, nil
}

// Delete removes the object at key. A missing object is not an error -
// delete is idempotent - but a traversal attempt still is.
func (s *Store) Delete(key string) error {
	target, err := s.resolve(key)
	if err != nil {
		return err
	}

	if err := os.Remove(target); err != nil && !os.IsNotExist(err) {
		return &StoreError{Op: "delete", Key: key, Err: err}
	}
	return nil
}

// resolve turns a key into an absolute path strictly inside the root.
// Validation happens on every call: keys may come from stored records
// supplied by less-trusted call sites, so containment is re-checked
// after normalization rather than trusted from an earlier check.
func (s *Store) resolve(key string) (string, error) {
	if key == "" || containsTraversal(key) {
		return "", fmt.Errorf("%w: %q", ErrPathTraversal, key)
	}

	target := filepath.Clean(filepath.Join(s.root, key))
	if target != s.root && !strings.HasPrefix(target, s.root+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %q resolves outside root", ErrPathTraversal, key)
	}
	if target == s.root {
		return "", fmt.Errorf("%w: %q resolves to root", ErrPathTraversal, key)
	}
	return target, nil
}

func containsTraversal(name string) bool {
	for _, seg := range strings.FieldsFunc(name, func(r rune) bool {
		return r == '/' || r == os.PathSeparator
	}) {
		if seg == ".." {
			return true
		}
	}
	return false
}

// uniqueName derives the on-disk filename: sanitized base, bounded
// length, then a timestamp plus random token so repeated stores of the
// same logical name never collide. The extension falls back to "bin"
// when absent or unreasonably long.
func uniqueName(requestedName string) string {
	base := requestedName
	ext := ""
	if i := strings.LastIndexByte(requestedName, '.'); i > 0 {
		base = requestedName[:i]
		ext = strings.ToLower(requestedName[i+1:])
	}
	if ext == "" || len(ext) > maxExtLen {
		ext = fallbackExt
	}

	base = sanitize(base)
	if base == "" {
		base = "blob"
	}
	if len(base) > maxBaseLen {
		base = base[:maxBaseLen]
	}

	token := uuid.NewString()[:tokenLen]
	return fmt.Sprintf("%s_%d_%s.%s", base, time.Now().UnixMilli(), token, ext)
}

// sanitize restricts a name to letters, digits, '.', '_' and '-';
// everything else becomes '_'.
func sanitize(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.' || r == '_' || r == '-':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}
