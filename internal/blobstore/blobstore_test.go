package blobstore

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func newStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "artifacts"))
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	return s
}

func TestNew_CreatesRootAndAncestors(t *testing.T) {
	root := filepath.Join(t.TempDir(), "a", "b", "c")

	s, err := New(root)
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	info, err := os.Stat(s.Root())
	if err != nil {
		t.Fatalf("root was not created: %v", err)
	}
	if !info.IsDir() {
		t.Error("root is not a directory")
	}
}

func TestNew_ExistingRoot(t *testing.T) {
	root := t.TempDir()

	if _, err := New(root); err != nil {
		t.Fatalf("New() on existing directory failed: %v", err)
	}
}

func TestStoreLoad_RoundTrip(t *testing.T) {
	s := newStore(t)
	data := []byte("pdf bytes here")

	key, err := s.Store(data, "fatura_20240101.pdf")
	if err != nil {
		t.Fatalf("Store() failed: %v", err)
	}
	if key == "" {
		t.Fatal("Store() returned empty key")
	}
	if strings.Contains(key, string(os.PathSeparator)) {
		t.Errorf("key %q should be a bare filename", key)
	}

	got, err := s.Load(key)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if !bytes.Equal(got, data) {
		t.Errorf("Load() = %q, want %q", got, data)
	}
}

func TestStore_CollisionFree(t *testing.T) {
	s := newStore(t)
	first := []byte("first")
	second := []byte("second")

	key1, err := s.Store(first, "same.pdf")
	if err != nil {
		t.Fatalf("first Store() failed: %v", err)
	}
	key2, err := s.Store(second, "same.pdf")
	if err != nil {
		t.Fatalf("second Store() failed: %v", err)
	}

	if key1 == key2 {
		t.Fatalf("two stores of the same name yielded the same key %q", key1)
	}

	got1, err := s.Load(key1)
	if err != nil {
		t.Fatalf("Load(key1) failed: %v", err)
	}
	if !bytes.Equal(got1, first) {
		t.Errorf("first artifact changed: got %q, want %q", got1, first)
	}

	got2, err := s.Load(key2)
	if err != nil {
		t.Fatalf("Load(key2) failed: %v", err)
	}
	if !bytes.Equal(got2, second) {
		t.Errorf("second artifact: got %q, want %q", got2, second)
	}
}

func TestStore_TraversalRejected(t *testing.T) {
	s := newStore(t)

	names := []string{
		"../escape.pdf",
		"..",
		"a/../../escape.pdf",
		"../../etc/passwd",
		"sub/../../escape.pdf",
	}
	for _, name := range names {
		if _, err := s.Store([]byte("x"), name); !errors.Is(err, ErrPathTraversal) {
			t.Errorf("Store(%q) error = %v, want ErrPathTraversal", name, err)
		}
	}

	// No write may have reached the root.
	entries, err := os.ReadDir(s.Root())
	if err != nil {
		t.Fatalf("ReadDir failed: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("root received %d entries after rejected stores", len(entries))
	}
}

func TestLoad_TraversalRejected(t *testing.T) {
	s := newStore(t)

	for _, key := range []string{"../secret", "a/../..", ""} {
		if _, err := s.Load(key); !errors.Is(err, ErrPathTraversal) {
			t.Errorf("Load(%q) error = %v, want ErrPathTraversal", key, err)
		}
	}
}

func TestLoad_NotFound(t *testing.T) {
	s := newStore(t)

	_, err := s.Load("never_stored.pdf")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Load() error = %v, want ErrNotFound", err)
	}
}

func TestDelete_Idempotent(t *testing.T) {
	s := newStore(t)

	key, err := s.Store([]byte("x"), "doc.pdf")
	if err != nil {
		t.Fatalf("Store() failed: %v", err)
	}

	if err := s.Delete(key); err != nil {
		t.Fatalf("first Delete() failed: %v", err)
	}
	if err := s.Delete(key); err != nil {
		t.Errorf("second Delete() failed: %v", err)
	}
	if err := s.Delete("never_stored.pdf"); err != nil {
		t.Errorf("Delete() of never-stored key failed: %v", err)
	}

	if _, err := s.Load(key); !errors.Is(err, ErrNotFound) {
		t.Errorf("Load() after delete = %v, want ErrNotFound", err)
	}
}

func TestDelete_TraversalStillRejected(t *testing.T) {
	s := newStore(t)

	if err := s.Delete("../escape"); !errors.Is(err, ErrPathTraversal) {
		t.Errorf("Delete(../escape) error = %v, want ErrPathTraversal", err)
	}
}

func TestUniqueName_Sanitization(t *testing.T) {
	tests := []struct {
		requested  string
		wantPrefix string
		wantExt    string
	}{
		{"report final.pdf", "report_final_", ".pdf"},
		{"weird/ch@rs!.PDF", "weird_ch_rs__", ".pdf"},
		{"noextension", "noextension_", ".bin"},
		{"dots.everywhere.txt", "dots.everywhere_", ".txt"},
		{"x.averylongextension", "x_", ".bin"},
	}
	for _, tt := range tests {
		name := uniqueName(tt.requested)
		if !strings.HasPrefix(name, tt.wantPrefix) {
			t.Errorf("uniqueName(%q) = %q, want prefix %q", tt.requested, name, tt.wantPrefix)
		}
		if !strings.HasSuffix(name, tt.wantExt) {
			t.Errorf("uniqueName(%q) = %q, want suffix %q", tt.requested, name, tt.wantExt)
		}
	}
}

func TestUniqueName_TruncatesLongBase(t *testing.T) {
	long := strings.Repeat("a", 300) + ".pdf"
	name := uniqueName(long)
	// base(100) + "_" + millis + "_" + token(8) + ".pdf" stays well under
	// common filesystem name limits
	if len(name) > 140 {
		t.Errorf("uniqueName() produced %d chars, want <= 140", len(name))
	}
}
