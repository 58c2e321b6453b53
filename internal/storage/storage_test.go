package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSaveAndDelete(t *testing.T) {
	dir := t.TempDir()
	store := NewLocalStore(dir, "/storage/")
	ctx := context.Background()

	url, err := store.Save(ctx, "products", ".PNG", []byte("image"))
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if !strings.HasPrefix(url, "/storage/products/") || !strings.HasSuffix(url, ".png") {
		t.Errorf("Unexpected url %s", url)
	}

	full := filepath.Join(dir, "products", filepath.Base(url))
	data, err := os.ReadFile(full)
	if err != nil {
		t.Fatalf("Expected stored file: %v", err)
	}
	if string(data) != "image" {
		t.Errorf("Expected stored content 'image', got %q", data)
	}

	if err := store.Delete(ctx, url); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := os.Stat(full); !os.IsNotExist(err) {
		t.Error("Expected file to be removed")
	}
	if err := store.Delete(ctx, url); err != nil {
		t.Errorf("Expected deleting a missing file to succeed, got %v", err)
	}
}

func TestSaveNamesAreUnique(t *testing.T) {
	store := NewLocalStore(t.TempDir(), "/storage")
	a, err := store.Save(context.Background(), "products", "jpg", []byte("a"))
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	b, err := store.Save(context.Background(), "products", "jpg", []byte("b"))
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if a == b {
		t.Errorf("Expected distinct urls, got %s twice", a)
	}
}

func TestDeleteOutsideStore(t *testing.T) {
	store := NewLocalStore(t.TempDir(), "/storage")
	if err := store.Delete(context.Background(), "/storage/"); !errors.Is(err, ErrOutsideStore) {
		t.Errorf("Expected ErrOutsideStore for the root, got %v", err)
	}
	// .. segments are cleaned against the store root
	if err := store.Delete(context.Background(), "/storage/../../etc/passwd"); err != nil {
		t.Errorf("Expected cleaned path to be a missing file inside the store, got %v", err)
	}
}
