package storage

import (
	"context"
	"strings"
	"testing"
	"time"
)

func TestFileStoreRoundTrip(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore failed: %v", err)
	}
	ctx := context.Background()

	key, err := store.Write(ctx, "uploads/123-report.pdf", []byte("content"))
	if err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if key != "uploads/123-report.pdf" {
		t.Fatalf("Write returned key %q", key)
	}

	data, err := store.Read(ctx, key)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if string(data) != "content" {
		t.Fatalf("Read returned %q, want content", data)
	}

	if err := store.Delete(ctx, key); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := store.Read(ctx, key); err == nil {
		t.Fatal("Read succeeded after Delete")
	}
	if err := store.Delete(ctx, key); err != nil {
		t.Fatalf("second Delete failed: %v", err)
	}
}

func TestFileStoreRejectsTraversal(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore failed: %v", err)
	}
	ctx := context.Background()

	for _, key := range []string{"../escape", "uploads/../../escape", "", "."} {
		if _, err := store.Write(ctx, key, []byte("x")); err == nil {
			t.Fatalf("Write accepted traversal key %q", key)
		}
	}
}

func TestAttachmentKey(t *testing.T) {
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	key := AttachmentKey(now, "dir\\sub\\photo.jpg")
	if !strings.HasPrefix(key, "uploads/") {
		t.Fatalf("key = %q, want uploads/ prefix", key)
	}
	if !strings.HasSuffix(key, "-photo.jpg") {
		t.Fatalf("key = %q, want the bare filename suffix", key)
	}
	if strings.Contains(key, "\\") {
		t.Fatalf("key = %q still contains path separators", key)
	}
}
