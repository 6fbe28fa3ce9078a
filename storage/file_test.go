package storage

import (
	"context"
	"errors"
	"testing"
)

func TestFile_RoundTrip(t *testing.T) {
	ctx := context.Background()
	f, err := NewFile(t.TempDir())
	if err != nil {
		t.Fatalf("backend init failed: %v", err)
	}

	if _, err := f.Read(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := f.Write(ctx, "app/state", []byte(`{"count":2}`)); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	data, err := f.Read(ctx, "app/state")
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if string(data) != `{"count":2}` {
		t.Fatalf("unexpected payload %q", data)
	}

	if err := f.Write(ctx, "app/state", []byte(`{"count":3}`)); err != nil {
		t.Fatalf("overwrite failed: %v", err)
	}
	data, err = f.Read(ctx, "app/state")
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if string(data) != `{"count":3}` {
		t.Fatalf("unexpected payload after overwrite %q", data)
	}

	if err := f.Remove(ctx, "app/state"); err != nil {
		t.Fatalf("remove failed: %v", err)
	}
	if _, err := f.Read(ctx, "app/state"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after remove, got %v", err)
	}
	if err := f.Remove(ctx, "app/state"); err != nil {
		t.Fatalf("expected removing an absent key to succeed, got %v", err)
	}
}
