package storage

import (
	"context"
	"testing"
	"time"
)

// TestMemoryTruncation tests that stored timestamps lose sub-resolution
// precision, which is the NAS behavior verification has to tolerate
func TestMemoryTruncation(t *testing.T) {
	mem := NewMemory(time.Second)
	defer mem.Close()

	ctx := context.Background()
	mem.Put("a.pdf", []byte("content"), time.Now())

	target := time.Date(2019, time.March, 15, 10, 30, 0, 123456789, time.UTC)
	if err := mem.SetTimestamps(ctx, "a.pdf", Timestamps{Modified: target}); err != nil {
		t.Fatalf("SetTimestamps() error = %v", err)
	}

	ts, err := mem.Timestamps(ctx, "a.pdf")
	if err != nil {
		t.Fatalf("Timestamps() error = %v", err)
	}
	if !ts.Modified.Equal(target.Truncate(time.Second)) {
		t.Errorf("stored modified = %v, want %v", ts.Modified, target.Truncate(time.Second))
	}
	if ts.Modified.Equal(target) {
		t.Error("sub-second precision should have been truncated")
	}
}

// TestMemoryCreationTime tests the optional creation-time capability
func TestMemoryCreationTime(t *testing.T) {
	mem := NewMemory(0)
	defer mem.Close()

	if !mem.SupportsCreationTime() {
		t.Fatal("memory backend should support creation time")
	}

	ctx := context.Background()
	orig := time.Date(2020, time.June, 1, 12, 0, 0, 0, time.UTC)
	mem.Put("a.pdf", []byte("content"), orig)

	target := time.Date(2019, time.March, 15, 10, 30, 0, 0, time.UTC)
	err := mem.SetTimestamps(ctx, "a.pdf", Timestamps{Modified: target, Created: target, HasCreated: true})
	if err != nil {
		t.Fatalf("SetTimestamps() error = %v", err)
	}

	ts, err := mem.Timestamps(ctx, "a.pdf")
	if err != nil {
		t.Fatalf("Timestamps() error = %v", err)
	}
	if !ts.HasCreated || !ts.Created.Equal(target) {
		t.Errorf("created = %v (has=%v), want %v", ts.Created, ts.HasCreated, target)
	}
}

// TestMemoryNotFound tests that missing paths carry the right kind
func TestMemoryNotFound(t *testing.T) {
	mem := NewMemory(0)
	defer mem.Close()

	ctx := context.Background()

	if _, err := mem.Stat(ctx, "missing.pdf"); !IsNotFound(err) {
		t.Errorf("Stat() kind = %v, want not found", KindOf(err))
	}
	if _, err := mem.Read(ctx, "missing.pdf"); !IsNotFound(err) {
		t.Errorf("Read() kind = %v, want not found", KindOf(err))
	}
	if err := mem.SetTimestamps(ctx, "missing.pdf", Timestamps{Modified: time.Now()}); !IsNotFound(err) {
		t.Errorf("SetTimestamps() kind = %v, want not found", KindOf(err))
	}
}

// TestMemoryList tests prefix listing
func TestMemoryList(t *testing.T) {
	mem := NewMemory(0)
	defer mem.Close()

	now := time.Now()
	mem.Put("docs/a.pdf", []byte("a"), now)
	mem.Put("docs/b.pdf", []byte("b"), now)
	mem.Put("other/c.pdf", []byte("c"), now)

	files, err := mem.List(context.Background(), "docs")
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("List(docs) returned %d files, want 2", len(files))
	}
	if files[0].Path != "docs/a.pdf" || files[1].Path != "docs/b.pdf" {
		t.Errorf("List(docs) = %v, want sorted docs/a.pdf, docs/b.pdf", files)
	}
}
