package utils

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestArchiveLockBoundedWait(t *testing.T) {
	path := filepath.Join(t.TempDir(), "archive.sqlite")
	holder := NewArchiveLock(path, 0)
	waiter := NewArchiveLock(path, 100*time.Millisecond)

	if err := holder.Acquire(context.Background()); err != nil {
		t.Fatalf("first acquire: %v", err)
	}

	start := time.Now()
	err := waiter.Acquire(context.Background())
	if !errors.Is(err, ErrArchiveBusy) {
		t.Fatalf("expected ErrArchiveBusy, got %v", err)
	}
	if waited := time.Since(start); waited > 2*time.Second {
		t.Fatalf("wait was not bounded: %s", waited)
	}

	if err := holder.Release(); err != nil {
		t.Fatalf("release: %v", err)
	}
	if err := waiter.Acquire(context.Background()); err != nil {
		t.Fatalf("acquire after release: %v", err)
	}
	if err := waiter.Release(); err != nil {
		t.Fatalf("release: %v", err)
	}
}

func TestArchiveLockHonorsContext(t *testing.T) {
	path := filepath.Join(t.TempDir(), "archive.sqlite")
	holder := NewArchiveLock(path, 0)
	if err := holder.Acquire(context.Background()); err != nil {
		t.Fatalf("acquire: %v", err)
	}
	defer holder.Release()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := NewArchiveLock(path, 0).Acquire(ctx); !errors.Is(err, ErrArchiveBusy) {
		t.Fatalf("expected ErrArchiveBusy on canceled context, got %v", err)
	}
}

func TestArchiveLockReleaseUnheld(t *testing.T) {
	l := NewArchiveLock(filepath.Join(t.TempDir(), "archive.sqlite"), 0)
	if err := l.Release(); err != nil {
		t.Fatalf("releasing an unheld lock should be a no-op, got %v", err)
	}
	if !strings.HasSuffix(l.Path(), "archive.sqlite.lock") {
		t.Fatalf("unexpected lock path %q", l.Path())
	}
}

func TestArchivePath(t *testing.T) {
	got, err := ArchivePath("")
	if err != nil {
		t.Fatalf("ArchivePath: %v", err)
	}
	if !strings.HasSuffix(got, filepath.Join(".config", "crimefeed", "crimefeed.sqlite")) {
		t.Fatalf("unexpected default path %q", got)
	}
	got, err = ArchivePath("incidents.sqlite")
	if err != nil {
		t.Fatalf("ArchivePath: %v", err)
	}
	if !filepath.IsAbs(got) {
		t.Fatalf("expected an absolute path, got %q", got)
	}
}
