package store

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestMemoryKV_SetGet(t *testing.T) {
	kv := NewMemoryKV()
	ctx := context.Background()

	if err := kv.Set(ctx, "k", []byte("v"), time.Minute); err != nil {
		t.Fatal(err)
	}
	got, err := kv.Get(ctx, "k")
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "v" {
		t.Errorf("got %q", got)
	}
}

func TestMemoryKV_GetMissing(t *testing.T) {
	kv := NewMemoryKV()
	if _, err := kv.Get(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMemoryKV_Expiry(t *testing.T) {
	kv := NewMemoryKV()
	ctx := context.Background()
	now := time.Now()
	kv.nowFunc = func() time.Time { return now }

	if err := kv.Set(ctx, "k", []byte("v"), time.Minute); err != nil {
		t.Fatal(err)
	}

	now = now.Add(30 * time.Second)
	if _, err := kv.Get(ctx, "k"); err != nil {
		t.Fatalf("entry should still be live: %v", err)
	}

	now = now.Add(31 * time.Second)
	if _, err := kv.Get(ctx, "k"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after expiry, got %v", err)
	}
}

func TestMemoryKV_Delete(t *testing.T) {
	kv := NewMemoryKV()
	ctx := context.Background()
	kv.Set(ctx, "k", []byte("v"), time.Minute)
	if err := kv.Delete(ctx, "k"); err != nil {
		t.Fatal(err)
	}
	if _, err := kv.Get(ctx, "k"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestMemoryKV_ReturnsCopy(t *testing.T) {
	kv := NewMemoryKV()
	ctx := context.Background()
	kv.Set(ctx, "k", []byte("abc"), time.Minute)
	got, _ := kv.Get(ctx, "k")
	got[0] = 'X'
	again, _ := kv.Get(ctx, "k")
	if string(again) != "abc" {
		t.Error("stored value must not alias returned slices")
	}
}
