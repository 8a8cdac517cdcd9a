package kv

import (
	"context"
	"testing"
	"time"
)

func TestMemoryKV_SetGetDelete(t *testing.T) {
	store := &MemoryKV{}
	ctx := context.Background()

	if err := store.Set(ctx, "k", []byte("v"), 0); err != nil {
		t.Fatalf("set: %v", err)
	}

	got, err := store.Get(ctx, "k")
	if err != nil {
		t.Fatalf("get: %v", err)
	}

	if string(got) != "v" {
		t.Fatalf("got %q, want %q", got, "v")
	}

	// 返回的是副本，改写不影响存储
	got[0] = 'x'

	again, _ := store.Get(ctx, "k")
	if string(again) != "v" {
		t.Error("stored value must not alias returned slice")
	}

	if err := store.Delete(ctx, "k"); err != nil {
		t.Fatalf("delete: %v", err)
	}

	if ok, _ := store.Exists(ctx, "k"); ok {
		t.Error("deleted key should not exist")
	}
}

func TestMemoryKV_TTLExpiry(t *testing.T) {
	store := &MemoryKV{}
	ctx := context.Background()

	if err := store.Set(ctx, "ephemeral", []byte("v"), 10*time.Millisecond); err != nil {
		t.Fatalf("set: %v", err)
	}

	if ok, _ := store.Exists(ctx, "ephemeral"); !ok {
		t.Fatal("key should exist before ttl elapses")
	}

	time.Sleep(20 * time.Millisecond)

	if _, err := store.Get(ctx, "ephemeral"); err == nil {
		t.Error("expired key should not be readable")
	}

	if ok, _ := store.Exists(ctx, "ephemeral"); ok {
		t.Error("expired key should not exist")
	}
}

func TestMemoryKV_Keys(t *testing.T) {
	store := &MemoryKV{}
	ctx := context.Background()

	_ = store.Set(ctx, "a", []byte("1"), 0)
	_ = store.Set(ctx, "b", []byte("2"), 0)

	keys, err := store.Keys(ctx, "*")
	if err != nil {
		t.Fatalf("keys: %v", err)
	}

	if len(keys) != 2 {
		t.Fatalf("got %d keys, want 2", len(keys))
	}

	exact, _ := store.Keys(ctx, "a")
	if len(exact) != 1 || exact[0] != "a" {
		t.Fatalf("exact match got %v", exact)
	}
}
