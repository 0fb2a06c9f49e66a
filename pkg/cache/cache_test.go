package cache

import (
	"context"
	"testing"
	"time"
)

func TestLocalCacheRoundTrip(t *testing.T) {
	ctx := context.Background()
	c := NewLocalCache(LocalConfig{})
	defer c.Close()

	if err := c.Set(ctx, "k", "v", time.Minute); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	got, ok := c.Get(ctx, "k")
	if !ok {
		t.Fatal("Get missed a key that was just set")
	}
	if got != "v" {
		t.Fatalf("Get returned %v, want v", got)
	}
	if !c.Exists(ctx, "k") {
		t.Fatal("Exists returned false for a live key")
	}

	if err := c.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if c.Exists(ctx, "k") {
		t.Fatal("Exists returned true after Delete")
	}
}

func TestLocalCacheExpiration(t *testing.T) {
	ctx := context.Background()
	c := NewLocalCache(LocalConfig{})
	defer c.Close()

	if err := c.Set(ctx, "short", 1, 10*time.Millisecond); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	time.Sleep(30 * time.Millisecond)
	if _, ok := c.Get(ctx, "short"); ok {
		t.Fatal("Get returned a value past its expiration")
	}
}

func TestLocalCacheClear(t *testing.T) {
	ctx := context.Background()
	c := NewLocalCache(LocalConfig{})
	defer c.Close()

	_ = c.Set(ctx, "a", 1, time.Minute)
	_ = c.Set(ctx, "b", 2, time.Minute)
	if err := c.Clear(ctx); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if c.Exists(ctx, "a") || c.Exists(ctx, "b") {
		t.Fatal("Clear left keys behind")
	}
}

func TestNewCacheDefaultsToLocal(t *testing.T) {
	c, err := NewCache(Config{})
	if err != nil {
		t.Fatalf("NewCache failed: %v", err)
	}
	defer c.Close()
	if _, ok := c.(*localCache); !ok {
		t.Fatalf("NewCache returned %T, want *localCache", c)
	}
}
