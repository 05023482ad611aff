package cache

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"
	"time"
)

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	defer c.Close()

	// Get always returns miss
	data, hit, err := c.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if hit {
		t.Error("NullCache.Get should always return miss")
	}
	if data != nil {
		t.Error("NullCache.Get should return nil data")
	}

	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Errorf("Set error: %v", err)
	}
	if _, hit, _ = c.Get(ctx, "key"); hit {
		t.Error("NullCache should not store data")
	}
	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete error: %v", err)
	}
}

func TestHash(t *testing.T) {
	h1 := Hash([]byte("hello"))
	if h1 != Hash([]byte("hello")) {
		t.Error("Hash should be deterministic")
	}
	if h1 == Hash([]byte("world")) {
		t.Error("Different inputs should produce different hashes")
	}
	if len(h1) != 64 {
		t.Errorf("Hash length = %d, want 64", len(h1))
	}
}

func TestKey(t *testing.T) {
	k1 := Key("chat", "llama3.2", 0.3, []string{"hi"})
	k2 := Key("chat", "llama3.2", 0.3, []string{"hi"})
	k3 := Key("chat", "llama3.2", 0.7, []string{"hi"})

	if k1 != k2 {
		t.Errorf("Key not deterministic: %s != %s", k1, k2)
	}
	if k1 == k3 {
		t.Error("different parts should produce different keys")
	}
	if !strings.HasPrefix(k1, "chat:") || len(k1) != len("chat:")+64 {
		t.Errorf("Key = %q, want chat:<sha256>", k1)
	}
}

func TestFileCache(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	defer c.Close()

	if _, hit, err := c.Get(ctx, "missing"); hit || err != nil {
		t.Errorf("Get(missing) = hit %v, err %v", hit, err)
	}

	if err := c.Set(ctx, "k", []byte(`{"ok":true}`), time.Hour); err != nil {
		t.Fatalf("Set: %v", err)
	}
	data, hit, err := c.Get(ctx, "k")
	if err != nil || !hit || string(data) != `{"ok":true}` {
		t.Errorf("Get(k) = %q, %v, %v", data, hit, err)
	}

	if err := c.Delete(ctx, "k"); err != nil {
		t.Errorf("Delete: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Error("entry still present after Delete")
	}
	if err := c.Delete(ctx, "k"); err != nil {
		t.Errorf("Delete(missing) = %v", err)
	}
}

func TestFileCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c, _ := NewFileCache(t.TempDir())
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	_ = c.Set(ctx, "short", []byte("x"), time.Minute)
	_ = c.Set(ctx, "forever", []byte("y"), 0)

	now = now.Add(2 * time.Minute)
	if _, hit, _ := c.Get(ctx, "short"); hit {
		t.Error("expired entry returned")
	}
	if _, err := os.Stat(c.path("short")); !os.IsNotExist(err) {
		t.Error("expired entry not removed")
	}
	if _, hit, _ := c.Get(ctx, "forever"); !hit {
		t.Error("entry without ttl expired")
	}
}

func TestFileCacheCorruptEntry(t *testing.T) {
	ctx := context.Background()
	c, _ := NewFileCache(t.TempDir())
	_ = c.Set(ctx, "k", []byte("v"), 0)
	if err := os.WriteFile(c.path("k"), []byte("not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, hit, err := c.Get(ctx, "k"); hit || err != nil {
		t.Errorf("Get(corrupt) = hit %v, err %v; want miss", hit, err)
	}
}

func TestFileCacheClear(t *testing.T) {
	ctx := context.Background()
	c, _ := NewFileCache(t.TempDir())
	for _, k := range []string{"a", "b", "c"} {
		_ = c.Set(ctx, k, []byte(k), 0)
	}
	if err := c.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	entries, _ := os.ReadDir(c.Dir())
	if len(entries) != 0 {
		t.Errorf("entries after Clear = %d, want 0", len(entries))
	}
}

func TestPrefixed(t *testing.T) {
	ctx := context.Background()
	inner, _ := NewFileCache(t.TempDir())
	llm := Prefixed(inner, "llm:")

	_ = llm.Set(ctx, "k", []byte("v"), 0)
	if _, hit, _ := inner.Get(ctx, "llm:k"); !hit {
		t.Error("inner cache missing prefixed key")
	}
	if _, hit, _ := inner.Get(ctx, "k"); hit {
		t.Error("inner cache has unprefixed key")
	}
	if data, hit, _ := llm.Get(ctx, "k"); !hit || string(data) != "v" {
		t.Errorf("Get(k) = %q, %v", data, hit)
	}

	if _, hit, _ := Prefixed(nil, "x:").Get(ctx, "k"); hit {
		t.Error("Prefixed(nil) should behave like NullCache")
	}
}

func TestGetOrErr(t *testing.T) {
	ctx := context.Background()
	c, _ := NewFileCache(t.TempDir())
	if _, err := GetOrErr(ctx, c, "nope"); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("GetOrErr(miss) = %v, want %v", err, ErrCacheMiss)
	}
	_ = c.Set(ctx, "yes", []byte("1"), 0)
	if data, err := GetOrErr(ctx, c, "yes"); err != nil || string(data) != "1" {
		t.Errorf("GetOrErr(hit) = %q, %v", data, err)
	}
}
