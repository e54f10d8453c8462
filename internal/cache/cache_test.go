package cache

import (
	"bytes"
	"path/filepath"
	"testing"
	"time"
)

func TestKey(t *testing.T) {
	a := Key("v1", "gpt-4o-mini", "text")
	if a != Key("v1", "gpt-4o-mini", "text") {
		t.Error("key is not deterministic")
	}
	if a == Key("v1", "gpt-4o", "text") {
		t.Error("model should change the key")
	}
	if Key("ab", "c") == Key("a", "bc") {
		t.Error("part boundaries should change the key")
	}
	if len(a) != len("topic-agent:v1:")+64 {
		t.Errorf("unexpected key %q", a)
	}
}

func TestMemoryCache(t *testing.T) {
	c := NewMemoryCache(time.Minute, time.Minute)
	if _, ok := c.Get("k"); ok {
		t.Fatal("empty cache hit")
	}
	_ = c.Set("k", []byte("v"), 0)
	if v, ok := c.Get("k"); !ok || string(v) != "v" {
		t.Fatalf("Get = %q, %v", v, ok)
	}
	_ = c.Delete("k")
	if _, ok := c.Get("k"); ok {
		t.Error("deleted key still present")
	}
	_ = c.Set("a", []byte("1"), 0)
	_ = c.Set("b", []byte("2"), 0)
	_ = c.Clear()
	if c.Len() != 0 {
		t.Errorf("Len after Clear = %d", c.Len())
	}
}

func openTestSQLite(t *testing.T, ttl time.Duration) *SQLiteCache {
	t.Helper()
	c, err := OpenSQLite(filepath.Join(t.TempDir(), "cache", "extract.db"), ttl)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestSQLiteCacheRoundTripAndUpsert(t *testing.T) {
	c := openTestSQLite(t, 0)
	if err := c.Set("k", []byte(`{"Document":"A"}`), 0); err != nil {
		t.Fatal(err)
	}
	if err := c.Set("k", []byte(`{"Document":"B"}`), 0); err != nil {
		t.Fatal(err)
	}
	v, ok := c.Get("k")
	if !ok || !bytes.Equal(v, []byte(`{"Document":"B"}`)) {
		t.Fatalf("Get = %s, %v", v, ok)
	}
	if err := c.Delete("k"); err != nil {
		t.Fatal(err)
	}
	if _, ok := c.Get("k"); ok {
		t.Error("deleted key still present")
	}
}

func TestSQLiteCacheExpiry(t *testing.T) {
	c := openTestSQLite(t, time.Hour)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	_ = c.Set("short", []byte("x"), time.Minute)
	_ = c.Set("long", []byte("y"), 0)

	now = now.Add(2 * time.Minute)
	if _, ok := c.Get("short"); ok {
		t.Error("expired entry returned")
	}
	if _, ok := c.Get("long"); !ok {
		t.Error("default ttl entry expired early")
	}

	_ = c.Set("gone", []byte("z"), time.Second)
	now = now.Add(2 * time.Hour)
	n, err := c.Prune()
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Errorf("pruned %d rows, want 2", n)
	}
}

func TestSQLiteCachePersistsAcrossOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "extract.db")
	c, err := OpenSQLite(path, 0)
	if err != nil {
		t.Fatal(err)
	}
	_ = c.Set("k", []byte("v"), 0)
	_ = c.Close()

	c2, err := OpenSQLite(path, 0)
	if err != nil {
		t.Fatal(err)
	}
	defer c2.Close()
	if v, ok := c2.Get("k"); !ok || string(v) != "v" {
		t.Errorf("Get after reopen = %q, %v", v, ok)
	}
}

func TestLayeredCachePromotes(t *testing.T) {
	disk := NewMemoryCache(time.Hour, time.Minute)
	_ = disk.Set("k", []byte("v"), 0)
	c := NewLayeredCache(time.Minute, disk)

	if v, ok := c.Get("k"); !ok || string(v) != "v" {
		t.Fatalf("Get = %q, %v", v, ok)
	}
	_ = disk.Clear()
	if _, ok := c.Get("k"); !ok {
		t.Error("value was not promoted to memory")
	}

	_ = c.Set("n", []byte("1"), 0)
	if _, ok := disk.Get("n"); !ok {
		t.Error("Set did not reach the disk layer")
	}
	_ = c.Clear()
	if _, ok := c.Get("n"); ok {
		t.Error("Clear left entries behind")
	}
	if err := c.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
}
