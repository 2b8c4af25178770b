package cache

import (
	"context"
	"errors"
	"os"
	"path/filepath"
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

	// Still a miss after Set
	_, hit, _ = c.Get(ctx, "key")
	if hit {
		t.Error("NullCache should not store data")
	}

	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete error: %v", err)
	}
}

func TestFileCache(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(filepath.Join(t.TempDir(), "cache"))
	if err != nil {
		t.Fatal(err)
	}

	if _, hit, err := c.Get(ctx, "missing"); hit || err != nil {
		t.Errorf("Get(missing) = hit %v, err %v; want miss", hit, err)
	}

	if err := c.Set(ctx, "treemap:abc", []byte(`{"ids":["x"]}`), time.Hour); err != nil {
		t.Fatalf("Set: %v", err)
	}
	data, hit, err := c.Get(ctx, "treemap:abc")
	if err != nil || !hit {
		t.Fatalf("Get = hit %v, err %v; want hit", hit, err)
	}
	if string(data) != `{"ids":["x"]}` {
		t.Errorf("Get data = %s", data)
	}

	if err := c.Delete(ctx, "treemap:abc"); err != nil {
		t.Errorf("Delete: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "treemap:abc"); hit {
		t.Error("entry should be gone after Delete")
	}
	if err := c.Delete(ctx, "treemap:abc"); err != nil {
		t.Errorf("Delete of missing key: %v", err)
	}
}

func TestFileCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if err := c.Set(ctx, "k", []byte("v"), time.Nanosecond); err != nil {
		t.Fatal(err)
	}
	time.Sleep(time.Millisecond)
	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Error("expired entry should be a miss")
	}
	if _, err := os.Stat(c.path("k")); !os.IsNotExist(err) {
		t.Error("expired entry should be removed")
	}
}

func TestFileCacheCorruptEntry(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	path := c.path("k")
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("not json"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, hit, err := c.Get(ctx, "k"); hit || err != nil {
		t.Errorf("corrupt entry: hit %v, err %v; want miss", hit, err)
	}
}

func TestFileCacheClear(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	for _, k := range []string{"a", "b", "c"} {
		if err := c.Set(ctx, k, []byte(k), 0); err != nil {
			t.Fatal(err)
		}
	}
	n, err := c.Clear(ctx)
	if err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if n != 3 {
		t.Errorf("Clear removed %d entries, want 3", n)
	}
	entries, _ := os.ReadDir(c.Dir())
	if len(entries) != 0 {
		t.Errorf("cache dir still has %d entries", len(entries))
	}
}

func TestHash(t *testing.T) {
	h1 := Hash([]byte("hello"))
	h2 := Hash([]byte("hello"))
	if h1 != h2 {
		t.Error("Hash should be deterministic")
	}

	h3 := Hash([]byte("world"))
	if h1 == h3 {
		t.Error("Different inputs should produce different hashes")
	}

	// SHA-256 produces 64 hex chars
	if len(h1) != 64 {
		t.Errorf("Hash length should be 64, got %d", len(h1))
	}

	j1, err := HashJSON(map[string]int{"a": 1, "b": 2})
	if err != nil {
		t.Fatal(err)
	}
	j2, _ := HashJSON(map[string]int{"b": 2, "a": 1})
	if j1 != j2 {
		t.Error("HashJSON should not depend on map order")
	}
}

func TestDefaultKeyer(t *testing.T) {
	k := NewDefaultKeyer()

	tk1 := k.TreemapKey("input1", map[string]any{"levels": []string{"a", "b"}})
	tk2 := k.TreemapKey("input1", map[string]any{"levels": []string{"b", "a"}})
	if tk1 == tk2 {
		t.Error("Different build options should produce different keys")
	}
	if !strings.HasPrefix(tk1, "treemap:") {
		t.Errorf("TreemapKey unexpected: %s", tk1)
	}
	if tk1 != k.TreemapKey("input1", map[string]any{"levels": []string{"a", "b"}}) {
		t.Error("TreemapKey should be deterministic")
	}

	ak1 := k.ArtifactKey("hash123", ArtifactKeyOpts{Format: "svg"})
	ak2 := k.ArtifactKey("hash123", ArtifactKeyOpts{Format: "html"})
	if ak1 == ak2 {
		t.Error("Different ArtifactKeyOpts should produce different keys")
	}
	if !strings.HasPrefix(ak1, "artifact:svg:") {
		t.Errorf("ArtifactKey unexpected: %s", ak1)
	}
}

func TestScopedKeyer(t *testing.T) {
	inner := NewDefaultKeyer()
	scoped := NewScopedKeyer(inner, "tenant:123:")

	key := scoped.TreemapKey("abc", nil)
	if key != "tenant:123:"+inner.TreemapKey("abc", nil) {
		t.Errorf("ScopedKeyer TreemapKey unexpected: %s", key)
	}

	ak := scoped.ArtifactKey("abc", ArtifactKeyOpts{Format: "dot"})
	if !strings.HasPrefix(ak, "tenant:123:artifact:dot:") {
		t.Errorf("ScopedKeyer ArtifactKey should be prefixed: %s", ak)
	}
}

func TestScopedKeyerNilInner(t *testing.T) {
	scoped := NewScopedKeyer(nil, "prefix:")
	key := scoped.TreemapKey("x", nil)
	if !strings.HasPrefix(key, "prefix:treemap:") {
		t.Errorf("Unexpected key with nil inner: %s", key)
	}
}

func TestRetryableError(t *testing.T) {
	if Retryable(nil) != nil {
		t.Error("Retryable(nil) should return nil")
	}

	err := Retryable(ErrUnavailable)
	if err == nil {
		t.Fatal("Retryable should return wrapped error")
	}
	if !IsRetryable(err) {
		t.Error("IsRetryable should return true for wrapped error")
	}
	if !errors.Is(err, ErrUnavailable) {
		t.Error("Retryable should unwrap to the original error")
	}
	if err.Error() != ErrUnavailable.Error() {
		t.Errorf("Error message should be preserved: %s", err.Error())
	}

	if IsRetryable(errors.New("boom")) {
		t.Error("IsRetryable should return false for unwrapped error")
	}
}

func TestRetryWithBackoff(t *testing.T) {
	ctx := context.Background()
	defer func(d time.Duration) { retryDelay = d }(retryDelay)
	retryDelay = time.Millisecond

	calls := 0
	err := RetryWithBackoff(ctx, func() error {
		calls++
		return nil
	})
	if err != nil {
		t.Errorf("Should succeed: %v", err)
	}
	if calls != 1 {
		t.Errorf("Should call once: %d", calls)
	}

	// Non-retryable error stops immediately
	permanent := errors.New("permanent")
	calls = 0
	err = RetryWithBackoff(ctx, func() error {
		calls++
		return permanent
	})
	if err != permanent {
		t.Errorf("Should return non-retryable error: %v", err)
	}
	if calls != 1 {
		t.Errorf("Should not retry non-retryable error: %d", calls)
	}

	calls = 0
	err = RetryWithBackoff(ctx, func() error {
		calls++
		if calls < 2 {
			return Retryable(ErrUnavailable)
		}
		return nil
	})
	if err != nil {
		t.Errorf("Should succeed after retry: %v", err)
	}
	if calls != 2 {
		t.Errorf("Should retry once: %d", calls)
	}

	// Gives up after three attempts
	calls = 0
	err = RetryWithBackoff(ctx, func() error {
		calls++
		return Retryable(ErrUnavailable)
	})
	if !errors.Is(err, ErrUnavailable) || calls != 3 {
		t.Errorf("err = %v after %d calls; want ErrUnavailable after 3", err, calls)
	}
}

func TestRetryWithBackoffContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := RetryWithBackoff(ctx, func() error {
		return Retryable(ErrUnavailable)
	})
	if err != context.Canceled {
		t.Errorf("Should return context error: %v", err)
	}
}
