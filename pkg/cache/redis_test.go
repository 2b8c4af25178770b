package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
)

// TestRedisCache runs against a live server when TOOLTREE_TEST_REDIS_URL is
// set, e.g. redis://localhost:6379/15.
func TestRedisCache(t *testing.T) {
	url := os.Getenv("TOOLTREE_TEST_REDIS_URL")
	if url == "" {
		t.Skip("TOOLTREE_TEST_REDIS_URL not set")
	}
	ctx := context.Background()
	c, err := NewRedisCache(ctx, url, "tooltree-test:"+uuid.NewString()+":")
	if err != nil {
		t.Fatalf("NewRedisCache: %v", err)
	}
	defer c.Close()

	if _, hit, err := c.Get(ctx, "missing"); hit || err != nil {
		t.Errorf("Get(missing) = hit %v, err %v; want miss", hit, err)
	}
	if err := c.Set(ctx, "k", []byte("v"), time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}
	data, hit, err := c.Get(ctx, "k")
	if err != nil || !hit || string(data) != "v" {
		t.Errorf("Get = %q, hit %v, err %v", data, hit, err)
	}
	n, err := c.Clear(ctx)
	if err != nil || n != 1 {
		t.Errorf("Clear = %d, %v; want 1", n, err)
	}
}

func TestNewRedisCacheBadURL(t *testing.T) {
	if _, err := NewRedisCache(context.Background(), "not a url", ""); err == nil {
		t.Error("NewRedisCache should reject a malformed url")
	}
}
