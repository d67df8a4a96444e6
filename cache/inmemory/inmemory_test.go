package inmemory

import (
	"context"
	"testing"
	"time"
)

func TestGetSet(t *testing.T) {
	c := New(time.Minute)
	ctx := context.Background()

	if _, ok, _ := c.Get(ctx, "response:u1:go"); ok {
		t.Fatal("expected miss on empty cache")
	}
	if err := c.Set(ctx, "response:u1:go", "report"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	val, ok, err := c.Get(ctx, "response:u1:go")
	if err != nil || !ok || val != "report" {
		t.Fatalf("expected hit with report, got %q ok=%v err=%v", val, ok, err)
	}
}

func TestTTLEviction(t *testing.T) {
	c := New(time.Minute)
	ctx := context.Background()

	now := time.Now()
	c.now = func() time.Time { return now }
	_ = c.Set(ctx, "k", "v")

	c.now = func() time.Time { return now.Add(2 * time.Minute) }
	if _, ok, _ := c.Get(ctx, "k"); ok {
		t.Fatal("expected expired entry to miss")
	}
	c.mu.RLock()
	_, present := c.entries["k"]
	c.mu.RUnlock()
	if present {
		t.Fatal("expected expired entry to be dropped")
	}
}
