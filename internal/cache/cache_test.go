package cache

import (
	"context"
	"testing"
	"time"

	"pricingdesk/internal/config"
)

// A nil client stands in wherever redis is not configured, so its no-op
// behavior is part of the contract.
func TestNilClient(t *testing.T) {
	var c *Client
	ctx := context.Background()

	if err := c.SetJSON(ctx, "k", map[string]int{"a": 1}, time.Minute); err != nil {
		t.Errorf("SetJSON on nil client: %v", err)
	}
	var out map[string]int
	if err := c.GetJSON(ctx, "k", &out); !IsMiss(err) {
		t.Errorf("GetJSON on nil client = %v, want miss", err)
	}
	if err := c.Del(ctx, "k"); err != nil {
		t.Errorf("Del on nil client: %v", err)
	}
	if err := c.Close(); err != nil {
		t.Errorf("Close on nil client: %v", err)
	}
}

func TestNewUnconfigured(t *testing.T) {
	c, err := New(config.RedisConfig{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if c != nil {
		t.Fatal("expected nil client when no address is configured")
	}
}
