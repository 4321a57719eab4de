package session

import (
	"context"
	"testing"
	"time"

	"pricingdesk/internal/logging"
)

func TestStoreCreateAndGet(t *testing.T) {
	store := NewStore(nil, time.Minute, logging.Nop())

	state := store.Create()
	if state.ID == "" {
		t.Fatal("empty session id")
	}
	got, ok := store.Get(context.Background(), state.ID)
	if !ok || got != state {
		t.Fatalf("Get returned %v, %v", got, ok)
	}
}

func TestStoreGetUnknown(t *testing.T) {
	store := NewStore(nil, time.Minute, logging.Nop())
	if _, ok := store.Get(context.Background(), "nope"); ok {
		t.Fatal("unknown session reported found")
	}
}

func TestStoreDrop(t *testing.T) {
	store := NewStore(nil, time.Minute, logging.Nop())
	state := store.Create()
	store.Drop(context.Background(), state.ID)
	if _, ok := store.Get(context.Background(), state.ID); ok {
		t.Fatal("dropped session still resolvable")
	}
}

func TestStoreDistinctSessions(t *testing.T) {
	store := NewStore(nil, time.Minute, logging.Nop())
	a := store.Create()
	b := store.Create()
	if a.ID == b.ID {
		t.Fatal("duplicate session ids")
	}
	a.AppendFile(uploaded("only-a.pdf"))
	if len(b.Files) != 0 {
		t.Error("state leaked across sessions")
	}
}
