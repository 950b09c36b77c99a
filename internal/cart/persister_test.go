package cart

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

func TestRedisPersisterScopesByIdentity(t *testing.T) {
	ctx := context.Background()
	mr, rdb := newRedis(t)
	p := NewRedisPersister(rdb)

	user := Identity{ID: "42"}
	guest := Identity{ID: "42", Guest: true}

	s := Open(ctx, p, user)
	if err := s.Add(ctx, productA, 2); err != nil {
		t.Fatalf("add: %v", err)
	}

	if !mr.Exists("cart:user:42") {
		t.Fatal("user cart key missing")
	}
	if mr.Exists("cart:guest:42") {
		t.Fatal("guest cart must not be written")
	}
	if ttl := mr.TTL("cart:user:42"); ttl != CartTTL {
		t.Errorf("ttl = %v, want %v", ttl, CartTTL)
	}

	g := Open(ctx, p, guest)
	if g.Len() != 0 {
		t.Fatalf("guest cart = %d lines, want 0", g.Len())
	}

	again := Open(ctx, p, user)
	if again.Subtotal() != 11998 {
		t.Errorf("reloaded subtotal = %d, want 11998", again.Subtotal())
	}
}

func TestRedisPersisterLoadMissing(t *testing.T) {
	_, rdb := newRedis(t)
	data, err := NewRedisPersister(rdb).Load(context.Background(), Identity{ID: "nobody"})
	if err != nil || data != nil {
		t.Fatalf("Load = %q, %v; want nil, nil", data, err)
	}
}

func TestRedisPersisterPublishesEvents(t *testing.T) {
	ctx := context.Background()
	_, rdb := newRedis(t)
	p := NewRedisPersister(rdb)
	id := Identity{ID: "7"}

	sub := p.Subscribe(ctx, id)
	defer sub.Close()
	if _, err := sub.Receive(ctx); err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	s := Open(ctx, p, id)
	_ = s.Add(ctx, productA, 1)
	s.Clear(ctx)

	want := []string{EventUpdated, EventCleared}
	for _, w := range want {
		rctx, cancel := context.WithTimeout(ctx, 2*time.Second)
		msg, err := sub.ReceiveMessage(rctx)
		cancel()
		if err != nil {
			t.Fatalf("receive: %v", err)
		}
		if msg.Channel != Key(id) || msg.Payload != w {
			t.Errorf("got %s/%s, want %s/%s", msg.Channel, msg.Payload, Key(id), w)
		}
	}
}

func TestRedisDownKeepsCartInMemory(t *testing.T) {
	ctx := context.Background()
	mr, rdb := newRedis(t)
	sessions := NewSessions(NewRedisPersister(rdb))
	id := Identity{ID: "u1"}

	s := sessions.Get(ctx, id)
	_ = s.Add(ctx, productA, 1)

	mr.Close()

	s = sessions.Get(ctx, id)
	if err := s.Add(ctx, productB, 1); err != nil {
		t.Fatalf("add: %v", err)
	}
	if s.Count() != 2 {
		t.Errorf("count = %d, want 2", s.Count())
	}
}

func TestSessionsSweep(t *testing.T) {
	ctx := context.Background()
	sessions := NewSessions(NewMemoryPersister())
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	sessions.now = func() time.Time { return now }

	a := sessions.Get(ctx, Identity{ID: "a"})
	_ = a.Add(ctx, productA, 1)
	now = now.Add(time.Hour)
	sessions.Get(ctx, Identity{ID: "b"})

	if n := sessions.Sweep(30 * time.Minute); n != 1 {
		t.Fatalf("swept %d, want 1", n)
	}
	// le panier balayé est relu depuis le stockage
	if got := sessions.Get(ctx, Identity{ID: "a"}).Count(); got != 1 {
		t.Errorf("count after sweep = %d, want 1", got)
	}
}

func TestSessionsForget(t *testing.T) {
	ctx := context.Background()
	p := NewMemoryPersister()
	sessions := NewSessions(p)
	id := Identity{ID: "x", Guest: true}
	_ = sessions.Get(ctx, id).Add(ctx, productA, 1)

	if err := sessions.Forget(ctx, id); err != nil {
		t.Fatalf("forget: %v", err)
	}
	if data, _ := p.Load(ctx, id); data != nil {
		t.Errorf("persisted copy still present: %s", data)
	}
	if sessions.Get(ctx, id).Len() != 0 {
		t.Error("cart should be empty after forget")
	}
}
