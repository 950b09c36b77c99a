package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"perfumeria_back_end/internal/models"
)

func newCache(t *testing.T) (*miniredis.Miniredis, *Cache) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, New(rdb)
}

func TestProductReadThrough(t *testing.T) {
	mr, c := newCache(t)
	ctx := context.Background()
	loads := 0
	load := func(context.Context) (*models.Product, error) {
		loads++
		return &models.Product{ID: 5, Name: "Rosa", PriceCents: 5999}, nil
	}

	for i := 0; i < 3; i++ {
		p, err := c.Product(ctx, 5, load)
		if err != nil {
			t.Fatalf("Product: %v", err)
		}
		if p.Name != "Rosa" || p.PriceCents != 5999 {
			t.Fatalf("got %+v", p)
		}
	}
	if loads != 1 {
		t.Errorf("loads = %d, want 1", loads)
	}
	if !mr.Exists("product:5") {
		t.Error("product:5 not cached")
	}

	c.InvalidateProduct(ctx, 5)
	if _, err := c.Product(ctx, 5, load); err != nil {
		t.Fatalf("Product: %v", err)
	}
	if loads != 2 {
		t.Errorf("loads after invalidation = %d, want 2", loads)
	}
}

func TestLoaderErrorIsNotCached(t *testing.T) {
	mr, c := newCache(t)
	boom := errors.New("scylla down")
	_, err := c.Product(context.Background(), 1, func(context.Context) (*models.Product, error) {
		return nil, boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v", err)
	}
	if mr.Exists("product:1") {
		t.Error("failed load should not be cached")
	}
}

func TestCatalogInvalidatedWithProduct(t *testing.T) {
	mr, c := newCache(t)
	ctx := context.Background()
	_, err := c.Catalog(ctx, func(context.Context) ([]models.Product, error) {
		return []models.Product{{ID: 1}, {ID: 2}}, nil
	})
	if err != nil {
		t.Fatalf("Catalog: %v", err)
	}
	if !mr.Exists(catalogKey) {
		t.Fatal("catalog not cached")
	}
	c.InvalidateProduct(ctx, 2)
	if mr.Exists(catalogKey) {
		t.Error("catalog should be invalidated")
	}
}

func TestRedisDownFallsBackToLoader(t *testing.T) {
	mr, c := newCache(t)
	mr.Close()
	p, err := c.Product(context.Background(), 3, func(context.Context) (*models.Product, error) {
		return &models.Product{ID: 3}, nil
	})
	if err != nil || p.ID != 3 {
		t.Fatalf("got %+v, %v", p, err)
	}
}

func TestHit(t *testing.T) {
	mr, c := newCache(t)
	ctx := context.Background()
	for i := int64(1); i <= 3; i++ {
		n, ttl, err := c.Hit(ctx, "cart_add:u1", time.Minute)
		if err != nil {
			t.Fatalf("Hit: %v", err)
		}
		if n != i {
			t.Errorf("hit %d: count = %d", i, n)
		}
		if ttl <= 0 || ttl > time.Minute {
			t.Errorf("ttl = %v", ttl)
		}
	}
	mr.FastForward(61 * time.Second)
	n, _, _ := c.Hit(ctx, "cart_add:u1", time.Minute)
	if n != 1 {
		t.Errorf("count after window = %d, want 1", n)
	}
}

func TestNilCache(t *testing.T) {
	var c *Cache
	n, _, err := c.Hit(context.Background(), "k", time.Minute)
	if n != 0 || err != nil {
		t.Errorf("nil Hit = %d, %v", n, err)
	}
	p, err := c.Product(context.Background(), 1, func(context.Context) (*models.Product, error) {
		return &models.Product{ID: 1}, nil
	})
	if err != nil || p.ID != 1 {
		t.Errorf("nil Product = %+v, %v", p, err)
	}
}
