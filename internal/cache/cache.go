package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"perfumeria_back_end/internal/models"
)

const (
	ProductCacheTTL = 10 * time.Minute
	CatalogCacheTTL = 2 * time.Minute
)

const catalogKey = "products:all"

func productKey(id int64) string {
	return "product:" + strconv.FormatInt(id, 10)
}

// Cache est un cache de lecture devant ScyllaDB. Redis indisponible n'est
// jamais une erreur : on lit directement la base.
type Cache struct {
	rdb *redis.Client
}

func New(rdb *redis.Client) *Cache {
	return &Cache{rdb: rdb}
}

func (c *Cache) enabled() bool {
	return c != nil && c.rdb != nil
}

// Product renvoie le produit depuis Redis ou, à défaut, via load.
func (c *Cache) Product(ctx context.Context, id int64, load func(context.Context) (*models.Product, error)) (*models.Product, error) {
	if !c.enabled() {
		return load(ctx)
	}
	key := productKey(id)

	// 1. Essayer le cache Redis
	data, err := c.rdb.Get(ctx, key).Bytes()
	if err == nil {
		var p models.Product
		if json.Unmarshal(data, &p) == nil {
			return &p, nil
		}
	} else if !errors.Is(err, redis.Nil) {
		log.Printf("⚠️ Cache produit %d indisponible: %v", id, err)
	}

	// 2. Lire la base
	p, err := load(ctx)
	if err != nil {
		return nil, err
	}

	// 3. Mettre en cache
	c.store(ctx, key, p, ProductCacheTTL)
	return p, nil
}

// Catalog renvoie le catalogue complet depuis Redis ou via load.
func (c *Cache) Catalog(ctx context.Context, load func(context.Context) ([]models.Product, error)) ([]models.Product, error) {
	if !c.enabled() {
		return load(ctx)
	}
	data, err := c.rdb.Get(ctx, catalogKey).Bytes()
	if err == nil {
		var list []models.Product
		if json.Unmarshal(data, &list) == nil {
			return list, nil
		}
	} else if !errors.Is(err, redis.Nil) {
		log.Printf("⚠️ Cache catalogue indisponible: %v", err)
	}

	list, err := load(ctx)
	if err != nil {
		return nil, err
	}
	c.store(ctx, catalogKey, list, CatalogCacheTTL)
	return list, nil
}

// InvalidateProduct invalide le produit et le catalogue.
func (c *Cache) InvalidateProduct(ctx context.Context, id int64) {
	if !c.enabled() {
		return
	}
	if err := c.rdb.Del(ctx, productKey(id), catalogKey).Err(); err != nil {
		log.Printf("⚠️ Invalidation cache produit %d: %v", id, err)
	}
}

func (c *Cache) store(ctx context.Context, key string, v any, ttl time.Duration) {
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, key, data, ttl).Err(); err != nil {
		log.Printf("⚠️ Écriture cache %s: %v", key, err)
	}
}
