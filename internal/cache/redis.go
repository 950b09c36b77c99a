package cache

import (
	"context"
	"time"
)

// --- Rate Limiting ---

// Hit incrémente le compteur key dans la fenêtre window et renvoie le
// nombre de requêtes vues ainsi que le temps restant avant remise à zéro.
func (c *Cache) Hit(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	if !c.enabled() {
		return 0, 0, nil
	}
	pipe := c.rdb.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, window)
	ttl := pipe.TTL(ctx, key)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, 0, err
	}
	return incr.Val(), ttl.Val(), nil
}

// Reset efface un compteur.
func (c *Cache) Reset(ctx context.Context, key string) error {
	if !c.enabled() {
		return nil
	}
	return c.rdb.Del(ctx, key).Err()
}
