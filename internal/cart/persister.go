package cart

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const CartTTL = 30 * 24 * time.Hour // 30 jours

const (
	EventUpdated = "updated"
	EventCleared = "cleared"
)

// Key est la clé Redis du panier, qui sert aussi de canal de notification.
func Key(id Identity) string {
	return "cart:" + id.String()
}

// RedisPersister garde le panier sous forme de tableau JSON avec un TTL et
// publie un événement à chaque écriture pour la synchro websocket.
type RedisPersister struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisPersister(rdb *redis.Client) *RedisPersister {
	return &RedisPersister{rdb: rdb, ttl: CartTTL}
}

func (p *RedisPersister) Load(ctx context.Context, id Identity) ([]byte, error) {
	data, err := p.rdb.Get(ctx, Key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	return data, err
}

func (p *RedisPersister) Save(ctx context.Context, id Identity, data []byte) error {
	key := Key(id)
	event := EventUpdated
	if string(data) == "[]" {
		event = EventCleared
	}

	pipe := p.rdb.TxPipeline()
	pipe.Set(ctx, key, data, p.ttl)
	pipe.Publish(ctx, key, event)
	_, err := pipe.Exec(ctx)
	return err
}

func (p *RedisPersister) Delete(ctx context.Context, id Identity) error {
	key := Key(id)
	pipe := p.rdb.TxPipeline()
	pipe.Del(ctx, key)
	pipe.Publish(ctx, key, EventCleared)
	_, err := pipe.Exec(ctx)
	return err
}

// Subscribe s'abonne aux événements du panier de id.
func (p *RedisPersister) Subscribe(ctx context.Context, id Identity) *redis.PubSub {
	return p.rdb.Subscribe(ctx, Key(id))
}

// MemoryPersister garde les paniers en mémoire du processus.
type MemoryPersister struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func NewMemoryPersister() *MemoryPersister {
	return &MemoryPersister{data: map[string][]byte{}}
}

func (p *MemoryPersister) Load(_ context.Context, id Identity) ([]byte, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	data, ok := p.data[Key(id)]
	if !ok {
		return nil, nil
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

func (p *MemoryPersister) Save(_ context.Context, id Identity, data []byte) error {
	buf := make([]byte, len(data))
	copy(buf, data)
	p.mu.Lock()
	p.data[Key(id)] = buf
	p.mu.Unlock()
	return nil
}

func (p *MemoryPersister) Delete(_ context.Context, id Identity) error {
	p.mu.Lock()
	delete(p.data, Key(id))
	p.mu.Unlock()
	return nil
}
