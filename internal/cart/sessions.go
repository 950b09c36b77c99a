package cart

import (
	"context"
	"log"
	"sync"
	"time"
)

// Sessions garde un Store par identité. Chaque accès relit la copie
// persistée (dernier écrivain gagnant entre onglets et instances); si la
// lecture échoue, l'état mémoire reste la référence.
type Sessions struct {
	persister Persister
	mu        sync.Mutex
	stores    map[Identity]*session
	now       func() time.Time
}

type session struct {
	store    *Store
	lastUsed time.Time
}

func NewSessions(p Persister) *Sessions {
	return &Sessions{persister: p, stores: map[Identity]*session{}, now: time.Now}
}

func (s *Sessions) Persister() Persister {
	return s.persister
}

// Get renvoie le panier de id, à jour de la copie persistée.
func (s *Sessions) Get(ctx context.Context, id Identity) *Store {
	s.mu.Lock()
	sess, ok := s.stores[id]
	if ok {
		sess.lastUsed = s.now()
	}
	s.mu.Unlock()

	if ok {
		sess.store.Reload(ctx)
		return sess.store
	}

	store := Open(ctx, s.persister, id)

	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.stores[id]; ok {
		existing.lastUsed = s.now()
		return existing.store
	}
	s.stores[id] = &session{store: store, lastUsed: s.now()}
	return store
}

// Forget oublie le panier en mémoire de id et supprime sa copie persistée.
func (s *Sessions) Forget(ctx context.Context, id Identity) error {
	s.mu.Lock()
	delete(s.stores, id)
	s.mu.Unlock()
	return s.persister.Delete(ctx, id)
}

// Sweep libère les paniers inactifs depuis plus de maxIdle.
func (s *Sessions) Sweep(maxIdle time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	cutoff := s.now().Add(-maxIdle)
	n := 0
	for id, sess := range s.stores {
		if sess.lastUsed.Before(cutoff) {
			delete(s.stores, id)
			n++
		}
	}
	if n > 0 {
		log.Printf("🧹 %d panier(s) inactif(s) libéré(s) de la mémoire", n)
	}
	return n
}

// RunSweeper lance Sweep périodiquement jusqu'à l'annulation de ctx.
func (s *Sessions) RunSweeper(ctx context.Context, every, maxIdle time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep(maxIdle)
		}
	}
}
