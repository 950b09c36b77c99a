// Package cart tient le panier d'une identité (utilisateur ou invité) et le
// persiste en entier à chaque mutation.
package cart

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"strconv"
	"strings"
	"sync"

	"perfumeria_back_end/internal/models"
	"perfumeria_back_end/internal/money"
)

type Line = models.CartLine

var (
	ErrInvalidQuantity = errors.New("quantité invalide (1 à 10)")
	ErrInvalidItem     = errors.New("produit invalide")
)

// Item décrit un produit ajouté au panier. Price accepte tout ce que
// money.ToCents sait lire.
type Item struct {
	ProductID    int64  `json:"product_id"`
	Variant      string `json:"variant,omitempty"`
	Name         string `json:"name"`
	ImageURL     string `json:"image_url,omitempty"`
	Category     string `json:"category,omitempty"`
	Price        any    `json:"price"`
	PriceDisplay string `json:"price_display,omitempty"`
}

// Identity est le propriétaire d'un panier.
type Identity struct {
	ID    string
	Guest bool
}

func (id Identity) Authenticated() bool {
	return !id.Guest && id.ID != ""
}

func (id Identity) String() string {
	if id.Guest {
		return "guest:" + id.ID
	}
	return "user:" + id.ID
}

// Persister stocke la représentation JSON complète d'un panier.
// Load renvoie (nil, nil) quand rien n'est stocké.
type Persister interface {
	Load(ctx context.Context, id Identity) ([]byte, error)
	Save(ctx context.Context, id Identity, data []byte) error
	Delete(ctx context.Context, id Identity) error
}

// LineKey identifie une ligne : "<id>" ou "<id>:<variante>".
func LineKey(productID int64, variant string) string {
	key := strconv.FormatInt(productID, 10)
	variant = strings.TrimSpace(variant)
	if variant == "" || variant == "default" {
		return key
	}
	return key + ":" + variant
}

type Store struct {
	mu        sync.Mutex
	identity  Identity
	lines     []Line
	persister Persister
}

// Open charge le panier persisté de id. Une erreur de lecture donne un
// panier vide.
func Open(ctx context.Context, p Persister, id Identity) *Store {
	s := &Store{identity: id, persister: p, lines: []Line{}}
	s.Reload(ctx)
	return s
}

func (s *Store) Identity() Identity {
	return s.identity
}

// Add ajoute qty unités. Une quantité explicite hors de [1,10] est refusée,
// le cumul sur une ligne existante est plafonné à 10 sans erreur.
func (s *Store) Add(ctx context.Context, item Item, qty int) error {
	if !money.ValidQuantity(qty) {
		return ErrInvalidQuantity
	}
	cents := money.ToCents(item.Price)
	if item.ProductID <= 0 || cents <= 0 {
		return ErrInvalidItem
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := LineKey(item.ProductID, item.Variant)
	if i := s.indexOf(key); i >= 0 {
		s.lines[i].Quantity = money.ClampInt(s.lines[i].Quantity + qty)
	} else {
		display := item.PriceDisplay
		if display == "" {
			display = money.Format(cents)
		}
		s.lines = append(s.lines, Line{
			Key:            key,
			ProductID:      item.ProductID,
			Variant:        strings.TrimSpace(item.Variant),
			Name:           item.Name,
			ImageURL:       item.ImageURL,
			Category:       item.Category,
			UnitPriceCents: cents,
			PriceDisplay:   display,
			Quantity:       qty,
		})
	}
	s.persistLocked(ctx)
	return nil
}

// SetQuantity fixe la quantité d'une ligne, ramenée dans [1,10]. Renvoie
// false si la ligne n'existe pas (rien n'est modifié).
func (s *Store) SetQuantity(ctx context.Context, key string, qty int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(key)
	if i < 0 {
		return false
	}
	s.lines[i].Quantity = money.ClampInt(qty)
	s.persistLocked(ctx)
	return true
}

func (s *Store) Remove(ctx context.Context, key string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i := s.indexOf(key); i >= 0 {
		s.lines = append(s.lines[:i], s.lines[i+1:]...)
	}
	s.persistLocked(ctx)
}

func (s *Store) Clear(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lines = []Line{}
	s.persistLocked(ctx)
}

// Items renvoie une copie des lignes dans l'ordre d'ajout.
func (s *Store) Items() []Line {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Line, len(s.lines))
	copy(out, s.lines)
	return out
}

func (s *Store) Line(key string) (Line, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.indexOf(key); i >= 0 {
		return s.lines[i], true
	}
	return Line{}, false
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.lines)
}

// Count est la somme des quantités.
func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return count(s.lines)
}

// Subtotal est recalculé à chaque appel à partir des lignes courantes.
func (s *Store) Subtotal() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return subtotal(s.lines)
}

// Snapshot fige le panier (copie des lignes + agrégats).
func (s *Store) Snapshot() models.Cart {
	s.mu.Lock()
	defer s.mu.Unlock()
	items := make([]Line, len(s.lines))
	copy(items, s.lines)
	total := subtotal(items)
	return models.Cart{
		Owner:    s.identity.String(),
		Items:    items,
		Count:    count(items),
		Subtotal: total,
		Display:  money.Format(total),
	}
}

// Reload relit la copie persistée. En cas d'erreur de lecture l'état en
// mémoire est conservé.
func (s *Store) Reload(ctx context.Context) {
	data, err := s.persister.Load(ctx, s.identity)
	if err != nil {
		log.Printf("⚠️ 🛒 Lecture panier %s impossible, état mémoire conservé: %v", s.identity, err)
		return
	}

	lines := Decode(data)

	s.mu.Lock()
	s.lines = lines
	s.mu.Unlock()
}

func (s *Store) indexOf(key string) int {
	for i := range s.lines {
		if s.lines[i].Key == key {
			return i
		}
	}
	return -1
}

// persistLocked réécrit tout le panier. Un échec est seulement journalisé.
func (s *Store) persistLocked(ctx context.Context) {
	data, err := Encode(s.lines)
	if err != nil {
		log.Printf("❌ 🛒 Encodage panier %s: %v", s.identity, err)
		return
	}
	if err := s.persister.Save(ctx, s.identity, data); err != nil {
		log.Printf("⚠️ 🛒 Sauvegarde panier %s échouée, état mémoire conservé: %v", s.identity, err)
	}
}

func count(lines []Line) int {
	n := 0
	for _, l := range lines {
		n += l.Quantity
	}
	return n
}

func subtotal(lines []Line) int64 {
	var total int64
	for _, l := range lines {
		total += l.LineTotal()
	}
	return total
}

// Encode produit toujours un tableau JSON, jamais null.
func Encode(lines []Line) ([]byte, error) {
	if lines == nil {
		lines = []Line{}
	}
	return json.Marshal(lines)
}
