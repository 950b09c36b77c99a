package orders

import (
	"context"
	"errors"
	"log"
	"sort"

	"perfumeria_back_end/internal/models"
	"perfumeria_back_end/internal/repository"
)

type HistoryStore interface {
	GetOrder(ctx context.Context, orderID string) (*models.Order, error)
	OrderItems(ctx context.Context, orderID string) ([]models.OrderItem, error)
	OrderIDsForUser(ctx context.Context, userID string) ([]string, error)
	ListOrders(ctx context.Context) ([]models.Order, error)
}

type History struct {
	store HistoryStore
}

func NewHistory(store HistoryStore) *History {
	return &History{store: store}
}

// ListForUser renvoie les commandes du client avec leurs lignes, plus
// récentes d'abord. Une commande listée mais illisible est ignorée.
func (h *History) ListForUser(ctx context.Context, userID string) ([]models.Order, error) {
	ids, err := h.store.OrderIDsForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]models.Order, 0, len(ids))
	for _, id := range ids {
		o, err := h.load(ctx, id)
		if errors.Is(err, repository.ErrNotFound) {
			log.Printf("⚠️ Commande %s référencée mais absente", id)
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, *o)
	}
	sortNewestFirst(out)
	return out, nil
}

// Get renvoie une commande du client. Celle d'un autre client est
// introuvable.
func (h *History) Get(ctx context.Context, userID, orderID string) (*models.Order, error) {
	o, err := h.load(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.UserID != userID {
		return nil, repository.ErrNotFound
	}
	return o, nil
}

// Order renvoie une commande avec ses lignes, sans contrôle de propriétaire
// (back-office).
func (h *History) Order(ctx context.Context, orderID string) (*models.Order, error) {
	return h.load(ctx, orderID)
}

// ListAll renvoie toutes les commandes sans leurs lignes, filtrées par
// statut si status n'est pas vide.
func (h *History) ListAll(ctx context.Context, status Status) ([]models.Order, error) {
	all, err := h.store.ListOrders(ctx)
	if err != nil {
		return nil, err
	}
	out := all[:0]
	for _, o := range all {
		if status == "" || Status(o.Status) == status {
			out = append(out, o)
		}
	}
	sortNewestFirst(out)
	return out, nil
}

type Stats struct {
	Total        int            `json:"total"`
	ByStatus     map[Status]int `json:"by_status"`
	RevenueCents int64          `json:"revenue_cents"`
}

// Stats compte les commandes par statut. Le chiffre d'affaires exclut les
// commandes annulées.
func (h *History) Stats(ctx context.Context) (Stats, error) {
	all, err := h.store.ListOrders(ctx)
	if err != nil {
		return Stats{}, err
	}
	return computeStats(all), nil
}

func computeStats(all []models.Order) Stats {
	st := Stats{Total: len(all), ByStatus: make(map[Status]int, len(Statuses))}
	for _, s := range Statuses {
		st.ByStatus[s] = 0
	}
	for _, o := range all {
		s := Status(o.Status)
		st.ByStatus[s]++
		if s != StatusCancelled {
			st.RevenueCents += o.TotalCents
		}
	}
	return st
}

func (h *History) load(ctx context.Context, orderID string) (*models.Order, error) {
	o, err := h.store.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	items, err := h.store.OrderItems(ctx, orderID)
	if err != nil {
		return nil, err
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Position < items[j].Position })
	o.Items = items
	return o, nil
}

func sortNewestFirst(list []models.Order) {
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].CreatedAt.After(list[j].CreatedAt)
	})
}
