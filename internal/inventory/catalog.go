package inventory

import (
	"context"
	"errors"
	"log"
	"sort"
	"strconv"
	"strings"

	"perfumeria_back_end/internal/models"
	"perfumeria_back_end/internal/search"
)

type Sort string

const (
	SortNew       Sort = "new"
	SortPriceAsc  Sort = "price-asc"
	SortPriceDesc Sort = "price-desc"
)

type Query struct {
	Q        string
	Category string
	Sort     Sort
	Limit    int
}

func (q Query) limit() int {
	switch {
	case q.Limit <= 0:
		return DefaultLimit
	case q.Limit > MaxLimit:
		return MaxLimit
	default:
		return q.Limit
	}
}

// ListProducts filtre et trie le catalogue. Avec une recherche texte, le
// tri par défaut garde l'ordre de pertinence.
func (s *Service) ListProducts(ctx context.Context, q Query) ([]models.Product, error) {
	var (
		list []models.Product
		err  error
	)
	if strings.TrimSpace(q.Q) != "" {
		list, err = s.Search(ctx, q.Q, MaxLimit)
	} else {
		list, err = s.catalog(ctx)
		if err == nil {
			list = append([]models.Product(nil), list...)
			sortProducts(list, SortNew)
		}
	}
	if err != nil {
		return nil, err
	}

	if q.Category != "" {
		filtered := list[:0]
		for _, p := range list {
			if strings.EqualFold(p.Category, q.Category) {
				filtered = append(filtered, p)
			}
		}
		list = filtered
	}
	if q.Sort != "" && (q.Sort != SortNew || q.Q == "") {
		sortProducts(list, q.Sort)
	}
	if n := q.limit(); len(list) > n {
		list = list[:n]
	}
	return list, nil
}

// Search interroge Elasticsearch et retombe sur un filtrage en mémoire si
// l'index est absent ou en erreur.
func (s *Service) Search(ctx context.Context, query string, limit int) ([]models.Product, error) {
	all, err := s.catalog(ctx)
	if err != nil {
		return nil, err
	}

	ids, err := s.index.Search(ctx, query, limit)
	if err == nil {
		byID := make(map[int64]models.Product, len(all))
		for _, p := range all {
			byID[p.ID] = p
		}
		out := make([]models.Product, 0, len(ids))
		for _, id := range ids {
			if p, ok := byID[id]; ok {
				out = append(out, p)
			}
		}
		return out, nil
	}
	if !errors.Is(err, search.ErrDisabled) {
		log.Printf("⚠️ Recherche Elasticsearch en échec, filtrage local: %v", err)
	}

	out := []models.Product{}
	for _, p := range all {
		if search.Match(p, query) {
			out = append(out, p)
		}
	}
	sortProducts(out, SortNew)
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Categories renvoie les catégories distinctes, triées. Deux graphies qui
// ne diffèrent que par la casse comptent pour une seule; la plus petite dans
// l'ordre lexical est gardée, quel que soit l'ordre du catalogue.
func (s *Service) Categories(ctx context.Context) ([]string, error) {
	all, err := s.catalog(ctx)
	if err != nil {
		return nil, err
	}
	return distinctCategories(all), nil
}

func distinctCategories(list []models.Product) []string {
	spelling := map[string]string{}
	for _, p := range list {
		if p.Category == "" {
			continue
		}
		key := strings.ToLower(p.Category)
		if cur, ok := spelling[key]; !ok || p.Category < cur {
			spelling[key] = p.Category
		}
	}
	out := make([]string, 0, len(spelling))
	for _, c := range spelling {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

func sortProducts(list []models.Product, by Sort) {
	switch by {
	case SortPriceAsc:
		sort.SliceStable(list, func(i, j int) bool { return list[i].PriceCents < list[j].PriceCents })
	case SortPriceDesc:
		sort.SliceStable(list, func(i, j int) bool { return list[i].PriceCents > list[j].PriceCents })
	default:
		sort.SliceStable(list, func(i, j int) bool {
			if list[i].CreatedAt.Equal(list[j].CreatedAt) {
				return list[i].ID > list[j].ID
			}
			return list[i].CreatedAt.After(list[j].CreatedAt)
		})
	}
}

func idString(id *int64) string {
	if id == nil {
		return ""
	}
	return strconv.FormatInt(*id, 10)
}
