package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gocql/gocql"

	"perfumeria_back_end/internal/models"
)

const productColumns = `product_id, name, description, price_cents, category, image_url, image_path, created_at, updated_at`

const maxSequenceRetries = 10

// NextID attribue le prochain identifiant de la séquence name (LWT).
func (s *Scylla) NextID(ctx context.Context, name string) (int64, error) {
	for i := 0; i < maxSequenceRetries; i++ {
		var current int64
		err := s.session.Query(`SELECT value FROM sequences WHERE name = ?`, name).
			WithContext(ctx).Consistency(gocql.Consistency(gocql.Serial)).Scan(&current)
		switch {
		case errors.Is(err, gocql.ErrNotFound):
			applied, err := s.session.Query(`INSERT INTO sequences (name, value) VALUES (?, 1) IF NOT EXISTS`, name).
				WithContext(ctx).SerialConsistency(gocql.Serial).MapScanCAS(map[string]any{})
			if err != nil {
				return 0, err
			}
			if applied {
				return 1, nil
			}
		case err != nil:
			return 0, err
		default:
			applied, err := s.session.Query(`UPDATE sequences SET value = ? WHERE name = ? IF value = ?`, current+1, name, current).
				WithContext(ctx).SerialConsistency(gocql.Serial).MapScanCAS(map[string]any{})
			if err != nil {
				return 0, err
			}
			if applied {
				return current + 1, nil
			}
		}
	}
	return 0, fmt.Errorf("séquence %s: trop de conflits", name)
}

func scanProduct(scan func(dest ...any) bool) (models.Product, bool) {
	var p models.Product
	ok := scan(&p.ID, &p.Name, &p.Description, &p.PriceCents, &p.Category, &p.ImageURL, &p.ImagePath, &p.CreatedAt, &p.UpdatedAt)
	return p, ok
}

func (s *Scylla) GetProduct(ctx context.Context, id int64) (*models.Product, error) {
	var p models.Product
	err := s.session.Query(`SELECT `+productColumns+` FROM products WHERE product_id = ?`, id).
		WithContext(ctx).
		Scan(&p.ID, &p.Name, &p.Description, &p.PriceCents, &p.Category, &p.ImageURL, &p.ImagePath, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

// ListProducts lit tout le catalogue; le filtrage et le tri se font côté
// service.
func (s *Scylla) ListProducts(ctx context.Context) ([]models.Product, error) {
	iter := s.session.Query(`SELECT ` + productColumns + ` FROM products`).WithContext(ctx).Iter()
	out := []models.Product{}
	for {
		p, ok := scanProduct(iter.Scan)
		if !ok {
			break
		}
		out = append(out, p)
	}
	if err := iter.Close(); err != nil {
		return nil, err
	}
	return out, nil
}

// InsertProduct attribue un id et crée la ligne.
func (s *Scylla) InsertProduct(ctx context.Context, p *models.Product) error {
	id, err := s.NextID(ctx, "products")
	if err != nil {
		return fmt.Errorf("attribution id produit: %w", err)
	}
	p.ID = id
	now := time.Now().UTC()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now
	applied, err := s.session.Query(`INSERT INTO products (`+productColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?) IF NOT EXISTS`,
		p.ID, p.Name, p.Description, p.PriceCents, p.Category, p.ImageURL, p.ImagePath, p.CreatedAt, p.UpdatedAt).
		WithContext(ctx).MapScanCAS(map[string]any{})
	if err != nil {
		return err
	}
	if !applied {
		return fmt.Errorf("produit %d déjà présent", p.ID)
	}
	return nil
}

// UpdateProduct réécrit les champs d'un produit existant.
func (s *Scylla) UpdateProduct(ctx context.Context, p *models.Product) error {
	p.UpdatedAt = time.Now().UTC()
	applied, err := s.session.Query(`UPDATE products SET name = ?, description = ?, price_cents = ?, category = ?,
		image_url = ?, image_path = ?, updated_at = ? WHERE product_id = ? IF EXISTS`,
		p.Name, p.Description, p.PriceCents, p.Category, p.ImageURL, p.ImagePath, p.UpdatedAt, p.ID).
		WithContext(ctx).MapScanCAS(map[string]any{})
	if err != nil {
		return err
	}
	if !applied {
		return ErrNotFound
	}
	return nil
}

func (s *Scylla) DeleteProduct(ctx context.Context, id int64) error {
	return s.session.Query(`DELETE FROM products WHERE product_id = ?`, id).WithContext(ctx).Exec()
}
