package models

import "time"

type Product struct {
	ID          int64     `json:"id" db:"product_id"`
	Name        string    `json:"name" db:"name"`
	Description string    `json:"description" db:"description"`
	PriceCents  int64     `json:"price_cents" db:"price_cents"`
	Category    string    `json:"category" db:"category"`
	ImageURL    *string   `json:"image_url" db:"image_url"`
	ImagePath   *string   `json:"-" db:"image_path"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// Price retourne le prix en unités (pour l'affichage et l'indexation).
func (p Product) Price() float64 {
	return float64(p.PriceCents) / 100
}
