package models

import "time"

type Order struct {
	ID            string      `json:"id" db:"order_id"`
	UserID        string      `json:"user_id" db:"user_id"`
	TotalCents    int64       `json:"total_cents" db:"total_cents"`
	PaymentMethod string      `json:"payment_method" db:"payment_method"`
	Status        string      `json:"status" db:"status"`
	FullName      string      `json:"full_name" db:"full_name"`
	Address       string      `json:"address" db:"address"`
	City          string      `json:"city" db:"city"`
	PostalCode    string      `json:"postal_code" db:"postal_code"`
	CreatedAt     time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at" db:"updated_at"`
	Items         []OrderItem `json:"items,omitempty"`
}

// OrderItem est une copie figée de la ligne de panier au moment de l'achat.
type OrderItem struct {
	OrderID    string  `json:"order_id" db:"order_id"`
	Position   int     `json:"position" db:"position"`
	ProductID  int64   `json:"product_id" db:"product_id"`
	Name       string  `json:"name" db:"name"`
	PriceCents int64   `json:"price_cents" db:"price_cents"`
	Quantity   int     `json:"qty" db:"qty"`
	ImageURL   *string `json:"image_url" db:"image_url"`
	Category   string  `json:"category" db:"category"`
}

func (i OrderItem) LineTotal() int64 {
	return i.PriceCents * int64(i.Quantity)
}
