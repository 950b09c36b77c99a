package models

// CartLine est une entrée produit+variante du panier.
type CartLine struct {
	Key            string `json:"key"`
	ProductID      int64  `json:"product_id"`
	Variant        string `json:"variant,omitempty"`
	Name           string `json:"name"`
	ImageURL       string `json:"image_url,omitempty"`
	Category       string `json:"category,omitempty"`
	UnitPriceCents int64  `json:"unit_price_cents"`
	PriceDisplay   string `json:"price_display,omitempty"`
	Quantity       int    `json:"quantity"`
}

func (l CartLine) LineTotal() int64 {
	return l.UnitPriceCents * int64(l.Quantity)
}

type Cart struct {
	Owner    string     `json:"owner"`
	Items    []CartLine `json:"items"`
	Count    int        `json:"count"`
	Subtotal int64      `json:"subtotal_cents"`
	Display  string     `json:"subtotal_display"`
}
