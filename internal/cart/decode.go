package cart

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"perfumeria_back_end/internal/money"
)

// storedLine accepte les anciennes formes du panier (id, qty, image,
// priceCents) en plus des champs actuels. Aucun champ n'est cru sur parole.
type storedLine struct {
	ProductID      any `json:"product_id"`
	ID             any `json:"id"`
	Variant        any `json:"variant"`
	Name           any `json:"name"`
	ImageURL       any `json:"image_url"`
	Image          any `json:"image"`
	Category       any `json:"category"`
	UnitPriceCents any `json:"unit_price_cents"`
	PriceCents     any `json:"priceCents"`
	Price          any `json:"price"`
	PriceDisplay   any `json:"price_display"`
	Quantity       any `json:"quantity"`
	Qty            any `json:"qty"`
}

// Decode relit un panier persisté. Un JSON illisible donne un panier vide,
// les entrées sans produit ou sans prix sont ignorées, quantités et prix sont recalculés
// et les doublons fusionnés.
func Decode(data []byte) []Line {
	lines := []Line{}
	if len(bytes.TrimSpace(data)) == 0 {
		return lines
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return lines
	}

	index := map[string]int{}
	for _, entry := range raw {
		var sl storedLine
		dec := json.NewDecoder(bytes.NewReader(entry))
		dec.UseNumber()
		if err := dec.Decode(&sl); err != nil {
			continue
		}
		l, ok := sl.normalize()
		if !ok {
			continue
		}
		if i, dup := index[l.Key]; dup {
			lines[i].Quantity = money.ClampInt(lines[i].Quantity + l.Quantity)
			continue
		}
		index[l.Key] = len(lines)
		lines = append(lines, l)
	}
	return lines
}

func (sl storedLine) normalize() (Line, bool) {
	pid := toInt64(firstPresent(sl.ProductID, sl.ID))
	if pid <= 0 {
		return Line{}, false
	}

	var explicit *int64
	if c, ok := toCentsField(firstPresent(sl.UnitPriceCents, sl.PriceCents)); ok {
		explicit = &c
	}
	unit := money.UnitCents(explicit, sl.Price)
	if unit <= 0 {
		return Line{}, false
	}

	qty := money.MinQuantity
	if q, ok := toFloat(firstPresent(sl.Quantity, sl.Qty)); ok {
		qty = money.ClampQuantity(q)
	}

	variant := toString(sl.Variant)
	display := toString(sl.PriceDisplay)
	if display == "" {
		display = money.Format(unit)
	}
	image := toString(sl.ImageURL)
	if image == "" {
		image = toString(sl.Image)
	}

	return Line{
		Key:            LineKey(pid, variant),
		ProductID:      pid,
		Variant:        strings.TrimSpace(variant),
		Name:           toString(sl.Name),
		ImageURL:       image,
		Category:       toString(sl.Category),
		UnitPriceCents: unit,
		PriceDisplay:   display,
		Quantity:       qty,
	}, true
}

func firstPresent(vals ...any) any {
	for _, v := range vals {
		if v != nil {
			return v
		}
	}
	return nil
}

func toInt64(v any) int64 {
	f, ok := toFloat(v)
	if !ok || f != math.Trunc(f) || f > math.MaxInt64 {
		return 0
	}
	return int64(f)
}

func toFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case json.Number:
		f, err := x.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		return f, err == nil
	case float64:
		return x, true
	default:
		return 0, false
	}
}

// toCentsField lit un champ centimes explicite; une valeur négative ou non
// entière est ignorée.
func toCentsField(v any) (int64, bool) {
	f, ok := toFloat(v)
	if !ok || f < 0 || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return int64(math.Round(f)), true
}

func toString(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case json.Number:
		return x.String()
	default:
		return ""
	}
}
