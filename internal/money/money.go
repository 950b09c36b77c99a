// Package money normalise les prix et les quantités qui arrivent sous des
// formes hétérogènes (texte affiché, dollars flottants, centimes entiers).
package money

import (
	"encoding/json"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	MinQuantity = 1
	MaxQuantity = 10

	// Au-delà de ce seuil un prix numérique sans champ centimes est
	// considéré comme déjà exprimé en centimes.
	centsHeuristicThreshold = 1000
)

var hundred = decimal.NewFromInt(100)

// ToCents convertit une valeur de prix en centimes entiers.
//
// Les chaînes ("59.99", "59,99", "$ 59.99") et les flottants sont des montants
// en unités et sont multipliés par 100 puis arrondis. Les entiers sont déjà en
// centimes. Toute valeur illisible, négative ou non finie donne 0 : l'appelant
// doit traiter 0 comme un prix invalide.
func ToCents(v any) int64 {
	switch x := v.(type) {
	case nil:
		return 0
	case string:
		return parseCents(x)
	case json.Number:
		if n, err := x.Int64(); err == nil {
			return nonNegative(n)
		}
		return parseCents(x.String())
	case float64:
		return floatCents(x)
	case float32:
		return floatCents(float64(x))
	case int:
		return nonNegative(int64(x))
	case int32:
		return nonNegative(int64(x))
	case int64:
		return nonNegative(x)
	case uint:
		return clampUint(uint64(x))
	case uint32:
		return int64(x)
	case uint64:
		return clampUint(x)
	case decimal.Decimal:
		return decimalCents(x)
	default:
		return 0
	}
}

// UnitCents choisit le prix unitaire d'une ligne relue depuis le stockage :
// le champ centimes explicite s'il existe, sinon le prix numérique (> 1000
// signifie déjà en centimes), sinon la chaîne affichée.
func UnitCents(priceCents *int64, price any) int64 {
	if priceCents != nil && *priceCents >= 0 {
		return *priceCents
	}
	switch x := price.(type) {
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) || x < 0 {
			return 0
		}
		if x > centsHeuristicThreshold {
			return int64(math.Round(x))
		}
		return floatCents(x)
	case json.Number:
		f, err := x.Float64()
		if err != nil {
			return 0
		}
		return UnitCents(nil, f)
	case int64:
		return UnitCents(nil, float64(x))
	case int:
		return UnitCents(nil, float64(x))
	default:
		return ToCents(price)
	}
}

// ClampQuantity ramène n dans [MinQuantity, MaxQuantity]; une valeur non
// finie vaut MinQuantity.
func ClampQuantity(n float64) int {
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return MinQuantity
	}
	n = math.Floor(n)
	if n < MinQuantity {
		return MinQuantity
	}
	if n > MaxQuantity {
		return MaxQuantity
	}
	return int(n)
}

func ClampInt(n int) int {
	if n < MinQuantity {
		return MinQuantity
	}
	if n > MaxQuantity {
		return MaxQuantity
	}
	return n
}

// ValidQuantity indique si n est une quantité explicite acceptable.
func ValidQuantity(n int) bool {
	return n >= MinQuantity && n <= MaxQuantity
}

// Format affiche des centimes sous la forme "$59.99".
func Format(cents int64) string {
	d := decimal.New(cents, -2)
	if cents < 0 {
		return "-$" + d.Neg().StringFixed(2)
	}
	return "$" + d.StringFixed(2)
}

func parseCents(s string) int64 {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "$")
	s = strings.ReplaceAll(s, " ", "")
	if s == "" {
		return 0
	}
	if strings.Contains(s, ",") {
		if strings.Contains(s, ".") {
			// "1,234.56" : la virgule sépare les milliers
			s = strings.ReplaceAll(s, ",", "")
		} else {
			s = strings.Replace(s, ",", ".", 1)
		}
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0
	}
	return decimalCents(d)
}

func floatCents(f float64) int64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return decimalCents(decimal.NewFromFloat(f))
}

func decimalCents(d decimal.Decimal) int64 {
	if d.IsNegative() {
		return 0
	}
	return d.Mul(hundred).Round(0).IntPart()
}

func nonNegative(n int64) int64 {
	if n < 0 {
		return 0
	}
	return n
}

func clampUint(n uint64) int64 {
	if n > math.MaxInt64 {
		return 0
	}
	return int64(n)
}
