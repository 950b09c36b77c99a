package orders

import (
	"errors"
	"strings"
)

type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusPaid       Status = "paid"
	StatusShipped    Status = "shipped"
	StatusCancelled  Status = "cancelled"
)

// Statuses dans l'ordre d'affichage.
var Statuses = []Status{StatusPending, StatusProcessing, StatusPaid, StatusShipped, StatusCancelled}

var labels = map[Status]string{
	StatusPending:    "Pendiente",
	StatusProcessing: "En proceso",
	StatusPaid:       "Pagado",
	StatusShipped:    "Enviado",
	StatusCancelled:  "Cancelado",
}

var (
	ErrUnknownStatus     = errors.New("statut inconnu")
	ErrInvalidTransition = errors.New("transition de statut interdite")
)

// Parse accepte un statut connu, sans tenir compte de la casse.
func Parse(s string) (Status, error) {
	st := Status(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := labels[st]; !ok {
		return "", ErrUnknownStatus
	}
	return st, nil
}

func (s Status) Valid() bool {
	_, ok := labels[s]
	return ok
}

// Label renvoie le libellé affiché; un statut inconnu est rendu tel quel.
func Label(s Status) string {
	if l, ok := labels[s]; ok {
		return l
	}
	return string(s)
}

// Terminal : une commande expédiée ou annulée ne change plus de statut.
func (s Status) Terminal() bool {
	return s == StatusShipped || s == StatusCancelled
}

// CanTransition autorise tout passage vers un statut connu, sauf depuis un
// statut terminal. Un statut d'origine inconnu (ancienne donnée) peut être
// corrigé.
func CanTransition(from, to Status) bool {
	if !to.Valid() {
		return false
	}
	if from == to {
		return true
	}
	return !from.Terminal()
}
