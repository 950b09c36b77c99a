// Package repository lit et écrit les tables ScyllaDB de la boutique.
package repository

import (
	"errors"
	"fmt"

	"github.com/gocql/gocql"
)

var ErrNotFound = errors.New("enregistrement introuvable")

// Scylla regroupe les accès aux tables. Chaque écriture porte sur une seule
// partition, sauf les batchs documentés.
type Scylla struct {
	session *gocql.Session
}

func New(session *gocql.Session) *Scylla {
	return &Scylla{session: session}
}

func notFound(err error) error {
	if errors.Is(err, gocql.ErrNotFound) {
		return ErrNotFound
	}
	return err
}

func parseOrderID(id string) (gocql.UUID, error) {
	u, err := gocql.ParseUUID(id)
	if err != nil {
		return gocql.UUID{}, fmt.Errorf("id de commande invalide %q: %w", id, ErrNotFound)
	}
	return u, nil
}
