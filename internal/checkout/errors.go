package checkout

import (
	"errors"
	"fmt"
)

var (
	ErrUnauthenticated = errors.New("connexion requise pour finaliser la commande")
	ErrEmptyCart       = errors.New("le panier est vide")
	ErrSubmitInFlight  = errors.New("une commande est déjà en cours de validation")
)

// RemoteWriteError : le service de données a refusé une écriture. Rien n'a
// été créé, le panier est intact.
type RemoteWriteError struct {
	Op  string
	Err error
}

func (e *RemoteWriteError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *RemoteWriteError) Unwrap() error { return e.Err }

// Compensation décrit ce qui a été fait de l'en-tête de commande orphelin.
type Compensation string

const (
	CompensationDeleted   Compensation = "deleted"
	CompensationCancelled Compensation = "cancelled"
	CompensationNone      Compensation = "none"
)

// PartialCheckoutError : l'en-tête de commande a été créé mais pas les
// lignes. Compensation indique si l'en-tête a été supprimé, annulé, ou
// laissé tel quel (les deux compensations ont échoué).
type PartialCheckoutError struct {
	OrderID      string
	Compensation Compensation
	Err          error
}

func (e *PartialCheckoutError) Error() string {
	return fmt.Sprintf("commande %s incomplète (compensation: %s): %v", e.OrderID, e.Compensation, e.Err)
}

func (e *PartialCheckoutError) Unwrap() error { return e.Err }

func (e *PartialCheckoutError) Compensated() bool {
	return e.Compensation != CompensationNone
}
