package orders

import (
	"context"
	"fmt"
	"log"
	"time"

	"perfumeria_back_end/internal/models"
	"perfumeria_back_end/internal/utils"
)

type StatusStore interface {
	UpdateOrderStatus(ctx context.Context, orderID, status string) error
}

// ContactLookup retrouve l'adresse du client pour l'e-mail de suivi.
type ContactLookup interface {
	GetProfile(ctx context.Context, userID string) (*models.Profile, error)
}

type StatusNotifier interface {
	StatusChanged(ctx context.Context, order models.Order, to, label string) error
}

// Workflow applique les changements de statut décidés en back-office.
type Workflow struct {
	store    StatusStore
	contacts ContactLookup
	notifier StatusNotifier
	audit    *utils.Auditor
	now      func() time.Time
}

// NewWorkflow construit le workflow. contacts, notifier et audit peuvent
// être nil.
func NewWorkflow(store StatusStore, contacts ContactLookup, notifier StatusNotifier, audit *utils.Auditor) *Workflow {
	return &Workflow{store: store, contacts: contacts, notifier: notifier, audit: audit, now: time.Now}
}

// SetStatus modifie order en place. La valeur affichée change avant l'appel
// distant et revient à l'ancienne si celui-ci échoue.
func (w *Workflow) SetStatus(ctx context.Context, order *models.Order, to Status) error {
	if !to.Valid() {
		return ErrUnknownStatus
	}
	from := Status(order.Status)
	if from == to {
		return nil
	}
	if !CanTransition(from, to) {
		return fmt.Errorf("%w: %s → %s", ErrInvalidTransition, from, to)
	}

	prevUpdated := order.UpdatedAt
	order.Status = string(to)
	order.UpdatedAt = w.now().UTC()

	if err := w.store.UpdateOrderStatus(ctx, order.ID, string(to)); err != nil {
		order.Status = string(from)
		order.UpdatedAt = prevUpdated
		w.audit.LogFailedAction(ctx, utils.ActionOrderStatus, utils.ResourceOrder, order.ID, err.Error())
		log.Printf("❌ Statut commande %s non mis à jour (%s → %s): %v", order.ID, from, to, err)
		return fmt.Errorf("mise à jour du statut: %w", err)
	}

	w.audit.LogAction(ctx, utils.ActionOrderStatus, utils.ResourceOrder, order.ID, string(from), string(to))
	log.Printf("✅ Commande %s : %s → %s", order.ID, from, to)
	w.notify(*order)
	return nil
}

func (w *Workflow) notify(order models.Order) {
	if w.notifier == nil || w.contacts == nil || order.UserID == "" {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		profile, err := w.contacts.GetProfile(ctx, order.UserID)
		if err != nil || profile.Email == "" {
			log.Printf("⚠️ 📧 Pas d'adresse pour le client de la commande %s", order.ID)
			return
		}
		if err := w.notifier.StatusChanged(ctx, order, profile.Email, Label(Status(order.Status))); err != nil {
			log.Printf("⚠️ 📧 Email de statut non envoyé pour %s: %v", order.ID, err)
		}
	}()
}
