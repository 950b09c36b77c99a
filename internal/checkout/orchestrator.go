// Package checkout transforme un panier en commande : validation du
// formulaire, en-tête puis lignes, compensation si les lignes échouent.
package checkout

import (
	"context"
	"log"
	"sync"
	"time"

	"perfumeria_back_end/internal/cart"
	"perfumeria_back_end/internal/models"
	"perfumeria_back_end/internal/money"
	"perfumeria_back_end/internal/orders"
)

type State string

const (
	StateEditing    State = "editing"
	StateValidating State = "validating"
	StateSubmitting State = "submitting"
	StateSucceeded  State = "succeeded"
	StateFailed     State = "failed"
)

// Attempt suit les états d'une tentative de checkout.
type Attempt struct {
	mu    sync.Mutex
	trace []State
}

func NewAttempt() *Attempt {
	return &Attempt{trace: []State{StateEditing}}
}

func (a *Attempt) State() State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.trace[len(a.trace)-1]
}

// Trace renvoie tous les états traversés, dans l'ordre.
func (a *Attempt) Trace() []State {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]State, len(a.trace))
	copy(out, a.trace)
	return out
}

func (a *Attempt) to(s State) {
	a.mu.Lock()
	a.trace = append(a.trace, s)
	a.mu.Unlock()
}

// OrderStore est le sous-ensemble du stockage utilisé par le checkout.
// CreateOrder renseigne order.ID.
type OrderStore interface {
	CreateOrder(ctx context.Context, order *models.Order) error
	InsertOrderItems(ctx context.Context, orderID string, items []models.OrderItem) error
	DeleteOrder(ctx context.Context, orderID string) error
	UpdateOrderStatus(ctx context.Context, orderID, status string) error
}

type Notifier interface {
	OrderPlaced(ctx context.Context, order models.Order, to string) error
}

type Receipt struct {
	OrderID       string             `json:"order_id"`
	TotalCents    int64              `json:"total_cents"`
	TotalDisplay  string             `json:"total_display"`
	PaymentMethod string             `json:"payment_method"`
	Items         []models.OrderItem `json:"items"`
}

type Orchestrator struct {
	orders   OrderStore
	carts    *cart.Sessions
	locker   Locker
	notifier Notifier
	now      func() time.Time
}

// New construit l'orchestrateur. notifier peut être nil.
func New(orders OrderStore, carts *cart.Sessions, locker Locker, notifier Notifier) *Orchestrator {
	return &Orchestrator{orders: orders, carts: carts, locker: locker, notifier: notifier, now: time.Now}
}

func (o *Orchestrator) Submit(ctx context.Context, id cart.Identity, form Form) (*Receipt, error) {
	return o.Run(ctx, NewAttempt(), id, form)
}

// Run exécute une tentative. Aucun appel distant n'est fait si le formulaire
// est invalide, et le panier n'est vidé qu'après l'écriture des lignes.
func (o *Orchestrator) Run(ctx context.Context, a *Attempt, id cart.Identity, form Form) (*Receipt, error) {
	a.to(StateValidating)
	form = form.Normalize()
	if verr := Validate(form); verr != nil {
		a.to(StateEditing)
		return nil, verr
	}

	if !id.Authenticated() {
		a.to(StateFailed)
		return nil, ErrUnauthenticated
	}

	release, err := o.locker.Acquire(ctx, id.ID)
	if err != nil {
		a.to(StateFailed)
		return nil, err
	}
	defer release()

	store := o.carts.Get(ctx, id)
	snap := store.Snapshot()
	if len(snap.Items) == 0 {
		a.to(StateFailed)
		return nil, ErrEmptyCart
	}

	a.to(StateSubmitting)
	now := o.now().UTC()
	order := &models.Order{
		UserID:        id.ID,
		TotalCents:    snap.Subtotal,
		PaymentMethod: form.PaymentMethod,
		Status:        string(orders.StatusPending),
		FullName:      form.FullName(),
		Address:       form.Address,
		City:          form.City,
		PostalCode:    form.PostalCode,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := o.orders.CreateOrder(ctx, order); err != nil {
		a.to(StateFailed)
		log.Printf("❌ Création commande pour %s: %v", id, err)
		return nil, &RemoteWriteError{Op: "création de la commande", Err: err}
	}

	items := orderItems(order.ID, snap.Items)
	if err := o.orders.InsertOrderItems(ctx, order.ID, items); err != nil {
		a.to(StateFailed)
		comp := o.compensate(ctx, order.ID)
		log.Printf("❌ Lignes de la commande %s refusées (compensation: %s): %v", order.ID, comp, err)
		return nil, &PartialCheckoutError{OrderID: order.ID, Compensation: comp, Err: err}
	}

	store.Clear(ctx)
	a.to(StateSucceeded)
	order.Items = items
	log.Printf("✅ Commande %s créée (%d lignes, %s)", order.ID, len(items), money.Format(order.TotalCents))

	if o.notifier != nil && form.Email != "" {
		placed := *order
		go func() {
			nctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if err := o.notifier.OrderPlaced(nctx, placed, form.Email); err != nil {
				log.Printf("⚠️ 📧 Confirmation commande %s non envoyée: %v", placed.ID, err)
			}
		}()
	}

	return &Receipt{
		OrderID:       order.ID,
		TotalCents:    order.TotalCents,
		TotalDisplay:  money.Format(order.TotalCents),
		PaymentMethod: order.PaymentMethod,
		Items:         items,
	}, nil
}

// compensate supprime l'en-tête orphelin, ou à défaut le passe en annulé.
func (o *Orchestrator) compensate(ctx context.Context, orderID string) Compensation {
	cctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()

	err := o.orders.DeleteOrder(cctx, orderID)
	if err == nil {
		return CompensationDeleted
	}
	log.Printf("⚠️ Suppression commande orpheline %s: %v", orderID, err)

	err = o.orders.UpdateOrderStatus(cctx, orderID, string(orders.StatusCancelled))
	if err == nil {
		return CompensationCancelled
	}
	log.Printf("❌ Annulation commande orpheline %s: %v", orderID, err)
	return CompensationNone
}

func orderItems(orderID string, lines []cart.Line) []models.OrderItem {
	items := make([]models.OrderItem, 0, len(lines))
	for i, l := range lines {
		var image *string
		if l.ImageURL != "" {
			img := l.ImageURL
			image = &img
		}
		items = append(items, models.OrderItem{
			OrderID:    orderID,
			Position:   i,
			ProductID:  l.ProductID,
			Name:       l.Name,
			PriceCents: l.UnitPriceCents,
			Quantity:   l.Quantity,
			ImageURL:   image,
			Category:   l.Category,
		})
	}
	return items
}
