package repository

import (
	"context"
	"time"

	"github.com/gocql/gocql"

	"perfumeria_back_end/internal/models"
)

const orderColumns = `order_id, user_id, total_cents, payment_method, status, full_name, address, city, postal_code, created_at, updated_at`

func scanOrder(scan func(dest ...any) bool) (models.Order, bool) {
	var (
		o  models.Order
		id gocql.UUID
	)
	ok := scan(&id, &o.UserID, &o.TotalCents, &o.PaymentMethod, &o.Status, &o.FullName,
		&o.Address, &o.City, &o.PostalCode, &o.CreatedAt, &o.UpdatedAt)
	o.ID = id.String()
	return o, ok
}

// CreateOrder crée l'en-tête (orders + index par utilisateur, batch logué)
// et renseigne order.ID.
func (s *Scylla) CreateOrder(ctx context.Context, o *models.Order) error {
	id := gocql.TimeUUID()
	if o.CreatedAt.IsZero() {
		o.CreatedAt = id.Time().UTC()
	}
	if o.UpdatedAt.IsZero() {
		o.UpdatedAt = o.CreatedAt
	}

	b := s.session.NewBatch(gocql.LoggedBatch).WithContext(ctx)
	b.Query(`INSERT INTO orders (`+orderColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, o.UserID, o.TotalCents, o.PaymentMethod, o.Status, o.FullName,
		o.Address, o.City, o.PostalCode, o.CreatedAt, o.UpdatedAt)
	b.Query(`INSERT INTO orders_by_user (user_id, order_id) VALUES (?, ?)`, o.UserID, id)
	if err := s.session.ExecuteBatch(b); err != nil {
		return err
	}
	o.ID = id.String()
	return nil
}

// InsertOrderItems écrit toutes les lignes d'une commande. Elles partagent
// la même partition, le batch est donc atomique.
func (s *Scylla) InsertOrderItems(ctx context.Context, orderID string, items []models.OrderItem) error {
	id, err := parseOrderID(orderID)
	if err != nil {
		return err
	}
	b := s.session.NewBatch(gocql.LoggedBatch).WithContext(ctx)
	for _, it := range items {
		b.Query(`INSERT INTO order_items (order_id, position, product_id, name, price_cents, qty, image_url, category)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			id, it.Position, it.ProductID, it.Name, it.PriceCents, it.Quantity, it.ImageURL, it.Category)
	}
	return s.session.ExecuteBatch(b)
}

// DeleteOrder supprime l'en-tête, son entrée d'index et ses lignes.
func (s *Scylla) DeleteOrder(ctx context.Context, orderID string) error {
	id, err := parseOrderID(orderID)
	if err != nil {
		return err
	}
	var userID string
	err = s.session.Query(`SELECT user_id FROM orders WHERE order_id = ?`, id).WithContext(ctx).Scan(&userID)
	if err != nil {
		return notFound(err)
	}

	b := s.session.NewBatch(gocql.LoggedBatch).WithContext(ctx)
	b.Query(`DELETE FROM orders WHERE order_id = ?`, id)
	b.Query(`DELETE FROM orders_by_user WHERE user_id = ? AND order_id = ?`, userID, id)
	b.Query(`DELETE FROM order_items WHERE order_id = ?`, id)
	return s.session.ExecuteBatch(b)
}

func (s *Scylla) UpdateOrderStatus(ctx context.Context, orderID, status string) error {
	id, err := parseOrderID(orderID)
	if err != nil {
		return err
	}
	applied, err := s.session.Query(`UPDATE orders SET status = ?, updated_at = ? WHERE order_id = ? IF EXISTS`,
		status, time.Now().UTC(), id).WithContext(ctx).MapScanCAS(map[string]any{})
	if err != nil {
		return err
	}
	if !applied {
		return ErrNotFound
	}
	return nil
}

func (s *Scylla) GetOrder(ctx context.Context, orderID string) (*models.Order, error) {
	id, err := parseOrderID(orderID)
	if err != nil {
		return nil, err
	}
	iter := s.session.Query(`SELECT `+orderColumns+` FROM orders WHERE order_id = ?`, id).WithContext(ctx).Iter()
	o, ok := scanOrder(iter.Scan)
	if err := iter.Close(); err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotFound
	}
	return &o, nil
}

func (s *Scylla) OrderItems(ctx context.Context, orderID string) ([]models.OrderItem, error) {
	id, err := parseOrderID(orderID)
	if err != nil {
		return nil, err
	}
	iter := s.session.Query(`SELECT position, product_id, name, price_cents, qty, image_url, category
		FROM order_items WHERE order_id = ?`, id).WithContext(ctx).Iter()
	items := []models.OrderItem{}
	var it models.OrderItem
	for iter.Scan(&it.Position, &it.ProductID, &it.Name, &it.PriceCents, &it.Quantity, &it.ImageURL, &it.Category) {
		it.OrderID = orderID
		items = append(items, it)
		it = models.OrderItem{}
	}
	if err := iter.Close(); err != nil {
		return nil, err
	}
	return items, nil
}

// OrderIDsForUser renvoie les commandes d'un utilisateur, plus récentes
// d'abord.
func (s *Scylla) OrderIDsForUser(ctx context.Context, userID string) ([]string, error) {
	iter := s.session.Query(`SELECT order_id FROM orders_by_user WHERE user_id = ?`, userID).WithContext(ctx).Iter()
	ids := []string{}
	var id gocql.UUID
	for iter.Scan(&id) {
		ids = append(ids, id.String())
	}
	if err := iter.Close(); err != nil {
		return nil, err
	}
	return ids, nil
}

// ListOrders parcourt toutes les commandes (back-office).
func (s *Scylla) ListOrders(ctx context.Context) ([]models.Order, error) {
	iter := s.session.Query(`SELECT ` + orderColumns + ` FROM orders`).WithContext(ctx).Iter()
	out := []models.Order{}
	for {
		o, ok := scanOrder(iter.Scan)
		if !ok {
			break
		}
		out = append(out, o)
	}
	if err := iter.Close(); err != nil {
		return nil, err
	}
	return out, nil
}
