package utils

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"perfumeria_back_end/internal/config"
	"perfumeria_back_end/internal/models"
)

type fakeSender struct {
	sent []Email
}

func (f *fakeSender) Send(_ context.Context, e Email) error {
	f.sent = append(f.sent, e)
	return nil
}

func testOrder(method string) models.Order {
	return models.Order{
		ID:            "9f0c2b52-1a7e-11ef-9262-0242ac120002",
		UserID:        "u1",
		TotalCents:    13998,
		PaymentMethod: method,
		Status:        "pending",
		FullName:      "Lucía <b>Pérez</b>",
		Address:       "Av. Corrientes 1234",
		City:          "Buenos Aires",
		PostalCode:    "C1043",
		Items: []models.OrderItem{
			{Name: "Rosa Noir", PriceCents: 5999, Quantity: 2},
			{Name: "Cuero", PriceCents: 2000, Quantity: 1},
		},
	}
}

func newTestNotifier(iban string) (*Notifier, *fakeSender) {
	sender := &fakeSender{}
	cfg := config.Config{CompanyName: "Perfumería", CompanyIBAN: iban, CompanyBIC: "BSUDARBA"}
	return NewNotifier(sender, cfg), sender
}

func TestOrderPlacedBankTransferAttachesQR(t *testing.T) {
	n, sender := newTestNotifier("0170099220000067797370")
	if err := n.OrderPlaced(context.Background(), testOrder("bank-transfer"), "lucia@example.com"); err != nil {
		t.Fatalf("OrderPlaced: %v", err)
	}
	if len(sender.sent) != 1 {
		t.Fatalf("sent %d emails", len(sender.sent))
	}
	e := sender.sent[0]
	if e.To != "lucia@example.com" {
		t.Errorf("to = %q", e.To)
	}
	if len(e.Attachments) != 1 || !bytes.HasPrefix(e.Attachments[0].Data, []byte("\x89PNG")) {
		t.Fatalf("expected one PNG attachment, got %d", len(e.Attachments))
	}
	for _, want := range []string{"$139.98", "$119.98", "Referencia: 9f0c2b52", "0170099220000067797370"} {
		if !strings.Contains(e.HTML, want) {
			t.Errorf("html missing %q", want)
		}
	}
	if strings.Contains(e.HTML, "<b>Pérez</b>") {
		t.Error("customer name must be escaped")
	}
}

func TestOrderPlacedCardHasNoTransferDetails(t *testing.T) {
	n, sender := newTestNotifier("0170099220000067797370")
	if err := n.OrderPlaced(context.Background(), testOrder("card"), "lucia@example.com"); err != nil {
		t.Fatalf("OrderPlaced: %v", err)
	}
	e := sender.sent[0]
	if len(e.Attachments) != 0 || strings.Contains(e.HTML, "Referencia") {
		t.Error("card orders should not carry transfer details")
	}
}

func TestStatusChanged(t *testing.T) {
	n, sender := newTestNotifier("")
	order := testOrder("card")
	order.Status = "shipped"
	if err := n.StatusChanged(context.Background(), order, "lucia@example.com", "Enviado"); err != nil {
		t.Fatalf("StatusChanged: %v", err)
	}
	e := sender.sent[0]
	if !strings.Contains(e.Subject, "enviado") {
		t.Errorf("subject = %q", e.Subject)
	}
	if !strings.Contains(e.HTML, "Enviado") || !strings.Contains(e.HTML, "#2563eb") {
		t.Errorf("html missing label or colour")
	}
}

func TestTransferQRRequiresAccount(t *testing.T) {
	if _, err := TransferQR(TransferDetails{Holder: "X", AmountCents: 100}); err == nil {
		t.Fatal("expected error without account")
	}
}

func TestMailerDisabledWithoutHost(t *testing.T) {
	m := NewMailer(config.Config{})
	if err := m.Send(context.Background(), Email{To: "a@b.c"}); err != ErrMailDisabled {
		t.Errorf("err = %v, want ErrMailDisabled", err)
	}
}

func TestGenerateJWT(t *testing.T) {
	if _, err := GenerateJWT("u1", "a@b.c", "", "", time.Hour); err == nil {
		t.Fatal("empty secret should fail")
	}
	tok, err := GenerateJWT("u1", "a@b.c", "admin", "s3cret", time.Hour)
	if err != nil {
		t.Fatalf("GenerateJWT: %v", err)
	}
	claims := jwt.MapClaims{}
	if _, err := jwt.ParseWithClaims(tok, claims, func(*jwt.Token) (any, error) { return []byte("s3cret"), nil }); err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims["user_id"] != "u1" || claims["role"] != "admin" {
		t.Errorf("claims = %v", claims)
	}
}

type chanWriter chan models.AuditLog

func (w chanWriter) InsertAuditLog(_ context.Context, a models.AuditLog) error {
	w <- a
	return nil
}

func TestAuditorRecordsActor(t *testing.T) {
	w := make(chanWriter, 1)
	a := NewAuditor(w)
	ctx := WithActor(context.Background(), Actor{UserID: "admin-1", IP: "10.0.0.1"})

	a.LogAction(ctx, ActionOrderStatus, ResourceOrder, "o1", "pending", "paid")

	select {
	case entry := <-w:
		if entry.UserID != "admin-1" || entry.IPAddress != "10.0.0.1" {
			t.Errorf("actor = %s/%s", entry.UserID, entry.IPAddress)
		}
		if entry.OldValue != "pending" || entry.NewValue != "paid" || !entry.Success {
			t.Errorf("entry = %+v", entry)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("audit entry not written")
	}
}

func TestNilAuditorIsNoop(t *testing.T) {
	var a *Auditor
	a.LogAction(context.Background(), ActionProductCreate, ResourceProduct, "1", nil, nil)
	a.LogFailedAction(context.Background(), ActionProductCreate, ResourceProduct, "1", "boom")
}
