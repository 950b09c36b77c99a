package utils

import (
	"context"
	"log"

	"perfumeria_back_end/internal/config"
	"perfumeria_back_end/internal/models"
)

// Notifier envoie les e-mails de commande aux clients.
type Notifier struct {
	sender  Sender
	company string
	iban    string
	bic     string
}

func NewNotifier(sender Sender, cfg config.Config) *Notifier {
	return &Notifier{sender: sender, company: cfg.CompanyName, iban: cfg.CompanyIBAN, bic: cfg.CompanyBIC}
}

// OrderPlaced confirme une commande. Pour un virement, les coordonnées et
// leur QR code sont joints.
func (n *Notifier) OrderPlaced(ctx context.Context, order models.Order, to string) error {
	var (
		transfer    string
		attachments []Attachment
	)
	if order.PaymentMethod == "bank-transfer" && n.iban != "" {
		details := TransferDetails{
			Holder:      n.company,
			IBAN:        n.iban,
			BIC:         n.bic,
			AmountCents: order.TotalCents,
			Reference:   order.ID,
		}
		transfer = details.Text()
		png, err := TransferQR(details)
		if err != nil {
			log.Printf("⚠️ QR de virement non généré pour %s: %v", order.ID, err)
		} else {
			attachments = append(attachments, Attachment{Name: "transferencia-" + order.ID + ".png", Data: png})
		}
	}

	html, err := renderOrderConfirmation(order, n.company, transfer)
	if err != nil {
		return err
	}
	if err := n.sender.Send(ctx, Email{
		To:          to,
		Subject:     "✅ Pedido confirmado - " + n.company,
		HTML:        html,
		Attachments: attachments,
	}); err != nil {
		return err
	}
	log.Printf("📧 Email de confirmation envoyé: %s (commande: %s)", to, order.ID)
	return nil
}

// StatusChanged prévient le client d'un changement de statut. label est le
// libellé affiché du nouveau statut.
func (n *Notifier) StatusChanged(ctx context.Context, order models.Order, to, label string) error {
	status := order.Status
	html, err := renderStatusUpdate(order, n.company, label, statusColor(status))
	if err != nil {
		return err
	}
	if err := n.sender.Send(ctx, Email{
		To:      to,
		Subject: statusSubject(status) + " - " + n.company,
		HTML:    html,
	}); err != nil {
		log.Printf("❌ Erreur envoi email statut: %v", err)
		return err
	}
	log.Printf("📧 Email de statut envoyé: %s → %s", order.Status, to)
	return nil
}

func statusSubject(s string) string {
	switch s {
	case "paid":
		return "✅ Pago confirmado"
	case "shipped":
		return "📦 Tu pedido fue enviado"
	case "cancelled":
		return "❌ Pedido cancelado"
	case "processing":
		return "⏳ Estamos preparando tu pedido"
	default:
		return "📋 Actualización de tu pedido"
	}
}

func statusColor(s string) string {
	switch s {
	case "paid":
		return "#16a34a"
	case "shipped":
		return "#2563eb"
	case "cancelled":
		return "#dc2626"
	case "processing":
		return "#d97706"
	default:
		return "#6b7280"
	}
}
