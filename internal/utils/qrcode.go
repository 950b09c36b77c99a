package utils

import (
	"fmt"
	"strings"

	"github.com/skip2/go-qrcode"

	"perfumeria_back_end/internal/money"
)

// TransferDetails sont les coordonnées affichées pour un paiement par
// virement.
type TransferDetails struct {
	Holder      string
	IBAN        string
	BIC         string
	AmountCents int64
	Reference   string
}

// Text est le contenu encodé dans le QR et recopié dans l'e-mail.
func (t TransferDetails) Text() string {
	lines := []string{
		"TRANSFERENCIA",
		"Titular: " + t.Holder,
		"Cuenta: " + t.IBAN,
	}
	if t.BIC != "" {
		lines = append(lines, "BIC: "+t.BIC)
	}
	lines = append(lines,
		"Importe: "+money.Format(t.AmountCents),
		"Referencia: "+t.Reference,
	)
	return strings.Join(lines, "\n")
}

// TransferQR génère le QR PNG des coordonnées de virement.
func TransferQR(t TransferDetails) ([]byte, error) {
	if t.IBAN == "" {
		return nil, fmt.Errorf("compte bancaire non configuré")
	}
	return qrcode.Encode(t.Text(), qrcode.Medium, 256)
}
