package user

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"perfumeria_back_end/internal/checkout"
	"perfumeria_back_end/internal/middleware"
	"perfumeria_back_end/internal/utils"
)

type CheckoutHandler struct {
	orchestrator *checkout.Orchestrator
	audit        *utils.Auditor
}

func NewCheckoutHandler(o *checkout.Orchestrator, audit *utils.Auditor) *CheckoutHandler {
	return &CheckoutHandler{orchestrator: o, audit: audit}
}

// POST /api/checkout
func (h *CheckoutHandler) Checkout(c *gin.Context) {
	var form checkout.Form
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Datos inválidos"})
		return
	}
	if form.Email == "" {
		form.Email = c.GetString("email")
	}

	id := middleware.CurrentIdentity(c)
	receipt, err := h.orchestrator.Submit(c.Request.Context(), id, form)
	if err != nil {
		h.respondError(c, err)
		return
	}

	h.audit.LogAction(c.Request.Context(), utils.ActionOrderCreate, utils.ResourceOrder, receipt.OrderID, nil, receipt)
	c.JSON(http.StatusCreated, receipt)
}

func (h *CheckoutHandler) respondError(c *gin.Context, err error) {
	var (
		verr    *checkout.ValidationError
		partial *checkout.PartialCheckoutError
		remote  *checkout.RemoteWriteError
	)
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Revisá los campos marcados.", "fields": verr.Fields})
	case errors.Is(err, checkout.ErrUnauthenticated):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Iniciá sesión para finalizar la compra."})
	case errors.Is(err, checkout.ErrEmptyCart):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Tu carrito está vacío."})
	case errors.Is(err, checkout.ErrSubmitInFlight):
		c.JSON(http.StatusConflict, gin.H{"error": "Ya estamos procesando tu pedido."})
	case errors.As(err, &partial):
		h.audit.LogFailedAction(c.Request.Context(), utils.ActionOrderCreate, utils.ResourceOrder, partial.OrderID, err.Error())
		c.JSON(http.StatusBadGateway, gin.H{
			"error":        "No pudimos completar tu pedido. Tu carrito no fue modificado.",
			"order_id":     partial.OrderID,
			"compensation": partial.Compensation,
		})
	case errors.As(err, &remote):
		h.audit.LogFailedAction(c.Request.Context(), utils.ActionOrderCreate, utils.ResourceOrder, "", err.Error())
		c.JSON(http.StatusBadGateway, gin.H{"error": "No pudimos registrar tu pedido. Intentá de nuevo."})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error inesperado"})
	}
}
