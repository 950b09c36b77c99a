package admin

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"perfumeria_back_end/internal/handlers"
	"perfumeria_back_end/internal/orders"
)

type OrdersHandler struct {
	history  *orders.History
	workflow *orders.Workflow
}

func NewOrdersHandler(history *orders.History, workflow *orders.Workflow) *OrdersHandler {
	return &OrdersHandler{history: history, workflow: workflow}
}

// GET /api/admin/orders?status=
func (h *OrdersHandler) ListOrders(c *gin.Context) {
	var status orders.Status
	if s := c.Query("status"); s != "" {
		parsed, err := orders.Parse(s)
		if err != nil {
			handlers.RespondError(c, err)
			return
		}
		status = parsed
	}
	list, err := h.history.ListAll(c.Request.Context(), status)
	if err != nil {
		handlers.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": list, "count": len(list)})
}

type statusInput struct {
	Status string `json:"status" binding:"required"`
}

// PATCH /api/admin/orders/:id/status
func (h *OrdersHandler) UpdateStatus(c *gin.Context) {
	var input statusInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Datos inválidos"})
		return
	}
	status, err := orders.Parse(input.Status)
	if err != nil {
		handlers.RespondError(c, err)
		return
	}

	order, err := h.history.Order(c.Request.Context(), c.Param("id"))
	if err != nil {
		handlers.RespondError(c, err)
		return
	}
	if err := h.workflow.SetStatus(c.Request.Context(), order, status); err != nil {
		handlers.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"order":        order,
		"status_label": orders.Label(orders.Status(order.Status)),
	})
}

// GET /api/admin/orders/stats
func (h *OrdersHandler) GetStats(c *gin.Context) {
	st, err := h.history.Stats(c.Request.Context())
	if err != nil {
		handlers.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}
