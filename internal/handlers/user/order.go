package user

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"perfumeria_back_end/internal/handlers"
	"perfumeria_back_end/internal/orders"
)

type OrdersHandler struct {
	history *orders.History
}

func NewOrdersHandler(history *orders.History) *OrdersHandler {
	return &OrdersHandler{history: history}
}

// GET /api/orders
func (h *OrdersHandler) GetMyOrders(c *gin.Context) {
	list, err := h.history.ListForUser(c.Request.Context(), c.GetString("user_id"))
	if err != nil {
		handlers.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": list, "count": len(list)})
}

// GET /api/orders/:id
func (h *OrdersHandler) GetOrder(c *gin.Context) {
	o, err := h.history.Get(c.Request.Context(), c.GetString("user_id"), c.Param("id"))
	if err != nil {
		handlers.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, o)
}
