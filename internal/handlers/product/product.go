// Package product expose le catalogue public.
package product

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"perfumeria_back_end/internal/handlers"
	"perfumeria_back_end/internal/inventory"
)

type Handler struct {
	inventory *inventory.Service
}

func NewHandler(inv *inventory.Service) *Handler {
	return &Handler{inventory: inv}
}

// GET /api/products?q=&category=&sort=&limit=
func (h *Handler) ListProducts(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	list, err := h.inventory.ListProducts(c.Request.Context(), inventory.Query{
		Q:        c.Query("q"),
		Category: c.Query("category"),
		Sort:     inventory.Sort(c.DefaultQuery("sort", string(inventory.SortNew))),
		Limit:    limit,
	})
	if err != nil {
		handlers.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": list, "count": len(list)})
}

// GET /api/products/:id
func (h *Handler) GetProduct(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID de producto inválido"})
		return
	}
	p, err := h.inventory.GetProduct(c.Request.Context(), id)
	if err != nil {
		handlers.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// GET /api/products/search?q=
func (h *Handler) SearchProducts(c *gin.Context) {
	q := c.Query("q")
	if q == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Falta el parámetro q"})
		return
	}
	list, err := h.inventory.Search(c.Request.Context(), q, inventory.DefaultLimit)
	if err != nil {
		handlers.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": list, "count": len(list)})
}

// GET /api/products/categories
func (h *Handler) GetCategories(c *gin.Context) {
	cats, err := h.inventory.Categories(c.Request.Context())
	if err != nil {
		handlers.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": cats})
}
