// Package user contient les handlers du parcours client : panier, checkout,
// commandes et profil.
package user

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"perfumeria_back_end/internal/cart"
	"perfumeria_back_end/internal/handlers"
	"perfumeria_back_end/internal/middleware"
	"perfumeria_back_end/internal/models"
	"perfumeria_back_end/internal/repository"
)

// ProductLookup fournit le prix de référence d'un produit ajouté au panier.
type ProductLookup interface {
	GetProduct(ctx context.Context, id int64) (*models.Product, error)
}

type CartHandler struct {
	carts    *cart.Sessions
	products ProductLookup
}

func NewCartHandler(carts *cart.Sessions, products ProductLookup) *CartHandler {
	return &CartHandler{carts: carts, products: products}
}

func (h *CartHandler) store(c *gin.Context) *cart.Store {
	return h.carts.Get(c.Request.Context(), middleware.CurrentIdentity(c))
}

// GET /api/cart
func (h *CartHandler) GetCart(c *gin.Context) {
	c.JSON(http.StatusOK, h.store(c).Snapshot())
}

type addItemInput struct {
	ProductID int64  `json:"product_id" binding:"required"`
	Variant   string `json:"variant"`
	Quantity  *int   `json:"qty"`
}

// POST /api/cart/items
func (h *CartHandler) AddItem(c *gin.Context) {
	var input addItemInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Datos inválidos"})
		return
	}

	p, err := h.products.GetProduct(c.Request.Context(), input.ProductID)
	if errors.Is(err, repository.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Producto no encontrado"})
		return
	}
	if err != nil {
		log.Printf("❌ Lecture produit %d: %v", input.ProductID, err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "No pudimos leer el producto"})
		return
	}

	qty := 1
	if input.Quantity != nil {
		qty = *input.Quantity
	}

	item := cart.Item{
		ProductID: p.ID,
		Variant:   input.Variant,
		Name:      p.Name,
		Category:  p.Category,
		Price:     p.PriceCents,
	}
	if p.ImageURL != nil {
		item.ImageURL = *p.ImageURL
	}

	store := h.store(c)
	switch err := store.Add(c.Request.Context(), item, qty); {
	case errors.Is(err, cart.ErrInvalidQuantity):
		c.JSON(http.StatusBadRequest, gin.H{"error": "La cantidad debe estar entre 1 y 10."})
		return
	case errors.Is(err, cart.ErrInvalidItem):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Producto no disponible"})
		return
	case err != nil:
		handlers.RespondError(c, err)
		return
	}
	log.Printf("🛒 %s : +%d × %s", store.Identity(), qty, p.Name)
	c.JSON(http.StatusOK, store.Snapshot())
}

type setQuantityInput struct {
	Quantity int `json:"qty"`
}

// PATCH /api/cart/items/:key
func (h *CartHandler) SetQuantity(c *gin.Context) {
	var input setQuantityInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Datos inválidos"})
		return
	}
	store := h.store(c)
	if !store.SetQuantity(c.Request.Context(), c.Param("key"), input.Quantity) {
		c.JSON(http.StatusNotFound, gin.H{"error": "El producto no está en el carrito"})
		return
	}
	c.JSON(http.StatusOK, store.Snapshot())
}

// DELETE /api/cart/items/:key
func (h *CartHandler) RemoveItem(c *gin.Context) {
	store := h.store(c)
	store.Remove(c.Request.Context(), c.Param("key"))
	c.JSON(http.StatusOK, store.Snapshot())
}

// DELETE /api/cart
func (h *CartHandler) ClearCart(c *gin.Context) {
	store := h.store(c)
	store.Clear(c.Request.Context())
	c.JSON(http.StatusOK, store.Snapshot())
}
