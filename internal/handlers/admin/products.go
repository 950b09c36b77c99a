// Package admin contient les handlers du back-office.
package admin

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"perfumeria_back_end/internal/handlers"
	"perfumeria_back_end/internal/inventory"
)

type ProductsHandler struct {
	inventory *inventory.Service
}

func NewProductsHandler(inv *inventory.Service) *ProductsHandler {
	return &ProductsHandler{inventory: inv}
}

func productInput(c *gin.Context) inventory.ProductInput {
	return inventory.ProductInput{
		Name:        c.PostForm("name"),
		Description: c.PostForm("description"),
		Price:       c.PostForm("price"),
		Category:    c.PostForm("category"),
		RemoveImage: c.PostForm("remove_image") == "true",
	}
}

// POST /api/admin/products (multipart : name, description, price, category, image)
func (h *ProductsHandler) CreateProduct(c *gin.Context) {
	h.save(c, nil, http.StatusCreated)
}

// PUT /api/admin/products/:id
func (h *ProductsHandler) UpdateProduct(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID de producto inválido"})
		return
	}
	h.save(c, &id, http.StatusOK)
}

func (h *ProductsHandler) save(c *gin.Context, id *int64, status int) {
	file, closeFile, err := handlers.FormUpload(c, "image")
	if err != nil {
		handlers.RespondError(c, err)
		return
	}
	defer closeFile()

	in := productInput(c)
	in.ID = id
	p, err := h.inventory.SaveProduct(c.Request.Context(), in, file)
	if err != nil {
		handlers.RespondError(c, err)
		return
	}
	c.JSON(status, p)
}

// DELETE /api/admin/products/:id
func (h *ProductsHandler) DeleteProduct(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID de producto inválido"})
		return
	}
	if err := h.inventory.DeleteProduct(c.Request.Context(), id); err != nil {
		handlers.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Producto eliminado"})
}

// GET /api/admin/products/export
func (h *ProductsHandler) ExportProducts(c *gin.Context) {
	c.Header("Content-Disposition", "attachment; filename=productos.xlsx")
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Transfer-Encoding", "binary")
	c.Header("Expires", "0")
	if err := h.inventory.Export(c.Request.Context(), c.Writer); err != nil {
		handlers.RespondError(c, err)
	}
}
