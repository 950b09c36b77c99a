// Package handlers regroupe les utilitaires partagés par les handlers HTTP.
package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"perfumeria_back_end/internal/account"
	"perfumeria_back_end/internal/inventory"
	"perfumeria_back_end/internal/media"
	"perfumeria_back_end/internal/orders"
	"perfumeria_back_end/internal/repository"
)

// RespondError traduit les erreurs des services en réponse JSON.
func RespondError(c *gin.Context, err error) {
	var (
		assetErr   *media.AssetError
		productErr *inventory.ValidationError
		profileErr *account.ValidationError
	)
	switch {
	case errors.As(err, &assetErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": assetErr.Reason})
	case errors.As(err, &productErr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Revisá los campos marcados.", "fields": productErr.Fields})
	case errors.As(err, &profileErr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Revisá los campos marcados.", "fields": profileErr.Fields})
	case errors.Is(err, repository.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "No encontrado"})
	case errors.Is(err, orders.ErrUnknownStatus):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Estado desconocido"})
	case errors.Is(err, orders.ErrInvalidTransition):
		c.JSON(http.StatusConflict, gin.H{"error": "Ese cambio de estado no está permitido"})
	default:
		log.Printf("❌ %s %s: %v", c.Request.Method, c.FullPath(), err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "No pudimos guardar los cambios. Intentá de nuevo."})
	}
}
