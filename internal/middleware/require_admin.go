package middleware

import (
	"context"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

type AdminChecker interface {
	IsAdmin(ctx context.Context, userID string) (bool, error)
}

// RequireAdmin laisse passer le rôle "admin" du token ou un profil marqué
// is_admin. À placer après AuthRequired.
func RequireAdmin(checker AdminChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		if role := c.GetString("role"); role == "admin" {
			c.Next()
			return
		}
		userID := c.GetString("user_id")
		if userID == "" || checker == nil {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Acceso reservado a administradores"})
			return
		}
		ok, err := checker.IsAdmin(c.Request.Context(), userID)
		if err != nil {
			log.Printf("❌ Vérification admin pour %s: %v", userID, err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Error al verificar permisos"})
			return
		}
		if !ok {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Acceso reservado a administradores"})
			return
		}
		c.Next()
	}
}
