package middleware

import (
	"github.com/gin-gonic/gin"

	"perfumeria_back_end/internal/utils"
)

// AuditActor rattache l'auteur de la requête au contexte pour que les
// services puissent l'inscrire dans les logs d'audit.
func AuditActor() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := utils.WithActor(c.Request.Context(), utils.Actor{
			UserID: c.GetString("user_id"),
			IP:     c.ClientIP(),
		})
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
