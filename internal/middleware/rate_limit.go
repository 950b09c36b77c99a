package middleware

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"perfumeria_back_end/internal/cache"
)

const (
	APIMaxRequests    = 100 // par minute et par IP
	CartMaxRequests   = 20  // écritures panier par minute
	SearchMaxRequests = 30

	RateWindow = 1 * time.Minute
)

// APIRateLimit limite le nombre de requêtes par IP (général)
func APIRateLimit(counters *cache.Cache) gin.HandlerFunc {
	return rateLimit(counters, "api_requests:", APIMaxRequests, func(c *gin.Context) string {
		return c.ClientIP()
	}, "Demasiadas solicitudes. Probá de nuevo en un minuto.")
}

// CartRateLimit limite les écritures panier (anti-spam). À placer après
// Identity.
func CartRateLimit(counters *cache.Cache) gin.HandlerFunc {
	return rateLimit(counters, "cart_add:", CartMaxRequests, func(c *gin.Context) string {
		if id := CurrentIdentity(c); id.ID != "" {
			return id.String()
		}
		return c.ClientIP()
	}, "Demasiados cambios en el carrito. Esperá un momento.")
}

// SearchRateLimit limite les recherches par IP.
func SearchRateLimit(counters *cache.Cache) gin.HandlerFunc {
	return rateLimit(counters, "search_requests:", SearchMaxRequests, func(c *gin.Context) string {
		return c.ClientIP()
	}, "Demasiadas búsquedas. Probá de nuevo en un minuto.")
}

func rateLimit(counters *cache.Cache, prefix string, max int64, keyOf func(*gin.Context) string, message string) gin.HandlerFunc {
	return func(c *gin.Context) {
		n, ttl, err := counters.Hit(c.Request.Context(), prefix+keyOf(c), RateWindow)
		if err != nil {
			// Redis indisponible : on laisse passer
			log.Printf("⚠️ Rate limit %s indisponible: %v", prefix, err)
			c.Next()
			return
		}
		c.Header("X-RateLimit-Limit", fmt.Sprintf("%d", max))
		remaining := max - n
		if remaining < 0 {
			remaining = 0
		}
		c.Header("X-RateLimit-Remaining", fmt.Sprintf("%d", remaining))

		if n > max {
			retry := int(ttl.Seconds())
			if retry <= 0 {
				retry = int(RateWindow.Seconds())
			}
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":       message,
				"retry_after": retry,
			})
			return
		}
		c.Next()
	}
}
