package user

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"

	"perfumeria_back_end/internal/cart"
	"perfumeria_back_end/internal/middleware"
)

const wsPingInterval = 30 * time.Second

// CartSubscriber est implémenté par cart.RedisPersister.
type CartSubscriber interface {
	Subscribe(ctx context.Context, id cart.Identity) *redis.PubSub
}

// CartSync pousse le panier au navigateur à chaque écriture, quel que soit
// l'onglet ou l'instance qui l'a modifié.
type CartSync struct {
	carts    *cart.Sessions
	sub      CartSubscriber
	upgrader websocket.Upgrader
}

// NewCartSync accepte les origines autorisées par CORS.
func NewCartSync(carts *cart.Sessions, sub CartSubscriber, origins []string) *CartSync {
	allowed := make(map[string]bool, len(origins))
	for _, o := range origins {
		allowed[o] = true
	}
	return &CartSync{
		carts: carts,
		sub:   sub,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || allowed[origin]
			},
		},
	}
}

type cartEvent struct {
	Type string `json:"type"`
	Cart any    `json:"cart,omitempty"`
}

// GET /api/cart/ws
func (h *CartSync) CartWebSocket(c *gin.Context) {
	id := middleware.CurrentIdentity(c)
	if id.ID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Sesión no identificada"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("❌ Erreur upgrade WebSocket: %v", err)
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(context.WithoutCancel(c.Request.Context()))
	defer cancel()

	pubsub := h.sub.Subscribe(ctx, id)
	defer pubsub.Close()
	ch := pubsub.Channel()

	// Lecture en arrière-plan pour détecter la fermeture côté client
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	if err := conn.WriteJSON(cartEvent{Type: "connected", Cart: h.carts.Get(ctx, id).Snapshot()}); err != nil {
		return
	}

	ticker := time.NewTicker(wsPingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			if msg.Payload != cart.EventUpdated && msg.Payload != cart.EventCleared {
				continue
			}
			snap := h.carts.Get(ctx, id).Snapshot()
			if err := conn.WriteJSON(cartEvent{Type: "cart_updated", Cart: snap}); err != nil {
				log.Printf("❌ Erreur envoi WebSocket: %v", err)
				return
			}
		case <-ticker.C:
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
