package middleware

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/sessions"

	"perfumeria_back_end/internal/cart"
)

const (
	guestSessionName = "perfumeria_guest"
	guestIDKey       = "guest_id"
	identityKey      = "identity"
)

// NewGuestStore crée le cookie store signé des visiteurs non connectés.
func NewGuestStore(secret string, secure bool) *sessions.CookieStore {
	store := sessions.NewCookieStore([]byte(secret))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   int(cart.CartTTL.Seconds()),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
	return store
}

// Identity détermine à qui appartient le panier : l'utilisateur connecté,
// sinon un visiteur identifié par cookie. À placer après OptionalAuth.
func Identity(store sessions.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		if userID := c.GetString("user_id"); userID != "" {
			c.Set(identityKey, cart.Identity{ID: userID})
			c.Next()
			return
		}

		session, err := store.Get(c.Request, guestSessionName)
		if err != nil {
			log.Printf("⚠️ Cookie invité illisible, nouveau visiteur: %v", err)
		}
		guestID, _ := session.Values[guestIDKey].(string)
		if guestID == "" {
			guestID = uuid.NewString()
			session.Values[guestIDKey] = guestID
			if err := session.Save(c.Request, c.Writer); err != nil {
				log.Printf("❌ Enregistrement cookie invité: %v", err)
			}
		}
		c.Set(identityKey, cart.Identity{ID: guestID, Guest: true})
		c.Next()
	}
}

// CurrentIdentity renvoie l'identité posée par Identity.
func CurrentIdentity(c *gin.Context) cart.Identity {
	if v, ok := c.Get(identityKey); ok {
		if id, ok := v.(cart.Identity); ok {
			return id
		}
	}
	if userID := c.GetString("user_id"); userID != "" {
		return cart.Identity{ID: userID}
	}
	return cart.Identity{}
}
