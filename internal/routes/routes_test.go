package routes

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"perfumeria_back_end/internal/cache"
	"perfumeria_back_end/internal/cart"
	"perfumeria_back_end/internal/handlers/admin"
	"perfumeria_back_end/internal/handlers/product"
	"perfumeria_back_end/internal/handlers/user"
	"perfumeria_back_end/internal/inventory"
	"perfumeria_back_end/internal/media"
	"perfumeria_back_end/internal/middleware"
	"perfumeria_back_end/internal/models"
	"perfumeria_back_end/internal/repository"
	"perfumeria_back_end/internal/utils"
)

const secret = "routes-secret"

type catalog struct{}

func (catalog) GetProduct(context.Context, int64) (*models.Product, error) {
	return nil, repository.ErrNotFound
}

func (catalog) ListProducts(context.Context) ([]models.Product, error) {
	return []models.Product{{ID: 1, Name: "Rosa", PriceCents: 5999}}, nil
}

func (catalog) InsertProduct(context.Context, *models.Product) error {
	return nil
}

func (catalog) UpdateProduct(context.Context, *models.Product) error {
	return nil
}

func (catalog) DeleteProduct(context.Context, int64) error {
	return nil
}

type noAdmins struct{}

func (noAdmins) IsAdmin(context.Context, string) (bool, error) { return false, nil }

func newEngine(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	inv := inventory.NewService(catalog{}, media.NewManager(media.NewMemoryStore("http://cdn.local")), nil, nil, nil)
	r := gin.New()
	RegisterRoutes(r, Deps{
		JWTSecret:     secret,
		GuestStore:    middleware.NewGuestStore("guest-secret-guest-secret-123456", false),
		Counters:      cache.New(rdb),
		Admins:        noAdmins{},
		Cart:          user.NewCartHandler(cart.NewSessions(cart.NewMemoryPersister()), inv),
		Products:      product.NewHandler(inv),
		AdminProducts: admin.NewProductsHandler(inv),
	})
	return r
}

func bearer(t *testing.T, role string) string {
	t.Helper()
	tok, err := utils.GenerateJWT("u1", "u1@example.com", role, secret, time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	return "Bearer " + tok
}

func TestRouteProtection(t *testing.T) {
	r := newEngine(t)
	tests := []struct {
		name   string
		method string
		path   string
		auth   string
		want   int
	}{
		{"public catalog", http.MethodGet, "/api/products", "", http.StatusOK},
		{"guest cart", http.MethodGet, "/api/cart", "", http.StatusOK},
		{"orders need login", http.MethodGet, "/api/orders", "", http.StatusUnauthorized},
		{"checkout needs login", http.MethodPost, "/api/checkout", "", http.StatusUnauthorized},
		{"admin needs login", http.MethodGet, "/api/admin/products/export", "", http.StatusUnauthorized},
		{"admin needs role", http.MethodGet, "/api/admin/products/export", bearer(t, "customer"), http.StatusForbidden},
		{"admin role passes", http.MethodGet, "/api/admin/products/export", bearer(t, "admin"), http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			if tt.auth != "" {
				req.Header.Set("Authorization", tt.auth)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			if w.Code != tt.want {
				t.Errorf("status = %d, want %d (%s)", w.Code, tt.want, w.Body.String())
			}
		})
	}
}

func TestAPIRateLimitHeaders(t *testing.T) {
	r := newEngine(t)
	req := httptest.NewRequest(http.MethodGet, "/api/products", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if got := w.Header().Get("X-RateLimit-Limit"); got != "100" {
		t.Errorf("limit header = %q", got)
	}
	if got := w.Header().Get("X-RateLimit-Remaining"); got != "99" {
		t.Errorf("remaining header = %q", got)
	}
}
