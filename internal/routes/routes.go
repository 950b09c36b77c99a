package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/gorilla/sessions"

	"perfumeria_back_end/internal/cache"
	"perfumeria_back_end/internal/handlers/admin"
	"perfumeria_back_end/internal/handlers/product"
	"perfumeria_back_end/internal/handlers/user"
	"perfumeria_back_end/internal/middleware"
)

// Deps regroupe les handlers et ce dont les middlewares ont besoin.
type Deps struct {
	JWTSecret  string
	GuestStore sessions.Store
	Counters   *cache.Cache
	Admins     middleware.AdminChecker

	Cart          *user.CartHandler
	CartSync      *user.CartSync
	Checkout      *user.CheckoutHandler
	Orders        *user.OrdersHandler
	Profile       *user.ProfileHandler
	Products      *product.Handler
	AdminProducts *admin.ProductsHandler
	AdminOrders   *admin.OrdersHandler
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	api := r.Group("/api", middleware.APIRateLimit(d.Counters))

	// Catalogue public
	products := api.Group("/products")
	products.GET("", d.Products.ListProducts)
	products.GET("/categories", d.Products.GetCategories)
	products.GET("/search", middleware.SearchRateLimit(d.Counters), d.Products.SearchProducts)
	products.GET("/:id", d.Products.GetProduct)

	// Panier : invité ou connecté
	cartGroup := api.Group("/cart",
		middleware.OptionalAuth(d.JWTSecret),
		middleware.Identity(d.GuestStore),
		middleware.AuditActor(),
	)
	cartGroup.GET("", d.Cart.GetCart)
	cartGroup.GET("/ws", d.CartSync.CartWebSocket)
	cartGroup.POST("/items", middleware.CartRateLimit(d.Counters), d.Cart.AddItem)
	cartGroup.PATCH("/items/:key", middleware.CartRateLimit(d.Counters), d.Cart.SetQuantity)
	cartGroup.DELETE("/items/:key", d.Cart.RemoveItem)
	cartGroup.DELETE("", d.Cart.ClearCart)

	// Client connecté
	auth := api.Group("",
		middleware.AuthRequired(d.JWTSecret),
		middleware.Identity(d.GuestStore),
		middleware.AuditActor(),
	)
	auth.POST("/checkout", d.Checkout.Checkout)
	auth.GET("/orders", d.Orders.GetMyOrders)
	auth.GET("/orders/:id", d.Orders.GetOrder)
	auth.GET("/account/profile", d.Profile.GetProfile)
	auth.PUT("/account/profile", d.Profile.UpdateProfile)
	auth.DELETE("/account", d.Profile.DeleteAccount)

	// Back-office
	adminGroup := api.Group("/admin",
		middleware.AuthRequired(d.JWTSecret),
		middleware.RequireAdmin(d.Admins),
		middleware.AuditActor(),
	)
	adminGroup.POST("/products", d.AdminProducts.CreateProduct)
	adminGroup.GET("/products/export", d.AdminProducts.ExportProducts)
	adminGroup.PUT("/products/:id", d.AdminProducts.UpdateProduct)
	adminGroup.DELETE("/products/:id", d.AdminProducts.DeleteProduct)
	adminGroup.GET("/orders", d.AdminOrders.ListOrders)
	adminGroup.GET("/orders/stats", d.AdminOrders.GetStats)
	adminGroup.PATCH("/orders/:id/status", d.AdminOrders.UpdateStatus)
}
