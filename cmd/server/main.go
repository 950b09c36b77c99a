package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"perfumeria_back_end/internal/account"
	"perfumeria_back_end/internal/cache"
	"perfumeria_back_end/internal/cart"
	"perfumeria_back_end/internal/checkout"
	"perfumeria_back_end/internal/config"
	"perfumeria_back_end/internal/database"
	"perfumeria_back_end/internal/handlers/admin"
	"perfumeria_back_end/internal/handlers/product"
	"perfumeria_back_end/internal/handlers/user"
	"perfumeria_back_end/internal/inventory"
	"perfumeria_back_end/internal/media"
	"perfumeria_back_end/internal/middleware"
	"perfumeria_back_end/internal/orders"
	"perfumeria_back_end/internal/repository"
	"perfumeria_back_end/internal/routes"
	"perfumeria_back_end/internal/search"
	"perfumeria_back_end/internal/utils"
)

const (
	cartSweepEvery = 10 * time.Minute
	cartMaxIdle    = 2 * time.Hour
)

func main() {
	cfg := config.Load()
	if cfg.JWTSecret == "" {
		log.Fatal("❌ JWT_SECRET manquant dans .env")
	}
	if cfg.SessionSecret == "" {
		log.Fatal("❌ SESSION_SECRET manquant dans .env")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	clients, err := database.Connect(ctx, cfg)
	if err != nil {
		log.Fatalf("❌ Connexion aux bases impossible: %v", err)
	}
	defer clients.Close()

	productImages, avatars, err := blobStores(ctx, cfg, clients)
	if err != nil {
		log.Fatalf("❌ Stockage objet: %v", err)
	}

	// ==== SERVICES ====
	repo := repository.New(clients.Scylla)
	auditor := utils.NewAuditor(repo)
	mailer := utils.NewMailer(cfg)
	if cfg.SMTPHost == "" {
		log.Println("⚠️ SMTP non configuré, les e-mails clients sont désactivés")
	}
	notifier := utils.NewNotifier(mailer, cfg)
	productCache := cache.New(clients.Redis)

	cartPersister := cart.NewRedisPersister(clients.Redis)
	carts := cart.NewSessions(cartPersister)
	go carts.RunSweeper(ctx, cartSweepEvery, cartMaxIdle)

	catalog := inventory.NewService(repo, media.NewManager(productImages), productCache, search.New(clients.Elastic), auditor)
	accounts := account.NewService(repo, media.NewManager(avatars), carts, auditor)
	orchestrator := checkout.New(repo, carts, checkout.NewRedisLocker(clients.Redis, checkout.DefaultLockTTL), notifier)
	history := orders.NewHistory(repo)
	workflow := orders.NewWorkflow(repo, repo, notifier, auditor)

	// ==== HTTP ====
	r := gin.Default()
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	routes.RegisterRoutes(r, routes.Deps{
		JWTSecret:     cfg.JWTSecret,
		GuestStore:    middleware.NewGuestStore(cfg.SessionSecret, cfg.CookieSecure),
		Counters:      productCache,
		Admins:        accounts,
		Cart:          user.NewCartHandler(carts, catalog),
		CartSync:      user.NewCartSync(carts, cartPersister, cfg.CORSOrigins),
		Checkout:      user.NewCheckoutHandler(orchestrator, auditor),
		Orders:        user.NewOrdersHandler(history),
		Profile:       user.NewProfileHandler(accounts),
		Products:      product.NewHandler(catalog),
		AdminProducts: admin.NewProductsHandler(catalog),
		AdminOrders:   admin.NewOrdersHandler(history, workflow),
	})

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: r}
	go func() {
		log.Println("🚀 Serveur Perfumería lancé sur le port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("❌ Serveur HTTP: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("🔌 Arrêt du serveur...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("⚠️ Arrêt forcé: %v", err)
	}
}

// blobStores choisit le stockage des images selon STORAGE_DRIVER.
func blobStores(ctx context.Context, cfg config.Config, clients *database.Clients) (products, avatars media.BlobStore, err error) {
	if cfg.StorageDriver == "s3" {
		p, err := media.NewS3Store(ctx, cfg.S3Region, cfg.ProductsBucket, cfg.PublicBaseURL)
		if err != nil {
			return nil, nil, err
		}
		a, err := media.NewS3Store(ctx, cfg.S3Region, cfg.AvatarsBucket, cfg.PublicBaseURL)
		if err != nil {
			return nil, nil, err
		}
		log.Println("✅ Stockage des images : S3")
		return p, a, nil
	}
	log.Println("✅ Stockage des images : MinIO")
	return media.NewMinIOStore(clients.MinIO, cfg.ProductsBucket, cfg.PublicBaseURL),
		media.NewMinIOStore(clients.MinIO, cfg.AvatarsBucket, cfg.PublicBaseURL), nil
}
