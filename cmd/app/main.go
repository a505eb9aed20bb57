package main

import (
	"context"
	"database/sql"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"golang.org/x/time/rate"

	"github.com/wichananm65/campus-market-backend/internal/apperr"
	"github.com/wichananm65/campus-market-backend/internal/cache"
	"github.com/wichananm65/campus-market-backend/internal/category"
	"github.com/wichananm65/campus-market-backend/internal/config"
	"github.com/wichananm65/campus-market-backend/internal/database"
	"github.com/wichananm65/campus-market-backend/internal/health"
	"github.com/wichananm65/campus-market-backend/internal/middleware"
	"github.com/wichananm65/campus-market-backend/internal/order"
	"github.com/wichananm65/campus-market-backend/internal/product"
	"github.com/wichananm65/campus-market-backend/internal/seed"
	"github.com/wichananm65/campus-market-backend/internal/user"
)

type stores struct {
	db       *sql.DB
	users    user.Repository
	products product.Repository
	orders   order.Repository
}

func main() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	st, err := openStores(cfg)
	if err != nil {
		log.Fatalf("failed to open store: %v", err)
	}
	if st.db != nil {
		defer st.db.Close()
	}

	var productCache cache.Cache
	if cfg.RedisURL != "" {
		productCache, err = cache.NewRedisCache(cfg.RedisURL)
		if err != nil {
			// the cache is optional; serve straight from the store
			log.Warnw("redis unavailable, product cache disabled", "error", err)
			productCache = nil
		}
	}

	userService := user.NewService(st.users, cfg.BcryptCost)
	productService := product.NewService(st.products, productCache, cfg.CacheTTL)
	orderService := order.NewService(st.orders, productService)

	app := fiber.New(fiber.Config{
		AppName:      "campus-market",
		ErrorHandler: apperr.Handler,
	})
	middleware.Setup(app, cfg.CORSAllowOrigins)

	var pinger health.Pinger
	if st.db != nil {
		pinger = st.db
	}
	health.NewHandler(pinger).RegisterPublicRoutes(app)

	limiter := middleware.NewRateLimiter(rate.Limit(cfg.RateLimitAuthRPS), cfg.RateLimitAuthBurst)
	app.Use("/auth", limiter.Handler())

	auth := user.NewAuthMiddleware(cfg.JWTSecret, cfg.AuthRequired)
	user.NewHandler(userService, cfg.JWTSecret, cfg.JWTTTL).RegisterPublicRoutes(app)
	category.NewHandler(category.NewService()).RegisterPublicRoutes(app)
	product.NewHandler(productService).RegisterRoutes(app, auth)
	order.NewHandler(orderService).RegisterProtectedRoutes(app, auth)

	if cfg.SeedData {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		_, err := seed.NewLoader(userService, productService, orderService).Run(ctx)
		cancel()
		if err != nil {
			log.Fatalf("failed to load sample data: %v", err)
		}
	}

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		log.Info("shutting down")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.Errorw("shutdown failed", "error", err)
		}
	}()

	log.Infof("starting server on %s (store=%s)", cfg.Addr, cfg.Store)
	if err := app.Listen(cfg.Addr); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}

// openStores picks the repositories for cfg.Store. The memory store keeps the
// same foreign key behaviour by checking user existence through the user repo.
func openStores(cfg config.Config) (stores, error) {
	if cfg.Store == config.StoreMemory {
		users := user.NewInMemoryRepository(nil)
		userExists := func(ctx context.Context, id int64) bool {
			_, err := users.GetByID(ctx, id)
			return err == nil
		}

		products := product.NewInMemoryRepository(nil)
		products.SellerExists = userExists
		orders := order.NewInMemoryRepository(products, nil)
		orders.BuyerExists = userExists

		log.Warn("using in-memory store; data is lost on restart")
		return stores{users: users, products: products, orders: orders}, nil
	}

	db, err := database.Open(cfg.DBDriver, cfg.DatabaseURL)
	if err != nil {
		return stores{}, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := database.Migrate(ctx, db); err != nil {
		db.Close()
		return stores{}, err
	}

	return stores{
		db:       db,
		users:    user.NewPostgresRepository(db),
		products: product.NewPostgresRepository(db),
		orders:   order.NewPostgresRepository(db),
	}, nil
}
