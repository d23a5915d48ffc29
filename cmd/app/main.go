package main

import (
	"database/sql"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	jwtware "github.com/gofiber/jwt/v2"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/aryankhatri/storefront-backend/internal/address"
	"github.com/aryankhatri/storefront-backend/internal/cart"
	"github.com/aryankhatri/storefront-backend/internal/catalog"
	"github.com/aryankhatri/storefront-backend/internal/commerce"
	"github.com/aryankhatri/storefront-backend/internal/config"
	"github.com/aryankhatri/storefront-backend/internal/gateway"
	"github.com/aryankhatri/storefront-backend/internal/order"
	"github.com/aryankhatri/storefront-backend/internal/settlement"
	"github.com/aryankhatri/storefront-backend/internal/shipping"
	"github.com/aryankhatri/storefront-backend/internal/user"
	"github.com/aryankhatri/storefront-backend/internal/wishlist"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	log, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	app := fiber.New()
	setupCORS(app)
	app.Use(requestLogger(log))

	db := mustOpenDB(cfg.DatabaseURL, log)
	defer db.Close()

	// repositories and their schemas
	userRepo := user.NewPostgresRepository(db)
	addressRepo := address.NewPostgresRepository(db)
	cartRepo := cart.NewPostgresRepository(db)
	wishlistRepo := wishlist.NewPostgresRepository(db)
	orderRepo := order.NewPostgresRepository(db)
	for name, ensure := range map[string]func() error{
		"users":     userRepo.EnsureSchema,
		"addresses": addressRepo.EnsureSchema,
		"carts":     cartRepo.EnsureSchema,
		"wishlists": wishlistRepo.EnsureSchema,
		"orders":    orderRepo.EnsureSchema,
	} {
		if err := ensure(); err != nil {
			log.Fatal("schema setup failed", zap.String("table", name), zap.Error(err))
		}
	}

	// upstream clients
	gatewayClient := gateway.NewClient(cfg.GatewayBaseURL, cfg.GatewayKeyID, cfg.GatewayKeySecret, log)
	commerceClient := commerce.NewClient(cfg.CommerceBaseURL, cfg.CommerceToken, log)
	carrierClient := shipping.NewClient(cfg.CarrierBaseURL, cfg.CarrierEmail, cfg.CarrierPassword, log)

	// services
	userService := user.NewService(userRepo)
	addressService := address.NewService(addressRepo)
	cartService := cart.NewService(cartRepo)
	wishlistService := wishlist.NewService(wishlistRepo)
	orderService := order.NewService(orderRepo)
	catalogService := catalog.NewService(commerceClient, 5*time.Minute)
	shippingService := shipping.NewService(carrierClient)

	settlementService := settlement.NewService(
		gatewayClient, commerceClient,
		pendingStore(cfg, db, log),
		orderService, cartService,
		settlement.Config{
			Secret:          cfg.GatewayKeySecret,
			Currency:        cfg.Currency,
			MinorUnitFactor: cfg.MinorUnitFactor,
		},
		log,
	)

	// public surface
	user.NewHandler(userService).RegisterPublicRoutes(app)
	catalog.NewHandler(catalogService).RegisterPublicRoutes(app)
	shipping.NewHandler(shippingService).RegisterPublicRoutes(app)

	// everything below requires a token, except checkout: guests check out
	// with a session key, so those paths skip JWT when no token is sent.
	app.Use(jwtware.New(jwtware.Config{
		SigningKey: []byte(cfg.JWTSecret),
		Filter: func(c *fiber.Ctx) bool {
			if strings.HasPrefix(c.Path(), "/api/v1/checkout") {
				return c.Get("Authorization") == ""
			}
			return false
		},
	}))

	settlement.NewHandler(settlementService).RegisterRoutes(app)
	user.NewHandler(userService).RegisterProtectedRoutes(app)
	address.NewHandler(addressService).RegisterProtectedRoutes(app)
	cart.NewHandler(cartService).RegisterProtectedRoutes(app)
	wishlist.NewHandler(wishlistService).RegisterProtectedRoutes(app)
	order.NewHandler(orderService).RegisterProtectedRoutes(app)

	log.Info("listening", zap.String("addr", cfg.Addr))
	if err := app.Listen(cfg.Addr); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}

func setupCORS(app *fiber.App) {
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,HEAD,PUT,DELETE,PATCH",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))
}

func requestLogger(log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		log.Info("request",
			zap.String("method", c.Method()),
			zap.String("path", c.OriginalURL()),
			zap.Int("status", c.Response().StatusCode()),
			zap.Duration("took", time.Since(start)))
		return err
	}
}

func mustOpenDB(url string, log *zap.Logger) *sql.DB {
	if url == "" {
		log.Fatal("DATABASE_URL is not set")
	}

	db, err := sql.Open("pgx", url)
	if err != nil {
		log.Fatal("open database", zap.Error(err))
	}
	if err := db.Ping(); err != nil {
		log.Fatal("ping database", zap.Error(err))
	}
	return db
}

// pendingStore picks the durable backend for pending settlements. Postgres is
// the default; Redis suits deployments that already run one for sessions.
func pendingStore(cfg config.Config, db *sql.DB, log *zap.Logger) settlement.Store {
	switch cfg.PendingStore {
	case "redis":
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			log.Fatal("parse REDIS_URL", zap.Error(err))
		}
		return settlement.NewRedisStore(redis.NewClient(opts))
	default:
		store := settlement.NewPostgresStore(db)
		if err := store.EnsureSchema(); err != nil {
			log.Fatal("schema setup failed", zap.String("table", "pending_settlements"), zap.Error(err))
		}
		return store
	}
}
