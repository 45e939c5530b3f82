package main // Entry point package

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/fabrichub/fabrichub/internal/config"
	"github.com/fabrichub/fabrichub/internal/database"
	"github.com/fabrichub/fabrichub/internal/handler"
	"github.com/fabrichub/fabrichub/internal/middleware"
	"github.com/fabrichub/fabrichub/internal/queue"
	"github.com/fabrichub/fabrichub/internal/repository"
	"github.com/fabrichub/fabrichub/internal/router"
	"github.com/fabrichub/fabrichub/internal/token"
)

func main() {
	// .env is a local development convenience; in production the variables
	// come from the environment and the file is absent.
	_ = godotenv.Load()

	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Redis is optional; a nil client degrades the rate limiter and the
	// response cache to pass-through.
	rdb := config.NewRedisClient()

	userRepo := repository.NewUserRepo(db)
	tokenRepo := repository.NewTokenRepo(db)
	productRepo := repository.NewProductRepo(db)
	orderRepo := repository.NewOrderRepo(db)
	addressRepo := repository.NewAddressRepo(db)

	tokens := token.New(token.Config{
		AccessSecret:  cfg.JWTSecret,
		RefreshSecret: cfg.JWTRefreshSecret,
		AccessTTL:     time.Duration(cfg.AccessTTLMin) * time.Minute,
		RefreshTTL:    time.Duration(cfg.RefreshTTLDays) * 24 * time.Hour,
	}, userRepo, tokenRepo)

	authH := handler.NewAuthHandler(userRepo, tokens, cfg.BcryptCost)
	userH := handler.NewUserHandler(userRepo, tokenRepo, cfg.BcryptCost)
	productH := handler.NewProductHandler(productRepo)
	orderH := handler.NewOrderHandler(orderRepo, productRepo)
	addressH := handler.NewAddressHandler(addressRepo)

	e := echo.New()
	limiter := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)
	cache := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)

	router.RegisterRoutes(e)
	router.RegisterAuth(e, authH, tokens, limiter)
	router.RegisterPublic(e, productH, cache)
	router.RegisterCustomer(e, orderH, addressH, userH, tokens)
	router.RegisterSeller(e, productH, orderH, tokens)
	router.RegisterAdmin(e, userH, tokens)

	// Background consumer appends placed orders to logs/orders.log.  It
	// reconnects on its own, so a broker outage never stops the API.
	go func() {
		if err := queue.StartOrderConsumer(); err != nil {
			log.Printf("order-consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)

	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
