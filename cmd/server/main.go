package main

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"barbershop-service/internal/app"
	"barbershop-service/internal/config"
	"barbershop-service/internal/logger"
	"barbershop-service/internal/metrics"
	"barbershop-service/internal/server"
)

func main() {
	config.LoadConfig()
	log := logger.Get()
	defer log.Sync() //nolint:errcheck

	ctx := context.Background()

	if config.AppConfig.DatabaseURL == "" {
		log.Fatal("DATABASE_URL required")
	}
	pool, err := pgxpool.New(ctx, config.AppConfig.DatabaseURL)
	if err != nil {
		log.Fatal("failed to connect to db", zap.Error(err))
	}
	defer pool.Close()

	rdb := redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisDB,
	})
	{
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := rdb.Ping(pingCtx).Err(); err != nil {
			log.Warn("redis unavailable, view cache disabled", zap.Error(err))
			rdb = nil
		}
		cancel()
	}

	metrics.Register()

	flows := app.NewFlowStore(30 * time.Minute)
	flows.StartCleanup(ctx, 5*time.Minute)

	appInstance := &app.App{
		Store:    app.NewPGStore(pool),
		Views:    app.NewViewCache(rdb, time.Duration(config.AppConfig.ViewCacheTTL)*time.Second, log),
		Flows:    flows,
		Calendar: app.NewCalendarSync(),
		Log:      log,
	}

	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(gin.Logger())

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// OAuth2 callback (must stay outside the API auth)
	router.GET("/oauth2callback", appInstance.GoogleOAuth2CallbackHandler)

	api := router.Group("/api")
	api.Use(app.AuthOptional(config.AppConfig.JWTSecret))
	{
		api.GET("/barbershops", appInstance.ListBarberShopsHandler)
		api.GET("/barbershops/:id", appInstance.GetBarberShopHandler)
		api.GET("/barbershops/:id/services", appInstance.ListShopServicesHandler)
		api.GET("/services/:id/slots", appInstance.GetSlotsHandler)

		flow := api.Group("/booking-flow")
		{
			flow.POST("/open", appInstance.OpenFlowHandler)
			flow.POST("/select", appInstance.SelectSlotHandler)
			flow.POST("/close", appInstance.CloseFlowHandler)
		}

		authed := api.Group("")
		authed.Use(app.AuthRequired(config.AppConfig.JWTSecret))
		{
			authed.POST("/bookings", appInstance.CreateBookingHandler)
			authed.GET("/bookings", appInstance.ListBookingsHandler)
			authed.GET("/calendar/auth", appInstance.GoogleAuthHandler)
		}
	}

	log.Info("starting server", zap.String("port", config.AppConfig.AppPort))
	server.Run(router, config.AppConfig.AppPort)
}
