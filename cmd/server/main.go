package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"attendance_backend/internal/config"
	"attendance_backend/internal/database"
	"attendance_backend/internal/middleware"
	"attendance_backend/internal/router"
	"attendance_backend/internal/tokenstore"
	"attendance_backend/pkg/clock"
	"attendance_backend/pkg/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		utils.InitLogger("info", true)
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	utils.InitLogger(cfg.LogLevel, cfg.LogPretty)
	utils.InitJWT(cfg.JWTSecret, cfg.AccessTTL, cfg.RefreshTTL)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.InitDB(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer db.Close()

	var store tokenstore.Store = tokenstore.NewMemoryStore()
	if cfg.RedisURL != "" {
		client, err := tokenstore.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to Redis")
		}
		defer client.Close()
		store = tokenstore.NewRedisStore(client, "")
		utils.LogInfo("Using Redis QR token store")
	} else {
		utils.LogInfo("Using in-memory QR token store")
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(utils.GinLogger())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.CORSAllowedOrigins
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization"}
	corsConfig.ExposeHeaders = []string{"X-QR-Expires-In"}
	corsConfig.AllowCredentials = true
	engine.Use(cors.New(corsConfig))
	engine.Use(middleware.RequestTimeout(cfg.RequestTimeout))

	router.Setup(engine, db, store, clock.Real{}, cfg)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           engine,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		utils.LogInfo("Server starting", map[string]interface{}{
			"port":     cfg.Port,
			"timezone": cfg.Location.String(),
			"qr_ttl":   cfg.QRTokenTTL.String(),
		})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			utils.LogError(err, "Failed to start server")
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	utils.LogInfo("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		utils.LogError(err, "Server forced to shutdown")
	}
}
