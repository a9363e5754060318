package server

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/commercelens/pixel-backend/config"
	"github.com/commercelens/pixel-backend/docs"
	apiClientHandler "github.com/commercelens/pixel-backend/internal/handler/apiclient"
	metricsHandler "github.com/commercelens/pixel-backend/internal/handler/metrics"
	pixelHandler "github.com/commercelens/pixel-backend/internal/handler/pixel"
	"github.com/commercelens/pixel-backend/internal/repository"
	apiClientService "github.com/commercelens/pixel-backend/internal/service/apiclient"
	identityService "github.com/commercelens/pixel-backend/internal/service/identity"
	ingestService "github.com/commercelens/pixel-backend/internal/service/ingest"
	metricsService "github.com/commercelens/pixel-backend/internal/service/metrics"
	redisService "github.com/commercelens/pixel-backend/internal/service/redis"
	sessionService "github.com/commercelens/pixel-backend/internal/service/session"
	touchpointService "github.com/commercelens/pixel-backend/internal/service/touchpoint"
	"github.com/commercelens/pixel-backend/middleware"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

type RouterHandler struct {
	pixelHandler     *pixelHandler.PixelHandler
	metricsHandler   *metricsHandler.MetricsHandler
	apiClientHandler *apiClientHandler.APIClientHandler
	apiClientService apiClientService.APIClientService
	redis            redisService.RedisService
	rateLimit        int
}

func RunServer(cfg *config.Config, logger *slog.Logger) {
	switch cfg.Env {
	case "prod", "production":
		gin.SetMode(gin.ReleaseMode)
		log.Println("🚀 Starting server in PRODUCTION mode")
	default:
		gin.SetMode(gin.DebugMode)
		log.Println("🔧 Starting server in DEVELOPMENT mode")
	}

	db, err := repository.NewRepository(cfg.DB)
	if err != nil {
		log.Fatal("❌ Failed to connect to database:", err)
	}
	defer db.Close()

	var redisSvc redisService.RedisService
	if svc := redisService.NewRedisService(cfg.Redis); svc != nil {
		redisSvc = svc
	}

	visitorRepo := repository.NewVisitorRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	touchpointRepo := repository.NewTouchpointRepository(db)
	eventRepo := repository.NewEventRepository(db)
	metricsRepo := repository.NewMetricsRepository(db)
	apiClientRepo := repository.NewAPIClientRepository(db)

	identitySvc := identityService.NewIdentityService(visitorRepo)
	sessionSvc := sessionService.NewSessionService(sessionRepo, time.Duration(cfg.Pixel.SessionTimeoutMinutes)*time.Minute)
	touchpointSvc := touchpointService.NewTouchpointService(touchpointRepo)
	pixelSvc := ingestService.NewPixelService(db, identitySvc, sessionSvc, touchpointSvc, sessionRepo, eventRepo, logger)
	metricsSvc := metricsService.NewMetricsService(db, metricsRepo, eventRepo, sessionRepo, visitorRepo, touchpointRepo, redisSvc, cfg.Pixel.RecentEventsLimit, logger)
	apiClientSvc := apiClientService.NewAPIClientService(apiClientRepo)

	routerHandler := &RouterHandler{
		pixelHandler:     pixelHandler.NewPixelHandler(pixelSvc),
		metricsHandler:   metricsHandler.NewMetricsHandler(metricsSvc),
		apiClientHandler: apiClientHandler.NewAPIClientHandler(apiClientSvc),
		apiClientService: apiClientSvc,
		redis:            redisSvc,
		rateLimit:        cfg.Pixel.RateLimitPerMinute,
	}

	r := setupRouter(routerHandler)

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: r,
	}

	go func() {
		log.Printf("✅ Server starting on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("❌ Failed to start server: %v", err)
		}
	}()

	gracefulShutdown(srv)
}

func gracefulShutdown(srv *http.Server) {
	quit := make(chan os.Signal, 1)

	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	<-quit
	log.Println("🔄 Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("❌ Server forced to shutdown: %v", err)
		return
	}

	select {
	case <-ctx.Done():
		log.Println("⚠️ Server shutdown timeout exceeded")
	default:
		log.Println("✅ Server gracefully stopped")
	}
}

func setupRouter(routerHandler *RouterHandler) *gin.Engine {
	r := gin.Default()
	r.SetTrustedProxies([]string{"127.0.0.1", "::1"})

	// The pixel is embedded on arbitrary merchant storefronts, so the
	// ingestion surface has to accept any origin.
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-API-Key, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":    "healthy",
			"timestamp": time.Now().Unix(),
			"service":   "pixel-backend",
		})
	})

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	docs.SwaggerInfo.Title = "Pixel backend API"
	docs.SwaggerInfo.Description = "First-party tracking pixel ingestion and analytics API"
	docs.SwaggerInfo.Version = "1.0"
	docs.SwaggerInfo.BasePath = "/api/v1"
	docs.SwaggerInfo.Schemes = []string{"http", "https"}

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	publicRoutes := r.Group("/api/v1/pixel")
	{
		publicRoutes.POST("/track",
			middleware.RateLimitMiddleware(routerHandler.redis, routerHandler.rateLimit, time.Minute),
			routerHandler.pixelHandler.Track)

		readRoutes := publicRoutes.Group("")
		readRoutes.Use(middleware.APIKeyMiddleware(routerHandler.apiClientService))
		{
			readRoutes.GET("/metrics", routerHandler.metricsHandler.GetMetrics)
			readRoutes.GET("/visitors/:id/journey", routerHandler.metricsHandler.GetVisitorJourney)
		}
	}

	adminRoutes := r.Group("/api/v1/admin")
	{
		adminRoutes.POST("/clients", routerHandler.apiClientHandler.CreateClient)

		protectedAdmin := adminRoutes.Group("")
		protectedAdmin.Use(middleware.APIKeyMiddleware(routerHandler.apiClientService))
		{
			protectedAdmin.GET("/clients", routerHandler.apiClientHandler.GetClients)
			protectedAdmin.DELETE("/clients/:id", routerHandler.apiClientHandler.DeactivateClient)
		}
	}

	return r
}
