package http

import (
	"context"
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"studyshelf/internal/bootstrap"
	"studyshelf/internal/observability"
	mysqlClient "studyshelf/internal/platform/mysql"
	rabbitmqClient "studyshelf/internal/platform/rabbitmq"
	redisClient "studyshelf/internal/platform/redis"
	"studyshelf/internal/transport/http/handler"
	"studyshelf/internal/transport/http/middleware"
)

func NewRouter(app *bootstrap.App) *gin.Engine {
	gin.SetMode(app.Config.App.GinMode)
	router := gin.New()
	router.Use(
		gin.Recovery(),
		middleware.RequestLog(app.Log, app.Metrics),
		cors.New(corsConfig(app.Config.App.CORSOrigins)),
	)

	healthHandler := handler.NewHealthHandler(
		app.Config.App.Name,
		app.Config.App.Env,
		app.StartedAt,
		app.Collections.IDs(),
		probes(app),
	)
	router.GET("/healthz", healthHandler.Health)
	router.GET("/metrics", gin.WrapH(observability.Handler(app.Registry)))

	githubHandler := handler.NewGitHubHandler(app.Browser, app.Search, app.Collections.IDs(), app.Log)
	aiHandler := handler.NewAIHandler(app.Tutor, app.Log)
	resourceHandler := handler.NewResourceHandler(app.Resources, app.Log)

	api := router.Group("/api")
	api.Use(middleware.RateLimit(app.Config.RateLimit.Requests, app.Config.RateLimitWindow()))

	githubGroup := api.Group("/github")
	githubGroup.GET("/search", githubHandler.Search)
	githubGroup.GET("/:collectionId", githubHandler.Browse)
	githubGroup.GET("/:collectionId/*path", githubHandler.Browse)

	aiGroup := api.Group("/ai")
	aiGroup.POST("/chat", aiHandler.Chat)
	aiGroup.POST("/quiz", aiHandler.Quiz)

	resourceGroup := api.Group("/resources")
	resourceGroup.GET("", resourceHandler.List)
	resourceGroup.GET("/:id", resourceHandler.Get)
	resourceGroup.DELETE("/:id", middleware.AuthJWT(app.Config.Auth.JWTSecret), resourceHandler.Delete)

	return router
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.DefaultConfig()
	cfg.AllowAllOrigins = len(origins) == 0 || slices.Contains(origins, "*")
	if !cfg.AllowAllOrigins {
		cfg.AllowOrigins = origins
	}
	cfg.AllowHeaders = append(cfg.AllowHeaders, "Authorization")
	cfg.MaxAge = 12 * time.Hour
	return cfg
}

func probes(app *bootstrap.App) []handler.Probe {
	out := []handler.Probe{{
		Name: "mysql",
		Check: func(ctx context.Context) error {
			return mysqlClient.Ping(ctx, app.MySQL)
		},
	}}

	redisProbe := handler.Probe{Name: "redis"}
	if app.Redis != nil {
		redisProbe.Check = func(ctx context.Context) error {
			return redisClient.Ping(ctx, app.Redis)
		}
	}
	mqProbe := handler.Probe{Name: "rabbitmq"}
	if app.MQConn != nil {
		mqProbe.Check = func(context.Context) error {
			return rabbitmqClient.Ping(app.MQConn)
		}
	}
	return append(out, redisProbe, mqProbe)
}
