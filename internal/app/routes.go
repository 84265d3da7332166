package app

import (
	"Tasker/internal/auth"
	"Tasker/internal/cache"
	"Tasker/internal/config"
	"Tasker/internal/handlers"
	"Tasker/internal/repo"
	"Tasker/internal/schedule"
	"Tasker/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"github.com/swaggo/swag"
	"go.uber.org/zap"
)

// Setup registers all routes on the given engine.
func Setup(r *gin.Engine, cfg config.Config, log *zap.Logger, db *pgxpool.Pool, rdb *redis.Client) {
	r.GET("/", rootHandler(cfg))
	r.GET("/health", healthHandler(cfg))
	r.GET("/version", versionHandler(cfg))
	r.GET("/swagger-doc.json", swaggerDocHandler())
	r.GET("/swagger", func(c *gin.Context) { c.Redirect(302, "/swagger/index.html") })
	r.GET("/swagger/*any", ginSwagger.WrapHandler(
		swaggerFiles.Handler,
		ginSwagger.URL("/swagger-doc.json"),
		ginSwagger.DefaultModelsExpandDepth(-1),
		ginSwagger.PersistAuthorization(true),
	))

	api := r.Group("/api/v1")

	userRepo := repo.NewPGUserRepo(db)
	categoryRepo := repo.NewPGCategoryRepo(db)
	todoRepo := repo.NewPGTodoRepo(db)
	notificationRepo := repo.NewPGNotificationRepo(db)
	eventStore := repo.NewPGEventStore(db)

	listCache := cache.New(rdb, cfg.Redis.DefaultTTL.Duration())
	scheduler := schedule.NewScheduler(schedule.NewRedisQueue(rdb), log)

	tokens := auth.NewTokens(cfg.JWT.Secret, cfg.JWT.TTL.Duration())
	authSvc := service.NewAuthService(userRepo, eventStore)
	authHandler := handlers.NewAuthHandler(tokens, authSvc)
	registerAuthRoutes(api, authHandler)

	protected := api.Group("", auth.RequireAuth(tokens))

	categorySvc := service.NewCategoryService(categoryRepo, userRepo, eventStore, listCache)
	registerCategoryRoutes(protected, handlers.NewCategoryHandler(categorySvc))

	todoSvc := service.NewTodoService(todoRepo, categoryRepo, eventStore, scheduler, listCache)
	registerTodoRoutes(protected, handlers.NewTodoHandler(todoSvc))

	notificationSvc := service.NewNotificationService(notificationRepo)
	registerNotificationRoutes(protected, handlers.NewNotificationHandler(notificationSvc))
}

func rootHandler(cfg config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(200, gin.H{
			"service": "Tasker API",
			"version": cfg.App.Version,
			"env":     cfg.App.Env,
			"docs":    "/swagger/index.html",
			"spec":    "/swagger-doc.json",
			"health":  "/health",
			"api":     "/api/v1",
		})
	}
}

func healthHandler(cfg config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(200, gin.H{"ok": true, "env": cfg.App.Env})
	}
}

func versionHandler(cfg config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(200, gin.H{"version": cfg.App.Version})
	}
}

func swaggerDocHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		doc, err := swag.ReadDoc("swagger")
		if err != nil {
			c.JSON(500, gin.H{"error": err.Error()})
			return
		}
		c.Data(200, "application/json; charset=utf-8", []byte(doc))
	}
}

func registerAuthRoutes(api *gin.RouterGroup, h *handlers.AuthHandler) {
	api.POST("/auth/signup", h.SignUp)
	api.POST("/auth/login", h.Login)
}

func registerCategoryRoutes(api *gin.RouterGroup, h *handlers.CategoryHandler) {
	api.POST("/categories", h.Create)
	api.GET("/categories", h.List)
	api.GET("/categories/:id", h.GetByID)
	api.PATCH("/categories/:id", h.Update)
	api.DELETE("/categories/:id", h.Delete)
}

func registerTodoRoutes(api *gin.RouterGroup, h *handlers.TodoHandler) {
	api.POST("/todos", h.Create)
	api.GET("/todos", h.List)
	api.GET("/todos/:id", h.GetByID)
	api.PATCH("/todos/:id", h.Update)
	api.DELETE("/todos/:id", h.Delete)
	api.POST("/todos/:id/complete", h.Complete)
}

func registerNotificationRoutes(api *gin.RouterGroup, h *handlers.NotificationHandler) {
	api.POST("/notifications", h.Create)
	api.GET("/notifications", h.ListUnread)
	api.POST("/notifications/:id/read", h.MarkAsRead)
}
