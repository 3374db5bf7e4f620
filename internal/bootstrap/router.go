package bootstrap

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	httpapi "github.com/projecthub/submission-backend/internal/api/http"
	"github.com/projecthub/submission-backend/internal/api/http/middleware"
	"github.com/projecthub/submission-backend/internal/auth"
	authhttp "github.com/projecthub/submission-backend/internal/auth/http"
	authmw "github.com/projecthub/submission-backend/internal/auth/middleware"
	"github.com/projecthub/submission-backend/internal/metrics"
	notifhttp "github.com/projecthub/submission-backend/internal/notifications/http"
	notifrepo "github.com/projecthub/submission-backend/internal/notifications/repository"
	notifservice "github.com/projecthub/submission-backend/internal/notifications/service"
	"github.com/projecthub/submission-backend/internal/projects/cache"
	projecthttp "github.com/projecthub/submission-backend/internal/projects/http"
	projectrepo "github.com/projecthub/submission-backend/internal/projects/repository"
	projectservice "github.com/projecthub/submission-backend/internal/projects/service"
	"github.com/projecthub/submission-backend/internal/storage/blob"
	"github.com/projecthub/submission-backend/internal/users"
)

type RouterDeps struct {
	ServiceName    string
	Version        string
	AllowedOrigins []string

	// DB backs the user store and the health check. SQL backs projects and notifications.
	DB    *pgxpool.Pool
	SQL   *sql.DB
	Redis *redis.Client
	Blobs blob.Store

	Verifier    auth.TokenVerifier
	Users       auth.UserStore
	AdminEmails []string

	StatusTTL           time.Duration
	UploadMaxBytes      int64
	UploadRatePerMinute int
	UploadBurst         int
}

func BuildRouter(dep RouterDeps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.Metrics())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     dep.AllowedOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Request-Id"},
		ExposeHeaders:    []string{"X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	var pinger httpapi.Pinger
	if dep.DB != nil {
		pinger = dep.DB
	}
	healthHandler := httpapi.NewHealthHandler(dep.ServiceName, dep.Version, pinger)
	healthHandler.RegisterRoutes(r)
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	userStore := dep.Users
	if userStore == nil {
		userStore = users.NewRepo(dep.DB)
	}

	var statusCache projectservice.StatusCache
	if dep.Redis != nil {
		statusCache = cache.NewRedisStatusCache(dep.Redis, dep.StatusTTL)
	}

	projectRepo := projectrepo.NewProjectRepository(dep.SQL)
	notificationSvc := notifservice.NewNotificationService(notifrepo.NewNotificationRepository(dep.SQL))
	statusSvc := projectservice.NewStatusService(projectRepo, statusCache)
	projectSvc := projectservice.NewProjectService(projectRepo, dep.Blobs, notificationSvc, statusSvc, dep.UploadMaxBytes)

	api := r.Group("/api/v1")
	api.Use(authmw.BearerAuth(dep.Verifier))
	api.Use(auth.WithUser(userStore, dep.AdminEmails))

	authhttp.New().Register(api)

	uploadLimiter := middleware.NewKeyedLimiter(dep.UploadRatePerMinute, dep.UploadBurst)
	projectHandler := projecthttp.New(projectSvc, statusSvc)
	projectHandler.Register(api, middleware.UploadRateLimit(uploadLimiter))

	notifhttp.New(notificationSvc).Register(api)

	admin := api.Group("/admin")
	admin.Use(auth.RequireRole(users.RoleAdmin))
	projectHandler.RegisterAdmin(admin)

	return r
}
