package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	_ "taskhub/docs"
	"taskhub/internal/auth"
	"taskhub/internal/config"
	"taskhub/internal/handler"
	"taskhub/internal/lifecycle"
	"taskhub/internal/middleware"
	"taskhub/internal/model"
	"taskhub/internal/notify"
	"taskhub/internal/repository"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const shutdownTimeout = 5 * time.Second

type Server struct {
	Engine *gin.Engine
	DB     *gorm.DB
	Config *config.Config
	Hub    *notify.Hub

	redis *redis.Client
	log   zerolog.Logger
}

// OpenDB connects to postgres. Timestamps are stored in UTC.
func OpenDB(cfg *config.Config) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger:  gormlogger.Default.LogMode(gormlogger.Warn),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, fmt.Errorf("connect to DB: %w", err)
	}
	return db, nil
}

// New wires repositories, the lifecycle engine, the notification hub and
// every route on top of db.
func New(cfg *config.Config, db *gorm.DB, log zerolog.Logger) *Server {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(log))
	if len(cfg.CORSOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.CORSOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	s := &Server{Engine: r, DB: db, Config: cfg, log: log}
	s.Hub = notify.NewHub(log, originChecker(cfg.CORSOrigins))

	userRepo := repository.NewUserRepository(db)
	engine := lifecycle.New(
		repository.NewTaskRepository(db),
		repository.NewProjectRepository(db),
		repository.NewActivityRepository(db),
		repository.NewTransactor(db),
		s.Hub,
		cfg.HardDeleteSecret,
		lifecycle.WithLogger(log),
	)

	issuer := auth.NewTokenIssuer(cfg.JWTSecret, cfg.JWTExpiry)
	userHandler := handler.NewUserHandler(userRepo, issuer, log)
	taskHandler := handler.NewTaskHandler(engine, log)
	projectHandler := handler.NewProjectHandler(engine, log)
	activityHandler := handler.NewActivityHandler(engine, log)
	wsHandler := handler.NewWSHandler(s.Hub, log)

	requireAuth := middleware.JWTAuthMiddleware(cfg.JWTSecret)
	managerOnly := middleware.RequireRole(model.RoleManager)

	r.GET("/", handler.Health)
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	r.GET("/ws", middleware.JWTAuthMiddleware(cfg.JWTSecret, middleware.AllowQueryToken()), wsHandler.Subscribe)

	api := r.Group("/api")

	authRoutes := api.Group("/auth")
	if cfg.RedisAddr != "" {
		s.redis = redis.NewClient(&redis.Options{
			Addr:         cfg.RedisAddr,
			DialTimeout:  2 * time.Second,
			ReadTimeout:  time.Second,
			WriteTimeout: time.Second,
		})
		limiter := middleware.NewSlidingWindowLimiter(s.redis, "taskhub:ratelimit:auth:", cfg.RateLimitRequests, cfg.RateLimitWindow)
		authRoutes.Use(middleware.RateLimit(limiter, log))
	}
	authRoutes.POST("/signup", userHandler.Register)
	authRoutes.POST("/login", userHandler.Login)
	authRoutes.GET("/users", requireAuth, managerOnly, userHandler.List)

	authorized := api.Group("/")
	authorized.Use(requireAuth)
	{
		// Task routes
		authorized.POST("/tasks", taskHandler.Create)
		authorized.GET("/tasks/my", taskHandler.ListMine)
		authorized.GET("/tasks/created", taskHandler.ListCreated)
		authorized.GET("/tasks/trash", taskHandler.ListTrash)
		authorized.GET("/tasks/:id", taskHandler.GetByID)
		authorized.PUT("/tasks/:id", taskHandler.Update)
		authorized.PUT("/tasks/:id/trash", taskHandler.Trash)
		authorized.PUT("/tasks/:id/restore", taskHandler.Restore)
		authorized.DELETE("/tasks/:id/permanent", taskHandler.Delete)

		// Project routes
		authorized.POST("/projects", projectHandler.Create)
		authorized.GET("/projects", projectHandler.GetAll)
		authorized.GET("/projects/trash", projectHandler.ListTrash)
		authorized.PUT("/projects/:id", projectHandler.Update)
		authorized.PUT("/projects/:id/trash", projectHandler.Trash)
		authorized.PUT("/projects/:id/restore", projectHandler.Restore)
		authorized.DELETE("/projects/:id/permanent", projectHandler.Delete)

		// Activity routes
		authorized.GET("/activity", activityHandler.List)
		authorized.GET("/activity/user/:userId", activityHandler.ListByUser)
		authorized.GET("/activity/trash", activityHandler.ListTrash)
		authorized.PUT("/activity/:id/trash", activityHandler.Trash)
		authorized.PUT("/activity/:id/restore", activityHandler.Restore)
		authorized.DELETE("/activity/:id/permanent", activityHandler.Delete)
	}

	return s
}

// originChecker accepts WebSocket upgrades from the CORS origins. With no
// origins configured the upgrader's same-origin check applies.
func originChecker(origins []string) func(*http.Request) bool {
	if len(origins) == 0 {
		return nil
	}
	allowed := make(map[string]struct{}, len(origins))
	for _, o := range origins {
		allowed[o] = struct{}{}
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		_, ok := allowed[origin]
		return ok
	}
}

// Run serves HTTP until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	hubCtx, stopHub := context.WithCancel(context.Background())
	defer stopHub()
	go s.Hub.Run(hubCtx)

	srv := &http.Server{
		Addr:    ":" + s.Config.ServerPort,
		Handler: s.Engine,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("port", s.Config.ServerPort).Msg("server running")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
	case <-ctx.Done():
	}
	s.log.Info().Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	err := srv.Shutdown(shutdownCtx)

	stopHub()
	s.Hub.Wait()
	if s.redis != nil {
		if cerr := s.redis.Close(); cerr != nil {
			s.log.Warn().Err(cerr).Msg("close redis")
		}
	}
	if err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	s.log.Info().Msg("server exited properly")
	return nil
}
