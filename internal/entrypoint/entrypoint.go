// Package entrypoint wires the application together and runs the HTTP
// server with graceful shutdown.
package entrypoint

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/shelflib/shelflib/internal/admin"
	"github.com/shelflib/shelflib/internal/auth"
	"github.com/shelflib/shelflib/internal/books"
	"github.com/shelflib/shelflib/internal/cache"
	"github.com/shelflib/shelflib/internal/config"
	"github.com/shelflib/shelflib/internal/database"
	bookrepo "github.com/shelflib/shelflib/internal/database/books"
	libraryrepo "github.com/shelflib/shelflib/internal/database/libraries"
	userrepo "github.com/shelflib/shelflib/internal/database/users"
	shelfhttp "github.com/shelflib/shelflib/internal/http"
	"github.com/shelflib/shelflib/internal/libraries"
	"github.com/shelflib/shelflib/internal/media"
)

// Run builds the full application from configuration and serves until
// interrupted.
func Run(cfg *config.Config, version string) {
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	logrus.Infof("Starting ShelfLib v%s", version)

	db, err := database.NewDatabase(cfg.Database.Path)
	if err != nil {
		logrus.Fatalf("failed to initialize database: %v", err)
	}
	defer db.Close()
	logrus.Infof("Database initialized at %s", cfg.Database.Path)

	if err := os.MkdirAll(cfg.Media.UploadDir, 0o755); err != nil {
		logrus.Fatalf("failed to create upload directory %s: %v", cfg.Media.UploadDir, err)
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if _, err := redisClient.Ping(context.Background()).Result(); err != nil {
			logrus.Fatalf("failed to connect to Redis at %s: %v", cfg.Redis.Addr, err)
		}
		logrus.Infof("Public-libraries cache enabled via Redis at %s", cfg.Redis.Addr)
	}

	if cfg.Media.BaseURL == "" {
		logrus.Warn("MEDIA_BASE_URL is not set; book uploads will fail until it is configured")
	}
	uploader := media.NewClient(cfg.Media.BaseURL, cfg.Media.APIKey)

	usersRepo := userrepo.NewRepository(db.DB)
	booksRepo := bookrepo.NewRepository(db.DB)
	librariesRepo := libraryrepo.NewRepository(db.DB)

	authService := auth.NewService(usersRepo, cfg.Auth)
	bookService := books.NewService(booksRepo, librariesRepo, uploader)
	libraryService := libraries.NewService(librariesRepo, booksRepo, cache.New(redisClient))
	adminService := admin.NewService(db.DB, usersRepo, booksRepo, libraryService)

	router := shelfhttp.NewRouter(shelfhttp.RouterConfig{
		AuthController: auth.NewController(authService, cfg.Auth),
		AuthMiddleware: auth.NewMiddleware(authService, cfg.Auth.TokenSecret),
		Books:          shelfhttp.NewBooksController(bookService, cfg.Media.UploadDir),
		Libraries:      shelfhttp.NewLibrariesController(libraryService),
		Admin:          shelfhttp.NewAdminController(adminService),
	})

	Serve(router, cfg, func(ctx context.Context) {
		if redisClient != nil {
			if err := redisClient.Close(); err != nil {
				logrus.WithError(err).Warn("failed to close Redis client")
			}
		}
	})
}

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

// Serve runs the HTTP server until SIGINT/SIGTERM, then shuts down within
// the configured timeout.
func Serve(router *gin.Engine, cfg *config.Config, onShutdown ShutdownFunc) {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler: router,
	}

	go func() {
		logrus.Infof("Starting server at %s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("listen: %s", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logrus.Infof("Shutdown signal received, waiting up to %v", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if onShutdown != nil {
		onShutdown(ctx)
	}

	if err := srv.Shutdown(ctx); err != nil {
		logrus.Fatalf("Server shutdown: %v", err)
	}

	logrus.Info("Server exiting")
}
