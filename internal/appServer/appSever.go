// launching the server, storage, cache, postgres, kafka
package appServer

import (
	"context"
	"crypto/tls"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/uu4k/promotimg-back/config"
	"github.com/uu4k/promotimg-back/internal/database"
	"github.com/uu4k/promotimg-back/internal/pkg/kafka"
	"github.com/uu4k/promotimg-back/internal/pkg/pipeline"
	"github.com/uu4k/promotimg-back/internal/pkg/processor"
	"github.com/uu4k/promotimg-back/internal/pkg/storage"
	"github.com/uu4k/promotimg-back/internal/pkg/workspace"
	"github.com/uu4k/promotimg-back/internal/service"
	"github.com/uu4k/promotimg-back/internal/transport"
	"github.com/uu4k/promotimg-back/pkg/postgres"
	"github.com/uu4k/promotimg-back/pkg/redis"
)

type Server struct {
	httpServer *http.Server
}

func (s *Server) Run(cfg *config.Config, handler http.Handler) error {
	s.httpServer = &http.Server{
		Addr:              cfg.Server.Host + ":" + cfg.Server.Port,
		Handler:           handler,
		MaxHeaderBytes:    1 << 20,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      cfg.Server.Timeout,
		IdleTimeout:       cfg.Server.Idle_timeout,
		ReadHeaderTimeout: 3 * time.Second,
		TLSConfig:         &tls.Config{MinVersion: tls.VersionTLS12},           // ban on outdate TLS certificate
		ErrorLog:          log.New(os.Stderr, "SERVER ERROR: ", log.LstdFlags), // os.Stderr can be replaced with ElsasticSearch in the feature
	}
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// closers run in reverse order on shutdown
type closers []func() error

func (c *closers) add(fn func() error) { *c = append(*c, fn) }

func (c closers) closeAll() {
	for i := len(c) - 1; i >= 0; i-- {
		if err := c[i](); err != nil {
			logrus.Errorf("error occured on closing resource: %s", err.Error())
		}
	}
}

// NewServer blocks until SIGTERM/SIGINT or a server failure. Resources opened
// while building the app are closed on every return path.
func NewServer(cfg *config.Config) error {
	logrus.SetFormatter(new(logrus.JSONFormatter))
	if cfg.Server.Env == "development" {
		logrus.SetLevel(logrus.DebugLevel)
	}

	ctx := context.Background()
	var resources closers
	defer resources.closeAll()

	handler, filesDir, err := buildHandler(ctx, cfg, &resources)
	if err != nil {
		return fmt.Errorf("error occured while building app: %w", err)
	}

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	if err := transport.RegisterValidators(); err != nil {
		return fmt.Errorf("error occured while registering validators: %w", err)
	}

	srv := new(Server)
	serverErr := make(chan error, 1)
	go func() {
		if err := srv.Run(cfg, transport.InitRoutes(handler, filesDir)); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	logrus.Print("App Started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)
	defer signal.Stop(quit)

	select {
	case <-quit:
	case err := <-serverErr:
		return fmt.Errorf("error occured while running http server: %w", err)
	}

	logrus.Print("App Shutting Down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.Timeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logrus.Errorf("error occured on server shutting down: %s", err.Error())
	}
	return nil
}

func buildHandler(ctx context.Context, cfg *config.Config, resources *closers) (*transport.CaptionHandler, string, error) {
	engine, err := processor.NewEngine(cfg.Render)
	if err != nil {
		return nil, "", err
	}
	if cfg.App.WorkDir != "" {
		if err := os.MkdirAll(cfg.App.WorkDir, 0755); err != nil {
			return nil, "", fmt.Errorf("failed to create work dir: %w", err)
		}
	}
	captionPipeline := pipeline.New(engine, workspace.NewFactory(cfg.App.WorkDir))

	uploader, closeUploader, err := storage.NewUploader(ctx, cfg.Storage)
	if err != nil {
		return nil, "", err
	}
	resources.add(closeUploader)

	var filesDir string
	if local, ok := uploader.(storage.FileStorage); ok {
		filesDir = local.BasePath()
	}

	repo, err := newCaptionRepository(ctx, cfg, resources)
	if err != nil {
		return nil, "", err
	}

	producer := kafka.NewProducer(cfg.Kafka)
	resources.add(producer.Close)

	captionService := service.NewCaptionService(captionPipeline, uploader, repo, newURLCache(ctx, cfg, resources), producer)
	return transport.NewCaptionHandler(captionService, cfg.App.MaxBodyBytes), filesDir, nil
}

func newCaptionRepository(ctx context.Context, cfg *config.Config, resources *closers) (database.CaptionRepository, error) {
	if !cfg.Database.Enabled {
		return database.NewFileCaptionRepository(storage.NewFileStorage(cfg.App.RecordsDir, "")), nil
	}

	db, err := postgres.NewPostgresDB(ctx, &cfg.Database)
	if err != nil {
		return nil, err
	}
	resources.add(db.Close)

	if err := postgres.RunMigrations(ctx, db); err != nil {
		return nil, err
	}
	return database.NewCaptionPostgres(db), nil
}

// newURLCache prefers Redis and falls back to process memory when it is unreachable.
func newURLCache(ctx context.Context, cfg *config.Config, resources *closers) database.URLCache {
	if !cfg.Cache.Enabled {
		return database.NewNoopURLCache()
	}
	if cfg.Redis.Host == "" {
		return database.NewMemoryURLCache(cfg.Cache.TTL)
	}

	client, err := redis.NewRedisClient(ctx, &cfg.Redis)
	if err != nil {
		logrus.Warnf("Redis unavailable, using in-memory cache: %v", err)
		return database.NewMemoryURLCache(cfg.Cache.TTL)
	}
	resources.add(client.Close)
	return database.NewRedisURLCache(client, cfg.Cache.TTL)
}
