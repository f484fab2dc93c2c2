package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"retail-admin/cache"
	"retail-admin/config"
	"retail-admin/database"
	"retail-admin/handlers"
	"retail-admin/logger"
	"retail-admin/menu"
	"retail-admin/middleware"
	"retail-admin/permission"
	"retail-admin/router"
	"retail-admin/utils"
)

func main() {
	cfg := config.LoadConfig()

	zl, err := logger.New(cfg.LogLevel, cfg.IsDevelopment())
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer zl.Sync()

	if err := run(cfg, zl); err != nil {
		zl.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, zl *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	catalog, tree, err := loadPermissionModel(cfg)
	if err != nil {
		return err
	}

	client, err := database.Connect(ctx, cfg)
	if err != nil {
		return err
	}
	defer client.Disconnect(context.Background())
	zl.Info("connected to MongoDB", zap.String("database", cfg.Database))

	db := client.Database(cfg.Database)
	if err := database.EnsureIndexes(ctx, db); err != nil {
		return err
	}
	basicRole, err := database.SeedRoles(ctx, db)
	if err != nil {
		return err
	}

	// Redis is optional: without it every cache read is a miss
	if err := cache.InitRedis(ctx, cache.RedisConfig{
		Host:     cfg.RedisHost,
		Port:     cfg.RedisPort,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}); err != nil {
		zl.Warn("redis unavailable, caching disabled", zap.Error(err))
	} else {
		defer cache.Close()
		utils.NewRedisUpdateJob(db, cfg.CacheRefreshInterval, zl).Start(ctx)
	}

	roles := database.NewRoleStore(db, zl)
	h := handlers.NewHandler(client, cfg.Database, catalog, tree, roles, zl)
	h.BasicRole = basicRole
	h.JWTSecret = cfg.JWTSecret
	h.JWTTTL = cfg.JWTTTL

	guard := middleware.NewGuard(catalog, roles, h.ErrorHdlr, zl)
	r := router.SetupRoutes(h, guard)

	corsHandler := cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "Accept-Language", middleware.RequestIDHeader},
		ExposedHeaders:   []string{middleware.RequestIDHeader, "X-Cache"},
		AllowCredentials: false,
		MaxAge:           300,
	})

	srv := &http.Server{
		Addr:              cfg.Port,
		Handler:           corsHandler(r),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		zl.Info("server running", zap.String("addr", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	zl.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// loadPermissionModel reads the catalog and menu from the configured files,
// falling back to the embedded defaults.
func loadPermissionModel(cfg *config.Config) (*permission.Catalog, []menu.Node, error) {
	catalog := permission.DefaultCatalog()
	if cfg.CatalogFile != "" {
		c, err := permission.LoadCatalog(cfg.CatalogFile)
		if err != nil {
			return nil, nil, err
		}
		catalog = c
	}

	tree := menu.DefaultTree()
	if cfg.MenuFile != "" {
		t, err := menu.LoadTree(cfg.MenuFile)
		if err != nil {
			return nil, nil, err
		}
		tree = t
	}
	return catalog, tree, nil
}
