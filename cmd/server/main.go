package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"inventory_back_end/internal/cache"
	"inventory_back_end/internal/config"
	"inventory_back_end/internal/database"
	"inventory_back_end/internal/logger"
	"inventory_back_end/internal/middleware"
	"inventory_back_end/internal/repository"
	"inventory_back_end/internal/routes"
	"inventory_back_end/internal/services"
)

func main() {
	cfg := config.Load()

	zl, err := logger.Init(cfg.IsProduction())
	if err != nil {
		log.Fatalf("❌ Impossible d'initialiser le logger: %v", err)
	}
	defer logger.Sync()

	if !cfg.EnvFileLoaded {
		zap.S().Info("ℹ️ Pas de fichier .env, lecture de l'environnement seul")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	conns, err := database.ConnectDatabases(ctx, cfg)
	if err != nil {
		zap.S().Fatalf("❌ Connexion aux bases: %v", err)
	}
	defer conns.Close()

	repo, err := buildRepository(ctx, cfg, conns)
	if err != nil {
		zap.S().Fatalf("❌ Initialisation du repository: %v", err)
	}

	deps := routes.Deps{Config: cfg, Redis: conns.Redis}
	var opts []services.Option

	// Redis : cache des listes + diffusion des événements entre instances
	if conns.Redis != nil {
		opts = append(opts, services.WithCache(cache.NewProductListCache(conns.Redis, cfg.ProductCacheTTL)))
		bus := services.NewRedisEventBus(conns.Redis)
		opts = append(opts, services.WithEvents(bus))
		deps.Events = bus
	} else {
		bus := services.NewLocalEventBus()
		opts = append(opts, services.WithEvents(bus))
		deps.Events = bus
	}

	if conns.Elastic != nil {
		index := services.NewProductIndex(conns.Elastic, cfg.ElasticIndex)
		if err := index.EnsureIndex(ctx); err != nil {
			zap.S().Warnf("⚠️ Index Elasticsearch indisponible, recherche sur la base: %v", err)
		} else {
			opts = append(opts, services.WithSearchIndex(index))
		}
	}

	if conns.MinIO != nil {
		deps.Icons = services.NewIconAssets(conns.MinIO, cfg.MinioBucket, cfg.IconURLTTL)
	}

	deps.Products = services.NewProductService(repo, opts...)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(zl))
	routes.RegisterRoutes(r, deps)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		zap.S().Infof("🚀 Serveur inventaire lancé sur le port %s (store %s)", cfg.Port, cfg.StoreDriver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zap.S().Fatalf("❌ Serveur: %v", err)
		}
	}()

	<-ctx.Done()
	zap.S().Info("🛑 Arrêt du serveur...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zap.S().Errorf("❌ Arrêt forcé: %v", err)
	}

	// Laisser finir les indexations Elastic en cours
	deps.Products.Wait()
}

func buildRepository(ctx context.Context, cfg *config.Config, conns *database.Connections) (repository.ProductRepository, error) {
	switch cfg.StoreDriver {
	case config.DriverScylla:
		return repository.NewScyllaProductRepository(conns.Scylla), nil
	case config.DriverMemory:
		return repository.NewMemoryProductRepository(), nil
	default:
		if err := repository.EnsureMongoIndexes(ctx, conns.Mongo); err != nil {
			return nil, err
		}
		return repository.NewMongoProductRepository(conns.Mongo), nil
	}
}
