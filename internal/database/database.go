package database

import (
	"context"
	"fmt"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/gocql/gocql"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"inventory_back_end/internal/config"
)

// Connections regroupe les clients ouverts au démarrage.
// Seul le store choisi par STORE_DRIVER est obligatoire ; Redis, Elasticsearch
// et MinIO restent nil lorsqu'ils ne sont pas configurés.
type Connections struct {
	Mongo   *mongo.Database
	Scylla  *gocql.Session
	Redis   *redis.Client
	Elastic *elasticsearch.Client
	MinIO   *minio.Client

	mongoClient *mongo.Client
}

// --- Initialisation ---
func ConnectDatabases(ctx context.Context, cfg *config.Config) (*Connections, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	conns := &Connections{}

	// 1. Store principal
	switch cfg.StoreDriver {
	case config.DriverMongo:
		if err := conns.connectMongo(ctx, cfg); err != nil {
			return nil, err
		}
	case config.DriverScylla:
		if err := conns.connectScylla(cfg); err != nil {
			return nil, err
		}
	case config.DriverMemory:
		zap.S().Warn("⚠️ Store mémoire : les produits ne survivront pas au redémarrage")
	default:
		return nil, fmt.Errorf("STORE_DRIVER inconnu: %q", cfg.StoreDriver)
	}

	// 2. Redis (cache + rate limit + événements)
	if cfg.RedisHost != "" {
		if err := conns.connectRedis(ctx, cfg); err != nil {
			conns.Close()
			return nil, err
		}
	} else {
		zap.S().Warn("⚠️ REDIS_HOST non configuré : cache et rate limit désactivés")
	}

	// 3. Elasticsearch (recherche)
	if cfg.ElasticURL != "" {
		if err := conns.connectElastic(cfg); err != nil {
			conns.Close()
			return nil, err
		}
	}

	// 4. MinIO (glyphes des icônes)
	if cfg.MinioEndpoint != "" {
		if err := conns.connectMinIO(ctx, cfg); err != nil {
			conns.Close()
			return nil, err
		}
	}

	zap.S().Info("✅ Connexions initialisées")
	return conns, nil
}

// =============================================
// MONGODB
// =============================================
func (c *Connections) connectMongo(ctx context.Context, cfg *config.Config) error {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		return fmt.Errorf("connexion MongoDB: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return fmt.Errorf("ping MongoDB: %w", err)
	}

	c.mongoClient = client
	c.Mongo = client.Database(cfg.MongoDatabase)
	zap.S().Infof("✅ Connecté à MongoDB (base %s)", cfg.MongoDatabase)
	return nil
}

// =============================================
// SCYLLA DB
// =============================================
func createScyllaCluster(cfg *config.Config) *gocql.ClusterConfig {
	cluster := gocql.NewCluster(cfg.ScyllaHosts...)
	cluster.Keyspace = cfg.ScyllaKeyspace
	cluster.Consistency = gocql.Quorum
	cluster.Timeout = 5 * time.Second
	cluster.NumConns = 20
	cluster.MaxWaitSchemaAgreement = 30 * time.Second
	cluster.ReconnectInterval = 1 * time.Second
	if cfg.ScyllaUser != "" {
		cluster.Authenticator = gocql.PasswordAuthenticator{
			Username: cfg.ScyllaUser,
			Password: cfg.ScyllaPassword,
		}
	}
	cluster.PoolConfig.HostSelectionPolicy = gocql.TokenAwareHostPolicy(gocql.RoundRobinHostPolicy())
	return cluster
}

func (c *Connections) connectScylla(cfg *config.Config) error {
	session, err := createScyllaCluster(cfg).CreateSession()
	if err != nil {
		return fmt.Errorf("session ScyllaDB pour %s: %w", cfg.ScyllaKeyspace, err)
	}

	if cfg.ScyllaAutoMigrate {
		if err := EnsureProductSchema(session); err != nil {
			session.Close()
			return err
		}
	}

	c.Scylla = session
	zap.S().Infof("✅ Session ScyllaDB pour keyspace '%s'", cfg.ScyllaKeyspace)
	return nil
}

// =============================================
// REDIS
// =============================================
func (c *Connections) connectRedis(ctx context.Context, cfg *config.Config) error {
	c.Redis = redis.NewClient(&redis.Options{
		Addr:         cfg.RedisHost,
		Password:     cfg.RedisPassword,
		DB:           cfg.RedisDB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 5,
	})

	if err := c.Redis.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("connexion Redis: %w", err)
	}
	zap.S().Info("✅ Connecté à Redis")
	return nil
}

// =============================================
// ELASTICSEARCH
// =============================================
func (c *Connections) connectElastic(cfg *config.Config) error {
	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{cfg.ElasticURL},
		Username:  cfg.ElasticUser,
		Password:  cfg.ElasticPassword,
	})
	if err != nil {
		return fmt.Errorf("création client Elasticsearch: %w", err)
	}

	res, err := client.Info()
	if err != nil {
		return fmt.Errorf("connexion Elasticsearch: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("connexion Elasticsearch: %s", res.String())
	}

	c.Elastic = client
	zap.S().Info("✅ Connecté à Elasticsearch")
	return nil
}

// =============================================
// MINIO
// =============================================
func (c *Connections) connectMinIO(ctx context.Context, cfg *config.Config) error {
	client, err := minio.New(cfg.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessKey, cfg.MinioSecretKey, ""),
		Secure: cfg.MinioUseSSL,
	})
	if err != nil {
		return fmt.Errorf("connexion MinIO: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.MinioBucket)
	if err != nil {
		return fmt.Errorf("vérification bucket MinIO: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.MinioBucket, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("création bucket MinIO: %w", err)
		}
		zap.S().Infof("🪣 Bucket créé : %s", cfg.MinioBucket)
	}

	c.MinIO = client
	zap.S().Infof("✅ Connecté à MinIO : %s", cfg.MinioEndpoint)
	return nil
}

// Close ferme toutes les connexions ouvertes.
func (c *Connections) Close() {
	if c.mongoClient != nil {
		if err := c.mongoClient.Disconnect(context.Background()); err != nil {
			zap.S().Warnf("⚠️ Fermeture MongoDB: %v", err)
		}
	}
	if c.Scylla != nil {
		c.Scylla.Close()
		zap.S().Info("🔌 Session ScyllaDB fermée")
	}
	if c.Redis != nil {
		_ = c.Redis.Close()
	}
}
