package config

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cast"
)

const (
	DriverMongo  = "mongo"
	DriverScylla = "scylla"
	DriverMemory = "memory"
)

type Config struct {
	Env           string
	Port          string
	EnvFileLoaded bool

	StoreDriver string

	MongoURI      string
	MongoDatabase string

	ScyllaHosts       []string
	ScyllaKeyspace    string
	ScyllaUser        string
	ScyllaPassword    string
	ScyllaAutoMigrate bool

	RedisHost       string
	RedisPassword   string
	RedisDB         int
	ProductCacheTTL time.Duration

	ElasticURL      string
	ElasticUser     string
	ElasticPassword string
	ElasticIndex    string

	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioUseSSL    bool
	MinioBucket    string
	IconURLTTL     time.Duration

	CORSOrigins        []string
	RateLimitPerMinute int
	LabelSize          int
}

// Load charge le fichier .env s'il existe puis lit la configuration depuis l'environnement.
func Load() *Config {
	loaded := godotenv.Load(".env") == nil
	cfg := FromEnv()
	cfg.EnvFileLoaded = loaded
	return cfg
}

func FromEnv() *Config {
	return &Config{
		Env:  getEnv("APP_ENV", "development"),
		Port: getEnv("PORT", "8080"),

		StoreDriver: strings.ToLower(getEnv("STORE_DRIVER", DriverMongo)),

		MongoURI:      getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDatabase: getEnv("MONGO_DATABASE", "inventory"),

		ScyllaHosts:       splitList(getEnv("SCYLLA_HOSTS", "127.0.0.1")),
		ScyllaKeyspace:    getEnv("SCYLLA_KS_PRODUCTS_KEYSPACE", "inventory"),
		ScyllaUser:        os.Getenv("SCYLLA_KS_PRODUCTS_ROLE"),
		ScyllaPassword:    os.Getenv("SCYLLA_KS_PRODUCTS_PASSWORD"),
		ScyllaAutoMigrate: cast.ToBool(getEnv("SCYLLA_AUTO_MIGRATE", "false")),

		RedisHost:       os.Getenv("REDIS_HOST"),
		RedisPassword:   os.Getenv("REDIS_PASSWORD"),
		RedisDB:         cast.ToInt(getEnv("REDIS_DB", "0")),
		ProductCacheTTL: cast.ToDuration(getEnv("PRODUCT_CACHE_TTL", "10m")),

		ElasticURL:      os.Getenv("ELASTIC_URL"),
		ElasticUser:     os.Getenv("ELASTIC_USER"),
		ElasticPassword: os.Getenv("ELASTIC_PASSWORD"),
		ElasticIndex:    getEnv("ELASTIC_INDEX", "products"),

		MinioEndpoint:  os.Getenv("MINIO_ENDPOINT"),
		MinioAccessKey: os.Getenv("MINIO_ACCESS_KEY"),
		MinioSecretKey: os.Getenv("MINIO_SECRET_KEY"),
		MinioUseSSL:    cast.ToBool(getEnv("MINIO_USE_SSL", "false")),
		MinioBucket:    getEnv("MINIO_BUCKET", "inventory-icons"),
		IconURLTTL:     cast.ToDuration(getEnv("ICON_URL_TTL", "24h")),

		CORSOrigins:        splitList(getEnv("CORS_ORIGINS", "http://localhost:3000")),
		RateLimitPerMinute: cast.ToInt(getEnv("RATE_LIMIT_PER_MINUTE", "100")),
		LabelSize:          cast.ToInt(getEnv("LABEL_SIZE", "256")),
	}
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// ClientConfig sert au front console (cmd/inventoryctl).
type ClientConfig struct {
	BaseURL  string
	Timeout  time.Duration
	PageSize int
}

func LoadClient() ClientConfig {
	_ = godotenv.Load(".env")
	return ClientConfig{
		BaseURL:  strings.TrimRight(getEnv("INVENTORY_API_URL", "http://localhost:8080/api"), "/"),
		Timeout:  cast.ToDuration(getEnv("INVENTORY_API_TIMEOUT", "10s")),
		PageSize: cast.ToInt(getEnv("INVENTORY_PAGE_SIZE", "10")),
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
