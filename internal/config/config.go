package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all service configuration loaded from environment variables.
type Config struct {
	Port           string
	PostgresDSN    string
	RedisAddr      string
	RedisPassword  string
	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioBucket    string
	MinioUseSSL    bool
	GraphPath      string
	GraphObjectKey string
	GISBaseURL     string
	GISCacheTTL    time.Duration
}

func Load() *Config {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	return &Config{
		Port:           getenv("PORT", "8080"),
		PostgresDSN:    getenv("POSTGRES_DSN", ""),
		RedisAddr:      getenv("REDIS_ADDR", "redis:6379"),
		RedisPassword:  getenv("REDIS_PASSWORD", ""),
		MinioEndpoint:  getenv("MINIO_ENDPOINT", "minio:9000"),
		MinioAccessKey: getenv("MINIO_ACCESS_KEY", ""),
		MinioSecretKey: getenv("MINIO_SECRET_KEY", ""),
		MinioBucket:    getenv("MINIO_BUCKET", "scenic-assets"),
		MinioUseSSL:    getenv("MINIO_USE_SSL", "false") == "true",
		GraphPath:      getenv("GRAPH_PATH", "static/graph/florida_graph.bin.br"),
		GraphObjectKey: getenv("GRAPH_OBJECT_KEY", "florida_graph.bin.br"),
		GISBaseURL: getenv("GIS_BASE_URL",
			"https://services1.arcgis.com/O1JpcwDW8sjYuddV/arcgis/rest/services/Scenic_Highways_TDA/FeatureServer/0"),
		GISCacheTTL: getdur("GIS_CACHE_TTL", 6*time.Hour),
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getdur(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
