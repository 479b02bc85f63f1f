package config

import (
	"errors"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	App       AppConfig
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Analytics AnalyticsConfig
}

type AppConfig struct {
	Name        string
	Version     string
	Environment string
}

type ServerConfig struct {
	Port string
}

type DatabaseConfig struct {
	Driver     string // "postgres" or "sqlite"
	Host       string
	Port       string
	User       string
	Password   string
	Name       string
	SSLMode    string
	SQLitePath string
}

type RedisConfig struct {
	Enabled       bool
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int
}

// AnalyticsConfig carries the engine's tunable thresholds.
type AnalyticsConfig struct {
	PersistenceCutoff   float64 // persistence rate at which a concept gets "Re-teach"
	SimilarityMetric    string  // "jaccard" or "correlation"
	SimilarityThreshold float64
	ClusterMinSupport   int // min distinct students before an item enters clustering
	RecommendTopN       int
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB := 0
	if v := os.Getenv("REDIS_DB"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, errors.New("invalid REDIS_DB")
		}
		redisDB = n
	}

	cfg := &Config{
		App: AppConfig{
			Name:        getEnv("APP_NAME", "examLens"),
			Version:     getEnv("APP_VERSION", "1.0.0"),
			Environment: getEnv("APP_ENV", "development"),
		},
		Server: ServerConfig{
			Port: getEnv("PORT", "8080"),
		},
		Database: DatabaseConfig{
			Driver:     getEnv("DB_DRIVER", "postgres"),
			Host:       getEnv("DB_HOST", "localhost"),
			Port:       getEnv("DB_PORT", "5432"),
			User:       getEnv("DB_USER", "postgres"),
			Password:   getEnv("DB_PASSWORD", ""),
			Name:       getEnv("DB_NAME", "examlens"),
			SSLMode:    getEnv("DB_SSL_MODE", "disable"),
			SQLitePath: getEnv("DB_SQLITE_PATH", "examlens.db"),
		},
		Redis: RedisConfig{
			Enabled:       getEnvBool("REDIS_ENABLED", false),
			RedisHost:     getEnv("REDIS_HOST", "localhost"),
			RedisPort:     getEnv("REDIS_PORT", "6379"),
			RedisPassword: getEnv("REDIS_PASSWORD", ""),
			RedisDB:       redisDB,
		},
		Analytics: AnalyticsConfig{
			PersistenceCutoff:   getEnvFloat("ANALYTICS_PERSISTENCE_CUTOFF", 0.2),
			SimilarityMetric:    getEnv("ANALYTICS_SIMILARITY_METRIC", "jaccard"),
			SimilarityThreshold: getEnvFloat("ANALYTICS_SIMILARITY_THRESHOLD", 0.2),
			ClusterMinSupport:   getEnvInt("ANALYTICS_CLUSTER_MIN_SUPPORT", 2),
			RecommendTopN:       getEnvInt("ANALYTICS_RECOMMEND_TOP_N", 5),
		},
	}

	if cfg.Database.Driver == "postgres" && cfg.Database.Password == "" {
		return nil, errors.New("missing database password")
	}
	if m := cfg.Analytics.SimilarityMetric; m != "jaccard" && m != "correlation" {
		return nil, errors.New("ANALYTICS_SIMILARITY_METRIC must be jaccard or correlation")
	}

	return cfg, nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}

	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}

	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
	}

	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}

	return defaultVal
}
