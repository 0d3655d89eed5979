package config

import (
	"github.com/dustin/go-humanize"
	"github.com/joho/godotenv"
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
)

type DB struct {
	DbHOST     string
	DbPORT     string
	DbUSER     string
	DbPASSWORD string
	DbNAME     string
	DbSSLMODE  string
}

type Mongo struct {
	URI      string
	Database string
}

type MinIO struct {
	Endpoint   string
	AccessKey  string
	SecretKey  string
	BucketName string
	UseSSL     bool
	Region     string
	PublicURL  string
}

type Memcached struct {
	Addr string
	TTL  time.Duration
}

type NATS struct {
	URL           string
	SubjectPrefix string
}

type Feed struct {
	DefaultLimit int
	MaxLimit     int
}

type Config struct {
	ServerPort        int
	DBDriver          string
	DB                DB
	Mongo             Mongo
	MigrationsPath    string
	MinIO             MinIO
	Memcached         Memcached
	NATS              NATS
	Feed              Feed
	ZipkinAddress     string
	ReconcileSchedule string
	CORSOrigin        string
	JWTSecretKey      string
	TokenDuration     time.Duration
	MaxUploadSize     int64
}

func getEnv(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvOrDefault treats a key set to an empty string as unset.
func getEnvOrDefault(key string, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return fallback
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvDuration understands Go durations plus a plain "<n>d" day suffix.
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}

	if days, ok := strings.CutSuffix(value, "d"); ok {
		if n, err := strconv.Atoi(days); err == nil && n > 0 {
			return time.Duration(n) * 24 * time.Hour
		}
		return fallback
	}

	duration, err := time.ParseDuration(value)
	if err != nil || duration <= 0 {
		return fallback
	}
	return duration
}

func LoadDB() DB {
	return DB{
		DbHOST:     getEnv("DB_HOST", "localhost"),
		DbPORT:     getEnv("DB_PORT", "5432"),
		DbUSER:     getEnv("DB_USER", "postgres"),
		DbPASSWORD: getEnv("DB_PASSWORD", "password"),
		DbNAME:     getEnv("DB_NAME", "socialhub"),
		DbSSLMODE:  getEnv("DB_SSLMODE", "disable"),
	}
}

func LoadMongo() Mongo {
	return Mongo{
		URI:      getEnv("MONGO_URI", "mongodb://localhost:27017"),
		Database: getEnv("MONGO_DATABASE", "socialhub"),
	}
}

func LoadMinIO() MinIO {
	endpoint := getEnv("MINIO_ENDPOINT", "localhost:9000")
	useSSL := getEnvBool("MINIO_USE_SSL", false)

	scheme := "http"
	if useSSL {
		scheme = "https"
	}

	return MinIO{
		Endpoint:   endpoint,
		AccessKey:  getEnv("MINIO_ACCESS_KEY", "minioadmin"),
		SecretKey:  getEnv("MINIO_SECRET_KEY", "minioadmin"),
		BucketName: getEnv("MINIO_BUCKET_NAME", "images"),
		UseSSL:     useSSL,
		Region:     getEnv("MINIO_REGION", "us-east-1"),
		PublicURL:  strings.TrimSuffix(getEnvOrDefault("MINIO_PUBLIC_URL", scheme+"://"+endpoint), "/"),
	}
}

func LoadFeed() Feed {
	feed := Feed{
		DefaultLimit: getEnvAsInt("FEED_DEFAULT_LIMIT", 10),
		MaxLimit:     getEnvAsInt("FEED_MAX_LIMIT", 100),
	}
	if feed.MaxLimit < 1 {
		feed.MaxLimit = 100
	}
	if feed.DefaultLimit < 1 || feed.DefaultLimit > feed.MaxLimit {
		feed.DefaultLimit = min(10, feed.MaxLimit)
	}
	return feed
}

func LoadConfig() *Config {
	err := godotenv.Load()
	if err != nil {
		log.Println("Warning: .env file not found, using environment variables")
	}

	driver := strings.ToLower(getEnv("DB_DRIVER", DriverMongo))
	if driver != DriverMongo && driver != DriverPostgres {
		log.Printf("Warning: unknown DB_DRIVER %q, falling back to %s", driver, DriverMongo)
		driver = DriverMongo
	}

	return &Config{
		ServerPort:     getEnvAsInt("SERVER_PORT", 8080),
		DBDriver:       driver,
		DB:             LoadDB(),
		Mongo:          LoadMongo(),
		MigrationsPath: getEnv("MIGRATIONS_PATH", "migrations/001_create_tables.sql"),
		MinIO:          LoadMinIO(),
		Memcached: Memcached{
			Addr: getEnv("MEMCACHED_ADDR", ""),
			TTL:  getEnvDuration("CACHE_TTL", time.Minute),
		},
		NATS: NATS{
			URL:           getEnv("NATS_URL", ""),
			SubjectPrefix: getEnv("NATS_SUBJECT_PREFIX", "socialhub"),
		},
		Feed:              LoadFeed(),
		ZipkinAddress:     getEnv("ZIPKIN_ADDRESS", ""),
		ReconcileSchedule: getEnv("RECONCILE_SCHEDULE", "@hourly"),
		CORSOrigin:        getEnv("CORS_ORIGIN", "*"),
		JWTSecretKey:      getEnv("JWT_SECRET_KEY", ""),
		TokenDuration:     getEnvDuration("TOKEN_DURATION", 7*24*time.Hour),
		MaxUploadSize:     parseMaxUploadSize(getEnv("MAX_UPLOAD_SIZE", "10485760")),
	}
}

// parseMaxUploadSize accepts plain byte counts as well as "5MiB" or "10 MB".
func parseMaxUploadSize(value string) int64 {
	size, err := humanize.ParseBytes(value)
	if err != nil || size == 0 {
		return 10 * 1024 * 1024
	}
	return int64(size)
}
