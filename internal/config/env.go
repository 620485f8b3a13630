package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/markdave123-py/storage-indexer/internal/models"
)

type Config struct {
	DatabaseURL    string
	SslCertPath    string
	DocumentsTable string

	StorageDriver     string // "s3" or "minio"
	StorageEndpoint   string
	StorageAccessKey  string
	StorageServiceKey string
	StorageRegion     string
	StorageUseSSL     bool
	SignedURLTTL      time.Duration
	DownloadTimeout   time.Duration

	EmbedProvider     string // "openai" or "gemini"
	EmbeddingAPIKey   string
	EmbeddingEndpoint string
	EmbedModel        string
	EmbedTimeout      time.Duration

	ChunkMaxLen int
	BatchSize   int

	JWTSecret      string
	AllowedOrigins []string
	Port           string
}

// Backend is the configuration an indexing run cannot start without.
type Backend struct {
	EmbeddingAPIKey   string
	StorageEndpoint   string
	StorageServiceKey string
}

// LoadConfig loads the environment variables and return config
func LoadConfig() *Config {

	_ = godotenv.Load()

	cfg := &Config{
		DatabaseURL:    getEnv("DATABASE_URL", ""),
		SslCertPath:    getEnv("SSL_CERT_PATH", ""),
		DocumentsTable: getEnv("DOCUMENTS_TABLE", "documents"),

		StorageDriver:     strings.ToLower(getEnv("STORAGE_DRIVER", "s3")),
		StorageEndpoint:   getEnv("STORAGE_ENDPOINT", ""),
		StorageAccessKey:  getEnv("STORAGE_ACCESS_KEY", ""),
		StorageServiceKey: getEnv("STORAGE_SERVICE_KEY", ""),
		StorageRegion:     getEnv("STORAGE_REGION", "us-east-2"),
		StorageUseSSL:     getEnvBool("STORAGE_USE_SSL", true),
		SignedURLTTL:      getEnvDuration("SIGNED_URL_TTL", 60*time.Second),
		DownloadTimeout:   getEnvDuration("DOWNLOAD_TIMEOUT", 60*time.Second),

		EmbedProvider:     strings.ToLower(getEnv("EMBED_PROVIDER", "openai")),
		EmbeddingAPIKey:   getEnv("EMBEDDING_API_KEY", ""),
		EmbeddingEndpoint: getEnv("EMBEDDING_ENDPOINT", "https://api.openai.com/v1"),
		EmbedModel:        getEnv("EMBED_MODEL", "text-embedding-3-small"),
		EmbedTimeout:      getEnvDuration("EMBED_TIMEOUT", 30*time.Second),

		ChunkMaxLen: getEnvInt("CHUNK_MAX_LEN", 1200),
		BatchSize:   getEnvInt("EMBED_BATCH_SIZE", 32),

		JWTSecret:      getEnv("JWT_SECRET", ""),
		AllowedOrigins: getEnvList("ALLOWED_ORIGINS", []string{"http://localhost:5173"}),
		Port:           getEnv("PORT", "8080"),
	}

	return cfg
}

// Validate checks the settings the process cannot start without. Backend
// credentials are deliberately not checked here; a run reports them at step init.
func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL not set")
	}
	switch c.StorageDriver {
	case "s3", "minio":
	default:
		return fmt.Errorf("STORAGE_DRIVER %q not supported", c.StorageDriver)
	}
	switch c.EmbedProvider {
	case "openai", "gemini":
	default:
		return fmt.Errorf("EMBED_PROVIDER %q not supported", c.EmbedProvider)
	}
	return nil
}

func (c *Config) Backend() Backend {
	return Backend{
		EmbeddingAPIKey:   c.EmbeddingAPIKey,
		StorageEndpoint:   c.StorageEndpoint,
		StorageServiceKey: c.StorageServiceKey,
	}
}

// Missing lists the names of absent backend settings, in a stable order.
func (b Backend) Missing() []string {
	var out []string
	if strings.TrimSpace(b.EmbeddingAPIKey) == "" {
		out = append(out, "EMBEDDING_API_KEY")
	}
	if strings.TrimSpace(b.StorageEndpoint) == "" {
		out = append(out, "STORAGE_ENDPOINT")
	}
	if strings.TrimSpace(b.StorageServiceKey) == "" {
		out = append(out, "STORAGE_SERVICE_KEY")
	}
	return out
}

func (b Backend) Diagnose() models.Diagnostic {
	return models.Diagnostic{
		HasEmbeddingCredential:    strings.TrimSpace(b.EmbeddingAPIKey) != "",
		StorageEndpointConfigured: strings.TrimSpace(b.StorageEndpoint) != "",
		HasStorageCredential:      strings.TrimSpace(b.StorageServiceKey) != "",
	}
}

// Helper to read environment variables with a default fallback
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvInt(key string, def int) int {
	v := getEnv(key, "")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("WARN: %s=%q not an int, using default %d", key, v, def)
		return def
	}
	return n
}

func getEnvBool(key string, def bool) bool {
	v := getEnv(key, "")
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		log.Printf("WARN: %s=%q not a bool, using default %t", key, v, def)
		return def
	}
	return b
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	v := getEnv(key, "")
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Printf("WARN: %s=%q not a duration, using default %s", key, v, def)
		return def
	}
	return d
}

func getEnvList(key string, def []string) []string {
	v := getEnv(key, "")
	if v == "" {
		return def
	}
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
