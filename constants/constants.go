package constants

import (
	"flag"
	"log/slog"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

var (
	OauthClientId     string
	OauthClientSecret string
	FrontendUrl       string
	ListenAddr        string

	DbHost     string
	DbPort     int
	DbUser     string
	DbPassword string
	DbName     string

	// Largest Photo Database accepted by the upload decode endpoint, in bytes.
	MaxUploadBytes int64
	// Upload decodes allowed per second, and burst.
	DecodeRateLimit float64
	DecodeBurst     int
)

// Parse loads an optional .env file and parses the command line. Environment variables
// provide the flag defaults.
func Parse() {
	// A missing .env is normal outside development.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("Failed to load .env file", "error", err)
	}

	flag.StringVar(&OauthClientId, "oauth_client_id", getEnv("OAUTH_CLIENT_ID", "dummy"), "oauth client id")
	flag.StringVar(&OauthClientSecret, "oauth_client_secret", getEnv("OAUTH_CLIENT_SECRET", "dummy"), "oauth client secret")
	flag.StringVar(&FrontendUrl, "frontend_url", getEnv("FRONTEND_URL", "http://localhost:5173"), "URLs allowlisted by UI for CORS.")
	flag.StringVar(&ListenAddr, "listen_addr", getEnv("LISTEN_ADDR", ":8090"), "address the web server listens on")

	flag.StringVar(&DbHost, "db_host", getEnv("DB_HOST", "hdd_db"), "postgres host")
	flag.IntVar(&DbPort, "db_port", getEnvAsInt("DB_PORT", 5432), "postgres port")
	flag.StringVar(&DbUser, "db_user", getEnv("DB_USER", "hddb"), "postgres user")
	flag.StringVar(&DbPassword, "db_password", getEnv("DB_PASSWORD", "hddb"), "postgres password")
	flag.StringVar(&DbName, "db_name", getEnv("DB_NAME", "hdd_db"), "postgres database name")

	flag.Int64Var(&MaxUploadBytes, "max_upload_bytes", int64(getEnvAsInt("MAX_UPLOAD_BYTES", 64<<20)), "largest Photo Database accepted for upload decode")
	flag.Float64Var(&DecodeRateLimit, "decode_rate_limit", getEnvAsFloat("DECODE_RATE_LIMIT", 2), "upload decodes per second")
	flag.IntVar(&DecodeBurst, "decode_burst", getEnvAsInt("DECODE_BURST", 4), "upload decode burst size")
	flag.Parse()
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}
