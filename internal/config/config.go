package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config is the process configuration read from the environment
type Config struct {
	Port string
	Env  string

	FirebaseCredentialsPath string
	FirebaseAPIKey          string
	FirebaseAuthDomain      string
	FirebaseProjectID       string
	FirebaseStorageBucket   string

	// SessionSigningKeys enables HMAC session cookies when Firebase is not
	// configured. Comma separated, newest first.
	SessionSigningKeys string

	DatabaseURL string
	RedisURL    string

	ResendAPIKey string
	EmailFrom    string

	MidtransServerKey    string
	MidtransClientKey    string
	MidtransIsProduction bool

	AppURL      string
	AppTimezone string
}

// Load reads .env if present and then the environment
func Load() Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment")
	}

	return Config{
		Port: getEnv("PORT", "8080"),
		Env:  getEnv("ENV", "development"),

		FirebaseCredentialsPath: getEnv("FIREBASE_CREDENTIALS_PATH", "./firebase-service-account.json"),
		FirebaseAPIKey:          os.Getenv("FIREBASE_API_KEY"),
		FirebaseAuthDomain:      os.Getenv("FIREBASE_AUTH_DOMAIN"),
		FirebaseProjectID:       os.Getenv("FIREBASE_PROJECT_ID"),
		FirebaseStorageBucket:   os.Getenv("FIREBASE_STORAGE_BUCKET"),

		SessionSigningKeys: os.Getenv("SESSION_SIGNING_KEYS"),

		DatabaseURL: os.Getenv("DATABASE_URL"),
		RedisURL:    os.Getenv("REDIS_URL"),

		ResendAPIKey: os.Getenv("RESEND_API_KEY"),
		EmailFrom:    getEnv("EMAIL_FROM", "Gym <no-reply@example.com>"),

		MidtransServerKey:    os.Getenv("MIDTRANS_SERVER_KEY"),
		MidtransClientKey:    os.Getenv("MIDTRANS_CLIENT_KEY"),
		MidtransIsProduction: getBool("MIDTRANS_IS_PRODUCTION", false),

		AppURL:      getEnv("APP_URL", "http://localhost:8080"),
		AppTimezone: getEnv("APP_TIMEZONE", "Asia/Manila"),
	}
}

// IsProduction reports whether ENV is production
func (c Config) IsProduction() bool {
	return c.Env == "production"
}

// Location loads AppTimezone, falling back to UTC
func (c Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.AppTimezone)
	if err != nil {
		log.Printf("Warning: unknown APP_TIMEZONE %q, using UTC: %v", c.AppTimezone, err)
		return time.UTC
	}
	return loc
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		log.Printf("Warning: %s=%q is not a boolean, using %v", key, v, fallback)
		return fallback
	}
	return b
}
