package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config stores the application configuration. Every credential comes from
// the environment; defaults only exist for values that are safe to default.
type Config struct {
	HTTPAddr string

	// Per-role session secrets. Roles never share a session space, so each
	// role signs its cookie with its own secret.
	AdminJWTSecret    string
	TeacherJWTSecret  string
	StaffJWTSecret    string
	EngineerJWTSecret string
	ParentJWTSecret   string
	SessionTTL        time.Duration

	// Airtable
	AirtableAPIKey string
	AirtableBaseID string

	// SimplyBook
	SimplybookCompany  string
	SimplybookAPIKey   string
	SimplybookUser     string
	SimplybookPassword string
	SimplybookEndpoint string

	// Shopify Storefront API
	ShopifyDomain          string
	ShopifyStorefrontToken string

	// R2 object storage (S3 compatible)
	R2Endpoint  string
	R2AccessKey string
	R2SecretKey string
	R2Bucket    string
	R2Region    string
	R2UseSSL    bool

	// Redis (notification outbox)
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Email
	SendgridAPIKey string
	EmailFrom      string
	EmailFromName  string

	// Fixed engineer assignments for the mixing pipeline.
	EngineerMichaID string
	EngineerJakobID string

	// AdminEmail receives the pipeline notifications. When
	// SchulsongTwoStep is on, the admin has to release the schulsong
	// before the teacher can approve it.
	AdminEmail       string
	SchulsongTwoStep bool

	LogPath string
}

// getEnv gets an environment variable or returns a default value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// getEnvInt gets an environment variable as int or returns a default value.
func getEnvInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return fallback
}

// getEnvBool gets an environment variable as bool or returns a default value.
func getEnvBool(key string, fallback bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return fallback
}

// Load loads configuration from environment variables (via .env file) or defaults.
func Load() *Config {
	// godotenv.Load() will not override existing env vars.
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on existing environment variables and defaults.")
	}

	return &Config{
		HTTPAddr: getEnv("HTTP_ADDR", ":8080"),

		AdminJWTSecret:    os.Getenv("ADMIN_JWT_SECRET"),
		TeacherJWTSecret:  os.Getenv("TEACHER_JWT_SECRET"),
		StaffJWTSecret:    os.Getenv("STAFF_JWT_SECRET"),
		EngineerJWTSecret: os.Getenv("ENGINEER_JWT_SECRET"),
		ParentJWTSecret:   os.Getenv("PARENT_JWT_SECRET"),
		SessionTTL:        time.Duration(getEnvInt("SESSION_TTL_HOURS", 24)) * time.Hour,

		AirtableAPIKey: os.Getenv("AIRTABLE_API_KEY"),
		AirtableBaseID: os.Getenv("AIRTABLE_BASE_ID"),

		SimplybookCompany:  os.Getenv("SIMPLYBOOK_COMPANY"),
		SimplybookAPIKey:   os.Getenv("SIMPLYBOOK_API_KEY"),
		SimplybookUser:     os.Getenv("SIMPLYBOOK_USER"),
		SimplybookPassword: os.Getenv("SIMPLYBOOK_PASSWORD"),
		SimplybookEndpoint: getEnv("SIMPLYBOOK_ENDPOINT", "https://user-api.simplybook.me"),

		ShopifyDomain:          os.Getenv("SHOPIFY_DOMAIN"),
		ShopifyStorefrontToken: os.Getenv("SHOPIFY_STOREFRONT_TOKEN"),

		R2Endpoint:  os.Getenv("R2_ENDPOINT"),
		R2AccessKey: os.Getenv("R2_ACCESS_KEY"),
		R2SecretKey: os.Getenv("R2_SECRET_KEY"),
		R2Bucket:    getEnv("R2_BUCKET", "schallwerk-audio"),
		R2Region:    getEnv("R2_REGION", "auto"),
		R2UseSSL:    getEnvBool("R2_USE_SSL", true),

		RedisAddr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		SendgridAPIKey: os.Getenv("SENDGRID_API_KEY"),
		EmailFrom:      getEnv("EMAIL_FROM", "portal@schallwerk.example"),
		EmailFromName:  getEnv("EMAIL_FROM_NAME", "Schallwerk"),

		EngineerMichaID: getEnv("ENGINEER_MICHA_ID", "engMicha"),
		EngineerJakobID: getEnv("ENGINEER_JAKOB_ID", "engJakob"),

		AdminEmail:       getEnv("ADMIN_EMAIL", "admin@schallwerk.example"),
		SchulsongTwoStep: getEnvBool("SCHULSONG_TWO_STEP", true),

		LogPath: getEnv("LOG_PATH", ""),
	}
}
