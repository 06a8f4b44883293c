package config // package config loads application configuration from environment variables

import (
	"log"     // log is used to report configuration errors and halt execution
	"os"      // os provides access to environment variables
	"strconv" // strconv converts strings to other types

	"github.com/joho/godotenv" // godotenv loads a local .env file when present
)

// Config holds all runtime configuration values.  It is constructed once
// in main and passed by reference to every component that needs it; core
// logic never performs ambient environment lookups.
type Config struct {
	Env    string // application environment (e.g. "dev", "prod")
	Port   string // HTTP port to listen on
	DBUser string // database username
	DBPass string // database password (optional)
	DBHost string // database host address
	DBPort string // database port number
	DBName string // database name

	JWTSecret    string // secret used to sign access tokens
	AccessTTLMin int    // access token time-to-live in minutes
	BcryptCost   int    // bcrypt cost for password hashing

	EntryCodeSecret string // shared secret bound into entry-code digests

	FullPriceCents uint32 // full-price ticket in cents
	HalfPriceCents uint32 // half-price ticket in cents

	SMTPHost     string // SMTP server hostname
	SMTPPort     int    // SMTP server port
	SMTPUsername string // SMTP login username
	SMTPPassword string // SMTP login password
	SMTPFrom     string // sender address for outbound mail

	AMQPURL string // RabbitMQ connection URL (optional; events skipped when empty)
}

// Load reads configuration from the environment (a .env file is honored
// when present) and returns a Config.  Required variables are enforced
// by must() and missing values cause the program to exit with a fatal
// log message.
func Load() Config {
	_ = godotenv.Load() // missing .env is fine; real env vars win

	return Config{
		Env:    getenv("APP_ENV", "dev"),
		Port:   must("APP_PORT"),
		DBUser: must("DB_USER"),
		DBPass: os.Getenv("DB_PASS"), // empty allowed
		DBHost: must("DB_HOST"),
		DBPort: must("DB_PORT"),
		DBName: must("DB_NAME"),

		JWTSecret:    must("JWT_SECRET"),
		AccessTTLMin: mustInt("ACCESS_TOKEN_TTL_MIN"),
		BcryptCost:   mustInt("BCRYPT_COST"),

		EntryCodeSecret: must("ENTRY_CODE_SECRET"),

		FullPriceCents: uint32(mustInt("TICKET_FULL_PRICE_CENTS")),
		HalfPriceCents: uint32(mustInt("TICKET_HALF_PRICE_CENTS")),

		SMTPHost:     getenv("SMTP_HOST", "smtp.gmail.com"),
		SMTPPort:     getenvInt("SMTP_PORT", 587),
		SMTPUsername: os.Getenv("SMTP_USERNAME"),
		SMTPPassword: os.Getenv("SMTP_PASSWORD"),
		SMTPFrom:     os.Getenv("SMTP_FROM"),

		AMQPURL: os.Getenv("RABBITMQ_URL"),
	}
}

// must retrieves the value of a required environment variable.  If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

// mustInt is like must() but converts the retrieved string into an integer.
func mustInt(key string) int {
	s := must(key)
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, s)
	}
	return n
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}
