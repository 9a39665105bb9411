package config // package config loads application configuration from environment variables

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Placeholder values used when the session store settings are missing.  The
// app keeps running against these so the reference endpoints and the local
// booking history remain usable; every store call will fail and be reported
// through the session manager's error state instead of crashing startup.
const (
	placeholderStoreURL = "http://localhost:9999"
	placeholderStoreKey = "anon-key-not-set"
)

// App holds the booking application's runtime configuration.  The two
// session store values are required in spirit, but missing values are logged
// and replaced with placeholders rather than refusing to start.
type App struct {
	Env          string        // application environment (dev/test/prod)
	Port         string        // HTTP port the booking app listens on
	StoreURL     string        // base URL of the session store service
	StoreKey     string        // anon API key sent with every store request
	StoreTimeout time.Duration // per-request timeout for store calls
}

// SessionStore holds configuration for the development session store server.
// All values are hard-required here: this binary is infrastructure, and
// refusing to start on a bad environment is the right behaviour for it.
type SessionStore struct {
	Port           string // HTTP port to listen on
	DBUser         string // database username
	DBPass         string // database password (optional)
	DBHost         string // database host address
	DBPort         string // database port number
	DBName         string // database name
	JWTSecret      string // secret used to sign access tokens
	AccessTTLMin   int    // access token time-to-live in minutes
	RefreshTTLDays int    // refresh token time-to-live in days
	BcryptCost     int    // bcrypt cost for password hashing
	AutoConfirm    bool   // confirm emails immediately (dev convenience)
}

// LoadApp reads the booking app configuration.  A .env file is loaded when
// present so local development matches deployed environments.
func LoadApp() App {
	_ = godotenv.Load()

	storeURL := os.Getenv("SESSION_STORE_URL")
	storeKey := os.Getenv("SESSION_STORE_KEY")
	if storeURL == "" {
		log.Printf("config: SESSION_STORE_URL is not set; using placeholder, store calls will fail")
		storeURL = placeholderStoreURL
	}
	if storeKey == "" {
		log.Printf("config: SESSION_STORE_KEY is not set; using placeholder, store calls will fail")
		storeKey = placeholderStoreKey
	}

	return App{
		Env:          getenv("APP_ENV", "dev"),
		Port:         getenv("APP_PORT", "8080"),
		StoreURL:     storeURL,
		StoreKey:     storeKey,
		StoreTimeout: parseDur(getenv("SESSION_STORE_TIMEOUT", "5s")),
	}
}

// LoadSessionStore reads configuration for the dev session store server.
// Missing required values cause the process to exit with a fatal log line.
func LoadSessionStore() SessionStore {
	_ = godotenv.Load()

	return SessionStore{
		Port:           getenv("STORE_PORT", "9000"),
		DBUser:         must("DB_USER"),
		DBPass:         os.Getenv("DB_PASS"), // empty allowed
		DBHost:         must("DB_HOST"),
		DBPort:         must("DB_PORT"),
		DBName:         must("DB_NAME"),
		JWTSecret:      must("JWT_SECRET"),
		AccessTTLMin:   mustInt("ACCESS_TOKEN_TTL_MIN"),
		RefreshTTLDays: mustInt("REFRESH_TOKEN_TTL_DAYS"),
		BcryptCost:     mustInt("BCRYPT_COST"),
		AutoConfirm:    getenv("STORE_AUTO_CONFIRM", "true") == "true",
	}
}

// must retrieves the value of a required environment variable.  If the
// variable is unset or empty, the process logs a fatal error and exits.
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

func parseDur(s string) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return 5 * time.Second
	}
	return d
}
