package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

type Config struct {
	AppEnv                string
	AppPort               string
	SupabaseURL           string
	SupabaseKey           string
	SupabaseServiceKey    string
	Debug                 bool
	AllowedOrigins        string
	RequestTimeoutSeconds int
	TasksCacheTTLSeconds  int
	StatsCacheTTLSeconds  int
	NatsURL               string
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
		log.Printf("Invalid integer value for %s, defaulting to %d", key, defaultValue)
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
		log.Printf("Invalid boolean value for %s, defaulting to %t", key, defaultValue)
	}
	return defaultValue
}

func Load() Config {
	cfg := Config{
		AppEnv:                getEnv("APP_ENV", "development"),
		AppPort:               getEnv("APP_PORT", "8080"),
		SupabaseURL:           getEnv("SUPABASE_URL", ""),
		SupabaseKey:           getEnv("SUPABASE_KEY", ""),
		SupabaseServiceKey:    getEnv("SUPABASE_SERVICE_KEY", ""),
		Debug:                 getEnvAsBool("DEBUG", false),
		AllowedOrigins:        getEnv("ALLOWED_ORIGINS", "*"),
		RequestTimeoutSeconds: getEnvAsInt("REQUEST_TIMEOUT_SECONDS", 10),
		TasksCacheTTLSeconds:  getEnvAsInt("TASKS_CACHE_TTL_SECONDS", 30),
		StatsCacheTTLSeconds:  getEnvAsInt("STATS_CACHE_TTL_SECONDS", 60),
		NatsURL:               getEnv("NATS_URL", ""),
	}

	// The service key falls back to the standard key when not provided,
	// matching what the Supabase client libraries do.
	if cfg.SupabaseServiceKey == "" {
		cfg.SupabaseServiceKey = cfg.SupabaseKey
	}

	return cfg
}

// Validate checks that the configuration required to reach the remote
// database is present. The server must refuse to start without it.
func (c Config) Validate() error {
	var missing []string
	if c.SupabaseURL == "" {
		missing = append(missing, "SUPABASE_URL")
	}
	if c.SupabaseKey == "" {
		missing = append(missing, "SUPABASE_KEY")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}

	if c.SupabaseServiceKey != c.SupabaseKey {
		if role, err := keyRole(c.SupabaseServiceKey); err != nil {
			log.Printf("Could not inspect SUPABASE_SERVICE_KEY: %v", err)
		} else if role != "service_role" {
			log.Printf("SUPABASE_SERVICE_KEY has role %q, expected service_role; elevated operations may be denied", role)
		}
	}

	return nil
}

// keyRole extracts the role claim from a Supabase API key. The keys are
// JWTs signed by the Supabase project; verifying the signature is the remote
// database's concern, so the claims are read without verification.
func keyRole(key string) (string, error) {
	claims := jwt.MapClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(key, claims); err != nil {
		return "", err
	}
	role, _ := claims["role"].(string)
	return role, nil
}
