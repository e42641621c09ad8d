// Package config reads the formfields server and CLI settings from the
// environment, after loading an optional .env file.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Backend names accepted in FORMFIELDS_BACKEND.
const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
	BackendMySQL  = "mysql"
	BackendRedis  = "redis"
	BackendDynamo = "dynamodb"
)

// Defaults applied when the environment leaves a setting empty.
const (
	DefaultAddr        = ":8080"
	DefaultDefinitions = "definitions"
	DefaultLogLevel    = "info"
	DefaultAWSRegion   = "us-east-1"
)

// Config is the resolved runtime configuration.
type Config struct {
	Addr        string
	Definitions string
	Watch       bool
	LogLevel    string

	Backend string
	// DSN is the SQL connection string for the sqlite and mysql backends.
	DSN    string
	Redis  Redis
	Dynamo Dynamo

	// Users enables basic auth on the admin server when not empty.
	Users []User
}

// Redis configures the redis backend.
type Redis struct {
	Addr     string
	Password string
	DB       int
}

// Dynamo configures the DynamoDB backend. Empty keys fall back to the
// default AWS credential chain.
type Dynamo struct {
	Table           string
	Region          string
	AccessKeyID     string
	SecretAccessKey string
}

// User is a basic auth account with the capabilities it grants.
type User struct {
	Name         string
	Password     string
	Capabilities []string
}

// Load reads .env when present and then the process environment.
func Load() (Config, error) {
	_ = godotenv.Load()
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from getenv.
func FromEnv(getenv func(string) string) (Config, error) {
	cfg := Config{
		Addr:        envOr(getenv, "FORMFIELDS_ADDR", DefaultAddr),
		Definitions: envOr(getenv, "FORMFIELDS_DEFINITIONS", DefaultDefinitions),
		LogLevel:    envOr(getenv, "FORMFIELDS_LOG_LEVEL", DefaultLogLevel),
		Backend:     strings.ToLower(envOr(getenv, "FORMFIELDS_BACKEND", BackendMemory)),
		DSN:         strings.TrimSpace(getenv("FORMFIELDS_DSN")),
		Redis: Redis{
			Addr:     strings.TrimSpace(getenv("REDIS_ADDR")),
			Password: getenv("REDIS_PASS"),
		},
		Dynamo: Dynamo{
			Table:           strings.TrimSpace(getenv("DYNAMO_TABLE")),
			Region:          envOr(getenv, "AWS_REGION", DefaultAWSRegion),
			AccessKeyID:     strings.TrimSpace(getenv("AWS_ACCESS_KEY_ID")),
			SecretAccessKey: strings.TrimSpace(getenv("AWS_SECRET_ACCESS_KEY")),
		},
	}

	if raw := strings.TrimSpace(getenv("FORMFIELDS_WATCH")); raw != "" {
		watch, err := strconv.ParseBool(raw)
		if err != nil {
			return Config{}, fmt.Errorf("config: FORMFIELDS_WATCH: %w", err)
		}
		cfg.Watch = watch
	}
	if raw := strings.TrimSpace(getenv("REDIS_DB")); raw != "" {
		db, err := strconv.Atoi(raw)
		if err != nil {
			return Config{}, fmt.Errorf("config: REDIS_DB: %w", err)
		}
		cfg.Redis.DB = db
	}

	users, err := ParseUsers(getenv("FORMFIELDS_USERS"))
	if err != nil {
		return Config{}, err
	}
	cfg.Users = users

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks that the selected backend has what it needs.
func (c Config) Validate() error {
	switch c.Backend {
	case BackendMemory, BackendSQLite:
	case BackendMySQL:
		if c.DSN == "" {
			return fmt.Errorf("config: backend %q requires FORMFIELDS_DSN", c.Backend)
		}
	case BackendRedis:
		if c.Redis.Addr == "" {
			return fmt.Errorf("config: backend %q requires REDIS_ADDR", c.Backend)
		}
	case BackendDynamo:
		if c.Dynamo.Table == "" {
			return fmt.Errorf("config: backend %q requires DYNAMO_TABLE", c.Backend)
		}
	default:
		return fmt.Errorf("config: unknown backend %q", c.Backend)
	}
	return nil
}

// ParseUsers reads "name:password:cap1|cap2" entries separated by commas.
func ParseUsers(raw string) ([]User, error) {
	var users []User
	for _, item := range strings.Split(raw, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		parts := strings.SplitN(item, ":", 3)
		if len(parts) < 2 || strings.TrimSpace(parts[0]) == "" {
			return nil, fmt.Errorf("config: FORMFIELDS_USERS entry %q must be name:password[:capabilities]", item)
		}
		user := User{Name: strings.TrimSpace(parts[0]), Password: parts[1]}
		if len(parts) == 3 {
			for _, capability := range strings.Split(parts[2], "|") {
				if capability = strings.TrimSpace(capability); capability != "" {
					user.Capabilities = append(user.Capabilities, capability)
				}
			}
		}
		users = append(users, user)
	}
	return users, nil
}

func envOr(getenv func(string) string, key, fallback string) string {
	if value := strings.TrimSpace(getenv(key)); value != "" {
		return value
	}
	return fallback
}
