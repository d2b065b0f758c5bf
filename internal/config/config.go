package config

import (
	"fmt"
	"os"
	"strings"
)

type Config struct {
	Port        string
	Environment string
	LogLevel    string

	// Storage
	StorageBackend         string
	SupabaseURL            string
	SupabaseServiceRoleKey string
	DatabaseURL            string

	// Run history
	MongoDBURI      string
	MongoDBPassword string
	MongoDBName     string

	// Remote services
	EventbriteToken   string
	EventbriteAPIBase string
	OpenAIAPIKey      string
	OpenAIModel       string

	OrganizationsFile string
	CORSOrigins       []string
	Timezone          string

	SyncCron    string
	AnalyzeCron string
}

const (
	BackendSupabase = "supabase"
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
)

func LoadConfig() (*Config, error) {
	cfg := &Config{
		Port:        getEnvWithDefault("PORT", "8080"),
		Environment: getEnvWithDefault("ENVIRONMENT", "development"),
		LogLevel:    getEnvWithDefault("LOG_LEVEL", "info"),

		StorageBackend:         strings.ToLower(getEnvWithDefault("STORAGE_BACKEND", BackendSupabase)),
		SupabaseURL:            os.Getenv("SUPABASE_URL"),
		SupabaseServiceRoleKey: os.Getenv("SUPABASE_SERVICE_ROLE_KEY"),
		DatabaseURL:            os.Getenv("DATABASE_URL"),

		MongoDBURI:      os.Getenv("MONGODB_URI"),
		MongoDBPassword: os.Getenv("MONGODB_PASSWORD"),
		MongoDBName:     getEnvWithDefault("MONGODB_DATABASE", "eventhub"),

		EventbriteToken:   os.Getenv("EVENTBRITE_TOKEN"),
		EventbriteAPIBase: getEnvWithDefault("EVENTBRITE_API_BASE", "https://www.eventbriteapi.com/v3"),
		OpenAIAPIKey:      os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:       getEnvWithDefault("OPENAI_MODEL", "gpt-4"),

		OrganizationsFile: getEnvWithDefault("ORGANIZATIONS_FILE", "organizations.yaml"),
		CORSOrigins:       splitList(getEnvWithDefault("CORS_ORIGINS", "http://localhost:3000")),
		Timezone:          getEnvWithDefault("TIMEZONE", "America/Chicago"),

		SyncCron:    getEnvWithDefault("SYNC_CRON", "0 */6 * * *"),
		AnalyzeCron: getEnvWithDefault("ANALYZE_CRON", "30 */6 * * *"),
	}

	if len(cfg.CORSOrigins) == 0 {
		cfg.CORSOrigins = []string{"http://localhost:3000"}
	}

	switch cfg.StorageBackend {
	case BackendSupabase, BackendPostgres, BackendMemory:
	default:
		return nil, fmt.Errorf("STORAGE_BACKEND must be one of supabase, postgres, memory (got %q)", cfg.StorageBackend)
	}

	return cfg, nil
}

// Need names a group of credentials a job cannot start without.
type Need int

const (
	NeedStorage Need = iota
	// NeedDurableStorage rejects the memory backend for jobs whose writes must outlive the process.
	NeedDurableStorage
	NeedEventbrite
	NeedOpenAI
)

// Require reports every missing credential for the given needs in one error.
func (c *Config) Require(needs ...Need) error {
	var missing []string
	for _, n := range needs {
		switch n {
		case NeedStorage:
			switch c.StorageBackend {
			case BackendSupabase:
				if c.SupabaseURL == "" {
					missing = append(missing, "SUPABASE_URL")
				}
				if c.SupabaseServiceRoleKey == "" {
					missing = append(missing, "SUPABASE_SERVICE_ROLE_KEY")
				}
			case BackendPostgres:
				if c.DatabaseURL == "" {
					missing = append(missing, "DATABASE_URL")
				}
			}
		case NeedDurableStorage:
			if c.StorageBackend == BackendMemory {
				return fmt.Errorf("STORAGE_BACKEND=%s does not persist job results; use %s or %s", BackendMemory, BackendSupabase, BackendPostgres)
			}
		case NeedEventbrite:
			if c.EventbriteToken == "" {
				missing = append(missing, "EVENTBRITE_TOKEN")
			}
		case NeedOpenAI:
			if c.OpenAIAPIKey == "" {
				missing = append(missing, "OPENAI_API_KEY")
			}
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}
	return nil
}

func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
