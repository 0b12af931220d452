package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds all configuration for vowsuite-reports.
// Values come from config.yaml with environment variable overrides.
// Secrets (database password, provider API keys) are env-only.
type Config struct {
	BindAddr string `yaml:"bind_addr" env:"BIND_ADDR" env-default:"127.0.0.1"`
	Port     string `yaml:"port" env:"PORT" env-default:"8090"`
	Env      string `yaml:"env" env:"ENVIRONMENT" env-default:"local"`
	Version  string `yaml:"-"` // set at load time via ldflags

	Auth     AuthConfig     `yaml:"auth"`
	Database DatabaseConfig `yaml:"database"`
	AI       AIConfig       `yaml:"ai"`
	Report   ReportConfig   `yaml:"report"`
}

// AuthConfig holds JWT verification settings for platform-issued tokens.
type AuthConfig struct {
	// EnableVerification controls whether JWT signatures are validated.
	// Set to false for local development without the platform auth server.
	EnableVerification bool `yaml:"enable_verification" env:"AUTH_ENABLE_VERIFICATION" env-default:"true"`

	// JWKSEndpointsStr is a comma-separated list of issuer=jwks_url pairs.
	JWKSEndpointsStr string `yaml:"jwks_endpoints" env:"JWKS_ENDPOINTS" env-default:"https://auth.vowsuite.app=https://auth.vowsuite.app/.well-known/jwks.json"`

	// JWKSEndpoints is parsed from JWKSEndpointsStr at load time.
	JWKSEndpoints map[string]string `yaml:"-"`
}

// DatabaseConfig holds PostgreSQL settings for the platform database.
type DatabaseConfig struct {
	Host           string `yaml:"host" env:"PGHOST" env-default:"localhost"`
	Port           int    `yaml:"port" env:"PGPORT" env-default:"5432"`
	User           string `yaml:"user" env:"PGUSER" env-default:"vowsuite"`
	Password       string `yaml:"-" env:"PGPASSWORD"` // secret - not in YAML
	Database       string `yaml:"database" env:"PGDATABASE" env-default:"vowsuite"`
	SSLMode        string `yaml:"ssl_mode" env:"PGSSLMODE" env-default:"disable"`
	MaxConnections int32  `yaml:"max_connections" env:"PGMAX_CONNECTIONS" env-default:"25"`

	// MigrationsPath points at the SQL migration files used by local and
	// test environments. Production schema is owned by the platform.
	MigrationsPath string `yaml:"migrations_path" env:"MIGRATIONS_PATH" env-default:"migrations"`
	RunMigrations  bool   `yaml:"run_migrations" env:"RUN_MIGRATIONS" env-default:"false"`
}

// AIConfig selects and configures the SQL-generation provider.
// The provider is chosen by which credential is present; Provider forces
// a specific one when several are configured.
type AIConfig struct {
	// Provider overrides auto-selection: "openai", "anthropic" or "gemini".
	Provider string `yaml:"provider" env:"AI_PROVIDER" env-default:""`

	OpenAI    OpenAIConfig    `yaml:"openai"`
	Anthropic AnthropicConfig `yaml:"anthropic"`
	Gemini    GeminiConfig    `yaml:"gemini"`
}

// OpenAIConfig holds OpenAI settings.
type OpenAIConfig struct {
	APIKey  string `yaml:"-" env:"OPENAI_API_KEY"`
	Model   string `yaml:"model" env:"OPENAI_MODEL" env-default:"gpt-4o-mini"`
	BaseURL string `yaml:"base_url" env:"OPENAI_BASE_URL" env-default:"https://api.openai.com/v1"`
}

// AnthropicConfig holds Anthropic settings.
type AnthropicConfig struct {
	APIKey string `yaml:"-" env:"ANTHROPIC_API_KEY"`
	Model  string `yaml:"model" env:"ANTHROPIC_MODEL" env-default:"claude-3-5-haiku-20241022"`
}

// GeminiConfig holds Gemini settings. Gemini is reached through its
// OpenAI-compatible endpoint, so it shares the OpenAI client.
type GeminiConfig struct {
	APIKey  string `yaml:"-" env:"GEMINI_API_KEY"`
	Model   string `yaml:"model" env:"GEMINI_MODEL" env-default:"gemini-2.0-flash"`
	BaseURL string `yaml:"base_url" env:"GEMINI_BASE_URL" env-default:"https://generativelanguage.googleapis.com/v1beta/openai"`
}

// ReportConfig bounds report execution.
type ReportConfig struct {
	// MaxRows is enforced server-side by wrapping every validated query in
	// a LIMIT, independent of whatever the model generated.
	MaxRows int `yaml:"max_rows" env:"REPORT_MAX_ROWS" env-default:"1000"`

	// QueryTimeoutSeconds bounds a single database round-trip.
	QueryTimeoutSeconds int `yaml:"query_timeout_seconds" env:"REPORT_QUERY_TIMEOUT_SECONDS" env-default:"30"`
}

// Load reads configuration from config.yaml with environment overrides.
// When config.yaml is absent, configuration comes from the environment
// alone. The version parameter is injected at build time.
func Load(version string) (*Config, error) {
	cfg := &Config{Version: version}

	if _, err := os.Stat("config.yaml"); err == nil {
		if err := cleanenv.ReadConfig("config.yaml", cfg); err != nil {
			return nil, fmt.Errorf("failed to read config.yaml: %w", err)
		}
	} else {
		if err := cleanenv.ReadEnv(cfg); err != nil {
			return nil, fmt.Errorf("failed to read environment config: %w", err)
		}
	}

	cfg.Auth.JWKSEndpoints = parseJWKSEndpoints(cfg.Auth.JWKSEndpointsStr)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Report.MaxRows <= 0 {
		return fmt.Errorf("report.max_rows must be positive, got %d", c.Report.MaxRows)
	}
	if c.Report.QueryTimeoutSeconds <= 0 {
		return fmt.Errorf("report.query_timeout_seconds must be positive, got %d", c.Report.QueryTimeoutSeconds)
	}
	switch c.AI.Provider {
	case "", "openai", "anthropic", "gemini":
	default:
		return fmt.Errorf("unknown ai.provider %q", c.AI.Provider)
	}
	return nil
}

// parseJWKSEndpoints parses "issuer1=url1,issuer2=url2" into a map.
func parseJWKSEndpoints(value string) map[string]string {
	endpoints := make(map[string]string)
	if value == "" {
		return endpoints
	}
	for _, pair := range strings.Split(value, ",") {
		parts := strings.SplitN(pair, "=", 2)
		if len(parts) == 2 {
			endpoints[strings.TrimSpace(parts[0])] = strings.TrimSpace(parts[1])
		}
	}
	return endpoints
}

// ConnectionString returns a PostgreSQL connection string.
func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}
