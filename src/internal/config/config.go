package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	StoreDriverPostgres = "postgres"
	StoreDriverSQLite   = "sqlite"
	StoreDriverMemory   = "memory"
)

const defaultConnectionString = "Host=localhost;Port=5432;Database=bank_one_one;Username=postgres;Password=postgres;Timeout=30;CommandTimeout=30"

type Config struct {
	Port            string        `env:"PORT" envDefault:"3000"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"15s"`

	StoreDriver string `env:"STORE_DRIVER" envDefault:"postgres"`
	DatabaseDSN string `env:"DATABASE_DSN"`
	SQLitePath  string `env:"SQLITE_PATH" envDefault:"bank-one-one.db"`

	JWTSecret string        `env:"JWT_SECRET" envDefault:"my_super_secret_key"`
	JWTTTL    time.Duration `env:"JWT_TTL" envDefault:"1h"`

	AppBaseURL      string   `env:"APP_BASE_URL" envDefault:"http://localhost:3000"`
	FrontendBaseURL string   `env:"FRONTEND_BASE_URL"`
	CORSOrigins     []string `env:"CORS_ORIGINS" envSeparator:"," envDefault:"http://localhost:5173,http://localhost:3000"`

	BrevoAPIKey  string `env:"BREVO_API_KEY"`
	MailFrom     string `env:"MAIL_FROM" envDefault:"no-reply@bankoneone.local"`
	MailFromName string `env:"MAIL_FROM_NAME" envDefault:"Bank One One"`

	OpenAIAPIKey string `env:"OPENAI_API_KEY"`
	OpenAIModel  string `env:"OPENAI_MODEL" envDefault:"gpt-4o-mini"`

	AdminChannelID  string `env:"ADMIN_CHANNEL_ID"`
	AdminChannelKey string `env:"ADMIN_CHANNEL_KEY"`

	TransferMaxAttempts int           `env:"TRANSFER_MAX_ATTEMPTS" envDefault:"3"`
	TransferTimeout     time.Duration `env:"TRANSFER_TIMEOUT" envDefault:"10s"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	OTELEnabled  bool   `env:"OTEL_ENABLED" envDefault:"true"`
	OTELEndpoint string `env:"OTEL_ENDPOINT"`
}

// Load reads an optional .env file and then the process environment.
func Load() (Config, error) {
	_ = godotenv.Load()
	return Parse()
}

// Parse reads the process environment only.
func Parse() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	cfg.StoreDriver = strings.ToLower(strings.TrimSpace(cfg.StoreDriver))
	switch cfg.StoreDriver {
	case StoreDriverPostgres, StoreDriverSQLite, StoreDriverMemory:
	default:
		return Config{}, fmt.Errorf("STORE_DRIVER must be one of postgres, sqlite, memory")
	}

	conn := strings.TrimSpace(cfg.DatabaseDSN)
	if conn == "" {
		conn = defaultConnectionString
	}
	cfg.DatabaseDSN = normalizeConnectionString(conn)

	if strings.TrimSpace(cfg.FrontendBaseURL) == "" {
		cfg.FrontendBaseURL = cfg.AppBaseURL
	}
	cfg.AppBaseURL = strings.TrimRight(strings.TrimSpace(cfg.AppBaseURL), "/")
	cfg.FrontendBaseURL = strings.TrimRight(strings.TrimSpace(cfg.FrontendBaseURL), "/")

	if cfg.TransferMaxAttempts < 1 {
		return Config{}, fmt.Errorf("TRANSFER_MAX_ATTEMPTS must be at least 1")
	}
	if cfg.TransferTimeout <= 0 {
		return Config{}, fmt.Errorf("TRANSFER_TIMEOUT must be positive")
	}

	return cfg, nil
}

// normalizeConnectionString accepts ADO-style "Key=Value;" strings and turns
// them into lib/pq keyword/value DSNs. URLs and pq-style DSNs pass through.
func normalizeConnectionString(raw string) string {
	if strings.HasPrefix(raw, "postgres://") || strings.HasPrefix(raw, "postgresql://") || !strings.Contains(raw, ";") {
		return raw
	}

	parts := strings.Split(raw, ";")
	out := make([]string, 0, len(parts))
	hasSSLMode := false

	for _, part := range parts {
		p := strings.TrimSpace(part)
		if p == "" {
			continue
		}

		kv := strings.SplitN(p, "=", 2)
		if len(kv) != 2 {
			continue
		}

		key := strings.ToLower(strings.TrimSpace(kv[0]))
		val := strings.TrimSpace(kv[1])

		switch key {
		case "host", "server":
			out = append(out, "host="+val)
		case "port":
			out = append(out, "port="+val)
		case "database":
			out = append(out, "dbname="+val)
		case "username", "user id":
			out = append(out, "user="+val)
		case "password":
			out = append(out, "password="+val)
		case "timeout", "connect timeout":
			out = append(out, "connect_timeout="+val)
		case "commandtimeout", "command timeout":
			out = append(out, "statement_timeout="+val+"s")
		case "sslmode":
			hasSSLMode = true
			out = append(out, "sslmode="+val)
		default:
			out = append(out, key+"="+val)
		}
	}

	if len(out) == 0 {
		return raw
	}

	if !hasSSLMode {
		out = append(out, "sslmode=disable")
	}

	return strings.Join(out, " ")
}
