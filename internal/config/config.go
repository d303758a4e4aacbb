package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvLocal = "local"
	EnvDev   = "dev"
	EnvProd  = "prod"

	envPrefix = "PHISHCATCH"
	envFile   = ".env"
)

// Storage backends
const (
	BackendMemory   = "memory"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendDynamoDB = "dynamodb"
)

type Config struct {
	Env        string
	LogLevel   string
	Server     Server
	Storage    Storage
	Classifier Classifier
	Alerts     Alerts
	Hash       Hash
}

type Server struct {
	ListenAddr string
}

type Storage struct {
	Backend        string
	DatabaseURL    string
	SQLitePath     string
	DynamoTable    string
	DynamoEndpoint string
	// Migrations applies the embedded schema on startup (postgres only)
	Migrations bool
}

type Classifier struct {
	EnterpriseDomains []string
	DangerousDomains  []string
	DetectLookalikes  bool
	// URL of a remote classifier; the configured lists are used when empty
	URL      string
	CacheTTL time.Duration
}

type Alerts struct {
	// Endpoint receives server alerts; alerts are only logged when empty
	Endpoint           string
	DisplayReuseAlerts bool
	ExpireHashOnUse    bool
	CleanupInterval    time.Duration
	NotificationTTL    time.Duration
}

type Hash struct {
	Salt      string
	Time      uint32
	MemoryKiB uint32
	Threads   uint8
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("env", EnvLocal)
	v.SetDefault("log_level", "")
	v.SetDefault("listen_addr", "127.0.0.1:8765")
	v.SetDefault("storage_backend", BackendSQLite)
	v.SetDefault("database_url", "")
	v.SetDefault("sqlite_path", "phishcatch.db")
	v.SetDefault("dynamodb_table", "")
	v.SetDefault("dynamodb_endpoint", "")
	v.SetDefault("migrations", true)
	v.SetDefault("enterprise_domains", "")
	v.SetDefault("dangerous_domains", "")
	v.SetDefault("detect_lookalikes", true)
	v.SetDefault("classifier_url", "")
	v.SetDefault("classifier_cache_ttl", 30*time.Second)
	v.SetDefault("alert_endpoint", "")
	v.SetDefault("display_reuse_alerts", true)
	v.SetDefault("expire_hash_on_use", false)
	v.SetDefault("cleanup_interval", time.Minute)
	v.SetDefault("notification_ttl", 0)
	v.SetDefault("hash_salt", "")
	v.SetDefault("hash_time", 2)
	v.SetDefault("hash_memory_kib", 19*1024)
	v.SetDefault("hash_threads", 1)
}

// Load reads configuration from .env, an optional YAML file and PHISHCATCH_* environment variables,
// in increasing order of precedence.
func Load(configFile string) (*Config, error) {
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load %s: %w", envFile, err)
	}

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{
		Env:      strings.ToLower(v.GetString("env")),
		LogLevel: v.GetString("log_level"),
		Server: Server{
			ListenAddr: v.GetString("listen_addr"),
		},
		Storage: Storage{
			Backend:        strings.ToLower(v.GetString("storage_backend")),
			DatabaseURL:    v.GetString("database_url"),
			SQLitePath:     v.GetString("sqlite_path"),
			DynamoTable:    v.GetString("dynamodb_table"),
			DynamoEndpoint: v.GetString("dynamodb_endpoint"),
			Migrations:     v.GetBool("migrations"),
		},
		Classifier: Classifier{
			EnterpriseDomains: splitList(v.Get("enterprise_domains")),
			DangerousDomains:  splitList(v.Get("dangerous_domains")),
			DetectLookalikes:  v.GetBool("detect_lookalikes"),
			URL:               v.GetString("classifier_url"),
			CacheTTL:          v.GetDuration("classifier_cache_ttl"),
		},
		Alerts: Alerts{
			Endpoint:           v.GetString("alert_endpoint"),
			DisplayReuseAlerts: v.GetBool("display_reuse_alerts"),
			ExpireHashOnUse:    v.GetBool("expire_hash_on_use"),
			CleanupInterval:    v.GetDuration("cleanup_interval"),
			NotificationTTL:    v.GetDuration("notification_ttl"),
		},
		Hash: Hash{
			Salt:      v.GetString("hash_salt"),
			Time:      v.GetUint32("hash_time"),
			MemoryKiB: v.GetUint32("hash_memory_kib"),
			Threads:   uint8(v.GetUint("hash_threads")),
		},
	}

	// Swept every half interval, a record at half-interval TTL is gone within one cleanup interval
	if cfg.Alerts.NotificationTTL <= 0 {
		cfg.Alerts.NotificationTTL = cfg.Alerts.CleanupInterval / 2
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the settings that would otherwise fail late at runtime
func (c *Config) Validate() error {
	switch c.Env {
	case EnvLocal, EnvDev, EnvProd:
	default:
		return fmt.Errorf("unknown env %q", c.Env)
	}

	switch c.Storage.Backend {
	case BackendMemory:
	case BackendSQLite:
		if c.Storage.SQLitePath == "" {
			return errors.New("sqlite_path is required for the sqlite backend")
		}
	case BackendPostgres:
		if c.Storage.DatabaseURL == "" {
			return errors.New("database_url is required for the postgres backend")
		}
	case BackendDynamoDB:
		if c.Storage.DynamoTable == "" {
			return errors.New("dynamodb_table is required for the dynamodb backend")
		}
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
	}

	if c.Hash.Salt == "" {
		return errors.New("hash_salt is required")
	}
	if c.Alerts.CleanupInterval <= 0 {
		return errors.New("cleanup_interval must be positive")
	}
	return nil
}

// splitList accepts a YAML list or a comma/space separated string
func splitList(value any) []string {
	var raw []string
	switch v := value.(type) {
	case nil:
		return []string{}
	case string:
		raw = strings.FieldsFunc(v, func(r rune) bool {
			return r == ',' || r == ' ' || r == '\n' || r == '\t'
		})
	case []string:
		raw = v
	case []any:
		for _, item := range v {
			raw = append(raw, fmt.Sprint(item))
		}
	default:
		raw = []string{fmt.Sprint(v)}
	}

	out := make([]string, 0, len(raw))
	for _, item := range raw {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
