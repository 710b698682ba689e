package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
)

const (
	BackendMemory    = "memory"
	BackendPostgres  = "postgres"
	BackendMongo     = "mongo"
	BackendCassandra = "cassandra"
)

type Config struct {
	HTTP    HTTPConfig    `toml:"http"`
	GRPC    GRPCConfig    `toml:"grpc"`
	Tracing TracingConfig `toml:"tracing"`
	Store   StoreConfig   `toml:"store"`
	Seed    SeedConfig    `toml:"seed"`
	Log     LogConfig     `toml:"log"`
}

type HTTPConfig struct {
	Address        string   `toml:"address"`
	AllowedOrigins []string `toml:"allowed_origins"`
	// BindPathID makes PUT /tasks/{id} use the path id instead of the body id.
	BindPathID bool `toml:"bind_path_id"`
}

type GRPCConfig struct {
	Address string `toml:"address"`
}

type TracingConfig struct {
	JaegerAddress string `toml:"jaeger_address"`
}

type StoreConfig struct {
	Backend           string   `toml:"backend"`
	PostgresURL       string   `toml:"postgres_url"`
	MongoURI          string   `toml:"mongo_uri"`
	CassandraHosts    []string `toml:"cassandra_hosts"`
	CassandraKeyspace string   `toml:"cassandra_keyspace"`
	ConnectAttempts   int      `toml:"connect_attempts"`
}

type SeedConfig struct {
	Enabled bool `toml:"enabled"`
}

type LogConfig struct {
	Level string `toml:"level"`
}

func Default() Config {
	return Config{
		HTTP: HTTPConfig{
			Address:        ":8080",
			AllowedOrigins: []string{"http://localhost:3000"},
		},
		Store: StoreConfig{
			Backend:           BackendMemory,
			CassandraHosts:    []string{"cassandra-db"},
			CassandraKeyspace: "tasks",
			ConnectAttempts:   5,
		},
		Seed: SeedConfig{Enabled: true},
		Log:  LogConfig{Level: "info"},
	}
}

// GetConfig builds the configuration from defaults, the TOML file named by
// TASKS_CONFIG (if any) and the environment, in that order.
func GetConfig() (Config, error) {
	cfg := Default()

	if path := os.Getenv("TASKS_CONFIG"); path != "" {
		if err := LoadFile(&cfg, path); err != nil {
			return Config{}, err
		}
	}

	if err := loadFromEnv(&cfg, os.LookupEnv); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func LoadFile(cfg *Config, path string) error {
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return fmt.Errorf("loading config file %s: %w", path, err)
	}
	return nil
}

func loadFromEnv(cfg *Config, lookup func(string) (string, bool)) error {
	if v, ok := lookup("TASKS_SERVICE_ADDRESS"); ok && v != "" {
		cfg.HTTP.Address = v
	}
	if v, ok := lookup("ALLOWED_ORIGINS"); ok {
		cfg.HTTP.AllowedOrigins = splitList(v)
	}
	if v, ok := lookup("BIND_PATH_ID"); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("BIND_PATH_ID: %w", err)
		}
		cfg.HTTP.BindPathID = b
	}
	if v, ok := lookup("GRPC_ADDRESS"); ok {
		cfg.GRPC.Address = v
	}
	if v, ok := lookup("JAEGER_ADDRESS"); ok {
		cfg.Tracing.JaegerAddress = v
	}
	if v, ok := lookup("STORE_BACKEND"); ok && v != "" {
		cfg.Store.Backend = strings.ToLower(v)
	}
	if v, ok := lookup("DB_URL"); ok && v != "" {
		cfg.Store.PostgresURL = v
	}
	if v, ok := lookup("MONGO_DB_URI"); ok && v != "" {
		cfg.Store.MongoURI = v
	}
	if v, ok := lookup("CASSANDRA_HOSTS"); ok && v != "" {
		cfg.Store.CassandraHosts = splitList(v)
	}
	if v, ok := lookup("CASSANDRA_KEYSPACE"); ok && v != "" {
		cfg.Store.CassandraKeyspace = v
	}
	if v, ok := lookup("STORE_CONNECT_ATTEMPTS"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("STORE_CONNECT_ATTEMPTS: %w", err)
		}
		cfg.Store.ConnectAttempts = n
	}
	if v, ok := lookup("SEED_ENABLED"); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("SEED_ENABLED: %w", err)
		}
		cfg.Seed.Enabled = b
	}
	if v, ok := lookup("LOG_LEVEL"); ok && v != "" {
		cfg.Log.Level = v
	}
	return nil
}

func (c Config) Validate() error {
	switch c.Store.Backend {
	case BackendMemory:
	case BackendPostgres:
		if c.Store.PostgresURL == "" {
			return fmt.Errorf("store backend %q requires DB_URL", c.Store.Backend)
		}
	case BackendMongo:
		if c.Store.MongoURI == "" {
			return fmt.Errorf("store backend %q requires MONGO_DB_URI", c.Store.Backend)
		}
	case BackendCassandra:
		if len(c.Store.CassandraHosts) == 0 {
			return fmt.Errorf("store backend %q requires CASSANDRA_HOSTS", c.Store.Backend)
		}
	default:
		return fmt.Errorf("unknown store backend %q", c.Store.Backend)
	}
	if c.Store.ConnectAttempts < 1 {
		return fmt.Errorf("connect attempts must be positive, got %d", c.Store.ConnectAttempts)
	}
	if c.HTTP.Address == "" {
		return fmt.Errorf("http address is empty")
	}
	return nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
