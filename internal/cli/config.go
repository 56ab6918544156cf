package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"

	"github.com/mesh-intelligence/backstage/internal/paths"
	"github.com/mesh-intelligence/backstage/pkg/types"
)

const (
	configFileName = "config"
	configFileType = "yaml"
	envPrefix      = "BACKSTAGE"
)

// Config keys.
const (
	cfgKeyBackend     = "backend"
	cfgKeyDataDir     = "data_dir"
	cfgKeySeed        = "seed"
	cfgKeyPostgresDSN = "postgres.dsn"
	cfgKeyRedisAddr   = "redis.addr"
	cfgKeyRedisPass   = "redis.password"
	cfgKeyRedisDB     = "redis.db"
	cfgKeyRedisPrefix = "redis.prefix"
	cfgKeyHTTPAddr    = "http.addr"
	cfgKeyCORSOrigins = "http.cors_origins"
	cfgKeyLogLevel    = "log.level"
	cfgKeyLogFormat   = "log.format"
)

// defaultConfigYAML is written to config.yaml on first run.
const defaultConfigYAML = `# backstage configuration

# Storage backend: memory, sqlite, postgres or redis.
backend: memory

# Data directory for the sqlite backend (overridable by --data-dir).
# data_dir:

# Seed empty tables with sample rows on attach. Defaults to true for memory.
# seed: true

postgres:
  dsn: ""

redis:
  addr: "localhost:6379"
  password: ""
  db: 0
  prefix: "backstage:"

http:
  addr: ":8080"
  cors_origins: []

log:
  level: info
  format: json
`

// settings is everything a command needs from config.yaml, the
// environment and the global flags.
type settings struct {
	Console     types.Config
	HTTPAddr    string
	CORSOrigins []string
	LogLevel    string
	LogFormat   string
}

// loadConfig reads config.yaml from configDir using Viper. It creates the
// directory and a default config.yaml on first run. BACKSTAGE_* environment
// variables override file values.
func loadConfig(configDir string) (*viper.Viper, error) {
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return nil, fmt.Errorf("ensure config dir: %w", err)
	}
	if err := ensureDefaultConfigFile(configDir); err != nil {
		return nil, fmt.Errorf("ensure default config: %w", err)
	}

	v := viper.New()
	v.SetDefault(cfgKeyBackend, types.BackendMemory)
	v.SetDefault(cfgKeyRedisAddr, "localhost:6379")
	v.SetDefault(cfgKeyRedisPrefix, "backstage:")
	v.SetDefault(cfgKeyHTTPAddr, ":8080")
	v.SetDefault(cfgKeyLogLevel, "info")
	v.SetDefault(cfgKeyLogFormat, "json")
	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(configDir)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return v, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	return v, nil
}

// ensureDefaultConfigFile creates a default config.yaml if the file does not
// exist in the config directory.
func ensureDefaultConfigFile(configDir string) error {
	path := paths.ConfigFile(configDir)

	_, err := os.Stat(path)
	if err == nil {
		return nil
	}
	if !os.IsNotExist(err) {
		return fmt.Errorf("stat config file: %w", err)
	}
	return os.WriteFile(path, []byte(defaultConfigYAML), 0o644)
}

// resolveSettings merges flags over config over defaults.
func resolveSettings(flags *rootFlags) (settings, error) {
	configDir, err := paths.ResolveConfigDir(flags.configDir)
	if err != nil {
		return settings{}, fmt.Errorf("resolve config dir: %w", err)
	}
	v, err := loadConfig(configDir)
	if err != nil {
		return settings{}, err
	}

	dataDir, err := paths.ResolveDataDir(flags.dataDir, v.GetString(cfgKeyDataDir))
	if err != nil {
		return settings{}, fmt.Errorf("resolve data dir: %w", err)
	}

	backend := v.GetString(cfgKeyBackend)
	if flags.backend != "" {
		backend = flags.backend
	}
	seed := backend == types.BackendMemory
	if v.IsSet(cfgKeySeed) {
		seed = v.GetBool(cfgKeySeed)
	}
	logLevel := v.GetString(cfgKeyLogLevel)
	if flags.logLevel != "" {
		logLevel = flags.logLevel
	}

	return settings{
		Console: types.Config{
			Backend:  backend,
			DataDir:  dataDir,
			Seed:     seed,
			Postgres: types.PostgresConfig{DSN: v.GetString(cfgKeyPostgresDSN)},
			Redis: types.RedisConfig{
				Addr:     v.GetString(cfgKeyRedisAddr),
				Password: v.GetString(cfgKeyRedisPass),
				DB:       v.GetInt(cfgKeyRedisDB),
				Prefix:   v.GetString(cfgKeyRedisPrefix),
			},
		},
		HTTPAddr:    v.GetString(cfgKeyHTTPAddr),
		CORSOrigins: v.GetStringSlice(cfgKeyCORSOrigins),
		LogLevel:    logLevel,
		LogFormat:   v.GetString(cfgKeyLogFormat),
	}, nil
}
