// Package config loads service configuration from an optional YAML file
// and environment variables. Env vars override file values. Connection
// strings and API keys are never logged.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Env var names. STOCKSENSE_CONFIG points at an explicit config file;
// otherwise ~/.stocksense/config.yaml is used when present.
const (
	EnvConfigPath    = "STOCKSENSE_CONFIG"
	EnvHTTPPort      = "STOCKSENSE_HTTP_PORT"
	EnvLogLevel      = "STOCKSENSE_LOG_LEVEL"
	EnvDBDriver      = "STOCKSENSE_DB_DRIVER"
	EnvDBDSN         = "STOCKSENSE_DB_DSN"
	EnvClickHouseDSN = "CLICKHOUSE_DSN"
	EnvQueryTimeout  = "STOCKSENSE_QUERY_TIMEOUT_S"
	EnvAPIKeyHash    = "STOCKSENSE_API_KEY_HASH"
	EnvDisableParse  = "STOCKSENSE_DISABLE_SQL_PARSE"
	EnvOpenAIAPIKey  = "STOCKSENSE_OPENAI_API_KEY"
	EnvOpenAIBaseURL = "STOCKSENSE_OPENAI_BASE_URL"
	EnvOpenAIModel   = "STOCKSENSE_OPENAI_MODEL"
)

const defaultConfigDir = ".stocksense"
const configFileName = "config.yaml"

// OpenAI holds generator connection settings.
type OpenAI struct {
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url"`
	Model   string `yaml:"model"`
}

// Config is the fully resolved service configuration.
type Config struct {
	HTTPPort      string `yaml:"http_port"`
	LogLevel      string `yaml:"log_level"`
	DBDriver      string `yaml:"db_driver"` // "postgres" or "sqlite"
	DBDSN         string `yaml:"db_dsn"`
	ClickHouseDSN string `yaml:"clickhouse_dsn"`
	// QueryTimeoutS bounds gateway query execution, in seconds.
	QueryTimeoutS int `yaml:"query_timeout_seconds"`
	// APIKeyHash is a bcrypt hash; when set, endpoints require a Bearer key.
	APIKeyHash string `yaml:"api_key_hash"`
	// DisableSQLParse drops the structural parser; classification then
	// relies on the keyword scan alone.
	DisableSQLParse bool   `yaml:"disable_sql_parse"`
	OpenAI          OpenAI `yaml:"openai"`
}

// QueryTimeout returns the execution bound as a duration.
func (c *Config) QueryTimeout() time.Duration {
	return time.Duration(c.QueryTimeoutS) * time.Second
}

// Load resolves configuration: defaults, then the optional YAML file,
// then environment overrides.
func Load() (*Config, error) {
	c := &Config{
		HTTPPort:      "8080",
		LogLevel:      "info",
		DBDriver:      "postgres",
		QueryTimeoutS: 10,
	}

	path, err := configFilePath()
	if err != nil {
		return nil, fmt.Errorf("config path: %w", err)
	}
	if path != "" {
		if err := c.loadFile(path); err != nil {
			return nil, fmt.Errorf("config file %s: %w", path, err)
		}
	}

	c.applyEnv()

	if c.DBDriver != "postgres" && c.DBDriver != "sqlite" {
		return nil, fmt.Errorf("unsupported db_driver %q", c.DBDriver)
	}
	if c.QueryTimeoutS <= 0 {
		return nil, fmt.Errorf("query_timeout_seconds must be positive, got %d", c.QueryTimeoutS)
	}
	return c, nil
}

func configFilePath() (string, error) {
	if p := os.Getenv(EnvConfigPath); p != "" {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	p := filepath.Join(home, defaultConfigDir, configFileName)
	_, err = os.Stat(p)
	if os.IsNotExist(err) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return p, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, c)
}

func (c *Config) applyEnv() {
	setString(&c.HTTPPort, EnvHTTPPort)
	setString(&c.LogLevel, EnvLogLevel)
	setString(&c.DBDriver, EnvDBDriver)
	setString(&c.DBDSN, EnvDBDSN)
	setString(&c.ClickHouseDSN, EnvClickHouseDSN)
	setString(&c.APIKeyHash, EnvAPIKeyHash)
	setString(&c.OpenAI.APIKey, EnvOpenAIAPIKey)
	setString(&c.OpenAI.BaseURL, EnvOpenAIBaseURL)
	setString(&c.OpenAI.Model, EnvOpenAIModel)

	if v := os.Getenv(EnvQueryTimeout); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.QueryTimeoutS = n
		}
	}
	if v := os.Getenv(EnvDisableParse); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.DisableSQLParse = b
		}
	}
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}
