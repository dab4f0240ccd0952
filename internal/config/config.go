package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultColors is the chart palette used when none is configured
var DefaultColors = []string{
	"#00A4B6",
	"#DF2048",
	"#81ACBB",
	"#F8962F",
	"#BE4127",
	"#86BB7D",
	"#EBD11C",
}

// Config holds the application configuration
type Config struct {
	Datasource    Datasource      `yaml:"datasource"`
	Server        ServerConfig    `yaml:"server,omitempty"`
	Dashboard     DashboardConfig `yaml:"dashboard,omitempty"`
	Log           LogConfig       `yaml:"log,omitempty"`
	MQTT          MQTTConfig      `yaml:"mqtt,omitempty"`
	HomeAssistant HAConfig        `yaml:"home_assistant,omitempty"`
}

// Datasource describes how to reach the analytical warehouse
type Datasource struct {
	Dialect      string        `yaml:"dialect,omitempty"` // duckdb, postgres or sqlite (default: duckdb)
	DSN          string        `yaml:"dsn,omitempty"`     // Overrides the generated connection string
	Host         string        `yaml:"host,omitempty"`    // e.g., "pg.us-east-1-aws.motherduck.com"
	User         string        `yaml:"user,omitempty"`
	DBName       string        `yaml:"db_name"`
	Token        string        `yaml:"token"`
	SchemaName   string        `yaml:"schema_name"`
	QueryTimeout time.Duration `yaml:"query_timeout,omitempty"`
}

// ServerConfig holds the dashboard HTTP server settings
type ServerConfig struct {
	Addr string `yaml:"addr,omitempty"` // e.g., ":8501"
}

// DashboardConfig controls page text and chart styling
type DashboardConfig struct {
	Title        string   `yaml:"title,omitempty"`
	PrimaryColor string   `yaml:"primary_color,omitempty"`
	Colors       []string `yaml:"colors,omitempty"`
}

// LogConfig controls the structured logger
type LogConfig struct {
	Level       string `yaml:"level,omitempty"`
	Development bool   `yaml:"development,omitempty"`
}

// MQTTConfig holds MQTT broker settings for publishing meter totals
type MQTTConfig struct {
	Enabled     bool   `yaml:"enabled"`
	Broker      string `yaml:"broker"`                 // e.g., "homeassistant.local:1883"
	Username    string `yaml:"username,omitempty"`
	Password    string `yaml:"password,omitempty"`
	TopicPrefix string `yaml:"topic_prefix,omitempty"` // Default: "chargerdash"
}

// HAConfig holds Home Assistant HTTP API configuration
type HAConfig struct {
	Enabled      bool   `yaml:"enabled"`
	URL          string `yaml:"url"`                     // e.g., "http://homeassistant.local:8123"
	Token        string `yaml:"token"`                   // Long-lived access token
	EntityPrefix string `yaml:"entity_prefix,omitempty"` // Default: "sensor.charger"
}

// Load reads the config file and applies environment overrides.
// A missing file yields a config built from the environment alone.
func Load(configPath string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(configPath)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	if err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	cfg.applyEnv()
	return &cfg, nil
}

// LoadEnvFile loads secrets from a dotenv file into the process environment.
// Variables already set are left untouched and a missing file is not an error.
func LoadEnvFile(path string) error {
	if err := godotenv.Load(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("loading env file: %w", err)
	}
	return nil
}

// Save writes the config to file
func Save(configPath string, cfg *Config) error {
	// Ensure directory exists
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}

// DefaultConfigPath returns the default config file path (local directory)
func DefaultConfigPath() string {
	return "config.yaml"
}

// DefaultEnvPath returns the default secrets file path (local directory)
func DefaultEnvPath() string {
	return ".env"
}

func (c *Config) applyEnv() {
	if v := strings.TrimSpace(os.Getenv("CHARGERDASH_DB_NAME")); v != "" {
		c.Datasource.DBName = v
	}
	if v := strings.TrimSpace(os.Getenv("CHARGERDASH_DB_TOKEN")); v != "" {
		c.Datasource.Token = v
	}
	if v := strings.TrimSpace(os.Getenv("CHARGERDASH_SCHEMA")); v != "" {
		c.Datasource.SchemaName = v
	}
	if v := strings.TrimSpace(os.Getenv("CHARGERDASH_DSN")); v != "" {
		c.Datasource.DSN = v
	} else if v := strings.TrimSpace(os.Getenv("DATABASE_URL")); v != "" && c.Datasource.DSN == "" {
		c.Datasource.DSN = v
	}
}

// GetDialect returns the SQL dialect with a default of duckdb
func (d Datasource) GetDialect() string {
	if d.Dialect == "" {
		return "duckdb"
	}
	return strings.ToLower(d.Dialect)
}

// GetHost returns the warehouse host, falling back to the MotherDuck Postgres endpoint
func (d Datasource) GetHost() string {
	if d.Host == "" {
		return "pg.us-east-1-aws.motherduck.com:5432"
	}
	return d.Host
}

// GetQueryTimeout returns the per-query timeout with a default of 30 seconds
func (d Datasource) GetQueryTimeout() time.Duration {
	if d.QueryTimeout <= 0 {
		return 30 * time.Second
	}
	return d.QueryTimeout
}

// ConnectionString returns the DSN for the configured warehouse.
// An explicit DSN wins. Otherwise sqlite treats db_name as a file path and
// the Postgres wire dialects embed db_name and token in a postgres:// URL.
func (d Datasource) ConnectionString() (string, error) {
	if d.DSN != "" {
		return d.DSN, nil
	}
	if d.DBName == "" {
		return "", fmt.Errorf("datasource db_name is required when no dsn is set")
	}

	if d.GetDialect() == "sqlite" {
		return d.DBName, nil
	}

	if d.Token == "" {
		return "", fmt.Errorf("datasource token is required for %s", d.GetDialect())
	}

	user := d.User
	if user == "" {
		user = "postgres"
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(user, d.Token),
		Host:     d.GetHost(),
		Path:     "/" + d.DBName,
		RawQuery: "sslmode=require",
	}
	return u.String(), nil
}

// GetAddr returns the listen address with a default of :8501
func (s ServerConfig) GetAddr() string {
	if s.Addr == "" {
		return ":8501"
	}
	return s.Addr
}

// GetTitle returns the dashboard title
func (d DashboardConfig) GetTitle() string {
	if d.Title == "" {
		return "VTEC Charger Data Dashboard"
	}
	return d.Title
}

// GetPrimaryColor returns the accent colour used for section rules
func (d DashboardConfig) GetPrimaryColor() string {
	if d.PrimaryColor == "" {
		return "#00A4B6"
	}
	return d.PrimaryColor
}

// GetColors returns the chart palette
func (d DashboardConfig) GetColors() []string {
	if len(d.Colors) == 0 {
		return DefaultColors
	}
	return d.Colors
}

// GetTopicPrefix returns the MQTT topic prefix
func (m MQTTConfig) GetTopicPrefix() string {
	if m.TopicPrefix == "" {
		return "chargerdash"
	}
	return m.TopicPrefix
}

// GetEntityPrefix returns the Home Assistant entity id prefix
func (h HAConfig) GetEntityPrefix() string {
	if h.EntityPrefix == "" {
		return "sensor.charger"
	}
	return h.EntityPrefix
}
