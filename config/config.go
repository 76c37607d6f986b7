package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"

	DeletePolicyAllow        = "allow"
	DeletePolicyRejectBooked = "reject_booked"
)

type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Kafka    KafkaConfig    `yaml:"kafka"`
	Schedule ScheduleConfig `yaml:"schedule"`
	Flights  FlightsConfig  `yaml:"flights"`
	Tickets  TicketsConfig  `yaml:"tickets"`
	Auth     AuthConfig     `yaml:"auth"`
	Worker   WorkerConfig   `yaml:"worker"`
	Log      LogConfig      `yaml:"log"`
}

type HTTPConfig struct {
	Address             string `yaml:"address"`
	ReadTimeoutSeconds  int    `yaml:"read_timeout_seconds"`
	WriteTimeoutSeconds int    `yaml:"write_timeout_seconds"`
}

type DatabaseConfig struct {
	Driver   string `yaml:"driver"`
	DSNValue string `yaml:"dsn"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	SSLMode  string `yaml:"ssl_mode"`
}

// DSN returns the explicit dsn when set, otherwise one built from the parts.
func (d DatabaseConfig) DSN() string {
	if d.DSNValue != "" {
		return d.DSNValue
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s", d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

type RedisConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type KafkaConfig struct {
	Enabled            bool     `yaml:"enabled"`
	Brokers            []string `yaml:"brokers"`
	TicketEventsTopic  string   `yaml:"ticket_events_topic"`
	NotificationsTopic string   `yaml:"notifications_topic"`
	GroupID            string   `yaml:"group_id"`
}

type ScheduleConfig struct {
	Timezone string `yaml:"timezone"`
}

// Location resolves the configured timezone. Validate guarantees it loads.
func (s ScheduleConfig) Location() *time.Location {
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

type FlightsConfig struct {
	ListCacheTTLSeconds int    `yaml:"list_cache_ttl_seconds"`
	DeletePolicy        string `yaml:"delete_policy"`
}

func (f FlightsConfig) ListCacheTTL() time.Duration {
	return time.Duration(f.ListCacheTTLSeconds) * time.Second
}

type TicketsConfig struct {
	CodePrefix      string `yaml:"code_prefix"`
	MaxCodeAttempts int    `yaml:"max_code_attempts"`
}

type AuthConfig struct {
	JWTSecret         string `yaml:"jwt_secret"`
	TokenTTLHours     int    `yaml:"token_ttl_hours"`
	BcryptCost        int    `yaml:"bcrypt_cost"`
	SeedAdminUsername string `yaml:"seed_admin_username"`
	SeedAdminPassword string `yaml:"seed_admin_password"`
}

func (a AuthConfig) TokenTTL() time.Duration {
	return time.Duration(a.TokenTTLHours) * time.Hour
}

type WorkerConfig struct {
	AuditIntervalMinutes int `yaml:"audit_interval_minutes"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// LoadConfig reads the YAML file at path, applies environment overrides and
// defaults, and validates the result. A .env file next to the process is
// loaded first when present.
func LoadConfig(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	return Parse(data)
}

// Parse builds a Config from YAML bytes plus the process environment.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnv()
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("DATABASE_DSN"); v != "" {
		c.Database.DSNValue = v
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		c.Auth.JWTSecret = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Redis.Addr = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
	}
}

func (c *Config) applyDefaults() {
	if c.HTTP.Address == "" {
		c.HTTP.Address = ":5000"
	}
	if c.HTTP.ReadTimeoutSeconds == 0 {
		c.HTTP.ReadTimeoutSeconds = 10
	}
	if c.HTTP.WriteTimeoutSeconds == 0 {
		c.HTTP.WriteTimeoutSeconds = 10
	}
	if c.Database.Driver == "" {
		c.Database.Driver = DriverPostgres
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = "disable"
	}
	if c.Kafka.TicketEventsTopic == "" {
		c.Kafka.TicketEventsTopic = "ticket-events"
	}
	if c.Kafka.NotificationsTopic == "" {
		c.Kafka.NotificationsTopic = "ticket-notifications"
	}
	if c.Kafka.GroupID == "" {
		c.Kafka.GroupID = "flyticket-worker"
	}
	if c.Schedule.Timezone == "" {
		c.Schedule.Timezone = "UTC"
	}
	if c.Flights.ListCacheTTLSeconds == 0 {
		c.Flights.ListCacheTTLSeconds = 30
	}
	if c.Flights.DeletePolicy == "" {
		c.Flights.DeletePolicy = DeletePolicyAllow
	}
	if c.Tickets.CodePrefix == "" {
		c.Tickets.CodePrefix = "TK-"
	}
	if c.Tickets.MaxCodeAttempts == 0 {
		c.Tickets.MaxCodeAttempts = 3
	}
	if c.Auth.TokenTTLHours == 0 {
		c.Auth.TokenTTLHours = 24
	}
	if c.Auth.BcryptCost == 0 {
		c.Auth.BcryptCost = 10
	}
	if c.Worker.AuditIntervalMinutes == 0 {
		c.Worker.AuditIntervalMinutes = 15
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "json"
	}
}

func (c *Config) Validate() error {
	switch c.Database.Driver {
	case DriverPostgres, DriverMemory:
	default:
		return fmt.Errorf("invalid config: unknown database driver %q", c.Database.Driver)
	}
	switch c.Flights.DeletePolicy {
	case DeletePolicyAllow, DeletePolicyRejectBooked:
	default:
		return fmt.Errorf("invalid config: unknown flights delete_policy %q", c.Flights.DeletePolicy)
	}
	if _, err := time.LoadLocation(c.Schedule.Timezone); err != nil {
		return fmt.Errorf("invalid config: schedule timezone: %w", err)
	}
	if c.Auth.JWTSecret == "" {
		return errors.New("invalid config: auth jwt_secret is required")
	}
	if c.Tickets.MaxCodeAttempts < 1 {
		return errors.New("invalid config: tickets max_code_attempts must be positive")
	}
	if c.Flights.ListCacheTTLSeconds < 1 {
		return errors.New("invalid config: flights list_cache_ttl_seconds must be positive")
	}
	if c.Worker.AuditIntervalMinutes < 1 {
		return errors.New("invalid config: worker audit_interval_minutes must be positive")
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return errors.New("invalid config: kafka enabled without brokers")
	}
	return nil
}
