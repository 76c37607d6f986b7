package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Defaults(t *testing.T) {
	cfg, err := Parse([]byte(`
auth:
  jwt_secret: test-secret
`))
	require.NoError(t, err)

	assert.Equal(t, ":5000", cfg.HTTP.Address)
	assert.Equal(t, DriverPostgres, cfg.Database.Driver)
	assert.Equal(t, DeletePolicyAllow, cfg.Flights.DeletePolicy)
	assert.Equal(t, 30*time.Second, cfg.Flights.ListCacheTTL())
	assert.Equal(t, "TK-", cfg.Tickets.CodePrefix)
	assert.Equal(t, 24*time.Hour, cfg.Auth.TokenTTL())
	assert.Equal(t, time.UTC, cfg.Schedule.Location())
	assert.Equal(t, "ticket-events", cfg.Kafka.TicketEventsTopic)
}

func TestParse_EnvOverrides(t *testing.T) {
	t.Setenv("DATABASE_DSN", "postgres://u:p@db:5432/flyticket")
	t.Setenv("JWT_SECRET", "from-env")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")

	cfg, err := Parse([]byte(`
database:
  host: ignored
kafka:
  enabled: true
`))
	require.NoError(t, err)

	assert.Equal(t, "postgres://u:p@db:5432/flyticket", cfg.Database.DSN())
	assert.Equal(t, "from-env", cfg.Auth.JWTSecret)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
}

func TestParse_Invalid(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	t.Setenv("KAFKA_BROKERS", "")

	testCases := []struct {
		name string
		yaml string
		msg  string
	}{
		{"missing secret", `database: {driver: memory}`, "jwt_secret"},
		{"unknown driver", "auth: {jwt_secret: s}\ndatabase: {driver: mongo}", "database driver"},
		{"unknown policy", "auth: {jwt_secret: s}\nflights: {delete_policy: cascade}", "delete_policy"},
		{"bad timezone", "auth: {jwt_secret: s}\nschedule: {timezone: Mars/Olympus}", "timezone"},
		{"negative cache ttl", "auth: {jwt_secret: s}\nflights: {list_cache_ttl_seconds: -5}", "list_cache_ttl_seconds"},
		{"negative audit interval", "auth: {jwt_secret: s}\nworker: {audit_interval_minutes: -1}", "audit_interval_minutes"},
		{"kafka without brokers", "auth: {jwt_secret: s}\nkafka: {enabled: true}", "brokers"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse([]byte(tc.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.msg)
		})
	}
}

func TestDatabaseConfig_DSNFromParts(t *testing.T) {
	d := DatabaseConfig{Host: "localhost", Port: 5432, User: "fly", Password: "secret", Name: "flyticket", SSLMode: "disable"}
	assert.Equal(t, "host=localhost port=5432 user=fly password=secret dbname=flyticket sslmode=disable", d.DSN())
}

func TestLoadConfig(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("auth:\n  jwt_secret: file-secret\nschedule:\n  timezone: Europe/Istanbul\n"), 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "file-secret", cfg.Auth.JWTSecret)
	assert.Equal(t, "Europe/Istanbul", cfg.Schedule.Location().String())

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
