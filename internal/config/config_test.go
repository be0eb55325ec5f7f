package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/VladimirNagibin/bolashaq-production-sync/internal/backoff"
	"github.com/VladimirNagibin/bolashaq-production-sync/internal/config"
	"github.com/VladimirNagibin/bolashaq-production-sync/internal/gate"
)

// writeConfig writes a config file into a temp dir and returns its path.
func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	cfg, err := config.Load(filepath.Join(t.TempDir(), "missing.yml"))
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	// Defaults mirror the worker's own settings.
	assert.Equal(t, "rabbitmq", cfg.Rabbit.Host)
	assert.Equal(t, 5672, cfg.Rabbit.Port)
	assert.Equal(t, "imap_server", cfg.Mail.Host)
	assert.Equal(t, 993, cfg.Mail.Port)
	assert.Equal(t, time.Second, cfg.Gate.PollInterval)
	assert.Equal(t, time.Duration(0), cfg.Gate.Timeout)
	assert.Equal(t, 5*time.Second, cfg.Gate.ConnectTimeout)
	assert.Equal(t, backoff.KindFixed, cfg.Gate.Backoff.Kind)
	assert.Equal(t, []string{"python", "main.py"}, cfg.Entry.Command)
}

func TestLoad_YAMLValues(t *testing.T) {
	path := writeConfig(t, `
rabbitmq:
  host: broker.internal
  port: 5673
imap:
  host: mail.internal
  port: 143
gate:
  poll_interval: 250ms
  timeout: 2m
  backoff:
    kind: exponential
    multiplier: 1.5
    max_delay: 10s
entry:
  command: ["worker", "--once"]
`)

	cfg, err := config.Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "broker.internal", cfg.Rabbit.Host)
	assert.Equal(t, 5673, cfg.Rabbit.Port)
	assert.Equal(t, "mail.internal", cfg.Mail.Host)
	assert.Equal(t, 143, cfg.Mail.Port)
	assert.Equal(t, 250*time.Millisecond, cfg.Gate.PollInterval)
	assert.Equal(t, 2*time.Minute, cfg.Gate.Timeout)
	assert.Equal(t, backoff.KindExponential, cfg.Gate.Backoff.Kind)
	assert.Equal(t, []string{"worker", "--once"}, cfg.Entry.Command)
}

func TestLoad_EnvOverridesYAML(t *testing.T) {
	path := writeConfig(t, `
rabbitmq:
  host: from-yaml
  port: 1111
`)

	t.Setenv("RABBIT_HOST", "from-env")
	t.Setenv("RABBIT_PORT", "2222")
	t.Setenv("GATE_POLL_INTERVAL", "3s")
	t.Setenv("GATE_TIMEOUT", "30s")

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.Rabbit.Host)
	assert.Equal(t, 2222, cfg.Rabbit.Port)
	assert.Equal(t, 3*time.Second, cfg.Gate.PollInterval)
	assert.Equal(t, 30*time.Second, cfg.Gate.Timeout)
}

func TestLoad_EntryFromEnv(t *testing.T) {
	t.Setenv("GATE_ENTRY", "python main.py --verbose")

	cfg, err := config.Load(filepath.Join(t.TempDir(), "missing.yml"))
	require.NoError(t, err)

	assert.Equal(t, []string{"python", "main.py", "--verbose"}, cfg.Entry.Command)
}

func TestLoad_UnparseableEnvValue(t *testing.T) {
	testCases := []struct {
		name  string
		key   string
		value string
	}{
		{"non-numeric port", "RABBIT_PORT", "abc"},
		{"non-duration interval", "GATE_POLL_INTERVAL", "soon"},
		{"non-duration timeout", "GATE_TIMEOUT", "5 minutes"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv(tc.key, tc.value)

			// A typo must fail loudly instead of silently keeping the
			// default and polling the wrong dependency.
			_, err := config.Load(filepath.Join(t.TempDir(), "missing.yml"))
			require.Error(t, err)
			assert.ErrorIs(t, err, gate.ErrInvalidConfig)
			assert.ErrorContains(t, err, tc.key)
		})
	}
}

func TestLoad_MalformedYAML(t *testing.T) {
	path := writeConfig(t, "rabbitmq: [not a mapping")

	_, err := config.Load(path)
	require.Error(t, err)
}

func TestValidate_Errors(t *testing.T) {
	testCases := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{"empty broker host", func(c *config.Config) { c.Rabbit.Host = "" }},
		{"broker port too large", func(c *config.Config) { c.Rabbit.Port = 70000 }},
		{"empty mail host", func(c *config.Config) { c.Mail.Host = "" }},
		{"unnamed extra target", func(c *config.Config) {
			c.Extra = []config.TargetConfig{{Host: "db", Port: 5432}}
		}},
		{"extra target bad port", func(c *config.Config) {
			c.Extra = []config.TargetConfig{{Name: "db", Host: "db", Port: 0}}
		}},
		{"zero poll interval", func(c *config.Config) { c.Gate.PollInterval = 0 }},
		{"negative poll interval", func(c *config.Config) { c.Gate.PollInterval = -time.Second }},
		{"negative timeout", func(c *config.Config) { c.Gate.Timeout = -time.Minute }},
		{"zero connect timeout", func(c *config.Config) { c.Gate.ConnectTimeout = 0 }},
		{"unknown backoff kind", func(c *config.Config) { c.Gate.Backoff.Kind = "fibonacci" }},
		{"empty entry command", func(c *config.Config) { c.Entry.Command = nil }},
		{"blank entry command", func(c *config.Config) { c.Entry.Command = []string{""} }},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg, err := config.Load(filepath.Join(t.TempDir(), "missing.yml"))
			require.NoError(t, err)

			tc.mutate(cfg)

			validateErr := cfg.Validate()
			require.Error(t, validateErr)
			assert.ErrorIs(t, validateErr, gate.ErrInvalidConfig)
		})
	}
}

func TestTargets_OrderAndExtras(t *testing.T) {
	cfg, err := config.Load(filepath.Join(t.TempDir(), "missing.yml"))
	require.NoError(t, err)

	cfg.Extra = []config.TargetConfig{{Name: "postgres", Host: "db", Port: 5432}}

	targets := cfg.Targets()
	require.Len(t, targets, 3)
	assert.Equal(t, "rabbitmq", targets[0].Name)
	assert.Equal(t, "imap", targets[1].Name)
	assert.Equal(t, "postgres", targets[2].Name)
	assert.Equal(t, "db:5432", targets[2].Addr())
}

func TestPolicy_FromConfig(t *testing.T) {
	cfg, err := config.Load(filepath.Join(t.TempDir(), "missing.yml"))
	require.NoError(t, err)

	cfg.Gate.PollInterval = 2 * time.Second

	policy, err := cfg.Policy()
	require.NoError(t, err)
	assert.Equal(t, backoff.Fixed{Interval: 2 * time.Second}, policy)

	cfg.Gate.Backoff.Kind = backoff.KindExponential
	policy, err = cfg.Policy()
	require.NoError(t, err)
	assert.IsType(t, backoff.Exponential{}, policy)

	cfg.Gate.Backoff.Kind = "bogus"
	_, err = cfg.Policy()
	assert.ErrorIs(t, err, gate.ErrInvalidConfig)
}

func TestGetConfigPath(t *testing.T) {
	assert.Equal(t, "config.yml", config.GetConfigPath("config.yml"))

	t.Setenv("CONFIG_PATH", "/etc/gate/config.yml")
	assert.Equal(t, "/etc/gate/config.yml", config.GetConfigPath("config.yml"))
}
