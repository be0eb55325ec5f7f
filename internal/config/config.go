package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/VladimirNagibin/bolashaq-production-sync/internal/backoff"
	"github.com/VladimirNagibin/bolashaq-production-sync/internal/gate"
	"github.com/VladimirNagibin/bolashaq-production-sync/internal/logger"
)

// Default configuration values. Broker and mail defaults mirror the
// worker's own settings so the gate and the worker it launches agree on
// which dependencies matter.
const (
	defaultRabbitHost = "rabbitmq"
	defaultRabbitPort = 5672
	defaultIMAPHost   = "imap_server"
	defaultIMAPPort   = 993

	defaultPollInterval   = time.Second
	defaultConnectTimeout = 5 * time.Second
	defaultMultiplier     = 2.0
	defaultMaxDelay       = 30 * time.Second

	maxPort = 65535
)

// defaultEntryCommand launches the worker's main entry point.
var defaultEntryCommand = []string{"python", "main.py"}

// Config holds the full gate configuration.
type Config struct {
	Rabbit  BrokerConfig   `yaml:"rabbitmq"`
	Mail    MailConfig     `yaml:"imap"`
	Extra   []TargetConfig `yaml:"extra_targets"`
	Gate    GateSettings   `yaml:"gate"`
	Entry   EntryConfig    `yaml:"entry"`
	Logging logger.Config  `yaml:"logging"`
}

// BrokerConfig holds the message broker target.
type BrokerConfig struct {
	Host string `env:"RABBIT_HOST" yaml:"host"`
	Port int    `env:"RABBIT_PORT" yaml:"port"`
}

// MailConfig holds the IMAP server target.
type MailConfig struct {
	Host string `env:"EMAIL_IMAP_SERVER" yaml:"host"`
	Port int    `env:"EMAIL_IMAP_PORT"   yaml:"port"`
}

// TargetConfig holds an additional named target.
type TargetConfig struct {
	Name string `yaml:"name"`
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// GateSettings holds the polling behavior configuration.
type GateSettings struct {
	// PollInterval is the delay between connection attempts per target.
	PollInterval time.Duration `env:"GATE_POLL_INTERVAL" yaml:"poll_interval"`
	// Timeout bounds the whole wait. Zero means wait forever; external
	// termination (orchestrator health checks) is then the only way out.
	Timeout time.Duration `env:"GATE_TIMEOUT" yaml:"timeout"`
	// ConnectTimeout caps a single connection attempt.
	ConnectTimeout time.Duration `env:"GATE_CONNECT_TIMEOUT" yaml:"connect_timeout"`
	// Backoff selects the retry-delay policy.
	Backoff BackoffSettings `yaml:"backoff"`
}

// BackoffSettings selects and tunes the retry-delay policy.
type BackoffSettings struct {
	// Kind is "fixed" (default) or "exponential".
	Kind       string        `env:"GATE_BACKOFF" yaml:"kind"`
	Multiplier float64       `yaml:"multiplier"`
	MaxDelay   time.Duration `yaml:"max_delay"`
	Jitter     float64       `yaml:"jitter"`
}

// EntryConfig holds the command the gate hands off to.
type EntryConfig struct {
	Command []string `yaml:"command"`
}

// Load resolves the gate configuration from the given path plus the
// environment. GATE_ENTRY overrides the entry command, split on
// whitespace, matching how compose files write command strings.
func Load(path string) (*Config, error) {
	cfg, err := loadWithDefaults[Config](path, setDefaults)
	if err != nil {
		return nil, err
	}

	if entry := os.Getenv("GATE_ENTRY"); entry != "" {
		cfg.Entry.Command = strings.Fields(entry)
	}

	return cfg, nil
}

// setDefaults applies default values to the config.
func setDefaults(cfg *Config) {
	if cfg.Rabbit.Host == "" {
		cfg.Rabbit.Host = defaultRabbitHost
	}
	if cfg.Rabbit.Port == 0 {
		cfg.Rabbit.Port = defaultRabbitPort
	}
	if cfg.Mail.Host == "" {
		cfg.Mail.Host = defaultIMAPHost
	}
	if cfg.Mail.Port == 0 {
		cfg.Mail.Port = defaultIMAPPort
	}
	if cfg.Gate.PollInterval == 0 {
		cfg.Gate.PollInterval = defaultPollInterval
	}
	if cfg.Gate.ConnectTimeout == 0 {
		cfg.Gate.ConnectTimeout = defaultConnectTimeout
	}
	if cfg.Gate.Backoff.Kind == "" {
		cfg.Gate.Backoff.Kind = backoff.KindFixed
	}
	if cfg.Gate.Backoff.Multiplier == 0 {
		cfg.Gate.Backoff.Multiplier = defaultMultiplier
	}
	if cfg.Gate.Backoff.MaxDelay == 0 {
		cfg.Gate.Backoff.MaxDelay = defaultMaxDelay
	}
	if len(cfg.Entry.Command) == 0 {
		cfg.Entry.Command = defaultEntryCommand
	}
	cfg.Logging.SetDefaults()
}

// Targets returns the ordered target list: broker, mail server, extras.
func (c *Config) Targets() []gate.Target {
	targets := []gate.Target{
		{Name: "rabbitmq", Host: c.Rabbit.Host, Port: c.Rabbit.Port},
		{Name: "imap", Host: c.Mail.Host, Port: c.Mail.Port},
	}
	for _, t := range c.Extra {
		targets = append(targets, gate.Target{Name: t.Name, Host: t.Host, Port: t.Port})
	}
	return targets
}

// Policy builds the retry-delay policy selected by the configuration.
func (c *Config) Policy() (backoff.Policy, error) {
	switch c.Gate.Backoff.Kind {
	case backoff.KindFixed:
		return backoff.Fixed{Interval: c.Gate.PollInterval}, nil
	case backoff.KindExponential:
		return backoff.Exponential{
			Initial:    c.Gate.PollInterval,
			Multiplier: c.Gate.Backoff.Multiplier,
			MaxDelay:   c.Gate.Backoff.MaxDelay,
			Jitter:     c.Gate.Backoff.Jitter,
		}, nil
	default:
		return nil, fmt.Errorf("%w: unknown backoff kind %q", gate.ErrInvalidConfig, c.Gate.Backoff.Kind)
	}
}

// Validate checks the configuration before any network activity.
// All failures wrap gate.ErrInvalidConfig.
func (c *Config) Validate() error {
	if err := validateTarget("rabbitmq", c.Rabbit.Host, c.Rabbit.Port); err != nil {
		return err
	}
	if err := validateTarget("imap", c.Mail.Host, c.Mail.Port); err != nil {
		return err
	}
	for i, t := range c.Extra {
		if t.Name == "" {
			return fmt.Errorf("%w: extra_targets[%d].name is required", gate.ErrInvalidConfig, i)
		}
		if err := validateTarget(t.Name, t.Host, t.Port); err != nil {
			return err
		}
	}
	if c.Gate.PollInterval <= 0 {
		return fmt.Errorf("%w: poll_interval must be positive, got %v", gate.ErrInvalidConfig, c.Gate.PollInterval)
	}
	if c.Gate.Timeout < 0 {
		return fmt.Errorf("%w: timeout must not be negative, got %v", gate.ErrInvalidConfig, c.Gate.Timeout)
	}
	if c.Gate.ConnectTimeout <= 0 {
		return fmt.Errorf("%w: connect_timeout must be positive, got %v", gate.ErrInvalidConfig, c.Gate.ConnectTimeout)
	}
	if _, err := c.Policy(); err != nil {
		return err
	}
	if len(c.Entry.Command) == 0 || c.Entry.Command[0] == "" {
		return fmt.Errorf("%w: entry command is required", gate.ErrInvalidConfig)
	}
	return nil
}

func validateTarget(name, host string, port int) error {
	if host == "" {
		return fmt.Errorf("%w: target %s: host is required", gate.ErrInvalidConfig, name)
	}
	if port < 1 || port > maxPort {
		return fmt.Errorf("%w: target %s: port must be between 1 and %d, got %d",
			gate.ErrInvalidConfig, name, maxPort, port)
	}
	return nil
}
