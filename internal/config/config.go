package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

var ErrInvalidConfig = errors.New("invalid config")

// Config настройки сервиса; источник - флаги и переменные окружения
type Config struct {
	Addr        string
	LogLevel    string
	LogFormat   string
	SessionTTL  time.Duration
	MaxSessions int
	Seed        bool
}

const (
	flagAddr        = "addr"
	flagLogLevel    = "log-level"
	flagLogFormat   = "log-format"
	flagSessionTTL  = "session-ttl"
	flagMaxSessions = "max-sessions"
	flagSeed        = "seed"
)

// Flags общие флаги всех команд
func Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: flagAddr, Value: ":9091", EnvVars: []string{"CATALOG_ADDR"}, Usage: "HTTP listen address"},
		&cli.StringFlag{Name: flagLogLevel, Value: "info", EnvVars: []string{"CATALOG_LOG_LEVEL"}, Usage: "log level"},
		&cli.StringFlag{Name: flagLogFormat, Value: "json", EnvVars: []string{"CATALOG_LOG_FORMAT"}, Usage: "log format: json or text"},
		&cli.DurationFlag{Name: flagSessionTTL, Value: 30 * time.Minute, EnvVars: []string{"CATALOG_SESSION_TTL"}, Usage: "idle time before a session is dropped, 0 keeps sessions forever"},
		&cli.IntFlag{Name: flagMaxSessions, Value: 1000, EnvVars: []string{"CATALOG_MAX_SESSIONS"}, Usage: "maximum live sessions, 0 for no limit"},
		&cli.BoolFlag{Name: flagSeed, Usage: "pre-populate every new session with demo products"},
	}
}

func FromCLI(c *cli.Context) (Config, error) {
	cfg := Config{
		Addr:        c.String(flagAddr),
		LogLevel:    c.String(flagLogLevel),
		LogFormat:   c.String(flagLogFormat),
		SessionTTL:  c.Duration(flagSessionTTL),
		MaxSessions: c.Int(flagMaxSessions),
		Seed:        c.Bool(flagSeed),
	}
	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("%w: empty addr", ErrInvalidConfig)
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: log level %q", ErrInvalidConfig, c.LogLevel)
	}
	if c.LogFormat != "json" && c.LogFormat != "text" {
		return fmt.Errorf("%w: log format %q", ErrInvalidConfig, c.LogFormat)
	}
	if c.SessionTTL < 0 {
		return fmt.Errorf("%w: negative session ttl", ErrInvalidConfig)
	}
	if c.MaxSessions < 0 {
		return fmt.Errorf("%w: negative max sessions", ErrInvalidConfig)
	}
	return nil
}

// SweepInterval как часто проверять простаивающие сессии
func (c Config) SweepInterval() time.Duration {
	if c.SessionTTL <= 0 {
		return 0
	}
	if iv := c.SessionTTL / 4; iv > time.Second {
		return iv
	}
	return time.Second
}
