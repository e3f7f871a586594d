package app

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"

	"github.com/shrimpsizemoose/trekker/logger"
)

type Config struct {
	Server struct {
		Port         string `toml:"port" validate:"required"`
		Mode         string `toml:"mode" validate:"omitempty,oneof=debug release test"`
		TemplatesDir string `toml:"templates_dir" validate:"required"`
		StaticDir    string `toml:"static_dir"`
	} `toml:"server"`

	Database struct {
		DSN string `toml:"dsn" validate:"required"`
	} `toml:"database"`

	Session struct {
		Secret     string `toml:"secret" validate:"required,min=16"`
		Issuer     string `toml:"issuer"`
		CookieName string `toml:"cookie_name"`
		TTL        string `toml:"ttl"`
		RedisURL   string `toml:"redis_url"`
		Secure     bool   `toml:"secure"`
	} `toml:"session"`

	SMTP struct {
		Host     string `toml:"host"`
		Port     int    `toml:"port" validate:"omitempty,min=1,max=65535"`
		Username string `toml:"username"`
		Password string `toml:"password"`
		From     string `toml:"from" validate:"omitempty,email"`
		To       string `toml:"to" validate:"omitempty,email"`
		SSL      bool   `toml:"ssl"`
		Timeout  string `toml:"timeout"`
	} `toml:"smtp"`

	RateLimit struct {
		Requests int    `toml:"requests" validate:"min=0"`
		Window   string `toml:"window"`
	} `toml:"rate_limit"`

	Quiz struct {
		Chapters int `toml:"chapters" validate:"min=1"`
	} `toml:"quiz"`

	sessionTTL  time.Duration
	smtpTimeout time.Duration
	rateWindow  time.Duration
}

func (c *Config) SessionTTL() time.Duration  { return c.sessionTTL }
func (c *Config) SMTPTimeout() time.Duration { return c.smtpTimeout }
func (c *Config) RateWindow() time.Duration  { return c.rateWindow }

func defaultConfig() Config {
	var c Config
	c.Server.Port = ":8080"
	c.Server.Mode = "release"
	c.Server.TemplatesDir = "web/templates"
	c.Server.StaticDir = "web/static"
	c.Database.DSN = "file:etudiants.db?_foreign_keys=on"
	c.Session.Issuer = "qcm"
	c.Session.CookieName = "qcm_session"
	c.Session.TTL = "24h"
	c.SMTP.Port = 465
	c.SMTP.SSL = true
	c.SMTP.Timeout = "10s"
	c.RateLimit.Requests = 10
	c.RateLimit.Window = "1m"
	c.Quiz.Chapters = 6
	return c
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}
	return ParseConfig(data)
}

func ParseConfig(data []byte) (*Config, error) {
	config := defaultConfig()
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}

	if err := validator.New().Struct(&config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	if config.SMTP.Host != "" && (config.SMTP.From == "" || config.SMTP.To == "") {
		return nil, fmt.Errorf("invalid config: smtp.from and smtp.to are required when smtp.host is set")
	}

	durations := []struct {
		name  string
		value string
		dest  *time.Duration
	}{
		{"session.ttl", config.Session.TTL, &config.sessionTTL},
		{"smtp.timeout", config.SMTP.Timeout, &config.smtpTimeout},
		{"rate_limit.window", config.RateLimit.Window, &config.rateWindow},
	}
	for _, d := range durations {
		v, err := time.ParseDuration(d.value)
		if err != nil {
			return nil, fmt.Errorf("invalid %s %q: %w", d.name, d.value, err)
		}
		if v <= 0 {
			return nil, fmt.Errorf("%s must be positive, got %q", d.name, d.value)
		}
		*d.dest = v
	}

	logger.Debug.Printf("Loaded config: port=%s mode=%s chapters=%d redis=%t smtp=%t",
		config.Server.Port,
		config.Server.Mode,
		config.Quiz.Chapters,
		config.Session.RedisURL != "",
		config.SMTP.Host != "",
	)

	return &config, nil
}
