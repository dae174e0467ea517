// Package config loads the proxy configuration from a YAML file, with
// environment variables taking precedence over file values.
package config

import (
	"os"
	"strconv"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"
)

// defaultMaxMessageSize is 25 MB in bytes.
const defaultMaxMessageSize = 26214400

// Config holds the complete daemon configuration.
type Config struct {
	SMTP     SMTPConfig     `yaml:"smtp"`
	Upstream UpstreamConfig `yaml:"upstream"`
	Render   RenderConfig   `yaml:"render"`
	Archive  ArchiveConfig  `yaml:"archive"`
	Log      LogConfig      `yaml:"log"`
}

// SMTPConfig holds the listening SMTP server configuration. Leaving
// Username and Password empty disables authentication.
type SMTPConfig struct {
	Listen         string `yaml:"listen"`
	Domain         string `yaml:"domain"`
	Username       string `yaml:"username"`
	Password       string `yaml:"password"`
	MaxMessageSize int64  `yaml:"max_message_size"`
}

// UpstreamConfig holds the relay the transformed messages are handed to.
type UpstreamConfig struct {
	Addr     string `yaml:"addr"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	StartTLS bool   `yaml:"starttls"`
}

// RenderConfig selects the HTML renderer and the encoding policy.
type RenderConfig struct {
	Markdown  bool `yaml:"markdown"`
	Allow8Bit bool `yaml:"allow_8bit"`
}

// ArchiveConfig holds the directory transformed messages are copied to.
// An empty directory keeps the archive in memory.
type ArchiveConfig struct {
	Dir string `yaml:"dir"`
}

// LogConfig holds logging configuration. An empty file logs to stderr.
type LogConfig struct {
	File  string `yaml:"file"`
	Level string `yaml:"level"`
}

// Load reads the configuration file and applies environment overrides.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	cfg.applyDefaults()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read config file")
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrap(err, "failed to parse config file")
	}

	cfg.applyEnvVars()
	return cfg, nil
}

// Validate reports every configuration problem at once.
func (c *Config) Validate() error {
	var err error
	if c.SMTP.Listen == "" {
		err = multierr.Append(err, errors.New("smtp.listen must not be empty"))
	}
	if c.SMTP.Domain == "" {
		err = multierr.Append(err, errors.New("smtp.domain must not be empty"))
	}
	if (c.SMTP.Username == "") != (c.SMTP.Password == "") {
		err = multierr.Append(err, errors.New("smtp.username and smtp.password must be set together"))
	}
	if c.Upstream.Addr == "" {
		err = multierr.Append(err, errors.New("upstream.addr must not be empty"))
	}
	if (c.Upstream.Username == "") != (c.Upstream.Password == "") {
		err = multierr.Append(err, errors.New("upstream.username and upstream.password must be set together"))
	}
	if c.SMTP.MaxMessageSize <= 0 {
		err = multierr.Append(err, errors.New("smtp.max_message_size must be positive"))
	}
	return err
}

// AuthEnabled returns true if the listening server requires AUTH.
func (c *Config) AuthEnabled() bool {
	return c.SMTP.Username != "" && c.SMTP.Password != ""
}

func (c *Config) applyDefaults() {
	c.SMTP.Listen = "localhost:1025"
	c.SMTP.Domain = "localhost"
	c.SMTP.MaxMessageSize = defaultMaxMessageSize
	c.Render.Markdown = true
	c.Log.Level = "info"
}

// applyEnvVars overrides configuration with environment variable
// values. Only non-empty variables override existing values.
func (c *Config) applyEnvVars() {
	if v := os.Getenv("SMTP_LISTEN"); v != "" {
		c.SMTP.Listen = v
	}
	if v := os.Getenv("SMTP_DOMAIN"); v != "" {
		c.SMTP.Domain = v
	}
	if v := os.Getenv("SMTP_USERNAME"); v != "" {
		c.SMTP.Username = v
	}
	if v := os.Getenv("SMTP_PASSWORD"); v != "" {
		c.SMTP.Password = v
	}
	if v := os.Getenv("SMTP_MAX_MESSAGE_SIZE"); v != "" {
		if size, err := strconv.ParseInt(v, 10, 64); err == nil {
			c.SMTP.MaxMessageSize = size
		}
	}
	if v := os.Getenv("UPSTREAM_ADDR"); v != "" {
		c.Upstream.Addr = v
	}
	if v := os.Getenv("UPSTREAM_USERNAME"); v != "" {
		c.Upstream.Username = v
	}
	if v := os.Getenv("UPSTREAM_PASSWORD"); v != "" {
		c.Upstream.Password = v
	}
	if v := os.Getenv("ARCHIVE_DIR"); v != "" {
		c.Archive.Dir = v
	}
	if v := os.Getenv("LOG_FILE"); v != "" {
		c.Log.File = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
}
