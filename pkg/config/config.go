// Package config loads and validates the daemon configuration from a
// JSON file, with environment overrides for connection secrets.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/RobertasVasiliauskas/lms-zabbix-sync/pkg/enrich"
	"github.com/RobertasVasiliauskas/lms-zabbix-sync/pkg/logger"
	"github.com/RobertasVasiliauskas/lms-zabbix-sync/pkg/zabbix"
)

var (
	ErrMissingNATSURL      = errors.New("nats.url is required")
	ErrMissingStreamName   = errors.New("nats.stream_name is required")
	ErrMissingConsumerName = errors.New("nats.consumer_name is required")
	ErrMissingZabbixURL    = errors.New("zabbix.url is required")
	ErrMissingZabbixUser   = errors.New("zabbix.username is required")
	ErrMissingZabbixPass   = errors.New("zabbix.password is required")
	ErrMissingSnapshotPath = errors.New("buffer.snapshot_path is required")
	ErrInvalidJSON         = errors.New("failed to unmarshal JSON configuration")
)

// NATSConfig describes the JetStream stream carrying LMS change events.
type NATSConfig struct {
	URL          string `json:"url"`
	StreamName   string `json:"stream_name"`
	ConsumerName string `json:"consumer_name"`
	Subject      string `json:"subject"`
	Domain       string `json:"domain"`
}

// BufferConfig describes where the reconciliation buffer persists itself.
type BufferConfig struct {
	SnapshotPath string `json:"snapshot_path"`
}

// Config is the complete daemon configuration.
type Config struct {
	NATS       NATSConfig     `json:"nats"`
	Zabbix     zabbix.Config  `json:"zabbix"`
	Buffer     BufferConfig   `json:"buffer"`
	Enrichment enrich.Config  `json:"enrichment"`
	Logging    *logger.Config `json:"logging"`
}

// Load reads the configuration file and applies environment overrides.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Join(ErrInvalidJSON, err)
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// applyEnvOverrides lets deployment environments inject secrets without
// writing them into the config file.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("NATS_URL"); v != "" {
		c.NATS.URL = v
	}

	if v := os.Getenv("ZABBIX_URL"); v != "" {
		c.Zabbix.URL = v
	}

	if v := os.Getenv("ZABBIX_USERNAME"); v != "" {
		c.Zabbix.Username = v
	}

	if v := os.Getenv("ZABBIX_PASSWORD"); v != "" {
		c.Zabbix.Password = v
	}
}

// Validate reports every missing required setting at once.
func (c *Config) Validate() error {
	var errs []error

	if c.NATS.URL == "" {
		errs = append(errs, ErrMissingNATSURL)
	}

	if c.NATS.StreamName == "" {
		errs = append(errs, ErrMissingStreamName)
	}

	if c.NATS.ConsumerName == "" {
		errs = append(errs, ErrMissingConsumerName)
	}

	if c.Zabbix.URL == "" {
		errs = append(errs, ErrMissingZabbixURL)
	}

	if c.Zabbix.Username == "" {
		errs = append(errs, ErrMissingZabbixUser)
	}

	if c.Zabbix.Password == "" {
		errs = append(errs, ErrMissingZabbixPass)
	}

	if c.Buffer.SnapshotPath == "" {
		errs = append(errs, ErrMissingSnapshotPath)
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}
