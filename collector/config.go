package collector

import (
	"fmt"
	"io/ioutil"
	"time"

	"gopkg.in/yaml.v2"
)

// ServerConfig represents the listening side of the Collector
type ServerConfig struct {
	BindAddress string `yaml:"bind_address"`
}

// StoreConfig represents the write endpoint of the time-series store
type StoreConfig struct {
	URL         string `yaml:"url"`
	Token       string `yaml:"token"`
	Org         string `yaml:"org"`
	Bucket      string `yaml:"bucket"`
	Measurement string `yaml:"measurement"`
}

// SupervisorConfig represents the config of the Supervisor
type SupervisorConfig struct {
	RestartDelay time.Duration `yaml:"restart_delay"`
}

// MetricsConfig represents the Prometheus endpoint; empty Address disables it
type MetricsConfig struct {
	Address string `yaml:"address"`
	Path    string `yaml:"path"`
}

// Config is the main configuration of the collector process
type Config struct {
	Env        string           `yaml:"env"`
	Server     ServerConfig     `yaml:"server"`
	Store      StoreConfig      `yaml:"store"`
	Supervisor SupervisorConfig `yaml:"supervisor"`
	Metrics    MetricsConfig    `yaml:"metrics"`
	AMQP       AMQPConfig       `yaml:"amqp"`
	MySQL      MySQLConfig      `yaml:"mysql"`
}

// DefaultConfig returns the configuration of a collector next to a local
// InfluxDB v2 instance
func DefaultConfig() Config {
	return Config{
		Env: "prod",
		Server: ServerConfig{
			BindAddress: "0.0.0.0:9001",
		},
		Store: StoreConfig{
			URL:         "http://localhost:8086",
			Org:         "its",
			Bucket:      "ISI_KOPI",
			Measurement: "monitoring",
		},
		Supervisor: SupervisorConfig{
			RestartDelay: 5 * time.Second,
		},
		Metrics: MetricsConfig{
			Path: "/metrics",
		},
		AMQP: AMQPConfig{
			Exchange: "fermentation.readings",
		},
	}
}

// Validate checks the configuration for values the process cannot run with
func (c Config) Validate() error {
	switch {
	case c.Server.BindAddress == "":
		return fmt.Errorf("config: server.bind_address is required")
	case c.Store.URL == "":
		return fmt.Errorf("config: store.url is required")
	case c.Store.Org == "" || c.Store.Bucket == "":
		return fmt.Errorf("config: store.org and store.bucket are required")
	case c.Store.Measurement == "":
		return fmt.Errorf("config: store.measurement is required")
	case c.Supervisor.RestartDelay <= 0:
		return fmt.Errorf("config: supervisor.restart_delay must be positive, got %v", c.Supervisor.RestartDelay)
	case c.AMQP.DSN != "" && c.AMQP.Exchange == "":
		return fmt.Errorf("config: amqp.exchange is required when amqp.dsn is set")
	}

	return nil
}

// LoadConfig reads the YAML file at path on top of DefaultConfig
func LoadConfig(path string) (Config, error) {
	f, err := ioutil.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: %v", err)
	}

	c := DefaultConfig()
	if err := yaml.Unmarshal(f, &c); err != nil {
		return Config{}, fmt.Errorf("config: %v", err)
	}

	if err := c.Validate(); err != nil {
		return Config{}, err
	}

	return c, nil
}
