package acquisition

import (
	"fmt"
	"io/ioutil"
	"time"

	"github.com/raymondelooff/fermentation-monitor/reading"
	"gopkg.in/yaml.v2"
)

// BusConfig represents the serial line and register layout of the sensor
type BusConfig struct {
	Device          string        `yaml:"device"`
	BaudRate        int           `yaml:"baud_rate"`
	DataBits        int           `yaml:"data_bits"`
	Parity          string        `yaml:"parity"`
	StopBits        int           `yaml:"stop_bits"`
	Timeout         time.Duration `yaml:"timeout"`
	RegisterAddress uint16        `yaml:"register_address"`
}

// RelayConfig represents the config of the RelayClient
type RelayConfig struct {
	Address     string        `yaml:"address"`
	DialTimeout time.Duration `yaml:"dial_timeout"`
}

// StoreConfig represents the config of the StoreWriter
type StoreConfig struct {
	URL         string `yaml:"url"`
	Token       string `yaml:"token"`
	Org         string `yaml:"org"`
	Bucket      string `yaml:"bucket"`
	Measurement string `yaml:"measurement"`
}

// LoopConfig represents the config of the acquisition Loop
type LoopConfig struct {
	SlaveID  byte          `yaml:"slave_id"`
	Interval time.Duration `yaml:"interval"`
}

// Config is the main configuration of the acquisition process
type Config struct {
	Env    string       `yaml:"env"`
	Sensor reading.Tags `yaml:"sensor"`
	Bus    BusConfig    `yaml:"bus"`
	Relay  RelayConfig  `yaml:"relay"`
	Store  StoreConfig  `yaml:"store"`
	Loop   LoopConfig   `yaml:"loop"`
}

// DefaultConfig returns the configuration of a single SHT20 transmitter on
// the first USB serial adapter
func DefaultConfig() Config {
	return Config{
		Env: "prod",
		Sensor: reading.Tags{
			SensorID:     "SHT20-PascaPanen-001",
			Location:     "Gudang Fermentasi 1",
			ProcessStage: "Fermentasi",
		},
		Bus: BusConfig{
			Device:          "/dev/ttyUSB0",
			BaudRate:        9600,
			DataBits:        8,
			Parity:          "N",
			StopBits:        1,
			Timeout:         time.Second,
			RegisterAddress: 1,
		},
		Relay: RelayConfig{
			Address:     "127.0.0.1:9001",
			DialTimeout: 5 * time.Second,
		},
		Store: StoreConfig{
			URL:         "http://localhost:8086",
			Org:         "its",
			Bucket:      "ISI_KOPI",
			Measurement: "fermentasi_sensor",
		},
		Loop: LoopConfig{
			SlaveID:  1,
			Interval: 2 * time.Second,
		},
	}
}

// Validate checks the configuration for values the process cannot run with
func (c Config) Validate() error {
	switch {
	case c.Bus.Device == "":
		return fmt.Errorf("config: bus.device is required")
	case c.Bus.BaudRate <= 0:
		return fmt.Errorf("config: bus.baud_rate must be positive, got %d", c.Bus.BaudRate)
	case c.Bus.Timeout <= 0:
		return fmt.Errorf("config: bus.timeout must be positive, got %v", c.Bus.Timeout)
	case c.Relay.Address == "":
		return fmt.Errorf("config: relay.address is required")
	case c.Store.URL == "":
		return fmt.Errorf("config: store.url is required")
	case c.Store.Org == "" || c.Store.Bucket == "":
		return fmt.Errorf("config: store.org and store.bucket are required")
	case c.Store.Measurement == "":
		return fmt.Errorf("config: store.measurement is required")
	case c.Loop.Interval <= 0:
		return fmt.Errorf("config: loop.interval must be positive, got %v", c.Loop.Interval)
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
