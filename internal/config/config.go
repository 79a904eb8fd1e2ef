package config

import (
	"encoding/hex"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Strip struct {
	Count   int    `yaml:"count"`              // pixels on the strip
	SPIDev  string `yaml:"spi_dev,omitempty"`  // e.g. /dev/spidev0.0; "" picks the first port
	FreqKHz int    `yaml:"freq_khz,omitempty"` // NRZ symbol rate, e.g. 2500
}

type Radio struct {
	Driver  string `yaml:"driver"` // "nrf24" | "stub"
	SPIDev  string `yaml:"spi_dev,omitempty"`
	CEPin   string `yaml:"ce_pin,omitempty"` // e.g. GPIO25
	Channel uint8  `yaml:"channel"`
	Key     string `yaml:"key"` // pre-shared link key, hex
}

type Config struct {
	Strip      Strip  `yaml:"strip"`
	Radio      Radio  `yaml:"radio"`
	ButtonPin  string `yaml:"button_pin"` // e.g. GPIO17, active low
	StatePath  string `yaml:"state_path"`
	StatusAddr string `yaml:"status_addr,omitempty"`
}

// KeyBytes decodes the pre-shared link key.
func (r Radio) KeyBytes() ([]byte, error) {
	if r.Key == "" {
		return nil, fmt.Errorf("radio key not configured")
	}
	b, err := hex.DecodeString(r.Key)
	if err != nil {
		return nil, fmt.Errorf("radio key: %w", err)
	}
	return b, nil
}

func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func Save(path string, c *Config) error {
	b, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0644)
}
