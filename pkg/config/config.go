// Package config loads gdtools settings from YAML.
package config

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/hansbonini/gdtools/pkg/common"
	"github.com/hansbonini/gdtools/pkg/gdrom"
	"github.com/hansbonini/gdtools/pkg/sim"
	"gopkg.in/yaml.v3"
)

// Config is the complete gdtools configuration.
type Config struct {
	Drive DriveConfig `yaml:"drive"`
	Sim   SimConfig   `yaml:"sim"`
	Log   LogConfig   `yaml:"log"`
}

// DriveConfig tunes the driver.
type DriveConfig struct {
	Unit        int           `yaml:"unit"`
	InitRetries int           `yaml:"init_retries"`
	InitPause   time.Duration `yaml:"init_pause"`
	ReadMode    string        `yaml:"read_mode"`
	SectorSize  int           `yaml:"sector_size"` // 0 lets the drive choose
	Session     int           `yaml:"session"`
}

// SimConfig describes the simulated controller.
type SimConfig struct {
	Disc     string `yaml:"disc"`
	Latency  int    `yaml:"latency"`
	SpinUp   int    `yaml:"spin_up"`
	PlayStep uint32 `yaml:"play_step"`
}

// LogConfig controls logging.
type LogConfig struct {
	Verbose bool `yaml:"verbose"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Drive: DriveConfig{
			Unit:        int(gdrom.UnitMaster),
			InitRetries: gdrom.DefaultInitRetries,
			InitPause:   gdrom.DefaultInitPause,
			ReadMode:    gdrom.ReadPIO.String(),
		},
		Sim: SimConfig{
			PlayStep: sim.DefaultPlayStep,
		},
	}
}

// Load reads a YAML file on top of the defaults and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) // #nosec G304 - path comes from the user
	if err != nil {
		return nil, common.FormatError(common.ErrFailedToLoadConfig, err)
	}
	return Parse(data)
}

// Parse decodes YAML on top of the defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, common.FormatError(common.ErrFailedToParseConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks every field.
func (c *Config) Validate() error {
	d := c.Drive
	if d.Unit != int(gdrom.UnitMaster) && d.Unit != int(gdrom.UnitSlave) {
		return common.FormatErrorString(common.ErrInvalidConfig, "drive.unit must be 0 or 1, got %d", d.Unit)
	}
	if d.InitRetries <= 0 {
		return common.FormatErrorString(common.ErrInvalidConfig, "drive.init_retries must be positive, got %d", d.InitRetries)
	}
	if d.InitPause <= 0 {
		return common.FormatErrorString(common.ErrInvalidConfig, "drive.init_pause must be positive, got %s", d.InitPause)
	}
	if _, err := gdrom.ParseReadMode(d.ReadMode); err != nil {
		return common.FormatError(common.ErrInvalidConfig, err)
	}
	switch d.SectorSize {
	case 0, common.DataSectorSize, common.Mode2SectorSize, common.RawSectorSize:
	default:
		return common.FormatErrorString(common.ErrInvalidConfig, "drive.sector_size must be 2048, 2336 or 2352, got %d", d.SectorSize)
	}
	if d.Session < 0 {
		return common.FormatErrorString(common.ErrInvalidConfig, "drive.session must not be negative, got %d", d.Session)
	}
	if c.Sim.Latency < 0 || c.Sim.SpinUp < 0 {
		return common.FormatErrorString(common.ErrInvalidConfig, "sim.latency and sim.spin_up must not be negative")
	}
	return nil
}

// ReadMode returns the configured transfer mode. It assumes Validate passed.
func (c *Config) ReadMode() gdrom.ReadMode {
	mode, _ := gdrom.ParseReadMode(c.Drive.ReadMode)
	return mode
}

// DriveOptions converts the drive section into driver options.
func (c *Config) DriveOptions() gdrom.Options {
	return gdrom.Options{
		Unit:        gdrom.Unit(c.Drive.Unit),
		InitRetries: c.Drive.InitRetries,
		InitPause:   c.Drive.InitPause,
	}
}

// SimOptions converts the sim section into controller options. The
// simulated drive answers on the configured unit.
func (c *Config) SimOptions() sim.Options {
	return sim.Options{
		Unit:     gdrom.Unit(c.Drive.Unit),
		Latency:  c.Sim.Latency,
		SpinUp:   c.Sim.SpinUp,
		PlayStep: c.Sim.PlayStep,
	}
}

// Write encodes the configuration as YAML.
func (c *Config) Write(w io.Writer) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(c); err != nil {
		return fmt.Errorf("failed to encode YAML: %w", err)
	}
	return encoder.Close()
}
