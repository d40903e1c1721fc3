// Package config defines the application configuration and loads it with
// viper. A missing config file falls back to documented defaults so the
// binary runs usefully with no configuration at all.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/sm-coding-projects/loan-calculator-sub000/pkg/constants"
	"github.com/sm-coding-projects/loan-calculator-sub000/pkg/loan"
	"github.com/sm-coding-projects/loan-calculator-sub000/pkg/schedule"
	"github.com/spf13/viper"
)

// Configuration holds all configuration for the loan calculator.
type Configuration struct {
	Engine  EngineConfig  `yaml:"engine,omitempty"`
	Logging LoggingConfig `yaml:"logging,omitempty"`
	Server  ServerConfig  `yaml:"server,omitempty"`
	Storage StorageConfig `yaml:"storage,omitempty"`
	Loans   []LoanConfig  `yaml:"loans,omitempty"`
}

// EngineConfig tunes schedule generation defaults.
type EngineConfig struct {
	BatchSize         int           `yaml:"batchSize,omitempty"`
	Timeout           time.Duration `yaml:"timeout,omitempty"`
	MaxPayments       int           `yaml:"maxPayments,omitempty"`
	MaxPaymentsFactor float64       `yaml:"maxPaymentsFactor,omitempty"`
	SnapTolerance     float64       `yaml:"snapTolerance,omitempty"`
}

// LoggingConfig holds logging configuration options.
type LoggingConfig struct {
	Level      string `yaml:"level,omitempty"`      // debug, info, warn, error
	Format     string `yaml:"format,omitempty"`     // json, console
	OutputFile string `yaml:"outputFile,omitempty"` // optional file output
}

// ServerConfig holds HTTP server options.
type ServerConfig struct {
	Address      string `yaml:"address,omitempty"`
	MaxBodyBytes int64  `yaml:"maxBodyBytes,omitempty"`
}

// StorageConfig holds schedule store options. An empty RedisAddr selects
// the in-memory store.
type StorageConfig struct {
	RedisAddr string `yaml:"redisAddr,omitempty"`
}

// LoanConfig is one loan to compute when running in CLI mode.
type LoanConfig struct {
	Name string   `yaml:"name,omitempty"`
	Loan loan.Raw `yaml:",inline" mapstructure:",squash"`
}

// LoadConfiguration loads the YAML configuration at configPath. A missing
// file returns defaults without error; a present but unparseable file is
// an error.
func LoadConfiguration(configPath string) (*Configuration, error) {
	configuration := &Configuration{}
	configuration.applyDefaults()

	if configPath == "" {
		return configuration, nil
	}
	if _, err := os.Stat(configPath); errors.Is(err, fs.ErrNotExist) {
		return configuration, nil
	}

	v := viper.New()
	v.SetConfigFile(configPath)
	v.AutomaticEnv()
	v.SetConfigType("yml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file, %s", err)
	}
	if err := v.Unmarshal(configuration); err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %s", err)
	}

	configuration.applyDefaults()
	return configuration, nil
}

func (c *Configuration) applyDefaults() {
	if c.Engine.BatchSize <= 0 {
		c.Engine.BatchSize = constants.DefaultBatchSize
	}
	if c.Engine.Timeout <= 0 {
		c.Engine.Timeout = constants.DefaultTimeout
	}
	if c.Engine.MaxPaymentsFactor <= 0 {
		c.Engine.MaxPaymentsFactor = constants.DefaultMaxPaymentsFactor
	}
	if c.Engine.SnapTolerance <= 0 {
		c.Engine.SnapTolerance = constants.DefaultSnapTolerance
	}
	if c.Server.Address == "" {
		c.Server.Address = constants.DefaultServerAddress
	}
	if c.Server.MaxBodyBytes <= 0 {
		c.Server.MaxBodyBytes = constants.DefaultMaxBodyBytes
	}
}

// EngineOptions maps the engine configuration onto generation options.
func (c *Configuration) EngineOptions() schedule.Options {
	return schedule.Options{
		BatchSize:         c.Engine.BatchSize,
		Timeout:           c.Engine.Timeout,
		MaxPayments:       c.Engine.MaxPayments,
		MaxPaymentsFactor: c.Engine.MaxPaymentsFactor,
		SnapTolerance:     c.Engine.SnapTolerance,
	}
}

// Parameters validates one configured loan into the parameter model.
func (l LoanConfig) Parameters() (loan.Parameters, error) {
	return loan.New(l.Loan)
}
