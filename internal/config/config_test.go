package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sm-coding-projects/loan-calculator-sub000/pkg/constants"
)

func writeTempConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(contents), 0644); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}
	return path
}

func TestLoadConfigurationDefaults(t *testing.T) {
	tests := []struct {
		name string
		path string
	}{
		{name: "Empty path", path: ""},
		{name: "Missing file", path: "/nonexistent/config.yaml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conf, err := LoadConfiguration(tt.path)
			if err != nil {
				t.Fatalf("expected defaults, got error: %v", err)
			}

			if conf.Engine.BatchSize != constants.DefaultBatchSize {
				t.Errorf("batch size = %d, expected %d", conf.Engine.BatchSize, constants.DefaultBatchSize)
			}
			if conf.Engine.Timeout != constants.DefaultTimeout {
				t.Errorf("timeout = %v, expected %v", conf.Engine.Timeout, constants.DefaultTimeout)
			}
			if conf.Engine.SnapTolerance != constants.DefaultSnapTolerance {
				t.Errorf("snap tolerance = %v, expected %v", conf.Engine.SnapTolerance, constants.DefaultSnapTolerance)
			}
			if conf.Server.Address != constants.DefaultServerAddress {
				t.Errorf("address = %s, expected %s", conf.Server.Address, constants.DefaultServerAddress)
			}
		})
	}
}

func TestLoadConfigurationFromFile(t *testing.T) {
	path := writeTempConfig(t, `
engine:
  batchSize: 10
  timeout: 250ms
  snapTolerance: 0.05
logging:
  level: debug
  format: console
server:
  address: ":9090"
storage:
  redisAddr: "localhost:6379"
loans:
  - name: car
    principal: 25000
    downPayment: 5000
    interestRate: 4.0
    termMonths: 60
    paymentFrequency: monthly
    startDate: "2026-03-01"
`)

	conf, err := LoadConfiguration(path)
	if err != nil {
		t.Fatalf("failed to load configuration: %v", err)
	}

	if conf.Engine.BatchSize != 10 {
		t.Errorf("batch size = %d, expected 10", conf.Engine.BatchSize)
	}
	if conf.Engine.Timeout != 250*time.Millisecond {
		t.Errorf("timeout = %v, expected 250ms", conf.Engine.Timeout)
	}
	if conf.Engine.SnapTolerance != 0.05 {
		t.Errorf("snap tolerance = %v, expected 0.05", conf.Engine.SnapTolerance)
	}
	if conf.Logging.Level != "debug" {
		t.Errorf("log level = %s, expected debug", conf.Logging.Level)
	}
	if conf.Server.Address != ":9090" {
		t.Errorf("address = %s, expected :9090", conf.Server.Address)
	}
	if conf.Storage.RedisAddr != "localhost:6379" {
		t.Errorf("redis addr = %s, expected localhost:6379", conf.Storage.RedisAddr)
	}

	if len(conf.Loans) != 1 {
		t.Fatalf("loaded %d loans, expected 1", len(conf.Loans))
	}
	loanConf := conf.Loans[0]
	if loanConf.Name != "car" {
		t.Errorf("loan name = %s, expected car", loanConf.Name)
	}

	params, err := loanConf.Parameters()
	if err != nil {
		t.Fatalf("failed to build parameters: %v", err)
	}
	if params.Principal() != 25000 {
		t.Errorf("principal = %.2f, expected 25000", params.Principal())
	}
	if params.LoanAmount() != 20000 {
		t.Errorf("loan amount = %.2f, expected 20000", params.LoanAmount())
	}
	if params.TermMonths() != 60 {
		t.Errorf("term = %d, expected 60", params.TermMonths())
	}
}

func TestLoadConfigurationMalformedFile(t *testing.T) {
	path := writeTempConfig(t, "engine: [not: valid\n")

	if _, err := LoadConfiguration(path); err == nil {
		t.Fatal("expected an error for malformed YAML")
	}
}

func TestEngineOptionsMapping(t *testing.T) {
	conf := &Configuration{}
	conf.applyDefaults()
	conf.Engine.BatchSize = 25
	conf.Engine.SnapTolerance = 0.02

	opts := conf.EngineOptions()
	if opts.BatchSize != 25 {
		t.Errorf("options batch size = %d, expected 25", opts.BatchSize)
	}
	if opts.SnapTolerance != 0.02 {
		t.Errorf("options snap tolerance = %v, expected 0.02", opts.SnapTolerance)
	}
	if opts.Timeout != constants.DefaultTimeout {
		t.Errorf("options timeout = %v, expected %v", opts.Timeout, constants.DefaultTimeout)
	}
}
