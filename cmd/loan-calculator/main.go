package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/sm-coding-projects/loan-calculator-sub000/internal/config"
	"github.com/sm-coding-projects/loan-calculator-sub000/internal/server"
	"github.com/sm-coding-projects/loan-calculator-sub000/internal/store"
	"github.com/sm-coding-projects/loan-calculator-sub000/internal/worker"
	"github.com/sm-coding-projects/loan-calculator-sub000/pkg/constants"
	"github.com/sm-coding-projects/loan-calculator-sub000/pkg/inflation"
	"github.com/sm-coding-projects/loan-calculator-sub000/pkg/output"
	"github.com/sm-coding-projects/loan-calculator-sub000/pkg/schedule"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var version = "dev"

// initializeLogger creates a zap logger based on configuration and CLI override
func initializeLogger(loggingConfig config.LoggingConfig, logLevelOverride string) (*zap.Logger, error) {
	// Determine log level (CLI override takes precedence)
	level := loggingConfig.Level
	if logLevelOverride != "" {
		level = logLevelOverride
	}
	if level == "" {
		level = "info"
	}

	var zapLevel zapcore.Level
	switch level {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "info":
		zapLevel = zapcore.InfoLevel
	case "warn", "warning":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		return nil, fmt.Errorf("invalid log level: %s", level)
	}

	format := loggingConfig.Format
	if format == "" {
		format = "json"
	}

	var zapConfig zap.Config
	switch format {
	case "console":
		zapConfig = zap.NewDevelopmentConfig()
		zapConfig.Level = zap.NewAtomicLevelAt(zapLevel)
	case "json":
		zapConfig = zap.NewProductionConfig()
		zapConfig.Level = zap.NewAtomicLevelAt(zapLevel)
	default:
		return nil, fmt.Errorf("invalid log format: %s", format)
	}

	if loggingConfig.OutputFile != "" {
		if dir := filepath.Dir(loggingConfig.OutputFile); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("failed to create log directory %s: %v", dir, err)
			}
		}
		if file, err := os.OpenFile(loggingConfig.OutputFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644); err != nil {
			return nil, fmt.Errorf("failed to open log file %s: %v", loggingConfig.OutputFile, err)
		} else {
			_ = file.Close()
		}
		zapConfig.OutputPaths = []string{loggingConfig.OutputFile}
		zapConfig.ErrorOutputPaths = []string{loggingConfig.OutputFile}
	}

	return zapConfig.Build()
}

func main() {
	configLocation := flag.String("config", constants.DefaultConfigFile, "path to configuration file")
	outputFormatFlag := flag.String("output-format", "", "type of output override: pretty, csv")
	logLevel := flag.String("log-level", "", "log level override (debug, info, warn, error)")
	serve := flag.Bool("serve", false, "run the HTTP API server instead of computing configured loans")
	flag.Parse()

	conf, err := config.LoadConfiguration(*configLocation)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to load configuration at %s\", \"error\": \"%v\"}\n", *configLocation, err)
		return
	}

	logger, err := initializeLogger(conf.Logging, *logLevel)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to initialize logger\", \"error\": \"%v\"}\n", err)
		return
	}
	defer func() {
		_ = logger.Sync()
	}()

	if *serve {
		runServer(logger, conf)
		return
	}

	outputFormat := *outputFormatFlag
	if outputFormat == "" {
		outputFormat = constants.OutputFormatPretty
	}
	if outputFormat != constants.OutputFormatPretty && outputFormat != constants.OutputFormatCSV {
		logger.Fatal("invalid output format",
			zap.String("op", "main"),
			zap.String("format", outputFormat),
		)
	}

	if len(conf.Loans) == 0 {
		logger.Fatal("no loans configured; add a loans section to the config file",
			zap.String("op", "main"),
		)
	}

	opts := conf.EngineOptions()
	for _, loanConf := range conf.Loans {
		params, err := loanConf.Parameters()
		if err != nil {
			logger.Fatal("invalid loan parameters",
				zap.String("op", "main"),
				zap.String("loan", loanConf.Name),
				zap.Error(err),
			)
		}

		result, err := schedule.Compute(logger, params, opts)
		if err != nil {
			logger.Fatal("failed to compute amortization schedule",
				zap.String("op", "main"),
				zap.String("loan", loanConf.Name),
				zap.Error(err),
			)
		}

		name := loanConf.Name
		if name == "" {
			name = "loan"
		}

		switch outputFormat {
		case constants.OutputFormatPretty:
			output.PrettyFormat(os.Stdout, name, result)
			if rate := params.InflationRate(); rate > 0 {
				output.PrettyFormatAdjusted(os.Stdout, name, inflation.Adjust(result, rate))
			}
		case constants.OutputFormatCSV:
			if err := output.CsvFormat(os.Stdout, result); err != nil {
				logger.Fatal("failed to write CSV output",
					zap.String("op", "main"),
					zap.Error(err),
				)
			}
		}
	}
}

func runServer(logger *zap.Logger, conf *config.Configuration) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	bridge := worker.NewBridge(logger)
	bridge.Start(ctx)

	var st store.Store
	if conf.Storage.RedisAddr != "" {
		redisStore := store.NewRedis(conf.Storage.RedisAddr)
		defer func() {
			_ = redisStore.Close()
		}()
		st = redisStore
	} else {
		st = store.NewMemory()
	}

	handler := server.NewHandler(logger, bridge, st, conf.EngineOptions(), conf.Server.MaxBodyBytes, version)

	logger.Info("starting HTTP server",
		zap.String("op", "main"),
		zap.String("address", conf.Server.Address),
	)
	if err := http.ListenAndServe(conf.Server.Address, handler); err != nil {
		logger.Fatal("HTTP server failed",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}
}
