package config

import (
	"os"
	"strconv"
	"strings"

	"abtest/internal/errors"

	"github.com/go-playground/validator/v10"
)

// Config represents the complete application configuration
type Config struct {
	Data    DataConfig    `validate:"required"`
	Output  OutputConfig  `validate:"required"`
	Logging LoggingConfig `validate:"required"`
}

// DataConfig describes where the two experiment groups are read from
type DataConfig struct {
	Workbook string
	// TestWorkbook is set when the test group lives in its own file
	TestWorkbook string
	ControlSheet string `validate:"required"`
	TestSheet    string `validate:"required"`
	Metric       string `validate:"required"`
}

// OutputConfig holds report formatting settings
type OutputConfig struct {
	Format    string `validate:"oneof=text markdown html"`
	Precision int    `validate:"gte=0,lte=15"`
	MaxRows   int    `validate:"gte=0"`
	Color     bool
}

// LoggingConfig holds log settings
type LoggingConfig struct {
	Level string `validate:"oneof=ERROR WARN INFO DEBUG TRACE"`
}

var validate = validator.New()

// Default returns the configuration used when no environment overrides are set
func Default() *Config {
	return &Config{
		Data: DataConfig{
			ControlSheet: "Control Group",
			TestSheet:    "Test Group",
			Metric:       "Purchase",
		},
		Output: OutputConfig{
			Format:    "text",
			Precision: 5,
			MaxRows:   5,
		},
		Logging: LoggingConfig{Level: "INFO"},
	}
}

// FromEnv reads configuration from environment variables without validating
// it, so callers can overlay flags first
func FromEnv() *Config {
	def := Default()
	return &Config{
		Data:    loadDataConfig(def.Data),
		Output:  loadOutputConfig(def.Output),
		Logging: LoggingConfig{Level: strings.ToUpper(getEnvOrDefault("LOG_LEVEL", def.Logging.Level))},
	}
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := FromEnv()
	if err := config.Validate(); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

// Validate checks struct constraints
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return errors.WithCode(errors.CodeConfigInvalid, err)
	}
	if c.Data.ControlSheet == c.Data.TestSheet && !c.Data.SplitFiles() && !isCSV(c.Data.Workbook) {
		return errors.ConfigInvalid("control and test sheets must differ")
	}
	return nil
}

// SplitFiles reports whether the groups are read from two different files
func (d DataConfig) SplitFiles() bool {
	return d.TestWorkbook != "" && d.TestWorkbook != d.Workbook
}

func loadDataConfig(def DataConfig) DataConfig {
	return DataConfig{
		Workbook:     getEnvOrDefault("ABTEST_WORKBOOK", def.Workbook),
		TestWorkbook: getEnvOrDefault("ABTEST_TEST_WORKBOOK", def.TestWorkbook),
		ControlSheet: getEnvOrDefault("ABTEST_CONTROL_SHEET", def.ControlSheet),
		TestSheet:    getEnvOrDefault("ABTEST_TEST_SHEET", def.TestSheet),
		Metric:       getEnvOrDefault("ABTEST_METRIC", def.Metric),
	}
}

func loadOutputConfig(def OutputConfig) OutputConfig {
	return OutputConfig{
		Format:    strings.ToLower(getEnvOrDefault("ABTEST_FORMAT", def.Format)),
		Precision: getEnvIntOrDefault("ABTEST_PRECISION", def.Precision),
		MaxRows:   getEnvIntOrDefault("ABTEST_MAX_ROWS", def.MaxRows),
		Color:     getEnvBoolOrDefault("ABTEST_COLOR", def.Color),
	}
}

func isCSV(path string) bool {
	return strings.HasSuffix(strings.ToLower(path), ".csv")
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
