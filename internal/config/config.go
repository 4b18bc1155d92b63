// Package config assembles the service configuration from, in increasing
// priority: built-in defaults, a JSON file, environment variables (a .env
// file included) and command line flags.
package config

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"reflect"
	"time"

	env "github.com/caarlos0/env/v6"
	validator "github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	"github.com/patric-chuzhbe/shoplist/internal/logger"
	"github.com/patric-chuzhbe/shoplist/internal/models"
)

// DefaultAuthSecretKey is only good for development; the service warns when it is used.
const DefaultAuthSecretKey = "shoplist-development-secret-key"

type Config struct {
	RunAddr             string        `env:"SERVER_ADDRESS" json:"server_address" validate:"hostname_port"`
	LogLevel            string        `env:"LOG_LEVEL" json:"log_level" validate:"loglevel"`
	DBFileName          string        `env:"FILE_STORAGE_PATH" json:"file_storage_path" validate:"filepath"`
	SQLitePath          string        `env:"SQLITE_PATH" json:"sqlite_path" validate:"filepath"`
	DatabaseDSN         string        `env:"DATABASE_DSN" json:"database_dsn"`
	DBConnectionTimeout time.Duration `env:"DB_CONNECTION_TIMEOUT" json:"-" validate:"min=0"`
	AuthCookieName      string        `env:"AUTH_COOKIE_NAME" json:"auth_cookie_name" validate:"required"`
	AuthSecretKey       string        `env:"AUTH_SECRET_KEY" json:"auth_secret_key" validate:"required,min=16"`
	AuthTokenTTL        time.Duration `env:"AUTH_TOKEN_TTL" json:"-" validate:"min=0"`
	TrustedSubnet       string        `env:"TRUSTED_SUBNET" json:"trusted_subnet" validate:"omitempty,cidr"`
	ShutdownTimeout     time.Duration `env:"SHUTDOWN_TIMEOUT" json:"-" validate:"min=0"`
	ConfigFile          string        `env:"CONFIG" json:"-"`
}

var defaultConfig = Config{
	RunAddr:             ":8080",
	LogLevel:            "info",
	DBConnectionTimeout: 10 * time.Second,
	AuthCookieName:      "auth",
	AuthSecretKey:       DefaultAuthSecretKey,
	AuthTokenTTL:        7 * 24 * time.Hour,
	ShutdownTimeout:     10 * time.Second,
}

// StorageType picks the backend: a DSN wins over a SQLite file, which wins
// over a JSON file. Without any of them data is kept in memory.
func (c *Config) StorageType() int {
	switch {
	case c.DatabaseDSN != "":
		return models.StorageTypePostgresql
	case c.SQLitePath != "":
		return models.StorageTypeSQLite
	case c.DBFileName != "":
		return models.StorageTypeFile
	default:
		return models.StorageTypeMemory
	}
}

func validateFilePath(fieldLevel validator.FieldLevel) bool {
	path := fieldLevel.Field().String()
	if path == "" {
		return true
	}
	_, err := os.Stat(path)

	return err == nil || os.IsNotExist(err)
}

func validateLogLevel(fieldLevel validator.FieldLevel) bool {
	value := fieldLevel.Field().String()

	allowedLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
		"fatal": true,
	}

	return allowedLogLevels[value]
}

func (c *Config) validate() error {
	validate := validator.New()

	err := validate.RegisterValidation("loglevel", validateLogLevel)
	if err != nil {
		return err
	}

	err = validate.RegisterValidation("filepath", validateFilePath)
	if err != nil {
		return err
	}

	return validate.Struct(c)
}

// applyDefaults copies every non-zero field of src over dst.
func applyDefaults(dst *Config, src Config) {
	dstValue := reflect.ValueOf(dst).Elem()
	srcValue := reflect.ValueOf(src)
	for i := 0; i < srcValue.NumField(); i++ {
		if field := srcValue.Field(i); !field.IsZero() {
			dstValue.Field(i).Set(field)
		}
	}
}

type InitOption func(*initOptions)

type initOptions struct {
	disableFlagsParsing bool
	args                []string
}

func WithDisableFlagsParsing(disableFlagsParsing bool) InitOption {
	return func(options *initOptions) {
		options.disableFlagsParsing = disableFlagsParsing
	}
}

// WithArgs parses args instead of os.Args[1:].
func WithArgs(args []string) InitOption {
	return func(options *initOptions) {
		options.args = args
	}
}

func parseFlags(args []string) (Config, error) {
	var values Config

	flags := flag.NewFlagSet("shoplist", flag.ContinueOnError)
	flags.StringVar(&values.RunAddr, "a", "", "address and port to run server")
	flags.StringVar(&values.LogLevel, "l", "", "logger level")
	flags.StringVar(&values.DBFileName, "f", "", "JSON file name with database")
	flags.StringVar(&values.SQLitePath, "s", "", "SQLite database file")
	flags.StringVar(&values.DatabaseDSN, "d", "", "A string with the database connection details")
	flags.StringVar(&values.TrustedSubnet, "t", "", "CIDR of clients allowed to read internal stats")
	flags.StringVar(&values.ConfigFile, "c", "", "JSON configuration file")
	flags.StringVar(&values.ConfigFile, "config", "", "JSON configuration file")

	if err := flags.Parse(args); err != nil {
		return Config{}, err
	}

	return values, nil
}

func parseJSONFile(fileName string) (Config, error) {
	var values Config

	data, err := os.ReadFile(fileName)
	if err != nil {
		return Config{}, err
	}
	if err := json.Unmarshal(data, &values); err != nil {
		return Config{}, err
	}

	return values, nil
}

func New(optionsProto ...InitOption) (*Config, error) {
	options := &initOptions{
		disableFlagsParsing: false,
		args:                os.Args[1:],
	}
	for _, protoOption := range optionsProto {
		protoOption(options)
	}

	err := godotenv.Load()
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.Log.Infoln("Unable to load .env file: ", err)
	}

	var valuesFromFlags Config
	if !options.disableFlagsParsing {
		valuesFromFlags, err = parseFlags(options.args)
		if err != nil {
			return nil, fmt.Errorf("in internal/config/config.go/New(): error while `parseFlags()` calling: %w", err)
		}
	}

	var valuesFromEnv Config
	err = env.Parse(&valuesFromEnv)
	if err != nil {
		return nil, fmt.Errorf("in internal/config/config.go/New(): error while `env.Parse()` calling: %w", err)
	}

	values := Config{}
	applyDefaults(&values, defaultConfig)

	configFile := valuesFromEnv.ConfigFile
	if valuesFromFlags.ConfigFile != "" {
		configFile = valuesFromFlags.ConfigFile
	}
	if configFile != "" {
		valuesFromJSON, err := parseJSONFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("in internal/config/config.go/New(): error while `parseJSONFile()` calling: %w", err)
		}
		applyDefaults(&values, valuesFromJSON)
	}

	applyDefaults(&values, valuesFromEnv)
	applyDefaults(&values, valuesFromFlags)
	values.ConfigFile = configFile

	if err := values.validate(); err != nil {
		return nil, err
	}

	return &values, nil
}
