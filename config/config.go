// Package config loads the process configuration from the environment and an
// optional .env file.
package config

import (
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"github.com/prognoshealth/formsapi/store"
)

// KindConfig is the failure kind reported for configuration errors.
const KindConfig = "ConfigError"

// Config holds the settings read at cold start.
type Config struct {
	FormsTable     string   `env:"FORMS_TABLE" validate:"required"`
	ResponsesTable string   `env:"RESPONSES_TABLE" validate:"required"`
	Region         string   `env:"AWS_REGION" validate:"required"`
	Endpoint       string   `env:"DYNAMO_ENDPOINT" validate:"omitempty,url"`
	StagePrefixes  []string `env:"STAGE_PREFIXES"`
	LogLevel       string   `env:"LOG_LEVEL" validate:"oneof=panic fatal error warn warning info debug trace"`
	LogFormat      string   `env:"LOG_FORMAT" validate:"oneof=json text"`
}

// Error is a configuration error. It reports KindConfig as its kind.
type Error struct {
	err error
}

// NewError tags err as a configuration error.
func NewError(err error) error {
	return &Error{err}
}

func (e *Error) Error() string { return "invalid configuration: " + e.err.Error() }

// Kind returns KindConfig.
func (e *Error) Kind() string { return KindConfig }

// Cause supports errors.Cause.
func (e *Error) Cause() error { return e.err }

// Unwrap supports errors.Is and errors.As.
func (e *Error) Unwrap() error { return e.err }

// Load reads the configuration. Values come from the environment, then from
// the given dotenv files (or ./.env when it exists), then from defaults.
func Load(files ...string) (*Config, error) {
	v := viper.New()

	v.SetDefault("aws_region", "us-east-1")
	v.SetDefault("stage_prefixes", "prod,dev,stage,v1,default")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "json")

	dotenv, err := readDotenv(files)
	if err != nil {
		return nil, &Error{err}
	}
	for key, value := range dotenv {
		v.SetDefault(strings.ToLower(key), value)
	}

	binds := [][]string{
		{"forms_table", "FORMS_TABLE"},
		{"responses_table", "RESPONSES_TABLE", "RESPONSE_TABLE"},
		{"aws_region", "AWS_REGION"},
		{"dynamo_endpoint", "DYNAMO_ENDPOINT"},
		{"stage_prefixes", "STAGE_PREFIXES"},
		{"log_level", "LOG_LEVEL"},
		{"log_format", "LOG_FORMAT"},
	}
	for _, b := range binds {
		if err := v.BindEnv(b...); err != nil {
			return nil, &Error{errors.Wrapf(err, "failed binding %s", b[1])}
		}
	}

	responsesTable := v.GetString("responses_table")
	if responsesTable == "" {
		// .env files may use the singular spelling too
		responsesTable = v.GetString("response_table")
	}

	cfg := &Config{
		FormsTable:     strings.TrimSpace(v.GetString("forms_table")),
		ResponsesTable: strings.TrimSpace(responsesTable),
		Region:         strings.TrimSpace(v.GetString("aws_region")),
		Endpoint:       strings.TrimSpace(v.GetString("dynamo_endpoint")),
		StagePrefixes:  splitList(v.GetString("stage_prefixes")),
		LogLevel:       strings.ToLower(strings.TrimSpace(v.GetString("log_level"))),
		LogFormat:      strings.ToLower(strings.TrimSpace(v.GetString("log_format"))),
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}

	return cfg, nil
}

func readDotenv(files []string) (map[string]string, error) {
	if len(files) == 0 {
		if _, err := os.Stat(".env"); err != nil {
			return map[string]string{}, nil
		}
		files = []string{".env"}
	}

	values, err := godotenv.Read(files...)
	if err != nil {
		return nil, errors.Wrap(err, "failed reading dotenv")
	}
	return values, nil
}

func splitList(s string) []string {
	list := []string{}
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			list = append(list, part)
		}
	}
	return list
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		if name := field.Tag.Get("env"); name != "" {
			return name
		}
		return field.Name
	})
	return v
}

// Validate checks the configuration, naming the offending environment
// variables in the returned error.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) {
		return &Error{err}
	}

	problems := make([]string, 0, len(fieldErrors))
	for _, fe := range fieldErrors {
		switch fe.Tag() {
		case "required":
			problems = append(problems, fmt.Sprintf("%s is required", fe.Field()))
		case "oneof":
			problems = append(problems, fmt.Sprintf("%s must be one of [%s], got %q", fe.Field(), fe.Param(), fe.Value()))
		default:
			problems = append(problems, fmt.Sprintf("%s is not a valid %s", fe.Field(), fe.Tag()))
		}
	}

	return &Error{errors.New(strings.Join(problems, "; "))}
}

// Logger builds the service logger from the configured level and format.
func (c *Config) Logger() *logrus.Logger {
	logger := logrus.New()

	if c.LogFormat == "text" {
		logger.SetFormatter(&logrus.TextFormatter{DisableColors: true, FullTimestamp: true})
	} else {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}

	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	return logger
}

// Dynamo connects the DynamoDB backed store described by the configuration.
func (c *Config) Dynamo() (*store.Dynamo, error) {
	options := []store.Option{store.Region(c.Region)}
	if c.Endpoint != "" {
		options = append(options, store.Endpoint(c.Endpoint))
	}

	forms, err := store.Connect(c.FormsTable, options...)
	if err != nil {
		return nil, errors.Wrap(err, "failed connecting forms table")
	}

	responses, err := store.Connect(c.ResponsesTable, options...)
	if err != nil {
		return nil, errors.Wrap(err, "failed connecting responses table")
	}

	return store.NewDynamo(forms, responses), nil
}
