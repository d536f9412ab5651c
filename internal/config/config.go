package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/yigit/campusportal/internal/pkg/apperrors"
)

// Config structure represents the application configuration shared by the
// portal and the mock backend
type Config struct {
	Server struct {
		Port string `yaml:"port" env:"SERVER_PORT"`
		Mode string `yaml:"mode" env:"SERVER_MODE"`
	} `yaml:"server"`

	API struct {
		BaseURL string `yaml:"base_url" env:"PORTAL_API_BASE_URL" validate:"required,url"`
		Timeout string `yaml:"timeout" env:"PORTAL_API_TIMEOUT" validate:"required"`
	} `yaml:"api"`

	Integrations struct {
		MediaBaseURL   string `yaml:"media_base_url" env:"PORTAL_MEDIA_BASE_URL" validate:"required,url"`
		ImageBaseURL   string `yaml:"image_base_url" env:"PORTAL_IMAGE_BASE_URL" validate:"required,url"`
		RealtimeAppKey string `yaml:"realtime_app_key" env:"PORTAL_REALTIME_APP_KEY" validate:"required"`
		AnalyticsID    string `yaml:"analytics_id" env:"PORTAL_ANALYTICS_ID" validate:"required"`
	} `yaml:"integrations"`

	Session struct {
		Driver      string `yaml:"driver" env:"PORTAL_SESSION_DRIVER" validate:"oneof=file memory"`
		StoragePath string `yaml:"storage_path" env:"PORTAL_STORAGE_PATH" validate:"required_if=Driver file"`
	} `yaml:"session"`

	Cache struct {
		QueryTTL        string `yaml:"query_ttl" env:"PORTAL_QUERY_TTL"`
		NotificationTTL string `yaml:"notification_ttl" env:"PORTAL_NOTIFICATION_TTL"`
	} `yaml:"cache"`

	MockAPI struct {
		Port        string  `yaml:"port" env:"MOCK_API_PORT" validate:"required"`
		StoragePath string  `yaml:"storage_path" env:"MOCK_API_STORAGE_PATH" validate:"required"`
		LoginRPS    float64 `yaml:"login_rps" env:"MOCK_API_LOGIN_RPS" validate:"gt=0"`
		LoginBurst  int     `yaml:"login_burst" env:"MOCK_API_LOGIN_BURST" validate:"gt=0"`
	} `yaml:"mock_api"`

	JWT struct {
		Secret                 string `yaml:"secret" env:"JWT_SECRET" validate:"required"`
		AccessTokenExpiration  string `yaml:"access_token_expiration" env:"JWT_ACCESS_TOKEN_EXPIRATION"`
		RefreshTokenExpiration string `yaml:"refresh_token_expiration" env:"JWT_REFRESH_TOKEN_EXPIRATION"`
		Issuer                 string `yaml:"issuer" env:"JWT_ISSUER"`
	} `yaml:"jwt"`

	Logging struct {
		Level  string `yaml:"level" env:"LOG_LEVEL" validate:"oneof=debug info warn error fatal"`
		Format string `yaml:"format" env:"LOG_FORMAT" validate:"oneof=json text"`
	} `yaml:"logging"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Report environment variable names so the operator knows what to set
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		if name := fld.Tag.Get("env"); name != "" {
			return name
		}
		return fld.Name
	})
	return v
}

// LoadConfig loads configuration from a YAML file, a .env file and
// environment variables, in increasing order of precedence. Missing files are
// skipped. Validation is left to ValidatePortal / ValidateMockAPI.
func LoadConfig(configPath, envPath string) (*Config, error) {
	config := &Config{}
	setDefaults(config)

	if _, err := os.Stat(configPath); err == nil {
		file, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(file, config); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	if envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			// Load never overrides variables that are already set
			if err := godotenv.Load(envPath); err != nil {
				return nil, fmt.Errorf("failed to load env file: %w", err)
			}
		}
	}

	if err := loadFromEnv(config); err != nil {
		return nil, fmt.Errorf("failed to load from environment: %w", err)
	}

	return config, nil
}

// setDefaults sets default values for the configuration
func setDefaults(config *Config) {
	config.Server.Port = "3000"
	config.Server.Mode = "development"

	config.API.Timeout = "15s"

	config.Session.Driver = "file"
	config.Session.StoragePath = ".campusportal/storage.json"

	config.Cache.QueryTTL = "30s"
	config.Cache.NotificationTTL = "5s"

	config.MockAPI.Port = "8080"
	config.MockAPI.StoragePath = "uploads"
	config.MockAPI.LoginRPS = 5
	config.MockAPI.LoginBurst = 10

	config.JWT.AccessTokenExpiration = "1h"
	config.JWT.RefreshTokenExpiration = "720h"
	config.JWT.Issuer = "fe-swd.mock"

	config.Logging.Level = "info"
	config.Logging.Format = "json"
}

// loadFromEnv overrides configuration with environment variables
func loadFromEnv(config *Config) error {
	return processStructFields(config)
}

// ValidatePortal checks everything the portal needs to start
func ValidatePortal(config *Config) error {
	if err := validateSections(&config.API, &config.Integrations, &config.Session, &config.Logging); err != nil {
		return err
	}

	durations := map[string]string{
		"PORTAL_API_TIMEOUT":      config.API.Timeout,
		"PORTAL_QUERY_TTL":        config.Cache.QueryTTL,
		"PORTAL_NOTIFICATION_TTL": config.Cache.NotificationTTL,
	}
	return validateDurations(durations)
}

// ValidateMockAPI checks everything the mock backend needs to start
func ValidateMockAPI(config *Config) error {
	if err := validateSections(&config.MockAPI, &config.JWT, &config.Logging); err != nil {
		return err
	}

	durations := map[string]string{
		"JWT_ACCESS_TOKEN_EXPIRATION":  config.JWT.AccessTokenExpiration,
		"JWT_REFRESH_TOKEN_EXPIRATION": config.JWT.RefreshTokenExpiration,
	}
	return validateDurations(durations)
}

func validateSections(sections ...interface{}) error {
	var problems []string
	for _, section := range sections {
		err := validate.Struct(section)
		if err == nil {
			continue
		}

		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return fmt.Errorf("%w: %v", apperrors.ErrConfigInvalid, err)
		}
		for _, fe := range verrs {
			problems = append(problems, describe(fe))
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", apperrors.ErrConfigInvalid, strings.Join(problems, "; "))
	}
	return nil
}

func validateDurations(durations map[string]string) error {
	for name, value := range durations {
		if value == "" {
			continue
		}
		if _, err := time.ParseDuration(value); err != nil {
			return fmt.Errorf("%w: %s has invalid duration %q", apperrors.ErrConfigInvalid, name, value)
		}
	}
	return nil
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "required_if":
		return fe.Field() + " is required"
	case "url":
		return fmt.Sprintf("%s must be a valid URL (got %q)", fe.Field(), fe.Value())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s] (got %q)", fe.Field(), fe.Param(), fe.Value())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s failed %s validation", fe.Field(), fe.Tag())
	}
}
