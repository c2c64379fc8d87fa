package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"waconsole/internal/constants"
	"waconsole/internal/models"
	"waconsole/internal/security"
)

var (
	ErrMissingAPIBaseURL    = models.ConfigError{Message: "missing WhatsApp API base URL"}
	ErrMissingPhoneNumberID = models.ConfigError{Message: "missing WhatsApp phone number ID"}
	ErrMissingDBPath        = models.ConfigError{Message: "missing database path"}
	ErrMissingMediaDir      = models.ConfigError{Message: "missing media directory"}
)

func LoadConfig(path string) (*models.Config, error) {
	if err := security.ValidateFilePath(path); err != nil {
		return nil, fmt.Errorf("invalid config path: %w", err)
	}

	file, err := os.ReadFile(path) // #nosec G304 - Path validated above
	if err != nil {
		return nil, err
	}

	var config models.Config
	if err := json.Unmarshal(file, &config); err != nil {
		return nil, err
	}

	applyEnvironmentOverrides(&config)

	if err := validate(&config); err != nil {
		return nil, err
	}

	if err := validateSecurity(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

func validate(c *models.Config) error {
	if c.WhatsApp.APIBaseURL == "" {
		return ErrMissingAPIBaseURL
	}
	if c.WhatsApp.PhoneNumberID == "" {
		return ErrMissingPhoneNumberID
	}
	if c.Database.Path == "" {
		return ErrMissingDBPath
	}
	if c.Media.Dir == "" {
		return ErrMissingMediaDir
	}

	if c.WhatsApp.TimeoutSec <= 0 {
		c.WhatsApp.TimeoutSec = constants.DefaultWhatsAppTimeoutSec
	}
	if c.Media.FetchTimeoutSec <= 0 {
		c.Media.FetchTimeoutSec = constants.DefaultMediaFetchTimeoutSec
	}
	if c.Media.MaxUploadSizeMB <= 0 {
		c.Media.MaxUploadSizeMB = constants.DefaultMaxUploadSizeMB
	}
	if c.Server.Port <= 0 {
		c.Server.Port = constants.DefaultServerPort
	}
	if c.Server.ReadTimeoutSec <= 0 {
		c.Server.ReadTimeoutSec = constants.DefaultServerReadTimeoutSec
	}
	if c.Server.WriteTimeoutSec <= 0 {
		c.Server.WriteTimeoutSec = constants.DefaultServerWriteTimeoutSec
	}
	if c.Server.IdleTimeoutSec <= 0 {
		c.Server.IdleTimeoutSec = constants.DefaultServerIdleTimeoutSec
	}
	if c.Server.CleanupIntervalHours <= 0 {
		c.Server.CleanupIntervalHours = constants.DefaultCleanupIntervalHours
	}
	if c.Admin.SessionTTLHours <= 0 {
		c.Admin.SessionTTLHours = constants.DefaultSessionTTLHours
	}
	if c.Retry.InitialBackoffMs <= 0 {
		c.Retry.InitialBackoffMs = constants.DefaultInitialBackoffMs
	}
	if c.Retry.MaxBackoffMs <= 0 {
		c.Retry.MaxBackoffMs = constants.DefaultMaxBackoffMs
	}
	if c.RetentionDays <= 0 {
		c.RetentionDays = constants.DefaultRetentionDays
	}

	return nil
}

func applyEnvironmentOverrides(c *models.Config) {
	if url := os.Getenv("WHATSAPP_API_URL"); url != "" {
		c.WhatsApp.APIBaseURL = url
	}
	if id := os.Getenv("WHATSAPP_PHONE_NUMBER_ID"); id != "" {
		c.WhatsApp.PhoneNumberID = id
	}

	// SECURITY: tokens and credentials should be set via environment variables
	if token := os.Getenv("WHATSAPP_ACCESS_TOKEN"); token != "" {
		c.WhatsApp.AccessToken = token
	}
	if token := os.Getenv("WACONSOLE_VERIFY_TOKEN"); token != "" {
		c.WhatsApp.VerifyToken = token
	}
	if user := os.Getenv("ADMIN_USER"); user != "" {
		c.Admin.Username = user
	}
	if hash := os.Getenv("ADMIN_PASS_HASH"); hash != "" {
		c.Admin.PasswordHash = hash
	}

	if path := os.Getenv("DB_PATH"); path != "" {
		c.Database.Path = path
	}
	if dir := os.Getenv("MEDIA_DIR"); dir != "" {
		c.Media.Dir = dir
	}
	if port := os.Getenv("PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil && p > 0 {
			c.Server.Port = p
		}
	}
}

// validateSecurity performs security-specific validation
func validateSecurity(c *models.Config) error {
	isProduction := os.Getenv("WACONSOLE_ENV") == "production"

	if isProduction {
		if c.WhatsApp.VerifyToken == "" {
			return models.ConfigError{Message: "webhook verify token is required in production (set WACONSOLE_VERIFY_TOKEN environment variable)"}
		}
		if len(c.WhatsApp.VerifyToken) < 16 {
			return models.ConfigError{Message: "webhook verify token must be at least 16 characters long"}
		}
		if c.Admin.Username == "" || c.Admin.PasswordHash == "" {
			return models.ConfigError{Message: "admin credentials are required in production (set ADMIN_USER and ADMIN_PASS_HASH environment variables)"}
		}
		if c.LogLevel == "debug" {
			return models.ConfigError{Message: "debug logging should not be used in production (security risk)"}
		}
	} else {
		if c.WhatsApp.VerifyToken == "" {
			fmt.Fprintf(os.Stderr, "WARNING: webhook verify token not set. Set WACONSOLE_VERIFY_TOKEN environment variable for security.\n")
		}
	}

	return nil
}
