package models

type ConfigError struct {
	Message string
}

func (e ConfigError) Error() string {
	return e.Message
}

type WhatsAppConfig struct {
	APIBaseURL    string `json:"api_base_url"`
	PhoneNumberID string `json:"phone_number_id"`
	VerifyToken   string `json:"verify_token"`
	// AccessToken is only ever read from the environment.
	AccessToken string `json:"-"`
	TimeoutSec  int    `json:"timeoutSec"`
}

type DatabaseConfig struct {
	Path string `json:"path"`
}

type MediaConfig struct {
	Dir             string `json:"dir"`
	FetchTimeoutSec int    `json:"fetchTimeoutSec"`
	MaxUploadSizeMB int    `json:"maxUploadSizeMB"`
}

type ServerConfig struct {
	Port                 int `json:"port"`
	ReadTimeoutSec       int `json:"readTimeoutSec"`
	WriteTimeoutSec      int `json:"writeTimeoutSec"`
	IdleTimeoutSec       int `json:"idleTimeoutSec"`
	CleanupIntervalHours int `json:"cleanupIntervalHours"`
}

type AdminConfig struct {
	Username string `json:"username"`
	// PasswordHash is a bcrypt hash of the console password.
	PasswordHash    string `json:"password_hash"`
	SessionTTLHours int    `json:"sessionTTLHours"`
}

type RetryConfig struct {
	InitialBackoffMs int `json:"initialBackoffMs"`
	MaxBackoffMs     int `json:"maxBackoffMs"`
	MaxAttempts      int `json:"maxAttempts"`
}

type TracingConfig struct {
	ServiceName    string  `json:"service_name"`
	ServiceVersion string  `json:"service_version"`
	Environment    string  `json:"environment"`
	OTLPEndpoint   string  `json:"otlp_endpoint"`
	SampleRate     float64 `json:"sample_rate"`
	Enabled        bool    `json:"enabled"`
	UseStdout      bool    `json:"use_stdout"`
}

type Config struct {
	WhatsApp      WhatsAppConfig `json:"whatsapp"`
	Database      DatabaseConfig `json:"database"`
	Media         MediaConfig    `json:"media"`
	Server        ServerConfig   `json:"server"`
	Admin         AdminConfig    `json:"admin"`
	Retry         RetryConfig    `json:"retry"`
	Tracing       TracingConfig  `json:"tracing"`
	RetentionDays int            `json:"retentionDays"`
	LogLevel      string         `json:"logLevel"`
}
