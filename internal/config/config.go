package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Tracking TrackingConfig `mapstructure:"tracking"`
	Ads      AdsConfig      `mapstructure:"ads"`
	Stats    StatsConfig    `mapstructure:"stats"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// DatabaseConfig holds database connection configuration
type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

// TrackingConfig holds open-tracking configuration
type TrackingConfig struct {
	// PublicBaseURL prefixes the pixel URL handed back at registration.
	PublicBaseURL string `mapstructure:"public_base_url"`
	// SessionWindow is the duplicate-open suppression window.
	SessionWindow time.Duration `mapstructure:"session_window"`
	// SenderGrace is how long the sender cookie set at registration
	// keeps suppressing the sender's own pixel fetches.
	SenderGrace time.Duration `mapstructure:"sender_grace"`
}

// AdsConfig holds sponsor rotation configuration
type AdsConfig struct {
	FallbackImageURL string `mapstructure:"fallback_image_url"`
}

// StatsConfig holds the gauge refresh job configuration
type StatsConfig struct {
	IntervalMinutes int `mapstructure:"interval_minutes"`
}

// LoadConfig loads configuration from environment variables and config file
func LoadConfig() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	// Environment variables override config file
	viper.AutomaticEnv()
	bindEnvVars()

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults() {
	viper.SetDefault("server.port", "8080")
	viper.SetDefault("server.read_timeout", "30s")
	viper.SetDefault("server.write_timeout", "30s")

	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 3306)
	viper.SetDefault("database.sslmode", "disable")

	viper.SetDefault("tracking.public_base_url", "http://localhost:8080")
	viper.SetDefault("tracking.session_window", "5m")
	viper.SetDefault("tracking.sender_grace", "24h")

	viper.SetDefault("ads.fallback_image_url", "https://static.mailbeacon.dev/house.png")

	viper.SetDefault("stats.interval_minutes", 5)
}

// bindEnvVars binds environment variables to configuration keys
func bindEnvVars() {
	// Server
	viper.BindEnv("server.port", "SERVER_PORT")
	viper.BindEnv("server.read_timeout", "SERVER_READ_TIMEOUT")
	viper.BindEnv("server.write_timeout", "SERVER_WRITE_TIMEOUT")

	// Database
	viper.BindEnv("database.host", "DB_HOST")
	viper.BindEnv("database.port", "DB_PORT")
	viper.BindEnv("database.user", "DB_USER")
	viper.BindEnv("database.password", "DB_PASSWORD")
	viper.BindEnv("database.dbname", "DB_NAME")
	viper.BindEnv("database.sslmode", "DB_SSLMODE")

	// Tracking
	viper.BindEnv("tracking.public_base_url", "TRACKING_PUBLIC_BASE_URL")
	viper.BindEnv("tracking.session_window", "TRACKING_SESSION_WINDOW")
	viper.BindEnv("tracking.sender_grace", "TRACKING_SENDER_GRACE")

	// Ads
	viper.BindEnv("ads.fallback_image_url", "ADS_FALLBACK_IMAGE_URL")

	// Stats
	viper.BindEnv("stats.interval_minutes", "STATS_INTERVAL_MINUTES")
}

// GetDSN returns the database connection string
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		c.User, c.Password, c.Host, c.Port, c.DBName)
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}

	if c.Database.Host == "" || c.Database.User == "" || c.Database.DBName == "" {
		return fmt.Errorf("database host, user, and dbname are required")
	}

	if c.Tracking.PublicBaseURL == "" {
		return fmt.Errorf("tracking public base URL is required")
	}

	if c.Tracking.SessionWindow <= 0 {
		return fmt.Errorf("tracking session window must be greater than 0")
	}

	if c.Stats.IntervalMinutes <= 0 {
		return fmt.Errorf("stats interval must be greater than 0")
	}

	return nil
}
