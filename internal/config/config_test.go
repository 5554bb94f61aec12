package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestConfigValidation(t *testing.T) {
	config := &Config{
		Server: ServerConfig{
			Port: "8080",
		},
		Database: DatabaseConfig{
			Host:   "localhost",
			User:   "test",
			DBName: "test",
		},
		Tracking: TrackingConfig{
			PublicBaseURL: "http://localhost:8080",
			SessionWindow: 5 * time.Minute,
			SenderGrace:   24 * time.Hour,
		},
		Stats: StatsConfig{
			IntervalMinutes: 5,
		},
	}

	err := config.Validate()
	assert.NoError(t, err)

	invalidConfig := &Config{
		Server: ServerConfig{
			Port: "",
		},
	}

	err = invalidConfig.Validate()
	assert.Error(t, err)
}

func TestConfigValidationSessionWindow(t *testing.T) {
	config := &Config{
		Server: ServerConfig{Port: "8080"},
		Database: DatabaseConfig{
			Host:   "localhost",
			User:   "test",
			DBName: "test",
		},
		Tracking: TrackingConfig{
			PublicBaseURL: "http://localhost:8080",
			SessionWindow: 0,
		},
		Stats: StatsConfig{IntervalMinutes: 5},
	}

	err := config.Validate()
	assert.Error(t, err)
}

func TestDatabaseDSN(t *testing.T) {
	config := DatabaseConfig{
		Host:     "localhost",
		Port:     3306,
		User:     "testuser",
		Password: "testpass",
		DBName:   "testdb",
	}

	dsn := config.GetDSN()
	expected := "testuser:testpass@tcp(localhost:3306)/testdb?charset=utf8mb4&parseTime=True&loc=Local"
	assert.Equal(t, expected, dsn)
}
