package config

import (
	"os"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func TestConfig_Validate(t *testing.T) {
	base := func() *Config {
		return &Config{
			Env:         "production",
			Port:        "8480",
			JWTSecret:   "secure-secret-at-least-32-chars-long",
			DBPassword:  "secure-password",
			DBSSLMode:   "require",
			S3AccessKey: "AKIAEXAMPLE",
			S3SecretKey: "secret",
			RedisURL:    "redis://localhost:6379",
		}
	}

	tests := []struct {
		name        string
		mutate      func(*Config)
		expectError bool
	}{
		{"Valid production", func(_ *Config) {}, false},
		{"Missing port", func(c *Config) { c.Port = "" }, true},
		{"Missing JWT secret", func(c *Config) { c.JWTSecret = "" }, true},
		{"Default JWT secret in production", func(c *Config) {
			c.JWTSecret = "your-secret-key-change-in-production"
		}, true},
		{"Short JWT secret in production", func(c *Config) { c.JWTSecret = "short" }, true},
		{"Default DB password in production", func(c *Config) { c.DBPassword = "password" }, true},
		{"Missing S3 credentials in production", func(c *Config) {
			c.S3AccessKey = ""
			c.S3SecretKey = ""
		}, true},
		{"Development tolerates defaults", func(c *Config) {
			c.Env = "development"
			c.JWTSecret = "your-secret-key-change-in-production"
			c.DBPassword = "password"
			c.S3AccessKey = ""
			c.S3SecretKey = ""
		}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := base()
			tt.mutate(c)
			err := c.Validate()
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	defer os.Unsetenv("APP_ENV")
	defer viper.Reset()

	os.Setenv("APP_ENV", "development")

	c, err := LoadConfig()
	assert.NoError(t, err)
	assert.Equal(t, "8480", c.Port)
	assert.Equal(t, "recipenest", c.DBName)
	assert.Equal(t, "development", c.Env)
	assert.Equal(t, "recipenest-media", c.S3Bucket)
}
