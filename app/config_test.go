package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, data string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.env")
	err := os.WriteFile(path, []byte(data), 0o644)
	require.NoError(t, err)
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfigFile(t, `
PORT=:8080
ENVIRONMENT=development
VERSION=1.0.0
JWT_SECRET=supersecret
UPLOAD_DIR=uploads
POSTGRES_HOST=localhost
POSTGRES_PORT=5432
POSTGRES_USER=testuser
POSTGRES_PASSWORD=testpassword
POSTGRES_DB=testdb
MAIL_HOST=smtp.example.com
MAIL_PORT=587
MAIL_USER=testuser@example.com
MAIL_PASSWORD=testpassword
MAIL_SENDER=sender@example.com
RABBITMQ_HOST=rabbitmq.example.com
RABBITMQ_PORT=5672
RABBITMQ_USER=testuser
RABBITMQ_PASSWORD=testpassword
RATE_LIMIT_RPS=2
RATE_LIMIT_BURST=4
RATE_LIMIT_ENABLED=true
`)

	config, err := loadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, ":8080", config.Port)
	assert.Equal(t, "development", config.Environment)
	assert.Equal(t, "1.0.0", config.Version)
	assert.Equal(t, "supersecret", config.JWTSecret)
	assert.Equal(t, "uploads", config.UploadDir)
	assert.Equal(t, "localhost", config.DB.Host)
	assert.Equal(t, "5432", config.DB.Port)
	assert.Equal(t, "testuser", config.DB.User)
	assert.Equal(t, "testpassword", config.DB.Password)
	assert.Equal(t, "testdb", config.DB.Name)
	assert.Equal(t, "smtp.example.com", config.Mail.Host)
	assert.Equal(t, 587, config.Mail.Port)
	assert.Equal(t, "testuser@example.com", config.Mail.User)
	assert.Equal(t, "testpassword", config.Mail.Password)
	assert.Equal(t, "sender@example.com", config.Mail.Sender)
	assert.Equal(t, "rabbitmq.example.com", config.RabbitMQ.Host)
	assert.Equal(t, "5672", config.RabbitMQ.Port)
	assert.Equal(t, "testuser", config.RabbitMQ.User)
	assert.Equal(t, "testpassword", config.RabbitMQ.Password)
	assert.Equal(t, float64(2), config.Limiter.RPS)
	assert.Equal(t, 4, config.Limiter.Burst)
	assert.True(t, config.Limiter.Enabled)
}

func TestLoadConfigMissingSecret(t *testing.T) {
	path := writeConfigFile(t, `
PORT=:8080
ENVIRONMENT=development
`)

	_, err := loadConfig(path)
	assert.Error(t, err)
}

func TestLoadConfigDefaultUploadDir(t *testing.T) {
	path := writeConfigFile(t, `
PORT=:8080
JWT_SECRET=supersecret
`)

	config, err := loadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "uploads", config.UploadDir)
}
