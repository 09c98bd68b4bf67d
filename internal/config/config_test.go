package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad(t *testing.T) {
	t.Setenv("VIEWS_SOURCE", "s3")
	t.Setenv("VIEWS_RELOAD", "true")
	t.Setenv("MINIO_BUCKET", "templates")
	t.Setenv("MINIO_USE_SSL", "true")
	t.Setenv("SHUTDOWN_TIMEOUT_SEC", "3")

	cfg := Load()

	assert.Equal(t, ViewsSourceS3, cfg.Views.Source)
	assert.True(t, cfg.Views.Reload)
	assert.Equal(t, "templates", cfg.MinIO.Bucket)
	assert.True(t, cfg.MinIO.UseSSL)
	assert.Equal(t, 3*time.Second, cfg.ShutdownTimeout())
}

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"PORT", "VIEWS_SOURCE", "VIEWS_DIR", "VIEWS_EXT", "VIEWS_PREFIX", "APP_TIMEZONE"} {
		t.Setenv(key, "")
	}

	cfg := Load()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, ViewsSourceEmbed, cfg.Views.Source)
	assert.Equal(t, "views", cfg.Views.Dir)
	assert.Equal(t, ".html", cfg.Views.Ext)
	assert.Equal(t, "views/", cfg.Views.Prefix)
	assert.False(t, cfg.Views.Reload)
	assert.Equal(t, time.UTC, cfg.Location())
}

func TestLocation(t *testing.T) {
	cfg := &AppConfig{Timezone: "Not/AZone"}
	assert.Equal(t, time.UTC, cfg.Location())

	cfg.Timezone = "UTC"
	assert.Equal(t, "UTC", cfg.Location().String())
}

func TestShutdownTimeout(t *testing.T) {
	cfg := &AppConfig{}
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout())
}

func TestGetEnv(t *testing.T) {
	key := "TEST_ENV_VAR"
	os.Setenv(key, "value")
	defer os.Unsetenv(key)

	assert.Equal(t, "value", getEnv(key, "default"))
	assert.Equal(t, "default", getEnv("NON_EXISTENT", "default"))
}

func TestGetEnvBool(t *testing.T) {
	key := "TEST_BOOL_VAR"

	os.Setenv(key, "true")
	assert.True(t, getEnvBool(key, false))

	os.Setenv(key, "false")
	assert.False(t, getEnvBool(key, true))

	os.Setenv(key, "invalid")
	assert.True(t, getEnvBool(key, true))

	os.Unsetenv(key)
	assert.True(t, getEnvBool(key, true))
}

func TestGetEnvInt(t *testing.T) {
	key := "TEST_INT_VAR"

	os.Setenv(key, "123")
	assert.Equal(t, 123, getEnvInt(key, 0))

	os.Setenv(key, "invalid")
	assert.Equal(t, 10, getEnvInt(key, 10))

	os.Unsetenv(key)
	assert.Equal(t, 10, getEnvInt(key, 10))
}
