package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Defaults(t *testing.T) {
	cfg, err := New()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.HTTP.Port)
	assert.Equal(t, DefaultSiteURL, cfg.Site.PublicURL)
	assert.Equal(t, "admin_auth", cfg.Admin.CookieName)
	assert.Equal(t, "local", cfg.Storage.Driver)
	assert.Equal(t, "/images", cfg.Storage.PublicPrefix)
	assert.Equal(t, 80, cfg.Images.Quality)
	assert.Equal(t, []int{1080, 400, 48}, cfg.Images.Variants)
	assert.Equal(t, 5*time.Second, cfg.Notification.Timeout)
	assert.Equal(t, "https://api.telegram.org", cfg.Notification.APIURL)
	assert.Equal(t, cfg.Database.WriterDSN, cfg.Database.ReaderDSN)
}

func TestNew_NotificationsDisabledWithoutCredentials(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "token")
	t.Setenv("TELEGRAM_CHAT_ID", "")

	cfg, err := New()
	require.NoError(t, err)
	assert.False(t, cfg.Notification.Enabled())

	t.Setenv("TELEGRAM_CHAT_ID", " 12345 ")
	cfg, err = New()
	require.NoError(t, err)
	assert.True(t, cfg.Notification.Enabled())
	assert.Equal(t, "12345", cfg.Notification.ChatID)
}

func TestNew_NormalizesURLs(t *testing.T) {
	t.Setenv("NEXT_PUBLIC_SITE_URL", "https://shop.example.com/")
	t.Setenv("TELEGRAM_API_URL", "http://localhost:8081/")
	t.Setenv("STORAGE_PUBLIC_PREFIX", "media/")

	cfg, err := New()
	require.NoError(t, err)

	assert.Equal(t, "https://shop.example.com", cfg.Site.PublicURL)
	assert.Equal(t, "http://localhost:8081", cfg.Notification.APIURL)
	assert.Equal(t, "/media", cfg.Storage.PublicPrefix)
}

func TestNew_ImageSettings(t *testing.T) {
	t.Setenv("IMAGE_QUALITY", "150")
	t.Setenv("IMAGE_VARIANTS", "800, bogus, ,200")

	cfg, err := New()
	require.NoError(t, err)

	assert.Equal(t, 80, cfg.Images.Quality)
	assert.Equal(t, []int{800, 200}, cfg.Images.Variants)
}

func TestNew_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"storage driver", map[string]string{"STORAGE_DRIVER": "ftp"}},
		{"s3 without bucket", map[string]string{"STORAGE_DRIVER": "s3"}},
		{"cache driver", map[string]string{"CACHE_DRIVER": "memcached"}},
		{"http port", map[string]string{"HTTP_PORT": "0"}},
		{"messaging driver", map[string]string{"MESSAGING_DRIVER": "nats"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := New()
			assert.Error(t, err)
		})
	}
}

func TestNew_DisabledMessagingUsesNoop(t *testing.T) {
	t.Setenv("MESSAGING_ENABLED", "false")
	t.Setenv("CACHE_ENABLED", "false")

	cfg, err := New()
	require.NoError(t, err)
	assert.Equal(t, "noop", cfg.Messaging.Driver)
	assert.Equal(t, "noop", cfg.Cache.Driver)
}
