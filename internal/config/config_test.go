package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("AUTO_CLOSE_AFTER", "")
	t.Setenv("ALLOWED_IMAGE_EXTENSIONS", "")

	cfg := Load()

	assert.Equal(t, DefaultAutoCloseAfter, cfg.AutoCloseAfter)
	assert.Equal(t, DefaultAutoCloseInterval, cfg.AutoCloseInterval)
	assert.Equal(t, DefaultImageExtensions, cfg.ImageExtensions)
}

func TestLoad_AutoCloseDisabled(t *testing.T) {
	for _, v := range []string{"0", "off", "OFF", "disabled"} {
		t.Setenv("AUTO_CLOSE_AFTER", v)
		assert.Zero(t, Load().AutoCloseAfter, v)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("AUTO_CLOSE_AFTER", "96h")
	t.Setenv("AUTO_CLOSE_INTERVAL", "bogus")
	t.Setenv("ALLOWED_IMAGE_EXTENSIONS", ".PNG, gif")
	t.Setenv("TELEGRAM_CHAT_ID", "-1001")

	cfg := Load()

	assert.Equal(t, 96*time.Hour, cfg.AutoCloseAfter)
	assert.Equal(t, DefaultAutoCloseInterval, cfg.AutoCloseInterval)
	assert.Equal(t, []string{"png", "gif"}, cfg.ImageExtensions)
	assert.Equal(t, int64(-1001), cfg.TelegramChatID)
}
