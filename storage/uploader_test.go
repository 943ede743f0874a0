package storage

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScreenshotKey(t *testing.T) {
	key := ScreenshotKey("payment.jpg")
	assert.True(t, strings.HasPrefix(key, "payments/"))
	assert.True(t, strings.HasSuffix(key, ".jpg"))

	// Имя файла не просачивается в ключ.
	key = ScreenshotKey("../../etc/passwd.PNG")
	assert.True(t, strings.HasPrefix(key, "payments/"))
	assert.True(t, strings.HasSuffix(key, ".png"))
	assert.NotContains(t, key, "..")
	assert.NotContains(t, key, "passwd")

	// Неизвестные расширения сводятся к .png.
	assert.True(t, strings.HasSuffix(ScreenshotKey("shot.exe"), ".png"))
	assert.True(t, strings.HasSuffix(ScreenshotKey(""), ".png"))
}

func TestScreenshotKey_Unique(t *testing.T) {
	assert.NotEqual(t, ScreenshotKey("a.png"), ScreenshotKey("a.png"))
}
