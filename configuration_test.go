package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfiguration(t *testing.T) {
	c := DefaultConfiguration()
	assert.Equal(t, "0.0.0.0:8000", c.Serve.addr())
	assert.Equal(t, defaultEventURL, c.Site.EventURL)
	assert.Equal(t, defaultLoginURL, c.Site.LoginURL)
	assert.Equal(t, defaultClaimURL, c.Site.ClaimURL)
	assert.Equal(t, "1", c.Site.LoginServer)
	assert.Equal(t, 5*time.Minute, c.Site.timeout())
	assert.False(t, c.Serve.isAuthEnabled())
	assert.False(t, c.MailSettings.isValid())
}

var configEnv = []string{
	"KAGEBOT_HOST", "KAGEBOT_PORT", "KAGEBOT_HTTPAUTH", "KAGEBOT_HTTPPWD",
	"KAGEBOT_EVENT_URL", "KAGEBOT_LOGIN_URL", "KAGEBOT_CLAIM_URL", "KAGEBOT_TIMEOUT", "KAGEBOT_LOGFILE",
	"MAILER_SMTP", "MAILER_PORT", "MAILER_AUTH_NAME", "MAILER_AUTH_PWD", "MAILER_RECIPIENT", "MAILER_SUBJECT",
}

// clearConfigEnv blanks every override so only file and defaults count
func clearConfigEnv(t *testing.T) {
	t.Helper()
	for _, k := range configEnv {
		t.Setenv(k, "")
	}
}

func TestReadConfigurationMissingFile(t *testing.T) {
	t.Setenv("MAILER_SMTP", "smtp.example.com")
	clearConfigEnv(t)

	c, err := ReadConfiguration(filepath.Join(t.TempDir(), "nope.json"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfiguration(), c)
}

func TestReadConfigurationFileAndEnv(t *testing.T) {
	file := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(file, []byte(`{
		"serve": {"port": 9000, "httpauth": "admin"},
		"site": {"timeout": 30},
		"mail": {"smtp": "smtp.example.com", "port-num": 587, "username": "bot@example.com"},
		"logfile": "/tmp/kagebot.log"
	}`), 0o600))

	clearConfigEnv(t)
	t.Setenv("KAGEBOT_HTTPPWD", "secret")
	t.Setenv("MAILER_RECIPIENT", "me@example.com")
	t.Setenv("KAGEBOT_CLAIM_URL", "http://localhost/claim")

	c, err := ReadConfiguration(file)
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:9000", c.Serve.addr())
	assert.True(t, c.Serve.isAuthEnabled())
	assert.Equal(t, 30*time.Second, c.Site.timeout())
	assert.Equal(t, defaultEventURL, c.Site.EventURL, "unset fields keep defaults")
	assert.Equal(t, "http://localhost/claim", c.Site.ClaimURL)
	assert.True(t, c.MailSettings.isValid())
	assert.Equal(t, "/tmp/kagebot.log", c.LogFile)
}

func TestReadConfigurationInvalid(t *testing.T) {
	file := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(file, []byte(`{"serve":`), 0o600))

	clearConfigEnv(t)
	_, err := ReadConfiguration(file)
	assert.Error(t, err)

	t.Setenv("KAGEBOT_PORT", "eighty")
	_, err = ReadConfiguration("")
	var botErr *BotError
	assert.ErrorAs(t, err, &botErr)
}
