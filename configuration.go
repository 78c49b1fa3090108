package main

import (
	"errors"
	"os"
	"strconv"
	"time"
)

const (
	defaultEventURL    = "https://kageherostudio.com/event/?event=daily"
	defaultLoginURL    = "https://kageherostudio.com/payment/server_.php"
	defaultClaimURL    = "https://kageherostudio.com/event/index_.php?act=daily"
	defaultLoginServer = "1"
	defaultTimeout     = 5 * time.Minute

	defaultHost = "0.0.0.0"
	defaultPort = 8000
)

// SiteConfig holds the target site endpoints. It is never changed after load.
type SiteConfig struct {
	EventURL    string `json:"event"`
	LoginURL    string `json:"login"`
	ClaimURL    string `json:"claim"`
	LoginServer string `json:"loginserver"`
	TimeoutSec  int    `json:"timeout"`
}

func (s SiteConfig) timeout() time.Duration {
	if s.TimeoutSec <= 0 {
		return defaultTimeout
	}
	return time.Duration(s.TimeoutSec) * time.Second
}

// ServeConfig holds web application settings
type ServeConfig struct {
	HTTPAuthLogin string `json:"httpauth"`
	HTTPAuthPwd   string `json:"httppwd"`

	Host       string `json:"host"`
	ListenPort uint16 `json:"port"`
}

func (c ServeConfig) isAuthEnabled() bool {
	return c.HTTPAuthLogin != "" && c.HTTPAuthPwd != ""
}

func (c ServeConfig) addr() string {
	return c.Host + ":" + strconv.Itoa(int(c.ListenPort))
}

type mailinfo struct {
	SMTPServer       string `json:"smtp"`
	Port             int    `json:"port-num"`
	SMTPUsername     string `json:"username"`
	SMTPUserpassword string `json:"password"`

	EmailSubjectTag string `json:"subjecttag"`
	EmailRecipient  string `json:"recipient"`
}

func (c mailinfo) isValid() bool {
	return c.Port != 0 && c.SMTPServer != "" && c.SMTPUsername != "" && c.EmailRecipient != ""
}

// Configuration holds config.json
type Configuration struct {
	Serve ServeConfig `json:"serve"`
	Site  SiteConfig  `json:"site"`

	MailSettings mailinfo `json:"mail"`

	LogFile string `json:"logfile"`
	Debug   bool   `json:"debug"`
}

// DefaultConfiguration is used when there is no config file
func DefaultConfiguration() Configuration {
	return Configuration{
		Serve: ServeConfig{Host: defaultHost, ListenPort: defaultPort},
		Site: SiteConfig{
			EventURL:    defaultEventURL,
			LoginURL:    defaultLoginURL,
			ClaimURL:    defaultClaimURL,
			LoginServer: defaultLoginServer,
			TimeoutSec:  int(defaultTimeout / time.Second),
		},
	}
}

// ReadConfiguration reads struct from file over the defaults and applies environment overrides.
// A missing file is not an error.
func ReadConfiguration(fileName string) (structCfg Configuration, err error) {
	structCfg = DefaultConfiguration()

	if fileName != "" {
		err = ReadConfig(fileName, &structCfg)
		if errors.Is(err, os.ErrNotExist) {
			stdlog.Info().Str("file", fileName).Msg("no config file, using defaults")
			err = nil
		}
		if err != nil {
			errlog.Error().Err(err).Str("file", fileName).Msg("invalid configuration file")
			return
		}
	}

	err = structCfg.applyEnv()
	return
}

func (c *Configuration) applyEnv() error {
	setString(&c.Serve.Host, "KAGEBOT_HOST")
	setString(&c.Serve.HTTPAuthLogin, "KAGEBOT_HTTPAUTH")
	setString(&c.Serve.HTTPAuthPwd, "KAGEBOT_HTTPPWD")
	if v := os.Getenv("KAGEBOT_PORT"); v != "" {
		port, err := strconv.ParseUint(v, 10, 16)
		if err != nil {
			return botErrorf("invalid KAGEBOT_PORT %q", v)
		}
		c.Serve.ListenPort = uint16(port)
	}

	setString(&c.Site.EventURL, "KAGEBOT_EVENT_URL")
	setString(&c.Site.LoginURL, "KAGEBOT_LOGIN_URL")
	setString(&c.Site.ClaimURL, "KAGEBOT_CLAIM_URL")
	if v := os.Getenv("KAGEBOT_TIMEOUT"); v != "" {
		sec, err := strconv.Atoi(v)
		if err != nil {
			return botErrorf("invalid KAGEBOT_TIMEOUT %q", v)
		}
		c.Site.TimeoutSec = sec
	}

	setString(&c.MailSettings.SMTPServer, "MAILER_SMTP")
	setString(&c.MailSettings.SMTPUsername, "MAILER_AUTH_NAME")
	setString(&c.MailSettings.SMTPUserpassword, "MAILER_AUTH_PWD")
	setString(&c.MailSettings.EmailRecipient, "MAILER_RECIPIENT")
	setString(&c.MailSettings.EmailSubjectTag, "MAILER_SUBJECT")
	if v := os.Getenv("MAILER_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return botErrorf("invalid MAILER_PORT %q", v)
		}
		c.MailSettings.Port = port
	}

	setString(&c.LogFile, "KAGEBOT_LOGFILE")
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}
