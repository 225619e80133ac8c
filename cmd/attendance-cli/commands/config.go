package commands

import (
	"attendance-backend/lib/browser"
	"attendance-backend/lib/configutil"
	configsqlite "attendance-backend/lib/configutil/sqlite"
	"attendance-backend/lib/scrapers/webpros"
	"log/slog"
	"os"
	"time"
)

type PortalConfig struct {
	BaseUrl                  string `json:"base_url"`
	LoginTimeoutSeconds      int    `json:"login_timeout_seconds"`
	NavigationTimeoutSeconds int    `json:"navigation_timeout_seconds"`
}

// Config configures the browser and account database used when no
// --server is given.
type Config struct {
	Portal   PortalConfig          `json:"portal"`
	Browser  browser.ChromeOptions `json:"browser"`
	Accounts configsqlite.Struct   `json:"accounts"`
}

func readConfig() (Config, error) {
	cfg, err := configutil.ReadConfig[Config](configPath)
	if os.IsNotExist(err) {
		slog.Debug("no cli config found, using defaults", "path", configPath)
		cfg = Config{Browser: browser.ChromeOptions{Headless: true}}
	} else if err != nil {
		return Config{}, err
	}

	if cfg.Accounts.File == "" {
		cfg.Accounts.File = "<dev_state>/accounts.db"
	}
	return cfg, nil
}

func (c PortalConfig) sessionOptions() webpros.SessionOptions {
	return webpros.SessionOptions{
		BaseUrl:           c.BaseUrl,
		LoginTimeout:      time.Duration(c.LoginTimeoutSeconds) * time.Second,
		NavigationTimeout: time.Duration(c.NavigationTimeoutSeconds) * time.Second,
	}
}
