package main

import (
	"attendance-backend/lib/browser"
	configsqlite "attendance-backend/lib/configutil/sqlite"
	"attendance-backend/lib/scrapers/webpros"
	"time"
)

type PortalConfig struct {
	BaseUrl                  string `json:"base_url"`
	LoginTimeoutSeconds      int    `json:"login_timeout_seconds"`
	NavigationTimeoutSeconds int    `json:"navigation_timeout_seconds"`
}

func (c PortalConfig) SessionOptions() webpros.SessionOptions {
	return webpros.SessionOptions{
		BaseUrl:           c.BaseUrl,
		LoginTimeout:      time.Duration(c.LoginTimeoutSeconds) * time.Second,
		NavigationTimeout: time.Duration(c.NavigationTimeoutSeconds) * time.Second,
	}
}

type AccountsConfig struct {
	Database        configsqlite.Struct `json:"database"`
	CacheTTLMinutes int                 `json:"cache_ttl_minutes"`
}

type Config struct {
	Port        int    `json:"port"`
	// when set, every request must carry "Authorization: Bearer <access_token>"
	AccessToken string `json:"access_token"`

	Portal  PortalConfig          `json:"portal"`
	Browser browser.ChromeOptions `json:"browser"`

	// the /accounts routes are disabled when no database is configured
	Accounts AccountsConfig `json:"accounts"`

	// registers that fail to parse are saved here, ex. "<dev_state>/register_dumps"
	DumpDir string `json:"dump_dir"`
}
