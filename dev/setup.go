package main

import (
	devenv "attendance-backend/dev/env"
	configsqlite "attendance-backend/lib/configutil/sqlite"
	"attendance-backend/services/accounts"
	"fmt"
	"log/slog"
	"os"
)

const portalConfigTemplate = `{
  // used by the tests that log into the live portal, they are skipped
  // until this file exists
  base_url: "https://webprosindia.com/vignanit",
  username: "",
  password: "",
  exec_path: "",
}
`

const telemetryConfigTemplate = `{
  otlp: {
    traces: { http_endpoint: "http://localhost:4318/v1/traces" },
    metrics: { http_endpoint: "http://localhost:4318/v1/metrics" },
  },
}
`

func CreateAccountsDB() error {
	path, err := devenv.ResolvePath("<dev_state>/accounts.db")
	if err != nil {
		return err
	}
	_, err = os.Stat(path)
	if err == nil {
		fmt.Println("database already created at", path)
		return nil
	}

	fmt.Println("creating database at", path)
	db, err := configsqlite.Struct{File: path}.OpenDB(accounts.Schema)
	if err != nil {
		return err
	}
	return db.Close()
}

// writeTemplate writes contents to the state file name unless it exists,
// so rerunning setup never clobbers filled in credentials.
func writeTemplate(name, contents string) error {
	path, err := devenv.GetStateFilePath(name)
	if err != nil {
		return err
	}
	_, err = os.Stat(path)
	if err == nil {
		fmt.Println("keeping existing", path)
		return nil
	}
	fmt.Println("writing template", path)
	return os.WriteFile(path, []byte(contents), 0600)
}

func WriteConfigTemplates() error {
	err := writeTemplate("portal_config.json5.example", portalConfigTemplate)
	if err != nil {
		return err
	}
	return writeTemplate("telemetry.json5.example", telemetryConfigTemplate)
}

func PrintConfigLocations() {
	slog.Info("tests against the live portal are skipped until dev/.state/portal_config.json5 exists, copy the .example next to it and fill in a student login.")
}
