package configutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

type testConfig struct {
	Port   int `json:"port"`
	Portal struct {
		BaseUrl string `json:"base_url"`
	} `json:"portal"`
	Token string `json:"token"`
}

func writeFile(t testing.TB, path, contents string) {
	err := os.WriteFile(path, []byte(contents), 0600)
	if err != nil {
		t.Fatal(err)
	}
}

func TestReadConfigMergesLocal(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "config.json5"), `{
		// comments and trailing commas are json5
		port: 5000,
		portal: { base_url: "https://portal.example" },
	}`)
	writeFile(t, filepath.Join(dir, "config.local.json5"), `{ port: 8080 }`)

	cfg, err := ReadConfig[testConfig](filepath.Join(dir, "config.json5"))
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, 8080, cfg.Port)
	require.Equal(t, "https://portal.example", cfg.Portal.BaseUrl)
}

func TestReadConfigExpandsEnv(t *testing.T) {
	t.Setenv("ATTENDANCE_TEST_TOKEN", "secret-token")

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "config.json5"), `{ token: "${ATTENDANCE_TEST_TOKEN}" }`)

	cfg, err := ReadConfig[testConfig](filepath.Join(dir, "config.json5"))
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, "secret-token", cfg.Token)
}

func TestReadConfigMissing(t *testing.T) {
	_, err := ReadConfig[testConfig](filepath.Join(t.TempDir(), "config.json5"))
	require.True(t, os.IsNotExist(err))
}

func TestReadConfigLocalOnly(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "config.local.json5"), `{ port: 8080 }`)

	cfg, err := ReadConfig[testConfig](filepath.Join(dir, "config.json5"))
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, 8080, cfg.Port)
}

func TestReadConfigInvalid(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "config.json5"), `{ port: `)

	_, err := ReadConfig[testConfig](filepath.Join(dir, "config.json5"))
	require.ErrorContains(t, err, "parse ")
	require.False(t, os.IsNotExist(err))
}

func TestReadRecursively(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b")
	err := os.MkdirAll(nested, 0777)
	if err != nil {
		t.Fatal(err)
	}
	writeFile(t, filepath.Join(root, "telemetry.json5"), `{ port: 4318 }`)

	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	err = os.Chdir(nested)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Chdir(wd) })

	cfg, err := ReadRecursively[testConfig]("telemetry.json5")
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, 4318, cfg.Port)

	_, err = ReadRecursively[testConfig]("missing.json5")
	require.True(t, os.IsNotExist(err))
}
