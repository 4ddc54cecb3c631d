package configutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

type testConfig struct {
	BaseUrl string `json:"base_url"`
	Scale   int    `json:"scale"`
	Bucket  string `json:"bucket"`
}

func TestReadConfigMergesLocalOverrides(t *testing.T) {
	dir := t.TempDir()
	name := filepath.Join(dir, "config.json5")

	err := os.WriteFile(name, []byte(`{
		// default settings checked into the repo
		base_url: "https://platform.example.com",
		scale: 10,
		bucket: "shared-exports",
	}`), 0600)
	require.NoError(t, err)

	err = os.WriteFile(filepath.Join(dir, "config.local.json5"), []byte(`{
		bucket: "my-scratch-bucket",
	}`), 0600)
	require.NoError(t, err)

	config, err := ReadConfig[testConfig](name)
	require.NoError(t, err)
	require.Equal(t, "https://platform.example.com", config.BaseUrl)
	require.Equal(t, 10, config.Scale)
	require.Equal(t, "my-scratch-bucket", config.Bucket)
}

func TestReadConfigLocalOnly(t *testing.T) {
	dir := t.TempDir()
	name := filepath.Join(dir, "config.json5")

	err := os.WriteFile(filepath.Join(dir, "config.local.json5"), []byte(`{
		base_url: "https://localhost:8080",
	}`), 0600)
	require.NoError(t, err)

	config, err := ReadConfig[testConfig](name)
	require.NoError(t, err)
	require.Equal(t, "https://localhost:8080", config.BaseUrl)
}

func TestReadConfigMissing(t *testing.T) {
	_, err := ReadConfig[testConfig](filepath.Join(t.TempDir(), "config.json5"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestReadConfigInvalidJson(t *testing.T) {
	dir := t.TempDir()
	name := filepath.Join(dir, "config.json5")
	err := os.WriteFile(name, []byte(`{base_url: `), 0600)
	require.NoError(t, err)

	_, err = ReadConfig[testConfig](name)
	require.Error(t, err)
}
