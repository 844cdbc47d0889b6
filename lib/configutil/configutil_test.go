package configutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

type testConfig struct {
	Topic    string `json:"topic"`
	Interval int    `json:"interval"`
}

func TestReadConfigMergesLocalOverride(t *testing.T) {
	dir := t.TempDir()

	err := os.WriteFile(
		filepath.Join(dir, "config.json5"),
		[]byte(`{ topic: "alerts", interval: 900 }`),
		0600,
	)
	require.NoError(t, err)
	err = os.WriteFile(
		filepath.Join(dir, "config.local.json5"),
		[]byte(`{ interval: 300 }`),
		0600,
	)
	require.NoError(t, err)

	cfg, err := ReadConfig[testConfig](filepath.Join(dir, "config.json5"))
	require.NoError(t, err)
	require.Equal(t, "alerts", cfg.Topic)
	require.Equal(t, 300, cfg.Interval)
}

func TestReadConfigExpandsEnv(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("TTPWATCH_TEST_TOPIC", "secret-topic")

	err := os.WriteFile(
		filepath.Join(dir, "config.json5"),
		[]byte(`{ topic: "${TTPWATCH_TEST_TOPIC}" }`),
		0600,
	)
	require.NoError(t, err)

	cfg, err := ReadConfig[testConfig](filepath.Join(dir, "config.json5"))
	require.NoError(t, err)
	require.Equal(t, "secret-topic", cfg.Topic)
}

func TestReadConfigMissing(t *testing.T) {
	dir := t.TempDir()
	_, err := ReadConfig[testConfig](filepath.Join(dir, "config.json5"))
	require.ErrorIs(t, err, os.ErrNotExist)
}
