package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), *cfg)
}

func TestLoadMissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.HTTPPort)
}

func TestLoadShippedFile(t *testing.T) {
	cfg, err := Load("config.yaml")
	require.NoError(t, err)
	assert.Equal(t, SourceDatabase, cfg.Source)
	assert.Equal(t, 50051, cfg.GRPCPort)
	assert.Equal(t, 700*time.Millisecond, cfg.FetchDelay)
	assert.Empty(t, cfg.KafkaBrokers)
}

func TestLoadFileThenEnv(t *testing.T) {
	path := writeFile(t, `
HTTP_PORT: 9000
FETCH_DELAY: 1s
PAGE_SIZE: 10
KAFKA_BROKERS: ["k1:9092"]
`)
	t.Setenv("DIRECTORY_PAGE_SIZE", "20")
	t.Setenv("DIRECTORY_FETCH_FAIL", "true")
	t.Setenv("DIRECTORY_KAFKA_BROKERS", "a:9092,b:9092")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9000, cfg.HTTPPort, "file value kept when no env override")
	assert.Equal(t, time.Second, cfg.FetchDelay)
	assert.Equal(t, 20, cfg.PageSize, "env wins over file")
	assert.True(t, cfg.FetchFail)
	assert.Equal(t, []string{"a:9092", "b:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "info", cfg.LogLevel, "defaults survive both layers")
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		env  map[string]string
	}{
		{name: "page size outside choices", yaml: "PAGE_SIZE: 7\n"},
		{name: "unknown source", yaml: "SOURCE: remote\n"},
		{name: "bad log level", env: map[string]string{"DIRECTORY_LOG_LEVEL": "loud"}},
		{name: "postgres without host", yaml: "DB_DRIVER: postgres\nDB_NAME: dir\n"},
		{name: "bad collation", yaml: "COLLATION: not_a_tag!\n"},
		{name: "malformed yaml", yaml: "HTTP_PORT: [\n"},
		{name: "unparsable env", env: map[string]string{"DIRECTORY_HTTP_PORT": "eighty"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			path := ""
			if tt.yaml != "" {
				path = writeFile(t, tt.yaml)
			}
			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}
