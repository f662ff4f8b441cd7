package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chdirTemp isolates the test from any .env in the package directory.
func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	return dir
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	chdirTemp(t)
	t.Setenv(EnvConfigPath, "")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 4, cfg.Workers)
	assert.Equal(t, 45000, cfg.MinSalary)
	assert.Equal(t, 15*time.Second, cfg.Fetch.Timeout)
	assert.Equal(t, 30*24*time.Hour, cfg.Retention)

	sources, err := cfg.EnabledSources()
	require.NoError(t, err)
	assert.Len(t, sources, 7)
}

func TestLoadYAMLThenEnv(t *testing.T) {
	dir := chdirTemp(t)
	path := writeFile(t, dir, "jobfeeds.yaml", `
workers: 8
min_salary: 60000
max_links_per_source: 10
sources: [reed, jobserve]
watch_interval: 1h
fetch:
  timeout: 5s
  burst: 1
watches:
  - keyword: python
  - keyword: data engineer
    min_salary: 0
    contract_only: true
`)
	t.Setenv("JOBFEEDS_WORKERS", "2")
	t.Setenv("PORT", "9090")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 2, cfg.Workers, "env wins over yaml")
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, 60000, cfg.MinSalary)
	assert.Equal(t, 10, cfg.MaxLinks)
	assert.Equal(t, time.Hour, cfg.WatchInterval)
	assert.Equal(t, 5*time.Second, cfg.Fetch.Timeout)
	assert.Equal(t, time.Second, cfg.Fetch.Interval, "unset yaml keys keep defaults")
	assert.Equal(t, 1, cfg.Fetch.Burst)

	queries := cfg.WatchQueries()
	require.Len(t, queries, 2)
	assert.Equal(t, 60000, queries[0].MinSalary())
	assert.Equal(t, "data+engineer", queries[1].URLKeyword())
	assert.Equal(t, 0, queries[1].MinSalary())
	assert.True(t, queries[1].ContractOnly())
}

func TestLoadDotEnv(t *testing.T) {
	dir := chdirTemp(t)
	writeFile(t, dir, ".env", "JOBFEEDS_SOURCES=reed, cvlibrary\nJOBFEEDS_MIN_SALARY=70000\n")
	t.Setenv(EnvConfigPath, "")
	// godotenv skips variables that are already set, so unset them here
	// while letting t.Setenv restore the previous values afterwards.
	for _, key := range []string{"JOBFEEDS_SOURCES", "JOBFEEDS_MIN_SALARY"} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, []string{"reed", "cvlibrary"}, cfg.Sources)
	assert.Equal(t, 70000, cfg.MinSalary)
}

func TestLoadErrors(t *testing.T) {
	dir := chdirTemp(t)
	t.Setenv(EnvConfigPath, "")

	_, err := Load(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)

	bad := writeFile(t, dir, "bad.yaml", "workers: [")
	_, err = Load(bad)
	assert.Error(t, err)

	unknown := writeFile(t, dir, "unknown.yaml", "sources: [monster]")
	_, err = Load(unknown)
	assert.Error(t, err)

	t.Setenv("JOBFEEDS_WORKERS", "many")
	_, err = Load("")
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	cfg.Workers = 0
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Watches = []Watch{{Keyword: " "}}
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.MinSalary = -1
	assert.Error(t, cfg.Validate())
}
