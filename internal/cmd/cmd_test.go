package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, extra string) string {
	t.Helper()
	dir := t.TempDir()
	body := fmt.Sprintf(`environment: staging
profiles:
  staging:
    config:
      driver: sqlite
      path: %s
    dashboard:
      host: dashboard.internal
      password: dashboard-secret
log:
  level: error
%s`, filepath.Join(dir, "config.db"), extra)
	path := filepath.Join(dir, "zanconfig.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(t.Context())
	return out.String(), err
}

func TestDefaultsCommand(t *testing.T) {
	out, err := run(t, "defaults")
	require.NoError(t, err)

	var groups map[string]map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &groups))
	assert.Contains(t, groups, "client_details")
	assert.Contains(t, groups, "client_appdetails")
	assert.Contains(t, groups, "notification_config")
}

func TestConfigCommand_Redacts(t *testing.T) {
	path := writeConfig(t, `mqtt:
  enabled: true
  broker: tcp://broker:1883
  password: mqtt-secret
`)
	out, err := run(t, "--config", path, "config")
	require.NoError(t, err)

	assert.Contains(t, out, "environment: staging")
	assert.Contains(t, out, "dashboard.internal")
	assert.Contains(t, out, "********")
	assert.NotContains(t, out, "dashboard-secret")
	assert.NotContains(t, out, "mqtt-secret")
}

func TestConfigCommand_InvalidFile(t *testing.T) {
	_, err := run(t, "--config", filepath.Join(t.TempDir(), "missing.yaml"), "config")
	require.Error(t, err)
}

func TestMigrateCommand(t *testing.T) {
	path := writeConfig(t, "")

	out, err := run(t, "--config", path, "migrate")
	require.NoError(t, err, out)
	assert.Contains(t, out, "tables created:      4")
	assert.NotContains(t, out, "FAILED")

	out, err = run(t, "--config", path, "migrate")
	require.NoError(t, err, out)
	assert.Contains(t, out, "tables created:      0", "a second run has nothing to create")
}

func TestUserAddCommand(t *testing.T) {
	path := writeConfig(t, "")

	out, err := run(t, "--config", path, "user", "add", "--username", "ops", "--email", "ops@example.com", "--password", "pw")
	require.NoError(t, err, out)
	assert.Contains(t, out, "created user ops")

	_, err = run(t, "--config", path, "user", "add", "--username", "ops", "--email", "other@example.com", "--password", "pw")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "user already exists")

	_, err = run(t, "--config", path, "user", "add", "--username", "x")
	require.Error(t, err, "required flags are enforced")
}

func TestFreshnessCommand_RequiresPeriod(t *testing.T) {
	_, err := run(t, "freshness", "--year", "2024")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "month")
}

func TestMigrateCommand_BadSentryDSNDoesNotBlock(t *testing.T) {
	path := writeConfig(t, `sentry:
  dsn: "not a dsn"
`)
	out, err := run(t, "--config", path, "migrate")
	require.NoError(t, err)
	assert.Contains(t, out, "tables created:      4")
}
