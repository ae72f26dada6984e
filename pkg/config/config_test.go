package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCommand(t *testing.T, args ...string) *cobra.Command {
	t.Helper()
	d := NewDefaultConfig()
	cmd := &cobra.Command{Use: "test", RunE: func(*cobra.Command, []string) error { return nil }}
	f := cmd.Flags()
	f.StringP("config", "c", "", "")
	f.String("settings", "", "")
	f.String("server.addr", d.Server.Addr, "")
	f.Duration("collector.timeout", d.Collector.Timeout, "")
	f.Int("collector.concurrency", d.Collector.Concurrency, "")
	f.String("log.path", t.TempDir(), "")
	require.NoError(t, f.Parse(args))
	return cmd
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfigWithCli(newCommand(t, "-c", "clusters.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "clusters.yaml", cfg.Inventory)
	assert.Equal(t, ":8000", cfg.Server.Addr)
	assert.Equal(t, "/metrics", cfg.Server.MetricsPath)
	assert.Equal(t, 30*time.Second, cfg.Collector.Timeout)
	assert.Equal(t, 1, cfg.Collector.Concurrency)
	assert.False(t, cfg.Server.RuntimeMetrics)
	assert.Equal(t, "exec", cfg.SSH.Transport)
}

func TestLoadConfigPrecedence(t *testing.T) {
	settings := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(settings, []byte(`
server:
  addr: 127.0.0.1:9100
  runtime_metrics: true
collector:
  timeout: 45s
  concurrency: 4
ssh:
  identity_files: /keys/a,/keys/b
`), 0o600))
	t.Setenv("PS_NET_STATS_COLLECTOR_CONCURRENCY", "8")

	cfg, err := LoadConfigWithCli(newCommand(t, "--settings", settings, "--collector.timeout", "5s"))
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9100", cfg.Server.Addr)
	assert.True(t, cfg.Server.RuntimeMetrics)
	// flag beats file
	assert.Equal(t, 5*time.Second, cfg.Collector.Timeout)
	// env beats file
	assert.Equal(t, 8, cfg.Collector.Concurrency)
	assert.Equal(t, []string{"/keys/a", "/keys/b"}, cfg.SSH.IdentityFiles)
}

func TestLoadConfigErrors(t *testing.T) {
	_, err := LoadConfigWithCli(newCommand(t, "--settings", filepath.Join(t.TempDir(), "missing.yaml")))
	assert.ErrorIs(t, err, ErrSettingsRead)

	_, err = LoadConfigWithCli(newCommand(t, "--collector.concurrency", "0"))
	assert.ErrorContains(t, err, "validate config")

	_, err = LoadConfigWithCli(newCommand(t, "--server.addr", "not an address"))
	assert.ErrorContains(t, err, "server.addr")
}

func TestSectionValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
		want   string
	}{
		{"metrics on root", func(c *Config) { c.Server.MetricsPath = "/" }, "collides"},
		{"metrics without slash", func(c *Config) { c.Server.MetricsPath = "metrics" }, "startswith"},
		{"timeout too long", func(c *Config) { c.Collector.Timeout = 2 * time.Hour }, "at most 1h"},
		{"negative timeout", func(c *Config) { c.Collector.Timeout = -time.Second }, "gte"},
		{"unknown transport", func(c *Config) { c.SSH.Transport = "telnet" }, "oneof"},
		{"exec without binary", func(c *Config) { c.SSH.Binary = " " }, "ssh.binary"},
		{"native without host keys", func(c *Config) { c.SSH.Transport = "native" }, "known_hosts"},
		{"duplicate identity", func(c *Config) { c.SSH.IdentityFiles = []string{"a", "a"} }, "duplicated"},
		{"bad log level", func(c *Config) { c.Log.Level = "trace" }, "oneof"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewDefaultConfig()
			c.Log.Path = t.TempDir()
			tt.mutate(c)
			assert.ErrorContains(t, c.Validate(), tt.want)
		})
	}

	c := NewDefaultConfig()
	c.Log.Path = filepath.Join(t.TempDir(), "nested", "logs")
	c.SSH.Transport = "native"
	c.SSH.InsecureIgnoreHostKey = true
	require.NoError(t, c.Validate())
	assert.DirExists(t, c.Log.Path)
}
