package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// writeConfig writes a minimal config pointing at a temp database.
func writeConfig(t *testing.T) (configPath, dir string) {
	t.Helper()
	dir = t.TempDir()
	configPath = filepath.Join(dir, "config.yaml")

	content := `
database:
  path: "` + filepath.Join(dir, "chatops.db") + `"
  wal_mode: true
  busy_timeout: 5

mqtt:
  broker:
    host: "127.0.0.1"
    port: 19999
    client_id: "test-client"
  qos: 1
  reconnect:
    initial_delay: 1
    max_delay: 5

gateway:
  topic_prefix: "tradfri"
  settle_delay: 50

slack:
  command: "/lights"

influxdb:
  enabled: false

logging:
  level: error
  format: text
  output: stdout

api:
  host: "127.0.0.1"
  port: 18089
  timeouts:
    read: 5
    write: 5
    idle: 5
  auth:
    token_secret: "test-dashboard-secret"
`
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	return configPath, dir
}

func TestRun_InvalidConfig(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := run(ctx, "/nonexistent/path/config.yaml"); err == nil {
		t.Fatal("run() should fail with invalid config path")
	}
}

func TestRun_MissingSigningSecret(t *testing.T) {
	configPath, _ := writeConfig(t)
	t.Setenv("CHATOPS_SLACK_SIGNING_SECRET", "")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := run(ctx, configPath)
	if err == nil || !strings.Contains(err.Error(), "signing_secret") {
		t.Fatalf("run() error = %v, want signing secret error", err)
	}
}

// TestRun_StartupAndShutdown needs no broker: the gateway dials lazily
// and a failed warm-up is only logged.
func TestRun_StartupAndShutdown(t *testing.T) {
	configPath, dir := writeConfig(t)
	t.Setenv("CHATOPS_SLACK_SIGNING_SECRET", "test-secret")

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	if err := run(ctx, configPath); err != nil {
		t.Fatalf("run() error = %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "chatops.db")); err != nil {
		t.Errorf("database not created: %v", err)
	}
}

func TestGetConfigPath(t *testing.T) {
	tests := []struct {
		name string
		flag string
		env  string
		want string
	}{
		{name: "default", want: defaultConfigPath},
		{name: "env override", env: "/custom/path/config.yaml", want: "/custom/path/config.yaml"},
		{name: "flag wins", flag: "/flag/config.yaml", env: "/custom/path/config.yaml", want: "/flag/config.yaml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("CHATOPS_CONFIG", tt.env)
			if got := getConfigPath(tt.flag); got != tt.want {
				t.Errorf("getConfigPath(%q) = %q, want %q", tt.flag, got, tt.want)
			}
		})
	}
}

func TestMigrateCommand(t *testing.T) {
	configPath, _ := writeConfig(t)
	t.Setenv("CHATOPS_SLACK_SIGNING_SECRET", "test-secret")

	var out bytes.Buffer
	if err := migrate(context.Background(), configPath, &out); err != nil {
		t.Fatalf("migrate() error = %v", err)
	}
	if !strings.Contains(out.String(), "initial_schema") {
		t.Errorf("first migrate output = %q, want initial_schema applied", out.String())
	}

	out.Reset()
	if err := migrate(context.Background(), configPath, &out); err != nil {
		t.Fatalf("second migrate() error = %v", err)
	}
	if !strings.Contains(out.String(), "0 migration(s) applied") {
		t.Errorf("second migrate output = %q, want nothing applied", out.String())
	}
}

func TestSeedCommand(t *testing.T) {
	configPath, dir := writeConfig(t)
	t.Setenv("CHATOPS_SLACK_SIGNING_SECRET", "test-secret")

	seedPath := filepath.Join(dir, "neighborhoods.yaml")
	seedContent := `
neighborhoods:
  - id: mission
    name: Mission
    url: https://example.org/mission
    description: Murals and burritos.
  - id: soma
    name: SoMa
    url: https://example.org/soma
`
	if err := os.WriteFile(seedPath, []byte(seedContent), 0600); err != nil {
		t.Fatalf("failed to write seed file: %v", err)
	}

	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"--config", configPath, "seed", seedPath})
	if err := root.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("seed command error = %v", err)
	}
	if !strings.Contains(out.String(), "seeded 2 neighborhood(s)") {
		t.Errorf("output = %q", out.String())
	}
}

func TestSeedCommand_RequiresFile(t *testing.T) {
	root := newRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"seed"})
	if err := root.Execute(); err == nil {
		t.Error("seed without a file expected error, got nil")
	}
}

func TestTokenCommand(t *testing.T) {
	configPath, _ := writeConfig(t)
	t.Setenv("CHATOPS_SLACK_SIGNING_SECRET", "test-secret")

	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"--config", configPath, "token", "ops", "--ttl", "2h"})
	if err := root.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("token command error = %v", err)
	}

	token := strings.TrimSpace(out.String())
	if strings.Count(token, ".") != 2 {
		t.Errorf("output = %q, want a JWT", token)
	}
}

func TestTokenCommand_RejectsNegativeTTL(t *testing.T) {
	configPath, _ := writeConfig(t)
	t.Setenv("CHATOPS_SLACK_SIGNING_SECRET", "test-secret")

	if err := issueToken(configPath, "ops", -time.Hour, &bytes.Buffer{}); err == nil {
		t.Error("issueToken() with negative ttl expected error, got nil")
	}
}
