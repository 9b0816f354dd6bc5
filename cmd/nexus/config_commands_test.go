package main

import (
	"os"
	"path/filepath"
	"testing"

	"nexus/internal/testsupport"
)

func TestConfigInitWritesSample(t *testing.T) {
	target := filepath.Join(t.TempDir(), "nested", "config.toml")

	out, _, err := runCLI(t, []string{"config", "init", "--path", target}, "", "")
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file at %s: %v", target, err)
	}

	if _, _, err := runCLI(t, []string{"config", "init", "--path", target}, "", ""); err == nil {
		t.Fatal("expected refusal to overwrite existing config")
	}
	if _, _, err := runCLI(t, []string{"config", "init", "--path", target, "--overwrite"}, "", ""); err != nil {
		t.Fatalf("config init --overwrite: %v", err)
	}
}

func TestConfigValidateRunsChecks(t *testing.T) {
	server := testsupport.NewEmbeddingServer(t, 2)
	cfg := testsupport.NewConfig(t, testsupport.WithEmbeddingServer(server), testsupport.WithInputText("doc"))
	configPath := writeTestConfig(t, cfg)

	out, _, err := runCLI(t, []string{"config", "validate"}, configPath, "")
	if err != nil {
		t.Fatalf("config validate: %v\n%s", err, out)
	}
	requireContains(t, out, "Configuration valid")
	requireContains(t, out, "Config file exists: yes")
	requireContains(t, out, "Embedding endpoint")
}

func TestConfigValidateFailsOnMissingInput(t *testing.T) {
	server := testsupport.NewEmbeddingServer(t, 2)
	cfg := testsupport.NewConfig(t, testsupport.WithEmbeddingServer(server))
	cfg.Job.Input = filepath.Join(testsupport.BaseDir(cfg), "missing.txt")
	configPath := writeTestConfig(t, cfg)

	out, _, err := runCLI(t, []string{"config", "validate"}, configPath, "")
	if err == nil {
		t.Fatal("expected readiness failure")
	}
	requireContains(t, out, "FAIL")
}

func TestConfigValidateSkipChecks(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	configPath := writeTestConfig(t, cfg)

	out, _, err := runCLI(t, []string{"config", "validate", "--skip-checks"}, configPath, "")
	if err != nil {
		t.Fatalf("config validate --skip-checks: %v", err)
	}
	requireContains(t, out, "Configuration valid")
}
