package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"GOOGLE_API_KEY", "ANTHROPIC_API_KEY", "OPENAI_API_KEY", "DEEPSEEK_API_KEY",
		"GOOGLE_SEARCH_API_KEY", "GOOGLE_CSE_ID", "TAVILY_API_KEY",
		"QUILL_ADAPTER", "QUILL_MODEL", "QUILL_TIMEOUT", "QUILL_HOME",
	} {
		t.Setenv(key, "")
	}
}

func TestConfigDefaults(t *testing.T) {
	home := t.TempDir()
	setHomeEnv(t, home)
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.ConfigDir != filepath.Join(home, ".quill") {
		t.Fatalf("unexpected config dir %s", cfg.ConfigDir)
	}
	if cfg.Defaults.Adapter != "google" || cfg.Defaults.Model != "gemini-2.0-flash" {
		t.Fatalf("unexpected defaults %+v", cfg.Defaults)
	}
	if cfg.Defaults.Timeout != 2*time.Minute {
		t.Fatalf("unexpected timeout %s", cfg.Defaults.Timeout)
	}
	if cfg.Defaults.HistoryDB != filepath.Join(cfg.ConfigDir, "history.db") {
		t.Fatalf("unexpected history db %s", cfg.Defaults.HistoryDB)
	}
	if cfg.HasAdapter("google") || !cfg.HasAdapter("mock") {
		t.Fatalf("unexpected adapter availability")
	}
}

func TestConfigReadsFileAndEnvWins(t *testing.T) {
	dir := t.TempDir()
	clearEnv(t)
	t.Setenv("QUILL_HOME", dir)

	data := []byte(`api_keys:
  google: file-google
  openai: file-openai
  google_search: file-search
  google_cse_id: file-cse
defaults:
  adapter: openai
  model: mini
  timeout: 45s
  history_db: /tmp/quill-history.db
  evidence_dir: runs
stages:
  essay:
    humanize:
      adapter: anthropic
      model: sonnet
aliases:
  house: gpt-4.1
`)
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), data, 0600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("GOOGLE_API_KEY", "env-google")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.GoogleAPIKey != "env-google" {
		t.Fatalf("environment should take precedence, got %q", cfg.GoogleAPIKey)
	}
	if cfg.OpenAIAPIKey != "file-openai" || cfg.GoogleSearchAPIKey != "file-search" || cfg.GoogleCSEID != "file-cse" {
		t.Fatalf("file keys not applied: %+v", cfg)
	}
	if cfg.Defaults.Adapter != "openai" || cfg.Defaults.Model != "mini" || cfg.Defaults.Timeout != 45*time.Second {
		t.Fatalf("unexpected defaults %+v", cfg.Defaults)
	}
	if cfg.Defaults.HistoryDB != "/tmp/quill-history.db" {
		t.Fatalf("absolute history path should be kept, got %s", cfg.Defaults.HistoryDB)
	}
	if cfg.Defaults.EvidenceDir != filepath.Join(dir, "runs") {
		t.Fatalf("relative evidence dir should resolve against config dir, got %s", cfg.Defaults.EvidenceDir)
	}

	target, ok := cfg.StageOverride("essay", "humanize")
	if !ok || target.Adapter != "anthropic" || target.Model != "sonnet" {
		t.Fatalf("unexpected stage override %+v %v", target, ok)
	}
	if _, ok := cfg.StageOverride("essay", "generate"); ok {
		t.Fatalf("generate has no override")
	}
	if cfg.Aliases.Resolve("house") != "gpt-4.1" || cfg.Aliases.Resolve("flash") != "gemini-2.0-flash" {
		t.Fatalf("aliases not merged")
	}
}

func TestConfigRejectsBadFile(t *testing.T) {
	dir := t.TempDir()
	clearEnv(t)
	t.Setenv("QUILL_HOME", dir)

	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("api_keys: [unclosed"), 0600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := Load(); err == nil {
		t.Fatalf("expected parse error")
	}

	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("defaults:\n  timeout: soon\n"), 0600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := Load(); err == nil {
		t.Fatalf("expected timeout parse error")
	}
}

func TestConfigUsesEnvDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("QUILL_ADAPTER", "deepseek")
	t.Setenv("QUILL_MODEL", "deepseek-chat")
	t.Setenv("QUILL_TIMEOUT", "10s")
	t.Setenv("DEEPSEEK_API_KEY", "env-deepseek")

	cfg, err := LoadFrom(t.TempDir())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Defaults.Adapter != "deepseek" || cfg.Defaults.Model != "deepseek-chat" || cfg.Defaults.Timeout != 10*time.Second {
		t.Fatalf("unexpected defaults %+v", cfg.Defaults)
	}
	if !cfg.HasAdapter("deepseek") {
		t.Fatalf("expected deepseek to be available")
	}
}

func setHomeEnv(t *testing.T, home string) {
	t.Helper()
	t.Setenv("HOME", home)
	if runtime.GOOS == "windows" {
		t.Setenv("USERPROFILE", home)
	}
}

func TestConfigInfersAdapterFromDefaultModel(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("defaults:\n  model: sonnet\n"), 0600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadFrom(dir)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Defaults.Adapter != "anthropic" {
		t.Fatalf("expected adapter inferred from model, got %q", cfg.Defaults.Adapter)
	}

	t.Setenv("QUILL_MODEL", "cheap")
	cfg, err = LoadFrom(dir)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Defaults.Adapter != "deepseek" {
		t.Fatalf("expected deepseek for QUILL_MODEL=cheap, got %q", cfg.Defaults.Adapter)
	}

	t.Setenv("QUILL_ADAPTER", "openai")
	cfg, err = LoadFrom(dir)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Defaults.Adapter != "openai" {
		t.Fatalf("explicit adapter should win, got %q", cfg.Defaults.Adapter)
	}
}

func TestConfigUnknownModelFallsBackToGoogle(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("defaults:\n  model: my-local-model\n"), 0600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadFrom(dir)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Defaults.Adapter != "google" {
		t.Fatalf("expected google fallback, got %q", cfg.Defaults.Adapter)
	}
}
