package prompts

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLoadPrompts(t *testing.T) {
	path := writeFile(t, "prompts01.toml", `
[prompt]
system = "マークダウン文書の構造を抽出してください。"
user = "## 導入\n\nここでは導入をおこなう。"
`)
	p, err := LoadPrompts(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.System != "マークダウン文書の構造を抽出してください。" {
		t.Errorf("unexpected system prompt: %q", p.System)
	}
	if p.User == "" {
		t.Error("expected user prompt to be set")
	}
}

func TestLoadPrompts_MissingKey(t *testing.T) {
	path := writeFile(t, "prompts.toml", `
[prompt]
system = "only system"
`)
	_, err := LoadPrompts(path)
	if err == nil {
		t.Fatal("expected missing prompt.user to fail")
	}
}

func TestLoadPrompts_MissingFile(t *testing.T) {
	if _, err := LoadPrompts(filepath.Join(t.TempDir(), "absent.toml")); err == nil {
		t.Fatal("expected missing file to fail")
	}
}

func TestLoadGenConfig(t *testing.T) {
	path := writeFile(t, "config.toml", `
temperature = 0.7
model = "claude-sonnet-4-5-20250929"
`)
	cfg, err := LoadGenConfig(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Temperature != 0.7 {
		t.Errorf("expected temperature 0.7, got %v", cfg.Temperature)
	}
	if cfg.Model != "claude-sonnet-4-5-20250929" {
		t.Errorf("unexpected model: %q", cfg.Model)
	}
}

func TestLoadGenConfig_MissingTemperature(t *testing.T) {
	path := writeFile(t, "config.toml", `model = "m"`)
	if _, err := LoadGenConfig(path); err == nil {
		t.Fatal("expected missing temperature to fail")
	}
}
