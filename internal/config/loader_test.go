package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return p
}

func TestLoadYAML(t *testing.T) {
	p := writeTemp(t, "c.yaml", "addr: \":9090\"\nmodels_dir: /models\ntop_p: 0.9\ninterrupt_grace_ms: 1500\n")
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr != ":9090" || cfg.ModelsDir != "/models" {
		t.Fatalf("unexpected cfg: %+v", cfg)
	}
	if cfg.TopP != 0.9 || cfg.InterruptGraceMS != 1500 {
		t.Fatalf("unexpected tuning values: %+v", cfg)
	}
}

func TestLoadJSON(t *testing.T) {
	p := writeTemp(t, "c.json", `{"addr":":8088","default_model":"m.task","max_tokens":256}`)
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr != ":8088" || cfg.DefaultModel != "m.task" || cfg.MaxTokens != 256 {
		t.Fatalf("unexpected cfg: %+v", cfg)
	}
}

func TestLoadTOML(t *testing.T) {
	p := writeTemp(t, "c.toml", "addr = \":7070\"\naccelerator = \"gpu\"\ntemperature = 0.7\n")
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr != ":7070" || cfg.Accelerator != "gpu" || cfg.Temperature != 0.7 {
		t.Fatalf("unexpected cfg: %+v", cfg)
	}
}

func TestLoadUnsupportedExtension(t *testing.T) {
	p := writeTemp(t, "c.ini", "addr=:8080")
	if _, err := Load(p); err == nil {
		t.Fatalf("expected error for unsupported extension")
	}
}

func TestLoadEmptyPath(t *testing.T) {
	if _, err := Load(""); err == nil {
		t.Fatalf("expected error for empty path")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	p := writeTemp(t, "bad.yaml", "addr: [unclosed")
	if _, err := Load(p); err == nil {
		t.Fatalf("expected parse error")
	}
}
