package config

import (
	"os"
	"path/filepath"
	"testing"

	"gopkg.in/yaml.v3"
)

func TestLoadDefaultsWhenNoFilePresent(t *testing.T) {
	dir := t.TempDir()
	wd, _ := os.Getwd()
	defer func() { _ = os.Chdir(wd) }()
	_ = os.Chdir(dir)

	cfg, _, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DataFile != "nedb.db" {
		t.Fatalf("expected default data_file, got %q", cfg.DataFile)
	}
	if cfg.Timestamps {
		t.Fatalf("expected timestamps to default to false")
	}
}

func TestLoadReadsYAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nedb.yaml")
	contents := `
data_file: mystore.db
timestamps: true
indexes:
  - field: email
    unique: true
  - field: expiresAt
    expire_after_seconds: 3600
`
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, _, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DataFile != "mystore.db" || !cfg.Timestamps {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if len(cfg.Indexes) != 2 || cfg.Indexes[0].Field != "email" || !cfg.Indexes[0].Unique {
		t.Fatalf("unexpected indexes: %+v", cfg.Indexes)
	}
	if cfg.Indexes[1].ExpireAfterSeconds == nil || *cfg.Indexes[1].ExpireAfterSeconds != 3600 {
		t.Fatalf("expected expire_after_seconds to decode, got %+v", cfg.Indexes[1])
	}
}

func TestDumpRoundTrips(t *testing.T) {
	cfg := &Config{DataFile: "a.db", Timestamps: true, Indexes: []IndexSpec{{Field: "sku", Unique: true}}}
	out, err := Dump(cfg)
	if err != nil {
		t.Fatalf("Dump: %v", err)
	}
	if len(out) == 0 {
		t.Fatalf("expected non-empty YAML output")
	}
	var back Config
	if err := yaml.Unmarshal(out, &back); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if back.DataFile != cfg.DataFile || back.Timestamps != cfg.Timestamps ||
		len(back.Indexes) != 1 || back.Indexes[0] != cfg.Indexes[0] {
		t.Fatalf("round trip mismatch: got %+v, want %+v", back, cfg)
	}
}
