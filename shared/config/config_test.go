package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfigPassesSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := DefaultConfig().SaveTo(path); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := Validate(data); err != nil {
		t.Errorf("padrão rejeitado pelo schema: %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		ok   bool
	}{
		{"vazio", `{}`, true},
		{"parcial", `{"seed": 42, "backend": "headless", "headless_frames": 10}`, true},
		{"backend desconhecido", `{"backend": "vulkan"}`, false},
		{"subdivisões demais", `{"box_subdivisions": 7}`, false},
		{"dia zero", `{"day_length_seconds": 0}`, false},
		{"blend inválido", `{"default_blend": "additive"}`, false},
		{"campo desconhecido", `{"server_url": "ws://localhost"}`, false},
		{"tipo errado", `{"window_width": "1280"}`, false},
		{"não é json", `{`, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate([]byte(tt.doc))
			if (err == nil) != tt.ok {
				t.Errorf("Validate(%s) = %v, want ok=%v", tt.doc, err, tt.ok)
			}
		})
	}
}

func TestLoadFrom(t *testing.T) {
	dir := t.TempDir()

	if cfg := LoadFrom(filepath.Join(dir, "nao_existe.json")); *cfg != *DefaultConfig() {
		t.Errorf("arquivo ausente deveria dar o padrão: %+v", cfg)
	}

	good := filepath.Join(dir, "good.json")
	os.WriteFile(good, []byte(`{"seed": 7, "day_length_seconds": 30, "default_blend": "opaque"}`), 0644)
	cfg := LoadFrom(good)
	if cfg.Seed != 7 || cfg.DayLength() != 30*time.Second || !cfg.OpaqueDefault() {
		t.Errorf("got %+v", cfg)
	}
	if cfg.WindowWidth != 1280 {
		t.Errorf("campos ausentes deveriam manter o padrão, window_width = %d", cfg.WindowWidth)
	}

	bad := filepath.Join(dir, "bad.json")
	os.WriteFile(bad, []byte(`{"seed": 7, "box_subdivisions": 99}`), 0644)
	if cfg := LoadFrom(bad); cfg.Seed != 0 {
		t.Errorf("arquivo inválido deveria dar o padrão, seed = %d", cfg.Seed)
	}
}

func TestHeadlessLatency(t *testing.T) {
	cfg := DefaultConfig()
	cfg.HeadlessLatencyMS = 1.5
	if got := cfg.HeadlessLatency(); got != 1500*time.Microsecond {
		t.Errorf("got %v", got)
	}
}
