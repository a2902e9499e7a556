package app

import (
	"os"
	"path/filepath"
	"testing"

	"VoxelTerrain/cliente/internal/journal"
	"VoxelTerrain/shared/config"
)

const tinyManifest = `
textures:
  - { name: dirtTex,    file: dirt.png }
  - { name: bedrockTex, file: bedrock.png }
  - { name: waterTex,   file: water.png }
materials:
  - { name: dirt,    texture: dirtTex,    diffuse_albedo: [1, 1, 1, 1], fresnel_r0: [0.05, 0.05, 0.05], roughness: 0.2 }
  - { name: bedrock, texture: bedrockTex, diffuse_albedo: [1, 1, 1, 1], fresnel_r0: [0.05, 0.05, 0.05], roughness: 0.2 }
  - { name: water,   texture: waterTex,   diffuse_albedo: [1, 1, 1, 1], fresnel_r0: [0.05, 0.05, 0.05], roughness: 0.2, transparent: true, uv_scroll: [0.1, 0.02] }
strata:
  bedrock: bedrock
  ore_min: 1
  ore_max: 3
  ore_default: dirt
  fill: dirt
quadrants:
  - { name: water, x: [0, 3], z: [0, 3], cap: water, height: { kind: fixed, base: 9 } }
`

func TestRunHeadlessWithJournal(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "manifest.yaml"), []byte(tinyManifest), 0644); err != nil {
		t.Fatal(err)
	}

	cfg := config.DefaultConfig()
	cfg.Backend = config.BackendHeadless
	cfg.HeadlessFrames = 12
	cfg.HeadlessLatencyMS = 0.5
	cfg.Seed = 99
	cfg.AssetDir = dir
	cfg.JournalPath = filepath.Join(dir, "frames.db")

	a := New(cfg)
	if err := a.Run(); err != nil {
		t.Fatal(err)
	}
	if a.State != StateClosed {
		t.Errorf("estado final = %d", a.State)
	}
	if a.frameCount != 12 || a.lastStats.Frame != 11 {
		t.Errorf("frames=%d último=%d", a.frameCount, a.lastStats.Frame)
	}
	if want := filepath.Join(dir, "manifest.yaml"); a.manifest != want {
		t.Errorf("manifesto = %q, want %q", a.manifest, want)
	}
	if a.lastStats.Draws != 16*9 {
		t.Errorf("draws = %d, want %d", a.lastStats.Draws, 16*9)
	}

	sessions, err := journal.Sessions(cfg.JournalPath)
	if err != nil {
		t.Fatal(err)
	}
	if len(sessions) != 1 || sessions[0].Seed != 99 || sessions[0].Backend != "headless" {
		t.Fatalf("sessões: %+v", sessions)
	}
	samples, err := journal.Load(cfg.JournalPath, sessions[0].ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(samples) != 12 {
		t.Errorf("%d amostras, want 12", len(samples))
	}
}

func TestRunRejectsUnknownBackend(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Backend = "vulkan"
	if err := New(cfg).Run(); err == nil {
		t.Error("backend desconhecido aceito")
	}
}
