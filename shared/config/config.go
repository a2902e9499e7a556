package config

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed config.schema.json
var schemaSource string

const schemaURL = "config.schema.json"

// Backends suportados.
const (
	BackendRaylib   = "raylib"
	BackendHeadless = "headless"
)

// Config armazena as configurações do VoxelTerrain.
type Config struct {
	// Janela
	WindowWidth  int32  `json:"window_width"`
	WindowHeight int32  `json:"window_height"`
	WindowTitle  string `json:"window_title"`
	Fullscreen   bool   `json:"fullscreen"`
	TargetFPS    int32  `json:"target_fps"`

	// Dispositivo
	Backend           string  `json:"backend"`
	HeadlessFrames    int     `json:"headless_frames"`     // Frames a rodar no backend headless
	HeadlessLatencyMS float64 `json:"headless_latency_ms"` // Tempo simulado de GPU por frame

	// Mundo
	// Seed 0 usa a hora; AssetDir vazio usa o manifesto embutido.
	Seed            int64   `json:"seed"`
	BoxSubdivisions int     `json:"box_subdivisions"`
	AssetDir        string  `json:"asset_dir"`
	DefaultBlend    string  `json:"default_blend"`
	DayLengthSecs   float64 `json:"day_length_seconds"`

	// Câmera (unidades por segundo, graus por pixel)
	CameraSpeed       float32 `json:"camera_speed"`
	CameraSensitivity float32 `json:"camera_sensitivity"`

	// Debug
	JournalPath   string `json:"journal_path"`
	ShowDebugInfo bool   `json:"show_debug_info"`
}

// DefaultConfig retorna a configuração padrão.
func DefaultConfig() *Config {
	return &Config{
		WindowWidth:  1280,
		WindowHeight: 720,
		WindowTitle:  "VoxelTerrain",
		Fullscreen:   false,
		TargetFPS:    60,

		Backend:           BackendRaylib,
		HeadlessFrames:    300,
		HeadlessLatencyMS: 2,

		Seed:            0,
		BoxSubdivisions: 0,
		DefaultBlend:    "alpha",
		DayLengthSecs:   60,

		CameraSpeed:       10.0,
		CameraSensitivity: 0.25,

		ShowDebugInfo: true,
	}
}

// DayLength devolve a duração do dia como time.Duration.
func (c *Config) DayLength() time.Duration {
	return time.Duration(c.DayLengthSecs * float64(time.Second))
}

// HeadlessLatency devolve a latência simulada da GPU.
func (c *Config) HeadlessLatency() time.Duration {
	return time.Duration(c.HeadlessLatencyMS * float64(time.Millisecond))
}

// OpaqueDefault indica se o passo padrão usa o PSO opaco em vez do transparente.
func (c *Config) OpaqueDefault() bool { return c.DefaultBlend == "opaque" }

var schema = jsonschema.MustCompileString(schemaURL, schemaSource)

// Validate confere um documento JSON contra o schema embutido.
func Validate(data []byte) error {
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("json inválido: %w", err)
	}
	if err := schema.Validate(doc); err != nil {
		return fmt.Errorf("schema: %w", err)
	}
	return nil
}

// configPath retorna o caminho do arquivo de configuração.
func configPath() string {
	execDir, err := os.Executable()
	if err != nil {
		return "config.json"
	}
	return filepath.Join(filepath.Dir(execDir), "config.json")
}

// Load carrega as configurações do config.json ao lado do executável.
func Load() *Config {
	return LoadFrom(configPath())
}

// LoadFrom carrega as configurações de path. Se o arquivo não existir ou for inválido,
// retorna as configurações padrão.
func LoadFrom(path string) *Config {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("[Config] Falha ao ler %s, usando padrão: %v", path, err)
		}
		return cfg
	}

	if err := Validate(data); err != nil {
		log.Printf("[Config] %s inválido, usando padrão: %v", path, err)
		return DefaultConfig()
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		log.Printf("[Config] %s inválido, usando padrão: %v", path, err)
		return DefaultConfig()
	}

	log.Printf("[Config] Configurações carregadas de %s", path)
	return cfg
}

// Save salva as configurações no config.json ao lado do executável.
func (c *Config) Save() error {
	return c.SaveTo(configPath())
}

// SaveTo salva as configurações em path.
func (c *Config) SaveTo(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
