package assets

import (
	_ "embed"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ManifestFile é o nome do manifesto procurado no diretório de assets.
const ManifestFile = "manifest.yaml"

//go:embed manifest.yaml
var embeddedManifest []byte

// --- Estruturas YAML ---

// TextureEntry associa um nome de textura a um arquivo e ao sampler usado.
type TextureEntry struct {
	Name   string `yaml:"name"`
	File   string `yaml:"file"`
	Filter string `yaml:"filter,omitempty"`
	Wrap   string `yaml:"wrap,omitempty"`
}

// MaterialEntry define os coeficientes de um tipo de bloco.
type MaterialEntry struct {
	Name          string     `yaml:"name"`
	Texture       string     `yaml:"texture"`
	DiffuseAlbedo [4]float32 `yaml:"diffuse_albedo"`
	FresnelR0     [3]float32 `yaml:"fresnel_r0"`
	Roughness     float32    `yaml:"roughness"`
	Transparent   bool       `yaml:"transparent,omitempty"`
	UVScroll      [2]float32 `yaml:"uv_scroll,omitempty"`
}

// Chance é um sorteio uniforme em [1, OneIn] que acerta quando sai Hit.
type Chance struct {
	Material string `yaml:"material,omitempty"`
	OneIn    int    `yaml:"one_in"`
	Hit      int    `yaml:"hit"`
}

// StrataEntry descreve as camadas comuns a todas as colunas.
type StrataEntry struct {
	Bedrock    string   `yaml:"bedrock"`
	OreMin     int      `yaml:"ore_min"`
	OreMax     int      `yaml:"ore_max"`
	Ores       []Chance `yaml:"ores"`
	OreDefault string   `yaml:"ore_default"`
	Fill       string   `yaml:"fill"`
}

// Tipos de regra de altura.
const (
	HeightRange  = "range"  // base + sorteio em [min, max]
	HeightChance = "chance" // tall com a chance dada, senão base
	HeightFixed  = "fixed"  // sempre base
)

// HeightEntry é a regra de altura de um quadrante.
type HeightEntry struct {
	Kind  string `yaml:"kind"`
	Base  int    `yaml:"base"`
	Min   int    `yaml:"min,omitempty"`
	Max   int    `yaml:"max,omitempty"`
	Tall  int    `yaml:"tall,omitempty"`
	OneIn int    `yaml:"one_in,omitempty"`
	Hit   int    `yaml:"hit,omitempty"`
}

// QuadrantEntry é uma região XZ com suas regras de altura e cobertura.
type QuadrantEntry struct {
	Name    string      `yaml:"name"`
	X       [2]int      `yaml:"x"`
	Z       [2]int      `yaml:"z"`
	Cap     string      `yaml:"cap"`
	CapFrom *int        `yaml:"cap_from,omitempty"` // Sem valor: só a camada do topo
	Height  HeightEntry `yaml:"height"`
	Trees   bool        `yaml:"trees,omitempty"`
}

// Footprint é a área de exclusão em volta do tronco.
type Footprint struct {
	Left  int `yaml:"left"`
	Right int `yaml:"right"`
	Back  int `yaml:"back"`
	Front int `yaml:"front"`
}

// TreeEntry configura a colocação de árvores.
type TreeEntry struct {
	Max       int       `yaml:"max"`
	OneIn     int       `yaml:"one_in"`
	Hit       int       `yaml:"hit"`
	Trunk     string    `yaml:"trunk"`
	Leaves    string    `yaml:"leaves"`
	Footprint Footprint `yaml:"footprint"`
}

// Manifest é o root do manifest.yaml.
type Manifest struct {
	Textures  []TextureEntry  `yaml:"textures"`
	Materials []MaterialEntry `yaml:"materials"`
	Strata    StrataEntry     `yaml:"strata"`
	Quadrants []QuadrantEntry `yaml:"quadrants"`
	Trees     TreeEntry       `yaml:"trees"`
}

// --- Manager ---

// ErrInvalidManifest agrupa os erros de validação.
var ErrInvalidManifest = errors.New("manifesto inválido")

// Manager guarda o manifesto validado e responde às consultas do gerador e das tabelas.
type Manager struct {
	manifest   Manifest
	dir        string
	source     string
	textureIdx map[string]int
	materials  map[string]int
}

// NewManager lê dir/manifest.yaml. Sem o arquivo usa o manifesto embutido.
// dir também é a raiz dos arquivos de textura.
func NewManager(dir string) (*Manager, error) {
	data := embeddedManifest
	source := "embutido"
	if dir != "" {
		path := filepath.Join(dir, ManifestFile)
		raw, err := os.ReadFile(path)
		switch {
		case err == nil:
			data, source = raw, path
		case errors.Is(err, os.ErrNotExist):
			// Fallback silencioso para o manifesto embutido
		default:
			return nil, fmt.Errorf("falha ao ler %s: %w", path, err)
		}
	}

	m, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", source, err)
	}
	m.dir = dir
	m.source = source
	log.Printf("[Assets] Manifesto %s: %d texturas, %d materiais, %d quadrantes",
		source, len(m.manifest.Textures), len(m.manifest.Materials), len(m.manifest.Quadrants))
	return m, nil
}

// Parse decodifica e valida um manifesto.
func Parse(data []byte) (*Manager, error) {
	var mf Manifest
	if err := yaml.Unmarshal(data, &mf); err != nil {
		return nil, fmt.Errorf("falha ao parsear manifesto: %w", err)
	}

	m := &Manager{
		manifest:   mf,
		textureIdx: make(map[string]int, len(mf.Textures)),
		materials:  make(map[string]int, len(mf.Materials)),
	}
	if err := m.validate(); err != nil {
		return nil, err
	}
	return m, nil
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidManifest, fmt.Sprintf(format, args...))
}

func (m *Manager) validate() error {
	mf := &m.manifest

	if len(mf.Textures) == 0 || len(mf.Materials) == 0 {
		return invalid("sem texturas ou materiais")
	}
	for i, t := range mf.Textures {
		if t.Name == "" || t.File == "" {
			return invalid("textura %d sem nome ou arquivo", i)
		}
		if _, dup := m.textureIdx[t.Name]; dup {
			return invalid("textura %q duplicada", t.Name)
		}
		m.textureIdx[t.Name] = i
	}
	for i, mat := range mf.Materials {
		if mat.Name == "" {
			return invalid("material %d sem nome", i)
		}
		if _, dup := m.materials[mat.Name]; dup {
			return invalid("material %q duplicado", mat.Name)
		}
		if _, ok := m.textureIdx[mat.Texture]; !ok {
			return invalid("material %q usa textura desconhecida %q", mat.Name, mat.Texture)
		}
		m.materials[mat.Name] = i
	}

	s := &mf.Strata
	for _, name := range []string{s.Bedrock, s.OreDefault, s.Fill} {
		if err := m.requireMaterial("strata", name); err != nil {
			return err
		}
	}
	if s.OreMin < 1 || s.OreMax < s.OreMin {
		return invalid("faixa de minérios [%d, %d]", s.OreMin, s.OreMax)
	}
	for _, ore := range s.Ores {
		if err := m.requireMaterial("ores", ore.Material); err != nil {
			return err
		}
		if err := checkChance("ore "+ore.Material, ore.OneIn, ore.Hit); err != nil {
			return err
		}
	}

	if len(mf.Quadrants) == 0 {
		return invalid("sem quadrantes")
	}
	for i, q := range mf.Quadrants {
		if err := m.requireMaterial("quadrante "+q.Name, q.Cap); err != nil {
			return err
		}
		if q.X[0] > q.X[1] || q.Z[0] > q.Z[1] || q.X[0] < 0 || q.Z[0] < 0 {
			return invalid("quadrante %q com extensão inválida", q.Name)
		}
		if err := checkHeight(q, s.OreMax); err != nil {
			return err
		}
		for _, other := range mf.Quadrants[:i] {
			if q.X[0] <= other.X[1] && other.X[0] <= q.X[1] && q.Z[0] <= other.Z[1] && other.Z[0] <= q.Z[1] {
				return invalid("quadrantes %q e %q se sobrepõem", q.Name, other.Name)
			}
		}
	}

	t := &mf.Trees
	if t.Max < 0 {
		return invalid("trees.max negativo")
	}
	if t.Max > 0 {
		if err := checkChance("trees", t.OneIn, t.Hit); err != nil {
			return err
		}
		if err := m.requireMaterial("trees", t.Trunk); err != nil {
			return err
		}
		if err := m.requireMaterial("trees", t.Leaves); err != nil {
			return err
		}
		f := t.Footprint
		if f.Left < 0 || f.Right < 0 || f.Back < 0 || f.Front < 0 {
			return invalid("footprint negativo")
		}
	}
	return nil
}

func (m *Manager) requireMaterial(ctx, name string) error {
	if _, ok := m.materials[name]; !ok {
		return invalid("%s: material desconhecido %q", ctx, name)
	}
	return nil
}

func checkChance(ctx string, oneIn, hit int) error {
	if oneIn < 1 || hit < 1 || hit > oneIn {
		return invalid("%s: chance %d em %d", ctx, hit, oneIn)
	}
	return nil
}

func checkHeight(q QuadrantEntry, oreMax int) error {
	h := q.Height
	switch h.Kind {
	case HeightFixed:
	case HeightRange:
		if h.Min < 0 || h.Max < h.Min {
			return invalid("quadrante %q: faixa de altura [%d, %d]", q.Name, h.Min, h.Max)
		}
	case HeightChance:
		if err := checkChance("quadrante "+q.Name, h.OneIn, h.Hit); err != nil {
			return err
		}
		if h.Tall <= oreMax {
			return invalid("quadrante %q: altura alta %d", q.Name, h.Tall)
		}
	default:
		return invalid("quadrante %q: tipo de altura %q", q.Name, h.Kind)
	}
	if h.Base+h.Min <= oreMax {
		return invalid("quadrante %q: coluna de %d blocos não cobre os minérios", q.Name, h.Base+h.Min)
	}
	return nil
}

// --- Consultas Públicas ---

// Textures retorna as texturas na ordem dos slots da tabela de descritores.
func (m *Manager) Textures() []TextureEntry { return m.manifest.Textures }

// Materials retorna os materiais na ordem dos slots do constant buffer.
func (m *Manager) Materials() []MaterialEntry { return m.manifest.Materials }

func (m *Manager) Strata() StrataEntry         { return m.manifest.Strata }
func (m *Manager) Quadrants() []QuadrantEntry { return m.manifest.Quadrants }
func (m *Manager) Trees() TreeEntry            { return m.manifest.Trees }

// TextureSlot retorna o slot da textura name.
func (m *Manager) TextureSlot(name string) (int, bool) {
	i, ok := m.textureIdx[name]
	return i, ok
}

// MaterialIndex retorna o índice do material name.
func (m *Manager) MaterialIndex(name string) (int, bool) {
	i, ok := m.materials[name]
	return i, ok
}

// TexturePath resolve o caminho do arquivo de uma textura.
func (m *Manager) TexturePath(t TextureEntry) string {
	if m.dir == "" || filepath.IsAbs(t.File) {
		return t.File
	}
	return filepath.Join(m.dir, t.File)
}

// Source diz de onde o manifesto foi lido.
func (m *Manager) Source() string { return m.source }
