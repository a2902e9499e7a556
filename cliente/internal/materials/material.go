// Package materials mantém a tabela de materiais (um por tipo de bloco), a animação da
// água e a tabela de texturas ligada à tabela de descritores.
package materials

import (
	"fmt"
	"log"

	"VoxelTerrain/cliente/internal/assets"
	"VoxelTerrain/cliente/internal/cbuffer"
	"VoxelTerrain/cliente/internal/frame"
	"VoxelTerrain/shared/util"

	"github.com/go-gl/mathgl/mgl32"
)

// Material são os coeficientes de superfície de um tipo de bloco.
// Render items guardam só um ponteiro; a tabela é dona dos materiais.
type Material struct {
	Name string

	CBIndex             int // Slot no constant buffer de materiais
	DiffuseSrvHeapIndex int // Slot na tabela de descritores

	DiffuseAlbedo mgl32.Vec4
	FresnelR0     mgl32.Vec3
	Roughness     float32
	MatTransform  mgl32.Mat4

	Transparent bool
	Scroll      mgl32.Vec2 // Velocidade do deslocamento de UV (unidades de textura por segundo)

	Dirty frame.Dirty
}

// Constants monta o registro do constant buffer.
func (m *Material) Constants() cbuffer.MaterialConstants {
	return cbuffer.MaterialConstants{
		DiffuseAlbedo: m.DiffuseAlbedo,
		FresnelR0:     m.FresnelR0,
		Roughness:     m.Roughness,
		MatTransform:  m.MatTransform,
	}
}

// Animated indica se o material muda a cada frame.
func (m *Material) Animated() bool {
	return m.Scroll[0] != 0 || m.Scroll[1] != 0
}

// animate desloca a translação da MatTransform e volta para 0 ao chegar em 1.
func (m *Material) animate(dt float32) {
	u := m.MatTransform[12] + m.Scroll[0]*dt
	v := m.MatTransform[13] + m.Scroll[1]*dt
	m.MatTransform[12] = util.WrapUnit(u)
	m.MatTransform[13] = util.WrapUnit(v)
	m.Dirty.Mark()
}

// Table é a tabela de materiais com slots densos a partir de zero.
type Table struct {
	byName map[string]*Material
	list   []*Material
}

// NewTable cria os materiais na ordem do manifesto.
func NewTable(mgr *assets.Manager) (*Table, error) {
	t := &Table{byName: make(map[string]*Material)}
	for i, e := range mgr.Materials() {
		slot, ok := mgr.TextureSlot(e.Texture)
		if !ok {
			return nil, fmt.Errorf("material %q: textura %q sem slot", e.Name, e.Texture)
		}
		m := &Material{
			Name:                e.Name,
			CBIndex:             i,
			DiffuseSrvHeapIndex: slot,
			DiffuseAlbedo:       mgl32.Vec4(e.DiffuseAlbedo),
			FresnelR0:           mgl32.Vec3(e.FresnelR0),
			Roughness:           e.Roughness,
			MatTransform:        mgl32.Ident4(),
			Transparent:         e.Transparent,
			Scroll:              mgl32.Vec2(e.UVScroll),
			Dirty:               frame.NewDirty(),
		}
		t.byName[m.Name] = m
		t.list = append(t.list, m)
	}
	log.Printf("[Materials] %d materiais criados", len(t.list))
	return t, nil
}

// Get retorna o material name.
func (t *Table) Get(name string) (*Material, bool) {
	m, ok := t.byName[name]
	return m, ok
}

// MustGet é Get para nomes que o manifesto já validou.
func (t *Table) MustGet(name string) *Material {
	m, ok := t.byName[name]
	if !ok {
		panic(fmt.Sprintf("materials: material %q inexistente", name))
	}
	return m
}

// ByIndex retorna o material do slot i.
func (t *Table) ByIndex(i int) *Material { return t.list[i] }

func (t *Table) Len() int          { return len(t.list) }
func (t *Table) All() []*Material { return t.list }

// Animate avança os materiais animados (a rolagem da água).
func (t *Table) Animate(dt float32) {
	for _, m := range t.list {
		if m.Animated() {
			m.animate(dt)
		}
	}
}

// UpdateConstants copia os materiais sujos para o slot corrente do anel e devolve quantos copiou.
func (t *Table) UpdateConstants(res *frame.Resource) (int, error) {
	var buf [cbuffer.MaterialConstantsSize]byte
	copies := 0
	for _, m := range t.list {
		if !m.Dirty.Pending() {
			continue
		}
		c := m.Constants()
		if err := c.MarshalTo(buf[:]); err != nil {
			return copies, err
		}
		if err := res.MaterialCB.CopyData(m.CBIndex, buf[:]); err != nil {
			return copies, fmt.Errorf("material %q: %w", m.Name, err)
		}
		m.Dirty.Consume()
		copies++
	}
	return copies, nil
}
