package materials

import (
	"fmt"
	"log"

	"VoxelTerrain/cliente/internal/assets"
	"VoxelTerrain/cliente/internal/gpu"
)

// TextureTable guarda as texturas carregadas e a tabela de descritores paralela:
// a textura i ocupa o slot i.
type TextureTable struct {
	textures    []gpu.Texture
	names       map[string]int
	descriptors *gpu.DescriptorTable
}

// LoadTextures percorre a lista ordenada do manifesto, carrega cada arquivo e o grava no
// slot correspondente da tabela de descritores.
func LoadTextures(dev gpu.Device, mgr *assets.Manager) (*TextureTable, error) {
	entries := mgr.Textures()
	table, err := dev.CreateDescriptorTable(len(entries))
	if err != nil {
		return nil, fmt.Errorf("tabela de descritores: %w", err)
	}

	tt := &TextureTable{
		textures:    make([]gpu.Texture, len(entries)),
		names:       make(map[string]int, len(entries)),
		descriptors: table,
	}
	loader := dev.TextureLoader()
	for slot, e := range entries {
		sampler, err := gpu.ParseSampler(e.Filter, e.Wrap)
		if err != nil {
			return nil, fmt.Errorf("textura %q: %w", e.Name, err)
		}
		tex, err := loader.LoadTexture(e.Name, mgr.TexturePath(e), sampler)
		if err != nil {
			return nil, fmt.Errorf("textura %q: %w", e.Name, err)
		}
		if err := table.Set(slot, tex); err != nil {
			return nil, err
		}
		tt.textures[slot] = tex
		tt.names[e.Name] = slot
	}

	log.Printf("[Materials] %d texturas na tabela de descritores", len(entries))
	return tt, nil
}

// Handle devolve o handle de GPU do slot: início da tabela + slot * incremento.
func (t *TextureTable) Handle(slot int) gpu.DescriptorHandle {
	return t.descriptors.Handle(slot)
}

// Descriptors é a tabela ligada ao root slot de textura.
func (t *TextureTable) Descriptors() *gpu.DescriptorTable { return t.descriptors }

// Get retorna a textura name.
func (t *TextureTable) Get(name string) (gpu.Texture, bool) {
	i, ok := t.names[name]
	if !ok {
		return nil, false
	}
	return t.textures[i], true
}

func (t *TextureTable) Len() int { return len(t.textures) }
