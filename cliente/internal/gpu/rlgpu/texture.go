package rlgpu

import (
	"fmt"
	"log"

	"VoxelTerrain/cliente/internal/gpu"

	rl "github.com/gen2brain/raylib-go/raylib"
)

type texture struct {
	name string
	tex  rl.Texture2D
}

func (t *texture) Name() string { return t.name }
func (t *texture) Width() int   { return int(t.tex.Width) }
func (t *texture) Height() int  { return int(t.tex.Height) }

// TextureLoader carrega texturas do disco com mipmaps e aplica o sampler pedido.
type TextureLoader struct {
	loaded []*texture
}

func (l *TextureLoader) LoadTexture(name, path string, sampler gpu.Sampler) (gpu.Texture, error) {
	tex := rl.LoadTexture(path)
	if tex.ID == 0 {
		return nil, fmt.Errorf("%w: %s", gpu.ErrTextureLoad, path)
	}
	rl.GenTextureMipmaps(&tex)

	switch sampler.Filter {
	case gpu.FilterPoint:
		rl.SetTextureFilter(tex, rl.FilterPoint)
	case gpu.FilterLinear:
		rl.SetTextureFilter(tex, rl.FilterBilinear)
	case gpu.FilterAnisotropic:
		rl.SetTextureFilter(tex, rl.FilterAnisotropic16x)
	default:
		rl.SetTextureFilter(tex, rl.FilterTrilinear)
	}
	if sampler.Wrap == gpu.AddressClamp {
		rl.SetTextureWrap(tex, rl.WrapClamp)
	} else {
		rl.SetTextureWrap(tex, rl.WrapRepeat)
	}

	t := &texture{name: name, tex: tex}
	l.loaded = append(l.loaded, t)
	log.Printf("[GPU] Textura carregada: %s (%dx%d)", path, tex.Width, tex.Height)
	return t, nil
}

func (l *TextureLoader) unloadAll() {
	for _, t := range l.loaded {
		rl.UnloadTexture(t.tex)
	}
	l.loaded = nil
}
