package headless

import (
	"fmt"
	"image"
	_ "image/png"
	"io/fs"

	"VoxelTerrain/cliente/internal/gpu"
)

// TextureLoader lê texturas de um fs.FS. Sem FS, devolve texturas 1x1 sintéticas.
type TextureLoader struct {
	fsys fs.FS
}

type texture struct {
	name          string
	width, height int
	sampler       gpu.Sampler
}

func (t *texture) Name() string { return t.name }
func (t *texture) Width() int   { return t.width }
func (t *texture) Height() int  { return t.height }

// LoadTexture abre path e lê as dimensões quando o formato é reconhecido.
func (l *TextureLoader) LoadTexture(name, path string, sampler gpu.Sampler) (gpu.Texture, error) {
	if l.fsys == nil {
		return &texture{name: name, width: 1, height: 1, sampler: sampler}, nil
	}

	f, err := l.fsys.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", gpu.ErrTextureLoad, path, err)
	}
	defer f.Close()

	tex := &texture{name: name, width: 1, height: 1, sampler: sampler}
	if cfg, _, err := image.DecodeConfig(f); err == nil {
		tex.width, tex.height = cfg.Width, cfg.Height
	}
	return tex, nil
}
