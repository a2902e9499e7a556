package meshing

import (
	"encoding/binary"
	"fmt"
	"log"
	"math"
	"sync"

	"VoxelTerrain/cliente/internal/gpu"
)

// BoxSubmesh é o nome da sub-malha do cubo.
const BoxSubmesh = "box"

// Submesh é um intervalo de desenho dentro dos buffers compartilhados.
type Submesh struct {
	IndexCount uint32
	StartIndex uint32
	BaseVertex int32
}

// DrawArgs converte a sub-malha nos argumentos do DrawIndexed.
func (s Submesh) DrawArgs() gpu.DrawArgs {
	return gpu.DrawArgs{IndexCount: s.IndexCount, StartIndex: s.StartIndex, BaseVertex: s.BaseVertex}
}

// MeshGeometry agrupa os vertex/index buffers (cópia da CPU e recurso de GPU) e as sub-malhas.
// É imutável depois de criado.
type MeshGeometry struct {
	Name string

	VertexBufferCPU []byte
	IndexBufferCPU  []byte
	VertexBufferGPU *gpu.Buffer
	IndexBufferGPU  *gpu.Buffer

	VertexByteStride int
	IndexFormat      gpu.IndexFormat

	DrawArgs map[string]Submesh
}

// VertexBufferView descreve o vertex buffer para o input assembler.
func (g *MeshGeometry) VertexBufferView() gpu.VertexBufferView {
	return gpu.VertexBufferView{Buffer: g.VertexBufferGPU, Stride: g.VertexByteStride, Size: len(g.VertexBufferCPU)}
}

// IndexBufferView descreve o index buffer.
func (g *MeshGeometry) IndexBufferView() gpu.IndexBufferView {
	return gpu.IndexBufferView{Buffer: g.IndexBufferGPU, Format: g.IndexFormat, Size: len(g.IndexBufferCPU)}
}

// EncodeVertices serializa os vértices no layout de VertexStride.
func EncodeVertices(vs []Vertex) []byte {
	out := make([]byte, len(vs)*VertexStride)
	for i, v := range vs {
		o := out[i*VertexStride:]
		floats := [8]float32{v.Pos[0], v.Pos[1], v.Pos[2], v.Normal[0], v.Normal[1], v.Normal[2], v.TexC[0], v.TexC[1]}
		for k, f := range floats {
			binary.LittleEndian.PutUint32(o[k*4:], math.Float32bits(f))
		}
	}
	return out
}

// EncodeIndices serializa os índices em uint16 quando cabem, senão em uint32.
func EncodeIndices(m *MeshData) ([]byte, gpu.IndexFormat) {
	if m.Fits16() {
		out := make([]byte, len(m.Indices)*2)
		for i, idx := range m.Indices16() {
			binary.LittleEndian.PutUint16(out[i*2:], idx)
		}
		return out, gpu.IndexUint16
	}
	out := make([]byte, len(m.Indices)*4)
	for i, idx := range m.Indices {
		binary.LittleEndian.PutUint32(out[i*4:], idx)
	}
	return out, gpu.IndexUint32
}

// BuildBoxGeometry cria o cubo unitário compartilhado por todos os blocos e faz o upload.
func BuildBoxGeometry(dev gpu.Device, subdivisions int) (*MeshGeometry, error) {
	box := CreateBox(1, 1, 1, subdivisions)

	vb := EncodeVertices(box.Vertices)
	ib, format := EncodeIndices(&box)

	geo := &MeshGeometry{
		Name:             "boxGeo",
		VertexBufferCPU:  vb,
		IndexBufferCPU:   ib,
		VertexByteStride: VertexStride,
		IndexFormat:      format,
		DrawArgs: map[string]Submesh{
			BoxSubmesh: {IndexCount: uint32(len(box.Indices))},
		},
	}

	var err error
	if geo.VertexBufferGPU, err = dev.CreateDefaultBuffer("boxGeo.vb", vb); err != nil {
		return nil, fmt.Errorf("vertex buffer do cubo: %w", err)
	}
	if geo.IndexBufferGPU, err = dev.CreateDefaultBuffer("boxGeo.ib", ib); err != nil {
		dev.ReleaseBuffer(geo.VertexBufferGPU)
		return nil, fmt.Errorf("index buffer do cubo: %w", err)
	}

	log.Printf("[Meshing] Cubo criado: %d vértices, %d índices (%d subdivisões)",
		len(box.Vertices), len(box.Indices), subdivisions)
	return geo, nil
}

// Cache guarda as geometrias por nome.
type Cache struct {
	mu    sync.RWMutex
	geoms map[string]*MeshGeometry
}

// NewCache cria um cache vazio.
func NewCache() *Cache {
	return &Cache{geoms: make(map[string]*MeshGeometry)}
}

// Get retorna a geometria name, se existir.
func (c *Cache) Get(name string) (*MeshGeometry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	g, ok := c.geoms[name]
	return g, ok
}

// Store registra a geometria pelo nome.
func (c *Cache) Store(g *MeshGeometry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.geoms[g.Name] = g
}

// Len retorna o número de geometrias.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.geoms)
}

// Release libera os buffers de GPU. Só deve ser chamado depois do flush da fila.
func (c *Cache) Release(dev gpu.Device) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for name, g := range c.geoms {
		dev.ReleaseBuffer(g.VertexBufferGPU)
		dev.ReleaseBuffer(g.IndexBufferGPU)
		delete(c.geoms, name)
	}
}
