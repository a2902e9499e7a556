package meshing

import (
	"testing"

	"VoxelTerrain/cliente/internal/gpu"
	"VoxelTerrain/cliente/internal/gpu/headless"
)

func TestCreateBoxCounts(t *testing.T) {
	tests := []struct {
		subdivisions int
		vertices     int
		indices      int
	}{
		{0, 24, 36},
		{1, 72, 144},
		{2, 288, 576},
		{-3, 24, 36},
		{99, 6 * 12 * 1024, 36 * 4096},
	}
	for _, tt := range tests {
		m := CreateBox(1, 1, 1, tt.subdivisions)
		if len(m.Vertices) != tt.vertices || len(m.Indices) != tt.indices {
			t.Errorf("CreateBox(subdiv=%d): %d vértices / %d índices, want %d / %d",
				tt.subdivisions, len(m.Vertices), len(m.Indices), tt.vertices, tt.indices)
		}
	}
}

func TestCreateBoxBounds(t *testing.T) {
	m := CreateBox(2, 4, 6, 1)
	for i, v := range m.Vertices {
		if abs(v.Pos[0]) > 1 || abs(v.Pos[1]) > 2 || abs(v.Pos[2]) > 3 {
			t.Fatalf("vértice %d fora da caixa: %v", i, v.Pos)
		}
		if l := v.Normal.Len(); l < 0.999 || l > 1.001 {
			t.Fatalf("vértice %d com normal não unitária: %v", i, v.Normal)
		}
	}
	for i, idx := range m.Indices {
		if int(idx) >= len(m.Vertices) {
			t.Fatalf("índice %d = %d, só há %d vértices", i, idx, len(m.Vertices))
		}
	}
}

func abs(f float32) float32 {
	if f < 0 {
		return -f
	}
	return f
}

func TestEncodeIndicesFormat(t *testing.T) {
	small := CreateBox(1, 1, 1, 0)
	b, f := EncodeIndices(&small)
	if f != gpu.IndexUint16 || len(b) != 36*2 {
		t.Errorf("cubo simples: formato %v, %d bytes", f, len(b))
	}

	big := CreateBox(1, 1, 1, MaxSubdivisions)
	b, f = EncodeIndices(&big)
	if f != gpu.IndexUint32 || len(b) != len(big.Indices)*4 {
		t.Errorf("cubo subdividido: formato %v, %d bytes", f, len(b))
	}
}

func TestBuildBoxGeometry(t *testing.T) {
	dev := headless.New(headless.Options{})
	defer dev.Close()

	geo, err := BuildBoxGeometry(dev, 0)
	if err != nil {
		t.Fatal(err)
	}

	sub, ok := geo.DrawArgs[BoxSubmesh]
	if !ok {
		t.Fatalf("sub-malha %q ausente", BoxSubmesh)
	}
	if sub.IndexCount != 36 || sub.StartIndex != 0 || sub.BaseVertex != 0 {
		t.Errorf("sub-malha = %+v", sub)
	}

	vbv := geo.VertexBufferView()
	if vbv.Stride != VertexStride || vbv.Size != 24*VertexStride {
		t.Errorf("vertex view = stride %d size %d", vbv.Stride, vbv.Size)
	}
	if vbv.Buffer.Heap() != gpu.HeapDefault {
		t.Errorf("vertex buffer no heap %s", vbv.Buffer.Heap())
	}

	cache := NewCache()
	cache.Store(geo)
	if g, ok := cache.Get("boxGeo"); !ok || g != geo {
		t.Errorf("cache não devolveu a geometria")
	}

	live := dev.Space.Live()
	cache.Release(dev)
	if cache.Len() != 0 || dev.Space.Live() != live-2 {
		t.Errorf("Release: %d geometrias, %d buffers vivos", cache.Len(), dev.Space.Live())
	}
}
