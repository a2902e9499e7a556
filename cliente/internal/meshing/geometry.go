package meshing

import (
	"github.com/go-gl/mathgl/mgl32"
)

// MaxSubdivisions limita a subdivisão do cubo (cada nível multiplica os triângulos por 4).
const MaxSubdivisions = 6

// Vertex é o formato de vértice usado por todos os shaders: posição, normal e UV.
type Vertex struct {
	Pos    mgl32.Vec3
	Normal mgl32.Vec3
	TexC   mgl32.Vec2
}

// VertexStride é o tamanho em bytes de Vertex no vertex buffer.
const VertexStride = 8 * 4

// MeshData contém a malha em memória da CPU, antes do upload.
type MeshData struct {
	Vertices []Vertex
	Indices  []uint32
}

// Fits16 indica se os índices cabem em uint16.
func (m *MeshData) Fits16() bool {
	return len(m.Vertices) <= 0xFFFF
}

// Indices16 converte os índices para uint16. Só é válido quando Fits16.
func (m *MeshData) Indices16() []uint16 {
	out := make([]uint16, len(m.Indices))
	for i, idx := range m.Indices {
		out[i] = uint16(idx)
	}
	return out
}

// addFace adiciona um quad (v0..v3 em sentido horário visto de fora) como dois triângulos.
func (m *MeshData) addFace(v0, v1, v2, v3 Vertex) {
	base := uint32(len(m.Vertices))
	m.Vertices = append(m.Vertices, v0, v1, v2, v3)
	m.Indices = append(m.Indices,
		base, base+1, base+2,
		base, base+2, base+3,
	)
}

func vtx(px, py, pz, nx, ny, nz, u, v float32) Vertex {
	return Vertex{Pos: mgl32.Vec3{px, py, pz}, Normal: mgl32.Vec3{nx, ny, nz}, TexC: mgl32.Vec2{u, v}}
}

// CreateBox gera uma caixa centrada na origem com 24 vértices (normais e UVs por face).
// subdivisions é limitado a [0, MaxSubdivisions].
func CreateBox(width, height, depth float32, subdivisions int) MeshData {
	w2, h2, d2 := 0.5*width, 0.5*height, 0.5*depth

	var m MeshData
	m.Vertices = make([]Vertex, 0, 24)
	m.Indices = make([]uint32, 0, 36)

	// Frente (-Z)
	m.addFace(
		vtx(-w2, -h2, -d2, 0, 0, -1, 0, 1),
		vtx(-w2, +h2, -d2, 0, 0, -1, 0, 0),
		vtx(+w2, +h2, -d2, 0, 0, -1, 1, 0),
		vtx(+w2, -h2, -d2, 0, 0, -1, 1, 1),
	)
	// Trás (+Z)
	m.addFace(
		vtx(-w2, -h2, +d2, 0, 0, 1, 1, 1),
		vtx(+w2, -h2, +d2, 0, 0, 1, 0, 1),
		vtx(+w2, +h2, +d2, 0, 0, 1, 0, 0),
		vtx(-w2, +h2, +d2, 0, 0, 1, 1, 0),
	)
	// Topo
	m.addFace(
		vtx(-w2, +h2, -d2, 0, 1, 0, 0, 1),
		vtx(-w2, +h2, +d2, 0, 1, 0, 0, 0),
		vtx(+w2, +h2, +d2, 0, 1, 0, 1, 0),
		vtx(+w2, +h2, -d2, 0, 1, 0, 1, 1),
	)
	// Base
	m.addFace(
		vtx(-w2, -h2, -d2, 0, -1, 0, 1, 1),
		vtx(+w2, -h2, -d2, 0, -1, 0, 0, 1),
		vtx(+w2, -h2, +d2, 0, -1, 0, 0, 0),
		vtx(-w2, -h2, +d2, 0, -1, 0, 1, 0),
	)
	// Esquerda (-X)
	m.addFace(
		vtx(-w2, -h2, +d2, -1, 0, 0, 0, 1),
		vtx(-w2, +h2, +d2, -1, 0, 0, 0, 0),
		vtx(-w2, +h2, -d2, -1, 0, 0, 1, 0),
		vtx(-w2, -h2, -d2, -1, 0, 0, 1, 1),
	)
	// Direita (+X)
	m.addFace(
		vtx(+w2, -h2, -d2, 1, 0, 0, 0, 1),
		vtx(+w2, +h2, -d2, 1, 0, 0, 0, 0),
		vtx(+w2, +h2, +d2, 1, 0, 0, 1, 0),
		vtx(+w2, -h2, +d2, 1, 0, 0, 1, 1),
	)

	if subdivisions < 0 {
		subdivisions = 0
	}
	if subdivisions > MaxSubdivisions {
		subdivisions = MaxSubdivisions
	}
	for i := 0; i < subdivisions; i++ {
		m = subdivide(m)
	}
	return m
}

// subdivide divide cada triângulo em quatro pelos pontos médios das arestas.
//
//	      v1
//	      *
//	     / \
//	 m0 *---* m1
//	   / \ / \
//	v0 *--*--* v2
//	      m2
func subdivide(in MeshData) MeshData {
	tris := len(in.Indices) / 3
	out := MeshData{
		Vertices: make([]Vertex, 0, tris*6),
		Indices:  make([]uint32, 0, tris*12),
	}

	for t := 0; t < tris; t++ {
		v0 := in.Vertices[in.Indices[t*3]]
		v1 := in.Vertices[in.Indices[t*3+1]]
		v2 := in.Vertices[in.Indices[t*3+2]]

		m0 := midpoint(v0, v1)
		m1 := midpoint(v1, v2)
		m2 := midpoint(v0, v2)

		base := uint32(len(out.Vertices))
		out.Vertices = append(out.Vertices, v0, v1, v2, m0, m1, m2)
		out.Indices = append(out.Indices,
			base+0, base+3, base+5,
			base+3, base+4, base+5,
			base+5, base+4, base+2,
			base+3, base+1, base+4,
		)
	}
	return out
}

func midpoint(a, b Vertex) Vertex {
	return Vertex{
		Pos:    a.Pos.Add(b.Pos).Mul(0.5),
		Normal: a.Normal.Add(b.Normal).Normalize(),
		TexC:   a.TexC.Add(b.TexC).Mul(0.5),
	}
}
