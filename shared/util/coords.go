package util

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// GridCoord representa uma célula do grid de voxels.
// X = leste/oeste, Y = altura (camada), Z = norte/sul
type GridCoord struct {
	X, Y, Z int32
}

// NewGridCoord cria uma nova coordenada de grid.
func NewGridCoord(x, y, z int32) GridCoord {
	return GridCoord{X: x, Y: y, Z: z}
}

// Add soma duas coordenadas.
func (c GridCoord) Add(other GridCoord) GridCoord {
	return GridCoord{
		X: c.X + other.X,
		Y: c.Y + other.Y,
		Z: c.Z + other.Z,
	}
}

// String retorna a representação em string da coordenada.
func (c GridCoord) String() string {
	return fmt.Sprintf("(%d, %d, %d)", c.X, c.Y, c.Z)
}

// GameScale controla a escala de conversão grid → 3D (um bloco = uma unidade).
const GameScale float32 = 1.0

// GridToWorldPos converte a célula para a posição 3D do centro do cubo unitário.
func GridToWorldPos(c GridCoord) mgl32.Vec3 {
	return mgl32.Vec3{
		float32(c.X) * GameScale,
		float32(c.Y) * GameScale,
		float32(c.Z) * GameScale,
	}
}

// WorldToGridCoord faz o caminho inverso de GridToWorldPos (arredondando ao centro).
func WorldToGridCoord(pos mgl32.Vec3) GridCoord {
	return GridCoord{
		X: roundToInt32(pos.X() / GameScale),
		Y: roundToInt32(pos.Y() / GameScale),
		Z: roundToInt32(pos.Z() / GameScale),
	}
}

func roundToInt32(v float32) int32 {
	if v < 0 {
		return int32(v - 0.5)
	}
	return int32(v + 0.5)
}

// ColumnCoord identifica uma coluna vertical do mundo.
type ColumnCoord struct {
	X, Z int32
}

func (c ColumnCoord) String() string {
	return fmt.Sprintf("(%d, %d)", c.X, c.Z)
}

// GridRect é um retângulo alinhado aos eixos no plano XZ, com limites inclusivos.
type GridRect struct {
	MinX, MinZ int32
	MaxX, MaxZ int32
}

// NewGridRect monta um retângulo a partir de um ponto e dos deslocamentos (inclusivos) em volta dele.
func NewGridRect(x, z, left, right, back, front int32) GridRect {
	return GridRect{MinX: x - left, MaxX: x + right, MinZ: z - back, MaxZ: z + front}
}

// Contains verifica se a coluna está dentro do retângulo.
func (r GridRect) Contains(x, z int32) bool {
	return x >= r.MinX && x <= r.MaxX && z >= r.MinZ && z <= r.MaxZ
}

// Overlaps verifica se dois retângulos compartilham pelo menos uma célula.
func (r GridRect) Overlaps(o GridRect) bool {
	return r.MinX <= o.MaxX && o.MinX <= r.MaxX && r.MinZ <= o.MaxZ && o.MinZ <= r.MaxZ
}

// Width retorna o número de células no eixo X.
func (r GridRect) Width() int32 { return r.MaxX - r.MinX + 1 }

// Depth retorna o número de células no eixo Z.
func (r GridRect) Depth() int32 { return r.MaxZ - r.MinZ + 1 }

func (r GridRect) String() string {
	return fmt.Sprintf("[%d..%d]x[%d..%d]", r.MinX, r.MaxX, r.MinZ, r.MaxZ)
}
