package camera

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Valores padrão da câmera em primeira pessoa.
const (
	DefaultFovY        = 0.25 * math.Pi
	DefaultNear        = 1.0
	DefaultFar         = 1000.0
	DefaultMoveSpeed   = 10.0                 // unidades por segundo
	DefaultSensitivity = 0.25 * math.Pi / 180 // radianos por pixel
)

// maxPitch limita a inclinação do olhar para não virar a câmera de ponta cabeça.
var maxPitch = float32(math.Sin(89 * math.Pi / 180))

var worldUp = mgl32.Vec3{0, 1, 0}

// Camera é uma câmera em primeira pessoa com base ortonormal (right, up, look), em
// coordenadas destras: olhar para frente é -Z da view.
type Camera struct {
	position mgl32.Vec3
	right    mgl32.Vec3
	up       mgl32.Vec3
	look     mgl32.Vec3

	fovY, aspect float32
	nearZ, farZ  float32

	view      mgl32.Mat4
	proj      mgl32.Mat4
	viewDirty bool

	MoveSpeed   float32
	Sensitivity float32
}

// New cria a câmera na origem olhando para -Z, com a lente padrão e aspecto 1.
func New() *Camera {
	c := &Camera{
		right:       mgl32.Vec3{1, 0, 0},
		up:          worldUp,
		look:        mgl32.Vec3{0, 0, -1},
		view:        mgl32.Ident4(),
		viewDirty:   true,
		MoveSpeed:   DefaultMoveSpeed,
		Sensitivity: DefaultSensitivity,
	}
	c.SetLens(DefaultFovY, 1, DefaultNear, DefaultFar)
	return c
}

// SetLens recalcula a projeção. Chamado de novo quando a janela muda de tamanho.
func (c *Camera) SetLens(fovY, aspect, zn, zf float32) {
	if aspect <= 0 {
		aspect = 1
	}
	c.fovY, c.aspect, c.nearZ, c.farZ = fovY, aspect, zn, zf
	c.proj = mgl32.Perspective(fovY, aspect, zn, zf)
}

// SetAspect mantém a lente e troca só a proporção.
func (c *Camera) SetAspect(aspect float32) {
	c.SetLens(c.fovY, aspect, c.nearZ, c.farZ)
}

func (c *Camera) SetPosition(p mgl32.Vec3) {
	c.position = p
	c.viewDirty = true
}

// LookAt posiciona a câmera em pos olhando para target.
func (c *Camera) LookAt(pos, target, up mgl32.Vec3) {
	look := target.Sub(pos).Normalize()
	right := look.Cross(up).Normalize()
	c.position = pos
	c.look = look
	c.right = right
	c.up = right.Cross(look)
	c.viewDirty = true
}

// Walk anda d unidades na direção do olhar.
func (c *Camera) Walk(d float32) {
	c.position = c.position.Add(c.look.Mul(d))
	c.viewDirty = true
}

// Strafe anda d unidades para a direita.
func (c *Camera) Strafe(d float32) {
	c.position = c.position.Add(c.right.Mul(d))
	c.viewDirty = true
}

// Pitch inclina o olhar em torno do eixo right. Ângulo positivo olha para baixo.
func (c *Camera) Pitch(angle float32) {
	q := mgl32.QuatRotate(-angle, c.right)
	look, up := q.Rotate(c.look), q.Rotate(c.up)
	if look.Y() > maxPitch || look.Y() < -maxPitch || up.Y() <= 0 {
		return
	}
	c.look = look
	c.up = up
	c.viewDirty = true
}

// RotateY gira a câmera em torno do Y do mundo. Ângulo positivo vira para a direita.
func (c *Camera) RotateY(angle float32) {
	q := mgl32.QuatRotate(-angle, worldUp)
	c.right = q.Rotate(c.right)
	c.up = q.Rotate(c.up)
	c.look = q.Rotate(c.look)
	c.viewDirty = true
}

// Look aplica um delta do mouse em pixels.
func (c *Camera) Look(dx, dy float32) {
	if dx == 0 && dy == 0 {
		return
	}
	c.Pitch(dy * c.Sensitivity)
	c.RotateY(dx * c.Sensitivity)
}

// Move aplica o teclado: forward/strafe em -1, 0 ou 1 por eixo, escalados por MoveSpeed*dt.
func (c *Camera) Move(forward, strafe, dt float32) {
	step := c.MoveSpeed * dt
	if forward != 0 {
		c.Walk(forward * step)
	}
	if strafe != 0 {
		c.Strafe(strafe * step)
	}
}

// UpdateViewMatrix reortonormaliza a base e reconstrói a view se algo mudou.
func (c *Camera) UpdateViewMatrix() {
	if !c.viewDirty {
		return
	}
	c.look = c.look.Normalize()
	c.up = c.right.Cross(c.look).Normalize()
	c.right = c.look.Cross(c.up)

	c.view = mgl32.LookAtV(c.position, c.position.Add(c.look), c.up)
	c.viewDirty = false
}

// View devolve a view atualizada.
func (c *Camera) View() mgl32.Mat4 {
	c.UpdateViewMatrix()
	return c.view
}

func (c *Camera) Proj() mgl32.Mat4 { return c.proj }

func (c *Camera) Position() mgl32.Vec3 { return c.position }
func (c *Camera) LookDir() mgl32.Vec3 { return c.look }
func (c *Camera) Right() mgl32.Vec3 { return c.right }
func (c *Camera) Up() mgl32.Vec3 { return c.up }
func (c *Camera) NearZ() float32 { return c.nearZ }
func (c *Camera) FarZ() float32 { return c.farZ }
func (c *Camera) Aspect() float32 { return c.aspect }
