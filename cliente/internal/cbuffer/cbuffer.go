// Package cbuffer define o layout binário dos constant buffers compartilhado entre o
// motor (que escreve) e os shaders/backends (que leem).
//
// Todos os campos são float32 little-endian. Matrizes são gravadas na ordem de coluna
// do mgl32, que é a ordem esperada pelo GLSL; não há transposição extra.
package cbuffer

import (
	"encoding/binary"
	"fmt"
	"math"

	"VoxelTerrain/cliente/internal/gpu"

	"github.com/go-gl/mathgl/mgl32"
)

// Parâmetros da root signature.
const (
	RootSlotTexture  = 0 // Tabela SRV com a textura difusa (t0)
	RootSlotObject   = 1 // b0
	RootSlotPass     = 2 // b1
	RootSlotMaterial = 3 // b2
)

// Nomes dos uniforms nos shaders GLSL.
const (
	UniformTexTransform   = "gTexTransform"
	UniformMatTransform   = "gMatTransform"
	UniformDiffuseAlbedo  = "gDiffuseAlbedo"
	UniformFresnelR0      = "gFresnelR0"
	UniformRoughness      = "gRoughness"
	UniformAmbientLight   = "gAmbientLight"
	UniformEyePosW        = "gEyePosW"
	UniformLightDirection = "gLightDirection"
	UniformLightStrength  = "gLightStrength"
	UniformFogColor       = "gFogColor"
	UniformFogStart       = "gFogStart"
	UniformFogRange       = "gFogRange"
)

// MaxLights é o tamanho fixo do array de luzes nas pass constants.
const MaxLights = 16

// Tamanhos em bytes de cada registro, antes do alinhamento.
const (
	ObjectConstantsSize   = 2 * 64
	MaterialConstantsSize = 16 + 12 + 4 + 64
	LightSize             = 12 + 4 + 12 + 4 + 12 + 4
	PassConstantsSize     = 6*64 + 16 + 16 + 16 + 16 + 16 + 16 + MaxLights*LightSize
)

// Strides alinhados ao mínimo de constant buffer da plataforma.
var (
	ObjectStride   = gpu.AlignConstantBufferSize(ObjectConstantsSize)
	MaterialStride = gpu.AlignConstantBufferSize(MaterialConstantsSize)
	PassStride     = gpu.AlignConstantBufferSize(PassConstantsSize)
)

// ErrShortBuffer é retornado quando o destino/origem é menor que o registro.
var ErrShortBuffer = fmt.Errorf("cbuffer: buffer menor que o registro")

// ObjectConstants (b0).
type ObjectConstants struct {
	World        mgl32.Mat4
	TexTransform mgl32.Mat4
}

// MaterialConstants (b2).
type MaterialConstants struct {
	DiffuseAlbedo mgl32.Vec4
	FresnelR0     mgl32.Vec3
	Roughness     float32
	MatTransform  mgl32.Mat4
}

// Light descreve uma luz direcional, pontual ou spot. Só a direcional é usada.
type Light struct {
	Strength     mgl32.Vec3
	FalloffStart float32
	Direction    mgl32.Vec3
	FalloffEnd   float32
	Position     mgl32.Vec3
	SpotPower    float32
}

// PassConstants (b1) é reconstruído por completo a cada frame.
type PassConstants struct {
	View        mgl32.Mat4
	InvView     mgl32.Mat4
	Proj        mgl32.Mat4
	InvProj     mgl32.Mat4
	ViewProj    mgl32.Mat4
	InvViewProj mgl32.Mat4

	EyePosW             mgl32.Vec3
	RenderTargetSize    mgl32.Vec2
	InvRenderTargetSize mgl32.Vec2
	NearZ               float32
	FarZ                float32
	TotalTime           float32
	DeltaTime           float32

	AmbientLight mgl32.Vec4
	FogColor     mgl32.Vec4
	FogStart     float32
	FogRange     float32

	Lights [MaxLights]Light
}

// DefaultObjectConstants devolve identidades, como o construtor do registro.
func DefaultObjectConstants() ObjectConstants {
	return ObjectConstants{World: mgl32.Ident4(), TexTransform: mgl32.Ident4()}
}

// DefaultPassConstants tem as matrizes em identidade e a luz 0 apontando para baixo.
func DefaultPassConstants() PassConstants {
	p := PassConstants{
		View: mgl32.Ident4(), InvView: mgl32.Ident4(),
		Proj: mgl32.Ident4(), InvProj: mgl32.Ident4(),
		ViewProj: mgl32.Ident4(), InvViewProj: mgl32.Ident4(),
		AmbientLight: mgl32.Vec4{0, 0, 0, 1},
		FogColor:     mgl32.Vec4{0.7, 0.7, 0.7, 1},
		FogStart:     5,
		FogRange:     150,
	}
	for i := range p.Lights {
		p.Lights[i] = Light{FalloffStart: 1, Direction: mgl32.Vec3{0, -1, 0}, FalloffEnd: 10, SpotPower: 64}
	}
	return p
}

// writer grava floats sequencialmente.
type writer struct {
	buf []byte
	off int
}

func (w *writer) f(v float32) {
	binary.LittleEndian.PutUint32(w.buf[w.off:], math.Float32bits(v))
	w.off += 4
}

func (w *writer) vec(v ...float32) {
	for _, x := range v {
		w.f(x)
	}
}

func (w *writer) mat(m mgl32.Mat4) { w.vec(m[:]...) }

type reader struct {
	buf []byte
	off int
}

func (r *reader) f() float32 {
	v := math.Float32frombits(binary.LittleEndian.Uint32(r.buf[r.off:]))
	r.off += 4
	return v
}

func (r *reader) vec3() mgl32.Vec3 { return mgl32.Vec3{r.f(), r.f(), r.f()} }
func (r *reader) vec4() mgl32.Vec4 { return mgl32.Vec4{r.f(), r.f(), r.f(), r.f()} }

func (r *reader) mat() mgl32.Mat4 {
	var m mgl32.Mat4
	for i := range m {
		m[i] = r.f()
	}
	return m
}

func (c *ObjectConstants) MarshalTo(dst []byte) error {
	if len(dst) < ObjectConstantsSize {
		return ErrShortBuffer
	}
	w := writer{buf: dst}
	w.mat(c.World)
	w.mat(c.TexTransform)
	return nil
}

// MarshalBinary devolve o registro com o tamanho alinhado.
func (c *ObjectConstants) MarshalBinary() ([]byte, error) {
	b := make([]byte, ObjectStride)
	return b, c.MarshalTo(b)
}

func (c *ObjectConstants) UnmarshalBinary(src []byte) error {
	if len(src) < ObjectConstantsSize {
		return ErrShortBuffer
	}
	r := reader{buf: src}
	c.World = r.mat()
	c.TexTransform = r.mat()
	return nil
}

func (c *MaterialConstants) MarshalTo(dst []byte) error {
	if len(dst) < MaterialConstantsSize {
		return ErrShortBuffer
	}
	w := writer{buf: dst}
	w.vec(c.DiffuseAlbedo[:]...)
	w.vec(c.FresnelR0[:]...)
	w.f(c.Roughness)
	w.mat(c.MatTransform)
	return nil
}

func (c *MaterialConstants) MarshalBinary() ([]byte, error) {
	b := make([]byte, MaterialStride)
	return b, c.MarshalTo(b)
}

func (c *MaterialConstants) UnmarshalBinary(src []byte) error {
	if len(src) < MaterialConstantsSize {
		return ErrShortBuffer
	}
	r := reader{buf: src}
	c.DiffuseAlbedo = r.vec4()
	c.FresnelR0 = r.vec3()
	c.Roughness = r.f()
	c.MatTransform = r.mat()
	return nil
}

func (c *PassConstants) MarshalTo(dst []byte) error {
	if len(dst) < PassConstantsSize {
		return ErrShortBuffer
	}
	w := writer{buf: dst}
	w.mat(c.View)
	w.mat(c.InvView)
	w.mat(c.Proj)
	w.mat(c.InvProj)
	w.mat(c.ViewProj)
	w.mat(c.InvViewProj)
	w.vec(c.EyePosW[:]...)
	w.f(0) // padding
	w.vec(c.RenderTargetSize[:]...)
	w.vec(c.InvRenderTargetSize[:]...)
	w.vec(c.NearZ, c.FarZ, c.TotalTime, c.DeltaTime)
	w.vec(c.AmbientLight[:]...)
	w.vec(c.FogColor[:]...)
	w.vec(c.FogStart, c.FogRange, 0, 0)
	for i := range c.Lights {
		l := &c.Lights[i]
		w.vec(l.Strength[:]...)
		w.f(l.FalloffStart)
		w.vec(l.Direction[:]...)
		w.f(l.FalloffEnd)
		w.vec(l.Position[:]...)
		w.f(l.SpotPower)
	}
	return nil
}

func (c *PassConstants) MarshalBinary() ([]byte, error) {
	b := make([]byte, PassStride)
	return b, c.MarshalTo(b)
}

func (c *PassConstants) UnmarshalBinary(src []byte) error {
	if len(src) < PassConstantsSize {
		return ErrShortBuffer
	}
	r := reader{buf: src}
	c.View = r.mat()
	c.InvView = r.mat()
	c.Proj = r.mat()
	c.InvProj = r.mat()
	c.ViewProj = r.mat()
	c.InvViewProj = r.mat()
	c.EyePosW = r.vec3()
	r.f()
	c.RenderTargetSize = mgl32.Vec2{r.f(), r.f()}
	c.InvRenderTargetSize = mgl32.Vec2{r.f(), r.f()}
	c.NearZ, c.FarZ, c.TotalTime, c.DeltaTime = r.f(), r.f(), r.f(), r.f()
	c.AmbientLight = r.vec4()
	c.FogColor = r.vec4()
	c.FogStart, c.FogRange = r.f(), r.f()
	r.f()
	r.f()
	for i := range c.Lights {
		l := &c.Lights[i]
		l.Strength = r.vec3()
		l.FalloffStart = r.f()
		l.Direction = r.vec3()
		l.FalloffEnd = r.f()
		l.Position = r.vec3()
		l.SpotPower = r.f()
	}
	return nil
}
