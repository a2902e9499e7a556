package rlgpu

import (
	"fmt"
	"math"
	"unsafe"

	"VoxelTerrain/cliente/internal/cbuffer"
	"VoxelTerrain/cliente/internal/gpu"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/go-gl/mathgl/mgl32"
)

// Valores de RL_CULL_FACE_FRONT / RL_CULL_FACE_BACK do rlgl.
const (
	cullFaceFront int32 = 0
	cullFaceBack  int32 = 1
)

// Queue reproduz as listas na thread da janela.
type Queue struct {
	dev *Device
}

func (q *Queue) Execute(lists ...*gpu.CommandList) error {
	for _, l := range lists {
		cmds, done, err := gpu.BeginExecution(l)
		if err != nil {
			return err
		}
		h := &replayer{dev: q.dev}
		err = q.dev.Replay(cmds, h)
		h.finish()
		done()
		if err != nil {
			return fmt.Errorf("%w: %v", gpu.ErrDeviceLost, err)
		}
	}
	return nil
}

// Signal avança a fence imediatamente: o OpenGL já serializou o trabalho anterior.
func (q *Queue) Signal(f *gpu.Fence, value uint64) error {
	f.Signal(value)
	return nil
}

// replayer traduz comandos para chamadas raylib.
type replayer struct {
	dev      *Device
	pso      *pipeline
	in3D     bool
	lastPass unsafe.Pointer
	pass     cbuffer.PassConstants
	object   cbuffer.ObjectConstants
	material cbuffer.MaterialConstants
	blending bool
}

func (r *replayer) Barrier(resource int, before, after gpu.ResourceState) error {
	swap := r.dev.swap
	switch after {
	case gpu.StateRenderTarget:
		if swap.inFrame {
			return fmt.Errorf("%w: buffer %d já é render target", gpu.ErrInvalidBarrier, resource)
		}
		rl.BeginDrawing()
		swap.inFrame = true
	case gpu.StatePresent:
		r.end3D()
	}
	return nil
}

func (r *replayer) ClearRenderTarget(color [4]float32) {
	rl.ClearBackground(rl.NewColor(toByte(color[0]), toByte(color[1]), toByte(color[2]), toByte(color[3])))
}

// ClearDepthStencil: ClearBackground do raylib já limpa cor e profundidade.
func (r *replayer) ClearDepthStencil(depth float32, stencil uint8) {}

func (r *replayer) SetViewport(vp gpu.Viewport) {}

func (r *replayer) SetPipeline(pso gpu.PipelineState) {
	p, ok := pso.(*pipeline)
	if !ok {
		return
	}
	r.pso = p
	desc := p.desc

	if desc.Fill == gpu.FillWireframe {
		rl.EnableWireMode()
	} else {
		rl.DisableWireMode()
	}

	switch desc.Cull {
	case gpu.CullNone:
		rl.DisableBackfaceCulling()
	case gpu.CullFront:
		rl.EnableBackfaceCulling()
		rl.SetCullFace(cullFaceFront)
	default:
		rl.EnableBackfaceCulling()
		rl.SetCullFace(cullFaceBack)
	}

	if r.blending {
		rl.EndBlendMode()
		r.blending = false
	}
	if desc.Blend == gpu.BlendAlpha {
		rl.BeginBlendMode(rl.BlendAlpha)
		r.blending = true
	}
}

func (r *replayer) Draw(call *gpu.DrawCall) error {
	if r.pso == nil {
		return gpu.ErrNoPipeline
	}

	passBytes := call.Constants[cbuffer.RootSlotPass]
	if len(passBytes) == 0 {
		return fmt.Errorf("%w: pass constants não ligadas", gpu.ErrInvalidAddress)
	}
	if p := unsafe.Pointer(&passBytes[0]); p != r.lastPass || !r.in3D {
		if err := r.pass.UnmarshalBinary(passBytes); err != nil {
			return err
		}
		r.lastPass = p
		r.begin3D()
	}
	if err := r.object.UnmarshalBinary(call.Constants[cbuffer.RootSlotObject]); err != nil {
		return err
	}
	if err := r.material.UnmarshalBinary(call.Constants[cbuffer.RootSlotMaterial]); err != nil {
		return err
	}

	mesh, err := r.dev.meshFor(call)
	if err != nil {
		return err
	}

	shader := r.pso.shader
	locs := r.pso.locs
	setMat4(shader, locs.texTransform, r.object.TexTransform)
	setMat4(shader, locs.matTransform, r.material.MatTransform)
	setVec4(shader, locs.diffuseAlbedo, r.material.DiffuseAlbedo)
	setVec3(shader, locs.fresnelR0, r.material.FresnelR0)
	setFloat(shader, locs.roughness, r.material.Roughness)
	setVec4(shader, locs.ambient, r.pass.AmbientLight)
	setVec3(shader, locs.eyePos, r.pass.EyePosW)
	setVec3(shader, locs.lightDir, r.pass.Lights[0].Direction)
	setVec3(shader, locs.lightStrength, r.pass.Lights[0].Strength)
	setVec4(shader, locs.fogColor, r.pass.FogColor)
	setFloat(shader, locs.fogStart, r.pass.FogStart)
	setFloat(shader, locs.fogRange, r.pass.FogRange)

	mat := r.dev.material
	mat.Shader = shader
	if tex, ok := call.Textures[cbuffer.RootSlotTexture].(*texture); ok {
		rl.SetMaterialTexture(&mat, rl.MapDiffuse, tex.tex)
	}

	rl.DrawMesh(mesh, mat, toMatrix(r.object.World))
	return nil
}

// begin3D monta a câmera raylib a partir da view/proj das pass constants.
func (r *replayer) begin3D() {
	r.end3D()

	inv := r.pass.InvView
	eye := r.pass.EyePosW
	forward := inv.Col(2).Vec3().Mul(-1)
	up := inv.Col(1).Vec3()

	fovy := float32(45)
	if p11 := r.pass.Proj.At(1, 1); p11 != 0 {
		fovy = float32(2 * math.Atan(1/float64(p11)) * 180 / math.Pi)
	}

	rl.BeginMode3D(rl.Camera3D{
		Position:   rl.Vector3{X: eye.X(), Y: eye.Y(), Z: eye.Z()},
		Target:     rl.Vector3{X: eye.X() + forward.X(), Y: eye.Y() + forward.Y(), Z: eye.Z() + forward.Z()},
		Up:         rl.Vector3{X: up.X(), Y: up.Y(), Z: up.Z()},
		Fovy:       fovy,
		Projection: rl.CameraPerspective,
	})
	r.in3D = true
}

func (r *replayer) end3D() {
	if r.blending {
		rl.EndBlendMode()
		r.blending = false
	}
	if r.in3D {
		rl.EndMode3D()
		r.in3D = false
	}
	rl.DisableWireMode()
	rl.EnableBackfaceCulling()
	rl.SetCullFace(cullFaceBack)
}

func (r *replayer) finish() {
	r.end3D()
}

func toByte(v float32) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return uint8(v*255 + 0.5)
}

// toMatrix converte mgl32 (coluna-maior) para rl.Matrix: o campo Mi recebe m[i].
func toMatrix(m mgl32.Mat4) rl.Matrix {
	return rl.Matrix{
		M0: m[0], M4: m[4], M8: m[8], M12: m[12],
		M1: m[1], M5: m[5], M9: m[9], M13: m[13],
		M2: m[2], M6: m[6], M10: m[10], M14: m[14],
		M3: m[3], M7: m[7], M11: m[11], M15: m[15],
	}
}

func setMat4(s rl.Shader, loc int32, m mgl32.Mat4) {
	if loc >= 0 {
		rl.SetShaderValueMatrix(s, loc, toMatrix(m))
	}
}

func setVec4(s rl.Shader, loc int32, v mgl32.Vec4) {
	if loc >= 0 {
		rl.SetShaderValue(s, loc, v[:], rl.ShaderUniformVec4)
	}
}

func setVec3(s rl.Shader, loc int32, v mgl32.Vec3) {
	if loc >= 0 {
		rl.SetShaderValue(s, loc, v[:], rl.ShaderUniformVec3)
	}
}

func setFloat(s rl.Shader, loc int32, v float32) {
	if loc >= 0 {
		rl.SetShaderValue(s, loc, []float32{v}, rl.ShaderUniformFloat)
	}
}
