// Package rlgpu implementa gpu.Device sobre Raylib/OpenGL.
//
// As listas de comandos são reproduzidas na thread da janela no momento do Execute;
// o driver OpenGL executa em ordem, então Signal avança a fence logo após o replay.
package rlgpu

import (
	"errors"
	"fmt"
	"log"

	"VoxelTerrain/cliente/internal/cbuffer"
	"VoxelTerrain/cliente/internal/gpu"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// ErrNoWindow é retornado quando o dispositivo é criado antes da janela.
var ErrNoWindow = errors.New("rlgpu: janela raylib não inicializada")

// Device é o backend Raylib.
type Device struct {
	*gpu.HostResources

	queue    *Queue
	swap     *SwapChain
	loader   *TextureLoader
	material rl.Material

	pipelines []*pipeline
	meshes    map[meshKey]rl.Mesh
}

// New cria o dispositivo. Deve ser chamado depois de rl.InitWindow, na thread principal.
func New() (*Device, error) {
	if !rl.IsWindowReady() {
		return nil, ErrNoWindow
	}

	d := &Device{
		HostResources: gpu.NewHostResources(32),
		material:      rl.LoadMaterialDefault(),
		meshes:        make(map[meshKey]rl.Mesh),
		loader:        &TextureLoader{},
	}
	d.swap = &SwapChain{}
	d.queue = &Queue{dev: d}

	log.Printf("[GPU] Dispositivo raylib criado (%dx%d)", rl.GetScreenWidth(), rl.GetScreenHeight())
	return d, nil
}

func (d *Device) Name() string { return "raylib" }

// CreatePipelineState carrega o par de shaders no driver e registra as localizações de uniforms.
func (d *Device) CreatePipelineState(desc gpu.PipelineDesc) (gpu.PipelineState, error) {
	if err := desc.Validate(); err != nil {
		return nil, fmt.Errorf("criando PSO: %w", err)
	}

	shader := rl.LoadShaderFromMemory(string(desc.VS), string(desc.PS))
	if shader.ID == 0 {
		return nil, fmt.Errorf("%w: PSO %q rejeitado pelo driver", gpu.ErrShaderCompile, desc.Name)
	}

	p := &pipeline{desc: desc, shader: shader}
	p.locs.texTransform = rl.GetShaderLocation(shader, cbuffer.UniformTexTransform)
	p.locs.matTransform = rl.GetShaderLocation(shader, cbuffer.UniformMatTransform)
	p.locs.diffuseAlbedo = rl.GetShaderLocation(shader, cbuffer.UniformDiffuseAlbedo)
	p.locs.fresnelR0 = rl.GetShaderLocation(shader, cbuffer.UniformFresnelR0)
	p.locs.roughness = rl.GetShaderLocation(shader, cbuffer.UniformRoughness)
	p.locs.ambient = rl.GetShaderLocation(shader, cbuffer.UniformAmbientLight)
	p.locs.eyePos = rl.GetShaderLocation(shader, cbuffer.UniformEyePosW)
	p.locs.lightDir = rl.GetShaderLocation(shader, cbuffer.UniformLightDirection)
	p.locs.lightStrength = rl.GetShaderLocation(shader, cbuffer.UniformLightStrength)
	p.locs.fogColor = rl.GetShaderLocation(shader, cbuffer.UniformFogColor)
	p.locs.fogStart = rl.GetShaderLocation(shader, cbuffer.UniformFogStart)
	p.locs.fogRange = rl.GetShaderLocation(shader, cbuffer.UniformFogRange)

	d.pipelines = append(d.pipelines, p)
	log.Printf("[GPU] PSO %q criado (fill=%s cull=%s blend=%s)", desc.Name, desc.Fill, desc.Cull, desc.Blend)
	return p, nil
}

// ReleasePipelineState descarrega o shader do PSO. PSOs de outro dispositivo são ignorados.
func (d *Device) ReleasePipelineState(ps gpu.PipelineState) {
	for i, p := range d.pipelines {
		if p == ps {
			rl.UnloadShader(p.shader)
			d.pipelines = append(d.pipelines[:i], d.pipelines[i+1:]...)
			return
		}
	}
}

func (d *Device) Queue() gpu.Queue                   { return d.queue }
func (d *Device) SwapChain() gpu.SwapChain           { return d.swap }
func (d *Device) ShaderCompiler() gpu.ShaderCompiler { return gpu.GLSLPreprocessor{} }
func (d *Device) TextureLoader() gpu.TextureLoader   { return d.loader }

// OnPresent registra um callback chamado dentro do frame, logo antes do present (HUD 2D).
func (d *Device) OnPresent(fn func()) {
	d.swap.hooks = append(d.swap.hooks, fn)
}

// Close libera shaders, malhas e texturas do driver.
func (d *Device) Close() error {
	for key, mesh := range d.meshes {
		freeMesh(&mesh)
		delete(d.meshes, key)
	}
	for _, p := range d.pipelines {
		rl.UnloadShader(p.shader)
	}
	d.pipelines = nil
	d.loader.unloadAll()

	log.Println("[GPU] Dispositivo raylib encerrado")
	return nil
}

type uniformLocs struct {
	texTransform  int32
	matTransform  int32
	diffuseAlbedo int32
	fresnelR0     int32
	roughness     int32
	ambient       int32
	eyePos        int32
	lightDir      int32
	lightStrength int32
	fogColor      int32
	fogStart      int32
	fogRange      int32
}

type pipeline struct {
	desc   gpu.PipelineDesc
	shader rl.Shader
	locs   uniformLocs
}

func (p *pipeline) Desc() gpu.PipelineDesc { return p.desc }

// SwapChain: o present do raylib é o EndDrawing.
type SwapChain struct {
	current int
	inFrame bool
	hooks   []func()
}

func (s *SwapChain) Present() error {
	if !s.inFrame {
		return fmt.Errorf("%w: present sem frame aberto", gpu.ErrInvalidBarrier)
	}
	for _, fn := range s.hooks {
		fn()
	}
	rl.EndDrawing()
	s.inFrame = false
	s.current = (s.current + 1) % 2
	return nil
}

func (s *SwapChain) CurrentBackBuffer() int { return s.current }
func (s *SwapChain) BufferCount() int       { return 2 }

func (s *SwapChain) Resize(width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("resize inválido %dx%d", width, height)
	}
	s.current = 0
	return nil
}

func (s *SwapChain) Size() (int, int) {
	return rl.GetScreenWidth(), rl.GetScreenHeight()
}
