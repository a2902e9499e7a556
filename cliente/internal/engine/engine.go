// Package engine amarra o mundo gerado, o anel de frame resources e o gravador de comandos
// na máquina de estados de um frame.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync/atomic"
	"time"

	"VoxelTerrain/cliente/internal/assets"
	"VoxelTerrain/cliente/internal/camera"
	"VoxelTerrain/cliente/internal/cbuffer"
	"VoxelTerrain/cliente/internal/daynight"
	"VoxelTerrain/cliente/internal/frame"
	"VoxelTerrain/cliente/internal/gpu"
	"VoxelTerrain/cliente/internal/journal"
	"VoxelTerrain/cliente/internal/materials"
	"VoxelTerrain/cliente/internal/meshing"
	"VoxelTerrain/cliente/internal/render"
	"VoxelTerrain/cliente/internal/worldgen"

	"github.com/go-gl/mathgl/mgl32"
)

var (
	// ErrReentrantFrame é retornado quando Frame é chamado com outro frame em andamento.
	ErrReentrantFrame = errors.New("engine: frame reentrante")
	// ErrShutdown é retornado depois de Shutdown.
	ErrShutdown = errors.New("engine: encerrado")
)

// Posição inicial da câmera, olhando para o centro do mundo.
var startPosition = mgl32.Vec3{50, 15, -20}

// Recorder recebe uma amostra por frame. Implementado por *journal.Journal.
type Recorder interface {
	Record(s journal.Sample) error
}

// Options configura o motor.
type Options struct {
	Subdivisions  int
	OpaqueDefault bool
	DayLength     time.Duration
	MoveSpeed     float32 // Unidades por segundo (0 = padrão da câmera)
	Sensitivity   float32 // Radianos por pixel (0 = padrão da câmera)
	Journal       Recorder
}

// Input é o estado dos controles amostrado uma vez por frame.
type Input struct {
	Mode        render.ModeInput
	LightingOff bool // N
	LightingOn  bool // L

	Forward float32 // W/S em -1..1
	Strafe  float32 // A/D em -1..1
	LookDX  float32 // Delta do mouse em pixels, só com o botão pressionado
	LookDY  float32
}

// FrameStats resume o último frame concluído.
type FrameStats struct {
	Frame          uint64
	Slot           int
	Fence          uint64
	FenceWait      time.Duration
	Draws          int
	ObjectCopies   int
	MaterialCopies int
	Mode           render.Mode
	Pipeline       string
	Lighting       bool
	Light          daynight.State
}

// Engine é dono de todos os recursos de GPU da cena.
type Engine struct {
	dev gpu.Device

	mats     *materials.Table
	textures *materials.TextureTable
	geos     *meshing.Cache
	psos     *render.PipelineSet
	world    *worldgen.World
	layers   [render.LayerCount][]*render.RenderItem
	ring     *frame.Ring
	renderer *render.Renderer
	cam      *camera.Camera
	sky      daynight.Controller
	journal  Recorder

	frameIndex uint64
	elapsed    time.Duration
	mode       render.Mode
	lighting   bool
	light      daynight.State

	stage   atomic.Int32
	busy    atomic.Bool
	stopped atomic.Bool
	last    FrameStats
}

// New monta a cena: materiais, texturas, geometria, PSOs, mundo e anel.
func New(dev gpu.Device, mgr *assets.Manager, opts Options, rng worldgen.Rand) (*Engine, error) {
	e := &Engine{
		dev:      dev,
		geos:     meshing.NewCache(),
		sky:      daynight.New(opts.DayLength),
		journal:  opts.Journal,
		lighting: true,
	}

	var err error
	if e.mats, err = materials.NewTable(mgr); err != nil {
		return nil, fmt.Errorf("materiais: %w", err)
	}
	if e.textures, err = materials.LoadTextures(dev, mgr); err != nil {
		return nil, fmt.Errorf("texturas: %w", err)
	}

	geo, err := meshing.BuildBoxGeometry(dev, opts.Subdivisions)
	if err != nil {
		return nil, fmt.Errorf("geometria: %w", err)
	}
	e.geos.Store(geo)

	blend := gpu.BlendAlpha
	if opts.OpaqueDefault {
		blend = gpu.BlendOpaque
	}
	if e.psos, err = render.BuildPipelines(dev, blend); err != nil {
		e.geos.Release(dev)
		return nil, fmt.Errorf("pipelines: %w", err)
	}

	if e.world, err = worldgen.NewGenerator(mgr, e.mats, geo, rng).Generate(); err != nil {
		e.release()
		return nil, fmt.Errorf("geração do mundo: %w", err)
	}
	e.layers = e.world.Layers()

	if e.ring, err = frame.NewRing(dev, 1, len(e.world.Items), e.mats.Len()); err != nil {
		e.release()
		return nil, err
	}
	e.renderer = render.NewRenderer(e.textures)

	e.cam = camera.New()
	if opts.MoveSpeed > 0 {
		e.cam.MoveSpeed = opts.MoveSpeed
	}
	if opts.Sensitivity > 0 {
		e.cam.Sensitivity = opts.Sensitivity
	}
	w, h := dev.SwapChain().Size()
	e.cam.SetAspect(aspect(w, h))
	e.cam.LookAt(startPosition, e.world.Center(), mgl32.Vec3{0, 1, 0})
	e.light = e.sky.At(0)

	log.Printf("[Engine] Cena pronta: %d render items (%d opacos, %d transparentes), %d materiais, %d PSOs",
		len(e.world.Items), len(e.layers[render.LayerOpaque]), len(e.layers[render.LayerTransparent]),
		e.mats.Len(), e.psos.Len())
	return e, nil
}

func aspect(w, h int) float32 {
	if w <= 0 || h <= 0 {
		return 1
	}
	return float32(w) / float32(h)
}

func (e *Engine) World() *worldgen.World      { return e.world }
func (e *Engine) Camera() *camera.Camera      { return e.cam }
func (e *Engine) Materials() *materials.Table { return e.mats }
func (e *Engine) Ring() *frame.Ring           { return e.ring }
func (e *Engine) Mode() render.Mode           { return e.mode }
func (e *Engine) Lighting() bool              { return e.lighting }
func (e *Engine) FrameIndex() uint64          { return e.frameIndex }

// Stage é a etapa em que o frame corrente está (StageIdle fora de Frame).
func (e *Engine) Stage() Stage { return Stage(e.stage.Load()) }

// LastFrame devolve as estatísticas do último frame concluído.
func (e *Engine) LastFrame() FrameStats { return e.last }

// ApplyInput atualiza modo, iluminação e câmera. dt em segundos.
func (e *Engine) ApplyInput(in Input, dt float32) {
	if mode := render.SelectMode(in.Mode); mode != e.mode {
		e.mode = mode
		log.Printf("[Engine] Modo de render: %s", mode)
	}
	switch {
	case in.LightingOff && e.lighting:
		e.lighting = false
		log.Println("[Engine] Iluminação desligada")
	case in.LightingOn && !e.lighting:
		e.lighting = true
		log.Println("[Engine] Iluminação ligada")
	}
	e.cam.Look(in.LookDX, in.LookDY)
	e.cam.Move(in.Forward, in.Strafe, dt)
}

// Resize espera a GPU, redimensiona a swap chain e recalcula a lente da câmera.
// Tamanho nulo (janela minimizada) é ignorado.
func (e *Engine) Resize(ctx context.Context, width, height int) error {
	if e.stopped.Load() {
		return ErrShutdown
	}
	if width <= 0 || height <= 0 {
		log.Printf("[Engine] Resize %dx%d ignorado (janela minimizada)", width, height)
		return nil
	}
	if err := e.ring.Flush(ctx); err != nil {
		return err
	}
	if err := e.dev.SwapChain().Resize(width, height); err != nil {
		return fmt.Errorf("resize %dx%d: %w", width, height, err)
	}
	e.cam.SetAspect(aspect(width, height))
	log.Printf("[Engine] Swap chain redimensionada para %dx%d", width, height)
	return nil
}

// Shutdown espera a GPU terminar e libera o anel e a geometria. Não fecha o dispositivo.
func (e *Engine) Shutdown(ctx context.Context) error {
	if !e.stopped.CompareAndSwap(false, true) {
		return nil
	}
	if err := e.ring.Close(ctx); err != nil {
		return fmt.Errorf("encerrando anel: %w", err)
	}
	e.release()
	log.Printf("[Engine] Encerrado depois de %d frames", e.frameIndex)
	return nil
}

// release devolve a geometria e os PSOs ao dispositivo.
func (e *Engine) release() {
	e.geos.Release(e.dev)
	if e.psos != nil {
		e.psos.Release(e.dev)
	}
}

// passConstants monta as constantes de passo do frame a partir da câmera e da luz.
func (e *Engine) passConstants(dt time.Duration) cbuffer.PassConstants {
	p := cbuffer.DefaultPassConstants()

	view := e.cam.View()
	proj := e.cam.Proj()
	viewProj := proj.Mul4(view)
	p.View, p.InvView = view, view.Inv()
	p.Proj, p.InvProj = proj, proj.Inv()
	p.ViewProj, p.InvViewProj = viewProj, viewProj.Inv()

	w, h := e.dev.SwapChain().Size()
	p.EyePosW = e.cam.Position()
	p.RenderTargetSize = mgl32.Vec2{float32(w), float32(h)}
	if w > 0 && h > 0 {
		p.InvRenderTargetSize = mgl32.Vec2{1 / float32(w), 1 / float32(h)}
	}
	p.NearZ, p.FarZ = e.cam.NearZ(), e.cam.FarZ()
	p.TotalTime = float32(e.elapsed.Seconds())
	p.DeltaTime = float32(dt.Seconds())

	light := e.light
	if !e.lighting {
		light = light.Off()
	}
	p.AmbientLight = light.Ambient
	p.FogColor = light.ClearColor()
	p.Lights[0].Direction = light.SunDirection
	p.Lights[0].Strength = light.SunStrength
	return p
}
