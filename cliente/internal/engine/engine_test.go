package engine

import (
	"context"
	"errors"
	"math/rand"
	"testing"
	"time"

	"VoxelTerrain/cliente/internal/assets"
	"VoxelTerrain/cliente/internal/frame"
	"VoxelTerrain/cliente/internal/gpu"
	"VoxelTerrain/cliente/internal/gpu/headless"
	"VoxelTerrain/cliente/internal/journal"
	"VoxelTerrain/cliente/internal/render"
)

// Mundo pequeno: dois quadrantes 8x8, um com árvores e um de água.
const smallManifest = `
textures:
  - { name: dirtTex,    file: dirt.png }
  - { name: bedrockTex, file: bedrock.png }
  - { name: stoneTex,   file: stone.png }
  - { name: grassTex,   file: grass.png }
  - { name: woodTex,    file: wood.png }
  - { name: leavesTex,  file: leaves.png }
  - { name: waterTex,   file: water.png }
materials:
  - { name: dirt,    texture: dirtTex,    diffuse_albedo: [1, 1, 1, 1], fresnel_r0: [0.05, 0.05, 0.05], roughness: 0.2 }
  - { name: bedrock, texture: bedrockTex, diffuse_albedo: [1, 1, 1, 1], fresnel_r0: [0.05, 0.05, 0.05], roughness: 0.2 }
  - { name: stone,   texture: stoneTex,   diffuse_albedo: [1, 1, 1, 1], fresnel_r0: [0.05, 0.05, 0.05], roughness: 0.2 }
  - { name: grass,   texture: grassTex,   diffuse_albedo: [1, 1, 1, 1], fresnel_r0: [0.05, 0.05, 0.05], roughness: 0.2 }
  - { name: wood,    texture: woodTex,    diffuse_albedo: [1, 1, 1, 1], fresnel_r0: [0.05, 0.05, 0.05], roughness: 0.2 }
  - { name: leaves,  texture: leavesTex,  diffuse_albedo: [1, 1, 1, 1], fresnel_r0: [0.05, 0.05, 0.05], roughness: 0.2 }
  - { name: water,   texture: waterTex,   diffuse_albedo: [1, 1, 1, 1], fresnel_r0: [0.05, 0.05, 0.05], roughness: 0.2, transparent: true, uv_scroll: [0.1, 0.02] }
strata:
  bedrock: bedrock
  ore_min: 1
  ore_max: 3
  ore_default: stone
  fill: dirt
quadrants:
  - { name: grass, x: [0, 7], z: [0, 7],  cap: grass, height: { kind: range, base: 8, min: 1, max: 2 }, trees: true }
  - { name: water, x: [0, 7], z: [8, 15], cap: water, height: { kind: fixed, base: 9 } }
trees:
  max: 2
  one_in: 1
  hit: 1
  trunk: wood
  leaves: leaves
  footprint: { left: 2, right: 2, back: 1, front: 2 }
`

type fakeJournal struct {
	samples []journal.Sample
}

func (f *fakeJournal) Record(s journal.Sample) error {
	f.samples = append(f.samples, s)
	return nil
}

func newEngine(t *testing.T, latency time.Duration, opts Options) (*Engine, *headless.Device) {
	t.Helper()
	mgr, err := assets.Parse([]byte(smallManifest))
	if err != nil {
		t.Fatal(err)
	}
	dev := headless.New(headless.Options{Width: 640, Height: 480, Latency: latency})
	t.Cleanup(func() { dev.Close() })

	e, err := New(dev, mgr, opts, rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { e.Shutdown(context.Background()) })
	return e, dev
}

func TestNewBuildsScene(t *testing.T) {
	e, _ := newEngine(t, 0, Options{})

	w := e.World()
	if len(w.Trees) != 2 {
		t.Errorf("%d árvores, want 2", len(w.Trees))
	}
	if got := w.Counts()["water"]; got != 64 {
		t.Errorf("%d blocos de água, want 64", got)
	}
	if e.Stage() != StageIdle || e.FrameIndex() != 0 || !e.Lighting() {
		t.Errorf("estado inicial: stage=%s frame=%d lighting=%v", e.Stage(), e.FrameIndex(), e.Lighting())
	}
	if got := e.Camera().Position(); got[1] != 15 {
		t.Errorf("posição inicial da câmera = %v", got)
	}
	if a := e.Camera().Aspect(); a < 1.33 || a > 1.34 {
		t.Errorf("aspecto = %v, want 640/480", a)
	}
}

func TestFramesCycleTheRing(t *testing.T) {
	rec := &fakeJournal{}
	e, dev := newEngine(t, time.Millisecond, Options{Journal: rec})
	items := len(e.World().Items)
	mats := e.Materials().Len()

	const frames = 8
	dt := 16 * time.Millisecond
	var prevFence uint64
	for i := 0; i < frames; i++ {
		st, err := e.Frame(context.Background(), dt)
		if err != nil {
			t.Fatalf("frame %d: %v", i, err)
		}
		if st.Frame != uint64(i) || st.Slot != i%frame.RingDepth {
			t.Errorf("frame %d: got frame=%d slot=%d", i, st.Frame, st.Slot)
		}
		if st.Fence <= prevFence {
			t.Errorf("frame %d: fence %d não avançou de %d", i, st.Fence, prevFence)
		}
		prevFence = st.Fence
		if st.Draws != items {
			t.Errorf("frame %d: %d draws, want %d", i, st.Draws, items)
		}

		// Objetos ficam sujos só nos primeiros RingDepth frames; a água é remarcada sempre.
		wantObj, wantMat := 0, 1
		if i < frame.RingDepth {
			wantObj, wantMat = items, mats
		}
		if st.ObjectCopies != wantObj || st.MaterialCopies != wantMat {
			t.Errorf("frame %d: cópias obj=%d mat=%d, want %d/%d", i, st.ObjectCopies, st.MaterialCopies, wantObj, wantMat)
		}
		if st.Pipeline != render.PSOTransparent {
			t.Errorf("frame %d: pipeline %s", i, st.Pipeline)
		}
	}
	if e.LastFrame().Frame != frames-1 {
		t.Errorf("LastFrame = %d", e.LastFrame().Frame)
	}

	if err := e.Shutdown(context.Background()); err != nil {
		t.Fatal(err)
	}
	reports := dev.Reports()
	if len(reports) != frames {
		t.Fatalf("%d relatórios, want %d", len(reports), frames)
	}
	for i, r := range reports {
		if r.Draws != items || !r.Cleared {
			t.Errorf("relatório %d: draws=%d cleared=%v", i, r.Draws, r.Cleared)
		}
	}
	if dev.Presents() != frames {
		t.Errorf("%d presents, want %d", dev.Presents(), frames)
	}

	if len(rec.samples) != frames {
		t.Fatalf("%d amostras no journal", len(rec.samples))
	}
	if s := rec.samples[3]; s.Frame != 3 || s.Slot != 0 || s.Mode != render.PSOTransparent || !s.Lighting {
		t.Errorf("amostra 3: %+v", s)
	}
}

func TestApplyInput(t *testing.T) {
	e, _ := newEngine(t, 0, Options{OpaqueDefault: true})

	tests := []struct {
		name string
		in   Input
		mode render.Mode
		pso  string
	}{
		{"padrão opaco", Input{}, render.ModeDefault, render.PSOOpaque},
		{"wireframe vence", Input{Mode: render.ModeInput{Wireframe: true, CullNone: true}}, render.ModeWireframe, render.PSOOpaqueWireframe},
		{"cull front", Input{Mode: render.ModeInput{CullFront: true}}, render.ModeCullFront, render.PSOOpaqueCullFront},
		{"cull none", Input{Mode: render.ModeInput{CullNone: true}}, render.ModeCullNone, render.PSOOpaqueCullNone},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e.ApplyInput(tt.in, 0)
			st, err := e.Frame(context.Background(), time.Millisecond)
			if err != nil {
				t.Fatal(err)
			}
			if st.Mode != tt.mode || st.Pipeline != tt.pso {
				t.Errorf("got %s/%s, want %s/%s", st.Mode, st.Pipeline, tt.mode, tt.pso)
			}
		})
	}
}

func TestLightingToggle(t *testing.T) {
	e, _ := newEngine(t, 0, Options{DayLength: 40 * time.Second})

	// O ciclo começa no meio-dia: ambiente 1.
	if p := e.passConstants(0); p.AmbientLight[0] < 0.99 || p.Lights[0].Strength.Len() == 0 {
		t.Fatalf("luz ligada: ambiente %v, sol %v", p.AmbientLight, p.Lights[0].Strength)
	}

	e.ApplyInput(Input{LightingOff: true}, 0)
	p := e.passConstants(0)
	if p.AmbientLight[0] != 0 || p.Lights[0].Strength.Len() != 0 {
		t.Errorf("luz desligada: ambiente %v, sol %v", p.AmbientLight, p.Lights[0].Strength)
	}
	if p.FogColor != e.light.ClearColor() {
		t.Errorf("neblina %v deveria seguir o céu %v", p.FogColor, e.light.ClearColor())
	}

	e.ApplyInput(Input{LightingOn: true}, 0)
	if !e.Lighting() {
		t.Error("L não religou a iluminação")
	}
}

func TestCameraInput(t *testing.T) {
	e, _ := newEngine(t, 0, Options{MoveSpeed: 5})
	cam := e.Camera()
	start := cam.Position()
	look := cam.LookDir()

	e.ApplyInput(Input{Forward: 1}, 2)
	moved := cam.Position().Sub(start)
	if d := moved.Len(); d < 9.99 || d > 10.01 {
		t.Errorf("andou %v, want 10", d)
	}
	if moved.Normalize().Dot(look) < 0.999 {
		t.Errorf("andou fora da direção do olhar")
	}
}

func TestFrameErrors(t *testing.T) {
	t.Run("reentrante", func(t *testing.T) {
		e, _ := newEngine(t, 0, Options{})
		e.busy.Store(true)
		if _, err := e.Frame(context.Background(), 0); !errors.Is(err, ErrReentrantFrame) {
			t.Errorf("got %v, want ErrReentrantFrame", err)
		}
		e.busy.Store(false)
	})

	t.Run("contexto cancelado na espera do slot", func(t *testing.T) {
		e, _ := newEngine(t, 200*time.Millisecond, Options{})
		for i := 0; i < frame.RingDepth; i++ {
			if _, err := e.Frame(context.Background(), 0); err != nil {
				t.Fatal(err)
			}
		}
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := e.Frame(ctx, 0)
		if !errors.Is(err, context.Canceled) {
			t.Errorf("got %v, want context.Canceled", err)
		}
		if e.Stage() != StageIdle {
			t.Errorf("stage depois do erro = %s", e.Stage())
		}
	})

	t.Run("depois do shutdown", func(t *testing.T) {
		e, _ := newEngine(t, 0, Options{})
		if err := e.Shutdown(context.Background()); err != nil {
			t.Fatal(err)
		}
		if _, err := e.Frame(context.Background(), 0); !errors.Is(err, ErrShutdown) {
			t.Errorf("got %v, want ErrShutdown", err)
		}
		if err := e.Resize(context.Background(), 800, 600); !errors.Is(err, ErrShutdown) {
			t.Errorf("Resize: got %v", err)
		}
	})
}

func TestResize(t *testing.T) {
	e, dev := newEngine(t, time.Millisecond, Options{})
	if _, err := e.Frame(context.Background(), 0); err != nil {
		t.Fatal(err)
	}
	if err := e.Resize(context.Background(), 800, 400); err != nil {
		t.Fatal(err)
	}
	if w, h := dev.SwapChain().Size(); w != 800 || h != 400 {
		t.Errorf("swap chain %dx%d", w, h)
	}
	if a := e.Camera().Aspect(); a != 2 {
		t.Errorf("aspecto = %v, want 2", a)
	}
	if e.Ring().Completed() != e.Ring().FenceValue() {
		t.Errorf("resize sem flush: completed %d, emitido %d", e.Ring().Completed(), e.Ring().FenceValue())
	}
	if _, err := e.Frame(context.Background(), 0); err != nil {
		t.Errorf("frame depois do resize: %v", err)
	}
}

func TestResizeIgnoresMinimizedWindow(t *testing.T) {
	e, dev := newEngine(t, time.Millisecond, Options{})
	ctx := context.Background()
	if _, err := e.Frame(ctx, 0); err != nil {
		t.Fatal(err)
	}
	aspect := e.Camera().Aspect()

	tests := []struct {
		name string
		w, h int
	}{
		{"minimizada", 0, 0},
		{"largura nula", 0, 480},
		{"altura nula", 640, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := e.Resize(ctx, tt.w, tt.h); err != nil {
				t.Fatalf("Resize(%d, %d) = %v", tt.w, tt.h, err)
			}
			if w, h := dev.SwapChain().Size(); w != 640 || h != 480 {
				t.Errorf("swap chain mudou para %dx%d", w, h)
			}
			if got := e.Camera().Aspect(); got != aspect {
				t.Errorf("aspecto = %v, want %v", got, aspect)
			}
			if _, err := e.Frame(ctx, 0); err != nil {
				t.Errorf("frame depois do resize: %v", err)
			}
		})
	}
}

var errNoFence = errors.New("sem fence")

// noFenceDevice falha ao criar a fence do anel, depois da geometria e dos PSOs.
type noFenceDevice struct{ *headless.Device }

func (noFenceDevice) CreateFence(uint64) (*gpu.Fence, error) { return nil, errNoFence }

func TestNewReleasesOnRingFailure(t *testing.T) {
	mgr, err := assets.Parse([]byte(smallManifest))
	if err != nil {
		t.Fatal(err)
	}
	dev := headless.New(headless.Options{Width: 640, Height: 480})
	t.Cleanup(func() { dev.Close() })

	_, err = New(noFenceDevice{dev}, mgr, Options{}, rand.New(rand.NewSource(1)))
	if !errors.Is(err, errNoFence) {
		t.Fatalf("err = %v, want errNoFence", err)
	}
	if n := dev.LivePipelines(); n != 0 {
		t.Errorf("%d PSOs vivos depois da falha", n)
	}
	if n := dev.Space.Live(); n != 0 {
		t.Errorf("%d buffers vivos depois da falha", n)
	}
}

func TestShutdownReleasesPipelines(t *testing.T) {
	e, dev := newEngine(t, 0, Options{})
	if n := dev.LivePipelines(); n != 5 {
		t.Fatalf("%d PSOs vivos, want 5", n)
	}
	if err := e.Shutdown(context.Background()); err != nil {
		t.Fatal(err)
	}
	if n := dev.LivePipelines(); n != 0 {
		t.Errorf("%d PSOs vivos depois do Shutdown", n)
	}
	if n := dev.Space.Live(); n != 0 {
		t.Errorf("%d buffers vivos depois do Shutdown", n)
	}
}

func TestStageNames(t *testing.T) {
	if StageWaitForRingSlot.String() != "WaitForRingSlot" || StageAdvanceFence.String() != "AdvanceFence" {
		t.Errorf("nomes: %s, %s", StageWaitForRingSlot, StageAdvanceFence)
	}
	if Stage(42).String() != "Stage(42)" {
		t.Errorf("got %s", Stage(42))
	}
}
