package app

import (
	"context"
	"fmt"
	"log"
	"math"
	"math/rand"
	"time"

	"VoxelTerrain/cliente/internal/assets"
	"VoxelTerrain/cliente/internal/engine"
	"VoxelTerrain/cliente/internal/gpu/headless"
	"VoxelTerrain/cliente/internal/journal"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// headlessStep é o dt fixo dos frames headless.
const headlessStep = time.Second / 60

// setup resolve a semente, abre o journal e monta o motor sobre a.dev.
func (a *App) setup() error {
	if a.seed == 0 {
		a.seed = time.Now().UnixNano()
	}
	log.Printf("[App] Semente do mundo: %d", a.seed)

	mgr, err := assets.NewManager(a.Config.AssetDir)
	if err != nil {
		return fmt.Errorf("assets: %w", err)
	}
	a.manifest = mgr.Source()

	if a.Config.JournalPath != "" {
		a.journal, err = journal.Open(journal.Options{
			Path:    a.Config.JournalPath,
			Backend: a.dev.Name(),
			Seed:    a.seed,
		})
		if err != nil {
			return fmt.Errorf("journal: %w", err)
		}
	}

	opts := engine.Options{
		Subdivisions:  a.Config.BoxSubdivisions,
		OpaqueDefault: a.Config.OpaqueDefault(),
		DayLength:     a.Config.DayLength(),
		MoveSpeed:     a.Config.CameraSpeed,
		Sensitivity:   a.Config.CameraSensitivity * math.Pi / 180,
	}
	if a.journal != nil {
		opts.Journal = a.journal
	}

	a.engine, err = engine.New(a.dev, mgr, opts, rand.New(rand.NewSource(a.seed)))
	return err
}

// update processa a entrada e executa um frame da janela.
func (a *App) update() error {
	dt := rl.GetFrameTime()

	// Minimizar no Windows reporta resize para 0x0; a swap chain fica como está.
	if rl.IsWindowResized() && !rl.IsWindowMinimized() {
		if err := a.engine.Resize(context.Background(), rl.GetScreenWidth(), rl.GetScreenHeight()); err != nil {
			return err
		}
	}

	a.handleHotkeys()
	a.engine.ApplyInput(a.pollInput(), dt)

	st, err := a.engine.Frame(context.Background(), time.Duration(float64(dt)*float64(time.Second)))
	if err != nil {
		return err
	}
	a.lastStats = st
	a.frameCount++
	return nil
}

// runHeadless roda HeadlessFrames frames no dispositivo de software e registra um resumo.
func (a *App) runHeadless() error {
	dev := headless.New(headless.Options{
		Width:   int(a.Config.WindowWidth),
		Height:  int(a.Config.WindowHeight),
		Latency: a.Config.HeadlessLatency(),
	})
	a.dev = dev

	if err := a.setup(); err != nil {
		a.shutdown()
		return a.fail(err)
	}
	a.State = StateViewing

	start := time.Now()
	var waited time.Duration
	for i := 0; i < a.Config.HeadlessFrames; i++ {
		st, err := a.engine.Frame(context.Background(), headlessStep)
		if err != nil {
			a.shutdown()
			return a.fail(err)
		}
		waited += st.FenceWait
		a.lastStats = st
		a.frameCount++
	}
	elapsed := time.Since(start)

	a.shutdown()

	draws := 0
	for _, r := range dev.Reports() {
		draws += r.Draws
	}
	log.Printf("[App] Headless: %d frames em %v, %d draws executados, %d presents, espera de fence %v",
		a.frameCount, elapsed, draws, dev.Presents(), waited)
	return nil
}
