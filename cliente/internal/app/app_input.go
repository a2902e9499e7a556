package app

import (
	"log"

	"VoxelTerrain/cliente/internal/engine"
	"VoxelTerrain/cliente/internal/render"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// axis converte um par de teclas em -1, 0 ou 1.
func axis(pos, neg int32) float32 {
	var v float32
	if rl.IsKeyDown(pos) {
		v++
	}
	if rl.IsKeyDown(neg) {
		v--
	}
	return v
}

// pollInput lê o teclado e o mouse do frame.
func (a *App) pollInput() engine.Input {
	in := engine.Input{
		Mode: render.ModeInput{
			Wireframe: rl.IsKeyDown(rl.KeyOne),
			CullFront: rl.IsKeyDown(rl.KeyTwo),
			CullNone:  rl.IsKeyDown(rl.KeyThree),
		},
		LightingOff: rl.IsKeyPressed(rl.KeyN),
		LightingOn:  rl.IsKeyPressed(rl.KeyL),
		Forward:     axis(rl.KeyW, rl.KeyS),
		Strafe:      axis(rl.KeyD, rl.KeyA),
	}

	// Olhar em volta só com o botão esquerdo pressionado
	if rl.IsMouseButtonDown(rl.MouseLeftButton) {
		d := rl.GetMouseDelta()
		in.LookDX, in.LookDY = d.X, d.Y
	}
	return in
}

// handleHotkeys processa as teclas que não passam pelo motor.
func (a *App) handleHotkeys() {
	// Toggle debug info
	if rl.IsKeyPressed(rl.KeyF3) {
		a.Config.ShowDebugInfo = !a.Config.ShowDebugInfo
	}

	// Fullscreen toggle
	if rl.IsKeyPressed(rl.KeyF11) {
		rl.ToggleFullscreen()
		log.Printf("[App] Tela cheia: %v", rl.IsWindowFullscreen())
	}
}
