package app

import (
	"fmt"
	"time"

	"VoxelTerrain/shared/util"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// drawHUD desenha a interface sobreposta. Chamado pelo dispositivo raylib logo antes do present.
func (a *App) drawHUD() {
	if !a.Config.ShowDebugInfo || a.engine == nil {
		return
	}

	width := int32(300)
	height := int32(190)
	x := int32(rl.GetScreenWidth()) - width - 10
	y := int32(10)

	rl.DrawRectangle(x, y, width, height, rl.NewColor(0, 0, 0, 180))
	rl.DrawRectangleLines(x, y, width, height, rl.NewColor(50, 50, 50, 255))

	// FPS
	fps := rl.GetFPS()
	fpsColor := rl.Green
	if fps < 30 {
		fpsColor = rl.Red
	} else if fps < 50 {
		fpsColor = rl.Yellow
	}
	rl.DrawText(fmt.Sprintf("FPS: %d", fps), x+10, y+10, 20, fpsColor)

	// Dia ou noite
	st := a.lastStats
	sky, skyColor := "Dia", rl.SkyBlue
	if st.Light.Dark() {
		sky, skyColor = "Noite", rl.DarkBlue
	}
	if !st.Lighting {
		sky, skyColor = "Sem luz", rl.Gray
	}
	rl.DrawText(sky, x+200, y+10, 20, skyColor)

	rl.DrawLine(x+10, y+35, x+width-10, y+35, rl.NewColor(100, 100, 100, 100))

	// Frame
	rl.DrawText("FRAME", x+10, y+45, 12, rl.Gray)
	rl.DrawText(fmt.Sprintf("Frame %d | slot %d | fence %d", st.Frame, st.Slot, st.Fence), x+10, y+60, 14, rl.White)
	rl.DrawText(fmt.Sprintf("Draws: %d | cópias obj %d mat %d", st.Draws, st.ObjectCopies, st.MaterialCopies), x+10, y+78, 14, rl.LightGray)
	rl.DrawText(fmt.Sprintf("Espera de fence: %v", st.FenceWait.Round(time.Microsecond)), x+10, y+96, 14, rl.LightGray)
	cell := util.WorldToGridCoord(a.engine.Camera().Position())
	rl.DrawText(fmt.Sprintf("PSO: %s (%s) | %s", st.Pipeline, st.Mode, cell), x+10, y+114, 14, rl.White)

	rl.DrawLine(x+10, y+135, x+width-10, y+135, rl.NewColor(100, 100, 100, 100))

	// Atalhos Rápidos
	rl.DrawText("CONTROLES", x+10, y+143, 12, rl.Gray)
	rl.DrawText("WASD: Mover | Botão esq.: Olhar | 1/2/3: PSO", x+10, y+158, 12, rl.LightGray)
	rl.DrawText("N/L: Luz | F3: HUD | F11: Tela Cheia", x+10, y+172, 12, rl.SkyBlue)

	// Semente e manifesto no canto inferior direito
	title := fmt.Sprintf("VoxelTerrain - semente %d - %s", a.seed, a.manifest)
	titleWidth := rl.MeasureText(title, 18)
	rl.DrawText(title,
		int32(rl.GetScreenWidth())-titleWidth-20, int32(rl.GetScreenHeight())-30,
		18, rl.NewColor(200, 200, 200, 150))
}

// drawFatal mostra o erro fatal centralizado por d, ou até a janela ser fechada.
func (a *App) drawFatal(err error, d time.Duration) {
	msg := err.Error()
	deadline := time.Now().Add(d)
	for time.Now().Before(deadline) && !rl.WindowShouldClose() {
		screenWidth := int32(rl.GetScreenWidth())
		screenHeight := int32(rl.GetScreenHeight())

		rl.BeginDrawing()
		rl.ClearBackground(rl.NewColor(30, 30, 40, 255))

		panelWidth := screenWidth - 80
		panelHeight := int32(140)
		panelX := int32(40)
		panelY := (screenHeight - panelHeight) / 2
		rl.DrawRectangle(panelX, panelY, panelWidth, panelHeight, rl.NewColor(60, 20, 20, 255))
		rl.DrawRectangleLines(panelX, panelY, panelWidth, panelHeight, rl.Red)

		rl.DrawText("ERRO FATAL", panelX+20, panelY+20, 24, rl.Red)
		rl.DrawText(msg, panelX+20, panelY+60, 16, rl.White)
		rl.DrawText("Detalhes em voxelterrain.log", panelX+20, panelY+100, 14, rl.LightGray)

		rl.EndDrawing()
	}
}
