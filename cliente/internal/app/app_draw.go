package app

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// draw renderiza a cena.
func (a *App) draw() {
	rl.BeginDrawing()
	rl.ClearBackground(rl.NewColor(30, 30, 40, 255))

	a.drawScene()
	a.drawHUD()
	if a.State == StatePaused {
		a.drawPauseMenu()
	}

	rl.EndDrawing()
}

// drawScene renderiza a cena 3D.
func (a *App) drawScene() {
	rl.BeginMode3D(a.Cam.RLCamera)
	rl.DrawGrid(20, 0.5)
	a.renderer.Draw(a.Cam.RLCamera, a.Cam.Distance())
	rl.EndMode3D()
}

// drawHUD desenha a interface sobreposta.
func (a *App) drawHUD() {
	a.mu.Lock()
	preset, seed, status := a.preset, a.seed, a.Status
	a.mu.Unlock()

	rl.DrawText(fmt.Sprintf("%s  seed %d", preset, seed), 10, 10, 20, rl.RayWhite)
	if status != "" {
		rl.DrawText(status, 10, 36, 18, rl.Yellow)
	}
	rl.DrawText("N/B: semente  <-/->: preset  L: nível  F1: folhas  F2: wireframe  K: esqueleto  F5: salvar",
		10, int32(rl.GetScreenHeight())-24, 14, rl.LightGray)

	if !a.Config.ShowDebugInfo {
		return
	}

	width := int32(300)
	height := int32(170)
	x := int32(rl.GetScreenWidth()) - width - 10
	y := int32(10)
	rl.DrawRectangle(x, y, width, height, rl.NewColor(0, 0, 0, 180))
	rl.DrawRectangleLines(x, y, width, height, rl.NewColor(50, 50, 50, 255))

	fps := rl.GetFPS()
	fpsColor := rl.Green
	if fps < 30 {
		fpsColor = rl.Red
	} else if fps < 50 {
		fpsColor = rl.Yellow
	}
	rl.DrawText(fmt.Sprintf("FPS: %d", fps), x+10, y+10, 20, fpsColor)

	st := a.renderer.LastStats()
	mode := "auto"
	if a.renderer.ForcedLevel >= 0 {
		mode = "fixo"
	}
	lines := []string{
		fmt.Sprintf("Distância: %.2f", a.Cam.Distance()),
		fmt.Sprintf("Nível: %d (%s, %s)", st.Level, st.Reduction, mode),
		fmt.Sprintf("Triângulos: %d", st.Triangles),
		fmt.Sprintf("Segmentos: %d", a.segments),
		fmt.Sprintf("Altura: %.2f", a.treeBounds[1].Y()-a.treeBounds[0].Y()),
	}
	for i, l := range lines {
		rl.DrawText(l, x+10, y+40+int32(i)*24, 18, rl.RayWhite)
	}
}

func (a *App) drawPauseMenu() {
	w, h := int32(rl.GetScreenWidth()), int32(rl.GetScreenHeight())
	rl.DrawRectangle(0, 0, w, h, rl.NewColor(0, 0, 0, 150))
	text := "PAUSADO (ESC para continuar)"
	tw := rl.MeasureText(text, 30)
	rl.DrawText(text, (w-tw)/2, h/2-15, 30, rl.RayWhite)
}
