package app

import (
	"log"

	"Arvoredo/cliente/internal/camera"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// updateCamera atualiza a câmera baseado no input.
func (a *App) updateCamera() {
	dt := rl.GetFrameTime()
	a.Cam.HandleInput(dt)
	a.Cam.Update(dt)

	// Alternar projeção com P
	if rl.IsKeyPressed(rl.KeyP) {
		if a.Cam.Mode == camera.ModePerspective {
			a.Cam.SetMode(camera.ModeOrthographic)
			log.Println("[Camera] Modo Ortográfico")
		} else {
			a.Cam.SetMode(camera.ModePerspective)
			log.Println("[Camera] Modo Perspectiva")
		}
	}
	if rl.IsKeyPressed(rl.KeyR) {
		a.Cam.AutoRotate = !a.Cam.AutoRotate
	}
}

// updateInput processa entradas de teclado gerais.
func (a *App) updateInput() {
	if rl.IsKeyPressed(rl.KeyEscape) {
		if a.State == StatePaused {
			a.State = StateViewing
		} else if a.State == StateViewing {
			a.State = StatePaused
		}
	}
	if a.State == StatePaused {
		return
	}

	if rl.IsKeyPressed(rl.KeyF1) {
		a.renderer.ShowLeaves = !a.renderer.ShowLeaves
	}
	if rl.IsKeyPressed(rl.KeyF2) {
		a.renderer.Wireframe = !a.renderer.Wireframe
	}
	if rl.IsKeyPressed(rl.KeyF3) {
		a.Config.ShowDebugInfo = !a.Config.ShowDebugInfo
	}
	if rl.IsKeyPressed(rl.KeyK) {
		a.renderer.ShowSkeleton = !a.renderer.ShowSkeleton
	}
	if rl.IsKeyPressed(rl.KeyF5) {
		go a.saveCurrentPreset()
	}

	// L percorre os níveis forçados; depois do último volta ao automático
	if rl.IsKeyPressed(rl.KeyL) {
		n := len(a.renderer.Levels())
		a.renderer.ForcedLevel++
		if a.renderer.ForcedLevel >= n {
			a.renderer.ForcedLevel = -1
		}
	}

	a.mu.Lock()
	busy := a.generating
	a.mu.Unlock()
	if busy {
		return
	}

	switch {
	case rl.IsKeyPressed(rl.KeyN) || rl.IsKeyPressed(rl.KeySpace):
		a.mu.Lock()
		a.seed++
		a.mu.Unlock()
		a.requestTree()
	case rl.IsKeyPressed(rl.KeyB):
		a.mu.Lock()
		a.seed--
		a.mu.Unlock()
		a.requestTree()
	case rl.IsKeyPressed(rl.KeyRight):
		a.cyclePreset(1)
	case rl.IsKeyPressed(rl.KeyLeft):
		a.cyclePreset(-1)
	}
}

func (a *App) cyclePreset(step int) {
	a.mu.Lock()
	if len(a.presetNames) == 0 {
		a.mu.Unlock()
		return
	}
	n := len(a.presetNames)
	a.presetIndex = ((a.presetIndex+step)%n + n) % n
	a.preset = a.presetNames[a.presetIndex]
	a.mu.Unlock()
	a.requestTree()
}
