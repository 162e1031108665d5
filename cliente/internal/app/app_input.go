package app

import (
	"SpriteVision/cliente/internal/camera"
	"SpriteVision/shared/imagesrc"

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
			a.log.Debug("Modo Ortográfico")
		} else {
			a.Cam.SetMode(camera.ModePerspective)
			a.log.Debug("Modo Perspectiva")
		}
	}

	// F: reenquadra o sprite
	if rl.IsKeyPressed(rl.KeyF) {
		a.frameScene()
	}
}

// updateInput processa entradas de teclado gerais.
func (a *App) updateInput() {
	if rl.IsKeyPressed(rl.KeyF3) {
		a.Config.ShowDebugInfo = !a.Config.ShowDebugInfo
	}
	if rl.IsKeyPressed(rl.KeyF4) {
		a.renderer.Wireframe = !a.renderer.Wireframe
	}
	if rl.IsKeyPressed(rl.KeyF11) {
		rl.ToggleFullscreen()
	}

	// N / B: próximo / anterior sprite numerado
	if rl.IsKeyPressed(rl.KeyN) || rl.IsKeyPressed(rl.KeyB) {
		delta := 1
		if rl.IsKeyPressed(rl.KeyB) {
			delta = -1
		}
		a.mu.Lock()
		next := imagesrc.StepSprite(a.image, delta)
		a.mu.Unlock()
		a.requestSprite(next)
	}

	// + / -: escala do próximo pedido
	if rl.IsKeyPressed(rl.KeyEqual) || rl.IsKeyPressed(rl.KeyMinus) {
		a.mu.Lock()
		if rl.IsKeyPressed(rl.KeyEqual) {
			a.scale *= 1.25
		} else {
			a.scale /= 1.25
		}
		image := a.image
		a.mu.Unlock()
		a.requestSprite(image)
	}

	// Inspecionar com clique direito
	if rl.IsMouseButtonPressed(rl.MouseRightButton) {
		ray := rl.GetMouseRay(rl.GetMousePosition(), a.Cam.RLCamera)
		if m, ok := a.renderer.Pick(ray); ok {
			a.selected = m
		} else {
			a.selected = nil
		}
	}

	if rl.IsKeyPressed(rl.KeyEscape) {
		switch a.State {
		case StateViewing:
			a.State = StatePaused
		case StatePaused:
			a.State = StateViewing
		}
	}
}
