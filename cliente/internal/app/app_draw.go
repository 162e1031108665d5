package app

import (
	"fmt"

	"SpriteVision/shared/sprite"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// draw renderiza a cena.
func (a *App) draw() {
	rl.BeginDrawing()
	rl.ClearBackground(rl.NewColor(30, 30, 40, 255))

	if a.State == StateLoading {
		a.drawLoadingScreen()
	} else {
		a.drawScene()
		a.drawHUD()
		if a.State == StatePaused {
			a.drawPauseMenu()
		}
	}

	rl.EndDrawing()
}

// drawScene renderiza a cena 3D.
func (a *App) drawScene() {
	rl.BeginMode3D(a.Cam.RLCamera)
	a.renderer.Draw()
	if a.selected != nil {
		lo, hi := a.selected.Min, a.selected.Max
		rl.DrawBoundingBox(rl.BoundingBox{
			Min: rl.Vector3{X: float32(lo[0]), Y: float32(lo[1]), Z: float32(lo[2]) - 0.01},
			Max: rl.Vector3{X: float32(hi[0]), Y: float32(hi[1]), Z: float32(hi[2]) + 0.01},
		}, rl.Yellow)
	}
	rl.EndMode3D()
}

// drawHUD desenha a interface sobreposta.
func (a *App) drawHUD() {
	if !a.Config.ShowDebugInfo {
		return
	}

	a.mu.Lock()
	image, scale, status, serverObjects := a.image, a.scale, a.status, a.serverObjects
	a.mu.Unlock()

	width := int32(340)
	height := int32(200)
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

	syncStatus, syncColor := "Offline", rl.Red
	if nc := a.network(); nc != nil && nc.IsConnected() {
		syncStatus, syncColor = "Conectado", rl.Green
	}
	rl.DrawText(syncStatus, x+215, y+10, 20, syncColor)

	rl.DrawLine(x+10, y+35, x+width-10, y+35, rl.NewColor(100, 100, 100, 100))

	rl.DrawText("SPRITE", x+10, y+45, 12, rl.Gray)
	rl.DrawText(image, x+10, y+60, 16, rl.Gold)

	faces := 0
	models := a.renderer.Models()
	for _, m := range models {
		faces += m.Faces
	}
	rl.DrawText(fmt.Sprintf("Objetos: %d/%d | Quads: %d", len(models), serverObjects, faces), x+10, y+80, 14, rl.LightGray)
	rl.DrawText(fmt.Sprintf("Escala do próximo pedido: %.3f", scale), x+10, y+97, 14, rl.LightGray)
	rl.DrawText(status, x+10, y+114, 14, rl.SkyBlue)

	rl.DrawLine(x+10, y+135, x+width-10, y+135, rl.NewColor(100, 100, 100, 100))

	rl.DrawText("CONTROLES", x+10, y+145, 12, rl.Gray)
	rl.DrawText("N/B: Sprite | +/-: Escala | F: Enquadrar", x+10, y+160, 14, rl.LightGray)

	wireframeExtra := ""
	if a.renderer.Wireframe {
		wireframeExtra = " [WIREFRAME ON]"
	}
	rl.DrawText(fmt.Sprintf("F4: Wireframe | F11: Tela Cheia | F3: HUD%s", wireframeExtra), x+10, y+177, 12, rl.SkyBlue)

	a.drawSelectedInfo()

	title := "SpriteVision v0.1.0"
	titleWidth := rl.MeasureText(title, 18)
	rl.DrawText(title,
		int32(rl.GetScreenWidth())-titleWidth-20, int32(rl.GetScreenHeight())-30,
		18, rl.NewColor(200, 200, 200, 150))
}

// drawSelectedInfo mostra o objeto escolhido com clique direito.
func (a *App) drawSelectedInfo() {
	m := a.selected
	if m == nil {
		return
	}

	width := int32(280)
	height := int32(130)
	x := int32(rl.GetScreenWidth()) - width - 10
	y := int32(220)

	rl.DrawRectangle(x, y, width, height, rl.NewColor(0, 0, 0, 200))
	rl.DrawRectangleLines(x, y, width, height, rl.NewColor(255, 215, 0, 255))

	rl.DrawText("INSPEÇÃO", x+15, y+15, 18, rl.Gold)
	rl.DrawLine(x+15, y+40, x+width-15, y+40, rl.NewColor(100, 100, 100, 255))

	key := sprite.ColorKey{R: float64(m.Color.R) / 255, G: float64(m.Color.G) / 255, B: float64(m.Color.B) / 255}
	rl.DrawText(m.Name, x+15, y+50, 16, rl.White)
	rl.DrawText(fmt.Sprintf("Quads: %d", m.Faces), x+15, y+70, 14, rl.LightGray)
	rl.DrawRectangle(x+15, y+90, 24, 24, m.Color)
	rl.DrawRectangleLines(x+15, y+90, 24, 24, rl.White)
	rl.DrawText(fmt.Sprintf("%s (%s)", key.Hex(), sprite.NearestName(key)), x+45, y+95, 14, rl.White)
}

// drawPauseMenu desenha o menu de escape centralizado.
func (a *App) drawPauseMenu() {
	screenWidth := int32(rl.GetScreenWidth())
	screenHeight := int32(rl.GetScreenHeight())

	rl.DrawRectangle(0, 0, screenWidth, screenHeight, rl.NewColor(0, 0, 0, 150))

	panelWidth := int32(400)
	panelHeight := int32(200)
	panelX := (screenWidth - panelWidth) / 2
	panelY := (screenHeight - panelHeight) / 2

	rl.DrawRectangle(panelX, panelY, panelWidth, panelHeight, rl.NewColor(30, 30, 35, 255))
	rl.DrawRectangleLines(panelX, panelY, panelWidth, panelHeight, rl.White)

	menuTitle := "MENU DE PAUSA"
	titleWidth := rl.MeasureText(menuTitle, 24)
	rl.DrawText(menuTitle, panelX+(panelWidth-titleWidth)/2, panelY+30, 24, rl.Gold)

	if a.drawButton(panelX+50, panelY+90, panelWidth-100, 40, "RETOMAR (ESC)", rl.Green) {
		a.State = StateViewing
	}
	if a.drawButton(panelX+50, panelY+140, panelWidth-100, 40, "RECARREGAR SPRITE", rl.Gray) {
		a.mu.Lock()
		image := a.image
		a.mu.Unlock()
		a.requestSprite(image)
		a.State = StateViewing
	}
}

// drawButton desenha um botão genérico com hover e retorna true se clicado.
func (a *App) drawButton(x, y, w, h int32, text string, color rl.Color) bool {
	mousePos := rl.GetMousePosition()
	isHover := mousePos.X >= float32(x) && mousePos.X <= float32(x+w) &&
		mousePos.Y >= float32(y) && mousePos.Y <= float32(y+h)

	drawColor := color
	if isHover {
		drawColor.R += 30
		drawColor.G += 30
		drawColor.B += 30
	}

	rl.DrawRectangle(x, y, w, h, rl.NewColor(50, 50, 50, 255))
	rl.DrawRectangleLines(x, y, w, h, drawColor)

	textWidth := rl.MeasureText(text, 18)
	rl.DrawText(text, x+(w-textWidth)/2, y+(h-18)/2, 18, rl.White)

	return isHover && rl.IsMouseButtonPressed(rl.MouseLeftButton)
}

func (a *App) drawLoadingScreen() {
	screenWidth := int32(rl.GetScreenWidth())
	screenHeight := int32(rl.GetScreenHeight())

	rl.DrawRectangle(0, 0, screenWidth, screenHeight, rl.NewColor(20, 20, 25, 255))

	title := "SPRITEVISION"
	titleWidth := rl.MeasureText(title, 40)
	rl.DrawText(title, (screenWidth-titleWidth)/2, screenHeight/2-60, 40, rl.Gold)

	a.mu.Lock()
	status := a.status
	a.mu.Unlock()
	statusWidth := rl.MeasureText(status, 18)
	rl.DrawText(status, (screenWidth-statusWidth)/2, screenHeight/2+20, 18, rl.LightGray)

	// Barra indeterminada
	barWidth := int32(400)
	barX := (screenWidth - barWidth) / 2
	barY := screenHeight/2 + 60
	rl.DrawRectangle(barX, barY, barWidth, 6, rl.DarkGray)
	pos := int32(a.frameCount*4) % (barWidth - 80)
	rl.DrawRectangle(barX+pos, barY, 80, 6, rl.Orange)
}
