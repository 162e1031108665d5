package app

import (
	"context"

	"SpriteVision/cliente/internal/client"
	"SpriteVision/shared/proto/svnet"
)

// connectServer conecta ao Servidor SpriteVision e liga os callbacks.
func (a *App) connectServer(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			a.log.Errorw("Pânico em connectServer", "panic", r)
		}
	}()

	nc := client.NewNetworkClient(a.Config.ServerURL, a.renderer, a.log.Named("Network"))

	nc.OnStatus = func(status *svnet.ServerStatus) {
		a.mu.Lock()
		a.status = status.Message
		a.serverObjects = status.Objects
		a.mu.Unlock()
	}
	nc.OnDone = func(done *svnet.SpriteDone) {
		a.mu.Lock()
		a.image = done.Image
		a.serverObjects = done.Objects
		a.sceneVersion++
		a.mu.Unlock()
	}
	nc.OnError = func(err error) {
		a.setStatus("Erro: " + err.Error())
	}
	nc.OnClose = func(err error) {
		a.setStatus("Conexão com o servidor perdida")
	}

	if err := nc.Connect(ctx); err != nil {
		a.log.Errorw("Erro ao conectar", "error", err)
		a.setStatus("Erro ao conectar ao Servidor. Verifique se o servidor está rodando.")
		return
	}
	a.mu.Lock()
	a.netClient = nc
	a.mu.Unlock()
	a.log.Info("Conectado ao Servidor SpriteVision!")
}

func (a *App) setStatus(s string) {
	a.mu.Lock()
	a.status = s
	a.mu.Unlock()
}

func (a *App) network() *client.NetworkClient {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.netClient
}

// requestSprite pede ao servidor outro sprite com a escala atual.
func (a *App) requestSprite(image string) {
	nc := a.network()
	if nc == nil {
		return
	}
	a.mu.Lock()
	scale := a.scale
	a.mu.Unlock()
	if err := nc.RequestSprite(image, scale); err != nil {
		a.log.Warnw("Falha ao pedir sprite", "image", image, "error", err)
		return
	}
	a.setStatus("Importando " + image + "...")
}
