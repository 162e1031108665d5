package app

import (
	"context"
	"sync"

	"SpriteVision/cliente/internal/camera"
	"SpriteVision/cliente/internal/client"
	"SpriteVision/cliente/internal/render"
	"SpriteVision/shared/config"
	"SpriteVision/shared/logging"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// AppState representa os estados possíveis da aplicação.
type AppState int

const (
	StateLoading AppState = iota // Aguardando o primeiro sprite
	StateViewing                 // Visualizando
	StatePaused                  // Pausado
)

// uploadBudget limita quantas operações de cena vão para a GPU por frame.
const uploadBudget = 256

// App é a aplicação principal do SpriteVision.
type App struct {
	Config *config.Config
	State  AppState
	log    logging.Logger

	Cam       *camera.CameraController
	renderer  *render.Renderer
	netClient *client.NetworkClient

	cancel context.CancelFunc

	frameCount int
	selected   *render.SpriteModel
	needFrame  bool // reenquadra a câmera quando a cena muda

	// Estado compartilhado com a goroutine de rede
	mu            sync.Mutex
	image         string
	scale         float64
	status        string
	serverObjects int32
	sceneVersion  int
	lastVersion   int
}

// New cria uma nova instância da aplicação.
func New(cfg *config.Config, log logging.Logger) *App {
	return &App{
		Config: cfg,
		State:  StateLoading,
		log:    logging.OrNop(log),
		image:  cfg.ImageName,
		scale:  cfg.Scale,
		status: "Conectando ao servidor...",
	}
}

// Run inicia o loop principal da aplicação. Deve rodar na thread principal.
func (a *App) Run() {
	defer func() {
		if r := recover(); r != nil {
			a.log.Errorw("Erro fatal recuperado", "panic", r)
			panic(r)
		}
	}()

	rl.SetConfigFlags(rl.FlagMsaa4xHint | rl.FlagWindowResizable)
	rl.InitWindow(a.Config.WindowWidth, a.Config.WindowHeight, a.Config.WindowTitle)
	rl.SetTraceLogLevel(rl.LogWarning)
	if a.Config.Fullscreen {
		rl.ToggleFullscreen()
	}
	rl.SetTargetFPS(a.Config.TargetFPS)
	rl.SetExitKey(0) // ESC pausa em vez de fechar

	a.Cam = camera.New(a.Config.CameraSpeed, a.Config.ZoomSpeed)
	a.renderer = render.NewRenderer(a.log.Named("Renderer"))
	a.renderer.Wireframe = a.Config.WireframeMode

	a.log.Infow("Janela inicializada", "width", a.Config.WindowWidth, "height", a.Config.WindowHeight)

	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel
	go a.connectServer(ctx)

	for !rl.WindowShouldClose() {
		a.update()
		a.draw()
	}

	a.shutdown()
	rl.CloseWindow()
}

// update atualiza a lógica a cada frame.
func (a *App) update() {
	a.frameCount++

	if n := a.renderer.ProcessPending(uploadBudget); n > 0 {
		a.selected = nil
	}

	a.mu.Lock()
	changed := a.sceneVersion != a.lastVersion
	a.lastVersion = a.sceneVersion
	a.mu.Unlock()
	if changed {
		a.needFrame = true
		if a.State == StateLoading {
			a.State = StateViewing
		}
	}
	// Enquadra só depois que a fila esvaziou, para a caixa incluir todos os objetos.
	if a.needFrame && a.renderer.Len() == len(a.renderer.Models()) {
		a.frameScene()
		a.needFrame = false
	}

	switch a.State {
	case StateViewing, StateLoading:
		a.updateCamera()
		a.updateInput()
	case StatePaused:
		a.updateInput()
	}
}

func (a *App) frameScene() {
	lo, hi, ok := a.renderer.Bounds()
	if !ok {
		return
	}
	a.Cam.Frame(
		rl.Vector3{X: float32(lo[0]), Y: float32(lo[1]), Z: float32(lo[2])},
		rl.Vector3{X: float32(hi[0]), Y: float32(hi[1]), Z: float32(hi[2])},
	)
}

// shutdown realiza a limpeza de recursos.
func (a *App) shutdown() {
	a.log.Info("Finalizando aplicação...")
	if a.cancel != nil {
		a.cancel()
	}
	if nc := a.network(); nc != nil {
		_ = nc.Close()
	}
	a.renderer.Close()

	a.Config.WireframeMode = a.renderer.Wireframe
	if err := a.Config.Save(""); err != nil {
		a.log.Warnw("Erro ao salvar configurações", "error", err)
	}
}
