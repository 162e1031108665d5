package main

import (
	"os"
	"path/filepath"
	"runtime"

	"SpriteVision/cliente/internal/app"
	"SpriteVision/shared/config"
	"SpriteVision/shared/logging"

	"github.com/urfave/cli/v2"
)

func main() {
	// IMPORTANTE para estabilidade no Windows: Raylib/OpenGL exige rodar na thread principal do SO
	runtime.LockOSThread()

	cliApp := &cli.App{
		Name:  "cliente",
		Usage: "visualizador 3D dos sprites importados pelo servidor",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "carrega a configuração de `FILE` (json ou toml)"},
			&cli.StringFlag{Name: "server", Usage: "URL do Servidor SpriteVision (padrão: ws://127.0.0.1:8080/ws)"},
			&cli.BoolFlag{Name: "fullscreen", Usage: "iniciar em tela cheia"},
			&cli.BoolFlag{Name: "debug", Usage: "mostrar informações de debug"},
			&cli.IntFlag{Name: "width", Usage: "largura da janela"},
			&cli.IntFlag{Name: "height", Usage: "altura da janela"},
		},
		Action: func(c *cli.Context) error {
			cfg, err := config.Load(c.String("config"))
			if err != nil {
				return err
			}

			// Flags sobrescrevem o config salvo
			if c.IsSet("server") {
				cfg.ServerURL = c.String("server")
			}
			if c.Bool("fullscreen") {
				cfg.Fullscreen = true
			}
			if c.Bool("debug") {
				cfg.ShowDebugInfo = true
				cfg.LogLevel = "debug"
			}
			if w := c.Int("width"); w > 0 {
				cfg.WindowWidth = int32(w)
			}
			if h := c.Int("height"); h > 0 {
				cfg.WindowHeight = int32(h)
			}

			var logPaths []string
			if exe, err := os.Executable(); err == nil {
				logPaths = append(logPaths, filepath.Join(filepath.Dir(exe), "debug_sv.log"))
			}
			log := logging.New("SpriteVision", cfg.LogLevel, logPaths...)
			defer func() { _ = log.Sync() }()

			log.Info("╔══════════════════════════════════════╗")
			log.Info("║         SpriteVision v0.1.0          ║")
			log.Info("║   Visualizador 3D de sprites em quads║")
			log.Info("╚══════════════════════════════════════╝")

			app.New(cfg, log).Run()
			return nil
		},
	}

	if err := cliApp.Run(os.Args); err != nil {
		logging.New("SpriteVision", "info").Fatalw("Erro fatal", "error", err)
	}
}
