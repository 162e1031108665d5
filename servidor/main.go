package main

import (
	"context"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"SpriteVision/shared/config"
	"SpriteVision/shared/imagesrc"
	"SpriteVision/shared/logging"
	"SpriteVision/shared/store"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"go.uber.org/multierr"
)

const (
	flagConfig = "config"
	flagImage  = "image"
	flagScale  = "scale"
	flagAddr   = "addr"
	flagDB     = "db"
	flagNoDB   = "no-db"
	flagDebug  = "debug"
)

func main() {
	// Garante que o working directory é o mesmo diretório do executável,
	// para que caminhos relativos (saves/, assets/) funcionem corretamente.
	if exePath, err := os.Executable(); err == nil {
		_ = os.Chdir(filepath.Dir(exePath))
	}

	app := &cli.App{
		Name:  "servidor",
		Usage: "importa um sprite e serve as malhas via WebSocket",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: flagConfig, Aliases: []string{"c"}, Usage: "carrega a configuração de `FILE` (json ou toml)"},
			&cli.StringFlag{Name: flagImage, Usage: "imagem inicial (sobrepõe image_name)"},
			&cli.Float64Flag{Name: flagScale, Usage: "tamanho do pixel (sobrepõe scale)"},
			&cli.StringFlag{Name: flagAddr, EnvVars: []string{"SV_ADDR"}, Usage: "endereço HTTP (sobrepõe server_addr)"},
			&cli.StringFlag{Name: flagDB, Usage: "banco SQLite (sobrepõe db_path)"},
			&cli.BoolFlag{Name: flagNoDB, Usage: "não persiste a cena"},
			&cli.BoolFlag{Name: flagDebug, Usage: "log em nível debug"},
		},
		Action: runServer,
	}

	if err := app.Run(os.Args); err != nil {
		logging.New("Servidor", "info").Fatalw("Erro fatal", "error", err)
	}
}

func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg, err := config.Load(c.String(flagConfig))
	if err != nil {
		return nil, err
	}
	if c.IsSet(flagImage) {
		cfg.ImageName = c.String(flagImage)
	}
	if c.IsSet(flagScale) {
		cfg.Scale = c.Float64(flagScale)
	}
	if c.IsSet(flagAddr) {
		cfg.ServerAddr = c.String(flagAddr)
	}
	if c.IsSet(flagDB) {
		cfg.DBPath = c.String(flagDB)
	}
	if c.Bool(flagDebug) {
		cfg.LogLevel = "debug"
	}
	return cfg, cfg.Validate()
}

func runServer(c *cli.Context) (err error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	var logPaths []string
	if err := os.MkdirAll("tmp", 0755); err == nil {
		logPaths = append(logPaths, filepath.Join("tmp", "server.log"))
	}
	log := logging.New("Servidor", cfg.LogLevel, logPaths...)
	defer func() { _ = log.Sync() }()

	log.Info("╔══════════════════════════════════════╗")
	log.Info("║      SpriteVision SERVER v0.1.0      ║")
	log.Info("╚══════════════════════════════════════╝")

	var st *store.Store
	if !c.Bool(flagNoDB) {
		st, err = store.Open(cfg.DBPath, log.Named("Store"))
		if err != nil {
			return err
		}
		defer func() { err = multierr.Append(err, st.Close()) }()
	}

	hub := newHub(log.Named("Hub"))
	go hub.run()
	defer hub.Stop()

	srv := newSpriteServer(hub, imagesrc.Dir(cfg.ImageDir), st, log)

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if _, err := srv.importSprite(ctx, cfg.ImageName, cfg.Scale); err != nil {
		// O servidor sobe mesmo assim; o cliente pode pedir outra imagem.
		log.Errorw("Falha na importação inicial", "image", cfg.ImageName, "error", err)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", srv.serveWs)

	ln, err := net.Listen("tcp", cfg.ServerAddr)
	if err != nil {
		log.Error("Não foi possível abrir a porta. Provavelmente há outra instância do servidor rodando.")
		return errors.Wrapf(err, "falha ao escutar em %s", cfg.ServerAddr)
	}

	httpSrv := &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = httpSrv.Shutdown(shutdownCtx)
	}()

	log.Infow("Servidor SpriteVision iniciado", "addr", ln.Addr().String(), "image_dir", cfg.ImageDir)
	if err := httpSrv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "erro fatal no servidor HTTP")
	}
	log.Info("Servidor encerrado")
	return nil
}
