package main

import (
	"context"
	"net"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"time"

	"SpriteVision/shared/config"
	"SpriteVision/shared/logging"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
)

func exe(name string) string {
	if runtime.GOOS == "windows" {
		return name + ".exe"
	}
	return name
}

func main() {
	app := &cli.App{
		Name:  "SpriteVision",
		Usage: "inicia o servidor e abre o cliente",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "configuração repassada aos dois processos"},
			&cli.DurationFlag{Name: "timeout", Value: 15 * time.Second, Usage: "tempo máximo esperando o servidor"},
		},
		Action: launch,
	}
	if err := app.Run(os.Args); err != nil {
		logging.New("Launcher", "info").Fatalw("Erro fatal", "error", err)
	}
}

func launch(c *cli.Context) error {
	log := logging.New("Launcher", "info")
	log.Info("╔══════════════════════════════════════╗")
	log.Info("║        SpriteVision Launcher         ║")
	log.Info("╚══════════════════════════════════════╝")

	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return err
	}
	var extra []string
	if p := c.String("config"); p != "" {
		abs, err := filepath.Abs(p)
		if err != nil {
			return errors.Wrap(err, "caminho da configuração")
		}
		extra = []string{"--config", abs}
	}

	log.Info("[1/2] Iniciando Servidor...")
	server, err := start(filepath.Join("servidor", exe("server")), extra)
	if err != nil {
		return errors.Wrap(err, "erro ao iniciar servidor")
	}
	defer func() {
		if server.Process != nil {
			_ = server.Process.Kill()
			_ = server.Wait()
		}
	}()

	log.Infow("Aguardando o servidor...", "addr", cfg.ServerAddr)
	ctx, cancel := context.WithTimeout(c.Context, c.Duration("timeout"))
	defer cancel()
	if err := waitForServer(ctx, cfg.ServerAddr); err != nil {
		return err
	}

	log.Info("[2/2] Abrindo Cliente...")
	client, err := start(filepath.Join("cliente", exe("client")), extra)
	if err != nil {
		return errors.Wrap(err, "não foi possível executar o cliente")
	}
	log.Info("SpriteVision foi iniciado. O servidor será encerrado quando o cliente fechar.")
	return client.Wait()
}

// start executa o binário com o diretório de trabalho na pasta dele.
func start(path string, args []string) (*exec.Cmd, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	cmd := exec.Command(abs, args...)
	cmd.Dir = filepath.Dir(abs)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd, cmd.Start()
}

// waitForServer tenta abrir uma conexão TCP até o servidor aceitar.
func waitForServer(ctx context.Context, addr string) error {
	var d net.Dialer
	for {
		conn, err := d.DialContext(ctx, "tcp", addr)
		if err == nil {
			return conn.Close()
		}
		select {
		case <-ctx.Done():
			return errors.Wrapf(ctx.Err(), "servidor não respondeu em %s", addr)
		case <-time.After(200 * time.Millisecond):
		}
	}
}
