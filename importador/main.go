// Comando importador roda o pipeline de sprites fora do servidor: importa imagens para o
// banco SQLite, renomeia diretórios de sprites e lista o que já foi gravado.
package main

import (
	"os"

	"SpriteVision/shared/logging"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"
)

const (
	flagConfig = "config"
	flagImage  = "image"
	flagScale  = "scale"
	flagDB     = "db"
	flagDir    = "dir"
	flagDryRun = "dry-run"
	flagDebug  = "debug"
)

func newApp() *cli.App {
	return &cli.App{
		Name:            "importador",
		Usage:           "converte sprites em quads coloridos",
		HideHelpCommand: true,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: flagConfig, Aliases: []string{"c"}, Usage: "carrega a configuração de `FILE` (json ou toml)"},
			&cli.BoolFlag{Name: flagDebug, Aliases: []string{"vvv"}, Usage: "log em nível debug"},
		},
		Commands: []*cli.Command{
			{
				Name:  "import",
				Usage: "importa uma imagem",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: flagImage, Usage: "nome da imagem dentro de --dir"},
					&cli.Float64Flag{Name: flagScale, Usage: "tamanho do pixel"},
					&cli.StringFlag{Name: flagDB, Usage: "banco SQLite"},
					&cli.StringFlag{Name: flagDir, Usage: "diretório das imagens"},
					&cli.BoolFlag{Name: flagDryRun, Usage: "não grava no banco, só mostra os grupos"},
				},
				Action: ImportAction,
			},
			{
				Name:  "import-all",
				Usage: "importa todas as imagens de um diretório",
				Flags: []cli.Flag{
					&cli.Float64Flag{Name: flagScale, Usage: "tamanho do pixel"},
					&cli.StringFlag{Name: flagDB, Usage: "banco SQLite"},
					&cli.StringFlag{Name: flagDir, Usage: "diretório das imagens"},
					&cli.BoolFlag{Name: flagDryRun, Usage: "não grava no banco"},
				},
				Action: ImportAllAction,
			},
			{
				Name:  "rename",
				Usage: "renomeia as imagens de um diretório para dude1.png, dude2.png, ...",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: flagDir, Usage: "diretório das imagens"},
					&cli.BoolFlag{Name: flagDryRun, Usage: "só mostra o plano"},
				},
				Action: RenameAction,
			},
			{
				Name:  "list",
				Usage: "lista objetos e materiais gravados",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: flagDB, Usage: "banco SQLite"},
				},
				Action: ListAction,
			},
		},
	}
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		color.Red("%v", err)
		os.Exit(1)
	}
}

func newLogger(c *cli.Context, level string) logging.Logger {
	if c.Bool(flagDebug) {
		level = "debug"
	}
	cfg := logging.NewConfig(level)
	cfg.OutputPaths = []string{"stderr"}
	l, err := cfg.Build()
	if err != nil {
		return logging.Nop()
	}
	return l.Sugar().Named("Importador")
}
