package main

import (
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
)

// component é um executável do projeto.
type component struct {
	Name    string
	Dir     string
	Output  string
	Cgo     bool
	LDFlags string
}

func exe(name string) string {
	if runtime.GOOS == "windows" {
		return name + ".exe"
	}
	return name
}

func components(static bool) []component {
	staticFlags := ""
	if static {
		staticFlags = "-extldflags=-static "
	}
	guiFlags := ""
	if runtime.GOOS == "windows" {
		guiFlags = " -H=windowsgui"
	}
	return []component{
		// Servidor e importador usam SQLite (CGO)
		{"SERVIDOR (CGO)", "servidor", "servidor/" + exe("server"), true, staticFlags + "-s -w"},
		{"IMPORTADOR (CGO)", "importador", "importador/" + exe("importador"), true, staticFlags + "-s -w"},
		{"CLIENTE (CGO + GUI)", "cliente", "cliente/" + exe("client"), true, staticFlags + "-s -w" + guiFlags},
		{"LAUNCHER (Pure Go)", "launcher", exe("SpriteVision"), false, "-s -w"},
	}
}

func main() {
	app := &cli.App{
		Name:  "builder",
		Usage: "compila todos os executáveis do SpriteVision",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "static", Value: runtime.GOOS == "windows", Usage: "link estático"},
			&cli.StringSliceFlag{Name: "only", Usage: "compila só os diretórios dados (ex: --only servidor)"},
			&cli.BoolFlag{Name: "wait", Value: runtime.GOOS == "windows", Usage: "espera Enter antes de sair"},
		},
		Action: build,
	}
	if err := app.Run(os.Args); err != nil {
		color.Red("\n[ERRO FATAL] %v", err)
		os.Exit(1)
	}
}

func build(c *cli.Context) error {
	color.Cyan("╔══════════════════════════════════════╗")
	color.Cyan("║      SpriteVision Native Builder     ║")
	color.Cyan("╚══════════════════════════════════════╝")
	start := time.Now()

	setupEnvironment()

	only := map[string]bool{}
	for _, d := range c.StringSlice("only") {
		only[d] = true
	}
	for _, comp := range components(c.Bool("static")) {
		if len(only) > 0 && !only[comp.Dir] {
			continue
		}
		if err := buildComponent(comp); err != nil {
			return err
		}
	}

	color.Cyan("\nBuild finalizada com sucesso em %v!", time.Since(start).Round(time.Second))
	color.Yellow("Dica: Execute o '%s' para abrir o visualizador.", exe("SpriteVision"))
	if c.Bool("wait") {
		fmt.Println("\nPressione Enter para sair...")
		fmt.Scanln()
	}
	return nil
}

func setupEnvironment() {
	color.Yellow("\n[0] Configurando ambiente de compilação...")

	// Adicionar MSYS2 ao PATH se estiver no Windows
	if runtime.GOOS == "windows" {
		msysPath := `C:\msys64\mingw64\bin`
		currentPath := os.Getenv("PATH")
		if !strings.Contains(currentPath, msysPath) {
			os.Setenv("PATH", msysPath+";"+currentPath)
			fmt.Printf("  - PATH atualizado: %s adicionado.\n", msysPath)
		}
		os.Setenv("CC", "gcc")
		fmt.Println("  - Compilador C: gcc (MSYS2)")
	}
}

func buildComponent(comp component) error {
	color.Yellow("\n[+] Compilando %s...", comp.Name)

	cgoValue := "0"
	if comp.Cgo {
		cgoValue = "1"
	}

	cmd := exec.Command("go", "build", "-ldflags", comp.LDFlags, "-o", comp.Output, "./"+comp.Dir)
	cmd.Env = append(os.Environ(), "CGO_ENABLED="+cgoValue)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		return errors.Wrapf(err, "falha ao compilar %s", comp.Name)
	}
	color.Green("  - %s compilado com sucesso -> %s", comp.Name, comp.Output)
	return nil
}
