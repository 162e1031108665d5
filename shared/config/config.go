package config

import (
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"
)

// Config armazena as configurações do SpriteVision.
type Config struct {
	// Importação
	ImageName string  `json:"image_name" toml:"image_name"`
	ImageDir  string  `json:"image_dir" toml:"image_dir"`
	Scale     float64 `json:"scale" toml:"scale"`

	// Persistência (SQLite)
	DBPath string `json:"db_path" toml:"db_path"`

	// Servidor (Usado pelo Servidor)
	ServerAddr string `json:"server_addr" toml:"server_addr"`

	// SpriteVision Server (Usado pelo Cliente)
	ServerURL string `json:"server_url" toml:"server_url"`

	// Janela
	WindowWidth  int32  `json:"window_width" toml:"window_width"`
	WindowHeight int32  `json:"window_height" toml:"window_height"`
	WindowTitle  string `json:"window_title" toml:"window_title"`
	Fullscreen   bool   `json:"fullscreen" toml:"fullscreen"`
	TargetFPS    int32  `json:"target_fps" toml:"target_fps"`

	// Câmera
	CameraSpeed float32 `json:"camera_speed" toml:"camera_speed"`
	ZoomSpeed   float32 `json:"zoom_speed" toml:"zoom_speed"`

	// Debug
	LogLevel      string `json:"log_level" toml:"log_level"`
	ShowDebugInfo bool   `json:"show_debug_info" toml:"show_debug_info"`
	WireframeMode bool   `json:"wireframe_mode" toml:"wireframe_mode"`
}

// DefaultConfig retorna a configuração padrão.
func DefaultConfig() *Config {
	return &Config{
		ImageName: "dude1.png",
		ImageDir:  filepath.Join("assets", "sprites"),
		Scale:     0.3,

		DBPath: filepath.Join("saves", "sprites.db"),

		ServerAddr: "127.0.0.1:8080",
		ServerURL:  "ws://127.0.0.1:8080/ws",

		WindowWidth:  1280,
		WindowHeight: 720,
		WindowTitle:  "SpriteVision",
		Fullscreen:   false,
		TargetFPS:    60,

		CameraSpeed: 10.0,
		ZoomSpeed:   5.0,

		LogLevel:      "info",
		ShowDebugInfo: true,
		WireframeMode: false,
	}
}

// DefaultPath retorna o caminho do config.json ao lado do executável.
func DefaultPath() string {
	execDir, err := os.Executable()
	if err != nil {
		return "config.json"
	}
	return filepath.Join(filepath.Dir(execDir), "config.json")
}

func isTOML(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".toml")
}

// Load carrega as configurações de um arquivo JSON (ou TOML, pela extensão).
// Se o arquivo não existir, retorna as configurações padrão. Campos ausentes
// mantêm o valor padrão.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		path = DefaultPath()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, errors.Wrapf(err, "falha ao ler %s", path)
	}

	if isTOML(path) {
		err = toml.Unmarshal(data, cfg)
	} else {
		err = json.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "falha ao parsear %s", path)
	}
	return cfg, cfg.Validate()
}

// Validate rejeita valores que tornariam a importação impossível.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.ImageName) == "" {
		return errors.New("image_name vazio")
	}
	if math.IsNaN(c.Scale) || math.IsInf(c.Scale, 0) {
		return errors.Errorf("scale inválida: %v", c.Scale)
	}
	return nil
}

// Save salva as configurações no formato indicado pela extensão.
func (c *Config) Save(path string) error {
	if path == "" {
		path = DefaultPath()
	}
	var (
		data []byte
		err  error
	)
	if isTOML(path) {
		data, err = toml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
