// Package imagesrc carrega imagens de sprite e as converte em buffers de pixels.
package imagesrc

import (
	"context"
	"image"
	"image/draw"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"SpriteVision/shared/sprite"

	"github.com/disintegration/imaging"
	"github.com/pkg/errors"
	_ "golang.org/x/image/bmp"  // registra decodificador
	_ "golang.org/x/image/webp" // registra decodificador
)

// ErrNotFound indica que o recurso de imagem não existe.
var ErrNotFound = errors.New("imagem não encontrada")

// Source fornece imagens pelo nome.
type Source interface {
	Lookup(ctx context.Context, name string) (*sprite.Image, error)
}

// Extensions lista as extensões aceitas por List.
var Extensions = []string{".png", ".jpg", ".jpeg", ".gif", ".bmp", ".tif", ".tiff", ".webp"}

// Dir carrega imagens de um diretório.
type Dir string

// Lookup abre <dir>/<name>. Não há nova tentativa nem imagem substituta.
// Nomes que saem de dir (absolutos, com "..") são tratados como inexistentes.
func (d Dir) Lookup(ctx context.Context, name string) (*sprite.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !filepath.IsLocal(name) {
		return nil, errors.Wrapf(ErrNotFound, "%q fora do diretório de imagens", name)
	}
	path := filepath.Join(string(d), name)
	img, err := imaging.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, errors.Wrapf(ErrNotFound, "%s", path)
		}
		return nil, errors.Wrapf(err, "falha ao decodificar %s", path)
	}
	return FromImage(name, img), nil
}

// FromImage converte img para um buffer RGBA em [0,1], não pré-multiplicado.
// A linha 0 do buffer é a linha de baixo da figura (origem no canto inferior esquerdo,
// como nos editores 3D), e cada canal vale byte/255, então opaco é exatamente 1.0.
func FromImage(name string, img image.Image) *sprite.Image {
	b := img.Bounds()
	nrgba, ok := img.(*image.NRGBA)
	if !ok || b.Min != (image.Point{}) {
		nrgba = image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
		draw.Draw(nrgba, nrgba.Bounds(), img, b.Min, draw.Src)
	}

	w, h := b.Dx(), b.Dy()
	buf := make(sprite.PixelBuffer, 0, w*h*4)
	for r := 0; r < h; r++ {
		y := h - 1 - r
		row := nrgba.Pix[y*nrgba.Stride : y*nrgba.Stride+w*4]
		for _, v := range row {
			buf = append(buf, float64(v)/255)
		}
	}
	return &sprite.Image{Name: name, Width: w, Height: h, Pixels: buf}
}

// List retorna os nomes dos arquivos de imagem de dir, em ordem alfabética.
// Arquivos ocultos (iniciados por ".") ficam de fora.
func List(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "falha ao listar %s", dir)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") || !isImage(e.Name()) {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names, nil
}

func isImage(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range Extensions {
		if ext == e {
			return true
		}
	}
	return false
}

// Memory é uma Source em memória.
type Memory struct {
	mu     sync.RWMutex
	images map[string]*sprite.Image
}

// NewMemory cria uma Source vazia.
func NewMemory() *Memory {
	return &Memory{images: make(map[string]*sprite.Image)}
}

// Put registra uma imagem com o nome dela.
func (m *Memory) Put(img *sprite.Image) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.images[img.Name] = img
}

func (m *Memory) Lookup(ctx context.Context, name string) (*sprite.Image, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	img, ok := m.images[name]
	if !ok {
		return nil, errors.Wrap(ErrNotFound, name)
	}
	return img, nil
}
