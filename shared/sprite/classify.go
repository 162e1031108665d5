// Package sprite classifica os pixels de uma imagem de sprite em grupos de cor.
package sprite

import (
	"github.com/pkg/errors"
)

// ErrMalformedBuffer indica que o buffer não corresponde às dimensões informadas.
var ErrMalformedBuffer = errors.New("buffer de pixels malformado")

// PixelBuffer é uma sequência plana de quádruplas RGBA em [0,1], linha por linha.
type PixelBuffer []float64

// Image é um recurso de imagem já decodificado.
type Image struct {
	Name   string
	Width  int
	Height int
	Pixels PixelBuffer
}

// Classify agrupa os pixels totalmente opacos (alfa == 1.0 exato) pela cor RGB exata.
//
// O endereço do pixel (linha r, coluna c) é r*width+c, mas a visita é por coluna:
// todas as linhas da coluna 0, depois da coluna 1, e assim por diante. Cada pixel
// opaco vira o ponto (r*scale, -c*scale, 0) na lista da sua cor.
func Classify(buf PixelBuffer, width, height int, scale float64) (*ColorGroup, error) {
	if width <= 0 || height <= 0 {
		return nil, errors.Wrapf(ErrMalformedBuffer, "dimensões inválidas %dx%d", width, height)
	}
	if want := width * height * 4; len(buf) != want {
		return nil, errors.Wrapf(ErrMalformedBuffer, "tamanho %d, esperado %d para %dx%d", len(buf), want, width, height)
	}

	group := NewColorGroup()
	for c := 0; c < width; c++ {
		for r := 0; r < height; r++ {
			i := (r*width + c) * 4
			if buf[i+3] != 1.0 {
				continue
			}
			key := ColorKey{R: buf[i], G: buf[i+1], B: buf[i+2]}
			group.Append(key, Point3{float64(r) * scale, -float64(c) * scale, 0})
		}
	}
	return group, nil
}

// Classify aplica Classify às dimensões da própria imagem.
func (img *Image) Classify(scale float64) (*ColorGroup, error) {
	if img == nil {
		return nil, errors.Wrap(ErrMalformedBuffer, "imagem nula")
	}
	group, err := Classify(img.Pixels, img.Width, img.Height, scale)
	if err != nil {
		return nil, errors.Wrapf(err, "imagem %s", img.Name)
	}
	return group, nil
}

// CountOpaque conta os pixels com alfa exatamente 1.0.
func CountOpaque(buf PixelBuffer) int {
	n := 0
	for i := 3; i < len(buf); i += 4 {
		if buf[i] == 1.0 {
			n++
		}
	}
	return n
}
