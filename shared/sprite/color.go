package sprite

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/pkg/errors"
)

// ColorKey identifica um grupo de pixels pela cor RGB exata (sem tolerância).
type ColorKey struct {
	R, G, B float64
}

// String formata a cor com 4 casas por canal, separadas por espaço ("0.5000 0.2500 1.0000").
// É o mesmo texto que compõe o nome do material.
func (k ColorKey) String() string {
	return fmt.Sprintf("%.4f %.4f %.4f", k.R, k.G, k.B)
}

// RGBA devolve a cor com alfa fixo 1.0.
func (k ColorKey) RGBA() [4]float64 {
	return [4]float64{k.R, k.G, k.B, 1.0}
}

// Colorful converte para go-colorful (sem clamp).
func (k ColorKey) Colorful() colorful.Color {
	return colorful.Color{R: k.R, G: k.G, B: k.B}
}

// Hex retorna "#rrggbb". Canais fora de [0,1] são truncados.
func (k ColorKey) Hex() string {
	return k.Colorful().Clamped().Hex()
}

// Bytes converte para 8 bits por canal, com alfa 255.
func (k ColorKey) Bytes() [4]uint8 {
	r, g, b := k.Colorful().Clamped().RGB255()
	return [4]uint8{r, g, b, 255}
}

// ParseColorKey interpreta o formato produzido por ColorKey.String.
func ParseColorKey(s string) (ColorKey, error) {
	fields := strings.Fields(s)
	if len(fields) != 3 {
		return ColorKey{}, errors.Errorf("cor inválida %q: esperados 3 canais, encontrados %d", s, len(fields))
	}
	var ch [3]float64
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return ColorKey{}, errors.Wrapf(err, "cor inválida %q", s)
		}
		ch[i] = v
	}
	return ColorKey{R: ch[0], G: ch[1], B: ch[2]}, nil
}
