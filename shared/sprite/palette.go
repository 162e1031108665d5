package sprite

import "github.com/lucasb-eyer/go-colorful"

// NamedColor é uma cor de referência usada para rotular grupos nos relatórios.
type NamedColor struct {
	Token   string
	R, G, B uint8
}

// Palette é a tabela de cores nomeadas (subconjunto da paleta do Dwarf Fortress).
var Palette = []NamedColor{
	{"AMBER", 255, 191, 0},
	{"AQUA", 0, 255, 255},
	{"AZURE", 0, 127, 255},
	{"BEIGE", 245, 245, 220},
	{"BLACK", 0, 0, 0},
	{"BLUE", 0, 0, 255},
	{"BRONZE", 205, 127, 50},
	{"BROWN", 150, 75, 0},
	{"CARDINAL", 196, 30, 58},
	{"CHARCOAL", 54, 69, 79},
	{"CHARTREUSE", 127, 255, 0},
	{"CHOCOLATE", 210, 105, 30},
	{"COBALT", 0, 71, 171},
	{"COPPER", 184, 115, 51},
	{"CREAM", 255, 253, 208},
	{"CRIMSON", 220, 20, 60},
	{"DARK_BLUE", 0, 0, 139},
	{"DARK_BROWN", 101, 67, 33},
	{"DARK_GREEN", 1, 50, 32},
	{"DARK_TAN", 145, 129, 81},
	{"GOLD", 212, 175, 55},
	{"GRAY", 128, 128, 128},
	{"GREEN", 0, 255, 0},
	{"INDIGO", 75, 0, 130},
	{"LAVENDER", 230, 230, 250},
	{"MAROON", 128, 0, 0},
	{"NAVY_BLUE", 0, 0, 128},
	{"OCHRE", 204, 119, 34},
	{"OLIVE", 128, 128, 0},
	{"ORANGE", 255, 165, 0},
	{"PALE_BLUE", 175, 238, 238},
	{"PEACH", 255, 229, 180},
	{"PINK", 255, 192, 203},
	{"PURPLE", 128, 0, 128},
	{"RED", 255, 0, 0},
	{"SILVER", 192, 192, 192},
	{"TAN", 210, 180, 140},
	{"TEAL", 0, 128, 128},
	{"VIOLET", 143, 0, 255},
	{"WHITE", 255, 255, 255},
	{"YELLOW", 255, 255, 0},
}

// NearestName encontra a cor nomeada mais próxima usando distância em Lab.
func NearestName(k ColorKey) string {
	target := k.Colorful().Clamped()
	best := "GRAY"
	bestDist := -1.0
	for _, c := range Palette {
		ref := colorful.Color{R: float64(c.R) / 255, G: float64(c.G) / 255, B: float64(c.B) / 255}
		d := target.DistanceLab(ref)
		if bestDist < 0 || d < bestDist {
			bestDist = d
			best = c.Token
		}
	}
	return best
}
