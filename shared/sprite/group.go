package sprite

import (
	"cogentcore.org/core/ordmap"
	"github.com/go-gl/mathgl/mgl64"
)

// Point3 é a posição de uma instância de pixel na cena (z sempre 0 neste gerador).
type Point3 = mgl64.Vec3

// ColorGroup mapeia cada cor para a lista ordenada de pontos daquela cor.
// A ordem das chaves é a ordem em que cada cor apareceu na varredura,
// o que mantém estáveis os nomes dos objetos gerados.
type ColorGroup struct {
	m *ordmap.Map[ColorKey, []Point3]
}

// NewColorGroup cria um grupo vazio.
func NewColorGroup() *ColorGroup {
	return &ColorGroup{m: ordmap.New[ColorKey, []Point3]()}
}

// Append adiciona p à lista de key, criando a entrada se ainda não existir.
func (g *ColorGroup) Append(key ColorKey, p Point3) {
	idx, ok := g.m.IndexByKeyTry(key)
	if !ok {
		g.m.Add(key, nil)
		idx = g.m.Len() - 1
	}
	g.m.Order[idx].Value = append(g.m.Order[idx].Value, p)
}

// Len retorna o número de cores distintas.
func (g *ColorGroup) Len() int {
	return g.m.Len()
}

// Keys retorna as cores na ordem de inserção.
func (g *ColorGroup) Keys() []ColorKey {
	return g.m.Keys()
}

// Points retorna os pontos de uma cor (nil se ausente).
func (g *ColorGroup) Points(key ColorKey) []Point3 {
	return g.m.ValueByKey(key)
}

// TotalPoints soma o tamanho de todas as listas.
func (g *ColorGroup) TotalPoints() int {
	n := 0
	for _, kv := range g.m.Order {
		n += len(kv.Value)
	}
	return n
}

// Each percorre os grupos em ordem de inserção. Para no primeiro erro retornado por fn.
func (g *ColorGroup) Each(fn func(i int, key ColorKey, points []Point3) error) error {
	for i, kv := range g.m.Order {
		if err := fn(i, kv.Key, kv.Value); err != nil {
			return err
		}
	}
	return nil
}
