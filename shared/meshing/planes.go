// Package meshing gera as malhas de planos (um quad por pixel) e os buffers de GPU.
package meshing

import (
	"math"

	"SpriteVision/shared/sprite"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"
)

// ErrInvalidMesh indica uma malha que quebra a contagem de vértices/faces esperada.
var ErrInvalidMesh = errors.New("malha inválida")

// Face é um quad: quatro índices de vértice.
type Face [4]uint32

// MeshDescriptor é a malha pronta para ser entregue à cena.
type MeshDescriptor struct {
	Name     string
	Vertices []mgl64.Vec3
	Faces    []Face
}

// BuildPlanes cria um quad de lado 2*halfSize centrado em cada ponto (z do ponto é ignorado).
// Os cantos seguem sempre a mesma ordem (anti-horário a partir do canto superior esquerdo),
// e o quad i usa os vértices 4i..4i+3, sem compartilhar vértices entre instâncias.
func BuildPlanes(name string, points []sprite.Point3, halfSize float64) MeshDescriptor {
	h := halfSize
	mesh := MeshDescriptor{
		Name:     name,
		Vertices: make([]mgl64.Vec3, 0, len(points)*4),
		Faces:    make([]Face, 0, len(points)),
	}
	for i, p := range points {
		x, y := p[0], p[1]
		mesh.Vertices = append(mesh.Vertices,
			mgl64.Vec3{-h + x, h + y, 0},
			mgl64.Vec3{-h + x, -h + y, 0},
			mgl64.Vec3{h + x, -h + y, 0},
			mgl64.Vec3{h + x, h + y, 0},
		)
		off := uint32(i * 4)
		mesh.Faces = append(mesh.Faces, Face{0 + off, 1 + off, 2 + off, 3 + off})
	}
	return mesh
}

// Validate confere que cada face i referencia exatamente os vértices 4i..4i+3.
func (m MeshDescriptor) Validate() error {
	if len(m.Vertices) != len(m.Faces)*4 {
		return errors.Wrapf(ErrInvalidMesh, "%s: %d vértices para %d faces", m.Name, len(m.Vertices), len(m.Faces))
	}
	for i, f := range m.Faces {
		base := uint32(i * 4)
		for j, idx := range f {
			if idx != base+uint32(j) {
				return errors.Wrapf(ErrInvalidMesh, "%s: face %d índice %d = %d, esperado %d", m.Name, i, j, idx, base+uint32(j))
			}
		}
	}
	return nil
}

// FaceNormal calcula a normal unitária da face i pela regra da mão direita.
// Quads degenerados (área zero) retornam o vetor nulo.
func (m MeshDescriptor) FaceNormal(i int) mgl64.Vec3 {
	f := m.Faces[i]
	v0, v1, v2 := m.Vertices[f[0]], m.Vertices[f[1]], m.Vertices[f[2]]
	n := v1.Sub(v0).Cross(v2.Sub(v0))
	l := n.Len()
	if l == 0 {
		return mgl64.Vec3{}
	}
	return mgl64.Vec3{n[0] / l, n[1] / l, n[2] / l}
}

// Bounds retorna o menor e o maior canto da caixa que envolve a malha.
func (m MeshDescriptor) Bounds() (lo, hi mgl64.Vec3) {
	if len(m.Vertices) == 0 {
		return
	}
	lo, hi = m.Vertices[0], m.Vertices[0]
	for _, v := range m.Vertices[1:] {
		for k := 0; k < 3; k++ {
			lo[k] = math.Min(lo[k], v[k])
			hi[k] = math.Max(hi[k], v[k])
		}
	}
	return
}
