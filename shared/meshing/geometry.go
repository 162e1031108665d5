package meshing

import (
	"sync"

	"github.com/go-gl/mathgl/mgl32"
)

// GeometryData contém os buffers de vértices para uma malha (triângulos, sem índices).
type GeometryData struct {
	Vertices []float32
	Normals  []float32
	Colors   []uint8
}

// VertexCount retorna o número de vértices nos buffers.
func (g GeometryData) VertexCount() int {
	return len(g.Vertices) / 3
}

// Clone cria uma cópia profunda dos dados para evitar corrupção de memória.
func (g GeometryData) Clone() GeometryData {
	clone := GeometryData{}
	if len(g.Vertices) > 0 {
		clone.Vertices = append([]float32(nil), g.Vertices...)
	}
	if len(g.Normals) > 0 {
		clone.Normals = append([]float32(nil), g.Normals...)
	}
	if len(g.Colors) > 0 {
		clone.Colors = append([]uint8(nil), g.Colors...)
	}
	return clone
}

// Pool para reciclar MeshBuffers e evitar alocação excessiva (GC Pressure)
var meshBufferPool = sync.Pool{
	New: func() interface{} {
		return &MeshBuffer{
			Geometry: GeometryData{
				Vertices: make([]float32, 0, 4096),
				Normals:  make([]float32, 0, 4096),
				Colors:   make([]uint8, 0, 4096),
			},
		}
	},
}

// GetMeshBuffer aloca ou recicla um buffer vazio.
func GetMeshBuffer() *MeshBuffer {
	return meshBufferPool.Get().(*MeshBuffer)
}

// PutMeshBuffer zera os buffers e devolve a memória para o Pool.
func PutMeshBuffer(b *MeshBuffer) {
	if b == nil {
		return
	}
	b.Geometry.Vertices = b.Geometry.Vertices[:0]
	b.Geometry.Normals = b.Geometry.Normals[:0]
	b.Geometry.Colors = b.Geometry.Colors[:0]
	meshBufferPool.Put(b)
}

// MeshBuffer auxilia na construção de malhas dinâmicas.
type MeshBuffer struct {
	Geometry GeometryData
}

// AddFace adiciona um quad como dois triângulos (v1,v2,v3) e (v1,v3,v4).
func (b *MeshBuffer) AddFace(v1, v2, v3, v4 mgl32.Vec3, n mgl32.Vec3, c [4]uint8) {
	b.addVertex(v1, n, c)
	b.addVertex(v2, n, c)
	b.addVertex(v3, n, c)

	b.addVertex(v1, n, c)
	b.addVertex(v3, n, c)
	b.addVertex(v4, n, c)
}

func (b *MeshBuffer) addVertex(v, n mgl32.Vec3, c [4]uint8) {
	b.Geometry.Vertices = append(b.Geometry.Vertices, v[0], v[1], v[2])
	b.Geometry.Normals = append(b.Geometry.Normals, n[0], n[1], n[2])
	b.Geometry.Colors = append(b.Geometry.Colors, c[0], c[1], c[2], c[3])
}

// Geometry triangula a malha para upload na GPU, com a cor repetida em todos os vértices.
// O resultado não aponta para memória do pool.
func (m MeshDescriptor) Geometry(color [4]uint8) GeometryData {
	buf := GetMeshBuffer()
	defer PutMeshBuffer(buf)

	for i, f := range m.Faces {
		n := vec32(m.FaceNormal(i))
		buf.AddFace(
			vec32(m.Vertices[f[0]]),
			vec32(m.Vertices[f[1]]),
			vec32(m.Vertices[f[2]]),
			vec32(m.Vertices[f[3]]),
			n, color,
		)
	}
	return buf.Geometry.Clone()
}

func vec32(v [3]float64) mgl32.Vec3 {
	return mgl32.Vec3{float32(v[0]), float32(v[1]), float32(v[2])}
}
