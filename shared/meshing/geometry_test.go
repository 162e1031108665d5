package meshing

import (
	"testing"

	"SpriteVision/shared/sprite"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeometryTriangulates(t *testing.T) {
	mesh := BuildPlanes("m", []sprite.Point3{{0, 0, 0}, {2, 0, 0}}, 0.5)
	color := [4]uint8{255, 0, 0, 255}

	geo := mesh.Geometry(color)

	require.Equal(t, 12, geo.VertexCount())
	assert.Len(t, geo.Normals, 12*3)
	assert.Len(t, geo.Colors, 12*4)

	// primeiro triângulo: v0, v1, v2 do primeiro quad
	assert.Equal(t, []float32{-0.5, 0.5, 0, -0.5, -0.5, 0, 0.5, -0.5, 0}, geo.Vertices[:9])
	// segundo triângulo: v0, v2, v3
	assert.Equal(t, []float32{-0.5, 0.5, 0, 0.5, -0.5, 0, 0.5, 0.5, 0}, geo.Vertices[9:18])

	for i := 0; i < geo.VertexCount(); i++ {
		assert.Equal(t, []float32{0, 0, 1}, geo.Normals[i*3:i*3+3])
		assert.Equal(t, color[:], geo.Colors[i*4:i*4+4])
	}
}

func TestGeometryDoesNotAliasPool(t *testing.T) {
	mesh := BuildPlanes("m", []sprite.Point3{{0, 0, 0}}, 0.5)
	first := mesh.Geometry([4]uint8{1, 2, 3, 255})
	snapshot := first.Clone()

	other := BuildPlanes("n", []sprite.Point3{{9, 9, 0}}, 1)
	_ = other.Geometry([4]uint8{9, 9, 9, 255})

	assert.Equal(t, snapshot, first)
}

func TestPutMeshBufferResets(t *testing.T) {
	buf := GetMeshBuffer()
	buf.Geometry.Vertices = append(buf.Geometry.Vertices, 1, 2, 3)
	PutMeshBuffer(buf)
	PutMeshBuffer(nil)

	assert.Empty(t, buf.Geometry.Vertices)
}
