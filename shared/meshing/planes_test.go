package meshing

import (
	"testing"

	"SpriteVision/shared/sprite"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildPlanesTwoPoints(t *testing.T) {
	mesh := BuildPlanes("dupli_mesh_0", []sprite.Point3{{0, 0, 0}, {2, 0, 0}}, 0.5)

	require.Len(t, mesh.Vertices, 8)
	wantFaces := []Face{{0, 1, 2, 3}, {4, 5, 6, 7}}
	if diff := cmp.Diff(wantFaces, mesh.Faces); diff != "" {
		t.Errorf("faces (-want +got):\n%s", diff)
	}
	assert.Equal(t, mgl64.Vec3{-0.5, 0.5, 0}, mesh.Vertices[0])
	assert.Equal(t, mgl64.Vec3{1.5, 0.5, 0}, mesh.Vertices[4])
	assert.Equal(t, "dupli_mesh_0", mesh.Name)
	assert.NoError(t, mesh.Validate())
}

func TestBuildPlanesCornerOrder(t *testing.T) {
	mesh := BuildPlanes("m", []sprite.Point3{{1, -2, 7}}, 0.25)

	want := []mgl64.Vec3{
		{0.75, -1.75, 0},
		{0.75, -2.25, 0},
		{1.25, -2.25, 0},
		{1.25, -1.75, 0},
	}
	if diff := cmp.Diff(want, mesh.Vertices); diff != "" {
		t.Errorf("vertices (-want +got):\n%s", diff)
	}
}

func TestBuildPlanesInvariants(t *testing.T) {
	pts := make([]sprite.Point3, 0, 50)
	for i := 0; i < 50; i++ {
		pts = append(pts, sprite.Point3{float64(i%7) * 0.3, -float64(i/7) * 0.3, 0})
	}
	mesh := BuildPlanes("grid", pts, 0.15)

	require.NoError(t, mesh.Validate())
	assert.Len(t, mesh.Vertices, len(pts)*4)
	assert.Len(t, mesh.Faces, len(pts))
	for i, f := range mesh.Faces {
		base := uint32(4 * i)
		assert.Equal(t, Face{base, base + 1, base + 2, base + 3}, f)
		assert.Equal(t, mgl64.Vec3{0, 0, 1}, mesh.FaceNormal(i), "face %d", i)
	}
}

func TestBuildPlanesEmpty(t *testing.T) {
	mesh := BuildPlanes("vazio", nil, 0.5)
	assert.Empty(t, mesh.Vertices)
	assert.Empty(t, mesh.Faces)
	assert.NoError(t, mesh.Validate())
}

func TestBuildPlanesAdjacentTiles(t *testing.T) {
	// pixels vizinhos com espaçamento scale e meio-lado scale/2 se encostam sem sobrepor
	const scale = 0.3
	mesh := BuildPlanes("m", []sprite.Point3{{0, 0, 0}, {scale, 0, 0}}, scale/2)
	assert.InDelta(t, mesh.Vertices[2][0], mesh.Vertices[5][0], 1e-12)
	assert.InDelta(t, mesh.Vertices[3][0], mesh.Vertices[4][0], 1e-12)
}

func TestFaceNormalDegenerate(t *testing.T) {
	mesh := BuildPlanes("zero", []sprite.Point3{{1, 1, 0}}, 0)
	assert.Equal(t, mgl64.Vec3{}, mesh.FaceNormal(0))
}

func TestValidateRejects(t *testing.T) {
	good := BuildPlanes("m", []sprite.Point3{{0, 0, 0}, {1, 0, 0}}, 0.5)

	tests := []struct {
		name   string
		mutate func(m *MeshDescriptor)
	}{
		{"missing vertex", func(m *MeshDescriptor) { m.Vertices = m.Vertices[:7] }},
		{"shared vertex", func(m *MeshDescriptor) { m.Faces[1] = Face{3, 5, 6, 7} }},
		{"swapped order", func(m *MeshDescriptor) { m.Faces[0] = Face{1, 0, 2, 3} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := MeshDescriptor{
				Name:     good.Name,
				Vertices: append([]mgl64.Vec3(nil), good.Vertices...),
				Faces:    append([]Face(nil), good.Faces...),
			}
			tt.mutate(&m)
			assert.ErrorIs(t, m.Validate(), ErrInvalidMesh)
		})
	}
}

func TestBounds(t *testing.T) {
	mesh := BuildPlanes("m", []sprite.Point3{{0, 0, 0}, {1, -2, 0}}, 0.5)
	lo, hi := mesh.Bounds()
	assert.Equal(t, mgl64.Vec3{-0.5, -2.5, 0}, lo)
	assert.Equal(t, mgl64.Vec3{1.5, 0.5, 0}, hi)
}
