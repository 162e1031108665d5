package scene

import (
	"context"
	"testing"

	"SpriteVision/shared/meshing"
	"SpriteVision/shared/sprite"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
)

func TestNewMaterialDescriptor(t *testing.T) {
	key := sprite.ColorKey{R: 0.5, G: 0.25, B: 1}
	mat := NewMaterialDescriptor(key)

	assert.Equal(t, "sv_material_0.5000 0.2500 1.0000", mat.Name)
	assert.Equal(t, [4]float64{0.5, 0.25, 1, 1}, mat.BaseColor)
	assert.Equal(t, key, mat.Key())
}

func TestCollectionLifecycle(t *testing.T) {
	ctx := context.Background()
	c := NewCollection()
	mesh := meshing.BuildPlanes("dupli_mesh_0", []sprite.Point3{{0, 0, 0}}, 0.15)
	mat := NewMaterialDescriptor(sprite.ColorKey{R: 1})

	require.NoError(t, c.AddObject(ctx, "dupli_object_0", mesh))
	require.NoError(t, c.AddMaterial(ctx, mat))
	require.NoError(t, c.AssignMaterial(ctx, "dupli_object_0", mat.Name))

	obj, ok := c.Object("dupli_object_0")
	require.True(t, ok)
	assert.Equal(t, mat.Name, obj.Material)
	assert.Equal(t, mesh, obj.Mesh)
	assert.Equal(t, 1, c.Len())
	assert.Equal(t, []MaterialDescriptor{mat}, c.Materials())

	c.Clear()
	assert.Equal(t, 0, c.Len())
	assert.Empty(t, c.Materials())
}

func TestCollectionErrors(t *testing.T) {
	ctx := context.Background()
	c := NewCollection()
	mesh := meshing.BuildPlanes("m", nil, 0.5)

	require.NoError(t, c.AddObject(ctx, "a", mesh))
	assert.ErrorIs(t, c.AddObject(ctx, "a", mesh), ErrDuplicateObject)
	assert.ErrorIs(t, c.AssignMaterial(ctx, "b", "x"), ErrUnknownObject)
	assert.ErrorIs(t, c.AssignMaterial(ctx, "a", "x"), ErrUnknownMaterial)
}

func TestCollectionKeepsOrder(t *testing.T) {
	ctx := context.Background()
	c := NewCollection()
	names := []string{"dupli_object_0", "dupli_object_1", "dupli_object_2"}
	for _, n := range names {
		require.NoError(t, c.AddObject(ctx, n, meshing.MeshDescriptor{Name: n}))
	}
	var got []string
	for _, o := range c.Objects() {
		got = append(got, o.Name)
	}
	assert.Equal(t, names, got)
}

type failingScene struct{ err error }

func (f failingScene) AddObject(context.Context, string, meshing.MeshDescriptor) error { return f.err }
func (f failingScene) AddMaterial(context.Context, MaterialDescriptor) error           { return f.err }
func (f failingScene) AssignMaterial(context.Context, string, string) error            { return f.err }

func TestMultiFansOut(t *testing.T) {
	ctx := context.Background()
	a, b := NewCollection(), NewCollection()
	s := Multi(a, b)

	require.NoError(t, s.AddObject(ctx, "o", meshing.MeshDescriptor{Name: "m"}))
	mat := NewMaterialDescriptor(sprite.ColorKey{G: 1})
	require.NoError(t, s.AddMaterial(ctx, mat))
	require.NoError(t, s.AssignMaterial(ctx, "o", mat.Name))

	for _, c := range []*Collection{a, b} {
		obj, ok := c.Object("o")
		require.True(t, ok)
		assert.Equal(t, mat.Name, obj.Material)
	}
}

func TestMultiCombinesErrors(t *testing.T) {
	ctx := context.Background()
	e1, e2 := errors.New("um"), errors.New("dois")
	c := NewCollection()
	s := Multi(failingScene{e1}, c, failingScene{e2})

	err := s.AddObject(ctx, "o", meshing.MeshDescriptor{})
	require.Error(t, err)
	assert.Len(t, multierr.Errors(err), 2)
	// a cena sem falha ainda recebeu o objeto
	assert.Equal(t, 1, c.Len())
}
