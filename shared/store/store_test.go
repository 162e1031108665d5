package store

import (
	"context"
	"path/filepath"
	"testing"

	"SpriteVision/shared/imagesrc"
	"SpriteVision/shared/logging"
	"SpriteVision/shared/meshing"
	"SpriteVision/shared/pipeline"
	"SpriteVision/shared/scene"
	"SpriteVision/shared/sprite"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTemp(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "saves", "sprites.db"), logging.NewTest(t))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := openTemp(t)
	runID := uuid.New()
	require.NoError(t, s.BeginRun(ctx, runID, "dude1.png", 0.3))

	mesh := meshing.BuildPlanes("dupli_mesh_0", []sprite.Point3{{0, 0, 0}, {0.3, -0.6, 0}}, 0.15)
	mat := scene.NewMaterialDescriptor(sprite.ColorKey{R: 0.2, G: 0.4, B: 0.6})

	require.NoError(t, s.AddObject(ctx, "dupli_object_0", mesh))
	require.NoError(t, s.AddMaterial(ctx, mat))
	require.NoError(t, s.AssignMaterial(ctx, "dupli_object_0", mat.Name))

	objs, err := s.Objects(ctx)
	require.NoError(t, err)
	require.Len(t, objs, 1)
	assert.Equal(t, "dupli_object_0", objs[0].Name)
	assert.Equal(t, mat.Name, objs[0].Material)
	if diff := cmp.Diff(mesh, objs[0].Mesh); diff != "" {
		t.Errorf("mesh (-want +got):\n%s", diff)
	}

	mats, err := s.Materials(ctx)
	require.NoError(t, err)
	assert.Equal(t, []scene.MaterialDescriptor{mat}, mats)

	var model ObjectModel
	require.NoError(t, s.DB.First(&model, "name = ?", "dupli_object_0").Error)
	assert.Equal(t, runID.String(), model.RunID)
	assert.Equal(t, 8, model.Vertices)
	assert.Equal(t, 2, model.Faces)

	runs, err := s.Runs(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "dude1.png", runs[0].Image)
}

func TestStoreUpsert(t *testing.T) {
	ctx := context.Background()
	s := openTemp(t)

	first := meshing.BuildPlanes("m", []sprite.Point3{{0, 0, 0}}, 0.5)
	second := meshing.BuildPlanes("m", []sprite.Point3{{0, 0, 0}, {1, 0, 0}}, 0.5)
	require.NoError(t, s.AddObject(ctx, "o", first))
	require.NoError(t, s.AddObject(ctx, "o", second))

	mat := scene.NewMaterialDescriptor(sprite.ColorKey{R: 1})
	require.NoError(t, s.AddMaterial(ctx, mat))
	require.NoError(t, s.AddMaterial(ctx, mat))

	objs, err := s.Objects(ctx)
	require.NoError(t, err)
	require.Len(t, objs, 1)
	assert.Len(t, objs[0].Mesh.Faces, 2)

	mats, err := s.Materials(ctx)
	require.NoError(t, err)
	assert.Len(t, mats, 1)
}

func TestStoreRunReplacesScene(t *testing.T) {
	ctx := context.Background()
	s := openTemp(t)

	src := imagesrc.NewMemory()
	src.Put(&sprite.Image{Name: "dude1.png", Width: 3, Height: 1, Pixels: sprite.PixelBuffer{
		1, 0, 0, 1,
		0, 1, 0, 1,
		0, 0, 1, 1,
	}})
	src.Put(&sprite.Image{Name: "dude2.png", Width: 1, Height: 1, Pixels: sprite.PixelBuffer{1, 1, 1, 1}})

	var last uuid.UUID
	for _, name := range []string{"dude1.png", "dude2.png"} {
		last = uuid.New()
		require.NoError(t, s.BeginRun(ctx, last, name, 0.3))
		_, err := pipeline.Run(ctx, src, scene.Multi(scene.NewCollection(), s), pipeline.Options{
			ImageName: name,
			RunID:     last,
			Logger:    logging.NewTest(t),
		})
		require.NoError(t, err)
	}

	objs, err := s.Objects(ctx)
	require.NoError(t, err)
	require.Len(t, objs, 1)
	assert.Equal(t, "dupli_object_0", objs[0].Name)
	white := scene.NewMaterialDescriptor(sprite.ColorKey{R: 1, G: 1, B: 1})
	assert.Equal(t, white.Name, objs[0].Material)

	mats, err := s.Materials(ctx)
	require.NoError(t, err)
	assert.Equal(t, []scene.MaterialDescriptor{white}, mats)

	var model ObjectModel
	require.NoError(t, s.DB.First(&model, "name = ?", "dupli_object_0").Error)
	assert.Equal(t, last.String(), model.RunID)

	runs, err := s.Runs(ctx)
	require.NoError(t, err)
	assert.Len(t, runs, 2)
}

func TestStoreAssignErrors(t *testing.T) {
	ctx := context.Background()
	s := openTemp(t)
	mat := scene.NewMaterialDescriptor(sprite.ColorKey{B: 1})

	assert.ErrorIs(t, s.AssignMaterial(ctx, "o", mat.Name), scene.ErrUnknownMaterial)
	require.NoError(t, s.AddMaterial(ctx, mat))
	assert.ErrorIs(t, s.AssignMaterial(ctx, "o", mat.Name), scene.ErrUnknownObject)
}

func TestStoreRejectsInvalidMesh(t *testing.T) {
	s := openTemp(t)
	bad := meshing.MeshDescriptor{Name: "bad", Faces: []meshing.Face{{0, 1, 2, 3}}}
	assert.ErrorIs(t, s.AddObject(context.Background(), "o", bad), meshing.ErrInvalidMesh)
}

func TestStoreIsAScene(t *testing.T) {
	var _ scene.Scene = (*Store)(nil)
}
