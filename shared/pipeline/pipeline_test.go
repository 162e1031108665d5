package pipeline

import (
	"context"
	"testing"

	"SpriteVision/shared/imagesrc"
	"SpriteVision/shared/logging"
	"SpriteVision/shared/meshing"
	"SpriteVision/shared/scene"
	"SpriteVision/shared/sprite"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pixels(px ...[4]float64) sprite.PixelBuffer {
	var buf sprite.PixelBuffer
	for _, p := range px {
		buf = append(buf, p[:]...)
	}
	return buf
}

func sourceWith(imgs ...*sprite.Image) *imagesrc.Memory {
	src := imagesrc.NewMemory()
	for _, img := range imgs {
		src.Put(img)
	}
	return src
}

var (
	red   = [4]float64{1, 0, 0, 1}
	green = [4]float64{0, 1, 0, 1}
	blue  = [4]float64{0, 0, 1, 1}
)

func twoByTwo() *sprite.Image {
	// (r0,c0)=red (r0,c1)=green (r1,c0)=red (r1,c1)=blue
	return &sprite.Image{Name: "dude1.png", Width: 2, Height: 2, Pixels: pixels(red, green, red, blue)}
}

func TestRunTwoByTwo(t *testing.T) {
	ctx := context.Background()
	col := scene.NewCollection()

	report, err := Run(ctx, sourceWith(twoByTwo()), col, Options{Scale: ScaleOf(1.0), Logger: logging.NewTest(t)})
	require.NoError(t, err)

	require.Len(t, report.Groups, 3)
	assert.Equal(t, 4, report.Opaque)
	assert.Equal(t, "dude1.png", report.Image)

	objs := col.Objects()
	require.Len(t, objs, 3)

	wantNames := []string{"dupli_object_0", "dupli_object_1", "dupli_object_2"}
	wantMats := []string{
		"sv_material_1.0000 0.0000 0.0000",
		"sv_material_0.0000 1.0000 0.0000",
		"sv_material_0.0000 0.0000 1.0000",
	}
	wantPoints := []int{2, 1, 1}
	for i, o := range objs {
		assert.Equal(t, wantNames[i], o.Name)
		assert.Equal(t, wantMats[i], o.Material)
		assert.Len(t, o.Mesh.Vertices, wantPoints[i]*4)
		assert.Len(t, o.Mesh.Faces, wantPoints[i])
		assert.Equal(t, report.Groups[i].Points, wantPoints[i])
	}

	// vermelho: pontos (0,0,0) e (1,0,0) com meio-lado 0.5
	redMesh := objs[0].Mesh
	assert.Equal(t, "dupli_mesh_0", redMesh.Name)
	assert.Equal(t, mgl64.Vec3{-0.5, 0.5, 0}, redMesh.Vertices[0])
	assert.Equal(t, mgl64.Vec3{0.5, 0.5, 0}, redMesh.Vertices[4])

	mat, ok := col.Material(wantMats[2])
	require.True(t, ok)
	assert.Equal(t, [4]float64{0, 0, 1, 1}, mat.BaseColor)
}

func TestRunKeepsGivenRunID(t *testing.T) {
	id := uuid.New()
	report, err := Run(context.Background(), sourceWith(twoByTwo()), scene.NewCollection(), Options{Scale: ScaleOf(1), RunID: id})
	require.NoError(t, err)
	assert.Equal(t, id, report.RunID)

	other, err := Run(context.Background(), sourceWith(twoByTwo()), scene.NewCollection(), Options{Scale: ScaleOf(1)})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, other.RunID)
	assert.NotEqual(t, id, other.RunID)
}

func TestRunTranslucentProducesNothing(t *testing.T) {
	img := &sprite.Image{Name: "dude1.png", Width: 1, Height: 1, Pixels: pixels([4]float64{1, 1, 1, 0.5})}
	col := scene.NewCollection()

	report, err := Run(context.Background(), sourceWith(img), col, Options{Scale: ScaleOf(0.3)})
	require.NoError(t, err)
	assert.Empty(t, report.Groups)
	assert.Equal(t, 0, col.Len())
}

func TestRunMalformedBuffer(t *testing.T) {
	img := &sprite.Image{Name: "dude1.png", Width: 2, Height: 2, Pixels: make(sprite.PixelBuffer, 2*2*4+1)}
	col := scene.NewCollection()

	report, err := Run(context.Background(), sourceWith(img), col, Options{Scale: ScaleOf(0.3)})
	assert.ErrorIs(t, err, sprite.ErrMalformedBuffer)
	assert.Nil(t, report)
	assert.Equal(t, 0, col.Len())
}

func TestRunMissingImage(t *testing.T) {
	_, err := Run(context.Background(), imagesrc.NewMemory(), scene.NewCollection(), Options{})
	assert.ErrorIs(t, err, imagesrc.ErrNotFound)
}

func TestRunDefaultsToDude1(t *testing.T) {
	col := scene.NewCollection()
	report, err := Run(context.Background(), sourceWith(twoByTwo()), col, Options{})
	require.NoError(t, err)
	assert.Equal(t, DefaultImageName, report.Image)
	assert.Equal(t, DefaultScale, report.Scale)

	// sem escala informada os quads têm lado 0.3
	obj, ok := col.Object("dupli_object_0")
	require.True(t, ok)
	v := obj.Mesh.Vertices
	assert.InDelta(t, -0.15, v[0].X(), 1e-12)
	assert.InDelta(t, 0.15, v[0].Y(), 1e-12)
	assert.InDelta(t, 0.15, v[2].X(), 1e-12)
	assert.InDelta(t, -0.15, v[2].Y(), 1e-12)
}

func TestRunZeroScale(t *testing.T) {
	col := scene.NewCollection()
	_, err := Run(context.Background(), sourceWith(twoByTwo()), col, Options{Scale: ScaleOf(0), Logger: logging.NewTest(t)})
	require.NoError(t, err)

	obj, ok := col.Object("dupli_object_0")
	require.True(t, ok)
	lo, hi := obj.Mesh.Bounds()
	assert.Equal(t, lo, hi)
}

type rejectingScene struct {
	*scene.Collection
	failAt int
	calls  int
}

func (r *rejectingScene) AddObject(ctx context.Context, name string, mesh meshing.MeshDescriptor) error {
	r.calls++
	if r.calls > r.failAt {
		return errors.New("cena recusou")
	}
	return r.Collection.AddObject(ctx, name, mesh)
}

func TestRunAbortsOnSceneError(t *testing.T) {
	sc := &rejectingScene{Collection: scene.NewCollection(), failAt: 1}

	report, err := Run(context.Background(), sourceWith(twoByTwo()), sc, Options{Scale: ScaleOf(1)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dupli_object_1")
	assert.Nil(t, report)
	// nada depois do grupo que falhou é tentado
	assert.Equal(t, 2, sc.calls)
}

func TestRunCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Run(ctx, sourceWith(twoByTwo()), scene.NewCollection(), Options{Scale: ScaleOf(1)})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCommitGroupRejectsEmpty(t *testing.T) {
	_, err := commitGroup(context.Background(), scene.NewCollection(), Options{Scale: ScaleOf(1)}, 0, sprite.ColorKey{}, nil)
	assert.ErrorIs(t, err, ErrEmptyGroup)
}

func TestRunAllPrefixesNames(t *testing.T) {
	a := twoByTwo()
	b := &sprite.Image{Name: "dude2.png", Width: 1, Height: 1, Pixels: pixels(green)}
	col := scene.NewCollection()

	reports, err := RunAll(context.Background(), sourceWith(a, b), col, []string{"dude1.png", "dude2.png"}, Options{Scale: ScaleOf(0.3)})
	require.NoError(t, err)
	require.Len(t, reports, 2)

	_, ok := col.Object("dude1/dupli_object_2")
	assert.True(t, ok)
	obj, ok := col.Object("dude2/dupli_object_0")
	require.True(t, ok)
	assert.Equal(t, "dude2/dupli_mesh_0", obj.Mesh.Name)
	// o material verde é compartilhado pelo nome
	assert.Len(t, col.Materials(), 3)
}

func TestRunAllStopsAtFirstError(t *testing.T) {
	reports, err := RunAll(context.Background(), sourceWith(twoByTwo()), scene.NewCollection(), []string{"dude1.png", "nope.png", "dude1.png"}, Options{Scale: ScaleOf(1)})
	assert.ErrorIs(t, err, imagesrc.ErrNotFound)
	assert.Len(t, reports, 1)
}

func TestStem(t *testing.T) {
	assert.Equal(t, "dude1", Stem("sprites/dude1.png"))
	assert.Equal(t, "noext", Stem("noext"))
}
