package imagesrc

import (
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"SpriteVision/shared/sprite"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePNG(t *testing.T, path string, img image.Image) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
}

func testImage() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.NRGBA{255, 0, 0, 255})   // topo esquerdo
	img.Set(1, 0, color.NRGBA{0, 255, 0, 128})   // topo direito, translúcido
	img.Set(0, 1, color.NRGBA{0, 0, 255, 255})   // baixo esquerdo
	img.Set(1, 1, color.NRGBA{255, 255, 255, 0}) // baixo direito, transparente
	return img
}

func TestFromImageBottomUp(t *testing.T) {
	got := FromImage("x.png", testImage())

	require.Equal(t, 2, got.Width)
	require.Equal(t, 2, got.Height)
	require.Len(t, got.Pixels, 16)

	// linha 0 do buffer = linha de baixo da figura
	assert.Equal(t, sprite.PixelBuffer{0, 0, 1, 1}, got.Pixels[0:4])
	assert.Equal(t, 0.0, got.Pixels[7])
	assert.Equal(t, sprite.PixelBuffer{1, 0, 0, 1}, got.Pixels[8:12])
	assert.InDelta(t, 128.0/255, got.Pixels[15], 1e-12)
}

func TestFromImageSubImage(t *testing.T) {
	big := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	big.Set(2, 3, color.NRGBA{10, 20, 30, 255})
	sub := big.SubImage(image.Rect(2, 2, 4, 4))

	got := FromImage("sub", sub)
	require.Equal(t, 2, got.Width)
	// (2,3) é a linha de baixo, coluna 0 do recorte
	assert.Equal(t, sprite.PixelBuffer{10.0 / 255, 20.0 / 255, 30.0 / 255, 1}, got.Pixels[0:4])
}

func TestDirLookup(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "dude1.png"), testImage())

	img, err := Dir(dir).Lookup(context.Background(), "dude1.png")
	require.NoError(t, err)
	assert.Equal(t, "dude1.png", img.Name)
	assert.Equal(t, 2, sprite.CountOpaque(img.Pixels))

	_, err = Dir(dir).Lookup(context.Background(), "dude2.png")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDirLookupStaysInsideDir(t *testing.T) {
	root := t.TempDir()
	sprites := filepath.Join(root, "sprites")
	require.NoError(t, os.Mkdir(sprites, 0o755))
	writePNG(t, filepath.Join(root, "secret.png"), testImage())

	for _, name := range []string{"../secret.png", filepath.Join(root, "secret.png"), "", "a/../../secret.png"} {
		img, err := Dir(sprites).Lookup(context.Background(), name)
		assert.ErrorIs(t, err, ErrNotFound, name)
		assert.Nil(t, img, name)
	}

	// subdiretórios continuam acessíveis
	require.NoError(t, os.Mkdir(filepath.Join(sprites, "set"), 0o755))
	writePNG(t, filepath.Join(sprites, "set", "dude1.png"), testImage())
	_, err := Dir(sprites).Lookup(context.Background(), "set/dude1.png")
	assert.NoError(t, err)
}

func TestDirLookupCorrupt(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.png"), []byte("not a png"), 0o644))

	_, err := Dir(dir).Lookup(context.Background(), "bad.png")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestDirLookupCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Dir(t.TempDir()).Lookup(ctx, "dude1.png")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestList(t *testing.T) {
	dir := t.TempDir()
	for _, n := range []string{"b.png", "a.PNG", "notes.txt", "c.bmp", ".rename-0-d.png"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, n), nil, 0o644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.png"), 0o755))

	names, err := List(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.PNG", "b.png", "c.bmp"}, names)

	_, err = List(filepath.Join(dir, "missing"))
	assert.Error(t, err)
}

func TestMemory(t *testing.T) {
	m := NewMemory()
	img := &sprite.Image{Name: "one", Width: 1, Height: 1, Pixels: sprite.PixelBuffer{1, 1, 1, 1}}
	m.Put(img)

	got, err := m.Lookup(context.Background(), "one")
	require.NoError(t, err)
	assert.Same(t, img, got)

	_, err = m.Lookup(context.Background(), "two")
	assert.ErrorIs(t, err, ErrNotFound)
}
