package main

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSprite(t *testing.T, dir, name string) {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.NRGBA{255, 0, 0, 255})
	img.Set(1, 0, color.NRGBA{0, 255, 0, 255})
	img.Set(0, 1, color.NRGBA{255, 0, 0, 255})
	img.Set(1, 1, color.NRGBA{0, 0, 0, 0})
	f, err := os.Create(filepath.Join(dir, name))
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	app := newApp()
	app.Writer = &out
	// config inexistente: usa os padrões
	cfgPath := filepath.Join(t.TempDir(), "config.json")
	err := app.Run(append([]string{"importador", "--config", cfgPath}, args...))
	return out.String(), err
}

func TestImportDryRun(t *testing.T) {
	dir := t.TempDir()
	writeSprite(t, dir, "dude1.png")
	db := filepath.Join(t.TempDir(), "sprites.db")

	out, err := run(t, "import", "--dir", dir, "--db", db, "--scale", "0.5", "--dry-run")
	require.NoError(t, err)
	assert.Contains(t, out, "dupli_object_0")
	assert.Contains(t, out, "dupli_object_1")
	assert.Contains(t, out, "#ff0000")
	assert.NotContains(t, out, "dupli_object_2")

	_, err = os.Stat(db)
	assert.True(t, os.IsNotExist(err), "dry-run não deve criar o banco")
}

func TestImportThenList(t *testing.T) {
	dir := t.TempDir()
	writeSprite(t, dir, "dude1.png")
	db := filepath.Join(t.TempDir(), "sprites.db")

	_, err := run(t, "import", "--dir", dir, "--db", db)
	require.NoError(t, err)

	out, err := run(t, "list", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "dupli_mesh_0")
	assert.Contains(t, out, "sv_material_1.0000 0.0000 0.0000")
	assert.Contains(t, out, "#00ff00")
}

func TestImportMissingImage(t *testing.T) {
	_, err := run(t, "import", "--dir", t.TempDir(), "--image", "nope.png", "--dry-run")
	assert.Error(t, err)
}

func TestImportAllPrefixes(t *testing.T) {
	dir := t.TempDir()
	writeSprite(t, dir, "a.png")
	writeSprite(t, dir, "b.png")

	out, err := run(t, "import-all", "--dir", dir, "--dry-run")
	require.NoError(t, err)
	assert.Contains(t, out, "a.png")
	assert.Contains(t, out, "b.png")

	_, err = run(t, "import-all", "--dir", t.TempDir(), "--dry-run")
	assert.Error(t, err)
}

func TestRename(t *testing.T) {
	dir := t.TempDir()
	writeSprite(t, dir, "zeta.png")
	writeSprite(t, dir, "alpha.png")

	out, err := run(t, "rename", "--dir", dir, "--dry-run")
	require.NoError(t, err)
	assert.Contains(t, out, "alpha.png -> dude1.png")
	_, err = os.Stat(filepath.Join(dir, "alpha.png"))
	require.NoError(t, err)

	out, err = run(t, "rename", "--dir", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "zeta.png renomeado para dude2.png")
	for _, n := range []string{"dude1.png", "dude2.png"} {
		_, err := os.Stat(filepath.Join(dir, n))
		assert.NoError(t, err, n)
	}

	out, err = run(t, "rename", "--dir", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "nada para renomear")
}
