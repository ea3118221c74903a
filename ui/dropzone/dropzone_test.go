package dropzone

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"image-compositor/internal/app"
	cimage "image-compositor/internal/image"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngData(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = 0xFF
	}
	img.Set(0, 0, color.NRGBA{R: 10, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func writeFile(t *testing.T, name string, data []byte) fyne.URI {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return storage.NewFileURI(path)
}

func newZone(t *testing.T, slot app.Slot) (*Zone, *app.Compositor, chan app.LoadResult) {
	t.Helper()
	a := test.NewApp()
	t.Cleanup(a.Quit)

	comp := app.NewCompositor(app.DefaultOptions())
	z := New(context.Background(), comp, slot, "Drag & drop an image here, or click to select one")
	results := make(chan app.LoadResult, 4)
	z.OnResult(func(r app.LoadResult) { results <- r })
	return z, comp, results
}

func TestLoadShowsPreview(t *testing.T) {
	z, comp, results := newZone(t, app.SlotSecond)
	assert.Empty(t, z.PreviewName())

	z.Load("photo.png", io.NopCloser(bytes.NewReader(pngData(t, 300, 150))))
	res := <-results
	require.NoError(t, res.Err)
	comp.Wait()

	assert.Equal(t, app.SlotSecond, res.Slot)
	assert.Equal(t, "photo.png (300x150)", z.PreviewName())
	require.NotNil(t, z.thumb.Image)
	assert.Equal(t, cimage.ThumbnailSize, z.thumb.Image.Bounds().Dx())
	assert.True(t, z.thumb.Visible())
}

func TestPreviewIgnoresOtherSlot(t *testing.T) {
	z, comp, _ := newZone(t, app.SlotFirst)
	comp.LoadSync(context.Background(), app.SlotSecond, "other.png", bytes.NewReader(pngData(t, 8, 8)))
	assert.Empty(t, z.PreviewName())
}

func TestDropUsesFirstURI(t *testing.T) {
	z, comp, results := newZone(t, app.SlotFirst)
	first := writeFile(t, "first.png", pngData(t, 20, 10))
	second := writeFile(t, "second.png", pngData(t, 10, 20))

	require.True(t, z.DropURIs([]fyne.URI{first, second}))
	res := <-results
	require.NoError(t, res.Err)
	comp.Wait()

	assert.Equal(t, "first.png", res.Name)
	assert.Equal(t, "first.png", comp.Layer(app.SlotFirst).Source.Name)
	assert.Nil(t, comp.Layer(app.SlotSecond))
	assert.Len(t, results, 0)
}

func TestDropNothing(t *testing.T) {
	z, comp, _ := newZone(t, app.SlotFirst)
	assert.False(t, z.DropURIs(nil))
	assert.False(t, z.DropURIs([]fyne.URI{storage.NewFileURI(filepath.Join(t.TempDir(), "missing.png"))}))
	comp.Wait()
	assert.Equal(t, app.Empty, comp.LoadState())
}

func TestDropRejectsText(t *testing.T) {
	z, comp, results := newZone(t, app.SlotFirst)
	uri := writeFile(t, "notes.png", []byte("not an image at all"))

	require.True(t, z.DropURIs([]fyne.URI{uri}))
	res := <-results
	comp.Wait()

	assert.True(t, res.Rejected())
	assert.Equal(t, app.Empty, comp.LoadState())
	assert.Empty(t, z.PreviewName())
}

func TestLastDirPreference(t *testing.T) {
	z, _, _ := newZone(t, app.SlotFirst)
	assert.Nil(t, z.lastDir())

	prefs := fyne.CurrentApp().Preferences()
	z.SetPreferences(prefs)
	dir := t.TempDir()
	z.saveLastDir(storage.NewFileURI(filepath.Join(dir, "a.png")))
	assert.Equal(t, dir, prefs.String(prefKeyLastDir))

	loc := z.lastDir()
	require.NotNil(t, loc)
	assert.True(t, strings.HasSuffix(loc.Path(), filepath.Base(dir)))
}
