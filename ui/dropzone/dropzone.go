// Package dropzone provides the per-slot image drop target.
package dropzone

import (
	"context"
	"fmt"
	"image/color"
	"io"
	"path/filepath"

	"image-compositor/internal/app"
	cimage "image-compositor/internal/image"

	"fyne.io/fyne/v2"
	fynecanvas "fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"github.com/kpango/glg"
)

const prefKeyLastDir = "lastDirectory"

// Zone is the drop target for one image slot. Files arrive either from the
// OS (DropURIs) or from the file dialog opened by a click.
type Zone struct {
	widget.BaseWidget

	ctx  context.Context
	comp *app.Compositor
	slot app.Slot

	window fyne.Window
	prefs  fyne.Preferences

	border *fynecanvas.Rectangle
	thumb  *fynecanvas.Image
	prompt *widget.Label
	name   *widget.Label

	onResult func(app.LoadResult)
}

// New creates a zone that loads into slot. label is the prompt shown to the user.
func New(ctx context.Context, comp *app.Compositor, slot app.Slot, label string) *Zone {
	z := &Zone{
		ctx:  ctx,
		comp: comp,
		slot: slot,
	}

	z.border = fynecanvas.NewRectangle(color.Transparent)
	th, variant := currentTheme()
	z.border.StrokeColor = th.Color(theme.ColorNameInputBorder, variant)
	z.border.StrokeWidth = 1
	z.border.CornerRadius = th.Size(theme.SizeNameInputRadius)

	z.thumb = fynecanvas.NewImageFromImage(nil)
	z.thumb.FillMode = fynecanvas.ImageFillContain
	z.thumb.SetMinSize(fyne.NewSize(cimage.ThumbnailSize, cimage.ThumbnailSize))
	z.thumb.Hide()

	z.prompt = widget.NewLabel(label)
	z.prompt.Alignment = fyne.TextAlignCenter
	z.prompt.Wrapping = fyne.TextWrapWord
	z.name = widget.NewLabel("")
	z.name.Alignment = fyne.TextAlignCenter
	z.name.Hide()

	comp.On(app.EventImageLoaded, func(data interface{}) {
		if s, ok := data.(app.Slot); ok && s == z.slot {
			z.refreshPreview()
		}
	})

	z.ExtendBaseWidget(z)
	return z
}

func currentTheme() (fyne.Theme, fyne.ThemeVariant) {
	if a := fyne.CurrentApp(); a != nil {
		return a.Settings().Theme(), a.Settings().ThemeVariant()
	}
	return theme.DefaultTheme(), theme.VariantLight
}

// Slot returns the slot this zone loads into.
func (z *Zone) Slot() app.Slot {
	return z.slot
}

// SetWindow sets the parent window for the file dialog.
func (z *Zone) SetWindow(w fyne.Window) {
	z.window = w
}

// SetPreferences enables remembering the last browsed directory.
func (z *Zone) SetPreferences(p fyne.Preferences) {
	z.prefs = p
}

// OnResult sets a callback for load outcomes. It runs on the loading goroutine.
func (z *Zone) OnResult(callback func(app.LoadResult)) {
	z.onResult = callback
}

// Tapped opens the file dialog.
func (z *Zone) Tapped(*fyne.PointEvent) {
	z.Browse()
}

// Cursor implements desktop.Cursorable.
func (z *Zone) Cursor() desktop.Cursor {
	return desktop.PointerCursor
}

// Browse shows a file dialog restricted to JPEG and PNG.
func (z *Zone) Browse() {
	if z.window == nil {
		return
	}
	fd := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil {
			glg.Warnf("Browse: %s slot: %v", z.slot, err)
			return
		}
		if reader == nil {
			return
		}
		z.saveLastDir(reader.URI())
		z.Load(reader.URI().Name(), reader)
	}, z.window)
	fd.SetFilter(storage.NewExtensionFileFilter(cimage.AcceptedExtensions()))
	if loc := z.lastDir(); loc != nil {
		fd.SetLocation(loc)
	}
	fd.Show()
}

// DropURIs loads the first of the dropped URIs; the rest are ignored. It
// reports whether a load was started.
func (z *Zone) DropURIs(uris []fyne.URI) bool {
	if len(uris) == 0 {
		return false
	}
	if len(uris) > 1 {
		glg.Debugf("Drop: %s slot got %d files, using %s", z.slot, len(uris), uris[0].Name())
	}
	r, err := storage.Reader(uris[0])
	if err != nil {
		glg.Warnf("Drop: %s slot cannot open %s: %v", z.slot, uris[0], err)
		return false
	}
	z.Load(uris[0].Name(), r)
	return true
}

// Load decodes r in the background into the zone's slot. r is closed when done.
func (z *Zone) Load(name string, r io.ReadCloser) {
	z.comp.Load(z.ctx, z.slot, name, r, z.finish)
}

func (z *Zone) finish(res app.LoadResult) {
	if z.onResult != nil {
		z.onResult(res)
	}
}

// refreshPreview shows the slot's current image.
func (z *Zone) refreshPreview() {
	l := z.comp.Layer(z.slot)
	if l == nil || l.Source == nil {
		return
	}
	z.thumb.Image = l.Source.Thumbnail
	z.thumb.Show()
	z.thumb.Refresh()
	z.name.SetText(fmt.Sprintf("%s (%dx%d)", l.Source.Name, l.Source.Width(), l.Source.Height()))
	z.name.Show()
}

// PreviewName returns the caption under the thumbnail, empty if none.
func (z *Zone) PreviewName() string {
	if !z.name.Visible() {
		return ""
	}
	return z.name.Text
}

// lastDir returns the last used directory as a ListableURI, or nil.
func (z *Zone) lastDir() fyne.ListableURI {
	if z.prefs == nil {
		return nil
	}
	path := z.prefs.String(prefKeyLastDir)
	if path == "" {
		return nil
	}
	listable, err := storage.ListerForURI(storage.NewFileURI(path))
	if err != nil {
		return nil
	}
	return listable
}

// saveLastDir remembers the directory of a browsed file.
func (z *Zone) saveLastDir(uri fyne.URI) {
	if z.prefs == nil || uri.Scheme() != "file" {
		return
	}
	z.prefs.SetString(prefKeyLastDir, filepath.Dir(uri.Path()))
}

// CreateRenderer implements fyne.Widget.
func (z *Zone) CreateRenderer() fyne.WidgetRenderer {
	content := container.NewVBox(
		z.prompt,
		container.NewCenter(z.thumb),
		z.name,
	)
	return widget.NewSimpleRenderer(container.NewStack(z.border, container.NewPadded(content)))
}
