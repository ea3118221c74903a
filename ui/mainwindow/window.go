// Package mainwindow provides the main application window.
package mainwindow

import (
	"context"
	"fmt"

	"image-compositor/internal/app"
	"image-compositor/internal/config"
	"image-compositor/internal/version"
	"image-compositor/ui/canvas"
	"image-compositor/ui/dropzone"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"
	"github.com/kpango/glg"
)

const resetHint = "* Double click the image to center/reset *"

// MainWindow is the primary application window.
type MainWindow struct {
	fyne.Window
	app  fyne.App
	comp *app.Compositor
	cfg  config.Config
	ctx  context.Context

	canvas    *canvas.ImageCanvas
	zones     []*dropzone.Zone
	statusBar *widget.Label

	// Window-relative area of an object, for drop routing
	boundsOf func(fyne.CanvasObject) (fyne.Position, fyne.Size)
}

// New creates a new main window. Loads started from the window are bound to ctx.
func New(ctx context.Context, fyneApp fyne.App, comp *app.Compositor, cfg config.Config) *MainWindow {
	win := fyneApp.NewWindow(cfg.Window.Title)

	mw := &MainWindow{
		Window: win,
		app:    fyneApp,
		comp:   comp,
		cfg:    cfg,
		ctx:    ctx,
	}
	mw.boundsOf = func(o fyne.CanvasObject) (fyne.Position, fyne.Size) {
		return fyneApp.Driver().AbsolutePositionForObject(o), o.Size()
	}

	mw.setupUI()
	mw.setupMenus()
	mw.setupEventHandlers()

	return mw
}

// setupUI creates the main UI layout.
func (mw *MainWindow) setupUI() {
	mw.canvas = canvas.NewImageCanvas(mw.comp)

	labels := map[app.Slot]string{
		app.SlotFirst:  "Drag & drop the first image here, or click to select one",
		app.SlotSecond: "Drag & drop the second image here, or click to select one",
	}
	for _, slot := range app.Slots() {
		z := dropzone.New(mw.ctx, mw.comp, slot, labels[slot])
		z.SetWindow(mw.Window)
		z.SetPreferences(mw.app.Preferences())
		z.OnResult(mw.onLoadResult)
		mw.zones = append(mw.zones, z)
	}

	mw.statusBar = widget.NewLabel("Ready")

	hint := widget.NewLabel(resetHint)
	hint.Alignment = fyne.TextAlignCenter
	hint.TextStyle = fyne.TextStyle{Italic: true}

	download := widget.NewButton("Download Image", mw.onDownload)
	download.Importance = widget.HighImportance

	column := container.NewVBox(
		mw.zones[app.SlotFirst],
		mw.zones[app.SlotSecond],
		container.NewCenter(mw.canvas),
		hint,
		container.NewCenter(download),
	)

	// Main container with status bar at bottom
	center := container.NewCenter(container.NewPadded(column))
	content := container.NewBorder(
		nil,                               // top
		container.NewPadded(mw.statusBar), // bottom
		nil,                               // left
		nil,                               // right
		center,                            // center
	)

	mw.SetContent(content)
	mw.SetOnDropped(mw.onDropped)
}

// setupMenus creates the application menus.
func (mw *MainWindow) setupMenus() {
	fileMenu := fyne.NewMenu("File",
		fyne.NewMenuItem("Open First Image...", mw.zones[app.SlotFirst].Browse),
		fyne.NewMenuItem("Open Second Image...", mw.zones[app.SlotSecond].Browse),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Download Image", mw.onDownload),
	)

	helpMenu := fyne.NewMenu("Help",
		fyne.NewMenuItem("About", mw.onAbout),
	)

	mw.SetMainMenu(fyne.NewMainMenu(fileMenu, helpMenu))
}

// setupEventHandlers registers for compositor events.
func (mw *MainWindow) setupEventHandlers() {
	mw.comp.On(app.EventImageLoaded, func(data interface{}) {
		if slot, ok := data.(app.Slot); ok {
			if l := mw.comp.Layer(slot); l != nil {
				mw.updateStatus(fmt.Sprintf("Loaded %s into the %s slot", l.Source.Name, slot))
			}
		}
	})

	mw.comp.On(app.EventExported, func(data interface{}) {
		if path, ok := data.(string); ok && path != "" {
			mw.updateStatus("Saved " + path)
		}
	})
}

// updateStatus updates the status bar text.
func (mw *MainWindow) updateStatus(text string) {
	mw.statusBar.SetText(text)
}

// Status returns the status bar text.
func (mw *MainWindow) Status() string {
	return mw.statusBar.Text
}

// onLoadResult reports decode failures. Files of the wrong type are
// ignored silently, as is an empty drop.
func (mw *MainWindow) onLoadResult(res app.LoadResult) {
	if res.Err == nil || res.Rejected() {
		return
	}
	mw.updateStatus(fmt.Sprintf("Could not load %s: %v", res.Name, res.Err))
}

// onDropped routes an OS file drop to the zone under the pointer.
func (mw *MainWindow) onDropped(pos fyne.Position, uris []fyne.URI) {
	z := mw.zoneAt(pos)
	if z == nil {
		glg.Debugf("Drop: %d file(s) outside the drop zones at %v", len(uris), pos)
		return
	}
	z.DropURIs(uris)
}

// zoneAt returns the drop zone containing the window position, or nil.
func (mw *MainWindow) zoneAt(pos fyne.Position) *dropzone.Zone {
	for _, z := range mw.zones {
		if !z.Visible() {
			continue
		}
		p, s := mw.boundsOf(z)
		if pos.X >= p.X && pos.X <= p.X+s.Width && pos.Y >= p.Y && pos.Y <= p.Y+s.Height {
			return z
		}
	}
	return nil
}

// onDownload saves the canvas into the configured export directory.
func (mw *MainWindow) onDownload() {
	if _, err := mw.comp.ExportFile(mw.cfg.Export.Dir); err != nil {
		glg.Errorf("Export: %v", err)
		mw.updateStatus("Download failed")
		dialog.ShowError(err, mw.Window)
	}
}

func (mw *MainWindow) onAbout() {
	dialog.ShowInformation("About "+mw.cfg.Window.Title,
		fmt.Sprintf("%s %s\n\n"+
			"Drop two images, arrange them on the canvas\n"+
			"and download the result as a PNG.",
			mw.cfg.Window.Title, version.String()),
		mw.Window)
}
