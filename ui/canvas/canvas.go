// Package canvas provides the compositing canvas with the transform overlay.
package canvas

import (
	"image"
	"image/draw"

	"image-compositor/internal/app"
	cimage "image-compositor/internal/image"
	"image-compositor/pkg/colorutil"
	"image-compositor/pkg/geometry"

	"fyne.io/fyne/v2"
	fynecanvas "fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"
	"github.com/kpango/glg"
	xdraw "golang.org/x/image/draw"
)

// dragMode is what the current pointer drag is doing.
type dragMode int

const (
	dragNone dragMode = iota
	dragMove
	dragHandle
)

// ImageCanvas shows the compositor's layers on a fixed-size surface and maps
// pointer input onto selection, move, resize, rotate and reset.
type ImageCanvas struct {
	widget.BaseWidget

	comp   *app.Compositor
	raster *fynecanvas.Raster
	size   fyne.Size

	// Scale from canvas units to raster pixels, set on every draw
	zoom float64

	// Interaction state
	mode     dragMode
	dragSlot app.Slot
	lastPos  geometry.Point2D
	hover    geometry.Point2D

	// Last rendered output, overlay included
	lastOutput *image.RGBA
}

// NewImageCanvas creates a canvas bound to comp. It redraws itself whenever
// the compositor reports a change.
func NewImageCanvas(comp *app.Compositor) *ImageCanvas {
	ic := &ImageCanvas{
		comp: comp,
		size: fyne.NewSize(cimage.CanvasSize, cimage.CanvasSize),
		zoom: 1,
	}

	ic.raster = fynecanvas.NewRaster(ic.draw)
	ic.raster.ScaleMode = fynecanvas.ImageScaleSmooth
	ic.raster.SetMinSize(ic.size)

	refresh := func(interface{}) { ic.Refresh() }
	comp.On(app.EventImageLoaded, refresh)
	comp.On(app.EventLayerChanged, refresh)
	comp.On(app.EventSelectionChanged, refresh)

	ic.ExtendBaseWidget(ic)
	return ic
}

// toCanvas converts a widget position to canvas coordinates.
func (ic *ImageCanvas) toCanvas(pos fyne.Position) geometry.Point2D {
	size := ic.Size()
	sx, sy := 1.0, 1.0
	if size.Width > 0 && size.Height > 0 {
		sx = cimage.CanvasSize / float64(size.Width)
		sy = cimage.CanvasSize / float64(size.Height)
	}
	return geometry.Point2D{X: float64(pos.X) * sx, Y: float64(pos.Y) * sy}
}

// Tapped attaches the overlay to the layer under the pointer.
func (ic *ImageCanvas) Tapped(ev *fyne.PointEvent) {
	if slot, ok := ic.comp.SelectAt(ic.toCanvas(ev.Position)); ok {
		glg.Debugf("Canvas: tapped %s layer", slot)
	}
}

// DoubleTapped resets the layer under the pointer.
func (ic *ImageCanvas) DoubleTapped(ev *fyne.PointEvent) {
	ic.comp.ResetAt(ic.toCanvas(ev.Position))
}

// Dragged moves a layer, or drags an overlay handle if the drag started on one.
func (ic *ImageCanvas) Dragged(ev *fyne.DragEvent) {
	pos := ic.toCanvas(ev.Position)

	if ic.mode == dragNone {
		start := ic.toCanvas(ev.Position.Subtract(ev.Dragged))
		switch h := ic.comp.HandleAt(start); {
		case h != app.HandleNone && ic.comp.BeginTransform(h):
			ic.mode = dragHandle
		default:
			slot, ok := ic.comp.LayerAt(start)
			if !ok {
				return
			}
			ic.mode = dragMove
			ic.dragSlot = slot
		}
		ic.lastPos = start
	}

	switch ic.mode {
	case dragHandle:
		ic.comp.UpdateTransform(pos)
	case dragMove:
		ic.comp.Move(ic.dragSlot, pos.X-ic.lastPos.X, pos.Y-ic.lastPos.Y)
	}
	ic.lastPos = pos
}

// DragEnd finishes the current drag.
func (ic *ImageCanvas) DragEnd() {
	if ic.mode == dragHandle {
		ic.comp.EndTransform()
	}
	ic.mode = dragNone
}

// MouseIn implements desktop.Hoverable.
func (ic *ImageCanvas) MouseIn(ev *desktop.MouseEvent) {
	ic.hover = ic.toCanvas(ev.Position)
}

// MouseMoved implements desktop.Hoverable.
func (ic *ImageCanvas) MouseMoved(ev *desktop.MouseEvent) {
	ic.hover = ic.toCanvas(ev.Position)
}

// MouseOut hides the overlay when the pointer leaves the canvas.
func (ic *ImageCanvas) MouseOut() {
	ic.comp.PointerExit()
}

// Cursor picks a cursor for the grip or layer under the pointer.
func (ic *ImageCanvas) Cursor() desktop.Cursor {
	switch ic.comp.HandleAt(ic.hover) {
	case app.HandleNone:
	case app.HandleLeft, app.HandleRight:
		return desktop.HResizeCursor
	case app.HandleTop, app.HandleBottom:
		return desktop.VResizeCursor
	default:
		return desktop.CrosshairCursor
	}
	if _, ok := ic.comp.LayerAt(ic.hover); ok {
		return desktop.PointerCursor
	}
	return desktop.DefaultCursor
}

// Snapshot returns the last rendered output, overlay included.
func (ic *ImageCanvas) Snapshot() *image.RGBA {
	return ic.lastOutput
}

// MinSize keeps the canvas at its fixed size.
func (ic *ImageCanvas) MinSize() fyne.Size {
	return ic.size
}

// Refresh redraws the canvas.
func (ic *ImageCanvas) Refresh() {
	ic.raster.Refresh()
}

// draw is the raster drawing function.
func (ic *ImageCanvas) draw(w, h int) image.Image {
	output := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(output, output.Bounds(), image.NewUniform(colorutil.Backdrop), image.Point{}, draw.Src)
	if w <= 0 || h <= 0 {
		return output
	}
	ic.zoom = float64(w) / cimage.CanvasSize

	rendered := ic.comp.Composite().Render()
	if rendered.Bounds().Size() == output.Bounds().Size() {
		draw.Draw(output, output.Bounds(), rendered, image.Point{}, draw.Over)
	} else {
		xdraw.ApproxBiLinear.Scale(output, output.Bounds(), rendered, rendered.Bounds(), xdraw.Over, nil)
	}

	if sel := ic.comp.Selection(); sel.Visible() {
		slot, _ := sel.Selected()
		if pose, ok := ic.comp.Pose(slot); ok {
			ic.drawOverlay(output, NewTransformOverlay(pose))
		}
	}

	ic.lastOutput = output
	return output
}

// CreateRenderer implements fyne.Widget.
func (ic *ImageCanvas) CreateRenderer() fyne.WidgetRenderer {
	return &imageCanvasRenderer{canvas: ic}
}

type imageCanvasRenderer struct {
	canvas *ImageCanvas
}

func (r *imageCanvasRenderer) Layout(size fyne.Size) {
	r.canvas.raster.Resize(size)
}

func (r *imageCanvasRenderer) MinSize() fyne.Size {
	return r.canvas.size
}

func (r *imageCanvasRenderer) Refresh() {
	r.canvas.raster.Refresh()
}

func (r *imageCanvasRenderer) Objects() []fyne.CanvasObject {
	return []fyne.CanvasObject{r.canvas.raster}
}

func (r *imageCanvasRenderer) Destroy() {}
