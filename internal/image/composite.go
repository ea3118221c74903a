package image

import (
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"strings"

	"image-compositor/pkg/geometry"

	"github.com/cockroachdb/errors"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/math/f64"
)

// Interpolation selects how layer pixels are resampled when transformed.
type Interpolation int

const (
	InterpolationBiLinear Interpolation = iota
	InterpolationNearest
	InterpolationCatmullRom
)

func (i Interpolation) String() string {
	switch i {
	case InterpolationNearest:
		return "nearest"
	case InterpolationCatmullRom:
		return "catmullrom"
	default:
		return "bilinear"
	}
}

// ParseInterpolation parses a config value into an Interpolation.
func ParseInterpolation(s string) (Interpolation, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "bilinear":
		return InterpolationBiLinear, nil
	case "nearest":
		return InterpolationNearest, nil
	case "catmullrom":
		return InterpolationCatmullRom, nil
	default:
		return InterpolationBiLinear, errors.Newf("unknown interpolation %q", s)
	}
}

func (i Interpolation) transformer() xdraw.Transformer {
	switch i {
	case InterpolationNearest:
		return xdraw.NearestNeighbor
	case InterpolationCatmullRom:
		return xdraw.CatmullRom
	default:
		return xdraw.BiLinear
	}
}

// Composite combines layers into a single image, first layer at the bottom.
type Composite struct {
	Width         int
	Height        int
	Layers        []*Layer
	BackColor     color.Color
	Interpolation Interpolation
}

// NewComposite creates a new Composite with the specified dimensions and a
// transparent background.
func NewComposite(width, height int) *Composite {
	return &Composite{
		Width:     width,
		Height:    height,
		BackColor: color.Transparent,
	}
}

// AddLayer adds a layer on top of the existing ones. Nil layers are ignored.
func (c *Composite) AddLayer(layer *Layer) {
	if layer == nil {
		return
	}
	c.Layers = append(c.Layers, layer)
}

// Render produces the final composited image.
func (c *Composite) Render() *image.RGBA {
	result := image.NewRGBA(image.Rect(0, 0, c.Width, c.Height))
	draw.Draw(result, result.Bounds(), &image.Uniform{C: c.BackColor}, image.Point{}, draw.Src)

	for _, layer := range c.Layers {
		if layer == nil || layer.Source == nil || layer.Source.Image == nil {
			continue
		}
		c.compositeLayer(result, layer)
	}

	return result
}

// compositeLayer draws one layer through its pose matrix.
func (c *Composite) compositeLayer(dst *image.RGBA, layer *Layer) {
	src := layer.Source.Image
	sr := src.Bounds()
	if sr.Empty() {
		return
	}

	pose := layer.Pose
	fit := geometry.Scale(pose.Width/float64(sr.Dx()), pose.Height/float64(sr.Dy())).
		Compose(geometry.Translation(-float64(sr.Min.X), -float64(sr.Min.Y)))
	m := pose.Matrix().Compose(fit)

	s2d := f64.Aff3{m.A, m.B, m.TX, m.C, m.D, m.TY}
	c.Interpolation.transformer().Transform(dst, s2d, src, sr, xdraw.Over, nil)
}

// EncodePNG renders the composite and writes it as PNG.
func (c *Composite) EncodePNG(w io.Writer) error {
	if err := png.Encode(w, c.Render()); err != nil {
		return errors.Wrap(err, "failed to encode png")
	}
	return nil
}
