// Package image provides image decoding, layer poses, and compositing.
package image

import (
	"bytes"
	"context"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"

	"github.com/cespare/xxhash/v2"
	"github.com/cockroachdb/errors"
	"github.com/disintegration/imaging"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

// ThumbnailSize is the bounding box edge of drop-zone previews.
const ThumbnailSize = 96

var (
	// ErrNoFile is returned when a drop delivered no file or an empty one.
	ErrNoFile = errors.New("no file supplied")
	// ErrUnsupportedType is returned for content that is not JPEG or PNG.
	ErrUnsupportedType = errors.New("unsupported file type")
	// ErrDecode is returned when JPEG/PNG content cannot be decoded.
	ErrDecode = errors.New("image decode failed")
)

// AcceptedTypes lists the MIME types a drop zone accepts.
func AcceptedTypes() []string {
	return []string{"image/jpeg", "image/png"}
}

// AcceptedExtensions lists the file extensions offered by the browse dialog.
func AcceptedExtensions() []string {
	return []string{".png", ".jpg", ".jpeg"}
}

// DetectType sniffs the MIME type of data and reports whether it is accepted.
// Subtypes (e.g. APNG) are reported as their accepted parent.
func DetectType(data []byte) (string, bool) {
	detected := mimetype.Detect(data)
	for m := detected; m != nil; m = m.Parent() {
		for _, accepted := range AcceptedTypes() {
			if m.Is(accepted) {
				return accepted, true
			}
		}
	}
	return detected.String(), false
}

// Decoded is an in-memory bitmap ready for rendering. It is never mutated
// after Decode returns it.
type Decoded struct {
	Name      string      // Source file name
	MIME      string      // Detected content type
	Image     image.Image // Decoded pixels
	Digest    uint64      // xxhash of the raw bytes
	Thumbnail image.Image // Preview fitted into ThumbnailSize
}

// Width returns the image width in pixels.
func (d *Decoded) Width() int {
	if d == nil || d.Image == nil {
		return 0
	}
	return d.Image.Bounds().Dx()
}

// Height returns the image height in pixels.
func (d *Decoded) Height() int {
	if d == nil || d.Image == nil {
		return 0
	}
	return d.Image.Bounds().Dy()
}

// Decode filters data by content type and decodes it.
func Decode(name string, data []byte) (*Decoded, error) {
	if len(data) == 0 {
		return nil, ErrNoFile
	}

	mime, ok := DetectType(data)
	if !ok {
		return nil, errors.Wrapf(ErrUnsupportedType, "%s is %s", name, mime)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Mark(errors.Wrapf(err, "failed to decode %s", name), ErrDecode)
	}
	b := img.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return nil, errors.Wrapf(ErrDecode, "%s has no pixels", name)
	}

	return &Decoded{
		Name:      name,
		MIME:      mime,
		Image:     img,
		Digest:    xxhash.Sum64(data),
		Thumbnail: imaging.Fit(img, ThumbnailSize, ThumbnailSize, imaging.Lanczos),
	}, nil
}

// ReadAndDecode reads all of r and decodes it. A nil reader yields ErrNoFile.
func ReadAndDecode(ctx context.Context, name string, r io.Reader) (*Decoded, error) {
	data, err := readAll(ctx, name, r)
	if err != nil {
		return nil, err
	}
	return Decode(name, data)
}

func readAll(ctx context.Context, name string, r io.Reader) ([]byte, error) {
	if r == nil {
		return nil, ErrNoFile
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read %s", name)
	}
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(err, "load abandoned")
	}
	return data, nil
}

// Layer is the on-canvas instance of a decoded image.
type Layer struct {
	ID     uuid.UUID // Unique per layer instance; a replaced image gets a new ID
	Source *Decoded  // Image drawn by the layer
	Pose   Pose      // Current transform
}

// NewLayer creates a Layer showing src at the given pose.
func NewLayer(src *Decoded, pose Pose) *Layer {
	return &Layer{
		ID:     uuid.New(),
		Source: src,
		Pose:   pose.Clamped(),
	}
}

// Clone returns a copy of the layer sharing the immutable source image.
func (l *Layer) Clone() *Layer {
	if l == nil {
		return nil
	}
	c := *l
	return &c
}
