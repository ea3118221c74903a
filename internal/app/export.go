package app

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"image-compositor/internal/image"

	"github.com/cockroachdb/errors"
	"github.com/kpango/glg"
)

// ExportName is the file name downloads are saved under.
const ExportName = "download.png"

// maxExportAttempts bounds the numbered-name search in ExportFile.
const maxExportAttempts = 1000

// Composite snapshots the present layers into a renderable composite. The
// transform overlay is never part of it.
func (c *Compositor) Composite() *image.Composite {
	comp := image.NewComposite(image.CanvasSize, image.CanvasSize)
	comp.Interpolation = c.opts.Interpolation
	for _, l := range c.Layers() {
		comp.AddLayer(l)
	}
	return comp
}

// Export writes the canvas as PNG. It does not touch layers or selection.
func (c *Compositor) Export(w io.Writer) error {
	if err := c.Composite().EncodePNG(w); err != nil {
		return err
	}
	c.Emit(EventExported, "")
	return nil
}

// ExportFile saves the canvas into dir as download.png. An existing file is
// never overwritten; the next free name "download (n).png" is used instead.
func (c *Compositor) ExportFile(dir string) (string, error) {
	f, path, err := createExportFile(dir)
	if err != nil {
		return "", err
	}

	if err := c.Composite().EncodePNG(f); err != nil {
		f.Close()
		os.Remove(path)
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", errors.Wrapf(err, "failed to close %s", path)
	}

	glg.Infof("Export: wrote %s", path)
	c.Emit(EventExported, path)
	return path, nil
}

// createExportFile exclusively creates the first free download name in dir.
func createExportFile(dir string) (*os.File, string, error) {
	ext := filepath.Ext(ExportName)
	base := strings.TrimSuffix(ExportName, ext)

	for i := 0; i < maxExportAttempts; i++ {
		name := ExportName
		if i > 0 {
			name = fmt.Sprintf("%s (%d)%s", base, i, ext)
		}
		path := filepath.Join(dir, name)
		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if err == nil {
			return f, path, nil
		}
		if !os.IsExist(err) {
			return nil, "", errors.Wrapf(err, "failed to create %s", path)
		}
	}
	return nil, "", errors.Newf("no free file name for %s in %s", ExportName, dir)
}
