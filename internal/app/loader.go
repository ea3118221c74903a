package app

import (
	"context"
	"io"

	"image-compositor/internal/image"

	"github.com/cockroachdb/errors"
	"github.com/kpango/glg"
)

// LoadResult reports the outcome of an asynchronous load.
type LoadResult struct {
	Slot Slot
	Name string
	Err  error // nil on success
}

// Rejected reports whether the file was filtered out before decoding
// (nothing supplied, or not a JPEG/PNG).
func (r LoadResult) Rejected() bool {
	return errors.Is(r.Err, image.ErrNoFile) || errors.Is(r.Err, image.ErrUnsupportedType)
}

// Load reads and decodes r in the background and, on success, replaces the
// slot's image. done (optional) is called from the loading goroutine once
// the outcome is known. Concurrent loads into one slot are not cancelled:
// whichever finishes last wins. r is closed if it is an io.Closer.
func (c *Compositor) Load(ctx context.Context, slot Slot, name string, r io.Reader, done func(LoadResult)) {
	c.loads.Add(1)
	go func() {
		defer c.loads.Done()
		res := c.LoadSync(ctx, slot, name, r)
		if done != nil {
			done(res)
		}
	}()
}

// LoadSync is the blocking form of Load.
func (c *Compositor) LoadSync(ctx context.Context, slot Slot, name string, r io.Reader) LoadResult {
	res := LoadResult{Slot: slot, Name: name}
	if closer, ok := r.(io.Closer); ok && closer != nil {
		defer closer.Close()
	}

	decode := image.ReadAndDecode
	if c.opts.Cache != nil {
		decode = c.opts.Cache.ReadAndDecode
	}
	img, err := decode(ctx, name, r)
	if err == nil {
		err = c.SetImage(slot, img)
	}
	res.Err = err

	switch {
	case err == nil:
	case res.Rejected():
		glg.Debugf("Load: %s slot ignored %q: %v", slot, name, err)
		c.Emit(EventImageRejected, res)
	default:
		glg.Warnf("Load: %s slot could not load %q: %v", slot, name, err)
		c.Emit(EventImageRejected, res)
	}
	return res
}

// Wait blocks until every load started with Load has finished.
func (c *Compositor) Wait() {
	c.loads.Wait()
}
