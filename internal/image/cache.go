package image

import (
	"context"
	"io"
	"strconv"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/kpango/gache"
)

// DecodeCache remembers decoded images by content digest, so dropping the
// same bytes again skips decoding and thumbnailing.
type DecodeCache struct {
	g gache.Gache
}

// NewDecodeCache creates a cache whose entries expire after ttl.
func NewDecodeCache(ttl time.Duration) *DecodeCache {
	return &DecodeCache{g: gache.New().SetDefaultExpire(ttl)}
}

// Decode behaves like the package-level Decode. A hit returns a copy carrying
// the new name.
func (c *DecodeCache) Decode(name string, data []byte) (*Decoded, error) {
	if len(data) == 0 {
		return nil, ErrNoFile
	}
	key := strconv.FormatUint(xxhash.Sum64(data), 16)
	if v, ok := c.g.Get(key); ok {
		if d, ok := v.(*Decoded); ok {
			hit := *d
			hit.Name = name
			return &hit, nil
		}
	}

	d, err := Decode(name, data)
	if err != nil {
		return nil, err
	}
	c.g.Set(key, d)
	return d, nil
}

// ReadAndDecode reads all of r and decodes it through the cache.
func (c *DecodeCache) ReadAndDecode(ctx context.Context, name string, r io.Reader) (*Decoded, error) {
	data, err := readAll(ctx, name, r)
	if err != nil {
		return nil, err
	}
	return c.Decode(name, data)
}
