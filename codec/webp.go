package codec

import (
	"bytes"
	"fmt"
	"image"

	"github.com/chai2010/webp"
)

// EncodeWebP encodes via libwebp. Lossy mode maps quality straight through;
// lossless mode ignores quality entirely.
func EncodeWebP(img image.Image, mode QualityMode) ([]byte, error) {
	opts := &webp.Options{Exact: true}
	if mode.Lossless {
		opts.Lossless = true
	} else {
		opts.Quality = float32(mode.Quality)
	}

	var buf bytes.Buffer
	if err := webp.Encode(&buf, img, opts); err != nil {
		return nil, fmt.Errorf("error encoding to webp: %w", err)
	}
	return buf.Bytes(), nil
}
