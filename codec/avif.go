package codec

import (
	"bytes"
	"fmt"
	"image"

	"github.com/Kagami/go-avif"
)

// EncodeAVIF encodes via libaom. go-avif takes an aom quantizer in
// [0, 63] where 0 is lossless, so the 1-100 quality scale is inverted onto
// it; lossless mode also forces 4:4:4 subsampling so no chroma is discarded.
func EncodeAVIF(img image.Image, mode QualityMode) ([]byte, error) {
	opts := &avif.Options{Speed: avif.MaxSpeed}
	if mode.Lossless {
		opts.Quality = avif.MinQuality
		ratio := image.YCbCrSubsampleRatio444
		opts.SubsampleRatio = &ratio
	} else {
		opts.Quality = (100 - mode.Quality) * avif.MaxQuality / 100
	}

	var buf bytes.Buffer
	if err := avif.Encode(&buf, img, opts); err != nil {
		return nil, fmt.Errorf("error encoding to avif: %w", err)
	}
	return buf.Bytes(), nil
}
