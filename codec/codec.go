package codec

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"sync"

	"pixform/logger"

	"github.com/gabriel-vasile/mimetype"
)

// QualityMode selects between lossy encoding at a given quality and the
// codec's lossless mode, where quality is inapplicable.
type QualityMode struct {
	Lossless bool
	Quality  int // 1-100, ignored when Lossless is set
}

// Lossy returns a lossy quality mode.
func Lossy(q int) QualityMode { return QualityMode{Quality: q} }

// Lossless is the quality mode that preserves every input pixel.
var Lossless = QualityMode{Lossless: true}

// Error is returned for any failure inside the adapter. Stage identifies
// where the transcode broke down: "detect", "decode" or "encode".
type Error struct {
	Stage string
	Err   error
}

func (e *Error) Error() string { return fmt.Sprintf("%s: %v", e.Stage, e.Err) }
func (e *Error) Unwrap() error { return e.Err }

// EncodeFunc encodes a decoded image to one output format.
type EncodeFunc func(img image.Image, mode QualityMode) ([]byte, error)

var (
	registry   = map[string]EncodeFunc{}
	registryMu sync.RWMutex
)

// Register adds an encoder for a format, replacing any previous one.
func Register(format string, fn EncodeFunc) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[format] = fn
	logger.Debugf("encoder [%s] registered", format)
}

// Get looks up an encoder by format.
func Get(format string) (EncodeFunc, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	fn, ok := registry[format]
	return fn, ok
}

// RegisterDefaults registers the built-in WebP and AVIF encoders.
func RegisterDefaults() {
	Register("webp", EncodeWebP)
	Register("avif", EncodeAVIF)
}

// Adapter is the decode-then-encode transform. It works purely on byte
// buffers and never touches the filesystem.
type Adapter struct {
	// MaxPixels bounds width*height of the decoded image. Zero disables
	// the cap.
	MaxPixels int64
}

func NewAdapter(maxPixels int64) *Adapter {
	return &Adapter{MaxPixels: maxPixels}
}

// Transcode decodes data as PNG or JPEG and re-encodes it in the requested
// format. The input codec is determined from magic bytes; the declared MIME
// of an upload is never trusted here.
func (a *Adapter) Transcode(ctx context.Context, data []byte, format string, mode QualityMode) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, &Error{Stage: "decode", Err: err}
	}

	detected := mimetype.Detect(data)
	if !detected.Is("image/png") && !detected.Is("image/jpeg") {
		return nil, &Error{Stage: "detect", Err: fmt.Errorf("input is not a PNG or JPEG image (detected %s)", detected.String())}
	}

	img, err := a.decode(data)
	if err != nil {
		return nil, &Error{Stage: "decode", Err: err}
	}

	enc, ok := Get(format)
	if !ok {
		return nil, &Error{Stage: "encode", Err: fmt.Errorf("no encoder registered for format %q", format)}
	}

	if err := ctx.Err(); err != nil {
		return nil, &Error{Stage: "encode", Err: err}
	}

	out, err := enc(img, mode)
	if err != nil {
		return nil, &Error{Stage: "encode", Err: err}
	}
	return out, nil
}

// decode bounds the raster size before committing to a full decode. A small
// compressed file can otherwise expand to gigabytes of pixels.
func (a *Adapter) decode(data []byte) (image.Image, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("error reading image header: %w", err)
	}
	if a.MaxPixels > 0 {
		if px := int64(cfg.Width) * int64(cfg.Height); px > a.MaxPixels {
			return nil, fmt.Errorf("image is %dx%d (%d pixels), exceeds the %d pixel limit", cfg.Width, cfg.Height, px, a.MaxPixels)
		}
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("error decoding image: %w", err)
	}
	return img, nil
}
