package job

import (
	"context"
	"fmt"

	"pixform/codec"
	"pixform/logger"

	"github.com/google/uuid"
)

// InputImage is one uploaded file. The bytes live only for the duration of
// the request that carried them.
type InputImage struct {
	Data         []byte
	DeclaredMIME string
	OriginalName string
}

// Request is the shared conversion setting for one HTTP request.
type Request struct {
	Format string `validate:"required,oneof=webp avif"`
	Mode   codec.QualityMode
}

// Artifact is a successfully produced output.
type Artifact struct {
	FileName    string
	DownloadURL string
	Size        int
}

type ErrorKind int

const (
	UnsupportedInput ErrorKind = iota
	TranscodeFailed
	StoreFailed
)

// Error is the typed failure of a single conversion job.
type Error struct {
	Kind ErrorKind
	Err  error
}

func (e *Error) Error() string { return e.Err.Error() }
func (e *Error) Unwrap() error { return e.Err }

var allowedMIMEs = map[string]struct{}{
	"image/png":  {},
	"image/jpeg": {},
}

// AllowedInput reports whether a declared MIME type is accepted for upload.
func AllowedInput(mime string) bool {
	_, ok := allowedMIMEs[mime]
	return ok
}

// Transcoder is the codec adapter seam; tests substitute a fake.
type Transcoder interface {
	Transcode(ctx context.Context, data []byte, format string, mode codec.QualityMode) ([]byte, error)
}

// Store persists an artifact under a filename and returns its download URL.
type Store interface {
	Put(name string, data []byte) (string, error)
}

// Outcome is what gets logged to the conversion records store.
type Outcome struct {
	ID           string
	OriginalName string
	FileName     string
	Format       string
	Status       string
	Error        string
	Size         int
}

// Recorder receives the outcome of every job. May be nil.
type Recorder interface {
	Record(o Outcome)
}

// Runner executes conversion jobs against a codec adapter and an artifact
// store.
type Runner struct {
	Codec    Transcoder
	Store    Store
	Recorder Recorder
	Workers  int
}

// Run converts one input. The input's declared MIME must be whitelisted, the
// bytes must decode, and the artifact must be stored; each step failing maps
// to its own error kind.
func (r *Runner) Run(ctx context.Context, in InputImage, req Request) (Artifact, error) {
	if !AllowedInput(in.DeclaredMIME) {
		return Artifact{}, r.fail(in, req, &Error{
			Kind: UnsupportedInput,
			Err:  fmt.Errorf("unsupported file type: %s", in.DeclaredMIME),
		})
	}

	fileName := DeriveFileName(in.OriginalName, req.Format)

	out, err := r.Codec.Transcode(ctx, in.Data, req.Format, req.Mode)
	if err != nil {
		return Artifact{}, r.fail(in, req, &Error{Kind: TranscodeFailed, Err: err})
	}

	url, err := r.Store.Put(fileName, out)
	if err != nil {
		return Artifact{}, r.fail(in, req, &Error{Kind: StoreFailed, Err: err})
	}

	art := Artifact{FileName: fileName, DownloadURL: url, Size: len(out)}
	if r.Recorder != nil {
		r.Recorder.Record(Outcome{
			ID:           uuid.NewString(),
			OriginalName: in.OriginalName,
			FileName:     fileName,
			Format:       req.Format,
			Status:       "success",
			Size:         art.Size,
		})
	}
	logger.Debugf("converted %q to %q (%d bytes)", in.OriginalName, fileName, art.Size)
	return art, nil
}

func (r *Runner) fail(in InputImage, req Request, jerr *Error) error {
	if r.Recorder != nil {
		r.Recorder.Record(Outcome{
			ID:           uuid.NewString(),
			OriginalName: in.OriginalName,
			Format:       req.Format,
			Status:       "error",
			Error:        jerr.Error(),
		})
	}
	return jerr
}
