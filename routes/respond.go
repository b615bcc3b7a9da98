package routes

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"pixform/codec"
	"pixform/job"

	"github.com/getsentry/sentry-go"
)

const defaultQuality = 80

type APIError struct {
	Error string `json:"error"`
}

// ConvertResponse is the single-conversion success body.
type ConvertResponse struct {
	Success     bool   `json:"success"`
	DownloadURL string `json:"downloadUrl"`
	FileName    string `json:"fileName"`
}

// BatchItemResult is one entry of a batch response, ordered by input index.
type BatchItemResult struct {
	OriginalName string `json:"originalName"`
	FileName     string `json:"fileName,omitempty"`
	DownloadURL  string `json:"downloadUrl,omitempty"`
	Error        string `json:"error,omitempty"`
	Status       string `json:"status"`
}

// BatchResponse is the batch-conversion success body. Success refers to the
// request being structurally valid; per-item outcomes carry their own status.
type BatchResponse struct {
	Success bool              `json:"success"`
	Results []BatchItemResult `json:"results"`
}

func writeJSON(w http.ResponseWriter, code int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}

func writeJSONError(w http.ResponseWriter, message string, code int) {
	writeJSON(w, code, APIError{Error: message})
}

// writeMultipartError maps body-parser failures onto the response contract:
// the size-limit error becomes a descriptive 400, a wrong content type a
// 400, anything else a generic 500.
func writeMultipartError(w http.ResponseWriter, err error) {
	msg := strings.ToLower(err.Error())

	switch {
	case strings.Contains(msg, "too large"):
		writeJSONError(w, "uploaded file exceeds the maximum allowed size", http.StatusBadRequest)

	case strings.Contains(msg, "content-type isn't multipart/form-data"):
		writeJSONError(w, "invalid content type, expected multipart/form-data", http.StatusBadRequest)

	default:
		writeJSONError(w, "failed to parse upload: "+err.Error(), http.StatusInternalServerError)
	}
}

// writeJobError maps a job failure to its status code: rejected input is the
// client's fault, everything else is a 500 worth reporting.
func writeJobError(w http.ResponseWriter, err error) {
	var jerr *job.Error
	if errors.As(err, &jerr) && jerr.Kind == job.UnsupportedInput {
		writeJSONError(w, jerr.Error(), http.StatusBadRequest)
		return
	}
	sentry.CaptureException(err)
	writeJSONError(w, "image conversion failed: "+err.Error(), http.StatusInternalServerError)
}

// normalizeFormat lowercases and trims the format form field.
func normalizeFormat(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// parseQuality maps the quality form field to a quality mode. The literal
// "lossless" selects lossless encoding; integers are clamped into [1, 100];
// a missing or unparsable value falls back to the default of 80.
func parseQuality(s string) codec.QualityMode {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "lossless" {
		return codec.Lossless
	}
	if s == "" {
		return codec.Lossy(defaultQuality)
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return codec.Lossy(defaultQuality)
	}
	if n < 1 {
		n = 1
	} else if n > 100 {
		n = 100
	}
	return codec.Lossy(n)
}
