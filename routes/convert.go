package routes

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"pixform/job"
	"pixform/logger"
)

// formOverhead is slack on top of the file caps for the multipart framing
// and the other form fields.
const formOverhead = 1 << 20

// Convert handles POST /convert: one file, one format, one quality.
// With ?raw=1 the encoded bytes are streamed back directly instead of being
// stored, matching the direct-bytes variant of the contract.
func (h *Handler) Convert(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.cfg.Upload.MaxFileBytes+formOverhead)

	if err := r.ParseMultipartForm(h.cfg.Upload.MaxMultipartMemoryMB << 20); err != nil {
		writeMultipartError(w, err)
		return
	}

	file, fh, err := r.FormFile("image")
	if err != nil {
		writeJSONError(w, `no file provided: form field key should be "image"`, http.StatusBadRequest)
		return
	}
	defer file.Close()

	req, ok := h.parseRequest(w, r)
	if !ok {
		return
	}

	in, ok := h.readUpload(w, file, fh)
	if !ok {
		return
	}

	if r.URL.Query().Get("raw") == "1" {
		h.convertRaw(w, r, in, req)
		return
	}

	art, err := h.runner.Run(r.Context(), in, req)
	if err != nil {
		logger.Errorf("conversion of %q failed: %v", in.OriginalName, err)
		writeJobError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, ConvertResponse{
		Success:     true,
		DownloadURL: art.DownloadURL,
		FileName:    art.FileName,
	})
}

// convertRaw transcodes and streams the result without touching the
// artifact store.
func (h *Handler) convertRaw(w http.ResponseWriter, r *http.Request, in job.InputImage, req job.Request) {
	out, err := h.runner.Codec.Transcode(r.Context(), in.Data, req.Format, req.Mode)
	if err != nil {
		logger.Errorf("raw conversion of %q failed: %v", in.OriginalName, err)
		writeJSONError(w, "image conversion failed: "+err.Error(), http.StatusInternalServerError)
		return
	}

	fileName := job.DeriveFileName(in.OriginalName, req.Format)
	w.Header().Set("Content-Type", "image/"+req.Format)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fileName))
	w.WriteHeader(http.StatusOK)
	w.Write(out)
}

// ConvertBatch handles POST /convert-batch: up to the batch limit of files
// sharing one format and quality. Per-item failures are folded into the
// results; only request-level violations short-circuit.
func (h *Handler) ConvertBatch(w http.ResponseWriter, r *http.Request) {
	maxBody := h.cfg.Upload.MaxFileBytes*int64(h.cfg.Limits.MaxBatch) + formOverhead
	r.Body = http.MaxBytesReader(w, r.Body, maxBody)

	if err := r.ParseMultipartForm(h.cfg.Upload.MaxMultipartMemoryMB << 20); err != nil {
		writeMultipartError(w, err)
		return
	}

	var files []*multipart.FileHeader
	if r.MultipartForm != nil {
		files = r.MultipartForm.File["images"]
	}
	if len(files) == 0 {
		writeJSONError(w, `no file provided: form field key should be "images"`, http.StatusBadRequest)
		return
	}
	if len(files) > h.cfg.Limits.MaxBatch {
		writeJSONError(w, fmt.Sprintf("too many files: batch limit is %d", h.cfg.Limits.MaxBatch), http.StatusBadRequest)
		return
	}

	req, ok := h.parseRequest(w, r)
	if !ok {
		return
	}

	inputs := make([]job.InputImage, 0, len(files))
	for _, fh := range files {
		file, err := fh.Open()
		if err != nil {
			writeJSONError(w, "an error occurred while reading the upload: "+err.Error(), http.StatusInternalServerError)
			return
		}
		in, ok := h.readUpload(w, file, fh)
		file.Close()
		if !ok {
			return
		}
		inputs = append(inputs, in)
	}

	results := h.runner.RunBatch(r.Context(), inputs, req)

	resp := BatchResponse{Success: true, Results: make([]BatchItemResult, len(results))}
	for i, res := range results {
		item := BatchItemResult{OriginalName: res.OriginalName}
		if res.Err != nil {
			item.Status = "error"
			item.Error = res.Err.Error()
		} else {
			item.Status = "success"
			item.FileName = res.Artifact.FileName
			item.DownloadURL = res.Artifact.DownloadURL
		}
		resp.Results[i] = item
	}

	writeJSON(w, http.StatusOK, resp)
}

// parseRequest validates the shared form fields. On failure it writes the
// error response and returns ok=false.
func (h *Handler) parseRequest(w http.ResponseWriter, r *http.Request) (job.Request, bool) {
	params := convertParams{Format: normalizeFormat(r.FormValue("format"))}
	if err := h.validator.Struct(params); err != nil {
		writeJSONError(w, "unsupported format: only webp and avif are supported", http.StatusBadRequest)
		return job.Request{}, false
	}

	return job.Request{
		Format: params.Format,
		Mode:   parseQuality(r.FormValue("quality")),
	}, true
}

// readUpload enforces the per-file size cap and MIME whitelist, then pulls
// the bytes into memory. These checks run before any job does.
func (h *Handler) readUpload(w http.ResponseWriter, file multipart.File, fh *multipart.FileHeader) (job.InputImage, bool) {
	if fh.Size > h.cfg.Upload.MaxFileBytes {
		writeJSONError(w, fmt.Sprintf("file %q exceeds the %d MiB size limit", fh.Filename, h.cfg.Upload.MaxFileBytes>>20), http.StatusBadRequest)
		return job.InputImage{}, false
	}

	declared := fh.Header.Get("Content-Type")
	if !job.AllowedInput(declared) {
		writeJSONError(w, fmt.Sprintf("unsupported file type %q: only PNG and JPEG uploads are accepted", declared), http.StatusBadRequest)
		return job.InputImage{}, false
	}

	data, err := io.ReadAll(file)
	if err != nil {
		writeJSONError(w, "an error occurred while reading the upload: "+err.Error(), http.StatusInternalServerError)
		return job.InputImage{}, false
	}

	return job.InputImage{
		Data:         data,
		DeclaredMIME: declared,
		OriginalName: fh.Filename,
	}, true
}
