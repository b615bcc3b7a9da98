package job

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"pixform/codec"
)

// fakeCodec transcodes by prefixing the payload; inputs whose payload is
// "corrupt" fail the way the real adapter fails on garbage bytes.
type fakeCodec struct{}

func (fakeCodec) Transcode(ctx context.Context, data []byte, format string, mode codec.QualityMode) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, &codec.Error{Stage: "decode", Err: err}
	}
	if string(data) == "corrupt" {
		return nil, &codec.Error{Stage: "detect", Err: errors.New("input is not a PNG or JPEG image")}
	}
	return append([]byte(format+":"), data...), nil
}

// memStore collects artifacts in memory.
type memStore struct {
	mu    sync.Mutex
	files map[string][]byte
	fail  bool
}

func newMemStore() *memStore { return &memStore{files: map[string][]byte{}} }

func (m *memStore) Put(name string, data []byte) (string, error) {
	if m.fail {
		return "", errors.New("disk full")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[name] = data
	return "/downloads/" + name, nil
}

type memRecorder struct {
	mu       sync.Mutex
	outcomes []Outcome
}

func (m *memRecorder) Record(o Outcome) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.outcomes = append(m.outcomes, o)
}

func testRunner() (*Runner, *memStore, *memRecorder) {
	st := newMemStore()
	rec := &memRecorder{}
	return &Runner{Codec: fakeCodec{}, Store: st, Recorder: rec, Workers: 2}, st, rec
}

func pngInput(name, payload string) InputImage {
	return InputImage{Data: []byte(payload), DeclaredMIME: "image/png", OriginalName: name}
}

func TestRunSuccess(t *testing.T) {
	runner, st, rec := testRunner()

	art, err := runner.Run(context.Background(), pngInput("sample.png", "pixels"), Request{Format: "webp", Mode: codec.Lossy(80)})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if art.FileName != "sample.webp" {
		t.Errorf("FileName = %q, want %q", art.FileName, "sample.webp")
	}
	if art.DownloadURL != "/downloads/sample.webp" {
		t.Errorf("DownloadURL = %q, want %q", art.DownloadURL, "/downloads/sample.webp")
	}
	if got := string(st.files["sample.webp"]); got != "webp:pixels" {
		t.Errorf("stored bytes = %q, want %q", got, "webp:pixels")
	}
	if len(rec.outcomes) != 1 || rec.outcomes[0].Status != "success" {
		t.Errorf("expected one success outcome, got %+v", rec.outcomes)
	}
}

func TestRunRejectsUnsupportedMIME(t *testing.T) {
	runner, st, _ := testRunner()

	in := InputImage{Data: []byte("x"), DeclaredMIME: "image/gif", OriginalName: "anim.gif"}
	_, err := runner.Run(context.Background(), in, Request{Format: "webp"})

	var jerr *Error
	if !errors.As(err, &jerr) || jerr.Kind != UnsupportedInput {
		t.Fatalf("expected UnsupportedInput error, got %v", err)
	}
	if len(st.files) != 0 {
		t.Errorf("no artifact should be written on failure, got %v", st.files)
	}
}

func TestRunMapsTranscodeFailure(t *testing.T) {
	runner, st, rec := testRunner()

	_, err := runner.Run(context.Background(), pngInput("bad.png", "corrupt"), Request{Format: "webp"})

	var jerr *Error
	if !errors.As(err, &jerr) || jerr.Kind != TranscodeFailed {
		t.Fatalf("expected TranscodeFailed error, got %v", err)
	}
	if len(st.files) != 0 {
		t.Errorf("no artifact should be written on failure, got %v", st.files)
	}
	if len(rec.outcomes) != 1 || rec.outcomes[0].Status != "error" {
		t.Errorf("expected one error outcome, got %+v", rec.outcomes)
	}
}

func TestRunMapsStoreFailure(t *testing.T) {
	runner, st, _ := testRunner()
	st.fail = true

	_, err := runner.Run(context.Background(), pngInput("sample.png", "pixels"), Request{Format: "webp"})

	var jerr *Error
	if !errors.As(err, &jerr) || jerr.Kind != StoreFailed {
		t.Fatalf("expected StoreFailed error, got %v", err)
	}
	if !strings.Contains(err.Error(), "disk full") {
		t.Errorf("error should carry the store message, got %q", err.Error())
	}
}

func TestRunBatchPreservesOrderAndIsolatesFailures(t *testing.T) {
	runner, st, _ := testRunner()

	inputs := []InputImage{
		pngInput("a.png", "one"),
		pngInput("b.png", "corrupt"),
		pngInput("c.png", "three"),
	}

	results := runner.RunBatch(context.Background(), inputs, Request{Format: "webp", Mode: codec.Lossy(80)})

	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	wantNames := []string{"a.png", "b.png", "c.png"}
	for i, res := range results {
		if res.OriginalName != wantNames[i] {
			t.Errorf("results[%d].OriginalName = %q, want %q", i, res.OriginalName, wantNames[i])
		}
	}
	if results[0].Err != nil || results[2].Err != nil {
		t.Errorf("items 0 and 2 should succeed: %v, %v", results[0].Err, results[2].Err)
	}
	if results[1].Err == nil {
		t.Error("item 1 should fail")
	}
	if results[0].Artifact.FileName != "a.webp" || results[2].Artifact.FileName != "c.webp" {
		t.Errorf("unexpected artifact names: %+v, %+v", results[0].Artifact, results[2].Artifact)
	}
	if _, ok := st.files["b.webp"]; ok {
		t.Error("failed item must not leave an artifact")
	}
	if len(st.files) != 2 {
		t.Errorf("expected 2 stored artifacts, got %d", len(st.files))
	}
}

func TestRunBatchManyItemsUnderWorkerBound(t *testing.T) {
	runner, _, _ := testRunner()
	runner.Workers = 3

	var inputs []InputImage
	for i := 0; i < 10; i++ {
		inputs = append(inputs, pngInput(fmt.Sprintf("img-%02d.png", i), fmt.Sprintf("payload-%d", i)))
	}

	results := runner.RunBatch(context.Background(), inputs, Request{Format: "avif", Mode: codec.Lossless})

	if len(results) != 10 {
		t.Fatalf("expected 10 results, got %d", len(results))
	}
	for i, res := range results {
		want := fmt.Sprintf("img-%02d.avif", i)
		if res.Err != nil {
			t.Fatalf("item %d failed: %v", i, res.Err)
		}
		if res.Artifact.FileName != want {
			t.Errorf("results[%d].FileName = %q, want %q", i, res.Artifact.FileName, want)
		}
	}
}

func TestRunBatchAbandonsOnCancelledContext(t *testing.T) {
	runner, _, _ := testRunner()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results := runner.RunBatch(ctx, []InputImage{pngInput("a.png", "one")}, Request{Format: "webp"})
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if results[0].Err == nil {
		t.Error("cancelled context should surface as a per-item error")
	}
}
