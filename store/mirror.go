package store

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"pixform/config"
	"pixform/logger"
)

type mirrorReq struct {
	name string
	data []byte
}

// Mirrorer replicates artifacts to remote backends through a bounded queue
// of background workers. Mirroring is best-effort: a failed upload is
// retried with backoff and then logged, never surfaced to the client.
type Mirrorer struct {
	Targets        []config.MirrorConfig
	Workers        int
	QueueSize      int
	MaxRetries     int
	RetryBaseDelay time.Duration

	queue chan mirrorReq
	wg    sync.WaitGroup
}

func NewMirrorer(targets []config.MirrorConfig) *Mirrorer {
	m := &Mirrorer{
		Targets:        targets,
		Workers:        4,
		QueueSize:      256,
		MaxRetries:     3,
		RetryBaseDelay: 300 * time.Millisecond,
	}
	m.queue = make(chan mirrorReq, m.QueueSize)
	for i := 0; i < m.Workers; i++ {
		m.wg.Add(1)
		go m.worker()
	}
	return m
}

// Enqueue schedules an artifact for replication. If the queue is full the
// artifact is skipped rather than blocking the request path.
func (m *Mirrorer) Enqueue(name string, data []byte) {
	select {
	case m.queue <- mirrorReq{name: name, data: data}:
	default:
		logger.Warnf("mirror queue full, skipping replication of %s", name)
	}
}

// Close waits for all queued uploads to finish.
func (m *Mirrorer) Close() {
	close(m.queue)
	m.wg.Wait()
}

func (m *Mirrorer) worker() {
	defer m.wg.Done()
	for req := range m.queue {
		for _, target := range m.Targets {
			m.uploadWithRetry(target, req)
		}
	}
}

func (m *Mirrorer) uploadWithRetry(target config.MirrorConfig, req mirrorReq) {
	var err error
	for attempt := 1; attempt <= m.MaxRetries+1; attempt++ {
		ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
		err = upload(ctx, target, req.name, bytes.NewReader(req.data))
		cancel()
		if err == nil {
			return
		}
		if attempt <= m.MaxRetries {
			time.Sleep(m.RetryBaseDelay << (attempt - 1))
		}
	}
	logger.Errorf("mirror %s: giving up on %s after %d attempts: %v", target.Type, req.name, m.MaxRetries+1, err)
}

// upload dispatches one artifact to a single backend.
func upload(ctx context.Context, target config.MirrorConfig, name string, reader io.Reader) error {
	switch target.Type {
	case "s3":
		if err := uploadToS3(ctx, target.Settings, name, reader); err != nil {
			return fmt.Errorf("failed to upload to S3: %w", err)
		}
	case "gcs":
		if err := uploadToGCS(ctx, target.Settings, name, reader); err != nil {
			return fmt.Errorf("failed to upload to GCS: %w", err)
		}
	case "sftp":
		if err := uploadToSFTP(ctx, target.Settings, name, reader); err != nil {
			return fmt.Errorf("failed to upload to SFTP: %w", err)
		}
	default:
		return fmt.Errorf("unknown mirror type: %s", target.Type)
	}
	return nil
}
