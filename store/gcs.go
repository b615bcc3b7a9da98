package store

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"path"

	"pixform/logger"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

// uploadToGCS copies one artifact into a Google Cloud Storage bucket.
// Settings keys: bucket, credentialsJSON (base64 service account key) and an
// optional object prefix.
func uploadToGCS(ctx context.Context, settings map[string]string, name string, reader io.Reader) error {
	credentialsJSON, err := base64.StdEncoding.DecodeString(settings["credentialsJSON"])
	if err != nil {
		credentialsJSON = []byte(settings["credentialsJSON"])
	}
	bucketName := settings["bucket"]
	objectName := path.Join(settings["prefix"], name)

	client, err := storage.NewClient(ctx, option.WithCredentialsJSON(credentialsJSON))
	if err != nil {
		return fmt.Errorf("storage.NewClient: %w", err)
	}
	defer client.Close()

	wc := client.Bucket(bucketName).Object(objectName).NewWriter(ctx)
	if _, err = io.Copy(wc, reader); err != nil {
		return fmt.Errorf("io.Copy: %w", err)
	}
	if err := wc.Close(); err != nil {
		return fmt.Errorf("Writer.Close: %w", err)
	}

	logger.Debugf("mirrored '%s' to gcs bucket '%s'", objectName, bucketName)
	return nil
}
