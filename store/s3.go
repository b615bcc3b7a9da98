package store

import (
	"context"
	"fmt"
	"io"
	"path"

	"pixform/logger"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// uploadToS3 copies one artifact into an S3 bucket. Settings keys:
// accessKey, secretKey, region, bucket and an optional key prefix.
func uploadToS3(ctx context.Context, settings map[string]string, name string, reader io.Reader) error {
	creds := credentials.NewStaticCredentialsProvider(settings["accessKey"], settings["secretKey"], "")
	bucket := settings["bucket"]
	key := path.Join(settings["prefix"], name)

	client := s3.New(s3.Options{
		Region:      settings["region"],
		Credentials: creds,
	})
	uploader := manager.NewUploader(client)

	_, err := uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
		Body:   reader,
	})
	if err != nil {
		return fmt.Errorf("failed to upload object %s to bucket %s: %w", key, bucket, err)
	}

	logger.Debugf("mirrored '%s' to s3 bucket '%s'", key, bucket)
	return nil
}
