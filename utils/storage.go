package utils

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// ObjectStore uploads reward icons to any S3-compatible bucket (R2, MinIO,
// plain S3).
type ObjectStore struct {
	client  *s3.Client
	bucket  string
	baseURL string
}

// NewObjectStoreFromEnv builds the store from STORAGE_* variables. Returns
// (nil, nil) when STORAGE_ENDPOINT or STORAGE_BUCKET is unset: icon uploads
// are an optional feature and the server runs fine without them.
func NewObjectStoreFromEnv() (*ObjectStore, error) {
	endpoint := os.Getenv("STORAGE_ENDPOINT")
	bucket := os.Getenv("STORAGE_BUCKET")
	if endpoint == "" || bucket == "" {
		return nil, nil
	}

	accessKeyID := os.Getenv("STORAGE_ACCESS_KEY_ID")
	accessKeySecret := os.Getenv("STORAGE_ACCESS_KEY_SECRET")
	baseURL := os.Getenv("STORAGE_PUBLIC_URL")
	if baseURL == "" {
		baseURL = strings.TrimSuffix(endpoint, "/") + "/" + bucket
	}

	cfg, err := config.LoadDefaultConfig(context.Background(),
		config.WithRegion("auto"),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			accessKeyID, accessKeySecret, "",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load storage config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(endpoint)
		o.UsePathStyle = true
	})

	return &ObjectStore{client: client, bucket: bucket, baseURL: baseURL}, nil
}

// Upload puts a multipart file into the bucket and returns its public URL.
func (o *ObjectStore) Upload(ctx context.Context, fileHeader *multipart.FileHeader, key string) (string, error) {
	file, err := fileHeader.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	buf := new(bytes.Buffer)
	if _, err := io.Copy(buf, file); err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}

	_, err = o.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(o.bucket),
		Key:         aws.String(key),
		Body:        buf,
		ContentType: aws.String(fileHeader.Header.Get("Content-Type")),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload object: %w", err)
	}

	return fmt.Sprintf("%s/%s", o.baseURL, key), nil
}
