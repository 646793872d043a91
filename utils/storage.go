package utils

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Presigned links cannot outlive seven days under SigV4. Admin reads mint a
// new one from the stored key.
const proofURLExpiry = 7 * 24 * time.Hour

type ProofStorage interface {
	UploadProof(ctx context.Context, key string, body io.Reader, size int64, contentType string) (string, error)
	ProofURL(ctx context.Context, key string) (string, error)
}

type StorageConfig struct {
	Endpoint  string
	Region    string
	Bucket    string
	AccessKey string
	SecretKey string
	PublicURL string
}

// S3Storage stores proof-of-payment images in an S3-compatible bucket
// (AWS, or the storage API of the hosted Postgres provider).
type S3Storage struct {
	client    *s3.Client
	presigner *s3.PresignClient
	bucket    string
	publicURL string
}

func NewS3Storage(ctx context.Context, cfg StorageConfig) (*S3Storage, error) {
	if cfg.AccessKey == "" || cfg.SecretKey == "" {
		return nil, fmt.Errorf("STORAGE_ACCESS_KEY or STORAGE_SECRET_KEY missing")
	}
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("STORAGE_BUCKET not set")
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load storage config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &S3Storage{
		client:    client,
		presigner: s3.NewPresignClient(client),
		bucket:    cfg.Bucket,
		publicURL: strings.TrimRight(cfg.PublicURL, "/"),
	}, nil
}

// UploadProof stores the object and returns a URL an admin can open now.
// Callers keep the key; presigned URLs expire.
func (s *S3Storage) UploadProof(ctx context.Context, key string, body io.Reader, size int64, contentType string) (string, error) {
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          body,
		ContentLength: aws.Int64(size),
		ContentType:   aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("proof upload failed: %w", err)
	}
	return s.ProofURL(ctx, key)
}

// ProofURL returns a link for a stored key: the public URL when one is
// configured, otherwise a presigned GET valid for proofURLExpiry.
func (s *S3Storage) ProofURL(ctx context.Context, key string) (string, error) {
	if s.publicURL != "" {
		return s.publicURL + "/" + key, nil
	}

	presigned, err := s.presigner.PresignGetObject(ctx,
		&s3.GetObjectInput{
			Bucket: aws.String(s.bucket),
			Key:    aws.String(key),
		},
		func(po *s3.PresignOptions) {
			po.Expires = proofURLExpiry
		},
	)
	if err != nil {
		return "", fmt.Errorf("failed to presign proof URL: %w", err)
	}
	return presigned.URL, nil
}

// ProofKey builds the object key for a user's upload: proofs/<user>/<unix-nanos><ext>.
func ProofKey(userID string, now time.Time, ext string) string {
	return fmt.Sprintf("proofs/%s/%d%s", userID, now.UnixNano(), strings.ToLower(ext))
}
