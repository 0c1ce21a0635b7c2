package media

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog/log"

	"github.com/HandityaGilang/Isvara-Inventory-Manager2/internal/config"
)

type putObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Uploader writes images to an S3-compatible bucket and returns their
// public URL.
type S3Uploader struct {
	client    putObjectAPI
	bucket    string
	publicURL string
	maxBytes  int64
}

func NewS3Uploader(ctx context.Context, cfg config.StorageConfig, maxBytes int64) (*S3Uploader, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("load storage config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})
	return newS3Uploader(client, cfg, maxBytes), nil
}

func newS3Uploader(client putObjectAPI, cfg config.StorageConfig, maxBytes int64) *S3Uploader {
	publicURL := cfg.PublicURL
	if publicURL == "" && cfg.Endpoint != "" {
		publicURL = strings.TrimRight(cfg.Endpoint, "/") + "/" + cfg.Bucket
	}
	if publicURL == "" {
		publicURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, cfg.Region)
	}
	return &S3Uploader{
		client:    client,
		bucket:    cfg.Bucket,
		publicURL: strings.TrimRight(publicURL, "/"),
		maxBytes:  maxBytes,
	}
}

func (u *S3Uploader) Upload(ctx context.Context, name string, data []byte) (string, error) {
	mtype, ext, err := Detect(data, u.maxBytes)
	if err != nil {
		return "", err
	}
	key := ObjectKey(name, ext)

	_, err = u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(u.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(mtype),
	})
	if err != nil {
		log.Error().Err(err).Str("key", key).Msg("image upload failed")
		return "", fmt.Errorf("upload %s: %w", key, err)
	}

	log.Info().Str("key", key).Msg("uploaded product image")
	return u.publicURL + "/" + key, nil
}
