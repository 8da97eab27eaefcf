package services

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	sc "github.com/dmitrijs2005/talkscribe/internal/server/config"
	"github.com/google/uuid"
)

// AudioStore keeps archived recordings in object storage.
type AudioStore interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
	Delete(ctx context.Context, key string) error
	PresignGet(ctx context.Context, key string) (string, error)
}

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return s3.NewPresignClient(c)
	}

	putObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput) error {
		_, err := c.PutObject(ctx, in)
		return err
	}
	deleteObject = func(c *s3.Client, ctx context.Context, in *s3.DeleteObjectInput) error {
		_, err := c.DeleteObject(ctx, in)
		return err
	}
	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignGetObject(ctx, in, optFns...)
	}
)

// presignExpiry bounds the lifetime of playback URLs.
const presignExpiry = 15 * time.Minute

// S3AudioStore talks to an S3-compatible backend (MinIO in development).
type S3AudioStore struct {
	client  *s3.Client
	presign *s3.PresignClient
	bucket  string
}

// NewS3AudioStore builds a store from the S3 settings in cfg. It returns
// (nil, nil) when no bucket is configured.
func NewS3AudioStore(ctx context.Context, cfg *sc.Config) (*S3AudioStore, error) {
	if cfg.S3Bucket == "" {
		return nil, nil
	}

	awsCfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(cfg.S3Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.S3RootUser,
			cfg.S3RootPassword,
			"",
		)))
	if err != nil {
		return nil, err
	}

	client := newS3ClientFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(cfg.S3BaseEndpoint)
		o.UsePathStyle = true
	})

	return &S3AudioStore{
		client:  client,
		presign: newS3PresignClient(client),
		bucket:  cfg.S3Bucket,
	}, nil
}

// NewAudioKey returns a date-partitioned object key for a user's recording.
func NewAudioKey(userID string) string {
	d := time.Now().UTC()
	return fmt.Sprintf("users/%s/%d/%02d/%02d/%v.wav", userID, d.Year(), d.Month(), d.Day(), uuid.New())
}

func (s *S3AudioStore) Put(ctx context.Context, key string, data []byte, contentType string) error {
	return putObject(s.client, ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(data))),
	})
}

func (s *S3AudioStore) Delete(ctx context.Context, key string) error {
	return deleteObject(s.client, ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
}

func (s *S3AudioStore) PresignGet(ctx context.Context, key string) (string, error) {
	req, err := presignGetObject(s.presign, ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(presignExpiry))
	if err != nil {
		return "", err
	}
	return req.URL, nil
}
