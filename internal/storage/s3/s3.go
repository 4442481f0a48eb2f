package s3

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png" // decoder for provider output
	"log"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/disintegration/imaging"
	"github.com/google/uuid"
)

// Uploader publishes image bytes to the CDN and returns a public URL.
// Satisfied by Storage; mocked in service tests.
type Uploader interface {
	UploadImage(ctx context.Context, data []byte, contentType string) (string, error)
}

// Storage uploads generated and edited images to S3-compatible object storage,
// which fronts as the CDN for creation content.
type Storage struct {
	client   *s3.Client
	bucket   string
	endpoint string
}

// Config holds S3 connection settings.
type Config struct {
	Region          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
	Endpoint        string
}

// New creates an S3 storage client against a custom endpoint.
func New(cfg Config) (*Storage, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(context.TODO(),
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(aws.CredentialsProviderFunc(
			func(ctx context.Context) (aws.Credentials, error) {
				return aws.Credentials{
					AccessKeyID:     cfg.AccessKeyID,
					SecretAccessKey: cfg.SecretAccessKey,
				}, nil
			},
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		// Path-style keeps S3-compatible services (MinIO etc.) working.
		o.UsePathStyle = true
		o.Region = cfg.Region
	})

	return &Storage{
		client:   client,
		bucket:   cfg.Bucket,
		endpoint: cfg.Endpoint,
	}, nil
}

// UploadImage stores the image under creations/ with a generated name and a
// 300px thumbnail under thumbnails/. The original's URL is returned; a failed
// thumbnail upload is logged but does not fail the request.
func (s *Storage) UploadImage(ctx context.Context, data []byte, contentType string) (string, error) {
	name := uuid.New().String() + ".png"
	originalKey := "creations/" + name
	thumbKey := "thumbnails/" + name

	if thumb, err := s.createThumbnail(data); err == nil {
		if _, err := s.uploadBytes(ctx, thumb, thumbKey, "image/jpeg"); err != nil {
			log.Printf("failed to upload thumbnail: %v", err)
		}
	}

	return s.uploadBytes(ctx, data, originalKey, contentType)
}

// createThumbnail downsizes the image to a 300x300 JPEG.
func (s *Storage) createThumbnail(data []byte) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	thumb := imaging.Thumbnail(img, 300, 300, imaging.Lanczos)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, thumb, &jpeg.Options{Quality: 85}); err != nil {
		return nil, fmt.Errorf("encode thumbnail: %w", err)
	}
	return buf.Bytes(), nil
}

// uploadBytes puts an object and returns its public URL.
func (s *Storage) uploadBytes(ctx context.Context, data []byte, key, contentType string) (string, error) {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("upload to S3: %w", err)
	}

	return fmt.Sprintf("%s/%s/%s", s.endpoint, s.bucket, key), nil
}
