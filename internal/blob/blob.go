package blob

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	appcfg "github.com/fdg312/mealcraft/internal/config"
)

// Store keeps recipe photos. Objects are publicly readable through PublicURL.
type Store interface {
	PutObject(ctx context.Context, key string, data []byte, contentType string) (int64, error)
	DeleteObject(ctx context.Context, key string) error
	PublicURL(key string) string
}

// S3Store implements Store on any S3-compatible endpoint (AWS, MinIO, Yandex).
type S3Store struct {
	client        *s3.Client
	bucket        string
	publicBaseURL string
}

// photoCacheControl applies to every uploaded photo. Keys are never reused,
// so a photo can be cached forever.
const photoCacheControl = "public, max-age=31536000, immutable"

// NewS3Store creates a path-style S3 client bound to the configured bucket.
func NewS3Store(ctx context.Context, c appcfg.S3Config) (*S3Store, error) {
	if missing := c.MissingRequired(); len(missing) > 0 {
		return nil, fmt.Errorf("s3 photo store: missing %s", strings.Join(missing, ", "))
	}

	awsCfg, err := awscfg.LoadDefaultConfig(ctx,
		awscfg.WithRegion(c.Region),
		awscfg.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(c.AccessKeyID, c.SecretAccessKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("s3 photo store: load aws config: %w", err)
	}

	return &S3Store{
		client: s3.NewFromConfig(awsCfg, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(c.Endpoint)
			o.UsePathStyle = true
		}),
		bucket:        c.Bucket,
		publicBaseURL: strings.TrimRight(c.PublicBaseURL, "/"),
	}, nil
}

// PutObject stores a photo and returns the number of bytes written.
func (s *S3Store) PutObject(ctx context.Context, key string, data []byte, contentType string) (int64, error) {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String(contentType),
		CacheControl:  aws.String(photoCacheControl),
	})
	if err != nil {
		return 0, fmt.Errorf("put photo %s: %w", key, err)
	}
	return int64(len(data)), nil
}

func (s *S3Store) DeleteObject(ctx context.Context, key string) error {
	if _, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}); err != nil {
		return fmt.Errorf("delete photo %s: %w", key, err)
	}
	return nil
}

// PublicURL is the address a recipe's foto_url points at.
func (s *S3Store) PublicURL(key string) string {
	return s.publicBaseURL + "/" + strings.TrimLeft(key, "/")
}

var photoExt = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

// RecipePhotoKey returns recipes/{id}/{uuid}{ext}.
func RecipePhotoKey(recipeID int64, contentType string) string {
	return fmt.Sprintf("recipes/%d/%s%s", recipeID, uuid.NewString(), photoExt[contentType])
}
