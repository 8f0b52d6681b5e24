package storage

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/rescuelink/api-go/config"
)

// PhotoStore writes report photos and avatars to Cloudflare R2. Keys carry a
// uuid so concurrent submissions can never collide.
type PhotoStore struct {
	Client *s3.Client
	Config *config.R2Config
}

func NewPhotoStore(cfg *config.Config) *PhotoStore {
	r2 := cfg.Storage

	client := s3.New(s3.Options{
		BaseEndpoint: aws.String(fmt.Sprintf("https://%s.r2.cloudflarestorage.com", r2.AccountID)),
		Credentials: credentials.NewStaticCredentialsProvider(
			r2.AccessKeyID,
			r2.SecretAccessKey,
			"",
		),
		Region: r2.Region,
	})

	return &PhotoStore{Client: client, Config: &cfg.Storage}
}

// Put stores the bytes under the given key and returns the public URL.
func (ps *PhotoStore) Put(ctx context.Context, key, contentType string, data []byte) (string, error) {
	_, err := ps.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(ps.Config.BucketName),
		Key:           aws.String(key),
		ContentType:   aws.String(contentType),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
	})
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("%s/%s", ps.Config.PublicURL, key), nil
}

// Delete removes an object; used when a write aborts after the upload.
func (ps *PhotoStore) Delete(ctx context.Context, key string) error {
	_, err := ps.Client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(ps.Config.BucketName),
		Key:    aws.String(key),
	})
	return err
}

// ReportPhotoKey builds a unique object key for a report photo.
func (ps *PhotoStore) ReportPhotoKey(reporterID uint, fileName string) string {
	return fmt.Sprintf("reports/%d/%d_%s%s", reporterID, time.Now().Unix(), uuid.New().String(), normalizedExt(fileName))
}

// AvatarKey builds a unique object key for a profile avatar.
func (ps *PhotoStore) AvatarKey(userID uint, fileName string) string {
	return fmt.Sprintf("users/%d/avatar/%d_%s%s", userID, time.Now().Unix(), uuid.New().String(), normalizedExt(fileName))
}

func normalizedExt(fileName string) string {
	ext := filepath.Ext(fileName)
	if ext == "" {
		ext = ".jpg"
	}
	return ext
}
