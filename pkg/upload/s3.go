package upload

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// S3Store stores uploads in an S3 bucket under a key prefix.
//
//	cfg, _ := config.LoadDefaultConfig(context.Background())
//	store := upload.NewS3Store(s3.NewFromConfig(cfg), "my-bucket", "uploads/", 50<<20)
type S3Store struct {
	client    *s3.Client
	bucket    string
	prefix    string
	maxSize   int64
	urlExpiry time.Duration
}

// NewS3Store creates an S3-backed upload store. maxSize of 0 means no limit.
func NewS3Store(client *s3.Client, bucket, prefix string, maxSize int64) *S3Store {
	return &S3Store{
		client:    client,
		bucket:    bucket,
		prefix:    prefix,
		maxSize:   maxSize,
		urlExpiry: 24 * time.Hour,
	}
}

// WithURLExpiry sets how long presigned URLs stay valid.
func (s *S3Store) WithURLExpiry(d time.Duration) *S3Store {
	s.urlExpiry = d
	return s
}

// Save implements Store.
func (s *S3Store) Save(filename, contentType string, size int64, r io.Reader) (string, error) {
	if s.maxSize > 0 && size > s.maxSize {
		return "", ErrTooLarge
	}

	var buf bytes.Buffer
	if s.maxSize > 0 {
		n, err := io.Copy(&buf, io.LimitReader(r, s.maxSize+1))
		if err != nil {
			return "", err
		}
		if n > s.maxSize {
			return "", ErrTooLarge
		}
	} else if _, err := io.Copy(&buf, r); err != nil {
		return "", err
	}

	tempID := uuid.NewString()
	_, err := s.client.PutObject(context.Background(), &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(s.prefix + tempID),
		Body:        bytes.NewReader(buf.Bytes()),
		ContentType: aws.String(contentType),
		Metadata: map[string]string{
			"original-filename": filename,
			"upload-time":       time.Now().UTC().Format(time.RFC3339),
		},
	})
	if err != nil {
		return "", fmt.Errorf("upload: s3 put failed: %w", err)
	}
	return tempID, nil
}

// Claim implements Store. The temp object is deleted once claimed.
func (s *S3Store) Claim(tempID string) (*File, error) {
	key := s.prefix + tempID

	head, err := s.client.HeadObject(context.Background(), &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, ErrNotFound
	}

	obj, err := s.client.GetObject(context.Background(), &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, ErrNotFound
	}

	filename := tempID
	if fn, ok := head.Metadata["original-filename"]; ok {
		filename = fn
	}
	contentType := "application/octet-stream"
	if head.ContentType != nil {
		contentType = *head.ContentType
	}
	var size int64
	if head.ContentLength != nil {
		size = *head.ContentLength
	}

	var url string
	presigned, err := s3.NewPresignClient(s.client).PresignGetObject(context.Background(),
		&s3.GetObjectInput{
			Bucket: aws.String(s.bucket),
			Key:    aws.String(key),
		},
		s3.WithPresignExpires(s.urlExpiry),
	)
	if err == nil {
		url = presigned.URL
	}

	go func() {
		_, _ = s.client.DeleteObject(context.Background(), &s3.DeleteObjectInput{
			Bucket: aws.String(s.bucket),
			Key:    aws.String(key),
		})
	}()

	return &File{
		ID:          tempID,
		Filename:    filename,
		ContentType: contentType,
		Size:        size,
		URL:         url,
		Reader:      obj.Body,
	}, nil
}

// Cleanup implements Store.
func (s *S3Store) Cleanup(maxAge time.Duration) error {
	cutoff := time.Now().Add(-maxAge)

	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(s.prefix),
	})

	var stale []string
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(context.Background())
		if err != nil {
			return err
		}
		for _, obj := range page.Contents {
			if obj.LastModified != nil && obj.LastModified.Before(cutoff) && obj.Key != nil {
				stale = append(stale, *obj.Key)
			}
		}
	}

	for _, key := range stale {
		_, _ = s.client.DeleteObject(context.Background(), &s3.DeleteObjectInput{
			Bucket: aws.String(s.bucket),
			Key:    aws.String(key),
		})
	}
	return nil
}
