package persistence

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/petrijr/asyncvalue/pkg/api"
)

const (
	s3MetaVersion = "snapshot-version"
	s3MetaSavedAt = "snapshot-saved-at"
)

// S3API is the subset of *s3.Client used by S3SnapshotStore.
type S3API interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
	s3.ListObjectsV2APIClient
}

// S3SnapshotStore stores each snapshot as one object under prefix+key.
// Version and SavedAt travel as object metadata.
//
// Example usage:
//
//	cfg, _ := config.LoadDefaultConfig(ctx)
//	store := persistence.NewS3SnapshotStore(s3.NewFromConfig(cfg), "my-bucket", "state/")
type S3SnapshotStore struct {
	client S3API
	bucket string
	prefix string
}

// NewS3SnapshotStore creates an S3-backed snapshot store.
func NewS3SnapshotStore(client S3API, bucket, prefix string) *S3SnapshotStore {
	return &S3SnapshotStore{
		client: client,
		bucket: bucket,
		prefix: prefix,
	}
}

func (s *S3SnapshotStore) objectKey(key string) string {
	return s.prefix + key
}

func (s *S3SnapshotStore) SaveSnapshot(ctx context.Context, snap api.Snapshot) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(s.objectKey(snap.Key)),
		Body:        bytes.NewReader(snap.Data),
		ContentType: aws.String("application/octet-stream"),
		Metadata: map[string]string{
			s3MetaVersion: strconv.Itoa(snap.Version),
			s3MetaSavedAt: strconv.FormatInt(savedAtToNanos(snap.SavedAt), 10),
		},
	})
	if err != nil {
		return fmt.Errorf("s3 put %q: %w", snap.Key, err)
	}
	return nil
}

func (s *S3SnapshotStore) LoadSnapshot(ctx context.Context, key string) (*api.Snapshot, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.objectKey(key)),
	})
	if err != nil {
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			return nil, api.ErrSnapshotNotFound
		}
		return nil, fmt.Errorf("s3 get %q: %w", key, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, err
	}

	snap := &api.Snapshot{Key: key, Data: data}
	if v, ok := out.Metadata[s3MetaVersion]; ok {
		if snap.Version, err = strconv.Atoi(v); err != nil {
			return nil, fmt.Errorf("s3 %q: bad version metadata: %w", key, err)
		}
	}
	if v, ok := out.Metadata[s3MetaSavedAt]; ok {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("s3 %q: bad saved-at metadata: %w", key, err)
		}
		snap.SavedAt = nanosToSavedAt(n)
	}
	return snap, nil
}

func (s *S3SnapshotStore) DeleteSnapshot(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.objectKey(key)),
	})
	if err != nil {
		return fmt.Errorf("s3 delete %q: %w", key, err)
	}
	return nil
}

func (s *S3SnapshotStore) ListSnapshotKeys(ctx context.Context) ([]string, error) {
	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(s.prefix),
	})

	keys := []string{}
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		for _, obj := range page.Contents {
			if obj.Key != nil {
				keys = append(keys, strings.TrimPrefix(*obj.Key, s.prefix))
			}
		}
	}
	slices.Sort(keys)
	return keys, nil
}
