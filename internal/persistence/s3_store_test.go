package persistence

import (
	"bytes"
	"context"
	"errors"
	"io"
	"slices"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/require"

	"github.com/petrijr/asyncvalue/pkg/api"
)

type fakeS3Object struct {
	body     []byte
	metadata map[string]string
}

// fakeS3 is an in-memory S3API that serves listings one object per page.
type fakeS3 struct {
	mu      sync.Mutex
	objects map[string]fakeS3Object
	pages   int
}

func newFakeS3() *fakeS3 {
	return &fakeS3{objects: make(map[string]fakeS3Object)}
}

func (f *fakeS3) PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	body, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key)] = fakeS3Object{body: body, metadata: in.Metadata}
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	obj, ok := f.objects[aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key)]
	if !ok {
		return nil, &types.NoSuchKey{Message: aws.String("missing")}
	}
	return &s3.GetObjectOutput{
		Body:     io.NopCloser(bytes.NewReader(obj.body)),
		Metadata: obj.metadata,
	}, nil
}

func (f *fakeS3) DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key))
	return &s3.DeleteObjectOutput{}, nil
}

func (f *fakeS3) ListObjectsV2(ctx context.Context, in *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pages++

	bucketPrefix := aws.ToString(in.Bucket) + "/"
	var keys []string
	for full := range f.objects {
		if !strings.HasPrefix(full, bucketPrefix) {
			continue
		}
		key := strings.TrimPrefix(full, bucketPrefix)
		if strings.HasPrefix(key, aws.ToString(in.Prefix)) {
			keys = append(keys, key)
		}
	}
	slices.Sort(keys)

	start := 0
	if in.ContinuationToken != nil {
		n, err := strconv.Atoi(*in.ContinuationToken)
		if err != nil {
			return nil, err
		}
		start = n
	}

	out := &s3.ListObjectsV2Output{IsTruncated: aws.Bool(false)}
	if start < len(keys) {
		out.Contents = []types.Object{{Key: aws.String(keys[start])}}
	}
	if start+1 < len(keys) {
		out.IsTruncated = aws.Bool(true)
		out.NextContinuationToken = aws.String(strconv.Itoa(start + 1))
	}
	return out, nil
}

func TestS3SnapshotStore_Contract(t *testing.T) {
	exerciseSnapshotStore(t, NewS3SnapshotStore(newFakeS3(), "bucket", "state/"))
}

func TestS3SnapshotStore_ListingFollowsPagesAndPrefix(t *testing.T) {
	ctx := context.Background()
	client := newFakeS3()

	other := NewS3SnapshotStore(client, "bucket", "other/")
	require.NoError(t, other.SaveSnapshot(ctx, api.Snapshot{Key: "ignored"}))

	store := NewS3SnapshotStore(client, "bucket", "state/")
	for _, key := range []string{"c", "a", "b"} {
		require.NoError(t, store.SaveSnapshot(ctx, api.Snapshot{Key: key, Version: 1}))
	}

	client.pages = 0
	keys, err := store.ListSnapshotKeys(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"a", "b", "c"}, keys)
	require.Equal(t, 3, client.pages)
}

func TestS3SnapshotStore_BadMetadata(t *testing.T) {
	ctx := context.Background()
	client := newFakeS3()
	client.objects["bucket/users"] = fakeS3Object{
		body:     []byte("x"),
		metadata: map[string]string{s3MetaVersion: "not-a-number"},
	}

	store := NewS3SnapshotStore(client, "bucket", "")
	_, err := store.LoadSnapshot(ctx, "users")
	require.Error(t, err)
	require.False(t, errors.Is(err, api.ErrSnapshotNotFound))
}
