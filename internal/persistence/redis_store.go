package persistence

import (
	"bytes"
	"context"
	"encoding/gob"
	"errors"
	"slices"

	"github.com/redis/go-redis/v9"

	"github.com/petrijr/asyncvalue/pkg/api"
)

// RedisSnapshotStore is a SnapshotStore backed by Redis.
// It uses a simple key structure:
//
//	<prefix>snap:<key>  => gob-encoded redisSnapshotPayload
//	<prefix>idx:keys    => SET of all snapshot keys
//
// The index is updated in the same transaction as the payload.
type RedisSnapshotStore struct {
	client *redis.Client
	prefix string
}

type redisSnapshotPayload struct {
	Key     string
	Version int
	SavedAt int64
	Data    []byte
}

// NewRedisSnapshotStore creates a RedisSnapshotStore.
// prefix is optional but recommended (e.g. "asyncvalue:").
func NewRedisSnapshotStore(client *redis.Client, prefix string) *RedisSnapshotStore {
	if prefix == "" {
		prefix = "asyncvalue:"
	}
	return &RedisSnapshotStore{
		client: client,
		prefix: prefix,
	}
}

func (s *RedisSnapshotStore) keySnapshot(key string) string {
	return s.prefix + "snap:" + key
}

func (s *RedisSnapshotStore) keyIndex() string {
	return s.prefix + "idx:keys"
}

func encodeRedisPayload(snap api.Snapshot) ([]byte, error) {
	payload := redisSnapshotPayload{
		Key:     snap.Key,
		Version: snap.Version,
		SavedAt: savedAtToNanos(snap.SavedAt),
		Data:    snap.Data,
	}

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(&payload); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decodeRedisPayload(data []byte) (*api.Snapshot, error) {
	if len(data) == 0 {
		return nil, api.ErrSnapshotNotFound
	}
	var payload redisSnapshotPayload
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&payload); err != nil {
		return nil, err
	}

	return &api.Snapshot{
		Key:     payload.Key,
		Version: payload.Version,
		SavedAt: nanosToSavedAt(payload.SavedAt),
		Data:    payload.Data,
	}, nil
}

func (s *RedisSnapshotStore) SaveSnapshot(ctx context.Context, snap api.Snapshot) error {
	data, err := encodeRedisPayload(snap)
	if err != nil {
		return err
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, s.keySnapshot(snap.Key), data, 0)
	pipe.SAdd(ctx, s.keyIndex(), snap.Key)
	_, err = pipe.Exec(ctx)
	return err
}

func (s *RedisSnapshotStore) LoadSnapshot(ctx context.Context, key string) (*api.Snapshot, error) {
	data, err := s.client.Get(ctx, s.keySnapshot(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, api.ErrSnapshotNotFound
		}
		return nil, err
	}
	return decodeRedisPayload(data)
}

func (s *RedisSnapshotStore) DeleteSnapshot(ctx context.Context, key string) error {
	pipe := s.client.TxPipeline()
	pipe.Del(ctx, s.keySnapshot(key))
	pipe.SRem(ctx, s.keyIndex(), key)
	_, err := pipe.Exec(ctx)
	return err
}

func (s *RedisSnapshotStore) ListSnapshotKeys(ctx context.Context) ([]string, error) {
	keys, err := s.client.SMembers(ctx, s.keyIndex()).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return []string{}, nil
		}
		return nil, err
	}
	slices.Sort(keys)
	return keys, nil
}
