package persistence

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/petrijr/asyncvalue/pkg/api"
)

// MongoSnapshotStore is a SnapshotStore backed by a MongoDB collection.
// Each snapshot is one document keyed by _id.
type MongoSnapshotStore struct {
	coll *mongo.Collection
}

// NewMongoSnapshotStore creates a Mongo-backed snapshot store.
// dbName defaults to "asyncvalue" if empty, collName defaults to "snapshots".
func NewMongoSnapshotStore(client *mongo.Client, dbName, collName string) *MongoSnapshotStore {
	if dbName == "" {
		dbName = "asyncvalue"
	}
	if collName == "" {
		collName = "snapshots"
	}

	return &MongoSnapshotStore{
		coll: client.Database(dbName).Collection(collName),
	}
}

type mongoSnapshotDoc struct {
	Key     string `bson:"_id"`
	Version int    `bson:"version"`
	SavedAt int64  `bson:"saved_at"`
	Data    []byte `bson:"data,omitempty"`
}

func (s *MongoSnapshotStore) SaveSnapshot(ctx context.Context, snap api.Snapshot) error {
	doc := mongoSnapshotDoc{
		Key:     snap.Key,
		Version: snap.Version,
		SavedAt: savedAtToNanos(snap.SavedAt),
		Data:    snap.Data,
	}

	_, err := s.coll.ReplaceOne(ctx, bson.M{"_id": snap.Key}, doc, options.Replace().SetUpsert(true))
	return err
}

func (s *MongoSnapshotStore) LoadSnapshot(ctx context.Context, key string) (*api.Snapshot, error) {
	var doc mongoSnapshotDoc
	err := s.coll.FindOne(ctx, bson.M{"_id": key}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, api.ErrSnapshotNotFound
		}
		return nil, err
	}

	return &api.Snapshot{
		Key:     doc.Key,
		Version: doc.Version,
		SavedAt: nanosToSavedAt(doc.SavedAt),
		Data:    doc.Data,
	}, nil
}

func (s *MongoSnapshotStore) DeleteSnapshot(ctx context.Context, key string) error {
	_, err := s.coll.DeleteOne(ctx, bson.M{"_id": key})
	return err
}

func (s *MongoSnapshotStore) ListSnapshotKeys(ctx context.Context) ([]string, error) {
	opts := options.Find().
		SetProjection(bson.M{"_id": 1}).
		SetSort(bson.D{{Key: "_id", Value: 1}})

	cur, err := s.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	keys := []string{}
	for cur.Next(ctx) {
		var doc struct {
			Key string `bson:"_id"`
		}
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		keys = append(keys, doc.Key)
	}
	if err := cur.Err(); err != nil {
		return nil, err
	}
	return keys, nil
}
