package asyncvalue

import (
	"database/sql"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/petrijr/asyncvalue/internal/engine"
	"github.com/petrijr/asyncvalue/internal/persistence"
	"github.com/petrijr/asyncvalue/internal/taskqueue"
	"github.com/petrijr/asyncvalue/pkg/api"
)

// Re-export key types so users don't need to dig into pkg/api.

type (
	Action               = api.Action
	ActionTypes          = api.ActionTypes
	RejectionError       = api.RejectionError
	AsyncRequest         = api.AsyncRequest
	DispatchFunc         = api.DispatchFunc
	Snapshot             = api.Snapshot
	SnapshotStore        = api.SnapshotStore
	Observer             = api.Observer
	LoggingObserver      = api.LoggingObserver
	BasicMetrics         = api.BasicMetrics
	BasicMetricsSnapshot = api.BasicMetricsSnapshot
	CompositeObserver    = api.CompositeObserver
	NoopObserver         = api.NoopObserver
	StoreOption          = engine.Option
)

type (
	Reducer[S any]            = api.Reducer[S]
	AsyncValue[T any]         = api.AsyncValue[T]
	Dict[K comparable, T any] = api.Dict[K, T]
	KeyFunc[K comparable]     = api.KeyFunc[K]
	ReducerBuilder[S any]     = api.ReducerBuilder[S]
	Store[S any]              = api.Store[S]
	Listener[S any]           = api.Listener[S]
)

// Re-export sentinel errors.

var (
	ErrEmptyActionType     = api.ErrEmptyActionType
	ErrDuplicateActionType = api.ErrDuplicateActionType
	ErrSnapshotNotFound    = api.ErrSnapshotNotFound
)

// Re-export non-generic helpers.

var (
	NewActionTypes         = api.NewActionTypes
	NewPerformAction       = api.NewPerformAction
	NewFulfillAction       = api.NewFulfillAction
	NewRejectAction        = api.NewRejectAction
	NewResetAction         = api.NewResetAction
	IsPerformAction        = api.IsPerformAction
	IsFulfillAction        = api.IsFulfillAction
	IsRejectAction         = api.IsRejectAction
	InitialAsyncRequest    = api.InitialAsyncRequest
	NewAsyncRequestReducer = api.NewAsyncRequestReducer
	NewLoggingObserver     = api.NewLoggingObserver
	NewCompositeObserver   = api.NewCompositeObserver
	WithStoreName          = engine.WithName
	WithStoreObserver      = engine.WithObserver
)

// Generic helpers cannot be aliased, so they forward explicitly.

// InitialAsyncValue returns {Fetching: false} with no payload or error.
func InitialAsyncValue[T any]() *AsyncValue[T] {
	return api.InitialAsyncValue[T]()
}

// NewAsyncValueReducer builds a reducer for one async value from four
// action type names.
func NewAsyncValueReducer[T any](performType, fulfillType, rejectType, resetType string) Reducer[*AsyncValue[T]] {
	return api.NewAsyncValueReducer[T](performType, fulfillType, rejectType, resetType)
}

// NewAsyncValueReducerFor is NewAsyncValueReducer taking an ActionTypes.
func NewAsyncValueReducerFor[T any](types ActionTypes) Reducer[*AsyncValue[T]] {
	return api.NewAsyncValueReducerFor[T](types)
}

// NewAsyncValueDictReducer builds a reducer for a keyed collection of async
// values.
func NewAsyncValueDictReducer[K comparable, T any](keyOf KeyFunc[K], performType, fulfillType, rejectType, resetType string) Reducer[Dict[K, T]] {
	return api.NewAsyncValueDictReducer[K, T](keyOf, performType, fulfillType, rejectType, resetType)
}

// NewAsyncValueDictReducerFor is NewAsyncValueDictReducer taking an ActionTypes.
func NewAsyncValueDictReducerFor[K comparable, T any](keyOf KeyFunc[K], types ActionTypes) Reducer[Dict[K, T]] {
	return api.NewAsyncValueDictReducerFor[K, T](keyOf, types)
}

// IsAsyncValueFetching reports v.Fetching; nil reads as not fetching.
func IsAsyncValueFetching[T any](v *AsyncValue[T]) bool {
	return api.IsAsyncValueFetching(v)
}

// AsyncValueError returns v.Err, or nil.
func AsyncValueError[T any](v *AsyncValue[T]) error {
	return api.AsyncValueError(v)
}

// AsyncValuePayload returns the payload and whether one is present.
func AsyncValuePayload[T any](v *AsyncValue[T]) (T, bool) {
	return api.AsyncValuePayload(v)
}

// MetaKey uses Action.Meta itself as the dict key.
func MetaKey[K comparable]() KeyFunc[K] { return api.MetaKey[K]() }

// MetaFieldKey reads the dict key from a field of a map[string]any meta.
func MetaFieldKey[K comparable](field string) KeyFunc[K] { return api.MetaFieldKey[K](field) }

// NewReducerBuilder starts a reducer that routes actions by type.
func NewReducerBuilder[S any]() *ReducerBuilder[S] { return api.NewReducerBuilder[S]() }

// Dispatcher adapts a Store to a DispatchFunc.
func Dispatcher[S any](s Store[S]) DispatchFunc { return api.Dispatcher(s) }

// Store constructors
// These wrap the internal/engine package so external callers
// never need to import internal packages.

// NewStore returns an in-process Store driving reducer from initial.
func NewStore[S any](reducer Reducer[S], initial S, opts ...StoreOption) Store[S] {
	return engine.NewStore(reducer, initial, opts...)
}

// Snapshot store constructors.

// NewInMemorySnapshotStore returns a SnapshotStore that lives in process memory.
func NewInMemorySnapshotStore() SnapshotStore {
	return persistence.NewInMemoryStore()
}

// NewSQLiteSnapshotStore returns a SnapshotStore backed by SQLite.
// The caller imports the driver, e.g. _ "modernc.org/sqlite".
func NewSQLiteSnapshotStore(db *sql.DB) (SnapshotStore, error) {
	return persistence.NewSQLiteSnapshotStore(db)
}

// NewPostgresSnapshotStore returns a SnapshotStore backed by PostgreSQL.
// The caller imports the driver, e.g. _ "github.com/jackc/pgx/v5/stdlib".
func NewPostgresSnapshotStore(db *sql.DB) (SnapshotStore, error) {
	return persistence.NewPostgresSnapshotStore(db)
}

// NewRedisSnapshotStore returns a SnapshotStore backed by Redis. An empty
// prefix defaults to "asyncvalue:".
func NewRedisSnapshotStore(client *redis.Client, prefix string) SnapshotStore {
	return persistence.NewRedisSnapshotStore(client, prefix)
}

// NewMongoSnapshotStore returns a SnapshotStore backed by MongoDB, using
// database "asyncvalue" and collection "snapshots".
func NewMongoSnapshotStore(client *mongo.Client) SnapshotStore {
	return persistence.NewMongoSnapshotStore(client, "", "")
}

// NewS3SnapshotStore returns a SnapshotStore that keeps one object per key
// under prefix in bucket. Pass an *s3.Client as client.
func NewS3SnapshotStore(client persistence.S3API, bucket, prefix string) SnapshotStore {
	return persistence.NewS3SnapshotStore(client, bucket, prefix)
}

// NewInMemoryQueue returns the in-memory task queue used by workers.
func NewInMemoryQueue(capacity int) *taskqueue.InMemoryQueue {
	return taskqueue.NewInMemoryQueue(capacity)
}
