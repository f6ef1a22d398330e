package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	_ "modernc.org/sqlite"

	"github.com/petrijr/asyncvalue/internal/persistence"
	"github.com/petrijr/asyncvalue/pkg/api"
)

var errNoBackend = errors.New("exactly one of --sqlite, --postgres, --redis, --mongo or --s3-bucket is required")

// newS3Client builds a client from the default AWS credential chain. A
// non-empty endpoint selects an S3-compatible server with path-style
// addressing, e.g. MinIO.
var newS3Client = func(ctx context.Context, region, endpoint string) (persistence.S3API, error) {
	var opts []func(*config.LoadOptions) error
	if region != "" {
		opts = append(opts, config.WithRegion(region))
	}
	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return s3.NewFromConfig(cfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}
	}), nil
}

type backendOptions struct {
	sqlitePath  string
	postgresDSN string
	redisAddr   string
	redisPrefix string
	mongoURI    string
	mongoDB     string
	mongoColl   string
	s3Bucket    string
	s3Prefix    string
	s3Region    string
	s3Endpoint  string
}

func (o *backendOptions) register(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()
	flags.StringVar(&o.sqlitePath, "sqlite", "", "SQLite database file")
	flags.StringVar(&o.postgresDSN, "postgres", "", "PostgreSQL DSN")
	flags.StringVar(&o.redisAddr, "redis", "", "Redis address (host:port)")
	flags.StringVar(&o.redisPrefix, "redis-prefix", "asyncvalue:", "Redis key prefix")
	flags.StringVar(&o.mongoURI, "mongo", "", "MongoDB connection URI")
	flags.StringVar(&o.mongoDB, "mongo-db", "asyncvalue", "MongoDB database")
	flags.StringVar(&o.mongoColl, "mongo-coll", "snapshots", "MongoDB collection")
	flags.StringVar(&o.s3Bucket, "s3-bucket", "", "S3 bucket")
	flags.StringVar(&o.s3Prefix, "s3-prefix", "", "S3 object key prefix")
	flags.StringVar(&o.s3Region, "s3-region", "", "S3 region (default from the AWS config)")
	flags.StringVar(&o.s3Endpoint, "s3-endpoint", "", "S3-compatible endpoint URL")
}

// open returns the selected snapshot store and a function releasing its
// connection.
func (o *backendOptions) open(ctx context.Context) (api.SnapshotStore, func() error, error) {
	selected := 0
	for _, v := range []string{o.sqlitePath, o.postgresDSN, o.redisAddr, o.mongoURI, o.s3Bucket} {
		if v != "" {
			selected++
		}
	}
	if selected != 1 {
		return nil, nil, errNoBackend
	}

	switch {
	case o.sqlitePath != "":
		return openSQL(ctx, "sqlite", o.sqlitePath, persistence.NewSQLiteSnapshotStore)

	case o.postgresDSN != "":
		return openSQL(ctx, "pgx", o.postgresDSN, persistence.NewPostgresSnapshotStore)

	case o.redisAddr != "":
		client := redis.NewClient(&redis.Options{Addr: o.redisAddr})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("connect redis: %w", err)
		}
		return persistence.NewRedisSnapshotStore(client, o.redisPrefix), client.Close, nil

	case o.s3Bucket != "":
		client, err := newS3Client(ctx, o.s3Region, o.s3Endpoint)
		if err != nil {
			return nil, nil, err
		}
		store := persistence.NewS3SnapshotStore(client, o.s3Bucket, o.s3Prefix)
		return store, func() error { return nil }, nil

	default:
		client, err := mongo.Connect(ctx, options.Client().ApplyURI(o.mongoURI))
		if err != nil {
			return nil, nil, fmt.Errorf("connect mongo: %w", err)
		}
		closeFn := func() error { return client.Disconnect(context.Background()) }
		if err := client.Ping(ctx, nil); err != nil {
			_ = closeFn()
			return nil, nil, fmt.Errorf("connect mongo: %w", err)
		}
		return persistence.NewMongoSnapshotStore(client, o.mongoDB, o.mongoColl), closeFn, nil
	}
}

func openSQL[T api.SnapshotStore](ctx context.Context, driver, dsn string, newStore func(*sql.DB) (T, error)) (api.SnapshotStore, func() error, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("connect %s: %w", driver, err)
	}
	store, err := newStore(db)
	if err != nil {
		_ = db.Close()
		return nil, nil, err
	}
	return store, db.Close, nil
}

// withStore opens the backend, runs fn and closes the connection.
func withStore(cmd *cobra.Command, o *backendOptions, fn func(ctx context.Context, store api.SnapshotStore) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	store, closeFn, err := o.open(ctx)
	if err != nil {
		return err
	}
	defer closeFn()

	return fn(ctx, store)
}
