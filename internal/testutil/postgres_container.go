package testutil

import (
	"fmt"
	"testing"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	pgUser     = "asyncvalue"
	pgPassword = "asyncvalue"
	pgDatabase = "asyncvalue_test"
)

var postgresContainer sharedContainer

func postgresDSN(hostPort string) string {
	return fmt.Sprintf("postgres://%s:%s@%s/%s?sslmode=disable", pgUser, pgPassword, hostPort, pgDatabase)
}

// GetPostgresDSN starts a shared PostgreSQL container on first use and
// returns a pgx-compatible DSN. The pgx stdlib driver must be registered
// by the calling test package.
func GetPostgresDSN(t *testing.T) string {
	t.Helper()
	endpoint := postgresContainer.endpointFor(t, "postgres:16",
		testcontainers.WithExposedPorts("5432/tcp"),
		testcontainers.WithEnv(map[string]string{
			"POSTGRES_USER":     pgUser,
			"POSTGRES_PASSWORD": pgPassword,
			"POSTGRES_DB":       pgDatabase,
		}),
		testcontainers.WithWaitStrategy(
			wait.ForAll(
				wait.ForListeningPort("5432/tcp"),
				// Readiness is a successful query, not a log line.
				wait.ForSQL("5432/tcp", "pgx", func(host string, port nat.Port) string {
					return postgresDSN(host + ":" + port.Port())
				}).WithQuery("SELECT 1"),
			).WithDeadline(2*time.Minute),
		),
	)
	return postgresDSN(endpoint)
}
