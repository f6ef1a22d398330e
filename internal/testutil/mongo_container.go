package testutil

import (
	"testing"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

var mongoContainer sharedContainer

// GetMongoURI starts a shared MongoDB container on first use and returns
// its connection URI.
func GetMongoURI(t *testing.T) string {
	t.Helper()
	endpoint := mongoContainer.endpointFor(t, "mongo:7",
		testcontainers.WithExposedPorts("27017/tcp"),
		testcontainers.WithWaitStrategy(
			wait.ForListeningPort("27017/tcp"),
			wait.ForLog("mongod startup complete"),
		),
	)
	return "mongodb://" + endpoint
}
