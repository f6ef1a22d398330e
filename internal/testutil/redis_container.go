package testutil

import (
	"testing"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

var redisContainer sharedContainer

// GetRedisAddress starts a shared Redis container on first use and returns
// its host:port. The test is skipped when no container runtime is available.
func GetRedisAddress(t *testing.T) string {
	t.Helper()
	return redisContainer.endpointFor(t, "redis:7",
		testcontainers.WithExposedPorts("6379/tcp"),
		testcontainers.WithWaitStrategy(
			wait.ForListeningPort("6379/tcp"),
			wait.ForLog("Ready to accept connections"),
		),
	)
}
