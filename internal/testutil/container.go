package testutil

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
)

// startupTimeout is generous for CI runners pulling images cold.
const startupTimeout = 3 * time.Minute

// sharedContainer starts one container per test binary and remembers its
// host:port endpoint. Containers are reaped by testcontainers' Ryuk.
type sharedContainer struct {
	once     sync.Once
	endpoint string
	err      error
}

func (c *sharedContainer) endpointFor(t *testing.T, image string, opts ...testcontainers.ContainerCustomizer) string {
	t.Helper()
	requireDocker(t)

	c.once.Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), startupTimeout)
		defer cancel()

		ctr, err := testcontainers.Run(ctx, image, opts...)
		if err != nil {
			c.err = err
			return
		}

		c.endpoint, c.err = ctr.Endpoint(ctx, "")
		if c.err != nil {
			_ = ctr.Terminate(context.Background())
		}
	})

	if c.err != nil {
		t.Fatalf("start %s container: %v", image, c.err)
	}
	return c.endpoint
}

// requireDocker skips container-backed tests in -short mode or when no
// container runtime is reachable.
func requireDocker(t *testing.T) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping container-backed test in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)
}
