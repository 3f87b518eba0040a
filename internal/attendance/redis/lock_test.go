package redis_test

import (
	"context"
	"testing"

	goredis "github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	attendanceredis "ms-registration/internal/attendance/redis"
)

// TestLockIntegration exercises the check-in lock against a real Redis
// container.
func TestLockIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping Redis integration test in short mode")
	}

	ctx := context.Background()
	redisContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:latest",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections"),
		},
		Started: true,
	})
	if err != nil {
		t.Fatalf("Failed to start Redis container: %v", err)
	}
	defer redisContainer.Terminate(ctx)

	host, err := redisContainer.Host(ctx)
	require.NoError(t, err)

	port, err := redisContainer.MappedPort(ctx, "6379")
	require.NoError(t, err)

	client := goredis.NewClient(&goredis.Options{
		Addr: host + ":" + port.Port(),
	})
	defer client.Close()

	lock := attendanceredis.NewLock(client, 0)

	// First acquire wins, second is rejected while the lock is held.
	ok, token, err := lock.Acquire("user-1")
	require.NoError(t, err)
	assert.True(t, ok, "first acquire should succeed")
	assert.NotEmpty(t, token)

	ok, _, err = lock.Acquire("user-1")
	require.NoError(t, err)
	assert.False(t, ok, "second acquire should be rejected")

	// A different user is unaffected.
	ok, otherToken, err := lock.Acquire("user-2")
	require.NoError(t, err)
	assert.True(t, ok, "lock for another user should succeed")

	// Releasing with the wrong token must not drop the lock.
	err = lock.Release("user-1", "stale-token")
	require.NoError(t, err)

	ok, _, err = lock.Acquire("user-1")
	require.NoError(t, err)
	assert.False(t, ok, "lock should survive a release with a stale token")

	// Releasing with the right token frees it for the next attempt.
	err = lock.Release("user-1", token)
	require.NoError(t, err)

	ok, _, err = lock.Acquire("user-1")
	require.NoError(t, err)
	assert.True(t, ok, "lock should be reacquirable after release")

	// Releasing an already-expired key is a no-op.
	err = lock.Release("user-2", otherToken)
	require.NoError(t, err)
	err = lock.Release("user-2", otherToken)
	require.NoError(t, err)
}
