package postgres

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/streakedin/streakedin/internal/store"
	"github.com/streakedin/streakedin/internal/store/storetest"
)

// postgresDSN returns STREAKEDIN_POSTGRES_DSN, or starts a throwaway container
// when STREAKEDIN_TESTCONTAINERS=1.
func postgresDSN(t *testing.T) string {
	t.Helper()
	if dsn := os.Getenv("STREAKEDIN_POSTGRES_DSN"); dsn != "" {
		return dsn
	}
	if os.Getenv("STREAKEDIN_TESTCONTAINERS") != "1" {
		t.Skip("STREAKEDIN_POSTGRES_DSN not set; skipping postgres store integration test")
	}

	ctx := context.Background()
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "postgres:16-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "streakedin",
				"POSTGRES_PASSWORD": "streakedin",
				"POSTGRES_DB":       "streakedin",
			},
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)
	return "postgres://streakedin:streakedin@" + host + ":" + port.Port() + "/streakedin?sslmode=disable"
}

func makePGStore(t *testing.T) store.Store {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	s, err := New(ctx, postgresDSN(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestPostgresStore_Compliance(t *testing.T) {
	storetest.Run(t, makePGStore)
}
