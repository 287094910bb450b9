package mongo

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/streakedin/streakedin/internal/store"
	"github.com/streakedin/streakedin/internal/store/storetest"
)

func makeMongoStore(t *testing.T) store.Store {
	t.Helper()
	uri := os.Getenv("STREAKEDIN_MONGO_URI")
	if uri == "" {
		t.Skip("STREAKEDIN_MONGO_URI not set; skipping mongo store integration test")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	s, err := New(ctx, uri, "streakedin_test_"+uuid.New().String()[:8])
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = s.Drop(context.Background())
		_ = s.Close()
	})
	return s
}

func TestMongoStore_Compliance(t *testing.T) {
	storetest.Run(t, makeMongoStore)
}
