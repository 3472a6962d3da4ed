package http

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shfq/lovechat-server/internal/blob"
	"github.com/shfq/lovechat-server/internal/config"
	"github.com/shfq/lovechat-server/internal/core"
	"github.com/shfq/lovechat-server/internal/log"
	"github.com/shfq/lovechat-server/internal/store"
	"github.com/shfq/lovechat-server/internal/store/sqlite"
)

// testEnv bundles a running test server with direct store access for seeding.
type testEnv struct {
	ts    *httptest.Server
	store store.MessageStore
}

// startTestServer wires an in-memory store, a running relay, and a disk blob
// store under a temp dir into a httptest server.
func startTestServer(t *testing.T) *testEnv {
	t.Helper()

	st, err := sqlite.New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test store: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	mediaDir := t.TempDir()
	blobs, err := blob.NewDiskStore(mediaDir, "http://localhost:3001")
	if err != nil {
		t.Fatalf("failed to create blob store: %v", err)
	}

	cfg := config.Default()
	cfg.MediaDir = mediaDir
	cfg.ReadHeaderTimeout = time.Second
	cfg.ShutdownTimeout = time.Second

	logger := log.Nop()

	relay := core.NewRelay(st, core.NewRegistry(), logger, cfg.HistoryLimit)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go relay.Run(ctx)

	server := NewServer(relay, st, blobs, cfg, logger)
	ts := httptest.NewServer(server.Handler)
	t.Cleanup(ts.Close)

	return &testEnv{ts: ts, store: st}
}
