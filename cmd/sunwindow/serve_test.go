package main

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/thurmanmarka/sunwindow"
	"github.com/thurmanmarka/sunwindow/internal/storage"
)

func TestPruneLoop(t *testing.T) {
	db, err := storage.NewDatabase(filepath.Join(t.TempDir(), "prune.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	now := time.Now().UTC()
	for _, age := range []time.Duration{100 * 24 * time.Hour, time.Hour} {
		r := sunwindow.Result{QueryTime: now.Add(-age).Unix()}
		require.NoError(t, db.SaveResult("home", chicagoish, r))
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		pruneLoop(ctx, db, 30, time.Hour)
		close(done)
	}()

	require.Eventually(t, func() bool {
		obs, err := db.GetWithLimit(10)
		return err == nil && len(obs) == 1
	}, 5*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("pruneLoop did not stop with its context")
	}
}
