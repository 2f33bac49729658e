package httpserver

import (
	"context"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_ShutsDownWhenContextEnds(t *testing.T) {
	srv := New("127.0.0.1:0", http.NotFoundHandler())
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- Run(ctx, srv, slog.New(slog.DiscardHandler)) }()
	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestRun_ReturnsListenErrors(t *testing.T) {
	srv := New("256.0.0.1:bad", http.NotFoundHandler())
	err := Run(context.Background(), srv, slog.New(slog.DiscardHandler))
	require.Error(t, err)
}
