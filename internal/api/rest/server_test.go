package rest

import (
	"context"
	"io"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// TestServe_StopsOnCancel serves a request over TCP and shuts down on cancel.
func TestServe_StopsOnCancel(t *testing.T) {
	t.Parallel()

	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	h, _ := newTestRouter(t)

	ctx, cancel := context.WithCancel(context.Background())
	served := make(chan error, 1)

	go func() {
		served <- Serve(ctx, lis, h)
	}()

	client := &http.Client{Timeout: 3 * time.Second}

	resp, err := client.Get("http://" + lis.Addr().String() + "/health")
	require.NoError(t, err)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	require.JSONEq(t, `{"status":"ok"}`, string(body))

	cancel()
	require.NoError(t, <-served)
}
