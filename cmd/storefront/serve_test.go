package main

import (
	"context"
	"net"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/config"
)

func newServeCLI(t *testing.T) *cli {
	t.Helper()
	setupEnv(t)
	cfg := config.Load()
	cfg.StoreDriver = config.DriverMemory
	require.NoError(t, cfg.Validate())
	return &cli{cfg: cfg, logger: zap.NewNop().Sugar()}
}

func TestServeUntilCancelled(t *testing.T) {
	c := newServeCLI(t)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	base := "http://" + ln.Addr().String()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- c.serveOn(ctx, ln) }()

	client := &http.Client{Timeout: time.Second}
	require.Eventually(t, func() bool {
		resp, err := client.Get(base + "/health")
		if err != nil {
			return false
		}
		_ = resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 20*time.Millisecond)

	resp, err := client.Post(base+"/api/cart/items", "application/json", strings.NewReader(`{"name":"Farmhouse","price":200}`))
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatalf("expected serve to return after cancel")
	}

	if _, err := client.Get(base + "/health"); err == nil {
		t.Fatalf("expected listener to be closed after shutdown")
	}
}

func TestServeAddressInUse(t *testing.T) {
	c := newServeCLI(t)
	taken, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer taken.Close()
	c.cfg.HTTPAddr = taken.Addr().String()

	err = c.serve(context.Background())
	if err == nil || !strings.Contains(err.Error(), "listen") {
		t.Fatalf("expected listen error, got %v", err)
	}
}
