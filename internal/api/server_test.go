package api

import (
	"context"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/FocuswithJustin/usjconv/core/convert"
	"github.com/FocuswithJustin/usjconv/internal/config"
)

func TestServeGracefulShutdown(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	cfg := config.Default()
	cfg.Server.ShutdownTimeout = 2 * time.Second
	srv := New(cfg.Server, cfg.Convert)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/health")
	if err != nil {
		t.Fatalf("GET /health: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected status 200, got %d", resp.StatusCode)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Serve() = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestRunListenError(t *testing.T) {
	cfg := config.Default()
	cfg.Server.Addr = "127.0.0.1:-1"
	if err := New(cfg.Server, cfg.Convert).Run(context.Background()); err == nil {
		t.Error("expected a listen error")
	}
}

func TestSweepCache(t *testing.T) {
	cfg := config.Default()
	cfg.Server.CacheTTL = 10 * time.Millisecond
	srv := New(cfg.Server, cfg.Convert)
	srv.results.Set("k", &convert.Result{RunID: "r1"})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go srv.sweepCache(ctx, 5*time.Millisecond)

	deadline := time.Now().Add(2 * time.Second)
	for srv.results.Len() > 0 {
		if time.Now().After(deadline) {
			t.Fatal("expired entry was not purged")
		}
		time.Sleep(5 * time.Millisecond)
	}
}
