package main

import (
	"context"
	"fmt"
	"log"
	"net"
	"net/http"
	"time"

	"github.com/itohio/kvmswitch/pkg/kvm"
	"github.com/itohio/kvmswitch/pkg/metrics"
)

// Snapshot implements metrics.Source over whichever session is running.
// A disconnected panel reports the zero snapshot.
func (p *panel) Snapshot() kvm.Snapshot {
	p.mu.Lock()
	s := p.session
	p.mu.Unlock()
	if s == nil {
		return kvm.Snapshot{}
	}
	return s.sys.Snapshot()
}

// metricsServer serves /metrics in the background.
type metricsServer struct {
	server *http.Server
}

// startMetrics listens on addr and serves the metrics of src.
func startMetrics(addr string, src metrics.Source) (*metricsServer, error) {
	handler, err := metrics.Handler(src)
	if err != nil {
		return nil, fmt.Errorf("failed to create metrics handler: %w", err)
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", handler)
	m := &metricsServer{
		server: &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second},
	}

	go func() {
		if err := m.server.Serve(ln); err != nil && err != http.ErrServerClosed {
			log.Printf("Metrics server error: %v", err)
		}
	}()
	log.Printf("Serving metrics on http://%s/metrics", ln.Addr())
	return m, nil
}

// Stop shuts the server down.
func (m *metricsServer) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return m.server.Shutdown(ctx)
}
