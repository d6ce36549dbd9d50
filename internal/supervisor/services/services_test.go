// Salerec - Collaborative Filtering over Sales Records
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/salerec

package services

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/salerec/internal/recommend"
)

func waitFor(timeout time.Duration, cond func() bool) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return cond()
}

// mockHTTPServer blocks in ListenAndServe until Shutdown.
type mockHTTPServer struct {
	listenErr   error
	shutdownErr error
	stop        chan struct{}
	once        sync.Once
	shutdowns   atomic.Int32
}

func newMockHTTPServer() *mockHTTPServer {
	return &mockHTTPServer{stop: make(chan struct{})}
}

func (m *mockHTTPServer) ListenAndServe() error {
	if m.listenErr != nil {
		return m.listenErr
	}
	<-m.stop
	return http.ErrServerClosed
}

func (m *mockHTTPServer) Shutdown(context.Context) error {
	m.shutdowns.Add(1)
	m.once.Do(func() { close(m.stop) })
	return m.shutdownErr
}

func TestHTTPServerService(t *testing.T) {
	t.Run("graceful shutdown", func(t *testing.T) {
		srv := newMockHTTPServer()
		svc := NewHTTPServerService(srv, time.Second)

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() { done <- svc.Serve(ctx) }()
		cancel()

		if err := <-done; !errors.Is(err, context.Canceled) {
			t.Errorf("Serve() error = %v, want context.Canceled", err)
		}
		if srv.shutdowns.Load() != 1 {
			t.Errorf("Shutdown calls = %d, want 1", srv.shutdowns.Load())
		}
	})

	t.Run("listen failure", func(t *testing.T) {
		srv := newMockHTTPServer()
		srv.listenErr = errors.New("address in use")
		svc := NewHTTPServerService(srv, 0)

		err := svc.Serve(context.Background())
		if err == nil || !errors.Is(err, srv.listenErr) {
			t.Errorf("Serve() error = %v, want wrapped listen error", err)
		}
	})

	t.Run("shutdown failure", func(t *testing.T) {
		srv := newMockHTTPServer()
		srv.shutdownErr = errors.New("timeout")
		svc := NewHTTPServerService(srv, time.Second)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		if err := svc.Serve(ctx); !errors.Is(err, srv.shutdownErr) {
			t.Errorf("Serve() error = %v, want shutdown error", err)
		}
	})

	if got := NewHTTPServerService(newMockHTTPServer(), 0).String(); got != "http-server" {
		t.Errorf("String() = %q, want http-server", got)
	}
}

type mockEngine struct {
	mu      sync.Mutex
	calls   int
	err     error
	dirty   atomic.Bool
}

func (m *mockEngine) Refresh(context.Context) error {
	m.mu.Lock()
	m.calls++
	err := m.err
	m.mu.Unlock()
	m.dirty.Store(false)
	return err
}

func (m *mockEngine) Dirty() bool { return m.dirty.Load() }

func (m *mockEngine) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func TestRefreshService(t *testing.T) {
	t.Run("refreshes on startup", func(t *testing.T) {
		engine := &mockEngine{}
		svc := NewRefreshService(engine, RefreshServiceConfig{RefreshOnStartup: true, Interval: time.Hour}, zerolog.Nop())

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() { done <- svc.Serve(ctx) }()

		if !waitFor(time.Second, func() bool { return engine.count() == 1 }) {
			t.Errorf("refresh calls = %d, want 1", engine.count())
		}
		cancel()
		if err := <-done; !errors.Is(err, context.Canceled) {
			t.Errorf("Serve() error = %v, want context.Canceled", err)
		}
	})

	t.Run("refreshes when dirty", func(t *testing.T) {
		engine := &mockEngine{}
		svc := NewRefreshService(engine, RefreshServiceConfig{
			Interval:   time.Hour,
			DirtyCheck: 10 * time.Millisecond,
		}, zerolog.Nop())

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go svc.Serve(ctx) //nolint:errcheck

		time.Sleep(50 * time.Millisecond)
		if engine.count() != 0 {
			t.Fatalf("refresh calls while clean = %d, want 0", engine.count())
		}

		engine.dirty.Store(true)
		if !waitFor(time.Second, func() bool { return engine.count() == 1 }) {
			t.Errorf("refresh calls after MarkDirty = %d, want 1", engine.count())
		}
	})

	t.Run("interval refresh and errors keep running", func(t *testing.T) {
		engine := &mockEngine{err: recommend.ErrInsufficientData}
		svc := NewRefreshService(engine, RefreshServiceConfig{Interval: 10 * time.Millisecond}, zerolog.Nop())

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() { done <- svc.Serve(ctx) }()

		if !waitFor(time.Second, func() bool { return engine.count() >= 3 }) {
			t.Errorf("refresh calls = %d, want >= 3", engine.count())
		}
		cancel()
		<-done
	})

	t.Run("config from engine section", func(t *testing.T) {
		cfg := RefreshServiceConfigFrom(recommend.RefreshConfig{Interval: time.Minute, DirtyCheck: time.Second})
		if !cfg.RefreshOnStartup || cfg.Interval != time.Minute || cfg.DirtyCheck != time.Second {
			t.Errorf("RefreshServiceConfigFrom() = %+v", cfg)
		}
		svc := NewRefreshService(&mockEngine{}, RefreshServiceConfig{}, zerolog.Nop())
		if svc.config.Interval != time.Hour {
			t.Errorf("default interval = %v, want 1h", svc.config.Interval)
		}
		if svc.String() != "refresh-service" {
			t.Errorf("String() = %q", svc.String())
		}
	})
}

type mockConsumer struct {
	runErr error
	block  bool
	closed atomic.Bool
}

func (m *mockConsumer) Run(ctx context.Context) error {
	if m.block {
		<-ctx.Done()
		return ctx.Err()
	}
	return m.runErr
}

func (m *mockConsumer) Close() error {
	m.closed.Store(true)
	return nil
}

func TestIngestService(t *testing.T) {
	tests := []struct {
		name       string
		consumer   *mockConsumer
		cancel     bool
		wantErr    error
		wantClosed bool
	}{
		{"shutdown closes consumer", &mockConsumer{block: true}, true, context.Canceled, true},
		{"consumer error restarts", &mockConsumer{runErr: errors.New("nats down")}, false, nil, false},
		{"subscription closed", &mockConsumer{}, false, nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewIngestService(tt.consumer, zerolog.Nop())
			ctx, cancel := context.WithCancel(context.Background())
			if tt.cancel {
				cancel()
			} else {
				defer cancel()
			}

			err := svc.Serve(ctx)
			if err == nil {
				t.Fatal("Serve() error = nil")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("Serve() error = %v, want %v", err, tt.wantErr)
			}
			if tt.consumer.runErr != nil && !errors.Is(err, tt.consumer.runErr) {
				t.Errorf("Serve() error = %v, want wrapped %v", err, tt.consumer.runErr)
			}
			if tt.consumer.closed.Load() != tt.wantClosed {
				t.Errorf("closed = %v, want %v", tt.consumer.closed.Load(), tt.wantClosed)
			}
		})
	}
}
