package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Server wraps the HTTP server for graceful lifecycle. Episode generation
// outlives the request that started it, so shutdown happens in two steps:
// stop the listener, then drain background jobs via Drain.
type Server struct {
	Engine *gin.Engine
	Addr   string
	Logger *zap.Logger

	ReadHeaderTimeout time.Duration
	IdleTimeout       time.Duration
	ShutdownTimeout   time.Duration

	// Drain blocks until in-flight generations have persisted their
	// terminal state. May be nil.
	Drain func()
}

// Run starts the server and blocks until ctx is done or the listener
// fails. In-flight HTTP requests get ShutdownTimeout to finish; background
// generation is drained afterwards.
func (s *Server) Run(ctx context.Context) error {
	if s.Engine == nil {
		return fmt.Errorf("engine not configured")
	}
	readHeaderTimeout := s.ReadHeaderTimeout
	if readHeaderTimeout <= 0 {
		readHeaderTimeout = 10 * time.Second
	}
	idleTimeout := s.IdleTimeout
	if idleTimeout <= 0 {
		idleTimeout = time.Minute
	}
	shutdownTimeout := s.ShutdownTimeout
	if shutdownTimeout <= 0 {
		shutdownTimeout = 10 * time.Second
	}

	srv := &http.Server{
		Addr:              s.Addr,
		Handler:           s.Engine,
		ReadHeaderTimeout: readHeaderTimeout,
		IdleTimeout:       idleTimeout,
	}
	if s.Logger != nil {
		s.Logger.Info("http server listening", zap.String("addr", s.Addr))
	}
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		err := srv.Shutdown(shutdownCtx)
		s.drain()
		return err
	case err := <-errCh:
		s.drain()
		if err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	}
}

func (s *Server) drain() {
	if s.Drain == nil {
		return
	}
	if s.Logger != nil {
		s.Logger.Info("draining in-flight episode generation")
	}
	s.Drain()
}
