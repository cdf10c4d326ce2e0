package httpserver

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

// pinger is what the readiness check needs from the database.
type pinger interface {
	Ping(ctx context.Context) error
}

// Server is the storefront HTTP API.
type Server struct {
	httpServer *http.Server
	logger     *log.Logger
}

// New builds the API server. A nil db leaves /readyz reporting unavailable.
func New(addr string, logger *log.Logger, db *pgxpool.Pool, deps Deps, settings Settings) (*Server, error) {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	var store pinger
	if db != nil {
		store = db
	}
	router, err := buildRouter(logger, store, deps, settings)
	if err != nil {
		return nil, err
	}

	return &Server{
		httpServer: &http.Server{
			Addr:              addr,
			Handler:           router,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       30 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       2 * time.Minute,
			MaxHeaderBytes:    1 << 20,
			ErrorLog:          logger,
		},
		logger: logger,
	}, nil
}

func (s *Server) ListenAndServe() error {
	s.logger.Printf("http: listening addr=%s", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown stops accepting connections and waits for in-flight requests,
// such as a checkout finalize, until ctx is done.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Printf("http: draining connections")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return nil
}

func healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// readyHandler answers 200 only while the database responds.
func readyHandler(db pinger, logger *log.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if db == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "checks": gin.H{"database": "not configured"}})
			return
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := db.Ping(ctx); err != nil {
			logger.Printf("http: readiness database ping error=%v", err)
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "checks": gin.H{"database": "unreachable"}})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready", "checks": gin.H{"database": "ok"}})
	}
}
