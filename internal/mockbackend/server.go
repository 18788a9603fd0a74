package mockbackend

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/kbukum/llmaid/logger"
)

// Gin prints its route table in debug mode. Stay quiet unless GIN_MODE
// asks otherwise; binaries may switch modes before building a Server.
func init() {
	if os.Getenv(gin.EnvGinMode) == "" {
		gin.SetMode(gin.ReleaseMode)
	}
}

// Server is the mock completions server backed by Gin.
type Server struct {
	httpServer *http.Server
	engine     *gin.Engine
	handler    http.Handler
	config     Config
	log        *logger.Logger

	mu       sync.Mutex
	addr     string
	requests []Received
}

// New creates a Server. Routes and middleware are registered; nothing is
// bound until Start.
func New(cfg Config, log *logger.Logger) (*Server, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = logger.Nop()
	}

	s := &Server{
		engine: gin.New(),
		config: cfg,
		log:    log.WithComponent("mockbackend"),
	}
	s.engine.Use(recovery(s.log), requestID(), requestLogger(s.log))
	s.engine.GET("/health", s.health)
	s.engine.POST("/completions", s.completions)
	s.engine.POST("/v1/completions", s.completions)

	// h2c lets HTTP/2 clients talk to the mock without TLS.
	s.handler = h2c.NewHandler(s.engine, &http2.Server{
		MaxConcurrentStreams: 250,
		IdleTimeout:          time.Duration(cfg.IdleTimeout) * time.Second,
	})

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      s.handler,
		ReadTimeout:  time.Duration(cfg.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.IdleTimeout) * time.Second,
	}
	return s, nil
}

// Handler returns the root handler, for use with httptest.NewServer.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start binds the port and begins serving. It returns once the listener is
// bound so the caller knows the port is ready; serving continues in a goroutine.
func (s *Server) Start(ctx context.Context) error {
	var lc net.ListenConfig
	listener, err := lc.Listen(ctx, "tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("mock backend failed to bind %s: %w", s.httpServer.Addr, err)
	}

	s.mu.Lock()
	s.addr = listener.Addr().String()
	s.mu.Unlock()

	go func() {
		if err := s.httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
			s.log.Error("Server error", logger.Fields(logger.FieldError, err.Error()))
		}
	}()

	s.log.Info("Mock backend started", logger.Fields("addr", s.Addr()))
	return nil
}

// Stop gracefully shuts down the server with a 5-second deadline.
func (s *Server) Stop(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("mock backend shutdown error: %w", err)
	}
	s.log.Info("Mock backend stopped")
	return nil
}

// Addr returns the bound address once started, else the configured one.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.addr != "" {
		return s.addr
	}
	return s.httpServer.Addr
}

// URL returns the base URL clients should use.
func (s *Server) URL() string {
	return "http://" + s.Addr()
}

// Received is a completion request as seen by the server.
type Received struct {
	RequestID     string
	Authorization string
	Body          CompletionRequest
}

// Requests returns a copy of the completion requests received so far.
func (s *Server) Requests() []Received {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Received, len(s.requests))
	copy(out, s.requests)
	return out
}

// LastRequest returns the most recent completion request.
func (s *Server) LastRequest() (Received, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.requests) == 0 {
		return Received{}, false
	}
	return s.requests[len(s.requests)-1], true
}

func (s *Server) record(r Received) {
	s.mu.Lock()
	s.requests = append(s.requests, r)
	s.mu.Unlock()
}
