// Package server implements the TCP acceptor, bounded worker pool, and
// per-connection request handler.
//
// The protocol is one exchange per connection: the client sends the raw
// query bytes, the server answers with a single newline-terminated line
// and closes. There is no framing and no keep-alive.
package server

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"

	"github.com/haystackd/haystackd/internal/config"
	"github.com/haystackd/haystackd/internal/search"
)

const (
	// MaxQueryBytes is the single-read chunk size. Longer queries truncate;
	// nothing past the first chunk is retrieved.
	MaxQueryBytes = 1024

	writeTimeout = 5 * time.Second
)

// Wire responses. Fixed ASCII lines, newline terminated.
var (
	respExists   = []byte("STRING EXISTS\n")
	respNotFound = []byte("STRING NOT FOUND\n")
	respError    = []byte("SERVER ERROR\n")
)

// Server owns the listening socket and dispatches accepted connections to
// a bounded pool of handler goroutines.
type Server struct {
	cfg      *config.ServerConfig
	engine   search.Algorithm
	logger   *slog.Logger
	tlsConf  *tls.Config
	listener net.Listener
	sem      *semaphore.Weighted
	limiter  *rate.Limiter
}

// New creates a server over the given engine. TLS material is loaded here,
// once; a load failure is returned so the caller can treat it as fatal
// before any socket opens.
func New(cfg *config.ServerConfig, engine search.Algorithm, logger *slog.Logger) (*Server, error) {
	s := &Server{
		cfg:    cfg,
		engine: engine,
		logger: logger,
		sem:    semaphore.NewWeighted(int64(cfg.MaxWorkers)),
	}
	if cfg.SSLEnabled {
		cert, err := tls.LoadX509KeyPair(cfg.CertFile, cfg.KeyFile)
		if err != nil {
			return nil, fmt.Errorf("load TLS material: %w", err)
		}
		s.tlsConf = &tls.Config{Certificates: []tls.Certificate{cert}}
	}
	if cfg.AcceptRate > 0 {
		s.limiter = rate.NewLimiter(rate.Limit(cfg.AcceptRate), int(cfg.AcceptRate)+1)
	}
	return s, nil
}

// Listen binds the configured port on all interfaces and wraps the
// listener with TLS when enabled. A bind failure is fatal to the caller.
func (s *Server) Listen(ctx context.Context) error {
	lc := net.ListenConfig{}
	listener, err := lc.Listen(ctx, "tcp", fmt.Sprintf(":%d", s.cfg.Port))
	if err != nil {
		return fmt.Errorf("bind port %d: %w", s.cfg.Port, err)
	}
	if s.tlsConf != nil {
		listener = tls.NewListener(listener, s.tlsConf)
	}
	s.listener = listener
	s.logger.Info("server listening",
		slog.String("addr", listener.Addr().String()),
		slog.Bool("ssl", s.cfg.SSLEnabled),
		slog.Bool("reread_on_query", s.cfg.RereadOnQuery),
		slog.String("algorithm", s.engine.Name()),
		slog.Int("max_workers", s.cfg.MaxWorkers))
	return nil
}

// Addr returns the bound address. Valid after Listen.
func (s *Server) Addr() net.Addr {
	return s.listener.Addr()
}

// Close closes the listener, causing Serve to return.
func (s *Server) Close() error {
	if s.listener != nil {
		return s.listener.Close()
	}
	return nil
}

// Serve accepts connections until ctx is cancelled or the listener is
// closed. Admission happens before accept: when all workers are busy the
// loop stops accepting and excess connections queue in the OS backlog or
// are refused by the kernel.
func (s *Server) Serve(ctx context.Context) error {
	for {
		if s.limiter != nil {
			if err := s.limiter.Wait(ctx); err != nil {
				return nil
			}
		}
		if err := s.sem.Acquire(ctx, 1); err != nil {
			return nil
		}
		conn, err := s.listener.Accept()
		if err != nil {
			s.sem.Release(1)
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			s.logger.Error("accept failed", slog.String("error", err.Error()))
			continue
		}
		go func() {
			defer s.sem.Release(1)
			s.handle(conn)
		}()
	}
}

// ListenAndServe binds and serves.
func (s *Server) ListenAndServe(ctx context.Context) error {
	if err := s.Listen(ctx); err != nil {
		return err
	}
	return s.Serve(ctx)
}

// handle serves exactly one request. Nothing may escape: every failure is
// logged, answered best-effort on the wire, and ends with the connection
// closed.
func (s *Server) handle(conn net.Conn) {
	defer conn.Close()
	start := time.Now()
	client := conn.RemoteAddr().String()

	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("panic in request handler",
				slog.Any("panic", r),
				slog.String("client", client))
			s.respond(conn, respError)
		}
	}()

	_ = conn.SetReadDeadline(time.Now().Add(time.Duration(s.cfg.ReadTimeout)))

	buf := make([]byte, MaxQueryBytes)
	n, err := conn.Read(buf)
	if err != nil && n == 0 && !errors.Is(err, io.EOF) {
		var nerr net.Error
		if errors.As(err, &nerr) && nerr.Timeout() {
			// A slow client and garbage input look the same from here.
			s.logger.Error("idle read timeout", slog.String("client", client))
			s.respond(conn, respNotFound)
			return
		}
		s.logger.Error("read failed",
			slog.String("client", client),
			slog.String("error", err.Error()))
		s.respond(conn, respError)
		return
	}

	query := strings.TrimRight(string(buf[:n]), "\x00")
	if query == "" {
		s.respond(conn, respNotFound)
		s.logger.Debug("empty query",
			slog.String("client", client),
			slog.Duration("elapsed", time.Since(start)))
		return
	}
	if !utf8.ValidString(query) {
		s.logger.Error("query is not valid UTF-8", slog.String("client", client))
		s.respond(conn, respError)
		return
	}

	found, err := s.engine.Search(query)
	if err != nil {
		s.logger.Error("search failed",
			slog.String("client", client),
			slog.String("error", err.Error()))
		s.respond(conn, respError)
		return
	}

	resp := respNotFound
	if found {
		resp = respExists
	}
	s.respond(conn, resp)

	s.logger.Debug("query served",
		slog.String("query", query),
		slog.String("client", client),
		slog.Bool("found", found),
		slog.Duration("elapsed", time.Since(start)))
}

func (s *Server) respond(conn net.Conn, payload []byte) {
	_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if _, err := conn.Write(payload); err != nil {
		s.logger.Error("write failed",
			slog.String("client", conn.RemoteAddr().String()),
			slog.String("error", err.Error()))
	}
}
