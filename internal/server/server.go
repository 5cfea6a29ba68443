// Package server hosts the tool registry over a line-delimited JSON stream,
// typically a child process's stdin and stdout. Each input line is one
// request; each output line is one response carrying the request's id.
// Requests run concurrently, so responses may arrive out of order.
package server

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mcncl/jsonlens/internal/errors"
	"github.com/mcncl/jsonlens/internal/tools"
)

// Methods
const (
	MethodList = "list"
	MethodCall = "call"
)

// MaxRequestSize bounds a single request line.
const MaxRequestSize = 16 * 1024 * 1024

// Request is one line of input.
type Request struct {
	ID        string            `json:"id,omitempty"`
	Method    string            `json:"method,omitempty"`
	Tool      string            `json:"tool,omitempty"`
	Arguments map[string]string `json:"arguments,omitempty"`
}

// Response is one line of output. Result holds the tool's JSON result
// verbatim.
type Response struct {
	ID     string          `json:"id"`
	Result json.RawMessage `json:"result,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// Server dispatches requests to a tool registry.
type Server struct {
	registry    *tools.Registry
	logger      *zap.Logger
	concurrency int
}

// New creates a Server that runs at most concurrency requests at once.
func New(registry *tools.Registry, logger *zap.Logger, concurrency int) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if concurrency < 1 {
		concurrency = 1
	}
	return &Server{registry: registry, logger: logger, concurrency: concurrency}
}

// Serve reads requests from r until EOF or until ctx is done, writing one
// response per request to w. It waits for in-flight requests before
// returning. Cancellation takes effect even while r is blocked; the reading
// goroutine then exits once r returns.
func (s *Server) Serve(ctx context.Context, r io.Reader, w io.Writer) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	out := &responseWriter{w: w}

	lines := make(chan []byte)
	readErr := make(chan error, 1)
	go readLines(gctx, r, lines, readErr)

	s.logger.Info("Tool host started", zap.Int("concurrency", s.concurrency))
	requests := 0
loop:
	for gctx.Err() == nil {
		select {
		case <-gctx.Done():
			break loop
		case data, ok := <-lines:
			if !ok || gctx.Err() != nil {
				break loop
			}
			requests++
			g.Go(func() error {
				return out.write(s.handle(gctx, data))
			})
		}
	}

	waitErr := g.Wait()
	s.logger.Info("Tool host stopped", zap.Int("requests", requests))

	if waitErr != nil {
		return errors.NewOutputError("failed to write response", waitErr)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	select {
	case err := <-readErr:
		if err != nil {
			return errors.NewInputError("failed to read request", err)
		}
	default:
	}
	return nil
}

// readLines sends each non-blank line of r on lines and closes it at EOF.
func readLines(ctx context.Context, r io.Reader, lines chan<- []byte, readErr chan<- error) {
	defer close(lines)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), MaxRequestSize)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		select {
		case lines <- append([]byte(nil), line...):
		case <-ctx.Done():
			return
		}
	}
	readErr <- scanner.Err()
}

func (s *Server) handle(ctx context.Context, data []byte) Response {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		id := uuid.NewString()
		s.logger.Warn("Malformed request", zap.String("id", id), zap.Error(err))
		return Response{ID: id, Error: fmt.Sprintf("invalid request: %v", err)}
	}
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	if req.Method == "" && req.Tool != "" {
		req.Method = MethodCall
	}

	logger := s.logger.With(zap.String("id", req.ID), zap.String("method", req.Method))

	switch req.Method {
	case MethodList:
		list, err := json.Marshal(s.registry.List())
		if err != nil {
			return Response{ID: req.ID, Error: err.Error()}
		}
		return Response{ID: req.ID, Result: list}
	case MethodCall:
		logger.Debug("Calling tool", zap.String("tool", req.Tool))
		result, err := s.registry.Call(ctx, req.Tool, req.Arguments)
		if err != nil {
			logger.Warn("Tool call rejected", zap.String("tool", req.Tool), zap.Error(err))
			return Response{ID: req.ID, Error: errors.Describe(err)}
		}
		return Response{ID: req.ID, Result: json.RawMessage(result)}
	default:
		logger.Warn("Unknown method")
		return Response{ID: req.ID, Error: fmt.Sprintf("unknown method '%s'", req.Method)}
	}
}

// responseWriter serializes whole response lines onto w.
type responseWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (rw *responseWriter) write(resp Response) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(resp); err != nil {
		return err
	}

	rw.mu.Lock()
	defer rw.mu.Unlock()
	_, err := rw.w.Write(buf.Bytes())
	return err
}
