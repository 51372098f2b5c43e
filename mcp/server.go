package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"github.com/shaharia-lab/reasonkit-web/internal/logging"
	"github.com/shaharia-lab/reasonkit-web/observability"
)

// SinkCapacity is the default number of pending outbound messages the writer
// sink will buffer before producers block, per the backpressure contract in
// section 5.
const SinkCapacity = 64

// Resetter is implemented by the browser controller (C4): on session close
// it must release every browser resource before the transport exits.
type Resetter interface {
	Shutdown(ctx context.Context)
}

// Server wires the wire codec (C1), session state machine (C2), and tool
// registry (C3) into the single event loop described in section 5: one
// reader goroutine classifies and dispatches messages, handling lifecycle
// requests itself in arrival order; each tools/call that arrives once the
// session is Ready runs on its own goroutine, and all writes funnel through
// one serializing sink.
type Server struct {
	codec       *Codec
	session     *Session
	registry    *Registry
	logger      logging.Logger
	callTimeout time.Duration
	tracker     *callTracker
	controller  Resetter

	sink     chan *Envelope
	done     chan struct{}
	inflight errgroup.Group
}

// drainTimeout bounds how long closeSession waits for in-flight tool-call
// goroutines to return after their contexts are cancelled, so a handler that
// ignores cancellation cannot hang shutdown forever.
const drainTimeout = 5 * time.Second

// Option configures a Server at construction time.
type Option func(*Server)

// WithCallTimeout overrides the default per-call dispatch timeout.
func WithCallTimeout(d time.Duration) Option {
	return func(s *Server) { s.callTimeout = d }
}

// WithController registers the browser controller to shut down on close.
func WithController(c Resetter) Option {
	return func(s *Server) { s.controller = c }
}

// NewServer builds a Server over in/out, advertising serverInfo and
// dispatching to registry.
func NewServer(in io.Reader, out io.Writer, serverInfo ServerInfo, registry *Registry, logger logging.Logger, opts ...Option) *Server {
	s := &Server{
		codec:       NewCodec(in, out),
		session:     NewSession(serverInfo),
		registry:    registry,
		logger:      logger,
		callTimeout: DefaultCallTimeout,
		tracker:     newCallTracker(),
		sink:        make(chan *Envelope, SinkCapacity),
		done:        make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run drives the event loop until the transport closes or ctx is cancelled.
// It returns nil on a clean EOF-triggered shutdown.
func (s *Server) Run(ctx context.Context) error {
	go s.writerLoop()
	defer func() {
		close(s.sink)
		<-s.done
	}()

	for {
		select {
		case <-ctx.Done():
			s.closeSession(ctx)
			return ctx.Err()
		default:
		}

		env, kind, err := s.codec.ReadMessage()
		if err != nil {
			if err == io.EOF {
				s.closeSession(ctx)
				return nil
			}
			if fe, ok := err.(*FramingError); ok {
				s.emit(Response(NullID(), nil, NewError(fe.Code, fe.Message, nil)))
				continue
			}
			s.closeSession(ctx)
			return fmt.Errorf("read message: %w", err)
		}

		switch kind {
		case KindRequest:
			if env.Method != "tools/call" || s.session.State() != Ready {
				s.handleRequest(ctx, env)
				continue
			}
			s.inflight.Go(func() error {
				s.handleRequest(ctx, env)
				return nil
			})
		case KindNotification:
			s.handleNotification(ctx, env)
		default:
			s.emit(Response(NullID(), nil, NewError(ErrCodeInvalidRequest, "invalid request", nil)))
		}
	}
}

func (s *Server) closeSession(ctx context.Context) {
	s.tracker.cancelAll()
	s.drainInflight()
	s.session.Close()
	if s.controller != nil {
		s.controller.Shutdown(ctx)
	}
}

// drainInflight waits for every goroutine spawned for a request to return,
// bounded by drainTimeout: cancelAll already told them to stop, this just
// gives them a moment to unwind before the controller is torn down under
// them.
func (s *Server) drainInflight() {
	waited := make(chan struct{})
	var once sync.Once
	go func() {
		_ = s.inflight.Wait()
		once.Do(func() { close(waited) })
	}()

	select {
	case <-waited:
	case <-time.After(drainTimeout):
		s.logger.Warn("timed out waiting for in-flight tool calls to drain")
	}
}

// writerLoop is the sole goroutine that touches the codec's write half,
// guaranteeing output is never interleaved between concurrent requests.
func (s *Server) writerLoop() {
	defer close(s.done)
	for env := range s.sink {
		if err := s.codec.WriteMessage(env); err != nil {
			s.logger.WithErr(err).Error("failed to write message")
		}
	}
}

func (s *Server) emit(env *Envelope) {
	s.sink <- env
}

func (s *Server) handleRequest(ctx context.Context, env *Envelope) {
	ctx, span := observability.StartSpan(ctx, "Server.handleRequest")
	defer span.End()
	span.SetAttributes(attribute.String("session.id", s.session.ID()))

	method := env.Method
	state := s.session.State()

	if state == Uninitialized && !AllowedUninitialized(method) {
		s.emit(Response(env.ID, nil, NewError(ErrCodeInvalidRequest, fmt.Sprintf("%q not accepted before initialize", method), nil)))
		return
	}

	switch method {
	case "initialize":
		s.handleInitialize(env)
	case "ping":
		s.emit(Response(env.ID, map[string]bool{"pong": true}, nil))
	case "shutdown":
		s.handleShutdown(env)
	case "tools/list":
		s.emit(Response(env.ID, s.registry.List(), nil))
	case "tools/call":
		s.handleToolsCall(ctx, env)
	default:
		s.emit(Response(env.ID, nil, NewError(ErrCodeMethodNotFound, fmt.Sprintf("method not found: %s", method), nil)))
	}
}

func (s *Server) handleInitialize(env *Envelope) {
	var params InitializeParams
	if err := json.Unmarshal(env.Params, &params); err != nil {
		s.emit(Response(env.ID, nil, NewError(ErrCodeInvalidParams, "invalid params", nil)))
		return
	}

	result, err := s.session.Initialize(params)
	if err != nil {
		s.emit(Response(env.ID, nil, toRPCError(err)))
		return
	}
	s.emit(Response(env.ID, result, nil))
}

func (s *Server) handleShutdown(env *Envelope) {
	if err := s.session.Shutdown(); err != nil {
		s.emit(Response(env.ID, nil, toRPCError(err)))
		return
	}
	s.emit(Response(env.ID, nil, nil))
}

func (s *Server) handleToolsCall(ctx context.Context, env *Envelope) {
	if err := s.session.RequireReady("tools/call"); err != nil {
		s.emit(Response(env.ID, nil, toRPCError(err)))
		return
	}

	var params CallParams
	if err := json.Unmarshal(env.Params, &params); err != nil {
		s.emit(Response(env.ID, nil, NewError(ErrCodeInvalidParams, "invalid params", nil)))
		return
	}

	callCtx, cancel := context.WithCancel(ctx)
	release := s.tracker.track(idKey(env.ID), cancel)
	defer release()
	defer cancel()

	result, rpcErr := s.registry.Dispatch(callCtx, params, s.callTimeout)
	if rpcErr != nil {
		s.emit(Response(env.ID, nil, rpcErr))
		return
	}
	s.emit(Response(env.ID, result, nil))
}

func (s *Server) handleNotification(ctx context.Context, env *Envelope) {
	switch env.Method {
	case "initialized", "notifications/initialized":
		s.session.Initialized()
	case "exit":
		s.session.Exit()
		s.closeSession(ctx)
	default:
		s.logger.WithFields(map[string]interface{}{"method": env.Method}).Debug("unhandled notification")
	}
}

func idKey(id *json.RawMessage) string {
	if id == nil {
		return ""
	}
	return string(*id)
}

func toRPCError(err error) *Error {
	if rpcErr, ok := err.(*Error); ok {
		return rpcErr
	}
	if te, ok := err.(*TransitionError); ok {
		return NewError(ErrCodeInvalidRequest, te.Error(), nil)
	}
	return NewError(ErrCodeInternal, err.Error(), nil)
}
