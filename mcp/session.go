package mcp

import (
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// ProtocolVersion is the MCP protocol revision this server advertises and
// requires clients to prefix-match on initialize (section 6).
const ProtocolVersion = "2024-11-05"

// State is one of the five session lifecycle states in section 4.2. The zero
// value is Uninitialized, the state every transport starts in.
type State int

const (
	Uninitialized State = iota
	Initializing
	Ready
	ShuttingDown
	Closed
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Initializing:
		return "initializing"
	case Ready:
		return "ready"
	case ShuttingDown:
		return "shutting_down"
	case Closed:
		return "closed"
	default:
		return "unknown"
	}
}

// ClientInfo identifies the connecting client, as supplied in initialize.
type ClientInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// InitializeParams is the payload of an initialize request.
type InitializeParams struct {
	ProtocolVersion string                 `json:"protocolVersion"`
	Capabilities    map[string]interface{} `json:"capabilities"`
	ClientInfo      ClientInfo             `json:"clientInfo"`
}

// ServerInfo identifies this server, as returned from initialize.
type ServerInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// Capabilities is the server's advertised capability object. Only the tools
// surface is populated; resources/prompts/sampling are out of scope.
type Capabilities struct {
	Tools struct {
		ListChanged bool `json:"listChanged"`
	} `json:"tools"`
}

// InitializeResult is the payload of a successful initialize response.
type InitializeResult struct {
	ProtocolVersion string       `json:"protocolVersion"`
	Capabilities    Capabilities `json:"capabilities"`
	ServerInfo      ServerInfo   `json:"serverInfo"`
}

// Session is the single owner of lifecycle state for one transport
// connection. All transitions go through its methods; nothing outside this
// file mutates state directly, per the atomic-totally-ordered-lifecycle
// design note.
type Session struct {
	mu         sync.Mutex
	state      State
	clientInfo ClientInfo
	serverInfo ServerInfo
	id         string
}

// NewSession creates a Session in the Uninitialized state, stamped with a
// fresh correlation id used to tag this connection's tracing spans.
func NewSession(serverInfo ServerInfo) *Session {
	return &Session{state: Uninitialized, serverInfo: serverInfo, id: uuid.NewString()}
}

// ID returns the session's correlation id.
func (s *Session) ID() string { return s.id }

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// TransitionError reports a request/notification rejected because the
// session was in the wrong state to accept it.
type TransitionError struct {
	From  State
	Event string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("invalid request: %q not accepted in state %s", e.Event, e.From)
}

// Initialize handles the initialize request: Uninitialized -> Initializing.
// It validates the protocol version prefix and stores the client info.
func (s *Session) Initialize(params InitializeParams) (InitializeResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != Uninitialized {
		return InitializeResult{}, &TransitionError{From: s.state, Event: "initialize"}
	}
	if !strings.HasPrefix(params.ProtocolVersion, "2024-11") {
		return InitializeResult{}, &Error{
			Code:    ErrCodeInvalidParams,
			Message: "unsupported protocol version",
			Data:    map[string][]string{"supported": {ProtocolVersion}},
		}
	}

	s.clientInfo = params.ClientInfo
	s.state = Initializing

	result := InitializeResult{ProtocolVersion: ProtocolVersion, ServerInfo: s.serverInfo}
	result.Capabilities.Tools.ListChanged = false
	return result, nil
}

// Initialized handles the initialized notification: Initializing -> Ready.
// Arriving outside Initializing is silently ignored: notifications never
// elicit a reply and a stray one must not destabilize the session.
func (s *Session) Initialized() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == Initializing {
		s.state = Ready
	}
}

// RequireReady checks that a tool-bearing request is permitted to dispatch.
func (s *Session) RequireReady(event string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != Ready {
		return &TransitionError{From: s.state, Event: event}
	}
	return nil
}

// Shutdown handles the shutdown request: Ready -> ShuttingDown.
func (s *Session) Shutdown() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != Ready {
		return &TransitionError{From: s.state, Event: "shutdown"}
	}
	s.state = ShuttingDown
	return nil
}

// Exit handles the exit notification: ShuttingDown -> Closed.
func (s *Session) Exit() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = Closed
}

// Close forces Closed from any state, used on transport EOF or a fatal codec
// error per the "any -> Closed" row of the transition table.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = Closed
}

// AllowedUninitialized reports whether method may run before initialize
// completes: only initialize and ping are permitted in Uninitialized.
func AllowedUninitialized(method string) bool {
	return method == "initialize" || method == "ping"
}
