package mcp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSession() *Session {
	return NewSession(ServerInfo{Name: "reasonkit-web", Version: "0.1.0"})
}

func TestSession_InitializeTransitions(t *testing.T) {
	s := newTestSession()
	assert.Equal(t, Uninitialized, s.State())

	result, err := s.Initialize(InitializeParams{ProtocolVersion: "2024-11-05"})
	require.NoError(t, err)
	assert.Equal(t, Initializing, s.State())
	assert.Equal(t, "reasonkit-web", result.ServerInfo.Name)
}

func TestSession_InitializeTwiceRejected(t *testing.T) {
	s := newTestSession()
	_, err := s.Initialize(InitializeParams{ProtocolVersion: "2024-11-05"})
	require.NoError(t, err)

	_, err = s.Initialize(InitializeParams{ProtocolVersion: "2024-11-05"})
	require.Error(t, err)
	_, ok := err.(*TransitionError)
	assert.True(t, ok)
}

func TestSession_InitializeRejectsUnsupportedVersion(t *testing.T) {
	s := newTestSession()
	_, err := s.Initialize(InitializeParams{ProtocolVersion: "2023-01-01"})
	require.Error(t, err)
	rpcErr, ok := err.(*Error)
	require.True(t, ok)
	assert.Equal(t, ErrCodeInvalidParams, rpcErr.Code)
}

func TestSession_FullLifecycle(t *testing.T) {
	s := newTestSession()
	_, err := s.Initialize(InitializeParams{ProtocolVersion: "2024-11-05"})
	require.NoError(t, err)

	s.Initialized()
	assert.Equal(t, Ready, s.State())

	require.NoError(t, s.RequireReady("tools/call"))

	require.NoError(t, s.Shutdown())
	assert.Equal(t, ShuttingDown, s.State())

	s.Exit()
	assert.Equal(t, Closed, s.State())
}

func TestSession_StrayInitializedNotificationIgnored(t *testing.T) {
	s := newTestSession()
	s.Initialized() // arrives before initialize: must not crash or transition
	assert.Equal(t, Uninitialized, s.State())
}

func TestSession_ToolCallBeforeReadyRejected(t *testing.T) {
	s := newTestSession()
	err := s.RequireReady("tools/call")
	require.Error(t, err)
	te, ok := err.(*TransitionError)
	require.True(t, ok)
	assert.Equal(t, Uninitialized, te.From)
}

func TestSession_ShutdownOutsideReadyRejected(t *testing.T) {
	s := newTestSession()
	err := s.Shutdown()
	require.Error(t, err)
}

func TestSession_CloseForcesClosedFromAnyState(t *testing.T) {
	s := newTestSession()
	s.Close()
	assert.Equal(t, Closed, s.State())
}

func TestAllowedUninitialized(t *testing.T) {
	assert.True(t, AllowedUninitialized("initialize"))
	assert.True(t, AllowedUninitialized("ping"))
	assert.False(t, AllowedUninitialized("tools/call"))
}

func TestSession_IDIsStable(t *testing.T) {
	s := newTestSession()
	assert.NotEmpty(t, s.ID())
	assert.Equal(t, s.ID(), s.ID())
}
