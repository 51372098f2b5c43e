package mcp

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shaharia-lab/reasonkit-web/internal/logging"
)

// newTestServer feeds pre-scripted input lines to a Server and captures its
// output lines, mimicking the stdin/stdout transport contract (section 6)
// without spawning a real process.
func newTestServer(t *testing.T, input string) (*Server, *bytes.Buffer) {
	t.Helper()
	out := &bytes.Buffer{}
	reg := NewRegistry()
	require.NoError(t, reg.Register("echo", "", json.RawMessage(echoSchema), echoHandler))
	s := NewServer(bytes.NewReader([]byte(input)), out, ServerInfo{Name: "reasonkit-web", Version: "0.1.0"}, reg, logging.NewNullLogger())
	return s, out
}

func readLines(t *testing.T, buf *bytes.Buffer) []Envelope {
	t.Helper()
	var envs []Envelope
	scanner := bufio.NewScanner(bytes.NewReader(buf.Bytes()))
	for scanner.Scan() {
		var env Envelope
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &env))
		envs = append(envs, env)
	}
	return envs
}

func TestServer_HandshakeSeedScenario(t *testing.T) {
	input := `{"jsonrpc":"2.0","method":"initialize","params":{"protocolVersion":"2024-11-05","capabilities":{},"clientInfo":{"name":"t","version":"1"}},"id":1}` + "\n" +
		`{"jsonrpc":"2.0","method":"notifications/initialized"}` + "\n" +
		`{"jsonrpc":"2.0","method":"tools/list","id":2}` + "\n"

	s, out := newTestServer(t, input)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	err := s.Run(ctx)
	require.NoError(t, err)

	envs := readLines(t, out)
	require.Len(t, envs, 2)

	var initResult InitializeResult
	require.NoError(t, json.Unmarshal(envs[0].Result, &initResult))
	assert.Equal(t, "reasonkit-web", initResult.ServerInfo.Name)

	var listResult ListToolsResult
	require.NoError(t, json.Unmarshal(envs[1].Result, &listResult))
	assert.Len(t, listResult.Tools, 1)
}

func TestServer_HandshakeAcceptsBareInitializedNotification(t *testing.T) {
	input := `{"jsonrpc":"2.0","method":"initialize","params":{"protocolVersion":"2024-11-05","capabilities":{},"clientInfo":{"name":"t","version":"1"}},"id":1}` + "\n" +
		`{"jsonrpc":"2.0","method":"initialized"}` + "\n" +
		`{"jsonrpc":"2.0","method":"tools/call","params":{"name":"echo","arguments":{"text":"hi"}},"id":2}` + "\n"

	s, out := newTestServer(t, input)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	require.NoError(t, s.Run(ctx))
	// Run closes the session at EOF; the tools/call reply below, accepted
	// only in Ready, shows the bare notification got it there.
	assert.Equal(t, Closed, s.session.State())

	envs := readLines(t, out)
	require.Len(t, envs, 2)
	require.Nil(t, envs[1].Error)
}

func TestServer_PingAllowedBeforeInitialize(t *testing.T) {
	input := `{"jsonrpc":"2.0","method":"ping","id":9}` + "\n"
	s, out := newTestServer(t, input)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, s.Run(ctx))

	envs := readLines(t, out)
	require.Len(t, envs, 1)
	var result map[string]bool
	require.NoError(t, json.Unmarshal(envs[0].Result, &result))
	assert.True(t, result["pong"])
}

func TestServer_ToolCallBeforeInitializeRejected(t *testing.T) {
	input := `{"jsonrpc":"2.0","method":"tools/call","params":{"name":"echo","arguments":{"text":"hi"}},"id":1}` + "\n"
	s, out := newTestServer(t, input)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, s.Run(ctx))

	envs := readLines(t, out)
	require.Len(t, envs, 1)
	require.NotNil(t, envs[0].Error)
	assert.Equal(t, ErrCodeInvalidRequest, envs[0].Error.Code)
}

func TestServer_UnknownToolReturnsMethodNotFound(t *testing.T) {
	input := `{"jsonrpc":"2.0","method":"initialize","params":{"protocolVersion":"2024-11-05","clientInfo":{"name":"t","version":"1"}},"id":1}` + "\n" +
		`{"jsonrpc":"2.0","method":"notifications/initialized"}` + "\n" +
		`{"jsonrpc":"2.0","method":"tools/call","params":{"name":"nope","arguments":{}},"id":2}` + "\n"
	s, out := newTestServer(t, input)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, s.Run(ctx))

	envs := readLines(t, out)
	require.Len(t, envs, 2)
	require.NotNil(t, envs[1].Error)
	assert.Equal(t, ErrCodeMethodNotFound, envs[1].Error.Code)
}

func TestServer_FramingErrorEmitsNullIDResponse(t *testing.T) {
	input := "not json\n"
	s, out := newTestServer(t, input)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	// A parse error on input alone does not close the stream (no further
	// lines follow), so Run exits via context timeout or EOF after emitting
	// the error response.
	_ = s.Run(ctx)

	envs := readLines(t, out)
	require.Len(t, envs, 1)
	require.NotNil(t, envs[0].Error)
	assert.Equal(t, ErrCodeParseError, envs[0].Error.Code)
}
