package mcp

import (
	"context"
	"encoding/json"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dhirajnair/pspec/internal/review"
)

func newTestServer() *Server {
	return NewServer(review.DefaultOptions(), "test")
}

// runServer starts s.Run in a goroutine piped through pw/pr and returns
// a function that writes a request line and reads the response line.
// Close pw to trigger EOF. The returned cleanup func cancels the context.
func runServer(t *testing.T, s *Server) (
	sendLine func(line string) string,
	closePipe func(),
	cleanup func(),
) {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())

	// Pipe: test writes to pw, server reads from pr.
	pr, pw := io.Pipe()
	// Pipe: server writes to sw, test reads from sr.
	sr, sw := io.Pipe()

	done := make(chan error, 1)
	go func() {
		done <- s.Run(ctx, pr, sw)
	}()

	sendLine = func(line string) string {
		_, err := io.WriteString(pw, line+"\n")
		require.NoError(t, err, "sendLine write")

		// Read one response line.
		buf := make([]byte, 1<<16)
		var out strings.Builder
		for {
			n, err := sr.Read(buf)
			if n > 0 {
				out.Write(buf[:n])
				s := out.String()
				if idx := strings.IndexByte(s, '\n'); idx >= 0 {
					return s[:idx]
				}
			}
			require.NoError(t, err, "sendLine read")
		}
	}

	closePipe = func() {
		_ = pw.Close()
	}

	cleanup = func() {
		cancel()
		_ = pw.Close()
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Error("Run did not return after cancel+close")
		}
	}

	return sendLine, closePipe, cleanup
}

type rpcResponse struct {
	ID     int             `json:"id"`
	Result json.RawMessage `json:"result"`
	Error  *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func decode(t *testing.T, line string) rpcResponse {
	t.Helper()
	var resp rpcResponse
	require.NoError(t, json.Unmarshal([]byte(line), &resp), "response: %s", line)
	return resp
}

func TestRun_Initialize(t *testing.T) {
	sendLine, _, cleanup := runServer(t, newTestServer())
	defer cleanup()

	resp := decode(t, sendLine(`{"jsonrpc":"2.0","id":1,"method":"initialize"}`))
	var result struct {
		ProtocolVersion string `json:"protocolVersion"`
		ServerInfo      struct {
			Name    string `json:"name"`
			Version string `json:"version"`
		} `json:"serverInfo"`
	}
	require.NoError(t, json.Unmarshal(resp.Result, &result))
	assert.Equal(t, 1, resp.ID)
	assert.NotEmpty(t, result.ProtocolVersion)
	assert.Equal(t, "pspec", result.ServerInfo.Name)
	assert.Equal(t, "test", result.ServerInfo.Version)
}

func TestRun_ToolsList(t *testing.T) {
	sendLine, _, cleanup := runServer(t, newTestServer())
	defer cleanup()

	resp := decode(t, sendLine(`{"jsonrpc":"2.0","id":2,"method":"tools/list"}`))
	var result struct {
		Tools []struct {
			Name        string          `json:"name"`
			InputSchema json.RawMessage `json:"inputSchema"`
		} `json:"tools"`
	}
	require.NoError(t, json.Unmarshal(resp.Result, &result))

	var names []string
	for _, tool := range result.Tools {
		names = append(names, tool.Name)
		assert.NotEmpty(t, tool.InputSchema, tool.Name)
	}
	assert.Equal(t, []string{"review_snippet", "list_rules", "explain_rule"}, names)
}

func TestRun_ToolsCall(t *testing.T) {
	sendLine, _, cleanup := runServer(t, newTestServer())
	defer cleanup()

	req := `{"jsonrpc":"2.0","id":3,"method":"tools/call","params":{"name":"review_snippet","arguments":{"code":"def f(x):\n    return eval(x)\n"}}}`
	resp := decode(t, sendLine(req))
	require.Nil(t, resp.Error)

	var call toolsCallResult
	require.NoError(t, json.Unmarshal(resp.Result, &call))
	require.False(t, call.IsError, "content: %+v", call.Content)
	require.Len(t, call.Content, 1)
	assert.Equal(t, "text", call.Content[0].Type)
	assert.Contains(t, call.Content[0].Text, "security.dangerous_eval")
	assert.Contains(t, call.Content[0].Text, `"run_id"`)
}

func TestRun_ToolsCallErrors(t *testing.T) {
	sendLine, _, cleanup := runServer(t, newTestServer())
	defer cleanup()

	tests := []struct {
		name string
		req  string
		want string
	}{
		{"unknown tool", `{"jsonrpc":"2.0","id":4,"method":"tools/call","params":{"name":"nope"}}`, "unknown tool: nope"},
		{"missing code", `{"jsonrpc":"2.0","id":5,"method":"tools/call","params":{"name":"review_snippet"}}`, "code is required"},
		{"unknown rule", `{"jsonrpc":"2.0","id":6,"method":"tools/call","params":{"name":"explain_rule","arguments":{"rule_id":"x.y"}}}`, "unknown rule: x.y"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := decode(t, sendLine(tt.req))
			var call toolsCallResult
			require.NoError(t, json.Unmarshal(resp.Result, &call))
			assert.True(t, call.IsError)
			require.Len(t, call.Content, 1)
			assert.Equal(t, tt.want, call.Content[0].Text)
		})
	}
}

func TestRun_InvalidParams(t *testing.T) {
	sendLine, _, cleanup := runServer(t, newTestServer())
	defer cleanup()

	resp := decode(t, sendLine(`{"jsonrpc":"2.0","id":7,"method":"tools/call","params":"oops"}`))
	require.NotNil(t, resp.Error)
	assert.Equal(t, -32602, resp.Error.Code)
}

func TestRun_ParseError(t *testing.T) {
	sendLine, _, cleanup := runServer(t, newTestServer())
	defer cleanup()

	resp := decode(t, sendLine(`{not json`))
	require.NotNil(t, resp.Error)
	assert.Equal(t, -32700, resp.Error.Code)
}

func TestRun_UnknownMethod(t *testing.T) {
	sendLine, _, cleanup := runServer(t, newTestServer())
	defer cleanup()

	resp := decode(t, sendLine(`{"jsonrpc":"2.0","id":8,"method":"nonexistent/method"}`))
	require.NotNil(t, resp.Error)
	assert.Equal(t, -32601, resp.Error.Code)
}

// A message without an id is a notification and gets no response.
func TestRun_Notification(t *testing.T) {
	s := newTestServer()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pr, pw := io.Pipe()
	sr, sw := io.Pipe()

	go func() { _ = s.Run(ctx, pr, sw) }()

	_, err := io.WriteString(pw, `{"jsonrpc":"2.0","method":"notifications/initialized"}`+"\n")
	require.NoError(t, err)

	readDone := make(chan []byte, 1)
	go func() {
		buf := make([]byte, 1024)
		n, _ := sr.Read(buf)
		readDone <- buf[:n]
	}()

	select {
	case data := <-readDone:
		t.Errorf("expected no response for notification, got: %s", data)
	case <-time.After(100 * time.Millisecond):
	}

	cancel()
	_ = pw.Close()
	_ = sr.Close()
}

func TestRun_ContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	pr, pw := io.Pipe()
	_, sw := io.Pipe()

	done := make(chan error, 1)
	go func() { done <- newTestServer().Run(ctx, pr, sw) }()

	cancel()
	_ = pw.Close()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Error("Run did not return after context cancel")
	}
}

func TestRun_EOFClean(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	pr, pw := io.Pipe()
	_, sw := io.Pipe()

	done := make(chan error, 1)
	go func() { done <- newTestServer().Run(ctx, pr, sw) }()

	_ = pw.Close()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Error("Run did not return after EOF")
	}
}

func TestRun_LongLine(t *testing.T) {
	sendLine, _, cleanup := runServer(t, newTestServer())
	defer cleanup()

	code := strings.Repeat("x = 1\\n", 12000)
	req := `{"jsonrpc":"2.0","id":9,"method":"tools/call","params":{"name":"review_snippet","arguments":{"code":"` + code + `","disable":["style","best_practice"]}}}`
	require.Greater(t, len(req), 64*1024)

	resp := decode(t, sendLine(req))
	var call toolsCallResult
	require.NoError(t, json.Unmarshal(resp.Result, &call))
	assert.False(t, call.IsError, "content: %+v", call.Content)
}

func TestRun_Ping(t *testing.T) {
	sendLine, _, cleanup := runServer(t, newTestServer())
	defer cleanup()

	resp := decode(t, sendLine(`{"jsonrpc":"2.0","id":10,"method":"ping"}`))
	assert.Nil(t, resp.Error)
	assert.JSONEq(t, `{}`, string(resp.Result))
}
