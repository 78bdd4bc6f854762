package mcpclient

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"
	"time"

	"github.com/reagent-ai/reagent/pkg/toolregistry"
	"github.com/rs/zerolog"
)

const protocolVersion = "2024-11-05"

// ErrNotConnected is returned when a request is attempted before the session
// handshake completed or after Close.
var ErrNotConnected = errors.New("mcp session not initialized")

// ErrProtocol is returned when the server's capability listing is malformed.
var ErrProtocol = errors.New("malformed mcp capability listing")

// ToolExecutionError wraps any failure while invoking a remote tool: a server
// rejection, a broken transport, or an uninitialized session.
type ToolExecutionError struct {
	Tool string
	Err  error
}

func (e *ToolExecutionError) Error() string {
	return fmt.Sprintf("tool '%s' invocation failed: %v", e.Tool, e.Err)
}

func (e *ToolExecutionError) Unwrap() error {
	return e.Err
}

// Kind returns the error kind name used in corrective prompts.
func (e *ToolExecutionError) Kind() string {
	return "ToolExecutionError"
}

// JSON-RPC messages
type rpcRequest struct {
	JSONRPC string      `json:"jsonrpc"`
	Method  string      `json:"method"`
	Params  interface{} `json:"params,omitempty"`
	ID      interface{} `json:"id,omitempty"`
}

type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *rpcError       `json:"error,omitempty"`
	ID      interface{}     `json:"id"`
}

type rpcError struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// Client owns one stdio session to an MCP tool server for the lifetime of a
// run. The server is spawned as a subprocess and spoken to over line-delimited
// JSON-RPC on its stdin/stdout.
type Client struct {
	logger  zerolog.Logger
	timeout time.Duration

	mu      sync.Mutex
	proc    *exec.Cmd
	stdin   io.WriteCloser
	id      int
	pending map[int]chan *rpcResponse
	closed  bool
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the client logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// WithTimeout sets the per-request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) { c.timeout = timeout }
}

// Dial spawns the tool server subprocess, wires its stdio, and performs the
// initialize handshake. A handshake failure tears the process down and is
// fatal to the run.
func Dial(ctx context.Context, command string, args []string, opts ...Option) (*Client, error) {
	c := &Client{
		logger:  zerolog.Nop(),
		timeout: 30 * time.Second,
		pending: make(map[int]chan *rpcResponse),
	}
	for _, opt := range opts {
		opt(c)
	}

	cmd := exec.CommandContext(ctx, command, args...)
	cmd.Stderr = os.Stderr

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to open server stdin: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to open server stdout: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start mcp server: %w", err)
	}

	c.proc = cmd
	c.stdin = stdin
	go c.listen(bufio.NewScanner(stdout))

	if err := c.initialize(ctx); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("mcp handshake failed: %w", err)
	}

	c.logger.Debug().Str("command", command).Msg("MCP session established")
	return c, nil
}

// listen reads responses off the server's stdout and delivers them to waiting
// callers by request id.
func (c *Client) listen(scanner *bufio.Scanner) {
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var resp rpcResponse
		if err := json.Unmarshal(line, &resp); err != nil {
			c.logger.Error().Err(err).Msg("Failed to unmarshal MCP response")
			continue
		}

		if id, ok := resp.ID.(float64); ok {
			c.mu.Lock()
			ch, exists := c.pending[int(id)]
			if exists {
				delete(c.pending, int(id))
				ch <- &resp
			}
			c.mu.Unlock()
		}
	}

	// Transport gone. Unblock anyone still waiting.
	c.mu.Lock()
	for id, ch := range c.pending {
		delete(c.pending, id)
		ch <- nil
	}
	c.mu.Unlock()
}

func (c *Client) initialize(ctx context.Context) error {
	params := map[string]interface{}{
		"protocolVersion": protocolVersion,
		"capabilities":    map[string]interface{}{},
		"clientInfo": map[string]interface{}{
			"name":    "reagent",
			"version": "0.1.0",
		},
	}
	_, err := c.call(ctx, "initialize", params)
	return err
}

func (c *Client) call(ctx context.Context, method string, params interface{}) (json.RawMessage, error) {
	c.mu.Lock()
	if c.closed || c.stdin == nil {
		c.mu.Unlock()
		return nil, ErrNotConnected
	}
	c.id++
	id := c.id
	ch := make(chan *rpcResponse, 1)
	c.pending[id] = ch
	stdin := c.stdin
	c.mu.Unlock()

	req := rpcRequest{
		JSONRPC: "2.0",
		Method:  method,
		Params:  params,
		ID:      id,
	}
	data, err := json.Marshal(req)
	if err != nil {
		c.dropPending(id)
		return nil, err
	}

	if _, err := io.WriteString(stdin, string(data)+"\n"); err != nil {
		c.dropPending(id)
		return nil, fmt.Errorf("mcp transport write failed: %w", err)
	}

	select {
	case resp := <-ch:
		if resp == nil {
			return nil, fmt.Errorf("mcp transport closed")
		}
		if resp.Error != nil {
			return nil, fmt.Errorf("mcp server error (%d): %s", resp.Error.Code, resp.Error.Message)
		}
		return resp.Result, nil
	case <-ctx.Done():
		c.dropPending(id)
		return nil, ctx.Err()
	case <-time.After(c.timeout):
		c.dropPending(id)
		return nil, fmt.Errorf("mcp request timeout for method %s", method)
	}
}

func (c *Client) dropPending(id int) {
	c.mu.Lock()
	delete(c.pending, id)
	c.mu.Unlock()
}

// Discover queries the server's tool listing once and returns the advertised
// descriptors. A tool with an empty name fails with ErrProtocol.
func (c *Client) Discover(ctx context.Context) ([]toolregistry.Descriptor, error) {
	raw, err := c.call(ctx, "tools/list", nil)
	if err != nil {
		return nil, fmt.Errorf("tool discovery failed: %w", err)
	}

	var listResult struct {
		Tools []struct {
			Name        string          `json:"name"`
			Description string          `json:"description"`
			InputSchema json.RawMessage `json:"inputSchema"`
		} `json:"tools"`
	}
	if err := json.Unmarshal(raw, &listResult); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProtocol, err)
	}

	descriptors := make([]toolregistry.Descriptor, 0, len(listResult.Tools))
	for _, t := range listResult.Tools {
		if t.Name == "" {
			return nil, fmt.Errorf("%w: tool with empty name", ErrProtocol)
		}
		descriptors = append(descriptors, toolregistry.Descriptor{
			Name:        t.Name,
			Description: t.Description,
			InputSchema: t.InputSchema,
		})
	}

	c.logger.Debug().Int("tools", len(descriptors)).Msg("Discovered MCP tools")
	return descriptors, nil
}

// Invoke sends a tool call and blocks until the server responds or the
// transport errors. The raw result is normalized into a single canonical
// JSON-like value; see normalizeResult.
func (c *Client) Invoke(ctx context.Context, name string, arguments map[string]any) (any, error) {
	params := map[string]interface{}{
		"name":      name,
		"arguments": arguments,
	}

	raw, err := c.call(ctx, "tools/call", params)
	if err != nil {
		return nil, &ToolExecutionError{Tool: name, Err: err}
	}

	value, err := normalizeResult(raw)
	if err != nil {
		return nil, &ToolExecutionError{Tool: name, Err: err}
	}
	return value, nil
}

// Close tears the session down: session shutdown (stdin EOF) before transport
// close (process exit). Safe to call more than once and on every exit path.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true

	var firstErr error
	if c.stdin != nil {
		if err := c.stdin.Close(); err != nil {
			firstErr = err
		}
	}

	if c.proc != nil && c.proc.Process != nil {
		done := make(chan error, 1)
		go func() { done <- c.proc.Wait() }()
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			_ = c.proc.Process.Kill()
			<-done
		}
	}

	c.logger.Debug().Msg("MCP session closed")
	return firstErr
}
