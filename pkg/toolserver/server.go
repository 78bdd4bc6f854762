package toolserver

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"github.com/xeipuuv/gojsonschema"
)

const protocolVersion = "2024-11-05"

// JSON-RPC error codes
const (
	codeParseError     = -32700
	codeMethodNotFound = -32601
	codeInvalidParams  = -32602
	codeToolError      = -32000
)

type rpcMessage struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      any             `json:"id,omitempty"`
	Method  string          `json:"method,omitempty"`
	Params  json.RawMessage `json:"params,omitempty"`
	Result  any             `json:"result,omitempty"`
	Error   *rpcError       `json:"error,omitempty"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// Server is a stdio MCP tool server: line-delimited JSON-RPC 2.0 on
// stdin/stdout, logs on stderr. It serves initialize, tools/list, and
// tools/call for a static registry of tools.
type Server struct {
	name    string
	version string
	logger  zerolog.Logger

	in  io.Reader
	out io.Writer

	outMu   sync.Mutex
	tools   []Tool
	byName  map[string]*Tool
	schemas map[string]*gojsonschema.Schema
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Server) { s.logger = logger }
}

// WithIO overrides the transport streams. Defaults are stdin/stdout.
func WithIO(in io.Reader, out io.Writer) Option {
	return func(s *Server) {
		s.in = in
		s.out = out
	}
}

// New creates a new tool server
func New(name, version string, opts ...Option) *Server {
	s := &Server{
		name:    name,
		version: version,
		logger:  zerolog.Nop(),
		in:      os.Stdin,
		out:     os.Stdout,
		byName:  make(map[string]*Tool),
		schemas: make(map[string]*gojsonschema.Schema),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register adds a tool to the registry. The registry is meant to be complete
// before Serve is called.
func (s *Server) Register(tool Tool) error {
	if tool.Name == "" {
		return fmt.Errorf("tool name is required")
	}
	if tool.Handler == nil {
		return fmt.Errorf("tool %s has no handler", tool.Name)
	}
	if _, exists := s.byName[tool.Name]; exists {
		return fmt.Errorf("tool already registered: %s", tool.Name)
	}

	if len(tool.InputSchema) > 0 {
		schema, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(tool.InputSchema))
		if err != nil {
			return fmt.Errorf("tool %s has invalid input schema: %w", tool.Name, err)
		}
		s.schemas[tool.Name] = schema
	}

	s.tools = append(s.tools, tool)
	s.byName[tool.Name] = &s.tools[len(s.tools)-1]
	return nil
}

// Serve processes requests until the input stream closes or the context is
// cancelled. A closed stdin is the normal shutdown signal from the client.
func (s *Server) Serve(ctx context.Context) error {
	s.logger.Info().Str("name", s.name).Str("version", s.version).Msg("Tool server started")

	scanner := bufio.NewScanner(s.in)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}

		line := scanner.Bytes()
		if len(strings.TrimSpace(string(line))) == 0 {
			continue
		}

		var msg rpcMessage
		if err := json.Unmarshal(line, &msg); err != nil {
			s.logger.Error().Err(err).Msg("Failed to parse request")
			s.writeError(nil, codeParseError, "parse error")
			continue
		}

		s.handleMessage(ctx, &msg)
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("transport read failed: %w", err)
	}

	s.logger.Info().Msg("Tool server stopped")
	return nil
}

func (s *Server) handleMessage(ctx context.Context, msg *rpcMessage) {
	s.logger.Debug().Str("method", msg.Method).Interface("id", msg.ID).Msg("Request received")

	// Notifications carry no id and expect no reply.
	if msg.ID == nil {
		return
	}

	switch msg.Method {
	case "initialize":
		s.writeResult(msg.ID, map[string]any{
			"protocolVersion": protocolVersion,
			"capabilities": map[string]any{
				"tools": map[string]any{},
			},
			"serverInfo": map[string]any{
				"name":    s.name,
				"version": s.version,
			},
		})
	case "tools/list":
		s.handleToolsList(msg)
	case "tools/call":
		s.handleToolsCall(ctx, msg)
	default:
		s.writeError(msg.ID, codeMethodNotFound, fmt.Sprintf("method not found: %s", msg.Method))
	}
}

func (s *Server) handleToolsList(msg *rpcMessage) {
	type toolInfo struct {
		Name        string          `json:"name"`
		Description string          `json:"description"`
		InputSchema json.RawMessage `json:"inputSchema"`
	}

	infos := make([]toolInfo, 0, len(s.tools))
	for _, t := range s.tools {
		schema := t.InputSchema
		if len(schema) == 0 {
			schema = json.RawMessage(`{"type":"object","properties":{}}`)
		}
		infos = append(infos, toolInfo{
			Name:        t.Name,
			Description: t.Description,
			InputSchema: schema,
		})
	}

	s.writeResult(msg.ID, map[string]any{"tools": infos})
}

func (s *Server) handleToolsCall(ctx context.Context, msg *rpcMessage) {
	var params struct {
		Name      string         `json:"name"`
		Arguments map[string]any `json:"arguments"`
	}
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		s.writeError(msg.ID, codeInvalidParams, "invalid tools/call params")
		return
	}
	if params.Arguments == nil {
		params.Arguments = map[string]any{}
	}

	tool, ok := s.byName[params.Name]
	if !ok {
		s.writeError(msg.ID, codeInvalidParams, fmt.Sprintf("unknown tool: %s", params.Name))
		return
	}

	if schema, ok := s.schemas[params.Name]; ok {
		result, err := schema.Validate(gojsonschema.NewGoLoader(params.Arguments))
		if err != nil {
			s.writeError(msg.ID, codeInvalidParams, fmt.Sprintf("argument validation failed: %v", err))
			return
		}
		if !result.Valid() {
			details := make([]string, 0, len(result.Errors()))
			for _, resultErr := range result.Errors() {
				details = append(details, resultErr.String())
			}
			s.writeError(msg.ID, codeInvalidParams, fmt.Sprintf("invalid arguments: %s", strings.Join(details, "; ")))
			return
		}
	}

	s.logger.Info().Str("tool", params.Name).Msg("Executing tool")
	value, err := tool.Handler(ctx, params.Arguments)
	if err != nil {
		s.logger.Warn().Str("tool", params.Name).Err(err).Msg("Tool handler failed")
		s.writeError(msg.ID, codeToolError, err.Error())
		return
	}

	var part map[string]any
	switch v := value.(type) {
	case nil:
		part = nil
	case string:
		part = map[string]any{"type": "text", "text": v}
	default:
		part = map[string]any{"type": "json", "data": v}
	}

	content := []map[string]any{}
	if part != nil {
		content = append(content, part)
	}
	s.writeResult(msg.ID, map[string]any{"content": content})
}

func (s *Server) writeResult(id any, result any) {
	s.write(&rpcMessage{JSONRPC: "2.0", ID: id, Result: result})
}

func (s *Server) writeError(id any, code int, message string) {
	s.write(&rpcMessage{JSONRPC: "2.0", ID: id, Error: &rpcError{Code: code, Message: message}})
}

func (s *Server) write(msg *rpcMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to marshal response")
		return
	}

	s.outMu.Lock()
	defer s.outMu.Unlock()
	if _, err := s.out.Write(append(data, '\n')); err != nil {
		s.logger.Error().Err(err).Msg("Failed to write response")
	}
}
