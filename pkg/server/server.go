package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	"github.com/richard-senior/podds/internal/logger"
	"github.com/richard-senior/podds/pkg/protocol"
	"github.com/richard-senior/podds/pkg/tools"
	"github.com/richard-senior/podds/pkg/transport"
)

// ServerName and ServerVersion are reported to clients on initialize
const (
	ServerName    = "podds"
	ServerVersion = "1.0.0"
)

// HandlerFunc is a function that handles an MCP request
type HandlerFunc func(params any) (any, error)

// Server represents an MCP server
type Server struct {
	transport    transport.Transport
	handlers     map[string]HandlerFunc
	toolHandlers map[string]HandlerFunc
	tools        []protocol.Tool
	mu           sync.Mutex
}

// NewServer creates a server speaking over t with the protocol handlers registered
func NewServer(t transport.Transport) *Server {
	s := &Server{
		transport:    t,
		handlers:     make(map[string]HandlerFunc),
		toolHandlers: make(map[string]HandlerFunc),
		tools:        []protocol.Tool{},
	}
	s.handlers[string(protocol.MethodInitialize)] = s.handleInitialize
	s.handlers[string(protocol.MethodInitialized)] = s.handleInitialized
	s.handlers[string(protocol.MethodPing)] = s.handlePing
	s.handlers[string(protocol.MethodToolsList)] = s.handleToolsList
	s.handlers[string(protocol.MethodToolsCall)] = s.handleToolsCall
	return s
}

// RegisterTool registers a tool with the server
func (s *Server) RegisterTool(tool protocol.Tool, handler HandlerFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tools = append(s.tools, tool)
	s.toolHandlers[tool.Name] = handler
	logger.Info("Registered tool:", tool.Name)
}

// RegisterTools registers each tool under its prefixed name
func (s *Server) RegisterTools(regs []tools.Registration) {
	for _, r := range regs {
		tool := r.Tool
		tool.Name = tools.ToolPrefix + tool.Name
		s.RegisterTool(tool, r.Handler)
	}
}

// GetTools returns a copy of the registered tools
func (s *Server) GetTools() []protocol.Tool {
	s.mu.Lock()
	defer s.mu.Unlock()
	ret := make([]protocol.Tool, len(s.tools))
	copy(ret, s.tools)
	return ret
}

// Start processes requests until the transport closes or the process is signalled
func (s *Server) Start() error {
	logger.Info("Starting MCP server")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	errChan := make(chan error, 1)
	go func() {
		errChan <- s.ProcessRequests()
	}()

	select {
	case err := <-errChan:
		return err
	case sig := <-sigChan:
		logger.Info("Received signal:", sig)
		return nil
	}
}

// ProcessRequests reads and answers requests until the transport fails.
// A clean EOF from the client ends processing without error.
func (s *Server) ProcessRequests() error {
	for {
		req, err := s.transport.ReadRequest()
		if err != nil {
			if errors.Is(err, transport.ErrMalformedRequest) {
				resp := protocol.NewJsonRpcErrorResponse(protocol.ErrParse, err.Error(), nil, nil)
				if werr := s.transport.WriteResponse(resp); werr != nil {
					return werr
				}
				continue
			}
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}

		// nil means no response is required
		resp := s.HandleRequest(req)
		if resp == nil {
			continue
		}
		if err := s.transport.WriteResponse(resp); err != nil {
			return err
		}
	}
}

// HandleRequest processes a request and returns a response, or nil for notifications
func (s *Server) HandleRequest(req *protocol.JsonRpcRequest) *protocol.JsonRpcResponse {
	logger.Info(">> ", req.Method)

	if strings.HasPrefix(req.Method, "notifications/") || req.Method == string(protocol.MethodInitialized) {
		logger.Info("Received notification:", req.Method)
		return nil
	}

	s.mu.Lock()
	handler := s.handlers[req.Method]
	s.mu.Unlock()

	if handler == nil {
		if req.IsNotification() {
			return nil
		}
		return protocol.NewJsonRpcErrorResponse(protocol.ErrMethodNotFound,
			fmt.Sprintf("Method not found: %s", req.Method), nil, req.ID)
	}

	var params any
	if len(req.Params) > 0 {
		params = req.Params
	}

	result, err := handler(params)
	if req.IsNotification() {
		return nil
	}
	if err != nil {
		logger.Warn("Request failed:", req.Method, err)
		return protocol.NewJsonRpcErrorResponse(protocol.ErrToolExecutionFailed, err.Error(), nil, req.ID)
	}

	resp, err := protocol.NewJsonRpcResponse(result, req.ID)
	if err != nil {
		return protocol.NewJsonRpcErrorResponse(protocol.ErrInternal, "Failed to marshal result: "+err.Error(), nil, req.ID)
	}
	logger.Debug("Full response:", string(resp.Result))
	return resp
}

// handleToolsList handles the tools/list method
func (s *Server) handleToolsList(params any) (any, error) {
	logger.Info("Handling tools/list request")
	return protocol.ToolsResponse{Tools: s.GetTools()}, nil
}

// handlePing answers with an empty result
func (s *Server) handlePing(params any) (any, error) {
	return map[string]any{}, nil
}

// handleInitialize handles the initialize method
func (s *Server) handleInitialize(params any) (any, error) {
	logger.Info("Handling initialize request with", len(s.GetTools()), "tools registered")

	version := protocol.McpProtocolVersion
	if raw, ok := params.(json.RawMessage); ok {
		var init struct {
			ProtocolVersion string `json:"protocolVersion"`
		}
		if err := json.Unmarshal(raw, &init); err != nil {
			logger.Warn("Failed to parse initialize params:", err)
		} else if init.ProtocolVersion != "" {
			version = init.ProtocolVersion
		}
	}
	logger.Info("Final protocol version to use:", version)

	capabilities := map[string]any{}
	if len(s.GetTools()) > 0 {
		capabilities["tools"] = map[string]any{"listChanged": false}
	}

	return protocol.InitializeResult{
		ProtocolVersion: version,
		Capabilities:    capabilities,
		ServerInfo:      protocol.ServerInfo{Name: ServerName, Version: ServerVersion},
	}, nil
}

// handleInitialized handles the initialized notification which needs no response
func (s *Server) handleInitialized(params any) (any, error) {
	logger.Info("Handling initialized notification")
	return nil, nil
}

// handleToolsCall dispatches to the named tool and wraps its output as text content
func (s *Server) handleToolsCall(params any) (any, error) {
	raw, ok := params.(json.RawMessage)
	if !ok {
		return nil, fmt.Errorf("tools/call requires params")
	}

	var call protocol.ToolCallParams
	if err := json.Unmarshal(raw, &call); err != nil {
		return nil, fmt.Errorf("invalid tools/call parameters: %v", err)
	}
	logger.Info("Tool call requested for:", call.Name)

	// clients may call with or without the prefix
	s.mu.Lock()
	handler := s.toolHandlers[tools.ToolPrefix+tools.StripToolPrefix(call.Name)]
	if handler == nil {
		handler = s.toolHandlers[call.Name]
	}
	s.mu.Unlock()

	if handler == nil {
		return nil, fmt.Errorf("tool not found: %s", call.Name)
	}

	args := call.Arguments
	if args == nil {
		args = map[string]any{}
	}
	result, err := handler(args)
	if err != nil {
		return nil, fmt.Errorf("tool execution failed: %w", err)
	}
	return protocol.NewTextToolResult(result)
}
