package processor

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/richard-senior/podds/internal/logger"
	"github.com/richard-senior/podds/pkg/tools"
)

// ToolRequest is a single tool invocation read by the CLI
type ToolRequest struct {
	Tool      string         `json:"tool"`
	Arguments map[string]any `json:"arguments,omitempty"`
	RequestID string         `json:"requestId,omitempty"`
}

// ToolResponse is the CLI output for a successful invocation
type ToolResponse struct {
	RequestID string `json:"requestId,omitempty"`
	Tool      string `json:"tool"`
	Result    any    `json:"result"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	RequestID string `json:"requestId,omitempty"`
	Error     struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Processor runs one-shot tool requests against a set of registered tools
type Processor struct {
	handlers map[string]func(params any) (any, error)
	names    []string
}

// NewProcessor indexes the tools by their unprefixed name
func NewProcessor(regs []tools.Registration) *Processor {
	p := &Processor{handlers: make(map[string]func(params any) (any, error))}
	for _, r := range regs {
		p.handlers[r.Tool.Name] = r.Handler
		p.names = append(p.names, r.Tool.Name)
	}
	return p
}

// createErrorResponse creates an error response
func createErrorResponse(code, message, requestID string) ([]byte, error) {
	var response ErrorResponse
	response.RequestID = requestID
	response.Error.Code = code
	response.Error.Message = message
	return json.MarshalIndent(response, "", "  ")
}

// ProcessRequest runs the tool named in a JSON ToolRequest and returns the JSON output.
// Tool failures are reported in the output document, not as a returned error.
func (p *Processor) ProcessRequest(input []byte) ([]byte, error) {
	var request ToolRequest
	if err := json.Unmarshal(input, &request); err != nil {
		logger.Error("Failed to parse input JSON", err)
		return createErrorResponse("invalid_request", fmt.Sprintf("Invalid JSON: %v", err), "")
	}
	return p.Run(request)
}

// Run executes a parsed request
func (p *Processor) Run(request ToolRequest) ([]byte, error) {
	name := tools.StripToolPrefix(request.Tool)
	logger.Info("Processing request", name, request.RequestID)

	handler, ok := p.handlers[name]
	if !ok {
		return createErrorResponse("unknown_tool",
			fmt.Sprintf("Unknown tool %q, expected one of: %s", request.Tool, strings.Join(p.names, ", ")),
			request.RequestID)
	}

	args := request.Arguments
	if args == nil {
		args = map[string]any{}
	}
	result, err := handler(args)
	if err != nil {
		logger.Warn("Tool failed", name, err)
		return createErrorResponse("tool_error", err.Error(), request.RequestID)
	}

	jsonResult, err := json.MarshalIndent(ToolResponse{RequestID: request.RequestID, Tool: name, Result: result}, "", "  ")
	if err != nil {
		logger.Error("Failed to marshal response to JSON", err)
		return createErrorResponse("internal_error", "Failed to create response", request.RequestID)
	}
	return jsonResult, nil
}

// ParseArgs builds a request from command line words: a tool name followed by key=value pairs.
// Values stay strings; the tools coerce them.
func ParseArgs(args []string, requestID string) (ToolRequest, error) {
	if len(args) == 0 {
		return ToolRequest{}, fmt.Errorf("no tool given")
	}
	request := ToolRequest{Tool: args[0], Arguments: map[string]any{}, RequestID: requestID}
	for _, arg := range args[1:] {
		key, value, ok := strings.Cut(arg, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return ToolRequest{}, fmt.Errorf("argument %q is not key=value", arg)
		}
		request.Arguments[key] = value
	}
	return request, nil
}
