// Package tools declares the Maps MCP tools and binds them to an upstream
// client.
package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"maps-mcp/internal/apperr"
	"maps-mcp/internal/maps"
)

// ErrMethodNotFound is returned by Handle for methods the registry does not serve.
var ErrMethodNotFound = errors.New("method not found")

type handlerFunc func(ctx context.Context, args json.RawMessage) (any, error)

type definition struct {
	tool     *mcp.Tool
	resolved *jsonschema.Resolved
	handler  handlerFunc
}

// define builds a tool whose arguments are validated against schema and then
// decoded into In.
func define[In, Out any](name, description string, schema *jsonschema.Schema, call func(context.Context, In) (Out, error)) (*definition, error) {
	resolved, err := schema.Resolve(nil)
	if err != nil {
		return nil, fmt.Errorf("resolve %s input schema: %w", name, err)
	}
	return &definition{
		tool:     &mcp.Tool{Name: name, Description: description, InputSchema: schema},
		resolved: resolved,
		handler: func(ctx context.Context, args json.RawMessage) (any, error) {
			var in In
			if err := json.Unmarshal(args, &in); err != nil {
				return nil, apperr.Newf(apperr.Validation, name, "invalid arguments for %s: %v", name, err)
			}
			out, err := call(ctx, in)
			if err != nil {
				return nil, err
			}
			return out, nil
		},
	}, nil
}

// Registry is the fixed set of Maps tools bound to one API key.
type Registry struct {
	defs   []*definition
	byName map[string]*definition
}

// New builds the registry around client.
func New(client *maps.Client) (*Registry, error) {
	if client == nil || client.APIKey == "" {
		return nil, apperr.New(apperr.Configuration, "tools", "Google Maps API key is required")
	}
	defs, err := definitions(client)
	if err != nil {
		return nil, err
	}
	// Both transports list tools by name, matching the go-sdk server.
	slices.SortFunc(defs, func(a, b *definition) int {
		return strings.Compare(a.tool.Name, b.tool.Name)
	})
	r := &Registry{defs: defs, byName: make(map[string]*definition, len(defs))}
	for _, d := range defs {
		if _, dup := r.byName[d.tool.Name]; dup {
			return nil, fmt.Errorf("duplicate tool %q", d.tool.Name)
		}
		r.byName[d.tool.Name] = d
	}
	return r, nil
}

// List returns the tool declarations sorted by name.
func (r *Registry) List() []*mcp.Tool {
	out := make([]*mcp.Tool, 0, len(r.defs))
	for _, d := range r.defs {
		out = append(out, d.tool)
	}
	return out
}

// Invoke validates args against the tool schema and runs the tool. Schema
// failures are Validation errors and never reach the upstream.
func (r *Registry) Invoke(ctx context.Context, name string, args json.RawMessage) (any, error) {
	d, ok := r.byName[name]
	if !ok {
		return nil, apperr.Newf(apperr.Validation, "invoke", "unknown tool: %s", name)
	}
	args = bytes.TrimSpace(args)
	if len(args) == 0 || bytes.Equal(args, []byte("null")) {
		args = json.RawMessage(`{}`)
	}
	var instance any
	if err := json.Unmarshal(args, &instance); err != nil {
		return nil, apperr.Newf(apperr.Validation, name, "invalid arguments for %s: %v", name, err)
	}
	if err := d.resolved.Validate(instance); err != nil {
		return nil, apperr.Newf(apperr.Validation, name, "invalid arguments for %s: %v", name, err)
	}
	return d.handler(ctx, args)
}

// Call runs Invoke and wraps the outcome in the MCP tool result envelope.
// Upstream and empty-result failures become isError results carrying the
// message; validation and transport failures are returned as errors.
func (r *Registry) Call(ctx context.Context, name string, args json.RawMessage) (*mcp.CallToolResult, error) {
	res, err := r.Invoke(ctx, name, args)
	if err != nil {
		switch apperr.KindOf(err) {
		case apperr.Upstream, apperr.NoResults:
			return ErrorResult(err), nil
		default:
			return nil, err
		}
	}
	return Result(res)
}

// Result renders a shaped result as indented JSON text plus structured content.
func Result(res any) (*mcp.CallToolResult, error) {
	text, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode tool result: %w", err)
	}
	return &mcp.CallToolResult{
		Content:           []mcp.Content{&mcp.TextContent{Text: string(text)}},
		StructuredContent: res,
	}, nil
}

// ErrorResult renders a tool failure.
func ErrorResult(err error) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: err.Error()}},
		IsError: true,
	}
}

// Handle serves protocol methods other than tools/list and tools/call.
func (r *Registry) Handle(_ context.Context, method string, _ json.RawMessage) (any, error) {
	switch {
	case method == "ping":
		return struct{}{}, nil
	case strings.HasPrefix(method, "notifications/"):
		return nil, nil
	case method == "resources/list":
		return &mcp.ListResourcesResult{Resources: []*mcp.Resource{}}, nil
	case method == "resources/templates/list":
		return &mcp.ListResourceTemplatesResult{ResourceTemplates: []*mcp.ResourceTemplate{}}, nil
	case method == "prompts/list":
		return &mcp.ListPromptsResult{Prompts: []*mcp.Prompt{}}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrMethodNotFound, method)
	}
}

// Register adds every tool to an MCP server. Arguments are validated by the
// registry, not by the SDK.
func (r *Registry) Register(server *mcp.Server) {
	for _, d := range r.defs {
		name := d.tool.Name
		server.AddTool(d.tool, func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			var args json.RawMessage
			if req != nil && req.Params != nil {
				args = req.Params.Arguments
			}
			return r.Call(ctx, name, args)
		})
	}
}
