package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/xeipuuv/gojsonschema"
)

// DefaultCallTimeout is the call-scoped deadline applied when a tool call
// carries no more specific timeout (section 4.3).
const DefaultCallTimeout = 60 * time.Second

// ContentKind discriminates the variants of ContentItem.
type ContentKind string

const (
	ContentText     ContentKind = "text"
	ContentImage    ContentKind = "image"
	ContentResource ContentKind = "resource"
)

// ContentItem is one element of a tool call result's content sequence. Only
// the fields relevant to Kind are populated on the wire thanks to omitempty.
type ContentItem struct {
	Type     ContentKind `json:"type"`
	Text     string      `json:"text,omitempty"`
	Data     string      `json:"data,omitempty"`
	MimeType string      `json:"mimeType,omitempty"`
	URI      string      `json:"uri,omitempty"`
	Blob     string      `json:"blob,omitempty"`
}

// TextContent builds a Text content item.
func TextContent(text string) ContentItem { return ContentItem{Type: ContentText, Text: text} }

// ImageContent builds an Image content item; data is base64-encoded.
func ImageContent(dataB64, mimeType string) ContentItem {
	return ContentItem{Type: ContentImage, Data: dataB64, MimeType: mimeType}
}

// ResourceContent builds a Resource content item carrying a base64 blob.
func ResourceContent(uri, mimeType, blobB64 string) ContentItem {
	return ContentItem{Type: ContentResource, URI: uri, MimeType: mimeType, Blob: blobB64}
}

// CallToolResult is the outcome of a tools/call dispatch: an ordered content
// sequence plus a tool-level (not protocol-level) success/failure flag.
type CallToolResult struct {
	Content []ContentItem `json:"content"`
	IsError bool          `json:"isError"`
}

// ErrorResult wraps a single human-readable failure message as a tool-level
// error result, the shape every handler-signaled failure takes.
func ErrorResult(format string, args ...interface{}) CallToolResult {
	return CallToolResult{IsError: true, Content: []ContentItem{TextContent(fmt.Sprintf(format, args...))}}
}

// OKResult wraps one or more content items as a successful tool result.
func OKResult(items ...ContentItem) CallToolResult {
	return CallToolResult{Content: items, IsError: false}
}

// Handler is the typed implementation behind a tool descriptor. ctx carries
// the call-scoped timeout; a returned error becomes a tool-level
// is_error:true result, never a protocol error. A panic inside Handler is
// recovered by the dispatcher and surfaced as InternalError instead.
type Handler func(ctx context.Context, args json.RawMessage) (CallToolResult, error)

// Descriptor describes one registered tool, matching the table in section 4.3.
type Descriptor struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	InputSchema json.RawMessage `json:"inputSchema"`
	handler     Handler
	schema      *gojsonschema.Schema
}

// ListToolsResult is the payload of tools/list.
type ListToolsResult struct {
	Tools []Descriptor `json:"tools"`
}

// Registry holds the immutable-after-startup set of registered tools (C3).
// Registration happens once during startup wiring; Dispatch/List/Lookup are
// lock-free reads thereafter, matching the immutable-registry resource
// contract in section 5.
type Registry struct {
	order   []string
	byName  map[string]*Descriptor
}

// NewRegistry creates an empty tool registry.
func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]*Descriptor)}
}

// Register adds a tool. Names must be unique and every descriptor must name
// a handler; both are invariants of the Tool Descriptor data model.
func (r *Registry) Register(name, description string, inputSchema json.RawMessage, handler Handler) error {
	if name == "" {
		return fmt.Errorf("tool name cannot be empty")
	}
	if handler == nil {
		return fmt.Errorf("tool %q: handler cannot be nil", name)
	}
	if _, exists := r.byName[name]; exists {
		return fmt.Errorf("tool %q: already registered", name)
	}

	var schema *gojsonschema.Schema
	if len(inputSchema) > 0 {
		s, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(inputSchema))
		if err != nil {
			return fmt.Errorf("tool %q: invalid input schema: %w", name, err)
		}
		schema = s
	}

	r.byName[name] = &Descriptor{
		Name:        name,
		Description: description,
		InputSchema: inputSchema,
		handler:     handler,
		schema:      schema,
	}
	r.order = append(r.order, name)
	return nil
}

// List returns all descriptors sorted by name for a stable, deterministic
// tools/list payload.
func (r *Registry) List() ListToolsResult {
	names := make([]string, len(r.order))
	copy(names, r.order)
	sort.Strings(names)

	out := make([]Descriptor, 0, len(names))
	for _, n := range names {
		d := r.byName[n]
		out = append(out, Descriptor{Name: d.Name, Description: d.Description, InputSchema: d.InputSchema})
	}
	return ListToolsResult{Tools: out}
}

// Lookup returns the descriptor for a name, or false if unregistered.
func (r *Registry) Lookup(name string) (*Descriptor, bool) {
	d, ok := r.byName[name]
	return d, ok
}

// CallParams is the payload of tools/call.
type CallParams struct {
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
}

// Dispatch resolves name, validates args, and invokes the handler under a
// call-scoped timeout, implementing the four-step contract in section 4.3.
// The returned *Error, when non-nil, is a protocol-level error (method not
// found / invalid params / internal); otherwise the CallToolResult carries
// the tool-level outcome (including handler-signaled failure).
func (r *Registry) Dispatch(ctx context.Context, params CallParams, timeout time.Duration) (CallToolResult, *Error) {
	desc, ok := r.byName[params.Name]
	if !ok {
		return CallToolResult{}, NewError(ErrCodeMethodNotFound, fmt.Sprintf("unknown tool: %s", params.Name), nil)
	}

	if desc.schema != nil {
		args := params.Arguments
		if len(args) == 0 {
			args = json.RawMessage("{}")
		}
		result, err := desc.schema.Validate(gojsonschema.NewBytesLoader(args))
		if err != nil {
			return CallToolResult{}, NewError(ErrCodeInvalidParams, fmt.Sprintf("invalid params: %v", err), nil)
		}
		if !result.Valid() {
			msgs := make([]string, 0, len(result.Errors()))
			for _, e := range result.Errors() {
				msgs = append(msgs, e.String())
			}
			return CallToolResult{}, NewError(ErrCodeInvalidParams, strings.Join(msgs, "; "), nil)
		}
	}

	if timeout <= 0 {
		timeout = DefaultCallTimeout
	}
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	return r.invoke(callCtx, desc, params.Arguments)
}

// invoke runs the handler, converting a panic into InternalError and a
// context deadline into a tool-level timeout result rather than a hang.
func (r *Registry) invoke(ctx context.Context, desc *Descriptor, args json.RawMessage) (result CallToolResult, rpcErr *Error) {
	type outcome struct {
		result   CallToolResult
		err      error
		panicked bool
	}
	done := make(chan outcome, 1)

	go func() {
		defer func() {
			if p := recover(); p != nil {
				done <- outcome{err: fmt.Errorf("panic: %v", p), panicked: true}
			}
		}()
		res, err := desc.handler(ctx, args)
		done <- outcome{result: res, err: err}
	}()

	select {
	case <-ctx.Done():
		return ErrorResult("tool %q timed out", desc.Name), nil
	case o := <-done:
		if o.panicked {
			return CallToolResult{}, NewError(ErrCodeInternal, "internal error", nil)
		}
		if o.err != nil {
			return ErrorResult(o.err.Error()), nil
		}
		return o.result, nil
	}
}
