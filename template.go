package neutralipc

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
)

// Template is the client-facing handle for one template plus its schema.
// It may be rendered repeatedly, with schema merges in between. Not safe
// for concurrent use.
type Template struct {
	reference string
	refType   byte // ContentPath or ContentText
	schema    Schema
	encoding  Encoding
	cfg       Config
	logger    *slog.Logger
	last      *RenderResult
}

// RenderResult is the outcome of one render round trip: the rendered output
// plus the status fields the engine reports. Statuses like "404" or "301"
// can accompany a successful render; callers branch on StatusCode rather
// than on errors for those.
type RenderResult struct {
	Output      string
	StatusCode  string
	StatusText  string
	StatusParam string
	HasError    bool
}

// Option configures a Template at construction.
type Option func(*Template)

// WithConfig sets the connection configuration. Defaults to DefaultConfig.
func WithConfig(cfg Config) Option {
	return func(t *Template) { t.cfg = cfg }
}

// WithEncoding selects the schema wire encoding. Defaults to EncodingJSON.
func WithEncoding(enc Encoding) Option {
	return func(t *Template) { t.encoding = enc }
}

// WithLogger sets the logger for connection-level debug output. Defaults to
// a discard logger.
func WithLogger(logger *slog.Logger) Option {
	return func(t *Template) {
		if logger != nil {
			t.logger = logger
		}
	}
}

// New returns an empty file-path template with an empty schema.
func New(opts ...Option) *Template {
	t := &Template{
		refType:  ContentPath,
		schema:   Schema{},
		encoding: EncodingJSON,
		cfg:      DefaultConfig(),
		logger:   discardLogger(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// FromSource builds a Template from inline template source. The schema may
// be a Schema, map[string]any, or a JSON object as string or []byte.
func FromSource(src string, schema any, opts ...Option) (*Template, error) {
	t := New(opts...)
	t.SetSource(src)
	if err := t.MergeSchema(schema); err != nil {
		return nil, err
	}
	return t, nil
}

// FromFile builds a Template referring to a template file by path. The path
// is resolved by the server, not by this client.
func FromFile(path string, schema any, opts ...Option) (*Template, error) {
	t := New(opts...)
	t.SetPath(path)
	if err := t.MergeSchema(schema); err != nil {
		return nil, err
	}
	return t, nil
}

// SetSource switches the template reference to inline source.
func (t *Template) SetSource(src string) {
	t.refType = ContentText
	t.reference = src
}

// SetPath switches the template reference to a server-side file path.
func (t *Template) SetPath(path string) {
	t.refType = ContentPath
	t.reference = path
}

// MergeSchema deep-merges a fragment into the template's schema. Merge
// order is significant: nested mappings combine key by key, and any other
// conflict resolves in favor of the newest fragment.
func (t *Template) MergeSchema(fragment any) error {
	frag, err := normalizeFragment(fragment)
	if err != nil {
		return err
	}
	deepMerge(t.schema, frag)
	return nil
}

// Schema returns the template's current schema.
func (t *Template) Schema() Schema {
	return t.schema
}

// Render performs one blocking round trip against the IPC server and
// returns the rendered output with status metadata.
//
// A KindRender error means the server itself reported failure; the returned
// RenderResult is still populated with whatever diagnostics the server
// sent. Engine-level statuses on a successful render (404, 301, ...) are
// not errors.
func (t *Template) Render(ctx context.Context) (*RenderResult, error) {
	payload, err := encodeSchema(t.schema, t.encoding)
	if err != nil {
		return nil, err
	}

	client := &ipcClient{cfg: t.cfg, logger: t.logger}
	resp, err := client.roundTrip(ctx,
		CtrlParseTemplate, t.encoding.contentFormat(), payload, t.refType, []byte(t.reference))
	if err != nil {
		return nil, err
	}

	result, err := decodeResult(resp)
	if err != nil {
		return nil, err
	}
	t.last = result

	if resp.control != CtrlStatusOK {
		return result, newRenderError("server_status",
			fmt.Sprintf("server reported failure status %d", resp.control))
	}
	return result, nil
}

// StatusCode returns the status code from the last render, or "".
func (t *Template) StatusCode() string {
	if t.last == nil {
		return ""
	}
	return t.last.StatusCode
}

// StatusText returns the status text from the last render, or "".
func (t *Template) StatusText() string {
	if t.last == nil {
		return ""
	}
	return t.last.StatusText
}

// StatusParam returns the status parameter from the last render. It is
// empty unless an error occurred, in which case it may carry detail such as
// a redirect target.
func (t *Template) StatusParam() string {
	if t.last == nil {
		return ""
	}
	return t.last.StatusParam
}

// HasError reports whether the last render carried an engine error.
func (t *Template) HasError() bool {
	return t.last != nil && t.last.HasError
}

// Result returns the last render's result, or nil before the first render.
func (t *Template) Result() *RenderResult {
	return t.last
}

// decodeResult maps the wire response to a RenderResult. Content block 1 is
// the engine's JSON result object, content block 2 the rendered output.
func decodeResult(resp *ipcResponse) (*RenderResult, error) {
	var meta struct {
		HasError    bool   `json:"has_error"`
		StatusCode  string `json:"status_code"`
		StatusText  string `json:"status_text"`
		StatusParam string `json:"status_param"`
	}
	if resp.content1 != "" {
		if err := json.Unmarshal([]byte(resp.content1), &meta); err != nil {
			return nil, newProtocolError("bad_result", "result metadata is not valid JSON")
		}
	}
	return &RenderResult{
		Output:      resp.content2,
		StatusCode:  meta.StatusCode,
		StatusText:  meta.StatusText,
		StatusParam: meta.StatusParam,
		HasError:    meta.HasError || resp.control != CtrlStatusOK,
	}, nil
}
