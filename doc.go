// Package neutralipc is a Go client for the Neutral TS template engine's
// IPC server. Template parsing and evaluation happen in the external server
// process; this package opens a TCP connection, ships a template reference
// and a data schema, and returns the rendered output together with the
// status metadata the engine reports.
//
// Basic usage:
//
//	tpl, err := neutralipc.FromSource("Hello {:;text:}!", neutralipc.Schema{
//		"data": map[string]any{"text": "World"},
//	})
//	if err != nil {
//		// schema was not encodable
//	}
//	result, err := tpl.Render(ctx)
//	if err != nil {
//		// connection, protocol, or server-side failure
//	}
//	fmt.Println(result.Output) // "Hello World!"
//
// Statuses the engine reports for an otherwise successful render (for
// example a template that exits with 404) are not errors: they arrive in
// RenderResult and callers branch on StatusCode. Only a failure status from
// the server itself produces a KindRender error, and even then the returned
// RenderResult carries the diagnostic fields.
//
// Connection settings default to the server's own conventions (127.0.0.1:4273,
// 10s timeout, 8KiB buffer) and can be loaded from /etc/neutral-ipc-cfg.json
// via LoadConfig or set explicitly with NewConfig. A Template instance is not
// safe for concurrent use; each render performs one blocking round trip on a
// fresh connection.
package neutralipc
