package neutralipc

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorFormatting(t *testing.T) {
	err := newConnectionError("dial", "cannot reach IPC server at 10.0.0.1:4273", errors.New("connection refused"))

	assert.Equal(t, "[connection/dial] cannot reach IPC server at 10.0.0.1:4273: connection refused", err.Error())
}

func TestErrorUnwrap(t *testing.T) {
	cause := errors.New("boom")
	err := newSerializationError("json_encode", "schema not representable as JSON", cause)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, cause, err.Unwrap())
}

func TestErrorIsMatchesKindAndCode(t *testing.T) {
	err := fmt.Errorf("render failed: %w", newProtocolError("truncated", "short response"))

	assert.ErrorIs(t, err, &Error{Kind: KindProtocol, Code: "truncated"})
	assert.NotErrorIs(t, err, &Error{Kind: KindProtocol, Code: "bad_header"})
	assert.NotErrorIs(t, err, &Error{Kind: KindConnection, Code: "truncated"})
}

func TestIsKind(t *testing.T) {
	wrapped := fmt.Errorf("while rendering: %w", newRenderError("server_status", "server reported failure status 1"))

	assert.True(t, IsKind(wrapped, KindRender))
	assert.False(t, IsKind(wrapped, KindConnection))
	assert.False(t, IsKind(errors.New("plain"), KindRender))
	assert.False(t, IsKind(nil, KindRender))
}

func TestErrorKindsAreDistinguishable(t *testing.T) {
	kinds := map[Kind]*Error{
		KindConnection:    newConnectionError("dial", "x", nil),
		KindSerialization: newSerializationError("bad_fragment", "x", nil),
		KindProtocol:      newProtocolError("bad_header", "x"),
		KindRender:        newRenderError("server_status", "x"),
		KindConfig:        newConfigError("bad_port", "x"),
	}
	for kind, err := range kinds {
		require.True(t, IsKind(err, kind))
		for other := range kinds {
			if other != kind {
				assert.False(t, IsKind(err, other))
			}
		}
	}
}
