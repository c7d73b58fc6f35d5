package neutralipc

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"time"
	"unicode/utf8"
)

// ipcClient performs one request/response exchange with the IPC server.
// The protocol is one-shot: a fresh connection per round trip, closed once
// the reply has been read.
type ipcClient struct {
	cfg    Config
	logger *slog.Logger
}

type ipcResponse struct {
	control  byte
	content1 string
	content2 string
}

func (c *ipcClient) roundTrip(ctx context.Context, control, format1 byte, content1 []byte, format2 byte, content2 []byte) (*ipcResponse, error) {
	dialer := net.Dialer{Timeout: c.cfg.Timeout}
	conn, err := dialer.DialContext(ctx, "tcp", c.cfg.addr())
	if err != nil {
		return nil, newConnectionError("dial",
			fmt.Sprintf("cannot reach IPC server at %s", c.cfg.addr()), err)
	}
	defer conn.Close()

	deadline := time.Now().Add(c.cfg.Timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := conn.SetDeadline(deadline); err != nil {
		return nil, newConnectionError("deadline", "cannot set connection deadline", err)
	}

	request := encodeRecord(control, format1, content1, format2, content2)
	c.logger.Debug("sending IPC request",
		"addr", c.cfg.addr(), "bytes", len(request), "format1", format1, "format2", format2)
	if _, err := conn.Write(request); err != nil {
		return nil, newConnectionError("write", "cannot send request", err)
	}

	rawHeader := make([]byte, headerLen)
	if _, err := io.ReadFull(conn, rawHeader); err != nil {
		return nil, responseReadError(err)
	}
	header, err := decodeHeader(rawHeader)
	if err != nil {
		return nil, err
	}

	body1, err := c.readContent(conn, int(header.length1))
	if err != nil {
		return nil, err
	}
	body2, err := c.readContent(conn, int(header.length2))
	if err != nil {
		return nil, err
	}

	c.logger.Debug("received IPC response",
		"control", header.control, "result_bytes", len(body1), "output_bytes", len(body2))
	return &ipcResponse{control: header.control, content1: body1, content2: body2}, nil
}

// readContent reads exactly length bytes in chunks no larger than the
// configured buffer size, then validates the text as UTF-8.
func (c *ipcClient) readContent(conn net.Conn, length int) (string, error) {
	if length == 0 {
		return "", nil
	}

	buf := make([]byte, 0, length)
	chunk := make([]byte, min(c.cfg.BufferSize, length))
	remaining := length
	for remaining > 0 {
		n, err := conn.Read(chunk[:min(len(chunk), remaining)])
		if n > 0 {
			buf = append(buf, chunk[:n]...)
			remaining -= n
		}
		if err != nil {
			if remaining == 0 {
				break
			}
			return "", responseReadError(err)
		}
	}

	if !utf8.Valid(buf) {
		return "", newProtocolError("bad_utf8", "response content is not valid UTF-8")
	}
	return string(buf), nil
}

// responseReadError classifies a failure while reading the reply. A close
// mid-response is a truncated response, a protocol violation; everything
// else (timeouts, resets) is a connection failure.
func responseReadError(err error) *Error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return newProtocolError("truncated", "connection closed before a complete response arrived")
	}
	return newConnectionError("read", "cannot read response", err)
}

// Ping reports whether the IPC server at cfg is reachable and answering.
// It sends a minimal valid request with a 1-second timeout and succeeds if
// a complete response comes back.
func Ping(cfg Config) bool {
	probe := cfg
	probe.Timeout = time.Second
	client := &ipcClient{cfg: probe, logger: discardLogger()}
	_, err := client.roundTrip(context.Background(),
		CtrlParseTemplate, ContentJSON, []byte("{}"), ContentText, nil)
	return err == nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
