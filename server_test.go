package neutralipc

import (
	"encoding/json"
	"fmt"
	"io"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"
)

// fakeServer is a minimal in-process stand-in for the Neutral IPC server:
// it speaks the record protocol on a loopback listener and delegates the
// reply to a handler.
type fakeServer struct {
	listener net.Listener
	handler  func(req fakeRequest) (control byte, result, output string)

	requests chan fakeRequest
}

type fakeRequest struct {
	control  byte
	format1  byte
	content1 []byte
	format2  byte
	content2 []byte
}

func startFakeServer(t *testing.T, handler func(req fakeRequest) (byte, string, string)) *fakeServer {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	srv := &fakeServer{
		listener: ln,
		handler:  handler,
		requests: make(chan fakeRequest, 16),
	}
	go srv.serve()
	t.Cleanup(func() { ln.Close() })
	return srv
}

func (s *fakeServer) serve() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			return
		}
		go s.handleConn(conn)
	}
}

func (s *fakeServer) handleConn(conn net.Conn) {
	defer conn.Close()

	rawHeader := make([]byte, headerLen)
	if _, err := io.ReadFull(conn, rawHeader); err != nil {
		return
	}
	header, err := decodeHeader(rawHeader)
	if err != nil {
		return
	}
	content1 := make([]byte, header.length1)
	if _, err := io.ReadFull(conn, content1); err != nil {
		return
	}
	content2 := make([]byte, header.length2)
	if _, err := io.ReadFull(conn, content2); err != nil {
		return
	}

	req := fakeRequest{header.control, header.format1, content1, header.format2, content2}
	select {
	case s.requests <- req:
	default:
	}

	control, result, output := s.handler(req)
	conn.Write(encodeRecord(control, ContentJSON, []byte(result), ContentText, []byte(output)))
}

// config returns client settings pointed at the fake server, with a small
// buffer so chunked reads are exercised.
func (s *fakeServer) config() Config {
	addr := s.listener.Addr().(*net.TCPAddr)
	return NewConfig(
		WithHost("127.0.0.1"),
		WithPort(addr.Port),
		WithTimeout(2*time.Second),
		WithBufferSize(64),
	)
}

func okResult() string {
	return `{"has_error":false,"status_code":"200","status_text":"OK","status_param":""}`
}

// renderingHandler imitates the engine's variable substitution for the
// {:;key:} form, resolving keys against the schema's "data" subtree. Enough
// behavior to exercise the client end to end.
func renderingHandler(req fakeRequest) (byte, string, string) {
	var schema map[string]any
	switch req.format1 {
	case ContentBin:
		if err := msgpack.Unmarshal(req.content1, &schema); err != nil {
			return CtrlStatusKO, `{"has_error":true,"status_code":"500","status_text":"Internal Server Error","status_param":"bad schema"}`, ""
		}
	default:
		if err := json.Unmarshal(req.content1, &schema); err != nil {
			return CtrlStatusKO, `{"has_error":true,"status_code":"500","status_text":"Internal Server Error","status_param":"bad schema"}`, ""
		}
	}

	out := string(req.content2)
	if data, ok := schema["data"].(map[string]any); ok {
		for key, value := range data {
			out = strings.ReplaceAll(out, "{:;"+key+":}", fmt.Sprint(value))
		}
	}
	return CtrlStatusOK, okResult(), out
}

// startRawServer hands each accepted connection to fn, for tests that need
// to misbehave below the record layer.
func startRawServer(t *testing.T, fn func(conn net.Conn)) net.Addr {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			go func() {
				defer conn.Close()
				fn(conn)
			}()
		}
	}()
	t.Cleanup(func() { ln.Close() })
	return ln.Addr()
}

func configFor(addr net.Addr, timeout time.Duration) Config {
	tcp := addr.(*net.TCPAddr)
	return NewConfig(
		WithHost("127.0.0.1"),
		WithPort(tcp.Port),
		WithTimeout(timeout),
		WithBufferSize(64),
	)
}
