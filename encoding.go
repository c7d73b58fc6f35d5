package neutralipc

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/vmihailenco/msgpack/v5"
)

// Encoding selects how the schema travels on the wire.
type Encoding int

const (
	// EncodingJSON sends the schema as a JSON text structure.
	EncodingJSON Encoding = iota
	// EncodingMsgpack sends the schema as a compact binary map encoding.
	EncodingMsgpack
)

// String returns the encoding's canonical name.
func (e Encoding) String() string {
	if e == EncodingMsgpack {
		return "msgpack"
	}
	return "json"
}

// ParseEncoding maps a user-supplied name to an Encoding.
func ParseEncoding(name string) (Encoding, error) {
	switch strings.ToLower(name) {
	case "json":
		return EncodingJSON, nil
	case "msgpack", "binary":
		return EncodingMsgpack, nil
	}
	return 0, newSerializationError("unknown_encoding",
		fmt.Sprintf("unknown schema encoding %q (want json or msgpack)", name), nil)
}

// contentFormat is the protocol format byte for the encoding.
func (e Encoding) contentFormat() byte {
	if e == EncodingMsgpack {
		return ContentBin
	}
	return ContentJSON
}

func encodeSchema(schema Schema, enc Encoding) ([]byte, error) {
	switch enc {
	case EncodingMsgpack:
		raw, err := msgpack.Marshal(map[string]any(schema))
		if err != nil {
			return nil, newSerializationError("msgpack_encode", "schema not representable as msgpack", err)
		}
		return raw, nil
	default:
		raw, err := json.Marshal(schema)
		if err != nil {
			return nil, newSerializationError("json_encode", "schema not representable as JSON", err)
		}
		return raw, nil
	}
}
