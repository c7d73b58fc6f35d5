package neutralipc

import (
	"encoding/binary"
	"fmt"
)

// Neutral IPC record, draft version 0.
//
// A record is a 12-byte header followed by two content blocks:
//
//	byte 0      reserved, always 0
//	byte 1      control (request action or response status)
//	byte 2      content format 1
//	bytes 3-6   content length 1, big endian
//	byte 7      content format 2
//	bytes 8-11  content length 2, big endian
//
// All text content is UTF-8.
const (
	headerLen    = 12
	reservedByte = 0
)

// Control bytes.
const (
	// CtrlParseTemplate requests that the server parse and render a template.
	CtrlParseTemplate byte = 10
	// CtrlStatusOK is the server's success status.
	CtrlStatusOK byte = 0
	// CtrlStatusKO is the server's failure status.
	CtrlStatusKO byte = 1
)

// Content format identifiers.
const (
	ContentJSON byte = 10
	ContentPath byte = 20
	ContentText byte = 30
	ContentBin  byte = 40
)

// recordHeader is the decoded fixed-length prefix of an IPC record.
type recordHeader struct {
	control byte
	format1 byte
	length1 uint32
	format2 byte
	length2 uint32
}

func encodeHeader(control, format1 byte, length1 uint32, format2 byte, length2 uint32) []byte {
	h := make([]byte, headerLen)
	h[0] = reservedByte
	h[1] = control
	h[2] = format1
	binary.BigEndian.PutUint32(h[3:7], length1)
	h[7] = format2
	binary.BigEndian.PutUint32(h[8:12], length2)
	return h
}

func encodeRecord(control, format1 byte, content1 []byte, format2 byte, content2 []byte) []byte {
	record := encodeHeader(control, format1, uint32(len(content1)), format2, uint32(len(content2)))
	record = append(record, content1...)
	record = append(record, content2...)
	return record
}

func decodeHeader(raw []byte) (recordHeader, error) {
	if len(raw) != headerLen {
		return recordHeader{}, newProtocolError("bad_header",
			fmt.Sprintf("record header must be %d bytes, got %d", headerLen, len(raw)))
	}
	return recordHeader{
		control: raw[1],
		format1: raw[2],
		length1: binary.BigEndian.Uint32(raw[3:7]),
		format2: raw[7],
		length2: binary.BigEndian.Uint32(raw[8:12]),
	}, nil
}
