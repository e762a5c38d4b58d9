package protocol

import (
	"bytes"
	"compress/zlib"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"unicode/utf8"
)

// headerLength is the fixed width of the ASCII decimal length prefix.
const headerLength = 10

// compressionLevel is the zlib level the spec mandates for every frame.
const compressionLevel = 2

// EncodeFrame marshals v to JSON, zlib-compresses it at compressionLevel,
// and prepends a zero-padded 10-digit decimal length of the compressed
// body.
func EncodeFrame(v interface{}) ([]byte, error) {
	body, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("protocol: marshal frame body: %w", err)
	}

	var compressed bytes.Buffer
	w, err := zlib.NewWriterLevel(&compressed, compressionLevel)
	if err != nil {
		return nil, fmt.Errorf("protocol: create zlib writer: %w", err)
	}
	if _, err := w.Write(body); err != nil {
		return nil, fmt.Errorf("protocol: compress frame body: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("protocol: finalize compression: %w", err)
	}

	header := fmt.Sprintf("%0*d", headerLength, compressed.Len())

	out := make([]byte, 0, len(header)+compressed.Len())
	out = append(out, header...)
	out = append(out, compressed.Bytes()...)
	return out, nil
}

// DecodeFrame reads one frame from r: a 10-digit length header, then
// that many zlib-compressed bytes, decompressed and UTF-8 validated.
// Returns the decoded JSON body for the caller to unmarshal.
func DecodeFrame(r io.Reader) (json.RawMessage, error) {
	header := make([]byte, headerLength)
	if _, err := io.ReadFull(r, header); err != nil {
		return nil, fmt.Errorf("protocol: read frame header: %w", err)
	}

	length, err := strconv.Atoi(string(header))
	if err != nil {
		return nil, fmt.Errorf("protocol: invalid frame length %q: %w", header, err)
	}
	if length < 0 {
		return nil, fmt.Errorf("protocol: negative frame length %d", length)
	}

	compressed := make([]byte, length)
	if _, err := io.ReadFull(r, compressed); err != nil {
		return nil, fmt.Errorf("protocol: read frame body: %w", err)
	}

	zr, err := zlib.NewReader(bytes.NewReader(compressed))
	if err != nil {
		return nil, fmt.Errorf("protocol: open zlib reader: %w", err)
	}
	defer zr.Close()

	body, err := io.ReadAll(zr)
	if err != nil {
		return nil, fmt.Errorf("protocol: decompress frame body: %w", err)
	}

	if !utf8.Valid(body) {
		return nil, fmt.Errorf("protocol: frame body is not valid UTF-8")
	}

	return json.RawMessage(body), nil
}
