package protocol

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrameRoundTripScenarioS6(t *testing.T) {
	cases := []Request{
		{Identity: "alice", Text: "hello world", Mode: 1, Cursors: map[string]int{".": 5}},
		{Identity: "bob", Bye: true},
		{Identity: "carol", Init: true, Text: "", Cursors: map[string]int{}},
		{Identity: "dana", Text: "héllo wörld — unicode", Mode: -1, Cursors: map[string]int{"v": 0, ".": 3}},
	}

	for _, req := range cases {
		frame, err := EncodeFrame(req)
		require.NoError(t, err)

		body, err := DecodeFrame(bytes.NewReader(frame))
		require.NoError(t, err)

		var got Request
		require.NoError(t, json.Unmarshal(body, &got))
		assert.Equal(t, req, got)
	}
}

func TestEncodeFrameHeaderIsTenDigits(t *testing.T) {
	frame, err := EncodeFrame(Response{Text: "x"})
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(frame), 10)
	header := frame[:10]
	for _, b := range header {
		assert.True(t, b >= '0' && b <= '9')
	}
}

func TestDecodeFrameRejectsBadLength(t *testing.T) {
	_, err := DecodeFrame(bytes.NewReader([]byte("not-a-num!")))
	assert.Error(t, err)
}

func TestDecodeFrameRejectsTruncatedBody(t *testing.T) {
	frame, err := EncodeFrame(Response{Text: "x"})
	require.NoError(t, err)
	truncated := frame[:len(frame)-2]
	_, err = DecodeFrame(bytes.NewReader(truncated))
	assert.Error(t, err)
}
