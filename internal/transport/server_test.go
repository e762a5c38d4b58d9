package transport

import (
	"encoding/json"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shrvim/shrvimd/internal/logging"
	"github.com/shrvim/shrvimd/internal/protocol"
)

func TestServerRoundTrip(t *testing.T) {
	logger := logging.New(nil, logging.LevelError)
	handler := func(req protocol.Request) protocol.Response {
		return protocol.Response{Text: "echo:" + req.Text}
	}

	const addr = "127.0.0.1:18732"
	srv := NewServer(addr, handler, logger)
	go func() { _ = srv.Run() }()
	defer srv.Stop()

	var conn net.Conn
	var err error
	for i := 0; i < 50; i++ {
		conn, err = net.DialTimeout("tcp", addr, 100*time.Millisecond)
		if err == nil {
			break
		}
		time.Sleep(20 * time.Millisecond)
	}
	require.NoError(t, err)
	defer conn.Close()

	frame, err := protocol.EncodeFrame(protocol.Request{Identity: "a", Text: "hi"})
	require.NoError(t, err)
	_, err = conn.Write(frame)
	require.NoError(t, err)

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	body, err := protocol.DecodeFrame(conn)
	require.NoError(t, err)

	var resp protocol.Response
	require.NoError(t, json.Unmarshal(body, &resp))
	assert.Equal(t, "echo:hi", resp.Text)
}

func TestServerStopIsIdempotentAndDrains(t *testing.T) {
	logger := logging.New(nil, logging.LevelError)
	handler := func(req protocol.Request) protocol.Response { return protocol.Response{} }
	srv := NewServer("127.0.0.1:18733", handler, logger)

	go func() { _ = srv.Run() }()
	time.Sleep(50 * time.Millisecond)

	srv.Stop()
	assert.NotPanics(t, func() { srv.Stop() })
}
