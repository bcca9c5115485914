package transport

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/kentwait/epidemigo/internal/wire"
)

func TestStdioChannelRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	writer := NewStdio(nil, &buf)
	reader := NewStdio(&buf, nil)

	want := wire.WorldRequest{Kind: wire.KindStart, StopAt: 42}
	require.NoError(t, writer.WriteDatagram(&want))

	var got wire.WorldRequest
	require.NoError(t, reader.ReadDatagram(&got))
	require.Equal(t, want, got)
}

func TestTCPChannelRoundTrip(t *testing.T) {
	ln, err := ListenTCP("127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	serverDone := make(chan wire.ManagerRequest, 1)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		var req wire.ManagerRequest
		if err := conn.ReadDatagram(&req); err == nil {
			serverDone <- req
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	client, err := DialTCP(ctx, ln.Addr().String())
	require.NoError(t, err)
	defer client.Close()

	want := wire.ManagerRequest{CorrelationID: "abc123", Kind: wire.KindGetItemList}
	require.NoError(t, client.WriteDatagram(&want))

	select {
	case got := <-serverDone:
		require.Equal(t, want, got)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for server to receive datagram")
	}
}
