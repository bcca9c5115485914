// Package transport adapts internal/wire's length-prefixed framing onto
// three concrete byte streams: stdio (a process's own stdin/stdout, as
// the teacher's bin/contagion CLI reads from), a plain TCP net.Conn, and a
// QUIC stream. All three satisfy the same Channel interface so code that
// calls ReadDatagram/WriteDatagram (cmd/epidemigo-world) never needs to
// know which one it was handed.
package transport

import (
	"io"

	"github.com/kentwait/epidemigo/internal/wire"
)

// Channel is a bidirectional, message-oriented connection to one peer.
type Channel interface {
	// ReadDatagram blocks for the next datagram and decodes it into v.
	ReadDatagram(v any) error
	// WriteDatagram frames and writes v.
	WriteDatagram(v any) error
	// Close releases the underlying stream.
	Close() error
}

// streamChannel implements Channel over any io.ReadWriteCloser using
// internal/wire's framing, shared by the stdio, TCP, and QUIC adapters.
type streamChannel struct {
	rwc io.ReadWriteCloser
}

func (c *streamChannel) ReadDatagram(v any) error  { return wire.ReadDatagram(c.rwc, v) }
func (c *streamChannel) WriteDatagram(v any) error { return wire.WriteDatagram(c.rwc, v) }
func (c *streamChannel) Close() error              { return c.rwc.Close() }

// rwc joins a separate reader and writer (stdin is not writable, stdout
// is not readable) into one io.ReadWriteCloser.
type rwc struct {
	io.Reader
	io.Writer
}

func (rwc) Close() error { return nil }
