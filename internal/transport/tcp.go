package transport

import (
	"context"
	"net"

	"github.com/pkg/errors"
)

// DialTCP connects to addr and returns a framed Channel. No corpus
// library adds value over net for plain TCP; this is one of the
// stdlib-only exceptions documented in DESIGN.md.
func DialTCP(ctx context.Context, addr string) (Channel, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, errors.Wrapf(err, "dialing %s", addr)
	}
	return &streamChannel{rwc: conn}, nil
}

// TCPListener accepts Channels from a net.Listener.
type TCPListener struct {
	ln net.Listener
}

// ListenTCP opens a TCP listener on addr.
func ListenTCP(addr string) (*TCPListener, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, errors.Wrapf(err, "listening on %s", addr)
	}
	return &TCPListener{ln: ln}, nil
}

// Accept blocks for the next incoming connection and wraps it as a Channel.
func (l *TCPListener) Accept() (Channel, error) {
	conn, err := l.ln.Accept()
	if err != nil {
		return nil, errors.Wrap(err, "accepting tcp connection")
	}
	return &streamChannel{rwc: conn}, nil
}

// Addr returns the listener's bound address.
func (l *TCPListener) Addr() net.Addr { return l.ln.Addr() }

// Close stops accepting new connections.
func (l *TCPListener) Close() error { return l.ln.Close() }
