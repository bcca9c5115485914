package transport

import (
	"context"
	"crypto/tls"

	"github.com/pkg/errors"
	"github.com/quic-go/quic-go"
)

// quicALPN is the single protocol string negotiated for this module's
// framed datagram stream; spec.md section 6 names QUIC as a required
// transport but does not define a multiplexed protocol registry, so one
// stream per connection is all that is needed.
const quicALPN = "epidemigo/1"

// DialQUIC opens a QUIC connection to addr and its one framed stream.
func DialQUIC(ctx context.Context, addr string, tlsConf *tls.Config) (Channel, error) {
	conf := tlsConf.Clone()
	conf.NextProtos = []string{quicALPN}

	conn, err := quic.DialAddr(ctx, addr, conf, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "dialing quic %s", addr)
	}
	stream, err := conn.OpenStreamSync(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "opening quic stream")
	}
	return &streamChannel{rwc: quicStream{stream}}, nil
}

// QUICListener accepts one framed Channel per incoming QUIC connection.
type QUICListener struct {
	ln *quic.Listener
}

// ListenQUIC opens a QUIC listener on addr using tlsConf (QUIC requires TLS).
func ListenQUIC(addr string, tlsConf *tls.Config) (*QUICListener, error) {
	conf := tlsConf.Clone()
	conf.NextProtos = []string{quicALPN}

	ln, err := quic.ListenAddr(addr, conf, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "listening on quic %s", addr)
	}
	return &QUICListener{ln: ln}, nil
}

// Accept blocks for the next connection's first stream and wraps it as a
// Channel.
func (l *QUICListener) Accept(ctx context.Context) (Channel, error) {
	conn, err := l.ln.Accept(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "accepting quic connection")
	}
	stream, err := conn.AcceptStream(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "accepting quic stream")
	}
	return &streamChannel{rwc: quicStream{stream}}, nil
}

// Close stops accepting new connections.
func (l *QUICListener) Close() error { return l.ln.Close() }

// quicStream gives a quic.Stream a Close that shuts both directions:
// quic.Stream's own Close only closes the send side, so the read side is
// cancelled first.
type quicStream struct {
	quic.Stream
}

func (s quicStream) Close() error {
	s.CancelRead(0)
	return s.Stream.Close()
}
