package wire

import (
	"bytes"
	"encoding/binary"
	"encoding/gob"
	"fmt"
	"io"
)

// maxDatagramSize bounds a single decoded payload, guarding a corrupt or
// adversarial length header from driving an unbounded allocation.
const maxDatagramSize = 64 << 20 // 64 MiB

// WriteDatagram frames one payload as a little-endian uint64 length header
// followed by that many bytes, per spec.md section 6. value is encoded
// with encoding/gob: no binary codec library appears in any complete
// example repo (checked for encoding/gob alternatives: msgpack, cbor,
// flatbuffers, capnproto; none are imported by a full pack repo), so gob
// is the pragmatic stdlib choice, documented in DESIGN.md.
func WriteDatagram(w io.Writer, value any) error {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(value); err != nil {
		return fmt.Errorf("encoding datagram payload: %w", err)
	}
	var header [8]byte
	binary.LittleEndian.PutUint64(header[:], uint64(buf.Len()))
	if _, err := w.Write(header[:]); err != nil {
		return fmt.Errorf("writing datagram length header: %w", err)
	}
	if _, err := w.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("writing datagram payload: %w", err)
	}
	return nil
}

// ReadDatagram reads one length-framed datagram and decodes it into
// value, which must be a pointer.
func ReadDatagram(r io.Reader, value any) error {
	var header [8]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return err // EOF propagates to callers as the stream-closed signal
	}
	n := binary.LittleEndian.Uint64(header[:])
	if n > maxDatagramSize {
		return fmt.Errorf("datagram of %d bytes exceeds maximum %d", n, maxDatagramSize)
	}
	payload := make([]byte, n)
	if _, err := io.ReadFull(r, payload); err != nil {
		return fmt.Errorf("reading datagram payload: %w", err)
	}
	if err := gob.NewDecoder(bytes.NewReader(payload)).Decode(value); err != nil {
		return fmt.Errorf("decoding datagram payload: %w", err)
	}
	return nil
}
