package transport

import (
	"io"
)

// NewStdio wraps r/w (normally os.Stdin and os.Stdout) as a Channel, the
// shape of the teacher's bin/contagion CLI, which drives a simulation
// from a single process's own standard streams rather than a socket.
func NewStdio(r io.Reader, w io.Writer) Channel {
	return &streamChannel{rwc: rwc{Reader: r, Writer: w}}
}
