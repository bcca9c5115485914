// Package supervisor runs one World on a dedicated goroutine behind a
// mailbox, the concurrency shape spec.md section 4.7 describes for a
// single simulation item: requests are served in order, status is
// published continuously, and the goroutine owns the World exclusively so
// no field of it is ever touched from another goroutine. Grounded on the
// ticker/stopCh run-loop shape in cuemby-warren's pkg/worker/worker.go and
// pkg/worker/health_monitor.go, generalized from "one loop per node" to
// "one loop per simulated world".
package supervisor

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/kentwait/epidemigo/internal/simparams"
	"github.com/kentwait/epidemigo/internal/telemetry"
	"github.com/kentwait/epidemigo/internal/wire"
	"github.com/kentwait/epidemigo/internal/world"
)

// request is an internal mailbox envelope pairing a wire.WorldRequest with
// the channel its single response is delivered on.
type request struct {
	req   wire.WorldRequest
	reply chan reply
}

type reply struct {
	ok  *wire.ResponseOk
	err *wire.ErrorInfo
}

// Supervisor owns exactly one World and serializes all access to it
// through a single goroutine, per spec.md section 4.7's state machine
// (Stopped, Started, Ended).
type Supervisor struct {
	id  string
	log zerolog.Logger

	w *world.World

	mailbox chan request
	status  chan wire.WorldStatus
	done    chan struct{}

	state  wire.WorldState
	stepCh chan struct{} // allocated but not read; Run's ticker drives steps while Started
	stopAt int64

	// deleted is set once KindDelete has been dispatched; Run checks it
	// after every handled request to break its loop cooperatively
	// (spec.md section 4.7: "Delete is the only cancellation signal; it is
	// cooperative").
	deleted bool
}

// New builds a Supervisor wrapping a freshly Reset World for wp/rp, seeded
// deterministically from seed (spec.md section 8's reproducibility
// property). The returned Supervisor has not yet started its run loop;
// call Run in its own goroutine.
func New(id string, wp simparams.WorldParams, rp simparams.RuntimeParams, seed uint64, log zerolog.Logger) *Supervisor {
	w := world.New(wp, rp, seed)
	w.SetID(id)
	w.Reset()
	return &Supervisor{
		id:      id,
		log:     log.With().Str("world_id", id).Logger(),
		w:       w,
		mailbox: make(chan request),
		status:  make(chan wire.WorldStatus, 16),
		done:    make(chan struct{}),
		stepCh:  make(chan struct{}, 1),
		state:   wire.Stopped,
	}
}

// Status returns the channel status updates are published on. Consumers
// should drain it continuously; the channel is buffered but not infinite.
func (s *Supervisor) Status() <-chan wire.WorldStatus {
	return s.status
}

// Send enqueues req and blocks for its single response, or until ctx is
// done. This is the client-facing half of the mailbox described in
// spec.md section 4.7.
func (s *Supervisor) Send(ctx context.Context, req wire.WorldRequest) (*wire.ResponseOk, *wire.ErrorInfo) {
	r := request{req: req, reply: make(chan reply, 1)}
	select {
	case s.mailbox <- r:
	case <-ctx.Done():
		return nil, &wire.ErrorInfo{Kind: wire.ErrProcessIOError, Message: ctx.Err().Error()}
	case <-s.done:
		return nil, &wire.ErrorInfo{Kind: wire.ErrAlreadyEnded, Message: "world supervisor has shut down"}
	}
	select {
	case rep := <-r.reply:
		return rep.ok, rep.err
	case <-ctx.Done():
		return nil, &wire.ErrorInfo{Kind: wire.ErrProcessIOError, Message: ctx.Err().Error()}
	}
}

// Run is the goroutine body: it services the mailbox non-blockingly while
// Started (so the world keeps stepping between requests) and blocks on the
// mailbox while Stopped or Ended, exactly as spec.md section 4.7 describes.
func (s *Supervisor) Run(ctx context.Context) {
	defer close(s.done)
	defer close(s.status)
	ticker := time.NewTicker(2 * time.Millisecond)
	defer ticker.Stop()

	s.publishStatus()

	for {
		if s.state == wire.Started {
			select {
			case r := <-s.mailbox:
				s.handle(r)
				if s.deleted {
					return
				}
			case <-ticker.C:
				s.advance()
			case <-ctx.Done():
				return
			}
		} else {
			select {
			case r := <-s.mailbox:
				s.handle(r)
				if s.deleted {
					return
				}
			case <-ctx.Done():
				return
			}
		}
	}
}

func (s *Supervisor) advance() {
	timer := telemetry.NewTimer(telemetry.StepDuration, s.id)
	ended := s.w.Step()
	timer.ObserveDuration()
	telemetry.StepsTotal.WithLabelValues(s.id).Inc()
	s.publishStatus()
	if ended {
		s.state = wire.Ended
		s.publishStatus()
	}
}

func (s *Supervisor) handle(r request) {
	ok, err := s.dispatch(r.req)
	r.reply <- reply{ok: ok, err: err}
	s.publishStatus()
}

func (s *Supervisor) dispatch(req wire.WorldRequest) (*wire.ResponseOk, *wire.ErrorInfo) {
	switch req.Kind {
	case wire.KindStart:
		if s.state == wire.Started {
			return nil, &wire.ErrorInfo{Kind: wire.ErrAlreadyStarted}
		}
		if s.state == wire.Ended {
			return nil, &wire.ErrorInfo{Kind: wire.ErrAlreadyEnded}
		}
		s.stopAt = int64(req.StopAt)
		s.w.Start(s.stopAt)
		s.state = wire.Started
		s.log.Info().Int64("stop_at", s.stopAt).Msg("world started")
		return &wire.ResponseOk{Kind: wire.OkSuccess}, nil

	case wire.KindStep:
		if s.state != wire.Stopped {
			return nil, &wire.ErrorInfo{Kind: wire.ErrAlreadyStarted, Message: "world must be stopped to single-step"}
		}
		ended := s.w.Step()
		if ended {
			s.state = wire.Ended
		}
		return &wire.ResponseOk{Kind: wire.OkSuccess}, nil

	case wire.KindStop:
		if s.state != wire.Started {
			return nil, &wire.ErrorInfo{Kind: wire.ErrAlreadyStopped}
		}
		s.state = wire.Stopped
		s.log.Info().Msg("world stopped")
		return &wire.ResponseOk{Kind: wire.OkSuccess}, nil

	case wire.KindReset:
		s.w.Reset()
		s.state = wire.Stopped
		s.log.Info().Msg("world reset")
		return &wire.ResponseOk{Kind: wire.OkSuccess}, nil

	case wire.KindDebug:
		return &wire.ResponseOk{Kind: wire.OkSuccessWithMessage, Message: s.w.Debug()}, nil

	case wire.KindExport:
		if err := s.w.Export(req.Path); err != nil {
			return nil, &wire.ErrorInfo{Kind: wire.ErrFileExportFailed, Message: err.Error()}
		}
		return &wire.ResponseOk{Kind: wire.OkSuccess}, nil

	case wire.KindExecute:
		if s.state == wire.Ended {
			return nil, &wire.ErrorInfo{Kind: wire.ErrAlreadyEnded}
		}
		s.w.Start(int64(req.StopAt))
		s.state = wire.Started
		for s.state == wire.Started {
			if s.w.Step() {
				s.state = wire.Ended
			}
		}
		return &wire.ResponseOk{Kind: wire.OkSuccess}, nil

	case wire.KindDelete:
		s.w.Delete()
		s.deleted = true
		s.log.Info().Msg("world deleted")
		return &wire.ResponseOk{Kind: wire.OkSuccess}, nil

	default:
		return nil, &wire.ErrorInfo{Kind: wire.ErrCustom, Message: "unrecognized world request kind"}
	}
}

func (s *Supervisor) publishStatus() {
	st := wire.WorldStatus{
		Step:      uint32(s.w.StepCount()),
		State:     s.state,
		TimeStamp: time.Now().Unix(),
	}
	select {
	case s.status <- st:
	default:
		// Drop the update rather than block the run loop; consumers read
		// Debug/GetItemInfo for an authoritative snapshot.
	}
}

// Wait blocks until the run loop has exited.
func (s *Supervisor) Wait() {
	<-s.done
}

// ExportErr wraps export failures with the world id for caller logging.
func (s *Supervisor) ExportErr(path string) error {
	if err := s.w.Export(path); err != nil {
		return errors.Wrapf(err, "world %s: export to %s", s.id, path)
	}
	return nil
}
