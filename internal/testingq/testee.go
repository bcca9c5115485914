// Package testingq implements the testing pipeline named "Test queue" in
// spec.md: a FIFO of pending testees with delay/latency windows and a
// daily capacity budget (spec.md section 4.5). The package is named
// testingq, not testing, so it never collides with the standard library's
// testing package in import lists.
package testingq

import "github.com/kentwait/epidemigo/internal/agent"

// Reason is why an agent was enqueued for testing.
type Reason uint8

const (
	AsSymptom Reason = iota
	AsContact
	AsSuspected
)

func (r Reason) String() string {
	switch r {
	case AsSymptom:
		return "AsSymptom"
	case AsContact:
		return "AsContact"
	case AsSuspected:
		return "AsSuspected"
	default:
		return "Unknown"
	}
}

// Testee binds an agent to the reason it was enqueued and the step at
// which it entered the queue.
type Testee struct {
	Agent       agent.Handle
	Reason      Reason
	EnqueueStep int64
	TimeStamp   int64 // step at which the testee became eligible; equals EnqueueStep unless re-stamped
}
