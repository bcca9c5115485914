// Package contact implements the per-world contact-tracing buffer
// (spec.md section 4.5): a 14-day retention window over recorded
// (agent-reference, step) entries, with a drain operation that yields
// fresh, reservable contact-testees to feed the test queue.
package contact

import (
	"github.com/kentwait/epidemigo/internal/agent"
	"github.com/kentwait/epidemigo/internal/testingq"
)

// RetentionDays is the window beyond which a contact entry is discarded
// (spec.md section 3: "Entries older than S*14 steps are logically
// expired").
const RetentionDays = 14

// Entry binds a peer reference to the step the contact occurred.
type Entry struct {
	Peer agent.Handle
	Step int64
}

// Buffer holds each agent's recent contact entries, keyed by the owning
// agent's ID. It mirrors the "per-agent ring of recent peer references"
// description in spec.md section 2 while the world, globally, treats the
// union of all rings as the "per-world FIFO" described in section 3: step
// only increases, so within any one agent's ring insertion order is
// already retention-order.
type Buffer struct {
	byAgent map[agent.AgentID][]Entry
}

// NewBuffer returns an empty contact buffer.
func NewBuffer() *Buffer {
	return &Buffer{byAgent: make(map[agent.AgentID][]Entry)}
}

// Reset empties the buffer.
func (b *Buffer) Reset() {
	b.byAgent = make(map[agent.AgentID][]Entry)
}

// Append records a contact between owner and peer at the given step. It is
// called on both sides of a contact pair (spec.md section 4.2 step (d):
// "record a contact entry on both sides' contact lists").
func (b *Buffer) Append(owner agent.Handle, peer agent.Handle, step int64) {
	b.byAgent[owner.ID] = append(b.byAgent[owner.ID], Entry{Peer: peer, Step: step})
}

// expire drops every entry for id older than the retention window,
// returning the entries that remain.
func expire(entries []Entry, now int64, stepsPerDay int64) []Entry {
	cutoff := now - stepsPerDay*RetentionDays
	kept := entries[:0]
	for _, e := range entries {
		if e.Step > cutoff { // strict '<' retention check per spec.md section 9's open question
			kept = append(kept, e)
		}
	}
	return kept
}

// DrainTestees expires stale entries across the whole buffer and returns
// one Testee for every owning agent that still has entries and is
// reservable, marking that agent reserved and dropping its entries so it
// is not drained twice (spec.md section 4.5). Entries belonging to an
// owner that is not reservable are kept in
// the buffer (they may become reservable on a later step); expired
// entries are discarded unconditionally.
func (b *Buffer) DrainTestees(arena *agent.Arena, now int64, stepsPerDay int64, tstIntervalSteps int64) []testingq.Testee {
	var testees []testingq.Testee
	for id, entries := range b.byAgent {
		entries = expire(entries, now, stepsPerDay)
		if len(entries) == 0 {
			delete(b.byAgent, id)
			continue
		}

		ag := arena.Get(id)
		if ag.ID == id && ag.IsReservable(now, tstIntervalSteps) {
			ag.Testing.Reserved = true
			ag.Testing.InQueue = true
			testees = append(testees, testingq.Testee{
				Agent:       arena.Handle(id),
				Reason:      testingq.AsContact,
				EnqueueStep: now,
				TimeStamp:   now,
			})
			delete(b.byAgent, id)
			continue
		}
		b.byAgent[id] = entries
	}
	return testees
}

// DrainOwner expires and removes ownerID's own recorded contact entries,
// returning a Testee for each live peer that is still reservable. It is
// called when ownerID tests positive and is elevated into quarantine
// (spec.md section 4.4/4.5: the warp transition to ModeQuarantineInside
// "drains a list of contact-testees into the test queue"), so the peers
// that owner recently touched get tested without waiting for their own
// entries to surface through the routine DrainTestees pass.
func (b *Buffer) DrainOwner(arena *agent.Arena, ownerID agent.AgentID, now int64, stepsPerDay int64, tstIntervalSteps int64) []testingq.Testee {
	entries, ok := b.byAgent[ownerID]
	if !ok {
		return nil
	}
	delete(b.byAgent, ownerID)

	entries = expire(entries, now, stepsPerDay)
	var testees []testingq.Testee
	for _, e := range entries {
		peer := arena.Resolve(e.Peer)
		if peer == nil || !peer.IsReservable(now, tstIntervalSteps) {
			continue
		}
		peer.Testing.Reserved = true
		peer.Testing.InQueue = true
		testees = append(testees, testingq.Testee{
			Agent:       e.Peer,
			Reason:      testingq.AsSuspected,
			EnqueueStep: now,
			TimeStamp:   now,
		})
	}
	return testees
}

// Len reports how many agents currently hold at least one contact entry.
func (b *Buffer) Len() int {
	return len(b.byAgent)
}
