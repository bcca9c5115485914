package contact

import (
	"testing"

	"github.com/kentwait/epidemigo/internal/agent"
	"github.com/stretchr/testify/require"
)

func TestDrainTesteesYieldsReservableAgent(t *testing.T) {
	arena := agent.NewArena(2)
	arena.Reset()
	arena.Get(0).Location = agent.LocField

	b := NewBuffer()
	b.Append(arena.Handle(0), arena.Handle(1), 5)

	testees := b.DrainTestees(arena, 6, 10, 70)
	require.Len(t, testees, 1)
	require.Equal(t, agent.AgentID(0), testees[0].Agent.ID)
	require.True(t, arena.Get(0).Testing.Reserved)
}

func TestDrainTesteesExpiresRetentionWindow(t *testing.T) {
	arena := agent.NewArena(1)
	arena.Reset()
	arena.Get(0).Location = agent.LocField

	b := NewBuffer()
	const s, stepsPerDay = 5, 10
	b.Append(arena.Handle(0), arena.Handle(0), s)

	now := int64(s + stepsPerDay*RetentionDays + 1)
	testees := b.DrainTestees(arena, now, stepsPerDay, 70)
	require.Empty(t, testees)
	require.Equal(t, 0, b.Len())
}

func TestDrainTesteesSkipsNonReservable(t *testing.T) {
	arena := agent.NewArena(1)
	arena.Reset()
	arena.Get(0).Location = agent.LocHospital // not in field => not reservable

	b := NewBuffer()
	b.Append(arena.Handle(0), arena.Handle(0), 1)

	testees := b.DrainTestees(arena, 2, 10, 70)
	require.Empty(t, testees)
	require.Equal(t, 1, b.Len()) // entry retained for a later, possibly-reservable step
}

func TestDrainOwnerYieldsOwnersPeers(t *testing.T) {
	arena := agent.NewArena(3)
	arena.Reset()
	arena.Get(1).Location = agent.LocField
	arena.Get(2).Location = agent.LocField

	b := NewBuffer()
	b.Append(arena.Handle(0), arena.Handle(1), 5)
	b.Append(arena.Handle(0), arena.Handle(2), 5)

	testees := b.DrainOwner(arena, 0, 6, 10, 70)
	require.Len(t, testees, 2)
	require.True(t, arena.Get(1).Testing.Reserved)
	require.True(t, arena.Get(2).Testing.Reserved)
	require.Equal(t, 0, b.Len())
}

func TestDrainOwnerUnknownOwnerIsNoop(t *testing.T) {
	arena := agent.NewArena(1)
	arena.Reset()

	b := NewBuffer()
	require.Empty(t, b.DrainOwner(arena, 0, 1, 10, 70))
}
