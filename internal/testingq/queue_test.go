package testingq

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/kentwait/epidemigo/internal/agent"
	"github.com/stretchr/testify/require"
)

func TestPushUniqueness(t *testing.T) {
	q := NewQueue()
	h := agent.Handle{ID: 1, Epoch: 0}
	require.True(t, q.Push(Testee{Agent: h, Reason: AsContact}))
	require.False(t, q.Push(Testee{Agent: h, Reason: AsSymptom}))
	require.Equal(t, 1, q.Len())
}

func TestAcceptRespectsDailyCapacity(t *testing.T) {
	arena := agent.NewArena(100)
	arena.Reset()
	q := NewQueue()
	for i := 0; i < 100; i++ {
		ag := arena.Get(agent.AgentID(i))
		ag.Location = agent.LocField
		q.Push(Testee{Agent: arena.Handle(agent.AgentID(i)), Reason: AsContact, EnqueueStep: 0, TimeStamp: 0})
	}

	rng := rand.New(rand.NewPCG(1, 1))
	counts := &Counts{}
	p := AcceptParams{
		Step:             10,
		StepsPerDay:      10,
		PopulationSize:   100,
		TestProcessDays:  1,
		TestDelayLimDays: 3,
		TestCapacity:     0.5,
		TestSensitivity:  0.9,
		TestSpecificity:  0.95,
	}
	expectedMax := int(math.Ceil(float64(p.PopulationSize) * p.TestCapacity / float64(p.StepsPerDay)))
	q.Accept(rng, arena, p, counts)
	require.LessOrEqual(t, int(counts.TestsConducted), expectedMax)
}

func TestAcceptElevatesPositiveAgentIntoQuarantine(t *testing.T) {
	arena := agent.NewArena(1)
	arena.Reset()
	ag := arena.Get(0)
	ag.Location = agent.LocField
	ag.Health = agent.Asymptomatic
	ag.Infection = &agent.Infection{Reproductivity: 1}
	q := NewQueue()
	q.Push(Testee{Agent: arena.Handle(0), Reason: AsSymptom, TimeStamp: 0})

	rng := rand.New(rand.NewPCG(3, 3))
	counts := &Counts{}
	p := AcceptParams{
		Step:             10,
		StepsPerDay:      10,
		PopulationSize:   10, // 10 * 1 / 10 = exactly one test this step
		TestProcessDays:  1,
		TestDelayLimDays: 3,
		TestCapacity:     1,
		TestSensitivity:  1, // always positive when infected
		TestSpecificity:  0.95,
	}
	q.Accept(rng, arena, p, counts)
	require.Equal(t, uint64(1), counts.Positive)
	require.Equal(t, agent.QuarantineAsym, ag.Health)
	require.Len(t, counts.Elevated, 1)
	require.Equal(t, agent.AgentID(0), counts.Elevated[0].ID)
}

func TestAcceptCancelsStaleTestees(t *testing.T) {
	arena := agent.NewArena(10)
	arena.Reset()
	q := NewQueue()
	ag := arena.Get(0)
	ag.Location = agent.LocField
	q.Push(Testee{Agent: arena.Handle(0), Reason: AsSymptom, TimeStamp: 0})

	rng := rand.New(rand.NewPCG(2, 2))
	counts := &Counts{}
	p := AcceptParams{
		Step:             1000,
		StepsPerDay:      10,
		PopulationSize:   10,
		TestProcessDays:  1,
		TestDelayLimDays: 3,
		TestCapacity:     1,
		TestSensitivity:  0.9,
		TestSpecificity:  0.95,
	}
	q.Accept(rng, arena, p, counts)
	require.Equal(t, uint64(1), counts.Cancelled)
	require.Equal(t, uint64(0), counts.TestsConducted)
}
