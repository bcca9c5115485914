package supervisor

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/kentwait/epidemigo/internal/simparams"
	"github.com/kentwait/epidemigo/internal/wire"
)

func testParams() (simparams.WorldParams, simparams.RuntimeParams) {
	wp := simparams.WorldParams{
		PopulationSize:  40,
		WorldSideLength: 100,
		MeshResolution:  4,
		StepsPerDay:     10,
		InitialInfected: 3,
		IncubationLow:   2, IncubationHigh: 6, IncubationMode: 4,
		FatalityLow: 100, FatalityHigh: 200, FatalityMode: 150,
		RecoveryLow: 8, RecoveryHigh: 16, RecoveryMode: 10,
	}
	rp := simparams.RuntimeParams{
		ContagionDelay: 1, ContagionPeak: 5,
		InfectionProbability: 0.2, InfectionDistance: 5,
		DistancingStrength: 0.1, DistancingObedience: 0.3,
		TestProcess: 1, TestDelayLimit: 3,
		TestCapacityFraction: 0.1, TestSensitivity: 0.9, TestSpecificity: 0.95,
		TestInterval: 7,
	}
	return wp, rp
}

func TestSupervisorStartStepStop(t *testing.T) {
	wp, rp := testParams()
	s := New("abc", wp, rp, 7, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go s.Run(ctx)

	reqCtx, reqCancel := context.WithTimeout(context.Background(), time.Second)
	defer reqCancel()

	ok, errInfo := s.Send(reqCtx, wire.WorldRequest{Kind: wire.KindStart, StopAt: 20})
	require.Nil(t, errInfo)
	require.NotNil(t, ok)

	_, errInfo = s.Send(reqCtx, wire.WorldRequest{Kind: wire.KindStart})
	require.NotNil(t, errInfo)
	require.Equal(t, wire.ErrAlreadyStarted, errInfo.Kind)

	time.Sleep(50 * time.Millisecond)

	ok, errInfo = s.Send(reqCtx, wire.WorldRequest{Kind: wire.KindStop})
	require.Nil(t, errInfo)
	require.NotNil(t, ok)

	ok, errInfo = s.Send(reqCtx, wire.WorldRequest{Kind: wire.KindDebug})
	require.Nil(t, errInfo)
	require.NotEmpty(t, ok.Message)
}

func TestSupervisorRejectsStepWhileStarted(t *testing.T) {
	wp, rp := testParams()
	s := New("xyz", wp, rp, 9, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go s.Run(ctx)

	reqCtx, reqCancel := context.WithTimeout(context.Background(), time.Second)
	defer reqCancel()

	_, errInfo := s.Send(reqCtx, wire.WorldRequest{Kind: wire.KindStart, StopAt: 100})
	require.Nil(t, errInfo)

	_, errInfo = s.Send(reqCtx, wire.WorldRequest{Kind: wire.KindStep})
	require.NotNil(t, errInfo)
	require.Equal(t, wire.ErrAlreadyStarted, errInfo.Kind)
}

func TestSupervisorKindDeleteBreaksRunLoop(t *testing.T) {
	wp, rp := testParams()
	s := New("del", wp, rp, 13, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go s.Run(ctx)

	reqCtx, reqCancel := context.WithTimeout(context.Background(), time.Second)
	defer reqCancel()

	ok, errInfo := s.Send(reqCtx, wire.WorldRequest{Kind: wire.KindDelete})
	require.Nil(t, errInfo)
	require.NotNil(t, ok)

	select {
	case <-s.done:
	case <-time.After(time.Second):
		t.Fatal("Run loop did not exit after KindDelete")
	}

	_, errInfo = s.Send(reqCtx, wire.WorldRequest{Kind: wire.KindDebug})
	require.NotNil(t, errInfo)
	require.Equal(t, wire.ErrAlreadyEnded, errInfo.Kind)
}

func TestSupervisorExecuteRunsToCompletion(t *testing.T) {
	wp, rp := testParams()
	wp.InitialInfected = 0
	s := New("run", wp, rp, 11, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go s.Run(ctx)

	reqCtx, reqCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer reqCancel()

	ok, errInfo := s.Send(reqCtx, wire.WorldRequest{Kind: wire.KindExecute, StopAt: 10})
	require.Nil(t, errInfo)
	require.NotNil(t, ok)
}
