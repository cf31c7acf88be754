package registration

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRequestGuard_Transitions(t *testing.T) {
	var g RequestGuard
	require.Equal(t, RequestIdle, g.State().Status)

	require.NoError(t, g.Begin())
	require.ErrorIs(t, g.Begin(), ErrInFlight)

	g.Fail("file_too_large")
	require.Equal(t, RequestState{Status: RequestFailed, Reason: "file_too_large"}, g.State())

	require.NoError(t, g.Begin())
	g.Succeed()
	require.ErrorIs(t, g.Begin(), ErrAlreadyDone)

	g.Reset()
	require.NoError(t, g.Begin())
}

func TestRequestGuard_ConcurrentBeginSingleWinner(t *testing.T) {
	var g RequestGuard
	var wins int32
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if g.Begin() == nil {
				atomic.AddInt32(&wins, 1)
			}
		}()
	}
	wg.Wait()
	require.Equal(t, int32(1), wins)
}

func TestRefreshSequencer(t *testing.T) {
	s := NewRefreshSequencer()
	first := s.Issue(1)
	second := s.Issue(1)
	other := s.Issue(2)

	require.False(t, s.IsLatest(1, first))
	require.True(t, s.IsLatest(1, second))
	require.True(t, s.IsLatest(2, other))
}

func TestRequestStatus_String(t *testing.T) {
	require.Equal(t, "idle", RequestIdle.String())
	require.Equal(t, "pending", RequestPending.String())
	require.Equal(t, "succeeded", RequestSucceeded.String())
	require.Equal(t, "failed", RequestFailed.String())
}
