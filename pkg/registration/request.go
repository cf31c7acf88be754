package registration

import (
	"sync"

	"github.com/pkg/errors"
)

var (
	ErrInFlight    = errors.New("request already in flight")
	ErrAlreadyDone = errors.New("step already completed")
)

type RequestStatus int

const (
	RequestIdle RequestStatus = iota
	RequestPending
	RequestSucceeded
	RequestFailed
)

func (s RequestStatus) String() string {
	switch s {
	case RequestPending:
		return "pending"
	case RequestSucceeded:
		return "succeeded"
	case RequestFailed:
		return "failed"
	}
	return "idle"
}

type RequestState struct {
	Status RequestStatus
	Reason string
}

// RequestGuard serialises the submit action of one step. Only one Begin
// can win until the request is resolved; a succeeded step stays closed.
type RequestGuard struct {
	mu    sync.Mutex
	state RequestState
}

func (g *RequestGuard) Begin() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	switch g.state.Status {
	case RequestPending:
		return ErrInFlight
	case RequestSucceeded:
		return ErrAlreadyDone
	}
	g.state = RequestState{Status: RequestPending}
	return nil
}

func (g *RequestGuard) Succeed() {
	g.mu.Lock()
	g.state = RequestState{Status: RequestSucceeded}
	g.mu.Unlock()
}

func (g *RequestGuard) Fail(reason string) {
	g.mu.Lock()
	g.state = RequestState{Status: RequestFailed, Reason: reason}
	g.mu.Unlock()
}

func (g *RequestGuard) Reset() {
	g.mu.Lock()
	g.state = RequestState{}
	g.mu.Unlock()
}

func (g *RequestGuard) State() RequestState {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// RefreshSequencer orders overlapping list refreshes per key: only the
// most recently issued ticket may publish its result.
type RefreshSequencer struct {
	mu   sync.Mutex
	last map[int64]uint64
}

func NewRefreshSequencer() *RefreshSequencer {
	return &RefreshSequencer{last: make(map[int64]uint64)}
}

func (s *RefreshSequencer) Issue(key int64) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.last[key]++
	return s.last[key]
}

func (s *RefreshSequencer) IsLatest(key int64, ticket uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last[key] == ticket
}
