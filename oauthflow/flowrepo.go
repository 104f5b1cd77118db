package oauthflow

import (
	"sync"
	"time"

	autherrors "github.com/jrsteele09/go-signin-client/internal/errors"
	"github.com/pkg/errors"
)

// FlowState is what must survive between launching the consent screen and
// receiving the redirect.
type FlowState struct {
	CodeVerifier string
	Nonce        string
	CreatedAt    time.Time
}

type Repo interface {
	Upsert(state string, flow *FlowState) error
	Get(state string) (*FlowState, error)
	Delete(state string) error
	// Take returns the flow and removes it in one step, so a state can only
	// be redeemed once.
	Take(state string) (*FlowState, error)
	DeleteExpired(before time.Time) int
}

// InMemoryRepo is a thread-safe in-memory implementation of Repo
type InMemoryRepo struct {
	mu    sync.RWMutex
	flows map[string]*FlowState
}

var _ Repo = (*InMemoryRepo)(nil)

func NewInMemoryRepo() *InMemoryRepo {
	return &InMemoryRepo{
		flows: make(map[string]*FlowState),
	}
}

func (r *InMemoryRepo) Upsert(state string, flow *FlowState) error {
	if state == "" {
		return errors.New("state cannot be empty")
	}
	if flow == nil {
		return errors.New("flow cannot be nil")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	copied := *flow
	r.flows[state] = &copied
	return nil
}

func (r *InMemoryRepo) Get(state string) (*FlowState, error) {
	if state == "" {
		return nil, errors.New("state cannot be empty")
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	flow, exists := r.flows[state]
	if !exists {
		return nil, errors.Wrap(autherrors.ErrNotFound, "state")
	}
	copied := *flow
	return &copied, nil
}

func (r *InMemoryRepo) Delete(state string) error {
	if state == "" {
		return errors.New("state cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.flows, state)
	return nil
}

func (r *InMemoryRepo) Take(state string) (*FlowState, error) {
	if state == "" {
		return nil, errors.New("state cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	flow, exists := r.flows[state]
	if !exists {
		return nil, errors.Wrap(autherrors.ErrNotFound, "state")
	}
	delete(r.flows, state)
	return flow, nil
}

// DeleteExpired removes flows created before the cutoff and returns how many went.
func (r *InMemoryRepo) DeleteExpired(before time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for state, flow := range r.flows {
		if flow.CreatedAt.Before(before) {
			delete(r.flows, state)
			removed++
		}
	}
	return removed
}
