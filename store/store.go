package store

import (
	"encoding/json"
	"sync"

	"go.uber.org/zap"
)

// Entity names
const (
	EntityUser = "user"
	EntityRole = "role"
	EntityAuth = "auth"
)

// Notice is emitted once when an operation reaches a terminal status.
// Consumers show their toast on the notice instead of watching flags.
type Notice struct {
	Entity    string
	Op        Op
	Status    Status
	Message   string
	TypeError string
}

// Store holds one entity's state and serializes transitions.
type Store struct {
	mu      sync.Mutex
	entity  string
	state   EntityState
	seq     uint64
	subs    map[int]func(Notice)
	nextSub int
	logger  *zap.Logger
}

// New returns an idle store for entity.
func New(entity string, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		entity: entity,
		subs:   make(map[int]func(Notice)),
		logger: logger.With(zap.String("entity", entity)),
	}
}

// NewUserStore returns the store behind the user list page.
func NewUserStore(logger *zap.Logger) *Store { return New(EntityUser, logger) }

// NewRoleStore returns the store behind the role list page.
func NewRoleStore(logger *zap.Logger) *Store { return New(EntityRole, logger) }

// NewAuthStore returns the store behind signup, the profile page and the
// change-password page.
func NewAuthStore(logger *zap.Logger) *Store { return New(EntityAuth, logger) }

// Entity returns the entity name.
func (s *Store) Entity() string { return s.entity }

// State returns a snapshot of the current state.
func (s *Store) State() EntityState {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.state
	if st.Items != nil {
		st.Items = append([]json.RawMessage(nil), st.Items...)
	}
	return st
}

// NextSeq issues the sequence number for a new list request.
func (s *Store) NextSeq() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	return s.seq
}

// Subscribe registers fn for notices and returns its cancel func.
func (s *Store) Subscribe(fn func(Notice)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
	}
}

// Dispatch applies a, then notifies subscribers of every operation that
// moved into a terminal status. Subscribers run outside the lock and may
// dispatch.
func (s *Store) Dispatch(a Action) {
	s.mu.Lock()
	prev := s.state
	next := Reduce(prev, a)
	s.state = next

	var notices []Notice
	for _, op := range allOps {
		before, after := prev.Op(op), next.Op(op)
		if after.Status.Terminal() && before != after {
			notices = append(notices, Notice{
				Entity:    s.entity,
				Op:        op,
				Status:    after.Status,
				Message:   after.Message,
				TypeError: after.TypeError,
			})
		}
	}
	subs := make([]func(Notice), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	for _, n := range notices {
		s.logger.Debug("operation finished",
			zap.String("op", string(n.Op)),
			zap.Stringer("status", n.Status),
			zap.String("type_error", n.TypeError))
		for _, fn := range subs {
			fn(n)
		}
	}
}
