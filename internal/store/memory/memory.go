// Package memory implements every bizdesk store in process memory.
// It backs unit tests and the development mode of the server.
package memory

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/bizdesk/internal/store"
	"github.com/dmitrymomot/bizdesk/pkg/payment"
	"github.com/dmitrymomot/bizdesk/pkg/principal"
	"github.com/dmitrymomot/bizdesk/pkg/subscription"
)

// Store is safe for concurrent use. A single mutex serialises every write, which also makes
// DecideRequest atomic.
type Store struct {
	mu        sync.RWMutex
	owners    map[uuid.UUID]principal.Owner
	employees map[uuid.UUID]principal.Employee
	infos     map[uuid.UUID]subscription.Info
	requests  map[uuid.UUID]payment.Request

	failInfoSave error
}

// New creates an empty Store.
func New() *Store {
	return &Store{
		owners:    make(map[uuid.UUID]principal.Owner),
		employees: make(map[uuid.UUID]principal.Employee),
		infos:     make(map[uuid.UUID]subscription.Info),
		requests:  make(map[uuid.UUID]payment.Request),
	}
}

// FailNextInfoSave makes the next subscription write return err. Used to test rollbacks.
func (s *Store) FailNextInfoSave(err error) {
	s.mu.Lock()
	s.failInfoSave = err
	s.mu.Unlock()
}

// CreateOwner stores the owner and its basic subscription with the trial starting at now.
func (s *Store) CreateOwner(_ context.Context, o *principal.Owner, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	o.Email = principal.NormalizeEmail(o.Email)
	if _, ok := s.owners[o.ID]; ok {
		return store.ErrDuplicateID
	}
	for _, existing := range s.owners {
		if existing.Email == o.Email {
			return store.ErrEmailTaken
		}
	}
	if o.CreatedAt.IsZero() {
		o.CreatedAt = now
	}
	s.owners[o.ID] = *o
	s.infos[o.ID] = subscription.NewInfo(o.ID, now)
	return nil
}

// CreateEmployee stores an employee of an existing owner.
func (s *Store) CreateEmployee(_ context.Context, e *principal.Employee) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e.Email = principal.NormalizeEmail(e.Email)
	if _, ok := s.owners[e.OwnerID]; !ok {
		return store.ErrOwnerMissing
	}
	if _, ok := s.employees[e.ID]; ok {
		return store.ErrDuplicateID
	}
	for _, existing := range s.employees {
		if existing.Email == e.Email {
			return store.ErrEmailTaken
		}
	}
	s.employees[e.ID] = *e
	return nil
}

func (s *Store) GetOwnerByEmail(_ context.Context, email string) (*principal.Owner, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, o := range s.owners {
		if o.Email == email {
			return &o, nil
		}
	}
	return nil, principal.ErrPrincipalNotFound
}

// GetOwner returns the owner by id.
func (s *Store) GetOwner(_ context.Context, id uuid.UUID) (*principal.Owner, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.owners[id]
	if !ok {
		return nil, principal.ErrPrincipalNotFound
	}
	return &o, nil
}

func (s *Store) GetEmployeeByEmail(_ context.Context, email string) (*principal.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, e := range s.employees {
		if e.Email == email {
			return &e, nil
		}
	}
	return nil, principal.ErrPrincipalNotFound
}

func (s *Store) GetInfo(_ context.Context, accountID uuid.UUID) (*subscription.Info, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	info, ok := s.infos[accountID]
	if !ok {
		return nil, subscription.ErrAccountNotFound
	}
	return &info, nil
}

func (s *Store) SaveInfo(_ context.Context, info *subscription.Info) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveInfoLocked(*info)
}

func (s *Store) saveInfoLocked(info subscription.Info) error {
	if err := s.failInfoSave; err != nil {
		s.failInfoSave = nil
		return err
	}
	if err := info.Validate(); err != nil {
		return err
	}
	current, ok := s.infos[info.AccountID]
	if !ok {
		return subscription.ErrAccountNotFound
	}
	if !current.FreeTrialStartedAt.Equal(info.FreeTrialStartedAt) {
		return subscription.ErrTrialAlreadyStarted
	}
	if current.FinishedFreeTrial {
		info.FinishedFreeTrial = true
	}
	s.infos[info.AccountID] = info
	return nil
}

// ListExpiring returns paid subscriptions whose expiration falls in [from, to).
func (s *Store) ListExpiring(_ context.Context, from, to time.Time) ([]subscription.Info, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []subscription.Info
	for _, info := range s.infos {
		if !info.Plan.IsPaid() || info.ExpirationDate == nil {
			continue
		}
		if !info.ExpirationDate.Before(from) && info.ExpirationDate.Before(to) {
			out = append(out, info)
		}
	}
	slices.SortFunc(out, func(a, b subscription.Info) int { return a.ExpirationDate.Compare(*b.ExpirationDate) })
	return out, nil
}

func (s *Store) CreateRequest(_ context.Context, req *payment.Request) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.requests[req.ID]; ok {
		return store.ErrDuplicateID
	}
	if _, ok := s.infos[req.AccountID]; !ok {
		return subscription.ErrAccountNotFound
	}
	s.requests[req.ID] = *req
	return nil
}

func (s *Store) GetRequest(_ context.Context, id uuid.UUID) (*payment.Request, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	req, ok := s.requests[id]
	if !ok {
		return nil, payment.ErrRequestNotFound
	}
	return &req, nil
}

func (s *Store) ListRequestsByAccount(_ context.Context, accountID uuid.UUID) ([]payment.Request, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []payment.Request
	for _, req := range s.requests {
		if req.AccountID == accountID {
			out = append(out, req)
		}
	}
	slices.SortFunc(out, func(a, b payment.Request) int { return b.SubmittedAt.Compare(a.SubmittedAt) })
	return out, nil
}

func (s *Store) ListRequestsByStatus(_ context.Context, status payment.Status) ([]payment.Request, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []payment.Request
	for _, req := range s.requests {
		if req.Status == status {
			out = append(out, req)
		}
	}
	slices.SortFunc(out, func(a, b payment.Request) int { return a.SubmittedAt.Compare(b.SubmittedAt) })
	return out, nil
}

func (s *Store) DecideRequest(_ context.Context, id uuid.UUID, fn payment.DecideFunc) (*payment.Request, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	req, ok := s.requests[id]
	if !ok {
		return nil, payment.ErrRequestNotFound
	}
	info, ok := s.infos[req.AccountID]
	if !ok {
		return nil, subscription.ErrAccountNotFound
	}

	updated, newInfo, err := fn(req, info)
	if err != nil {
		return nil, err
	}
	if s.requests[id].Status != req.Status {
		return nil, payment.ErrInvalidStateTransition
	}
	if newInfo != nil {
		if err := s.saveInfoLocked(*newInfo); err != nil {
			return nil, err
		}
	}
	s.requests[id] = updated
	return &updated, nil
}
