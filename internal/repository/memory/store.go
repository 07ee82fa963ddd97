// Package memory is an in-process repository.Store used for local runs and
// engine tests. A single mutex serializes writers; WithTx works on a copy of
// the data and swaps it in on commit, so a failed unit of work leaves no trace.
package memory

import (
	"context"
	"maps"
	"sort"
	"sync"
	"time"

	"toolshare-backend/internal/domain"
	"toolshare-backend/internal/repository"
)

type state struct {
	tools         map[int32]domain.Tool
	requests      map[int32]domain.BorrowRequest
	nextToolID    int32
	nextRequestID int32
}

func newState() *state {
	return &state{
		tools:    make(map[int32]domain.Tool),
		requests: make(map[int32]domain.BorrowRequest),
	}
}

func (s *state) clone() *state {
	return &state{
		tools:         maps.Clone(s.tools),
		requests:      maps.Clone(s.requests),
		nextToolID:    s.nextToolID,
		nextRequestID: s.nextRequestID,
	}
}

type Store struct {
	mu    sync.Mutex
	state *state
	now   func() time.Time
}

func NewStore() *Store {
	return &Store{
		state: newState(),
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// session is a view over either the live state (taking the lock per call)
// or a transaction's private copy (lock already held by WithTx).
type session struct {
	store *Store
	tx    *state
}

func (s session) do(fn func(st *state) error) error {
	if s.tx != nil {
		return fn(s.tx)
	}
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	return fn(s.store.state)
}

func (s session) Tools() repository.ToolRepository {
	return &toolRepository{s}
}

func (s session) BorrowRequests() repository.BorrowRequestRepository {
	return &borrowRequestRepository{s}
}

func (s *Store) Tools() repository.ToolRepository {
	return session{store: s}.Tools()
}

func (s *Store) BorrowRequests() repository.BorrowRequestRepository {
	return session{store: s}.BorrowRequests()
}

func (s *Store) Ping(ctx context.Context) error {
	return ctx.Err()
}

// WithTx holds the store lock for the whole of fn. fn must only use the
// repositories it is handed; calling back into s would deadlock.
func (s *Store) WithTx(ctx context.Context, fn func(ctx context.Context, tx repository.Repositories) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	work := s.state.clone()
	if err := fn(ctx, session{store: s, tx: work}); err != nil {
		return err
	}
	s.state = work
	return nil
}

type toolRepository struct {
	session
}

func (r *toolRepository) Create(ctx context.Context, t *domain.Tool) error {
	return r.do(func(st *state) error {
		st.nextToolID++
		now := r.store.now()
		t.ID = st.nextToolID
		t.CreatedAt = now
		t.UpdatedAt = now
		st.tools[t.ID] = *t
		return nil
	})
}

func (r *toolRepository) GetByID(ctx context.Context, id int32) (*domain.Tool, error) {
	var out *domain.Tool
	err := r.do(func(st *state) error {
		t, ok := st.tools[id]
		if !ok {
			return domain.NotFoundError("tool %d not found", id)
		}
		out = &t
		return nil
	})
	return out, err
}

// GetForUpdate needs no extra locking: transactions already hold the store mutex.
func (r *toolRepository) GetForUpdate(ctx context.Context, id int32) (*domain.Tool, error) {
	return r.GetByID(ctx, id)
}

func (r *toolRepository) Update(ctx context.Context, t *domain.Tool) error {
	return r.do(func(st *state) error {
		cur, ok := st.tools[t.ID]
		if !ok || cur.IsDeleted() {
			return domain.NotFoundError("tool %d not found", t.ID)
		}
		cur.Name = t.Name
		cur.Description = t.Description
		cur.Address = t.Address
		cur.Lat = t.Lat
		cur.Lng = t.Lng
		cur.IconKey = t.IconKey
		cur.UpdatedAt = r.store.now()
		st.tools[t.ID] = cur
		t.UpdatedAt = cur.UpdatedAt
		return nil
	})
}

func (r *toolRepository) SetAvailability(ctx context.Context, id int32, available bool, activeRequestID *int32) error {
	return r.do(func(st *state) error {
		cur, ok := st.tools[id]
		if !ok {
			return domain.NotFoundError("tool %d not found", id)
		}
		cur.IsAvailable = available
		cur.ActiveRequestID = nil
		if activeRequestID != nil {
			v := *activeRequestID
			cur.ActiveRequestID = &v
		}
		cur.UpdatedAt = r.store.now()
		st.tools[id] = cur
		return nil
	})
}

func (r *toolRepository) Delete(ctx context.Context, id int32) error {
	return r.do(func(st *state) error {
		cur, ok := st.tools[id]
		if !ok || cur.IsDeleted() {
			return domain.NotFoundError("tool %d not found", id)
		}
		now := r.store.now()
		cur.DeletedAt = &now
		st.tools[id] = cur
		return nil
	})
}

func (r *toolRepository) List(ctx context.Context) ([]domain.Tool, error) {
	return r.filter(func(t domain.Tool) bool { return true })
}

func (r *toolRepository) ListByOwner(ctx context.Context, ownerID int32) ([]domain.Tool, error) {
	return r.filter(func(t domain.Tool) bool { return t.OwnerID == ownerID })
}

func (r *toolRepository) filter(keep func(domain.Tool) bool) ([]domain.Tool, error) {
	var out []domain.Tool
	err := r.do(func(st *state) error {
		for _, t := range st.tools {
			if !t.IsDeleted() && keep(t) {
				out = append(out, t)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, err
}

type borrowRequestRepository struct {
	session
}

// checkUnique mirrors the partial unique indexes of the Postgres schema.
func checkUnique(st *state, br domain.BorrowRequest) error {
	for _, other := range st.requests {
		if other.ID == br.ID || other.ToolID != br.ToolID {
			continue
		}
		if br.Status.IsActive() && other.Status.IsActive() {
			return domain.ConflictError("tool already has an active loan")
		}
		if br.Status.IsInFlight() && other.Status.IsInFlight() && other.BorrowerID == br.BorrowerID {
			return domain.ConflictError("borrower already has an open request for this tool")
		}
	}
	return nil
}

func (r *borrowRequestRepository) Create(ctx context.Context, br *domain.BorrowRequest) error {
	return r.do(func(st *state) error {
		if err := checkUnique(st, *br); err != nil {
			return err
		}
		st.nextRequestID++
		now := r.store.now()
		br.ID = st.nextRequestID
		br.CreatedAt = now
		br.UpdatedAt = now
		st.requests[br.ID] = *br
		return nil
	})
}

func (r *borrowRequestRepository) GetByID(ctx context.Context, id int32) (*domain.BorrowRequest, error) {
	var out *domain.BorrowRequest
	err := r.do(func(st *state) error {
		br, ok := st.requests[id]
		if !ok {
			return domain.NotFoundError("borrow request %d not found", id)
		}
		out = &br
		return nil
	})
	return out, err
}

func (r *borrowRequestRepository) UpdateStatus(ctx context.Context, id int32, from, to domain.RequestStatus) (*domain.BorrowRequest, error) {
	var out *domain.BorrowRequest
	err := r.do(func(st *state) error {
		br, ok := st.requests[id]
		if !ok {
			return domain.NotFoundError("borrow request %d not found", id)
		}
		if br.Status != from {
			return domain.StateError("borrow request %d is %s, expected %s", id, br.Status, from)
		}
		br.Status = to
		if err := checkUnique(st, br); err != nil {
			return err
		}
		br.UpdatedAt = r.store.now()
		st.requests[id] = br
		out = &br
		return nil
	})
	return out, err
}

func (r *borrowRequestRepository) FindActiveByTool(ctx context.Context, toolID int32) (*domain.BorrowRequest, error) {
	return r.first(func(br domain.BorrowRequest) bool {
		return br.ToolID == toolID && br.Status.IsActive()
	})
}

func (r *borrowRequestRepository) FindInFlight(ctx context.Context, toolID, borrowerID int32) (*domain.BorrowRequest, error) {
	return r.first(func(br domain.BorrowRequest) bool {
		return br.ToolID == toolID && br.BorrowerID == borrowerID && br.Status.IsInFlight()
	})
}

func (r *borrowRequestRepository) first(match func(domain.BorrowRequest) bool) (*domain.BorrowRequest, error) {
	var out *domain.BorrowRequest
	err := r.do(func(st *state) error {
		for _, br := range st.requests {
			if match(br) {
				found := br
				out = &found
				return nil
			}
		}
		return nil
	})
	return out, err
}

func (r *borrowRequestRepository) CountPendingByTool(ctx context.Context, toolID int32) (int, error) {
	reqs, err := r.filter(func(br domain.BorrowRequest) bool {
		return br.ToolID == toolID && br.Status == domain.RequestStatusPending
	})
	return len(reqs), err
}

func (r *borrowRequestRepository) ListByOwner(ctx context.Context, ownerID int32) ([]domain.BorrowRequest, error) {
	return r.newestFirst(func(br domain.BorrowRequest) bool { return br.OwnerID == ownerID })
}

func (r *borrowRequestRepository) ListByBorrower(ctx context.Context, borrowerID int32) ([]domain.BorrowRequest, error) {
	return r.newestFirst(func(br domain.BorrowRequest) bool { return br.BorrowerID == borrowerID })
}

func (r *borrowRequestRepository) ListByTool(ctx context.Context, toolID int32) ([]domain.BorrowRequest, error) {
	return r.newestFirst(func(br domain.BorrowRequest) bool { return br.ToolID == toolID })
}

func (r *borrowRequestRepository) ListActive(ctx context.Context) ([]domain.BorrowRequest, error) {
	reqs, err := r.filter(func(br domain.BorrowRequest) bool { return br.Status.IsActive() })
	sort.Slice(reqs, func(i, j int) bool {
		if !reqs[i].DueDate.Equal(reqs[j].DueDate) {
			return reqs[i].DueDate.Before(reqs[j].DueDate)
		}
		return reqs[i].ID < reqs[j].ID
	})
	return reqs, err
}

func (r *borrowRequestRepository) newestFirst(keep func(domain.BorrowRequest) bool) ([]domain.BorrowRequest, error) {
	reqs, err := r.filter(keep)
	// IDs are assigned in creation order.
	sort.Slice(reqs, func(i, j int) bool { return reqs[i].ID > reqs[j].ID })
	return reqs, err
}

func (r *borrowRequestRepository) filter(keep func(domain.BorrowRequest) bool) ([]domain.BorrowRequest, error) {
	var out []domain.BorrowRequest
	err := r.do(func(st *state) error {
		for _, br := range st.requests {
			if keep(br) {
				out = append(out, br)
			}
		}
		return nil
	})
	return out, err
}
