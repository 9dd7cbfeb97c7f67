package cart

import (
	"context"
	"fmt"
	"sync"

	pkgerrors "github.com/bitesofsouth/ordering-backend/pkg/errors"
	"github.com/bitesofsouth/ordering-backend/pkg/types"
)

// Service owns cart mutation rules. Mutations for one owner are serialized:
// each fully persists before the next is accepted.
type Service interface {
	Get(ctx context.Context, ownerID string) ([]types.CartLine, error)
	Add(ctx context.Context, ownerID string, line types.CartLine) ([]types.CartLine, error)
	ChangeQuantity(ctx context.Context, ownerID, lineID string, delta int) ([]types.CartLine, error)
	Clear(ctx context.Context, ownerID string) error
}

type service struct {
	store Store

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewService wires a cart service over the provided store.
func NewService(store Store) (Service, error) {
	if store == nil {
		return nil, fmt.Errorf("cart store required")
	}
	return &service{store: store, locks: map[string]*sync.Mutex{}}, nil
}

func (s *service) ownerLock(ownerID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.locks[ownerID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[ownerID] = lock
	}
	return lock
}

func (s *service) Get(ctx context.Context, ownerID string) ([]types.CartLine, error) {
	return s.store.Load(ctx, ownerID)
}

// Add merges quantity when a non-redeemed line with the same id exists.
// A redeemed line that is already present is rejected so a reward cannot be
// stacked.
func (s *service) Add(ctx context.Context, ownerID string, line types.CartLine) ([]types.CartLine, error) {
	lock := s.ownerLock(ownerID)
	lock.Lock()
	defer lock.Unlock()

	line = SanitizeLine(line)

	lines, err := s.store.Load(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	merged := false
	for i := range lines {
		if lines[i].ID != line.ID {
			continue
		}
		if lines[i].IsRedeemed || line.IsRedeemed {
			return lines, pkgerrors.New(pkgerrors.CodeConflict, "This reward is already in your cart!")
		}
		lines[i].Quantity += line.Quantity
		merged = true
		break
	}
	if !merged {
		lines = append(lines, line)
	}

	if err := s.store.Save(ctx, ownerID, lines); err != nil {
		return nil, err
	}
	return lines, nil
}

// ChangeQuantity adjusts a line by delta. Redeemed lines are immutable and
// the call is a no-op for them; a resulting quantity of zero or less removes
// the line entirely.
func (s *service) ChangeQuantity(ctx context.Context, ownerID, lineID string, delta int) ([]types.CartLine, error) {
	lock := s.ownerLock(ownerID)
	lock.Lock()
	defer lock.Unlock()

	lines, err := s.store.Load(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	changed := false
	out := lines[:0]
	for _, line := range lines {
		if line.ID != lineID {
			out = append(out, line)
			continue
		}
		if line.IsRedeemed {
			out = append(out, line)
			continue
		}
		line.Quantity += delta
		changed = true
		if line.Quantity > 0 {
			out = append(out, line)
		}
	}

	if !changed {
		return out, nil
	}
	if err := s.store.Save(ctx, ownerID, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *service) Clear(ctx context.Context, ownerID string) error {
	lock := s.ownerLock(ownerID)
	lock.Lock()
	defer lock.Unlock()
	return s.store.Clear(ctx, ownerID)
}
