package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/bitesofsouth/ordering-backend/pkg/redis"
	"github.com/bitesofsouth/ordering-backend/pkg/types"
)

// Store persists a session's cart as a single JSON blob.
type Store interface {
	Load(ctx context.Context, ownerID string) ([]types.CartLine, error)
	Save(ctx context.Context, ownerID string, lines []types.CartLine) error
	Clear(ctx context.Context, ownerID string) error
}

type redisStore struct {
	client *redis.Client
}

// NewRedisStore returns a cart store backed by the shared redis client.
func NewRedisStore(client *redis.Client) Store {
	return &redisStore{client: client}
}

// Load reads and sanitizes the owner's cart blob. A missing key is an empty
// cart; a blob that fails to decode is discarded rather than poisoning the
// session.
func (s *redisStore) Load(ctx context.Context, ownerID string) ([]types.CartLine, error) {
	raw, err := s.client.Get(ctx, redis.CartKey(ownerID))
	if errors.Is(err, redis.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading cart blob: %w", err)
	}

	var lines []types.CartLine
	if err := json.Unmarshal([]byte(raw), &lines); err != nil {
		return nil, nil
	}
	return SanitizeLines(lines), nil
}

func (s *redisStore) Save(ctx context.Context, ownerID string, lines []types.CartLine) error {
	blob, err := json.Marshal(lines)
	if err != nil {
		return fmt.Errorf("encoding cart blob: %w", err)
	}
	return s.client.Set(ctx, redis.CartKey(ownerID), blob, 0)
}

func (s *redisStore) Clear(ctx context.Context, ownerID string) error {
	return s.client.Del(ctx, redis.CartKey(ownerID))
}

// SanitizeLines coerces missing or malformed fields to safe defaults instead
// of rejecting the whole cart.
func SanitizeLines(lines []types.CartLine) []types.CartLine {
	out := make([]types.CartLine, 0, len(lines))
	for _, line := range lines {
		out = append(out, SanitizeLine(line))
	}
	return out
}

// SanitizeLine fills defaults for one line: unknown id, zero price, quantity
// one, the default preparation time, not redeemed.
func SanitizeLine(line types.CartLine) types.CartLine {
	if line.ID == "" {
		line.ID = "unknown"
	}
	if line.Title == "" {
		line.Title = "Unknown"
	}
	if line.UnitPricePaise < 0 {
		line.UnitPricePaise = 0
	}
	if line.Quantity <= 0 {
		line.Quantity = 1
	}
	if line.MakingTimeMinutes <= 0 {
		line.MakingTimeMinutes = types.DefaultMakingTimeMinutes
	}
	if !line.IsRedeemed {
		line.RequiredPoints = 0
	}
	return line
}
