package rewards

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/bitesofsouth/ordering-backend/internal/cart"
	"github.com/bitesofsouth/ordering-backend/pkg/db/models"
	pkgerrors "github.com/bitesofsouth/ordering-backend/pkg/errors"
	"github.com/bitesofsouth/ordering-backend/pkg/logger"
	"github.com/bitesofsouth/ordering-backend/pkg/types"
)

type stubRepo struct {
	rewards map[string]models.Reward
	wallets map[string]int
}

func (s *stubRepo) ListRewards(ctx context.Context) ([]models.Reward, error) {
	out := make([]models.Reward, 0, len(s.rewards))
	for _, r := range s.rewards {
		out = append(out, r)
	}
	return out, nil
}

func (s *stubRepo) FindReward(ctx context.Context, id string) (*models.Reward, error) {
	r, ok := s.rewards[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &r, nil
}

func (s *stubRepo) FindWallet(ctx context.Context, tx *gorm.DB, userID string) (*models.RewardWallet, error) {
	balance, ok := s.wallets[userID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &models.RewardWallet{UserID: userID, RewardPoints: balance}, nil
}

func (s *stubRepo) DebitPoints(ctx context.Context, tx *gorm.DB, userID string, points int) (bool, error) {
	balance, ok := s.wallets[userID]
	if !ok || balance < points {
		return false, nil
	}
	s.wallets[userID] = balance - points
	return true, nil
}

type stubMenu struct {
	items map[string]models.MenuItem
}

func (s *stubMenu) List(ctx context.Context) ([]models.MenuItem, error) {
	return nil, nil
}

func (s *stubMenu) FindByID(ctx context.Context, id string) (*models.MenuItem, error) {
	item, ok := s.items[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &item, nil
}

func (s *stubMenu) FindByIDs(ctx context.Context, ids []string) ([]models.MenuItem, error) {
	var out []models.MenuItem
	for _, id := range ids {
		if item, ok := s.items[id]; ok {
			out = append(out, item)
		}
	}
	return out, nil
}

type stubCart struct {
	lines map[string][]types.CartLine
}

func (s *stubCart) Get(ctx context.Context, ownerID string) ([]types.CartLine, error) {
	return s.lines[ownerID], nil
}

func (s *stubCart) Add(ctx context.Context, ownerID string, line types.CartLine) ([]types.CartLine, error) {
	for _, existing := range s.lines[ownerID] {
		if existing.ID == line.ID && (existing.IsRedeemed || line.IsRedeemed) {
			return s.lines[ownerID], pkgerrors.New(pkgerrors.CodeConflict, "This reward is already in your cart!")
		}
	}
	s.lines[ownerID] = append(s.lines[ownerID], line)
	return s.lines[ownerID], nil
}

func (s *stubCart) ChangeQuantity(ctx context.Context, ownerID, lineID string, delta int) ([]types.CartLine, error) {
	return s.lines[ownerID], nil
}

func (s *stubCart) Clear(ctx context.Context, ownerID string) error {
	delete(s.lines, ownerID)
	return nil
}

func newTestService(t *testing.T, repo *stubRepo, menuStub *stubMenu, carts cart.Service) Service {
	t.Helper()
	if carts == nil {
		carts = &stubCart{lines: map[string][]types.CartLine{}}
	}
	svc, err := NewService(repo, menuStub, carts, logger.New(logger.Options{ServiceName: "test"}))
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func TestRedeemRejectsGuests(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, &stubRepo{}, &stubMenu{}, nil)

	_, err := svc.Redeem(context.Background(), models.GuestUserID, uuid.NewString())
	if !pkgerrors.Is(err, pkgerrors.CodeUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestRedeemChecksBalance(t *testing.T) {
	t.Parallel()

	rewardID := uuid.New()
	repo := &stubRepo{
		rewards: map[string]models.Reward{
			rewardID.String(): {ID: rewardID, Name: "Free Dosa", RequiredPoints: 50},
		},
		wallets: map[string]int{"user-1": 20},
	}
	svc := newTestService(t, repo, &stubMenu{}, nil)

	_, err := svc.Redeem(context.Background(), "user-1", rewardID.String())
	if !pkgerrors.Is(err, pkgerrors.CodeInsufficientPoints) {
		t.Fatalf("expected insufficient points, got %v", err)
	}
}

func TestRedeemAddsRewardLine(t *testing.T) {
	t.Parallel()

	rewardID := uuid.New()
	fastID := uuid.New()
	slowID := uuid.New()
	repo := &stubRepo{
		rewards: map[string]models.Reward{
			rewardID.String(): {
				ID:             rewardID,
				Name:           "Thali Combo",
				MenuItemIDs:    []string{fastID.String(), slowID.String()},
				RequiredPoints: 80,
			},
		},
		wallets: map[string]int{"user-1": 100},
	}
	menuStub := &stubMenu{items: map[string]models.MenuItem{
		fastID.String(): {ID: fastID, Name: "Lassi", ImageURL: "lassi.png", MakingTimeMinutes: 5},
		slowID.String(): {ID: slowID, Name: "Thali", ImageURL: "thali.png", MakingTimeMinutes: 30},
	}}
	carts := &stubCart{lines: map[string][]types.CartLine{}}
	svc := newTestService(t, repo, menuStub, carts)

	lines, err := svc.Redeem(context.Background(), "user-1", rewardID.String())
	if err != nil {
		t.Fatalf("Redeem: %v", err)
	}
	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %d", len(lines))
	}
	line := lines[0]
	if !line.IsRedeemed || line.UnitPricePaise != 0 || line.Quantity != 1 {
		t.Fatalf("unexpected reward line: %+v", line)
	}
	if line.RequiredPoints != 80 {
		t.Fatalf("expected 80 required points, got %d", line.RequiredPoints)
	}
	if line.MakingTimeMinutes != 30 {
		t.Fatalf("expected slowest dish making time 30, got %d", line.MakingTimeMinutes)
	}
	if line.Image != "lassi.png" {
		t.Fatalf("expected first dish image, got %q", line.Image)
	}

	// Balance is untouched until checkout debits it.
	if repo.wallets["user-1"] != 100 {
		t.Fatalf("redeem must not spend points, balance is %d", repo.wallets["user-1"])
	}

	if _, err := svc.Redeem(context.Background(), "user-1", rewardID.String()); !pkgerrors.Is(err, pkgerrors.CodeConflict) {
		t.Fatalf("expected conflict for duplicate reward, got %v", err)
	}
}

func TestBalanceFallsBackToZero(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, &stubRepo{wallets: map[string]int{}}, &stubMenu{}, nil)

	balance, err := svc.Balance(context.Background(), "no-wallet")
	if err != nil {
		t.Fatalf("Balance: %v", err)
	}
	if balance != 0 {
		t.Fatalf("expected zero balance, got %d", balance)
	}

	balance, err = svc.Balance(context.Background(), models.GuestUserID)
	if err != nil || balance != 0 {
		t.Fatalf("guest balance should be 0, got %d (%v)", balance, err)
	}
}

func TestPointsToDeduct(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, &stubRepo{}, &stubMenu{}, nil)

	lines := []types.CartLine{
		{ID: "a", Quantity: 2, UnitPricePaise: 10000},
		{ID: "b", Quantity: 1, IsRedeemed: true, RequiredPoints: 50},
		{ID: "c", Quantity: 2, IsRedeemed: true, RequiredPoints: 30},
	}
	if got := svc.PointsToDeduct(lines); got != 110 {
		t.Fatalf("expected 110 points, got %d", got)
	}
	if got := svc.PointsToDeduct(nil); got != 0 {
		t.Fatalf("expected 0 points for empty cart, got %d", got)
	}
}

func TestDebitTxGuardsBalance(t *testing.T) {
	t.Parallel()

	repo := &stubRepo{wallets: map[string]int{"user-1": 60}}
	svc := newTestService(t, repo, &stubMenu{}, nil)

	if err := svc.DebitTx(context.Background(), nil, "user-1", 100); !pkgerrors.Is(err, pkgerrors.CodeInsufficientPoints) {
		t.Fatalf("expected insufficient points, got %v", err)
	}
	if err := svc.DebitTx(context.Background(), nil, "user-1", 60); err != nil {
		t.Fatalf("DebitTx: %v", err)
	}
	if repo.wallets["user-1"] != 0 {
		t.Fatalf("expected drained wallet, got %d", repo.wallets["user-1"])
	}
	// Zero debt never touches the wallet, even for guests.
	if err := svc.DebitTx(context.Background(), nil, models.GuestUserID, 0); err != nil {
		t.Fatalf("zero debit should be a no-op, got %v", err)
	}
}

func TestDebitTxSkipsMissingWallet(t *testing.T) {
	t.Parallel()

	repo := &stubRepo{wallets: map[string]int{}}
	svc := newTestService(t, repo, &stubMenu{}, nil)

	// No wallet row at all: an anomaly to log, never a reason to fail.
	if err := svc.DebitTx(context.Background(), nil, "user-1", 80); err != nil {
		t.Fatalf("missing wallet should skip the debit, got %v", err)
	}
	if _, ok := repo.wallets["user-1"]; ok {
		t.Fatal("skipped debit must not create a wallet")
	}
}
