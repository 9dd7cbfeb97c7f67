package rewards

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/bitesofsouth/ordering-backend/internal/cart"
	"github.com/bitesofsouth/ordering-backend/internal/menu"
	"github.com/bitesofsouth/ordering-backend/pkg/db/models"
	pkgerrors "github.com/bitesofsouth/ordering-backend/pkg/errors"
	"github.com/bitesofsouth/ordering-backend/pkg/logger"
	"github.com/bitesofsouth/ordering-backend/pkg/types"
)

const (
	// MsgSignInToRedeem is returned when a guest tries to redeem a reward.
	MsgSignInToRedeem = "Please sign in to redeem rewards."
	// MsgNotEnoughPoints is returned when the wallet balance does not cover
	// the reward.
	MsgNotEnoughPoints = "You don't have enough points for this reward."
)

// RewardView is a reward definition joined with its menu items, shaped for
// the storefront rewards page.
type RewardView struct {
	ID             string       `json:"id"`
	Name           string       `json:"name"`
	RequiredPoints int          `json:"required_points"`
	Items          []RewardDish `json:"items"`
}

// RewardDish is the slice of a menu item a reward view needs.
type RewardDish struct {
	ID                string `json:"id"`
	Name              string `json:"name"`
	ImageURL          string `json:"image_url"`
	MakingTimeMinutes int    `json:"making_time_minutes"`
}

// Catalog is the rewards page payload: redeemable bundles plus the caller's
// current balance.
type Catalog struct {
	Rewards []RewardView `json:"rewards"`
	Balance int          `json:"balance"`
}

// Service owns the loyalty wallet and the redemption flow. Points are only
// debited inside the checkout transaction; the pre-checkout Redeem call
// verifies the balance and places the reward line without spending anything.
type Service interface {
	Catalog(ctx context.Context, userID string) (*Catalog, error)
	Balance(ctx context.Context, userID string) (int, error)
	Redeem(ctx context.Context, userID, rewardID string) ([]types.CartLine, error)
	// PointsToDeduct sums requiredPoints*quantity over redeemed lines.
	PointsToDeduct(lines []types.CartLine) int
	// DebitTx decrements the wallet on the given transaction handle. Callers
	// must have verified the debt with PointsToDeduct; a zero debt is a
	// no-op, and a missing wallet row is logged and skipped rather than
	// blocking the transaction.
	DebitTx(ctx context.Context, tx *gorm.DB, userID string, points int) error
}

type service struct {
	repo  Repository
	menu  menu.Repository
	carts cart.Service
	log   *logger.Logger
}

// NewService wires the rewards service.
func NewService(repo Repository, menuRepo menu.Repository, carts cart.Service, log *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("rewards repository required")
	}
	if menuRepo == nil {
		return nil, fmt.Errorf("menu repository required")
	}
	if carts == nil {
		return nil, fmt.Errorf("cart service required")
	}
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, menu: menuRepo, carts: carts, log: log}, nil
}

func (s *service) Catalog(ctx context.Context, userID string) (*Catalog, error) {
	rewards, err := s.repo.ListRewards(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing rewards")
	}

	balance, err := s.Balance(ctx, userID)
	if err != nil {
		return nil, err
	}

	catalog := &Catalog{Rewards: []RewardView{}, Balance: balance}
	for _, reward := range rewards {
		view, err := s.buildView(ctx, reward)
		if err != nil {
			return nil, err
		}
		if len(view.Items) == 0 {
			// Every referenced dish is gone; hide the reward rather than
			// render an empty bundle.
			s.log.Warn(ctx, fmt.Sprintf("reward %s references no existing menu items", reward.ID))
			continue
		}
		catalog.Rewards = append(catalog.Rewards, view)
	}
	return catalog, nil
}

func (s *service) buildView(ctx context.Context, reward models.Reward) (RewardView, error) {
	view := RewardView{
		ID:             reward.ID.String(),
		Name:           reward.Name,
		RequiredPoints: reward.RequiredPoints,
		Items:          []RewardDish{},
	}
	items, err := s.menu.FindByIDs(ctx, reward.MenuItemIDs)
	if err != nil {
		return view, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading reward menu items")
	}
	for _, item := range items {
		view.Items = append(view.Items, RewardDish{
			ID:                item.ID.String(),
			Name:              item.Name,
			ImageURL:          item.ImageURL,
			MakingTimeMinutes: item.MakingTimeMinutes,
		})
	}
	return view, nil
}

// Balance returns the wallet balance. Guests and users without a wallet row
// have a zero balance; neither is an error.
func (s *service) Balance(ctx context.Context, userID string) (int, error) {
	if userID == "" || userID == models.GuestUserID {
		return 0, nil
	}
	wallet, err := s.repo.FindWallet(ctx, nil, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.log.Warn(ctx, fmt.Sprintf("no reward wallet for user %s, treating balance as zero", userID))
			return 0, nil
		}
		return 0, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading reward wallet")
	}
	return wallet.RewardPoints, nil
}

// Redeem places a reward as a zero-priced cart line. The reward's making
// time is the slowest of its dishes, its image the first dish's image. The
// wallet is not touched here.
func (s *service) Redeem(ctx context.Context, userID, rewardID string) ([]types.CartLine, error) {
	if userID == "" || userID == models.GuestUserID {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, MsgSignInToRedeem)
	}

	reward, err := s.repo.FindReward(ctx, rewardID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "reward not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading reward")
	}

	balance, err := s.Balance(ctx, userID)
	if err != nil {
		return nil, err
	}
	if balance < reward.RequiredPoints {
		return nil, pkgerrors.New(pkgerrors.CodeInsufficientPoints, MsgNotEnoughPoints)
	}

	items, err := s.menu.FindByIDs(ctx, reward.MenuItemIDs)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading reward menu items")
	}

	line := types.CartLine{
		ID:                reward.ID.String(),
		Title:             reward.Name,
		UnitPricePaise:    0,
		Quantity:          1,
		MakingTimeMinutes: types.DefaultMakingTimeMinutes,
		IsRedeemed:        true,
		RequiredPoints:    reward.RequiredPoints,
	}
	for i, item := range items {
		if i == 0 {
			line.Image = item.ImageURL
		}
		if item.MakingTimeMinutes > line.MakingTimeMinutes {
			line.MakingTimeMinutes = item.MakingTimeMinutes
		}
	}

	return s.carts.Add(ctx, userID, line)
}

func (s *service) PointsToDeduct(lines []types.CartLine) int {
	total := 0
	for _, line := range lines {
		if !line.IsRedeemed {
			continue
		}
		total += line.RequiredPoints * line.Quantity
	}
	return total
}

func (s *service) DebitTx(ctx context.Context, tx *gorm.DB, userID string, points int) error {
	if points <= 0 {
		return nil
	}
	if userID == "" || userID == models.GuestUserID {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, MsgSignInToRedeem)
	}
	ok, err := s.repo.DebitPoints(ctx, tx, userID, points)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "debiting reward points")
	}
	if !ok {
		// A user without a wallet row is an anomaly, not a blocker: log it
		// and let the order through with nothing deducted. Only a wallet
		// that exists but cannot cover the debt fails the checkout.
		if _, werr := s.repo.FindWallet(ctx, tx, userID); werr != nil {
			if errors.Is(werr, gorm.ErrRecordNotFound) {
				s.log.Warn(ctx, fmt.Sprintf("no reward wallet for user %s at checkout, skipping debit", userID))
				return nil
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, werr, "loading reward wallet")
		}
		return pkgerrors.New(pkgerrors.CodeInsufficientPoints, MsgNotEnoughPoints)
	}
	return nil
}
