package coupons

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/bitesofsouth/ordering-backend/internal/pricing"
	"github.com/bitesofsouth/ordering-backend/pkg/db/models"
	"github.com/bitesofsouth/ordering-backend/pkg/enums"
	pkgerrors "github.com/bitesofsouth/ordering-backend/pkg/errors"
)

// User-facing evaluation messages.
const (
	MsgEnterCode        = "Please enter a coupon code."
	MsgInvalidOrExpired = "Invalid or expired coupon code."
	MsgDiscountCapped   = "Discount cannot exceed subtotal."
)

// Evaluation is the outcome of applying a coupon code against a subtotal.
// A zero DiscountPaise with Applied false means the displayed discount was
// reset.
type Evaluation struct {
	Code          string `json:"code,omitempty"`
	Applied       bool   `json:"applied"`
	Capped        bool   `json:"capped"`
	DiscountPaise int64  `json:"discount_paise"`
	Message       string `json:"message"`
}

// Service evaluates coupon codes.
type Service interface {
	ListAvailable(ctx context.Context) ([]models.Coupon, error)
	Apply(ctx context.Context, code string, itemTotalPaise int64) (Evaluation, error)
}

type service struct {
	repo Repository
	now  func() time.Time
}

// NewService wires a coupon service with the provided repository.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("coupon repository required")
	}
	return &service{repo: repo, now: time.Now}, nil
}

// ListAvailable returns the coupons usable right now. On a store failure the
// list degrades to empty and the error is reported to the caller.
func (s *service) ListAvailable(ctx context.Context) ([]models.Coupon, error) {
	coupons, err := s.repo.ListAvailable(ctx, s.now())
	if err != nil {
		return []models.Coupon{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "listing coupons")
	}
	return coupons, nil
}

// Apply matches the code case-insensitively against the usable coupons and
// computes the discount for the given subtotal. Only evaluation outcomes are
// encoded in the returned Evaluation; the error is reserved for store
// failures.
func (s *service) Apply(ctx context.Context, code string, itemTotalPaise int64) (Evaluation, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return Evaluation{Message: MsgEnterCode}, nil
	}

	coupon, err := s.repo.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Evaluation{Message: MsgInvalidOrExpired}, nil
		}
		return Evaluation{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "looking up coupon")
	}
	if !coupon.Usable(s.now()) {
		return Evaluation{Message: MsgInvalidOrExpired}, nil
	}

	discount := discountFor(coupon, itemTotalPaise)
	if discount >= itemTotalPaise {
		return Evaluation{
			Code:          coupon.Code,
			Applied:       true,
			Capped:        true,
			DiscountPaise: pricing.ClampDiscount(discount, itemTotalPaise),
			Message:       MsgDiscountCapped,
		}, nil
	}

	return Evaluation{
		Code:          coupon.Code,
		Applied:       true,
		DiscountPaise: discount,
		Message:       fmt.Sprintf("Coupon %q applied! Saved ₹%s", coupon.Code, rupees(discount)),
	}, nil
}

func discountFor(coupon *models.Coupon, itemTotalPaise int64) int64 {
	switch coupon.DiscountType {
	case enums.DiscountTypePercentage:
		return decimal.NewFromInt(itemTotalPaise).
			Mul(coupon.Value).
			Div(decimal.NewFromInt(100)).
			Round(0).
			IntPart()
	case enums.DiscountTypeFlat:
		// Coupon values are stored in rupees.
		return coupon.Value.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
	default:
		return 0
	}
}

func rupees(paise int64) string {
	return decimal.NewFromInt(paise).Div(decimal.NewFromInt(100)).StringFixed(2)
}
