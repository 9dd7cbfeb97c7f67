package checkout

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/bitesofsouth/ordering-backend/internal/cart"
	"github.com/bitesofsouth/ordering-backend/internal/coupons"
	"github.com/bitesofsouth/ordering-backend/internal/orders"
	"github.com/bitesofsouth/ordering-backend/internal/pricing"
	"github.com/bitesofsouth/ordering-backend/internal/rewards"
	"github.com/bitesofsouth/ordering-backend/pkg/db/models"
	"github.com/bitesofsouth/ordering-backend/pkg/enums"
	pkgerrors "github.com/bitesofsouth/ordering-backend/pkg/errors"
	"github.com/bitesofsouth/ordering-backend/pkg/logger"
	"github.com/bitesofsouth/ordering-backend/pkg/metrics"
	"github.com/bitesofsouth/ordering-backend/pkg/payments/razorpay"
	"github.com/bitesofsouth/ordering-backend/pkg/types"
)

const (
	// MsgEmptyCart is returned when checkout is attempted with nothing in
	// the cart.
	MsgEmptyCart = "Your cart is empty."
	// MsgMissingTableNumber is returned for dine-in orders without a table.
	MsgMissingTableNumber = "Please select your table number."

	defaultInstructions = "No instructions provided"
)

// Gateway is the payment-gateway surface checkout depends on.
type Gateway interface {
	CreateOrder(ctx context.Context, amountPaise int64, receipt string) (*razorpay.GatewayOrder, error)
	VerifyConfirmation(conf razorpay.Confirmation) error
	Currency() string
}

// Transactor runs a function inside a database transaction.
type Transactor interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Quote is a priced view of the cart, optionally with a coupon applied.
type Quote struct {
	Lines  []types.CartLine    `json:"lines"`
	Totals pricing.Totals      `json:"totals"`
	Coupon *coupons.Evaluation `json:"coupon,omitempty"`
}

// Input carries everything the storefront submits to place an order.
type Input struct {
	UserID       string
	DineIn       bool
	TableNo      string
	Instructions string
	CouponCode   string
	Confirmation razorpay.Confirmation
}

// Service prices carts and turns paid carts into orders. Placing an order is
// a single transaction: the reward debit and the order insert commit or roll
// back together, so a failed debit can never leave a paid order behind and a
// second checkout can never spend the same points twice.
type Service interface {
	QuoteCart(ctx context.Context, ownerID, couponCode string) (*Quote, error)
	// CreatePaymentOrder registers the cart's grand total with the payment
	// gateway and returns the gateway order the hosted widget needs.
	CreatePaymentOrder(ctx context.Context, ownerID, couponCode string) (*razorpay.GatewayOrder, error)
	Checkout(ctx context.Context, input Input) (*orders.View, error)
}

type service struct {
	carts      cart.Service
	coupons    coupons.Service
	rewards    rewards.Service
	ordersRepo orders.Repository
	tx         Transactor
	gateway    Gateway
	metrics    *metrics.CheckoutMetrics
	log        *logger.Logger
	now        func() time.Time
}

// Deps bundles the collaborators NewService needs.
type Deps struct {
	Carts      cart.Service
	Coupons    coupons.Service
	Rewards    rewards.Service
	OrdersRepo orders.Repository
	Tx         Transactor
	Gateway    Gateway
	Metrics    *metrics.CheckoutMetrics
	Log        *logger.Logger
}

// NewService wires the checkout service.
func NewService(deps Deps) (Service, error) {
	if deps.Carts == nil {
		return nil, fmt.Errorf("cart service required")
	}
	if deps.Coupons == nil {
		return nil, fmt.Errorf("coupon service required")
	}
	if deps.Rewards == nil {
		return nil, fmt.Errorf("rewards service required")
	}
	if deps.OrdersRepo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if deps.Tx == nil {
		return nil, fmt.Errorf("transactor required")
	}
	if deps.Gateway == nil {
		return nil, fmt.Errorf("payment gateway required")
	}
	if deps.Log == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		carts:      deps.Carts,
		coupons:    deps.Coupons,
		rewards:    deps.Rewards,
		ordersRepo: deps.OrdersRepo,
		tx:         deps.Tx,
		gateway:    deps.Gateway,
		metrics:    deps.Metrics,
		log:        deps.Log,
		now:        time.Now,
	}, nil
}

func (s *service) QuoteCart(ctx context.Context, ownerID, couponCode string) (*Quote, error) {
	lines, err := s.carts.Get(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	quote := &Quote{Lines: lines}

	var discount int64
	if strings.TrimSpace(couponCode) != "" {
		itemTotal := pricing.Quote(lines, 0).ItemTotalPaise
		eval, err := s.coupons.Apply(ctx, couponCode, itemTotal)
		if err != nil {
			return nil, err
		}
		quote.Coupon = &eval
		if eval.Applied {
			discount = eval.DiscountPaise
		}
	}

	quote.Totals = pricing.Quote(lines, discount)
	return quote, nil
}

func (s *service) CreatePaymentOrder(ctx context.Context, ownerID, couponCode string) (*razorpay.GatewayOrder, error) {
	quote, err := s.QuoteCart(ctx, ownerID, couponCode)
	if err != nil {
		return nil, err
	}
	if err := validateLines(quote.Lines); err != nil {
		return nil, err
	}
	if quote.Totals.GrandTotalPaise <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "no payment is required for this order")
	}

	order, err := s.gateway.CreateOrder(ctx, quote.Totals.GrandTotalPaise, uuid.NewString())
	if err != nil {
		return nil, err
	}
	return order, nil
}

func (s *service) Checkout(ctx context.Context, input Input) (*orders.View, error) {
	view, err := s.checkout(ctx, input)
	if err != nil {
		s.metrics.IncFailure(string(pkgerrors.CodeOf(err)))
		return nil, err
	}
	return view, nil
}

func (s *service) checkout(ctx context.Context, input Input) (*orders.View, error) {
	lines, err := s.carts.Get(ctx, input.UserID)
	if err != nil {
		return nil, err
	}
	if err := validateLines(lines); err != nil {
		return nil, err
	}
	if input.DineIn && strings.TrimSpace(input.TableNo) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeMissingTableNumber, MsgMissingTableNumber)
	}

	var (
		discount   int64
		couponCode *string
	)
	if strings.TrimSpace(input.CouponCode) != "" {
		itemTotal := pricing.Quote(lines, 0).ItemTotalPaise
		eval, err := s.coupons.Apply(ctx, input.CouponCode, itemTotal)
		if err != nil {
			return nil, err
		}
		if eval.Applied {
			discount = eval.DiscountPaise
			couponCode = &eval.Code
		}
	}
	totals := pricing.Quote(lines, discount)

	// A cart covered entirely by redeemed rewards has nothing to pay, so
	// there is no gateway round trip to verify; the order stands on the
	// point debit alone.
	paid := totals.GrandTotalPaise > 0 || !hasRedeemedLine(lines)
	if paid {
		if err := s.gateway.VerifyConfirmation(input.Confirmation); err != nil {
			return nil, err
		}
	}

	points := s.rewards.PointsToDeduct(lines)
	order := s.buildOrder(input, lines, totals, couponCode, paid)

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if points > 0 {
			if err := s.rewards.DebitTx(ctx, tx, input.UserID, points); err != nil {
				return err
			}
		}
		return s.ordersRepo.Create(ctx, tx, order)
	})
	if err != nil {
		return nil, err
	}

	s.metrics.ObserveOrder(order.DineIn, order.TotalPaise, points)

	// The order is committed; a cart that fails to clear is an annoyance,
	// not a reason to fail the checkout.
	if err := s.carts.Clear(ctx, input.UserID); err != nil {
		s.log.Error(ctx, "clearing cart after checkout", err)
	}

	ctx = s.log.WithOrderID(ctx, order.ID.String())
	s.log.Info(ctx, "order placed")
	return orders.Project(order, orders.TrackView), nil
}

func (s *service) buildOrder(input Input, lines []types.CartLine, totals pricing.Totals, couponCode *string, paid bool) *models.Order {
	totalQuantity := 0
	orderMakingTime := 0
	for _, line := range lines {
		totalQuantity += line.Quantity
		if line.MakingTimeMinutes > orderMakingTime {
			orderMakingTime = line.MakingTimeMinutes
		}
	}

	instructions := strings.TrimSpace(input.Instructions)
	if instructions == "" {
		instructions = defaultInstructions
	}

	var tableNo *string
	if input.DineIn {
		table := strings.TrimSpace(input.TableNo)
		tableNo = &table
	}

	now := s.now().UTC()
	order := &models.Order{
		ID:                uuid.New(),
		UserID:            input.UserID,
		OrderStatus:       enums.OrderStatusPending,
		PendingStatus:     "25",
		PaymentStatus:     enums.PaymentStatusNotRequired,
		TotalPaise:        totals.GrandTotalPaise,
		DineIn:            input.DineIn,
		TableNo:           tableNo,
		Instructions:      instructions,
		CouponCode:        couponCode,
		DiscountPaise:     totals.DiscountPaise,
		MakingTimeMinutes: orderMakingTime,
		PaymentCurrency:   s.gateway.Currency(),
		PaymentTimestamp:  now,
	}
	if paid {
		order.PaymentStatus = enums.PaymentStatusPaid
		order.PaymentID = input.Confirmation.PaymentID
		order.PaymentOrderID = input.Confirmation.OrderID
		order.PaymentAmount = totals.GrandTotalPaise
		order.PaymentCaptured = true
	}
	for _, line := range lines {
		order.Items = append(order.Items, models.OrderItem{
			ID:                uuid.New(),
			OrderID:           order.ID,
			ItemID:            line.ID,
			Name:              line.Title,
			UnitPricePaise:    line.UnitPricePaise,
			Quantity:          line.Quantity,
			MakingTimeMinutes: shareOfMakingTime(line.MakingTimeMinutes, totalQuantity),
			IsRedeemed:        line.IsRedeemed,
			RequiredPoints:    line.RequiredPoints,
		})
	}
	return order
}

// shareOfMakingTime spreads a line's preparation time across the whole
// order's quantity, mirroring how the kitchen batches work.
func shareOfMakingTime(makingTimeMinutes, totalQuantity int) int {
	if totalQuantity <= 0 {
		return makingTimeMinutes
	}
	return int(math.Round(float64(makingTimeMinutes) / float64(totalQuantity)))
}

func hasRedeemedLine(lines []types.CartLine) bool {
	for _, line := range lines {
		if line.IsRedeemed {
			return true
		}
	}
	return false
}

func validateLines(lines []types.CartLine) error {
	if len(lines) == 0 {
		return pkgerrors.New(pkgerrors.CodeEmptyCart, MsgEmptyCart)
	}
	for _, line := range lines {
		if line.ID == "" || strings.TrimSpace(line.Title) == "" {
			return pkgerrors.New(pkgerrors.CodeInvalidCartItem, fmt.Sprintf("cart item %q is missing its id or title", line.Title))
		}
		if !line.Countable() {
			return pkgerrors.New(pkgerrors.CodeInvalidCartItem, fmt.Sprintf("cart item %q is not orderable", line.Title))
		}
	}
	return nil
}
