package orders

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/bitesofsouth/ordering-backend/pkg/db/models"
	"github.com/bitesofsouth/ordering-backend/pkg/enums"
	pkgerrors "github.com/bitesofsouth/ordering-backend/pkg/errors"
	"github.com/bitesofsouth/ordering-backend/pkg/logger"
	"github.com/bitesofsouth/ordering-backend/pkg/redis"
)

// Broker is the pub/sub surface the orders service needs from redis.
type Broker interface {
	Publish(ctx context.Context, channel string, payload any) error
	Subscribe(ctx context.Context, channel string) *goredis.PubSub
}

// ItemView is one order item shaped for the storefront.
type ItemView struct {
	ItemID            string `json:"item_id"`
	Name              string `json:"name"`
	UnitPricePaise    int64  `json:"unit_price_paise"`
	Quantity          int    `json:"quantity"`
	MakingTimeMinutes int    `json:"making_time_minutes"`
	IsRedeemed        bool   `json:"is_redeemed"`
}

// View is an order projected for display: raw pending status becomes a
// progress percentage plus a human status line.
type View struct {
	ID                string     `json:"id"`
	OrderStatus       string     `json:"order_status"`
	Progress          int        `json:"progress"`
	Message           string     `json:"message"`
	TotalPaise        int64      `json:"total_paise"`
	DineIn            bool       `json:"dine_in"`
	TableNo           *string    `json:"table_no,omitempty"`
	Instructions      string     `json:"instructions"`
	CouponCode        *string    `json:"coupon_code,omitempty"`
	DiscountPaise     int64      `json:"discount_paise"`
	MakingTimeMinutes int        `json:"making_time_minutes"`
	PaymentStatus     string     `json:"payment_status"`
	Items             []ItemView `json:"items"`
	CreatedAt         time.Time  `json:"created_at"`
}

// Service reads placed orders and drives their kitchen lifecycle.
type Service interface {
	Get(ctx context.Context, userID string, staff bool, orderID string) (*View, error)
	ListForUser(ctx context.Context, userID string) ([]View, error)
	// SetProgress updates the kitchen progress and broadcasts the change on
	// the order's status channel. complete also flips the order status.
	SetProgress(ctx context.Context, orderID string, progress int, complete bool) (*View, error)
	// Watch opens a live status feed for one order after an ownership check.
	Watch(ctx context.Context, userID string, staff bool, orderID string) (*Subscription, error)
}

type service struct {
	repo   Repository
	broker Broker
	log    *logger.Logger
}

// NewService wires the orders service.
func NewService(repo Repository, broker Broker, log *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if broker == nil {
		return nil, fmt.Errorf("status broker required")
	}
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, broker: broker, log: log}, nil
}

// Project shapes an order for display on the given storefront surface.
func Project(order *models.Order, surface StatusView) *View {
	progress := ProjectProgress(order.PendingStatus)
	view := &View{
		ID:                order.ID.String(),
		OrderStatus:       order.OrderStatus.String(),
		Progress:          progress,
		Message:           StatusMessage(order.DineIn, progress, surface),
		TotalPaise:        order.TotalPaise,
		DineIn:            order.DineIn,
		TableNo:           order.TableNo,
		Instructions:      order.Instructions,
		CouponCode:        order.CouponCode,
		DiscountPaise:     order.DiscountPaise,
		MakingTimeMinutes: order.MakingTimeMinutes,
		PaymentStatus:     order.PaymentStatus.String(),
		Items:             []ItemView{},
		CreatedAt:         order.CreatedAt,
	}
	for _, item := range order.Items {
		view.Items = append(view.Items, ItemView{
			ItemID:            item.ItemID,
			Name:              item.Name,
			UnitPricePaise:    item.UnitPricePaise,
			Quantity:          item.Quantity,
			MakingTimeMinutes: item.MakingTimeMinutes,
			IsRedeemed:        item.IsRedeemed,
		})
	}
	return view
}

func (s *service) load(ctx context.Context, userID string, staff bool, orderID string) (*models.Order, error) {
	id, err := uuid.Parse(orderID)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid order id")
	}
	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading order")
	}
	if !staff && order.UserID != userID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "order belongs to another user")
	}
	return order, nil
}

func (s *service) Get(ctx context.Context, userID string, staff bool, orderID string) (*View, error) {
	order, err := s.load(ctx, userID, staff, orderID)
	if err != nil {
		return nil, err
	}
	return Project(order, TrackView), nil
}

func (s *service) ListForUser(ctx context.Context, userID string) ([]View, error) {
	orders, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing orders")
	}
	views := make([]View, 0, len(orders))
	for i := range orders {
		views = append(views, *Project(&orders[i], HistoryView))
	}
	return views, nil
}

func (s *service) SetProgress(ctx context.Context, orderID string, progress int, complete bool) (*View, error) {
	id, err := uuid.Parse(orderID)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid order id")
	}
	if progress < 0 || progress > 100 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "progress must be between 0 and 100")
	}

	status := enums.OrderStatus("")
	if complete {
		status = enums.OrderStatusCompleted
		progress = 100
	} else if progress > 0 {
		status = enums.OrderStatusPreparing
	}

	order, err := s.repo.UpdateProgress(ctx, id, progress, status)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "updating order progress")
	}

	view := Project(order, TrackView)
	event := StatusEvent{
		OrderID:     view.ID,
		Progress:    view.Progress,
		OrderStatus: view.OrderStatus,
		Message:     view.Message,
		DineIn:      view.DineIn,
		UpdatedAt:   time.Now().UTC(),
	}
	if err := s.publish(ctx, event); err != nil {
		// The database is already updated; watchers reconnect and re-read,
		// so a lost broadcast is only worth a log line.
		s.log.Error(ctx, "publishing order status event", err)
	}
	return view, nil
}

func (s *service) publish(ctx context.Context, event StatusEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return s.broker.Publish(ctx, redis.OrderChannel(event.OrderID), payload)
}

func (s *service) Watch(ctx context.Context, userID string, staff bool, orderID string) (*Subscription, error) {
	order, err := s.load(ctx, userID, staff, orderID)
	if err != nil {
		return nil, err
	}
	pubsub := s.broker.Subscribe(ctx, redis.OrderChannel(order.ID.String()))
	return newSubscription(ctx, pubsub, s.log), nil
}
