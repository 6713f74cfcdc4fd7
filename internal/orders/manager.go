package orders

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/fjod/go_pizza/internal/domain"
	"github.com/fjod/go_pizza/internal/publisher"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// PlaceOrderRequest is the checkout snapshot handed to the manager.
type PlaceOrderRequest struct {
	UserID         string
	Number         string
	Items          []domain.CartItem
	Currency       domain.Currency
	DeliveryMethod domain.DeliveryMethod
	Address        string
	Location       string
	Language       domain.Language
	// PlacedAt defaults to the manager's clock.
	PlacedAt time.Time
}

// Manager owns order creation and status evaluation.
type Manager struct {
	repo      Repository
	publisher publisher.Publisher
	numbers   *NumberGenerator
	logger    *zap.Logger
	now       func() time.Time
	newID     func() string
	sfg       singleflight.Group

	mu sync.Mutex // serialises status evaluation so concurrent ticks cannot double-advance
}

func NewManager(repo Repository, pub publisher.Publisher, logger *zap.Logger) *Manager {
	if pub == nil {
		pub = publisher.NoopPublisher{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		repo:      repo,
		publisher: pub,
		numbers:   NewNumberGenerator(uint64(time.Now().UnixNano())),
		logger:    logger,
		now:       time.Now,
		newID:     uuid.NewString,
	}
}

// NextNumber reserves a display number for an order about to be placed.
func (m *Manager) NextNumber() string {
	return m.numbers.Next(m.now())
}

// PlaceOrder snapshots the items and persists a new order in the preparing state.
func (m *Manager) PlaceOrder(ctx context.Context, req PlaceOrderRequest) (*domain.Order, error) {
	if len(req.Items) == 0 {
		return nil, ErrEmptyOrder
	}
	if !req.DeliveryMethod.Valid() {
		return nil, fmt.Errorf("%w: delivery method %q", ErrInvalidOrder, req.DeliveryMethod)
	}

	placedAt := req.PlacedAt
	if placedAt.IsZero() {
		placedAt = m.now()
	}
	number := req.Number
	if number == "" {
		number = m.numbers.Next(placedAt)
	}
	currency := req.Currency
	if currency == "" {
		currency = req.Items[0].Currency
	}

	items := make([]domain.CartItem, len(req.Items))
	copy(items, req.Items)
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Price)
	}

	order := &domain.Order{
		ID:             m.newID(),
		Number:         number,
		UserID:         owner(req.UserID),
		Items:          items,
		TotalPrice:     total,
		Currency:       currency,
		DeliveryMethod: req.DeliveryMethod,
		Location:       req.Location,
		Date:           placedAt,
		EstimatedTime:  EstimatedTime(placedAt, req.DeliveryMethod),
		Status:         domain.OrderStatusPreparing,
		OrderLanguage:  req.Language,
	}
	if req.DeliveryMethod == domain.DeliveryMethodDelivery {
		order.Address = req.Address
	}

	if err := m.repo.Create(ctx, order); err != nil {
		m.logger.Error("failed to persist order", zap.String("order_number", number), zap.Error(err))
		return nil, fmt.Errorf("create order: %w", err)
	}
	m.logger.Info("order placed",
		zap.String("order_id", order.ID),
		zap.String("order_number", order.Number),
		zap.String("user_id", order.UserID),
		zap.Time("estimated_time", order.EstimatedTime))

	m.publish(ctx, publisher.OrderPlaced(*order, placedAt))
	return order, nil
}

// List returns the user's orders, newest first.
func (m *Manager) List(ctx context.Context, userID string) ([]domain.Order, error) {
	v, err, _ := m.sfg.Do(owner(userID), func() (interface{}, error) {
		return m.repo.ListByUser(ctx, owner(userID))
	})
	if err != nil {
		return nil, err
	}
	list := v.([]domain.Order)
	out := make([]domain.Order, len(list))
	copy(out, list)
	return out, nil
}

// Tick runs one evaluation over every order of the user and persists each change.
// It returns the orders whose status changed.
func (m *Manager) Tick(ctx context.Context, userID string, now time.Time) ([]domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	list, err := m.repo.ListByUser(ctx, owner(userID))
	if err != nil {
		return nil, err
	}

	var changed []domain.Order
	for _, o := range list {
		updated, ok, err := m.advance(ctx, o, now)
		if err != nil {
			return changed, err
		}
		if ok {
			changed = append(changed, updated)
		}
	}
	return changed, nil
}

// UpdateOrderStatus evaluates the transition rule for a single order.
func (m *Manager) UpdateOrderStatus(ctx context.Context, userID, orderID string, now time.Time) (domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	list, err := m.repo.ListByUser(ctx, owner(userID))
	if err != nil {
		return domain.Order{}, err
	}
	for _, o := range list {
		if o.ID != orderID {
			continue
		}
		updated, _, err := m.advance(ctx, o, now)
		return updated, err
	}
	return domain.Order{}, ErrOrderNotFound
}

// DeleteForUser purges every order of the user.
func (m *Manager) DeleteForUser(ctx context.Context, userID string) error {
	if err := m.repo.DeleteByUser(ctx, owner(userID)); err != nil {
		return err
	}
	m.logger.Info("orders purged", zap.String("user_id", owner(userID)))
	return nil
}

// MinutesRemaining is the countdown shown next to an active order.
func (m *Manager) MinutesRemaining(o domain.Order, now time.Time) int {
	return MinutesRemaining(o, now)
}

func (m *Manager) advance(ctx context.Context, o domain.Order, now time.Time) (domain.Order, bool, error) {
	next, ok := Advance(o, now)
	if !ok || !domain.CanTransitionTo(o.Status, next) {
		return o, false, nil
	}
	if err := m.repo.UpdateStatus(ctx, o.UserID, o.ID, next); err != nil {
		return o, false, fmt.Errorf("update order %s: %w", o.ID, err)
	}

	from := o.Status
	o.Status = next
	m.logger.Info("order status changed",
		zap.String("order_id", o.ID),
		zap.String("from", from.String()),
		zap.String("to", next.String()))
	m.publish(ctx, publisher.StatusChanged(o, from, now))
	return o, true, nil
}

func (m *Manager) publish(ctx context.Context, event publisher.OrderEvent) {
	if err := m.publisher.Publish(ctx, event); err != nil {
		m.logger.Warn("order event not published",
			zap.String("event_type", event.Type),
			zap.String("order_id", event.OrderID),
			zap.Error(err))
	}
}
