// Package checkout drives the delivery, payment and confirmation steps of placing an order.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/fjod/go_pizza/internal/cart"
	"github.com/fjod/go_pizza/internal/domain"
	"github.com/fjod/go_pizza/internal/i18n"
	"github.com/fjod/go_pizza/internal/orders"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var (
	ErrMixedCurrency    = errors.New("cart contains items in more than one currency")
	ErrEmptyCart        = errors.New("cart is empty")
	ErrNotAuthenticated = errors.New("checkout requires a signed-in user")
	ErrIllegalStep      = errors.New("operation not allowed in current checkout step")
	ErrInvalidForm      = errors.New("invalid checkout form")
)

// DefaultProcessingDelay is the simulated payment processing time.
const DefaultProcessingDelay = 1500 * time.Millisecond

type Step string

const (
	StepIdle         Step = "idle"
	StepDelivery     Step = "delivery"
	StepPayment      Step = "payment"
	StepConfirmation Step = "confirmation"
)

// Carts is the cart store as seen by checkout.
type Carts interface {
	Get(ctx context.Context, userID string) (*cart.Cart, error)
	RemoveOrdered(ctx context.Context, userID string, ordered []domain.CartItem) error
	SetOpen(ctx context.Context, userID string, open bool) error
}

type OrderPlacer interface {
	NextNumber() string
	PlaceOrder(ctx context.Context, req orders.PlaceOrderRequest) (*domain.Order, error)
}

type Summary struct {
	Items      []domain.CartItem `json:"items"`
	TotalItems int               `json:"totalItems"`
	TotalPrice decimal.Decimal   `json:"totalPrice"`
	Currency   domain.Currency   `json:"currency"`
	Formatted  string            `json:"formattedTotal"`
}

type Confirmation struct {
	OrderID        string                `json:"orderId"`
	OrderNumber    string                `json:"orderNumber"`
	Items          []domain.CartItem     `json:"items"`
	TotalPrice     decimal.Decimal       `json:"totalPrice"`
	Currency       domain.Currency       `json:"currency"`
	DeliveryMethod domain.DeliveryMethod `json:"deliveryMethod"`
	Address        string                `json:"address,omitempty"`
	Location       string                `json:"location"`
	EstimatedTime  time.Time             `json:"estimatedTime"`
	ReadyIn        string                `json:"readyIn"`
}

// Controller is one user's checkout session. Every exit path resets it to idle.
type Controller struct {
	carts  Carts
	orders OrderPlacer
	texts  *i18n.Bundle
	logger *zap.Logger
	delay  time.Duration
	now    func() time.Time

	mu           sync.Mutex
	step         Step
	user         *domain.User
	lang         domain.Language
	delivery     DeliveryForm
	payment      PaymentForm
	confirmation *Confirmation
}

func NewController(carts Carts, placer OrderPlacer, texts *i18n.Bundle, logger *zap.Logger, delay time.Duration) *Controller {
	if texts == nil {
		texts = i18n.Default()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Controller{
		carts:  carts,
		orders: placer,
		texts:  texts,
		logger: logger,
		delay:  delay,
		now:    time.Now,
		step:   StepIdle,
	}
}

func (c *Controller) Step() Step {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.step
}

// Begin runs the checkout preconditions and opens the delivery step with the user's
// contact details prefilled. The mixed-currency guard runs before the sign-in gate and
// never touches the cart.
func (c *Controller) Begin(ctx context.Context, user *domain.User, lang domain.Language) (DeliveryForm, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	userID := domain.UserKey(user)
	crt, err := c.carts.Get(ctx, userID)
	if err != nil {
		return DeliveryForm{}, err
	}
	if crt.HasMixedCurrencies() {
		c.logger.Info("checkout blocked by mixed currencies",
			zap.String("user_id", userID),
			zap.Int("currencies", len(crt.Currencies())))
		return DeliveryForm{}, ErrMixedCurrency
	}
	if crt.Len() == 0 {
		return DeliveryForm{}, ErrEmptyCart
	}
	if user == nil {
		return DeliveryForm{}, ErrNotAuthenticated
	}

	c.reset()
	u := *user
	c.user = &u
	c.lang = lang
	c.step = StepDelivery
	c.delivery = DeliveryForm{
		Method:    domain.DeliveryMethodDelivery,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Phone:     u.Phone,
		Email:     u.Email,
		Address:   u.Address,
		Location:  Locations[0],
	}
	c.payment = PaymentForm{CardholderName: u.FullName()}

	if err := c.carts.SetOpen(ctx, userID, false); err != nil {
		c.logger.Warn("failed to close cart", zap.String("user_id", userID), zap.Error(err))
	}
	return c.delivery, nil
}

// SubmitDelivery records the delivery choice and moves to the payment step.
func (c *Controller) SubmitDelivery(form DeliveryForm) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.step != StepDelivery {
		return fmt.Errorf("%w: submit delivery in %s", ErrIllegalStep, c.step)
	}
	if !form.Method.Valid() {
		return fmt.Errorf("%w: delivery method %q", ErrInvalidForm, form.Method)
	}
	if form.Location == "" {
		form.Location = Locations[0]
	}
	if !validLocation(form.Location) {
		return fmt.Errorf("%w: unknown location %q", ErrInvalidForm, form.Location)
	}
	if form.Method == domain.DeliveryMethodDelivery && strings.TrimSpace(form.Address) == "" {
		return fmt.Errorf("%w: address is required for delivery", ErrInvalidForm)
	}
	if strings.TrimSpace(form.Phone) == "" {
		return fmt.Errorf("%w: phone is required", ErrInvalidForm)
	}

	c.delivery = form
	c.step = StepPayment
	return nil
}

// Summary is the read-only view of the cart shown on the payment step.
func (c *Controller) Summary(ctx context.Context) (Summary, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.step != StepDelivery && c.step != StepPayment {
		return Summary{}, fmt.Errorf("%w: summary in %s", ErrIllegalStep, c.step)
	}
	crt, err := c.carts.Get(ctx, domain.UserKey(c.user))
	if err != nil {
		return Summary{}, err
	}
	return summarize(crt), nil
}

// SubmitPayment places the order, waits the simulated processing delay, takes the ordered
// lines off the cart and moves to confirmation. A cancelled ctx during the delay resets the session; the
// order already placed stays placed.
func (c *Controller) SubmitPayment(ctx context.Context, form PaymentForm) (Confirmation, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.step != StepPayment {
		return Confirmation{}, fmt.Errorf("%w: submit payment in %s", ErrIllegalStep, c.step)
	}
	c.payment = form.masked()

	userID := domain.UserKey(c.user)
	crt, err := c.carts.Get(ctx, userID)
	if err != nil {
		return Confirmation{}, err
	}
	if crt.HasMixedCurrencies() {
		return Confirmation{}, ErrMixedCurrency
	}
	if crt.Len() == 0 {
		return Confirmation{}, ErrEmptyCart
	}

	sum := summarize(crt)
	order, err := c.orders.PlaceOrder(ctx, orders.PlaceOrderRequest{
		UserID:         userID,
		Number:         c.orders.NextNumber(),
		Items:          sum.Items,
		Currency:       sum.Currency,
		DeliveryMethod: c.delivery.Method,
		Address:        c.delivery.Address,
		Location:       c.delivery.Location,
		Language:       c.lang,
		PlacedAt:       c.now(),
	})
	if err != nil {
		return Confirmation{}, err
	}

	if c.delay > 0 {
		timer := time.NewTimer(c.delay)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			c.logger.Info("checkout abandoned during processing",
				zap.String("user_id", userID),
				zap.String("order_number", order.Number))
			c.reset()
			return Confirmation{}, ctx.Err()
		}
	}

	if err := c.carts.RemoveOrdered(ctx, userID, sum.Items); err != nil {
		c.logger.Error("failed to remove ordered items from cart", zap.String("user_id", userID), zap.Error(err))
	}

	conf := Confirmation{
		OrderID:        order.ID,
		OrderNumber:    order.Number,
		Items:          order.Items,
		TotalPrice:     order.TotalPrice,
		Currency:       order.Currency,
		DeliveryMethod: order.DeliveryMethod,
		Address:        order.Address,
		Location:       order.Location,
		EstimatedTime:  order.EstimatedTime,
		ReadyIn:        i18n.ReadyIn(c.texts.For(c.lang), c.lang, order.EstimatedTime, c.now()),
	}
	c.confirmation = &conf
	c.step = StepConfirmation
	return conf, nil
}

func (c *Controller) Confirmation() (Confirmation, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.step != StepConfirmation || c.confirmation == nil {
		return Confirmation{}, fmt.Errorf("%w: confirmation in %s", ErrIllegalStep, c.step)
	}
	return *c.confirmation, nil
}

// Cancel closes the checkout at any step. Before confirmation the cart is reopened.
func (c *Controller) Cancel(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.step == StepDelivery || c.step == StepPayment {
		userID := domain.UserKey(c.user)
		if err := c.carts.SetOpen(ctx, userID, true); err != nil {
			c.logger.Warn("failed to reopen cart", zap.String("user_id", userID), zap.Error(err))
		}
	}
	c.reset()
}

// Forms exposes the current form state.
func (c *Controller) Forms() (DeliveryForm, PaymentForm) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.delivery, c.payment
}

func (c *Controller) reset() {
	c.step = StepIdle
	c.user = nil
	c.lang = ""
	c.delivery = DeliveryForm{}
	c.payment = PaymentForm{}
	c.confirmation = nil
}

func summarize(crt *cart.Cart) Summary {
	items := crt.Items()
	s := Summary{
		Items:      items,
		TotalItems: crt.TotalItems(),
		TotalPrice: crt.TotalPrice(),
		Currency:   domain.CurrencyUSD,
	}
	if len(items) > 0 {
		s.Currency = items[0].Currency
	}
	s.Formatted = i18n.FormatPrice(s.TotalPrice, s.Currency)
	return s
}
