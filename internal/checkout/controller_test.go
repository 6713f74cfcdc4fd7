package checkout

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fjod/go_pizza/internal/cart"
	"github.com/fjod/go_pizza/internal/catalog"
	"github.com/fjod/go_pizza/internal/domain"
	"github.com/fjod/go_pizza/internal/i18n"
	"github.com/fjod/go_pizza/internal/orders"
	"github.com/fjod/go_pizza/internal/pricing"
	"github.com/fjod/go_pizza/internal/storage"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var fixedNow = time.Date(2024, 5, 17, 18, 0, 0, 0, time.UTC)

type fixture struct {
	carts   *cart.Service
	manager *orders.Manager
	engine  *pricing.Engine
	ctrl    *Controller
	user    *domain.User
}

func newFixture(t *testing.T, delay time.Duration) *fixture {
	t.Helper()
	store := storage.NewMemoryStore()
	f := &fixture{
		carts:   cart.NewService(store, zap.NewNop()),
		manager: orders.NewManager(orders.NewKVRepository(store, zap.NewNop()), nil, zap.NewNop()),
		engine:  pricing.NewEngine(catalog.Default(), zap.NewNop()),
		user: &domain.User{
			FirstName: "Kari",
			LastName:  "Nordmann",
			Email:     "kari@example.no",
			Phone:     "+47 900 00 000",
			Address:   "Storgata 1, Oslo",
		},
	}
	f.ctrl = NewController(f.carts, f.manager, i18n.Default(), zap.NewNop(), delay)
	f.ctrl.now = func() time.Time { return fixedNow }
	return f
}

func (f *fixture) add(t *testing.T, userID, product string, lang domain.Language, sel pricing.Selection, qty int) {
	t.Helper()
	item, err := f.engine.NewLineItem(product, lang, sel, qty)
	require.NoError(t, err)
	_, err = f.carts.AddItem(context.Background(), userID, item)
	require.NoError(t, err)
}

func TestBegin_MixedCurrencyBlocksBeforeLogin(t *testing.T) {
	f := newFixture(t, 0)
	ctx := context.Background()
	f.add(t, domain.AnonymousUserID, "margherita", domain.LanguageNorwegian, pricing.PizzaOptions{}, 1)
	f.add(t, domain.AnonymousUserID, "margherita", domain.LanguageEnglish, pricing.PizzaOptions{}, 1)

	_, err := f.ctrl.Begin(ctx, nil, domain.LanguageEnglish)
	assert.ErrorIs(t, err, ErrMixedCurrency)
	assert.Equal(t, StepIdle, f.ctrl.Step())

	c, err := f.carts.Get(ctx, domain.AnonymousUserID)
	require.NoError(t, err)
	assert.Equal(t, 2, c.Len())
	assert.Equal(t, []domain.Currency{domain.CurrencyNOK, domain.CurrencyUSD}, c.Currencies())
}

func TestBegin_Preconditions(t *testing.T) {
	f := newFixture(t, 0)
	ctx := context.Background()

	_, err := f.ctrl.Begin(ctx, f.user, domain.LanguageEnglish)
	assert.ErrorIs(t, err, ErrEmptyCart)

	f.add(t, domain.AnonymousUserID, "pepperoni", domain.LanguageEnglish, pricing.PizzaOptions{}, 1)
	_, err = f.ctrl.Begin(ctx, nil, domain.LanguageEnglish)
	assert.ErrorIs(t, err, ErrNotAuthenticated)
	assert.Equal(t, StepIdle, f.ctrl.Step())
}

func TestBegin_PrefillsFromUserAndClosesCart(t *testing.T) {
	f := newFixture(t, 0)
	ctx := context.Background()
	require.NoError(t, f.carts.SetOpen(ctx, f.user.Email, true))
	f.add(t, f.user.Email, "pepperoni", domain.LanguageEnglish, pricing.PizzaOptions{}, 1)

	form, err := f.ctrl.Begin(ctx, f.user, domain.LanguageEnglish)
	require.NoError(t, err)

	assert.Equal(t, StepDelivery, f.ctrl.Step())
	assert.Equal(t, domain.DeliveryMethodDelivery, form.Method)
	assert.Equal(t, "Kari", form.FirstName)
	assert.Equal(t, "Storgata 1, Oslo", form.Address)
	assert.Equal(t, "Manhattan", form.Location)

	_, payment := f.ctrl.Forms()
	assert.Equal(t, "Kari Nordmann", payment.CardholderName)

	c, err := f.carts.Get(ctx, f.user.Email)
	require.NoError(t, err)
	assert.False(t, c.IsOpen())
}

func TestSubmitDelivery_Validation(t *testing.T) {
	f := newFixture(t, 0)
	ctx := context.Background()

	err := f.ctrl.SubmitDelivery(DeliveryForm{Method: domain.DeliveryMethodPickup})
	assert.ErrorIs(t, err, ErrIllegalStep)

	f.add(t, f.user.Email, "pepperoni", domain.LanguageEnglish, pricing.PizzaOptions{}, 1)
	form, err := f.ctrl.Begin(ctx, f.user, domain.LanguageEnglish)
	require.NoError(t, err)

	tests := []struct {
		name   string
		mutate func(*DeliveryForm)
	}{
		{"bad method", func(d *DeliveryForm) { d.Method = "drone" }},
		{"unknown location", func(d *DeliveryForm) { d.Location = "Bergen" }},
		{"delivery without address", func(d *DeliveryForm) { d.Address = " " }},
		{"missing phone", func(d *DeliveryForm) { d.Phone = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := form
			tt.mutate(&d)
			assert.ErrorIs(t, f.ctrl.SubmitDelivery(d), ErrInvalidForm)
			assert.Equal(t, StepDelivery, f.ctrl.Step())
		})
	}

	pickup := form
	pickup.Method = domain.DeliveryMethodPickup
	pickup.Address = ""
	pickup.Location = "Oslo"
	require.NoError(t, f.ctrl.SubmitDelivery(pickup))
	assert.Equal(t, StepPayment, f.ctrl.Step())
}

func TestSubmitPayment_PlacesOrderAndClearsCart(t *testing.T) {
	f := newFixture(t, 0)
	ctx := context.Background()
	f.add(t, f.user.Email, "margherita", domain.LanguageNorwegian, pricing.PizzaOptions{}, 2)
	f.add(t, f.user.Email, "coca_cola", domain.LanguageNorwegian, pricing.DrinkOptions{}, 1)

	form, err := f.ctrl.Begin(ctx, f.user, domain.LanguageNorwegian)
	require.NoError(t, err)
	require.NoError(t, f.ctrl.SubmitDelivery(form))

	sum, err := f.ctrl.Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.CurrencyNOK, sum.Currency)
	assert.Equal(t, 3, sum.TotalItems)

	conf, err := f.ctrl.SubmitPayment(ctx, PaymentForm{
		CardholderName: "Kari Nordmann",
		CardNumber:     "4111-1111-1111-1111",
		ExpiryDate:     "1227",
		CVV:            "123",
	})
	require.NoError(t, err)

	assert.Equal(t, StepConfirmation, f.ctrl.Step())
	assert.Regexp(t, `^PE-\d{6}-\d{3}$`, conf.OrderNumber)
	assert.True(t, sum.TotalPrice.Equal(conf.TotalPrice))
	assert.Equal(t, domain.CurrencyNOK, conf.Currency)
	assert.Equal(t, fixedNow.Add(50*time.Minute), conf.EstimatedTime)
	assert.Equal(t, "Klar om 50 minutter (ca. 18:50)", conf.ReadyIn)

	_, payment := f.ctrl.Forms()
	assert.Equal(t, "4111 1111 1111 1111", payment.CardNumber)
	assert.Equal(t, "12/27", payment.ExpiryDate)

	c, err := f.carts.Get(ctx, f.user.Email)
	require.NoError(t, err)
	assert.Zero(t, c.Len())

	list, err := f.manager.List(ctx, f.user.Email)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, domain.OrderStatusPreparing, list[0].Status)
	assert.Equal(t, "Storgata 1, Oslo", list[0].Address)

	again, err := f.ctrl.Confirmation()
	require.NoError(t, err)
	assert.Equal(t, conf.OrderID, again.OrderID)
}

func TestSubmitPayment_PickupEstimate(t *testing.T) {
	f := newFixture(t, 0)
	ctx := context.Background()
	f.add(t, f.user.Email, "pepperoni", domain.LanguageEnglish, pricing.PizzaOptions{}, 1)

	form, err := f.ctrl.Begin(ctx, f.user, domain.LanguageEnglish)
	require.NoError(t, err)
	form.Method = domain.DeliveryMethodPickup
	require.NoError(t, f.ctrl.SubmitDelivery(form))

	conf, err := f.ctrl.SubmitPayment(ctx, PaymentForm{})
	require.NoError(t, err)
	assert.Empty(t, conf.Address)
	assert.Equal(t, "Ready in 20 minutes (approx. 06:20 PM)", conf.ReadyIn)
	assert.True(t, decimal.NewFromInt(17).Equal(conf.TotalPrice))
}

func TestSubmitPayment_WaitsProcessingDelay(t *testing.T) {
	delay := 30 * time.Millisecond
	f := newFixture(t, delay)
	ctx := context.Background()
	f.add(t, f.user.Email, "pepperoni", domain.LanguageEnglish, pricing.PizzaOptions{}, 1)

	form, err := f.ctrl.Begin(ctx, f.user, domain.LanguageEnglish)
	require.NoError(t, err)
	require.NoError(t, f.ctrl.SubmitDelivery(form))

	start := time.Now()
	_, err = f.ctrl.SubmitPayment(ctx, PaymentForm{})
	require.NoError(t, err)
	assert.GreaterOrEqual(t, time.Since(start), delay)
}

func TestSubmitPayment_CancelledDuringProcessing(t *testing.T) {
	f := newFixture(t, time.Minute)
	f.add(t, f.user.Email, "pepperoni", domain.LanguageEnglish, pricing.PizzaOptions{}, 1)

	form, err := f.ctrl.Begin(context.Background(), f.user, domain.LanguageEnglish)
	require.NoError(t, err)
	require.NoError(t, f.ctrl.SubmitDelivery(form))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = f.ctrl.SubmitPayment(ctx, PaymentForm{})
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
	assert.Equal(t, StepIdle, f.ctrl.Step())

	list, err := f.manager.List(context.Background(), f.user.Email)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	c, err := f.carts.Get(context.Background(), f.user.Email)
	require.NoError(t, err)
	assert.Equal(t, 1, c.Len())
}

func TestCancel_ResetsFormsAndReopensCart(t *testing.T) {
	f := newFixture(t, 0)
	ctx := context.Background()
	f.add(t, f.user.Email, "pepperoni", domain.LanguageEnglish, pricing.PizzaOptions{}, 1)

	form, err := f.ctrl.Begin(ctx, f.user, domain.LanguageEnglish)
	require.NoError(t, err)
	form.Method = domain.DeliveryMethodPickup
	require.NoError(t, f.ctrl.SubmitDelivery(form))

	f.ctrl.Cancel(ctx)
	assert.Equal(t, StepIdle, f.ctrl.Step())
	d, p := f.ctrl.Forms()
	assert.Equal(t, DeliveryForm{}, d)
	assert.Equal(t, PaymentForm{}, p)

	c, err := f.carts.Get(ctx, f.user.Email)
	require.NoError(t, err)
	assert.True(t, c.IsOpen())
	assert.Equal(t, 1, c.Len())

	form, err = f.ctrl.Begin(ctx, f.user, domain.LanguageEnglish)
	require.NoError(t, err)
	assert.Equal(t, domain.DeliveryMethodDelivery, form.Method)
}

func TestStepGuards(t *testing.T) {
	f := newFixture(t, 0)
	ctx := context.Background()

	_, err := f.ctrl.Summary(ctx)
	assert.ErrorIs(t, err, ErrIllegalStep)
	_, err = f.ctrl.SubmitPayment(ctx, PaymentForm{})
	assert.ErrorIs(t, err, ErrIllegalStep)
	_, err = f.ctrl.Confirmation()
	assert.ErrorIs(t, err, ErrIllegalStep)
}

func TestSessions_OnePerUser(t *testing.T) {
	f := newFixture(t, 0)
	s := NewSessions(f.carts, f.manager, nil, zap.NewNop(), 0)

	a := s.For("a@b.no")
	assert.Same(t, a, s.For("a@b.no"))
	assert.NotSame(t, a, s.For("c@d.no"))

	s.Forget("a@b.no")
	assert.NotSame(t, a, s.For("a@b.no"))
}

func TestSubmitPayment_KeepsItemsAddedDuringProcessing(t *testing.T) {
	f := newFixture(t, 200*time.Millisecond)
	ctx := context.Background()
	f.add(t, f.user.Email, "margherita", domain.LanguageNorwegian, pricing.PizzaOptions{}, 1)

	form, err := f.ctrl.Begin(ctx, f.user, domain.LanguageNorwegian)
	require.NoError(t, err)
	require.NoError(t, f.ctrl.SubmitDelivery(form))

	type result struct {
		conf Confirmation
		err  error
	}
	done := make(chan result, 1)
	go func() {
		conf, err := f.ctrl.SubmitPayment(ctx, PaymentForm{})
		done <- result{conf, err}
	}()

	require.Eventually(t, func() bool {
		list, err := f.manager.List(ctx, f.user.Email)
		return err == nil && len(list) == 1
	}, time.Second, 5*time.Millisecond)
	f.add(t, f.user.Email, "tiramisu", domain.LanguageNorwegian, pricing.DessertOptions{}, 1)

	res := <-done
	require.NoError(t, res.err)
	require.Len(t, res.conf.Items, 1)
	assert.Equal(t, "margherita", res.conf.Items[0].ProductID)

	c, err := f.carts.Get(ctx, f.user.Email)
	require.NoError(t, err)
	require.Equal(t, 1, c.Len())
	assert.Equal(t, "tiramisu", c.Items()[0].ProductID)
}

func TestBegin_PizzaAndDrinkInDifferentCurrencies(t *testing.T) {
	f := newFixture(t, 0)
	ctx := context.Background()
	f.add(t, f.user.Email, "margherita", domain.LanguageNorwegian, pricing.PizzaOptions{}, 1)
	f.add(t, f.user.Email, "coca_cola", domain.LanguageEnglish, pricing.DrinkOptions{}, 1)

	_, err := f.ctrl.Begin(ctx, f.user, domain.LanguageNorwegian)
	assert.ErrorIs(t, err, ErrMixedCurrency)
	assert.Equal(t, StepIdle, f.ctrl.Step())

	err = f.ctrl.SubmitDelivery(DeliveryForm{})
	assert.ErrorIs(t, err, ErrIllegalStep)
	_, err = f.ctrl.SubmitPayment(ctx, PaymentForm{})
	assert.ErrorIs(t, err, ErrIllegalStep)

	list, err := f.manager.List(ctx, f.user.Email)
	require.NoError(t, err)
	assert.Empty(t, list)

	c, err := f.carts.Get(ctx, f.user.Email)
	require.NoError(t, err)
	assert.Equal(t, 2, c.Len())
}

func TestBegin_RechecksCurrencyOnEveryAttempt(t *testing.T) {
	f := newFixture(t, 0)
	ctx := context.Background()
	f.add(t, f.user.Email, "margherita", domain.LanguageNorwegian, pricing.PizzaOptions{}, 1)
	f.add(t, f.user.Email, "coca_cola", domain.LanguageEnglish, pricing.DrinkOptions{}, 1)

	_, err := f.ctrl.Begin(ctx, f.user, domain.LanguageNorwegian)
	require.ErrorIs(t, err, ErrMixedCurrency)

	c, err := f.carts.Get(ctx, f.user.Email)
	require.NoError(t, err)
	for _, item := range c.Items() {
		if item.Currency == domain.CurrencyUSD {
			require.NoError(t, f.carts.RemoveItem(ctx, f.user.Email, item.ID))
		}
	}

	_, err = f.ctrl.Begin(ctx, f.user, domain.LanguageNorwegian)
	require.NoError(t, err)
	assert.Equal(t, StepDelivery, f.ctrl.Step())
}

func TestSubmitPayment_RechecksCurrency(t *testing.T) {
	f := newFixture(t, 0)
	ctx := context.Background()
	f.add(t, f.user.Email, "margherita", domain.LanguageNorwegian, pricing.PizzaOptions{}, 1)

	form, err := f.ctrl.Begin(ctx, f.user, domain.LanguageNorwegian)
	require.NoError(t, err)
	require.NoError(t, f.ctrl.SubmitDelivery(form))

	f.add(t, f.user.Email, "coca_cola", domain.LanguageEnglish, pricing.DrinkOptions{}, 1)

	_, err = f.ctrl.SubmitPayment(ctx, PaymentForm{})
	assert.ErrorIs(t, err, ErrMixedCurrency)
	assert.Equal(t, StepPayment, f.ctrl.Step())

	list, err := f.manager.List(ctx, f.user.Email)
	require.NoError(t, err)
	assert.Empty(t, list)

	c, err := f.carts.Get(ctx, f.user.Email)
	require.NoError(t, err)
	assert.Equal(t, 2, c.Len())
}
