// Package orders places orders and moves them through their time-driven lifecycle.
package orders

import (
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/fjod/go_pizza/internal/domain"
)

const (
	CookingMinutes  = 20
	DeliveryMinutes = 30
)

// EstimatedTime returns when an order placed at now is expected to be ready (pickup) or delivered.
func EstimatedTime(now time.Time, method domain.DeliveryMethod) time.Time {
	minutes := CookingMinutes
	if method == domain.DeliveryMethodDelivery {
		minutes += DeliveryMinutes
	}
	return now.Add(time.Duration(minutes) * time.Minute)
}

// Advance evaluates the transition rule once. Both steps share EstimatedTime as their
// threshold, so an order seen late moves preparing to ready on one tick and to completed on the next.
func Advance(o domain.Order, now time.Time) (domain.OrderStatus, bool) {
	if !now.After(o.EstimatedTime) {
		return o.Status, false
	}
	switch o.Status {
	case domain.OrderStatusPreparing:
		return domain.OrderStatusReady, true
	case domain.OrderStatusReady:
		return domain.OrderStatusCompleted, true
	default:
		return o.Status, false
	}
}

// MinutesRemaining is the whole minutes left until EstimatedTime, never negative.
func MinutesRemaining(o domain.Order, now time.Time) int {
	diff := o.EstimatedTime.Sub(now)
	if diff <= 0 {
		return 0
	}
	return int(diff / time.Minute)
}

// NumberGenerator produces human-readable order numbers PE-<6 digits>-<3 digits>.
// Uniqueness is probabilistic only.
type NumberGenerator struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

func NewNumberGenerator(seed uint64) *NumberGenerator {
	return &NumberGenerator{rnd: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (g *NumberGenerator) Next(now time.Time) string {
	g.mu.Lock()
	n := g.rnd.IntN(1000)
	g.mu.Unlock()
	return fmt.Sprintf("PE-%06d-%03d", now.UnixMilli()%1_000_000, n)
}
