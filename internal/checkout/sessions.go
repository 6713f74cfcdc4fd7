package checkout

import (
	"sync"
	"time"

	"github.com/fjod/go_pizza/internal/i18n"
	"go.uber.org/zap"
)

// Sessions hands out one Controller per user.
type Sessions struct {
	carts  Carts
	orders OrderPlacer
	texts  *i18n.Bundle
	logger *zap.Logger
	delay  time.Duration

	mu          sync.Mutex
	controllers map[string]*Controller
}

func NewSessions(carts Carts, placer OrderPlacer, texts *i18n.Bundle, logger *zap.Logger, delay time.Duration) *Sessions {
	return &Sessions{
		carts:       carts,
		orders:      placer,
		texts:       texts,
		logger:      logger,
		delay:       delay,
		controllers: make(map[string]*Controller),
	}
}

func (s *Sessions) For(userID string) *Controller {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.controllers[userID]
	if !ok {
		c = NewController(s.carts, s.orders, s.texts, s.logger, s.delay)
		s.controllers[userID] = c
	}
	return c
}

// Forget drops the user's session, e.g. on sign-out.
func (s *Sessions) Forget(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.controllers, userID)
}
