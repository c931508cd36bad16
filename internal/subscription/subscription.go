// Package subscription answers whether a user holds a paid plan.
package subscription

import (
	"context"
	"fmt"
	"time"

	"github.com/abhisek/drillz/internal/store"
)

// GracePeriod is how long a subscription stays active after its paid
// period ends, covering renewals that land late.
const GracePeriod = 24 * time.Hour

// IsActive reports whether s grants subscriber benefits at now. A nil
// subscription or one without a price is never active.
func IsActive(s *store.Subscription, now time.Time) bool {
	if s == nil || s.PriceID == "" {
		return false
	}
	return s.CurrentPeriodEnd.Add(GracePeriod).After(now)
}

// Checker looks up subscriptions and evaluates them against a clock.
type Checker struct {
	repo store.SubscriptionRepo
	now  func() time.Time
}

// NewChecker returns a Checker using the wall clock.
func NewChecker(repo store.SubscriptionRepo) *Checker {
	return &Checker{repo: repo, now: time.Now}
}

// Active reports whether the user currently holds an active subscription.
func (c *Checker) Active(ctx context.Context, userID string) (bool, error) {
	s, err := c.repo.Get(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("load subscription: %w", err)
	}
	return IsActive(s, c.now()), nil
}

// Get returns the raw subscription row, nil if the user never subscribed.
func (c *Checker) Get(ctx context.Context, userID string) (*store.Subscription, error) {
	return c.repo.Get(ctx, userID)
}
