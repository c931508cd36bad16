package subscription

import (
	"context"
	"testing"
	"time"

	"github.com/abhisek/drillz/internal/store"
)

func TestIsActive(t *testing.T) {
	now := time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		sub  *store.Subscription
		want bool
	}{
		{"nil", nil, false},
		{"no price", &store.Subscription{CurrentPeriodEnd: now.Add(48 * time.Hour)}, false},
		{"in period", &store.Subscription{PriceID: "p", CurrentPeriodEnd: now.Add(time.Hour)}, true},
		{"inside grace", &store.Subscription{PriceID: "p", CurrentPeriodEnd: now.Add(-23 * time.Hour)}, true},
		{"grace boundary", &store.Subscription{PriceID: "p", CurrentPeriodEnd: now.Add(-24 * time.Hour)}, false},
		{"lapsed", &store.Subscription{PriceID: "p", CurrentPeriodEnd: now.Add(-72 * time.Hour)}, false},
	}
	for _, tt := range tests {
		if got := IsActive(tt.sub, now); got != tt.want {
			t.Errorf("%s: IsActive = %v, want %v", tt.name, got, tt.want)
		}
	}
}

type mockRepo struct {
	subs map[string]*store.Subscription
}

func (m *mockRepo) Get(_ context.Context, userID string) (*store.Subscription, error) {
	return m.subs[userID], nil
}

func (m *mockRepo) Upsert(_ context.Context, s store.Subscription) error {
	m.subs[s.UserID] = &s
	return nil
}

func TestCheckerActive(t *testing.T) {
	now := time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC)
	repo := &mockRepo{subs: map[string]*store.Subscription{
		"paid": {UserID: "paid", PriceID: "p", CurrentPeriodEnd: now.Add(time.Hour)},
	}}
	c := NewChecker(repo)
	c.now = func() time.Time { return now }

	for user, want := range map[string]bool{"paid": true, "free": false} {
		got, err := c.Active(context.Background(), user)
		if err != nil {
			t.Fatalf("Active(%s): %v", user, err)
		}
		if got != want {
			t.Errorf("Active(%s) = %v, want %v", user, got, want)
		}
	}
}
