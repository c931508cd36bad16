package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

type subscriptionRepo struct {
	db querier
}

func (r *subscriptionRepo) Get(ctx context.Context, userID string) (*Subscription, error) {
	b := builder()
	query, args := b.Select("user_id", "customer_id", "price_id", "current_period_end", "updated_at").
		From(b.Table(SubscriptionsTable.Name)).
		Where(entsql.EQ("user_id", userID)).
		Query()

	var s Subscription
	err := r.db.QueryRowContext(ctx, query, args...).
		Scan(&s.UserID, &s.CustomerID, &s.PriceID, &s.CurrentPeriodEnd, &s.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query subscription: %w", err)
	}
	return &s, nil
}

func (r *subscriptionRepo) Upsert(ctx context.Context, s Subscription) error {
	query, args := builder().Insert(SubscriptionsTable.Name).
		Columns("user_id", "customer_id", "price_id", "current_period_end", "updated_at").
		Values(s.UserID, s.CustomerID, s.PriceID, s.CurrentPeriodEnd.UTC(), time.Now().UTC()).
		OnConflict(entsql.ConflictColumns("user_id"), entsql.ResolveWithNewValues()).
		Query()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert subscription: %w", err)
	}
	return nil
}
