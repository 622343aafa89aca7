package store

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"
)

// PaymentUpdate is a provider webhook notification about an order.
type PaymentUpdate struct {
	OrderID      string
	UserID       string
	Status       string
	Amount       float64
	Currency     string
	ProviderData string
}

func paid(status string) bool {
	switch strings.ToUpper(status) {
	case "PAID", "COMPLETED":
		return true
	}
	return false
}

// RecordPayment upserts the payment transaction and, on the first
// transition to a paid status, credits floor(amount) coins to the payer.
// Crediting is guarded by the transaction's credited flag, so redelivered
// webhooks are safe no-ops. Returns how many coins were credited.
func (s *Store) RecordPayment(ctx context.Context, u PaymentUpdate) (int, error) {
	credited := 0
	err := s.withImmediate(ctx, func(q querier) error {
		if _, err := q.ExecContext(ctx, `
			INSERT INTO payment_transactions (order_id, user_id, status, amount, currency, provider_data)
			VALUES (?, ?, ?, ?, ?, ?)
			ON CONFLICT(order_id) DO UPDATE SET
				status = excluded.status,
				provider_data = excluded.provider_data,
				updated_at = ?
		`, u.OrderID, u.UserID, u.Status, u.Amount, u.Currency, u.ProviderData,
			formatTime(time.Now())); err != nil {
			return fmt.Errorf("recording transaction: %w", err)
		}

		if !paid(u.Status) {
			return nil
		}

		coins := int(math.Floor(u.Amount))
		if coins <= 0 {
			return nil
		}

		r, err := q.ExecContext(ctx, `
			UPDATE payment_transactions SET credited = 1
			WHERE order_id = ? AND credited = 0
		`, u.OrderID)
		if err != nil {
			return err
		}
		if n, _ := r.RowsAffected(); n == 0 {
			return nil // already credited by an earlier delivery
		}

		if _, err := q.ExecContext(ctx, `
			UPDATE profiles SET coins = coins + ? WHERE id = ?
		`, coins, u.UserID); err != nil {
			return fmt.Errorf("crediting coins: %w", err)
		}
		credited = coins
		return nil
	})
	return credited, err
}
