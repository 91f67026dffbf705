package store

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrInsufficientFunds means a debit would take a balance below zero.
var ErrInsufficientFunds = errors.New("insufficient funds")

// Wallet is the external currency collaborator used for wagers. Debit must
// be atomic: a bet is only accepted once the stake is gone from the balance.
type Wallet interface {
	Ensure(ctx context.Context, userID string, initial int64) error
	Balance(ctx context.Context, userID string) (int64, error)
	Debit(ctx context.Context, userID string, amount int64) error
	Credit(ctx context.Context, userID string, amount int64) error
}

// PostgresWallet keeps balances in the wallets table.
type PostgresWallet struct {
	pool *pgxpool.Pool
}

// NewPostgresWallet creates a wallet store backed by the given pool.
func NewPostgresWallet(pool *pgxpool.Pool) *PostgresWallet {
	return &PostgresWallet{pool: pool}
}

func (w *PostgresWallet) Ensure(ctx context.Context, userID string, initial int64) error {
	_, err := w.pool.Exec(ctx,
		`INSERT INTO wallets (user_id, balance) VALUES ($1, $2) ON CONFLICT (user_id) DO NOTHING`,
		userID, initial)
	if err != nil {
		return fmt.Errorf("ensure wallet %s: %w", userID, err)
	}
	return nil
}

func (w *PostgresWallet) Balance(ctx context.Context, userID string) (int64, error) {
	var balance int64
	err := w.pool.QueryRow(ctx, `SELECT balance FROM wallets WHERE user_id = $1`, userID).Scan(&balance)
	if err != nil {
		return 0, fmt.Errorf("wallet balance %s: %w", userID, err)
	}
	return balance, nil
}

// Debit removes amount from the balance in a single guarded statement, so a
// concurrent bet cannot overdraw.
func (w *PostgresWallet) Debit(ctx context.Context, userID string, amount int64) error {
	tag, err := w.pool.Exec(ctx,
		`UPDATE wallets SET balance = balance - $2, updated_at = now()
		 WHERE user_id = $1 AND balance >= $2`,
		userID, amount)
	if err != nil {
		return fmt.Errorf("debit wallet %s: %w", userID, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrInsufficientFunds
	}
	return nil
}

func (w *PostgresWallet) Credit(ctx context.Context, userID string, amount int64) error {
	_, err := w.pool.Exec(ctx,
		`UPDATE wallets SET balance = balance + $2, updated_at = now() WHERE user_id = $1`,
		userID, amount)
	if err != nil {
		return fmt.Errorf("credit wallet %s: %w", userID, err)
	}
	return nil
}

// MemoryWallet is an in-memory Wallet for tests.
type MemoryWallet struct {
	mu       sync.Mutex
	balances map[string]int64
}

// NewMemoryWallet creates an empty in-memory wallet store.
func NewMemoryWallet() *MemoryWallet {
	return &MemoryWallet{balances: make(map[string]int64)}
}

func (w *MemoryWallet) Ensure(_ context.Context, userID string, initial int64) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.balances[userID]; !ok {
		w.balances[userID] = initial
	}
	return nil
}

func (w *MemoryWallet) Balance(_ context.Context, userID string) (int64, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.balances[userID], nil
}

func (w *MemoryWallet) Debit(_ context.Context, userID string, amount int64) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.balances[userID] < amount {
		return ErrInsufficientFunds
	}
	w.balances[userID] -= amount
	return nil
}

func (w *MemoryWallet) Credit(_ context.Context, userID string, amount int64) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.balances[userID] += amount
	return nil
}
