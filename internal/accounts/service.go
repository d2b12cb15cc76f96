package accounts

import (
	"context"
	"crypto/sha256"
	"fmt"
	"math/rand"
	"strconv"
	"time"

	"papertrader/internal/model"
	"papertrader/internal/types"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

const maxNumberAttempts = 10

type Service struct {
	pool  *pgxpool.Pool
	store *Store
	seed  decimal.Decimal
}

func NewService(pool *pgxpool.Pool, store *Store, seed decimal.Decimal) *Service {
	return &Service{pool: pool, store: store, seed: seed}
}

// randomAccountNumber draws an 8-digit account number. Collisions are
// handled by the caller re-drawing inside its transaction.
func randomAccountNumber(rng *rand.Rand) string {
	return strconv.FormatInt(10_000_000+rng.Int63n(90_000_000), 10)
}

// hashAccountNumber derives the stable external identifier for an account
// number. Every API surface except accountNumbers exposes only this value.
func hashAccountNumber(number string) string {
	return fmt.Sprintf("%X", sha256.Sum256([]byte(number)))
}

func (s *Service) Create(ctx context.Context, accountType string) (*model.Account, error) {
	typ := types.AccountTypeCash
	switch accountType {
	case "", string(types.AccountTypeCash):
	case string(types.AccountTypeMargin):
		typ = types.AccountTypeMargin
	default:
		return nil, types.InvalidInput("accountType must be CASH or MARGIN")
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, types.Storage("begin create account", err)
	}
	defer tx.Rollback(ctx)

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	var number string
	for attempt := 0; ; attempt++ {
		if attempt == maxNumberAttempts {
			return nil, types.Storage("allocate account number", fmt.Errorf("no free account number after %d attempts", maxNumberAttempts))
		}
		number = randomAccountNumber(rng)
		exists, err := s.store.Exists(ctx, tx, number)
		if err != nil {
			return nil, err
		}
		if !exists {
			break
		}
	}

	acct := model.NewAccount(typ, number, hashAccountNumber(number), s.seed, time.Now().UTC())
	if err := s.store.Insert(ctx, tx, &acct); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, types.Storage("commit create account", err)
	}
	return &acct, nil
}

func (s *Service) Get(ctx context.Context, hash string) (*model.Account, error) {
	if hash == "" {
		return nil, types.InvalidInput("account hash is required")
	}
	return s.store.Get(ctx, hash)
}

func (s *Service) List(ctx context.Context) ([]model.Account, error) {
	return s.store.List(ctx)
}

func (s *Service) Numbers(ctx context.Context) ([]AccountNumberHash, error) {
	return s.store.Numbers(ctx)
}

// Delete removes the account and everything it owns. Zero affected account
// rows is reported as not-found, never as silent success.
func (s *Service) Delete(ctx context.Context, hash string) error {
	if hash == "" {
		return types.InvalidInput("account hash is required")
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return types.Storage("begin delete account", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, "delete from transactions where account_number = $1", hash); err != nil {
		return types.Storage("delete account transactions", err)
	}
	if _, err := tx.Exec(ctx, "delete from orders where account_number = $1", hash); err != nil {
		return types.Storage("delete account orders", err)
	}
	if err := s.store.DeleteTx(ctx, tx, hash); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return types.Storage("commit delete account", err)
	}
	return nil
}

// Reset reseeds the account's balances and clears positions, orders, and
// transactions. The account number, hash, and type survive.
func (s *Service) Reset(ctx context.Context, hash string) (*model.Account, error) {
	if hash == "" {
		return nil, types.InvalidInput("account hash is required")
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, types.Storage("begin reset account", err)
	}
	defer tx.Rollback(ctx)

	current, err := s.store.GetForUpdate(ctx, tx, hash)
	if err != nil {
		return nil, err
	}

	fresh := model.NewAccount(current.Type, current.AccountNumber, current.HashValue, s.seed, time.Now().UTC())
	fresh.CreatedAt = current.CreatedAt
	if err := s.store.UpdateTx(ctx, tx, &fresh); err != nil {
		return nil, err
	}
	if _, err := tx.Exec(ctx, "delete from transactions where account_number = $1", hash); err != nil {
		return nil, types.Storage("reset account transactions", err)
	}
	if _, err := tx.Exec(ctx, "delete from orders where account_number = $1", hash); err != nil {
		return nil, types.Storage("reset account orders", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, types.Storage("commit reset account", err)
	}
	return &fresh, nil
}
