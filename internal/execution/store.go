package execution

import (
	"context"
	"fmt"
	"time"

	"papertrader/internal/accounts"
	"papertrader/internal/model"
	"papertrader/internal/orders"
	"papertrader/internal/transactions"
	"papertrader/internal/types"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// Store applies fills. The order update, account update, and transaction
// append happen in one serializable database transaction; a partial fill
// write can never survive.
type Store struct {
	pool     *pgxpool.Pool
	accounts *accounts.Store
	orders   *orders.Store
	txs      *transactions.Store
}

func NewStore(pool *pgxpool.Pool, accountStore *accounts.Store, orderStore *orders.Store, txStore *transactions.Store) *Store {
	return &Store{pool: pool, accounts: accountStore, orders: orderStore, txs: txStore}
}

func (s *Store) WorkingOrders(ctx context.Context) ([]model.Order, error) {
	return s.orders.ListWorking(ctx)
}

// FillOrder transitions the order to FILLED at price and settles the trade
// against the owning account. The account row is locked before the order row
// so fills and admin resets take locks in the same direction.
func (s *Store) FillOrder(ctx context.Context, o *model.Order, price decimal.Decimal) error {
	leg, ok := o.PrimaryLeg()
	if !ok {
		return types.InvalidInput(fmt.Sprintf("order %d has no tradable leg", o.OrderID))
	}

	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	if err != nil {
		return types.Storage("begin fill", err)
	}
	defer tx.Rollback(ctx)

	acct, err := s.accounts.GetForUpdate(ctx, tx, o.AccountNumber)
	if err != nil {
		return err
	}
	fresh, err := s.orders.GetForUpdate(ctx, tx, o.OrderID)
	if err != nil {
		return err
	}
	if fresh.Status != types.OrderStatusWorking {
		return types.InvalidInput(fmt.Sprintf("order %d is %s, not WORKING", fresh.OrderID, fresh.Status))
	}

	if err := Settle(acct, leg, fresh.Quantity, price); err != nil {
		return err
	}

	now := time.Now().UTC()
	fresh.Status = types.OrderStatusFilled
	fresh.FilledQuantity = fresh.Quantity
	fresh.RemainingQuantity = decimal.Zero
	fresh.Cancelable = false
	fresh.Editable = false
	fresh.CloseTime = &now

	if err := s.orders.MarkFilledTx(ctx, tx, fresh); err != nil {
		return err
	}
	if err := s.accounts.UpdateTx(ctx, tx, acct); err != nil {
		return err
	}
	trade := model.NewTradeTransaction(acct.HashValue, leg, fresh.Quantity, price, now)
	if _, err := s.txs.InsertTx(ctx, tx, &trade); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return types.Storage("commit fill", err)
	}
	return nil
}
