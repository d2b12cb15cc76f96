package orders

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"papertrader/internal/model"
	"papertrader/internal/types"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Order ids are allocated as max(existing)+1 under this advisory lock, so
// concurrent inserts serialize without a sequence table. Transactions use
// lock key 2.
const orderIDLockKey = 1

// firstOrderID-1 seeds the COALESCE when the table is empty, so the first
// allocated id is 1001.
const firstOrderID = 1001

type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Filter narrows order scans. From/To are mandatory; zero Status matches any
// status and zero MaxResults means no limit.
type Filter struct {
	AccountHash string
	From        time.Time
	To          time.Time
	Status      types.OrderStatus
	MaxResults  int
}

// Create allocates the next order id and persists the order as WORKING,
// both inside one serializable transaction.
func (s *Store) Create(ctx context.Context, o *model.Order) (int64, error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	if err != nil {
		return 0, types.Storage("begin create order", err)
	}
	defer tx.Rollback(ctx)

	id, err := s.insertTx(ctx, tx, o)
	if err != nil {
		return 0, err
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, types.Storage("commit create order", err)
	}
	return id, nil
}

func (s *Store) insertTx(ctx context.Context, tx pgx.Tx, o *model.Order) (int64, error) {
	if _, err := tx.Exec(ctx, "select pg_advisory_xact_lock($1)", orderIDLockKey); err != nil {
		return 0, types.Storage("lock order ids", err)
	}
	var id int64
	if err := tx.QueryRow(ctx, "select coalesce(max(order_id), $1) + 1 from orders", firstOrderID-1).Scan(&id); err != nil {
		return 0, types.Storage("allocate order id", err)
	}
	o.OrderID = id

	doc, err := json.Marshal(o)
	if err != nil {
		return 0, types.Storage("encode order", err)
	}
	_, err = tx.Exec(ctx, "insert into orders (order_id, account_number, status, order_data, entered_time, close_time, updated_at) values ($1,$2,$3,$4::jsonb,$5,$6,$7)", o.OrderID, o.AccountNumber, string(o.Status), string(doc), o.EnteredTime, o.CloseTime, o.EnteredTime)
	if err != nil {
		return 0, types.Storage("insert order", err)
	}
	return id, nil
}

func (s *Store) Get(ctx context.Context, orderID int64) (*model.Order, error) {
	return scanOrder(s.pool.QueryRow(ctx, "select order_data from orders where order_id = $1", orderID), orderID)
}

// GetForUpdate locks the order row inside a caller-owned transaction. The
// fill path uses this to serialize against a racing cancel.
func (s *Store) GetForUpdate(ctx context.Context, tx pgx.Tx, orderID int64) (*model.Order, error) {
	return scanOrder(tx.QueryRow(ctx, "select order_data from orders where order_id = $1 for update", orderID), orderID)
}

func (s *Store) List(ctx context.Context, f Filter) ([]model.Order, error) {
	query := "select order_data from orders where entered_time >= $1 and entered_time <= $2"
	args := []any{f.From, f.To}
	if f.AccountHash != "" {
		query += fmt.Sprintf(" and account_number = $%d", len(args)+1)
		args = append(args, f.AccountHash)
	}
	if f.Status != "" {
		query += fmt.Sprintf(" and status = $%d", len(args)+1)
		args = append(args, string(f.Status))
	}
	query += " order by entered_time desc"
	if f.MaxResults > 0 {
		query += fmt.Sprintf(" limit $%d", len(args)+1)
		args = append(args, f.MaxResults)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, types.Storage("list orders", err)
	}
	defer rows.Close()
	return collectOrders(rows)
}

// ListWorking returns every WORKING order across all accounts, oldest first,
// for the execution sweep.
func (s *Store) ListWorking(ctx context.Context) ([]model.Order, error) {
	rows, err := s.pool.Query(ctx, "select order_data from orders where status = $1 order by entered_time asc", string(types.OrderStatusWorking))
	if err != nil {
		return nil, types.Storage("list working orders", err)
	}
	defer rows.Close()
	return collectOrders(rows)
}

// Cancel transitions a WORKING order to CANCELED. Canceling an order that is
// already CANCELED succeeds without touching the row; a FILLED order cannot
// be canceled.
func (s *Store) Cancel(ctx context.Context, orderID int64) (*model.Order, error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	if err != nil {
		return nil, types.Storage("begin cancel order", err)
	}
	defer tx.Rollback(ctx)

	o, err := s.cancelTx(ctx, tx, orderID)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, types.Storage("commit cancel order", err)
	}
	return o, nil
}

func (s *Store) cancelTx(ctx context.Context, tx pgx.Tx, orderID int64) (*model.Order, error) {
	o, err := s.GetForUpdate(ctx, tx, orderID)
	if err != nil {
		return nil, err
	}
	switch o.Status {
	case types.OrderStatusCanceled:
		return o, nil
	case types.OrderStatusFilled:
		return nil, types.InvalidInput(fmt.Sprintf("order %d is already filled", orderID))
	}

	now := time.Now().UTC()
	o.Status = types.OrderStatusCanceled
	o.Cancelable = false
	o.Editable = false
	o.CloseTime = &now
	if err := s.writeTerminal(ctx, tx, o, types.OrderStatusWorking); err != nil {
		return nil, err
	}
	return o, nil
}

// Replace cancels the old order and inserts the replacement under a fresh id
// in the same transaction. The old order must still be WORKING.
func (s *Store) Replace(ctx context.Context, orderID int64, replacement *model.Order) (int64, error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	if err != nil {
		return 0, types.Storage("begin replace order", err)
	}
	defer tx.Rollback(ctx)

	old, err := s.GetForUpdate(ctx, tx, orderID)
	if err != nil {
		return 0, err
	}
	if old.Status != types.OrderStatusWorking {
		return 0, types.InvalidInput(fmt.Sprintf("order %d is %s and cannot be replaced", orderID, old.Status))
	}
	if _, err := s.cancelTx(ctx, tx, orderID); err != nil {
		return 0, err
	}
	id, err := s.insertTx(ctx, tx, replacement)
	if err != nil {
		return 0, err
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, types.Storage("commit replace order", err)
	}
	return id, nil
}

// MarkFilledTx writes a filled order inside the caller's fill transaction.
// The status guard keeps a fill from landing on an order canceled between
// the sweep's read and this write.
func (s *Store) MarkFilledTx(ctx context.Context, tx pgx.Tx, o *model.Order) error {
	return s.writeTerminal(ctx, tx, o, types.OrderStatusWorking)
}

// writeTerminal updates the order document and its indexed columns, guarded
// on the status the caller observed.
func (s *Store) writeTerminal(ctx context.Context, tx pgx.Tx, o *model.Order, guard types.OrderStatus) error {
	doc, err := json.Marshal(o)
	if err != nil {
		return types.Storage("encode order", err)
	}
	tag, err := tx.Exec(ctx, "update orders set status = $2, order_data = $3::jsonb, close_time = $4, updated_at = $5 where order_id = $1 and status = $6", o.OrderID, string(o.Status), string(doc), o.CloseTime, time.Now().UTC(), string(guard))
	if err != nil {
		return types.Storage("update order", err)
	}
	if tag.RowsAffected() == 0 {
		return types.InvalidInput(fmt.Sprintf("order %d is no longer %s", o.OrderID, guard))
	}
	return nil
}

func scanOrder(row pgx.Row, orderID int64) (*model.Order, error) {
	var doc []byte
	if err := row.Scan(&doc); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, types.NotFound("Order", fmt.Sprintf("%d", orderID))
		}
		return nil, types.Storage("get order", err)
	}
	var o model.Order
	if err := json.Unmarshal(doc, &o); err != nil {
		return nil, types.Storage("decode order", err)
	}
	return &o, nil
}

func collectOrders(rows pgx.Rows) ([]model.Order, error) {
	out := make([]model.Order, 0, 16)
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, types.Storage("scan order", err)
		}
		var o model.Order
		if err := json.Unmarshal(doc, &o); err != nil {
			return nil, types.Storage("decode order", err)
		}
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, types.Storage("list orders", err)
	}
	return out, nil
}
