package transactions

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

// Activity ids use the same max+1 allocation as order ids but under their
// own advisory lock so order placement and fills do not contend.
const activityIDLockKey = 2

const firstActivityID = 1001

type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// InsertTx appends a transaction inside the caller's fill transaction. The
// ledger is append-only; there is no update or delete path.
func (s *Store) InsertTx(ctx context.Context, tx pgx.Tx, t *model.Transaction) (int64, error) {
	if _, err := tx.Exec(ctx, "select pg_advisory_xact_lock($1)", activityIDLockKey); err != nil {
		return 0, types.Storage("lock activity ids", err)
	}
	var id int64
	if err := tx.QueryRow(ctx, "select coalesce(max(activity_id), $1) + 1 from transactions", firstActivityID-1).Scan(&id); err != nil {
		return 0, types.Storage("allocate activity id", err)
	}
	t.ActivityID = id

	doc, err := json.Marshal(t)
	if err != nil {
		return 0, types.Storage("encode transaction", err)
	}
	_, err = tx.Exec(ctx, "insert into transactions (activity_id, account_number, type, transaction_data, time) values ($1,$2,$3,$4::jsonb,$5)", t.ActivityID, t.AccountNumber, string(t.Type), string(doc), t.Time)
	if err != nil {
		return 0, types.Storage("insert transaction", err)
	}
	return id, nil
}

func (s *Store) Get(ctx context.Context, activityID int64) (*model.Transaction, error) {
	var doc []byte
	err := s.pool.QueryRow(ctx, "select transaction_data from transactions where activity_id = $1", activityID).Scan(&doc)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, types.NotFound("Transaction", fmt.Sprintf("%d", activityID))
		}
		return nil, types.Storage("get transaction", err)
	}
	var t model.Transaction
	if err := json.Unmarshal(doc, &t); err != nil {
		return nil, types.Storage("decode transaction", err)
	}
	return &t, nil
}

// ListByAccount scans the account's ledger for the date range and type set.
// The symbol filter applies after deserialization because the symbol lives
// inside the document, not in an indexed column.
func (s *Store) ListByAccount(ctx context.Context, hash string, start, end time.Time, txTypes []types.TransactionType, symbol string) ([]model.Transaction, error) {
	query := "select transaction_data from transactions where account_number = $1 and time >= $2 and time <= $3"
	args := []any{hash, start, end}
	if len(txTypes) > 0 {
		query += fmt.Sprintf(" and type = any($%d)", len(args)+1)
		names := make([]string, 0, len(txTypes))
		for _, tt := range txTypes {
			names = append(names, string(tt))
		}
		args = append(args, names)
	}
	query += " order by time desc"

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, types.Storage("list transactions", err)
	}
	defer rows.Close()

	out := make([]model.Transaction, 0, 16)
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, types.Storage("scan transaction", err)
		}
		var t model.Transaction
		if err := json.Unmarshal(doc, &t); err != nil {
			return nil, types.Storage("decode transaction", err)
		}
		if symbol != "" && t.Symbol() != symbol {
			continue
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, types.Storage("list transactions", err)
	}
	return out, nil
}
