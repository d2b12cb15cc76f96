package accounts

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"papertrader/internal/model"
	"papertrader/internal/types"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store persists accounts as JSONB documents keyed by account number, with
// the hash value indexed for lookup. Methods suffixed Tx participate in a
// caller-owned transaction so fills can update accounts and orders atomically.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func (s *Store) Insert(ctx context.Context, tx pgx.Tx, a *model.Account) error {
	doc, err := json.Marshal(a)
	if err != nil {
		return types.Storage("encode account", err)
	}
	_, err = tx.Exec(ctx, "insert into accounts (account_number, hash_value, account_type, account_data, created_at, updated_at) values ($1,$2,$3,$4::jsonb,$5,$6)", a.AccountNumber, a.HashValue, string(a.Type), string(doc), a.CreatedAt, a.UpdatedAt)
	if err != nil {
		return types.Storage("insert account", err)
	}
	return nil
}

func (s *Store) Exists(ctx context.Context, tx pgx.Tx, accountNumber string) (bool, error) {
	var exists bool
	err := tx.QueryRow(ctx, "select exists(select 1 from accounts where account_number = $1)", accountNumber).Scan(&exists)
	if err != nil {
		return false, types.Storage("check account number", err)
	}
	return exists, nil
}

func (s *Store) Get(ctx context.Context, hash string) (*model.Account, error) {
	return scanAccount(s.pool.QueryRow(ctx, "select account_data from accounts where hash_value = $1", hash), hash)
}

// GetForUpdate locks the account row for the duration of tx.
func (s *Store) GetForUpdate(ctx context.Context, tx pgx.Tx, hash string) (*model.Account, error) {
	return scanAccount(tx.QueryRow(ctx, "select account_data from accounts where hash_value = $1 for update", hash), hash)
}

func (s *Store) List(ctx context.Context) ([]model.Account, error) {
	rows, err := s.pool.Query(ctx, "select account_data from accounts order by created_at desc")
	if err != nil {
		return nil, types.Storage("list accounts", err)
	}
	defer rows.Close()

	out := make([]model.Account, 0, 8)
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, types.Storage("scan account", err)
		}
		var a model.Account
		if err := json.Unmarshal(doc, &a); err != nil {
			return nil, types.Storage("decode account", err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, types.Storage("list accounts", err)
	}
	return out, nil
}

// AccountNumberHash pairs a plain account number with its opaque hash. All
// other endpoints accept only the hash.
type AccountNumberHash struct {
	AccountNumber string `json:"accountNumber"`
	HashValue     string `json:"hashValue"`
}

func (s *Store) Numbers(ctx context.Context) ([]AccountNumberHash, error) {
	rows, err := s.pool.Query(ctx, "select account_number, hash_value from accounts order by created_at desc")
	if err != nil {
		return nil, types.Storage("list account numbers", err)
	}
	defer rows.Close()

	out := make([]AccountNumberHash, 0, 8)
	for rows.Next() {
		var n AccountNumberHash
		if err := rows.Scan(&n.AccountNumber, &n.HashValue); err != nil {
			return nil, types.Storage("scan account number", err)
		}
		out = append(out, n)
	}
	if err := rows.Err(); err != nil {
		return nil, types.Storage("list account numbers", err)
	}
	return out, nil
}

func (s *Store) Update(ctx context.Context, a *model.Account) error {
	a.UpdatedAt = time.Now().UTC()
	doc, err := json.Marshal(a)
	if err != nil {
		return types.Storage("encode account", err)
	}
	tag, err := s.pool.Exec(ctx, "update accounts set account_data = $2::jsonb, updated_at = $3 where hash_value = $1", a.HashValue, string(doc), a.UpdatedAt)
	if err != nil {
		return types.Storage("update account", err)
	}
	if tag.RowsAffected() == 0 {
		return types.NotFound("Account", a.HashValue)
	}
	return nil
}

// UpdateTx writes the account document inside a caller-owned transaction.
func (s *Store) UpdateTx(ctx context.Context, tx pgx.Tx, a *model.Account) error {
	a.UpdatedAt = time.Now().UTC()
	doc, err := json.Marshal(a)
	if err != nil {
		return types.Storage("encode account", err)
	}
	tag, err := tx.Exec(ctx, "update accounts set account_data = $2::jsonb, updated_at = $3 where hash_value = $1", a.HashValue, string(doc), a.UpdatedAt)
	if err != nil {
		return types.Storage("update account", err)
	}
	if tag.RowsAffected() == 0 {
		return types.NotFound("Account", a.HashValue)
	}
	return nil
}

// DeleteTx removes the account row itself; the service deletes dependent
// orders and transactions in the same transaction first.
func (s *Store) DeleteTx(ctx context.Context, tx pgx.Tx, hash string) error {
	tag, err := tx.Exec(ctx, "delete from accounts where hash_value = $1", hash)
	if err != nil {
		return types.Storage("delete account", err)
	}
	if tag.RowsAffected() == 0 {
		return types.NotFound("Account", hash)
	}
	return nil
}

func scanAccount(row pgx.Row, hash string) (*model.Account, error) {
	var doc []byte
	if err := row.Scan(&doc); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, types.NotFound("Account", hash)
		}
		return nil, types.Storage("get account", err)
	}
	var a model.Account
	if err := json.Unmarshal(doc, &a); err != nil {
		return nil, types.Storage("decode account", err)
	}
	return &a, nil
}
