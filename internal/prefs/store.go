package prefs

import (
	"context"
	"encoding/json"
	"errors"

	"papertrader/internal/model"
	"papertrader/internal/types"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// The preference record is a singleton: one row, id always 1, upserted in
// place rather than versioned.
const singletonID = 1

type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func (s *Store) Get(ctx context.Context) (*model.UserPreference, error) {
	var doc []byte
	err := s.pool.QueryRow(ctx, "select preference_data from user_preferences where id = $1", singletonID).Scan(&doc)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, types.NotFound("UserPreference", "1")
		}
		return nil, types.Storage("get user preference", err)
	}
	var p model.UserPreference
	if err := json.Unmarshal(doc, &p); err != nil {
		return nil, types.Storage("decode user preference", err)
	}
	return &p, nil
}

func (s *Store) Upsert(ctx context.Context, p *model.UserPreference) error {
	doc, err := json.Marshal(p)
	if err != nil {
		return types.Storage("encode user preference", err)
	}
	_, err = s.pool.Exec(ctx, "insert into user_preferences (id, preference_data, updated_at) values ($1, $2::jsonb, now()) on conflict (id) do update set preference_data = excluded.preference_data, updated_at = now()", singletonID, string(doc))
	if err != nil {
		return types.Storage("upsert user preference", err)
	}
	return nil
}
