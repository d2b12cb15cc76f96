package prefs

import (
	"context"

	"papertrader/internal/model"
	"papertrader/internal/types"
)

type Service struct {
	store *Store
}

func NewService(store *Store) *Service {
	return &Service{store: store}
}

func (s *Service) Get(ctx context.Context) (*model.UserPreference, error) {
	return s.store.Get(ctx)
}

// RefreshAccounts rewrites the singleton's account list after an admin
// creates, deletes, or resets an account. The first account listed is marked
// primary.
func (s *Service) RefreshAccounts(ctx context.Context, accounts []model.Account) error {
	p, err := s.store.Get(ctx)
	if err != nil {
		if !types.IsNotFound(err) {
			return err
		}
		p = &model.UserPreference{
			StreamerInfo: []model.StreamerInfo{{StreamerSocketURL: "/marketdata/v1/stream", CustomerID: "papertrader"}},
		}
	}

	p.Accounts = make([]model.PreferenceAccount, 0, len(accounts))
	for i, a := range accounts {
		p.Accounts = append(p.Accounts, model.PreferenceAccount{
			AccountNumber: a.HashValue,
			Primary:       i == 0,
			NickName:      "Paper " + string(a.Type),
			Type:          string(a.Type),
		})
	}
	return s.store.Upsert(ctx, p)
}
