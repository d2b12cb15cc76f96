package transactions

import (
	"context"
	"time"

	"papertrader/internal/model"
	"papertrader/internal/types"
)

type Service struct {
	store *Store
}

func NewService(store *Store) *Service {
	return &Service{store: store}
}

func validateTypes(txTypes []types.TransactionType) error {
	if len(txTypes) == 0 {
		return types.InvalidInput("at least one transaction type is required")
	}
	for _, tt := range txTypes {
		switch tt {
		case types.TransactionTypeTrade, types.TransactionTypeReceiveAndDeliver,
			types.TransactionTypeDividendOrInterest, types.TransactionTypeJournal,
			types.TransactionTypeCashReceipt, types.TransactionTypeCashDisbursement:
		default:
			return types.InvalidInput("unknown transaction type " + string(tt))
		}
	}
	return nil
}

func (s *Service) List(ctx context.Context, hash string, start, end time.Time, txTypes []types.TransactionType, symbol string) ([]model.Transaction, error) {
	if hash == "" {
		return nil, types.InvalidInput("account hash is required")
	}
	if start.IsZero() || end.IsZero() {
		return nil, types.InvalidInput("startDate and endDate are required")
	}
	if end.Before(start) {
		return nil, types.InvalidInput("endDate must not precede startDate")
	}
	if err := validateTypes(txTypes); err != nil {
		return nil, err
	}
	return s.store.ListByAccount(ctx, hash, start, end, txTypes, symbol)
}

func (s *Service) Get(ctx context.Context, hash string, activityID int64) (*model.Transaction, error) {
	if hash == "" {
		return nil, types.InvalidInput("account hash is required")
	}
	return s.store.Get(ctx, activityID)
}
