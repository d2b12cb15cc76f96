package orders

import (
	"context"
	"time"

	"papertrader/internal/model"
	"papertrader/internal/types"

	"github.com/shopspring/decimal"
)

// QuoteSource supplies the current simulated price for a symbol. Preview is
// the only service path that consults it; fills go through the execution
// engine.
type QuoteSource interface {
	CurrentPrice(symbol string) (decimal.Decimal, error)
}

type Service struct {
	store  *Store
	quotes QuoteSource
}

func NewService(store *Store, quotes QuoteSource) *Service {
	return &Service{store: store, quotes: quotes}
}

func validateRequest(req model.OrderRequest) error {
	if req.Session == "" {
		return types.InvalidInput("session is required")
	}
	if req.Duration == "" {
		return types.InvalidInput("duration is required")
	}
	if req.OrderType == "" {
		return types.InvalidInput("orderType is required")
	}
	return nil
}

func validateStatus(status types.OrderStatus) error {
	switch status {
	case "", types.OrderStatusWorking, types.OrderStatusFilled, types.OrderStatusCanceled, types.OrderStatusRejected:
		return nil
	}
	return types.InvalidInput("unknown order status " + string(status))
}

func validateRange(from, to time.Time) error {
	if from.IsZero() || to.IsZero() {
		return types.InvalidInput("fromEnteredTime and toEnteredTime are required")
	}
	if to.Before(from) {
		return types.InvalidInput("toEnteredTime must not precede fromEnteredTime")
	}
	return nil
}

// Place accepts an order for the account hash and returns the allocated id.
// The order starts WORKING; fills happen on the execution sweep.
func (s *Service) Place(ctx context.Context, hash string, req model.OrderRequest) (int64, error) {
	if hash == "" {
		return 0, types.InvalidInput("account hash is required")
	}
	if err := validateRequest(req); err != nil {
		return 0, err
	}
	order := model.NewWorkingOrder(hash, req, time.Now().UTC())
	return s.store.Create(ctx, &order)
}

func (s *Service) Get(ctx context.Context, hash string, orderID int64) (*model.Order, error) {
	if hash == "" {
		return nil, types.InvalidInput("account hash is required")
	}
	return s.store.Get(ctx, orderID)
}

func (s *Service) ListByAccount(ctx context.Context, hash string, f Filter) ([]model.Order, error) {
	if hash == "" {
		return nil, types.InvalidInput("account hash is required")
	}
	if err := validateRange(f.From, f.To); err != nil {
		return nil, err
	}
	if err := validateStatus(f.Status); err != nil {
		return nil, err
	}
	f.AccountHash = hash
	return s.store.List(ctx, f)
}

func (s *Service) ListAll(ctx context.Context, f Filter) ([]model.Order, error) {
	if err := validateRange(f.From, f.To); err != nil {
		return nil, err
	}
	if err := validateStatus(f.Status); err != nil {
		return nil, err
	}
	f.AccountHash = ""
	return s.store.List(ctx, f)
}

func (s *Service) Cancel(ctx context.Context, hash string, orderID int64) error {
	if hash == "" {
		return types.InvalidInput("account hash is required")
	}
	_, err := s.store.Cancel(ctx, orderID)
	return err
}

// Replace cancels the old order and places the replacement under a new id.
// The old id stays permanently terminal.
func (s *Service) Replace(ctx context.Context, hash string, orderID int64, req model.OrderRequest) (int64, error) {
	if hash == "" {
		return 0, types.InvalidInput("account hash is required")
	}
	if err := validateRequest(req); err != nil {
		return 0, err
	}
	replacement := model.NewWorkingOrder(hash, req, time.Now().UTC())
	return s.store.Replace(ctx, orderID, &replacement)
}

// Preview estimates what an order would cost at the current quote without
// persisting anything. Commission is always zero in the simulator.
type Preview struct {
	Symbol         string          `json:"symbol"`
	Quantity       decimal.Decimal `json:"quantity"`
	EstimatedPrice decimal.Decimal `json:"estimatedPrice"`
	EstimatedCost  decimal.Decimal `json:"estimatedCost"`
	Commission     decimal.Decimal `json:"commission"`
}

func (s *Service) Preview(ctx context.Context, hash string, req model.OrderRequest) (*Preview, error) {
	if hash == "" {
		return nil, types.InvalidInput("account hash is required")
	}
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	order := model.NewWorkingOrder(hash, req, time.Now().UTC())
	leg, ok := order.PrimaryLeg()
	if !ok {
		return nil, types.InvalidInput("order has no leg with an instrument symbol")
	}

	price, err := s.quotes.CurrentPrice(leg.Instrument.Symbol)
	if err != nil {
		return nil, err
	}
	if req.OrderType == types.OrderTypeLimit && order.Price != nil {
		price = *order.Price
	}
	return &Preview{
		Symbol:         leg.Instrument.Symbol,
		Quantity:       order.Quantity,
		EstimatedPrice: price,
		EstimatedCost:  price.Mul(order.Quantity).Round(2),
		Commission:     decimal.Zero,
	}, nil
}
