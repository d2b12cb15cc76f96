package execution

import (
	"context"
	"log/slog"

	"papertrader/internal/model"
	"papertrader/internal/types"

	"github.com/shopspring/decimal"
)

// QuoteSource supplies the current simulated price per symbol.
type QuoteSource interface {
	CurrentPrice(symbol string) (decimal.Decimal, error)
}

// Ledger is the slice of storage the engine needs: the working-order scan
// and the atomic fill write.
type Ledger interface {
	WorkingOrders(ctx context.Context) ([]model.Order, error)
	FillOrder(ctx context.Context, o *model.Order, price decimal.Decimal) error
}

// Engine evaluates working orders against quotes, one order at a time.
type Engine struct {
	ledger Ledger
	quotes QuoteSource
	logger *slog.Logger
}

func NewEngine(ledger Ledger, quotes QuoteSource, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{ledger: ledger, quotes: quotes, logger: logger}
}

// Decide reports whether a working order fills at the market price.
//
//   - MARKET always fills.
//   - LIMIT fills buy-side when market <= limit, sell-side when
//     market >= limit.
//   - STOP is a trigger: SELL/SELL_TO_CLOSE activates when market <= stop,
//     BUY/BUY_TO_OPEN when market >= stop, and the order then fills at the
//     market price.
//
// Anything else stays working.
func Decide(o *model.Order, market decimal.Decimal) bool {
	leg, ok := o.PrimaryLeg()
	if !ok {
		return false
	}
	switch o.OrderType {
	case types.OrderTypeMarket:
		return true
	case types.OrderTypeLimit:
		if o.Price == nil {
			return false
		}
		switch leg.Instruction {
		case types.InstructionBuy, types.InstructionBuyToOpen, types.InstructionBuyToClose:
			return market.LessThanOrEqual(*o.Price)
		case types.InstructionSell, types.InstructionSellToOpen, types.InstructionSellToClose:
			return market.GreaterThanOrEqual(*o.Price)
		}
	case types.OrderTypeStop:
		if o.StopPrice == nil {
			return false
		}
		switch leg.Instruction {
		case types.InstructionSell, types.InstructionSellToClose:
			return market.LessThanOrEqual(*o.StopPrice)
		case types.InstructionBuy, types.InstructionBuyToOpen:
			return market.GreaterThanOrEqual(*o.StopPrice)
		}
	}
	return false
}

// SweepStats summarizes one pass over the working orders.
type SweepStats struct {
	Scanned int
	Filled  int
	Skipped int
}

// Sweep evaluates every working order once. A failure on one order is
// logged and skipped; it never aborts the rest of the sweep.
func (e *Engine) Sweep(ctx context.Context) (SweepStats, error) {
	working, err := e.ledger.WorkingOrders(ctx)
	if err != nil {
		return SweepStats{}, err
	}

	stats := SweepStats{Scanned: len(working)}
	for i := range working {
		o := &working[i]

		leg, ok := o.PrimaryLeg()
		if !ok {
			e.logger.Warn("order has no tradable leg",
				slog.Int64("orderId", o.OrderID))
			stats.Skipped++
			continue
		}
		market, err := e.quotes.CurrentPrice(leg.Instrument.Symbol)
		if err != nil {
			e.logger.Warn("no quote for symbol",
				slog.Int64("orderId", o.OrderID),
				slog.String("symbol", leg.Instrument.Symbol),
				slog.Any("err", err))
			stats.Skipped++
			continue
		}
		if !Decide(o, market) {
			continue
		}
		if err := e.ledger.FillOrder(ctx, o, market); err != nil {
			e.logger.Warn("fill not applied",
				slog.Int64("orderId", o.OrderID),
				slog.String("symbol", leg.Instrument.Symbol),
				slog.Any("err", err))
			stats.Skipped++
			continue
		}
		stats.Filled++
		e.logger.Info("order filled",
			slog.Int64("orderId", o.OrderID),
			slog.String("symbol", leg.Instrument.Symbol),
			slog.String("price", market.String()))
	}
	return stats, nil
}
