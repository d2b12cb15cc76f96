package execution

import (
	"fmt"

	"papertrader/internal/model"
	"papertrader/internal/types"

	"github.com/shopspring/decimal"
)

// Settle applies one executed trade to the account in memory: cash moves by
// price x quantity, the symbol's position is adjusted with a recomputed
// average cost on buys, and projected balances follow current. The caller
// persists the result.
//
// A trade that would overdraw a cash account or sell more than the long
// position fails here, leaving the order working; cash available for
// trading never goes negative.
func Settle(a *model.Account, leg model.OrderLeg, quantity, price decimal.Decimal) error {
	if quantity.LessThanOrEqual(decimal.Zero) {
		return types.InvalidInput("fill quantity must be positive")
	}
	cost := price.Mul(quantity).Round(2)

	pos := a.Position(leg.Instrument)
	switch {
	case leg.Instruction.IsBuy():
		if cost.GreaterThan(a.AvailableFunds()) {
			return types.InvalidInput(fmt.Sprintf("insufficient funds: need %s, available %s", cost, a.AvailableFunds()))
		}
		total := pos.LongQuantity.Add(quantity)
		pos.AveragePrice = pos.AveragePrice.Mul(pos.LongQuantity).Add(cost).Div(total)
		pos.LongQuantity = total
		a.ApplyCashDelta(cost.Neg())
	case leg.Instruction.IsSell():
		if quantity.GreaterThan(pos.LongQuantity) {
			return types.InvalidInput(fmt.Sprintf("insufficient position: selling %s of %s held", quantity, pos.LongQuantity))
		}
		pos.LongQuantity = pos.LongQuantity.Sub(quantity)
		if pos.LongQuantity.IsZero() {
			pos.AveragePrice = decimal.Zero
		}
		a.ApplyCashDelta(cost)
	default:
		return types.InvalidInput(fmt.Sprintf("instruction %s cannot settle", leg.Instruction))
	}

	pos.MarketValue = pos.LongQuantity.Mul(price).Round(2)
	pos.CurrentDayProfitLoss = price.Sub(pos.AveragePrice).Mul(pos.LongQuantity).Round(2)
	a.ProjectedBalances = a.CurrentBalances.Clone()
	return nil
}
