package execution

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strconv"
	"testing"
	"time"

	"papertrader/internal/model"
	"papertrader/internal/types"

	"github.com/shopspring/decimal"
	"pgregory.net/rapid"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newOrder(orderType types.OrderType, instruction types.Instruction, symbol, qty string) model.Order {
	req := model.OrderRequest{
		Session:   types.SessionNormal,
		Duration:  types.DurationDay,
		OrderType: orderType,
		OrderLegCollection: []model.OrderLeg{{
			Instrument:  model.Instrument{AssetType: types.AssetTypeEquity, Symbol: symbol},
			Instruction: instruction,
			Quantity:    dec(qty),
		}},
	}
	return model.NewWorkingOrder("HASH1", req, time.Now().UTC())
}

type stubQuotes map[string]decimal.Decimal

func (q stubQuotes) CurrentPrice(symbol string) (decimal.Decimal, error) {
	p, ok := q[symbol]
	if !ok {
		return decimal.Decimal{}, types.NotFound("Symbol", symbol)
	}
	return p, nil
}

type fakeLedger struct {
	working []model.Order
	listErr error
	fillErr map[int64]error
	filled  []int64
	prices  []decimal.Decimal
}

func (f *fakeLedger) WorkingOrders(ctx context.Context) ([]model.Order, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]model.Order, len(f.working))
	copy(out, f.working)
	return out, nil
}

func (f *fakeLedger) FillOrder(ctx context.Context, o *model.Order, price decimal.Decimal) error {
	if err := f.fillErr[o.OrderID]; err != nil {
		return err
	}
	f.filled = append(f.filled, o.OrderID)
	f.prices = append(f.prices, price)
	return nil
}

func TestDecide(t *testing.T) {
	market := dec("100")
	tests := []struct {
		name        string
		orderType   types.OrderType
		instruction types.Instruction
		price       *decimal.Decimal
		stopPrice   *decimal.Decimal
		want        bool
	}{
		{"market buy", types.OrderTypeMarket, types.InstructionBuy, nil, nil, true},
		{"market sell", types.OrderTypeMarket, types.InstructionSell, nil, nil, true},
		{"limit buy below limit", types.OrderTypeLimit, types.InstructionBuy, decPtr("110"), nil, true},
		{"limit buy at limit", types.OrderTypeLimit, types.InstructionBuy, decPtr("100"), nil, true},
		{"limit buy above limit", types.OrderTypeLimit, types.InstructionBuy, decPtr("90"), nil, false},
		{"limit buy to open", types.OrderTypeLimit, types.InstructionBuyToOpen, decPtr("100"), nil, true},
		{"limit buy to close", types.OrderTypeLimit, types.InstructionBuyToClose, decPtr("100"), nil, true},
		{"limit sell above limit", types.OrderTypeLimit, types.InstructionSell, decPtr("90"), nil, true},
		{"limit sell at limit", types.OrderTypeLimit, types.InstructionSell, decPtr("100"), nil, true},
		{"limit sell below limit", types.OrderTypeLimit, types.InstructionSell, decPtr("110"), nil, false},
		{"limit sell to open", types.OrderTypeLimit, types.InstructionSellToOpen, decPtr("95"), nil, true},
		{"limit sell to close", types.OrderTypeLimit, types.InstructionSellToClose, decPtr("95"), nil, true},
		{"limit sell short stays working", types.OrderTypeLimit, types.InstructionSellShort, decPtr("90"), nil, false},
		{"limit buy to cover stays working", types.OrderTypeLimit, types.InstructionBuyToCover, decPtr("110"), nil, false},
		{"limit without price", types.OrderTypeLimit, types.InstructionBuy, nil, nil, false},
		{"stop sell at stop", types.OrderTypeStop, types.InstructionSell, nil, decPtr("100"), true},
		{"stop sell above stop", types.OrderTypeStop, types.InstructionSell, nil, decPtr("90"), false},
		{"stop sell to close below stop", types.OrderTypeStop, types.InstructionSellToClose, nil, decPtr("105"), true},
		{"stop buy at stop", types.OrderTypeStop, types.InstructionBuy, nil, decPtr("100"), true},
		{"stop buy below stop", types.OrderTypeStop, types.InstructionBuy, nil, decPtr("110"), false},
		{"stop buy to open above stop", types.OrderTypeStop, types.InstructionBuyToOpen, nil, decPtr("95"), true},
		{"stop sell to open stays working", types.OrderTypeStop, types.InstructionSellToOpen, nil, decPtr("100"), false},
		{"stop without stop price", types.OrderTypeStop, types.InstructionBuy, nil, nil, false},
		{"stop limit stays working", types.OrderTypeStopLimit, types.InstructionBuy, decPtr("100"), decPtr("100"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := newOrder(tt.orderType, tt.instruction, "AAPL", "10")
			o.Price = tt.price
			o.StopPrice = tt.stopPrice
			if got := Decide(&o, market); got != tt.want {
				t.Errorf("Decide() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDecideWithoutLeg(t *testing.T) {
	o := model.Order{OrderType: types.OrderTypeMarket, Status: types.OrderStatusWorking}
	if Decide(&o, dec("100")) {
		t.Error("order without a leg must not fill")
	}
}

// A buy never fills above its limit and a sell never fills below; at any
// market price at least one side of a matched pair fills.
func TestDecideLimitBounds(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		limit := decimal.NewFromFloat(rapid.Float64Range(1, 1000).Draw(t, "limit")).Round(2)
		market := decimal.NewFromFloat(rapid.Float64Range(1, 1000).Draw(t, "market")).Round(2)

		buy := newOrder(types.OrderTypeLimit, types.InstructionBuy, "AAPL", "1")
		buy.Price = &limit
		sell := newOrder(types.OrderTypeLimit, types.InstructionSell, "AAPL", "1")
		sell.Price = &limit

		buyFills := Decide(&buy, market)
		sellFills := Decide(&sell, market)
		if buyFills && market.GreaterThan(limit) {
			t.Fatalf("buy filled at %s above limit %s", market, limit)
		}
		if sellFills && market.LessThan(limit) {
			t.Fatalf("sell filled at %s below limit %s", market, limit)
		}
		if !buyFills && !sellFills {
			t.Fatalf("neither side filled at market %s limit %s", market, limit)
		}
	})
}

func TestSweep(t *testing.T) {
	marketOrder := newOrder(types.OrderTypeMarket, types.InstructionBuy, "AAPL", "10")
	marketOrder.OrderID = 1001
	limitOrder := newOrder(types.OrderTypeLimit, types.InstructionBuy, "AAPL", "5")
	limitOrder.OrderID = 1002
	limitOrder.Price = decPtr("150")
	noQuote := newOrder(types.OrderTypeMarket, types.InstructionBuy, "ZZZZ", "1")
	noQuote.OrderID = 1003

	ledger := &fakeLedger{working: []model.Order{marketOrder, limitOrder, noQuote}}
	engine := NewEngine(ledger, stubQuotes{"AAPL": dec("175.25")}, discardLogger())

	stats, err := engine.Sweep(context.Background())
	if err != nil {
		t.Fatalf("Sweep: %v", err)
	}
	if stats.Scanned != 3 || stats.Filled != 1 || stats.Skipped != 1 {
		t.Errorf("stats = %+v, want scanned 3 filled 1 skipped 1", stats)
	}
	if len(ledger.filled) != 1 || ledger.filled[0] != 1001 {
		t.Fatalf("filled order ids = %v, want [1001]", ledger.filled)
	}
	if !ledger.prices[0].Equal(dec("175.25")) {
		t.Errorf("fill price = %s, want 175.25", ledger.prices[0])
	}
}

func TestSweepFillErrorDoesNotAbort(t *testing.T) {
	first := newOrder(types.OrderTypeMarket, types.InstructionBuy, "AAPL", "10")
	first.OrderID = 1001
	second := newOrder(types.OrderTypeMarket, types.InstructionBuy, "AAPL", "5")
	second.OrderID = 1002

	ledger := &fakeLedger{
		working: []model.Order{first, second},
		fillErr: map[int64]error{1001: types.InvalidInput("insufficient funds")},
	}
	engine := NewEngine(ledger, stubQuotes{"AAPL": dec("175.25")}, discardLogger())

	stats, err := engine.Sweep(context.Background())
	if err != nil {
		t.Fatalf("Sweep: %v", err)
	}
	if stats.Filled != 1 || stats.Skipped != 1 {
		t.Errorf("stats = %+v, want filled 1 skipped 1", stats)
	}
	if len(ledger.filled) != 1 || ledger.filled[0] != 1002 {
		t.Errorf("filled order ids = %v, want [1002]", ledger.filled)
	}
}

func TestSweepListError(t *testing.T) {
	ledger := &fakeLedger{listErr: errors.New("connection refused")}
	engine := NewEngine(ledger, stubQuotes{}, discardLogger())

	if _, err := engine.Sweep(context.Background()); err == nil {
		t.Fatal("expected error when the working-order scan fails")
	}
}

// memLedger mirrors the fill write in memory: it re-reads its own copy of
// the order, settles against the account, and records the trade.
type memLedger struct {
	account *model.Account
	orders  []model.Order
	trades  []model.Transaction
}

func newMemLedger(account *model.Account, orders ...model.Order) *memLedger {
	return &memLedger{account: account, orders: orders}
}

func (m *memLedger) WorkingOrders(ctx context.Context) ([]model.Order, error) {
	var out []model.Order
	for _, o := range m.orders {
		if o.Status == types.OrderStatusWorking {
			out = append(out, o)
		}
	}
	return out, nil
}

func (m *memLedger) FillOrder(ctx context.Context, o *model.Order, price decimal.Decimal) error {
	leg, ok := o.PrimaryLeg()
	if !ok {
		return types.InvalidInput("order has no tradable leg")
	}
	var fresh *model.Order
	for i := range m.orders {
		if m.orders[i].OrderID == o.OrderID {
			fresh = &m.orders[i]
			break
		}
	}
	if fresh == nil {
		return types.NotFound("Order", strconv.FormatInt(o.OrderID, 10))
	}
	if fresh.Status != types.OrderStatusWorking {
		return types.InvalidInput("order is no longer WORKING")
	}
	if err := Settle(m.account, leg, fresh.Quantity, price); err != nil {
		return err
	}
	now := time.Now().UTC()
	fresh.Status = types.OrderStatusFilled
	fresh.FilledQuantity = fresh.Quantity
	fresh.RemainingQuantity = decimal.Zero
	fresh.Cancelable = false
	fresh.CloseTime = &now
	m.trades = append(m.trades, model.NewTradeTransaction(o.AccountNumber, leg, fresh.Quantity, price, now))
	return nil
}

func TestSweepMarketBuySettles(t *testing.T) {
	acct := model.NewAccount(types.AccountTypeCash, "12345678", "HASH1", dec("200000"), time.Now().UTC())
	o := newOrder(types.OrderTypeMarket, types.InstructionBuy, "AAPL", "10")
	o.OrderID = 1001

	ledger := newMemLedger(&acct, o)
	engine := NewEngine(ledger, stubQuotes{"AAPL": dec("175.25")}, discardLogger())

	stats, err := engine.Sweep(context.Background())
	if err != nil {
		t.Fatalf("Sweep: %v", err)
	}
	if stats.Filled != 1 {
		t.Fatalf("stats = %+v, want one fill", stats)
	}

	filled := ledger.orders[0]
	if filled.Status != types.OrderStatusFilled {
		t.Errorf("status = %s, want FILLED", filled.Status)
	}
	if !filled.FilledQuantity.Equal(dec("10")) || !filled.RemainingQuantity.IsZero() {
		t.Errorf("filled/remaining = %s/%s, want 10/0", filled.FilledQuantity, filled.RemainingQuantity)
	}
	if filled.CloseTime == nil {
		t.Error("close time not set")
	}

	if got := acct.CurrentBalances.Cash.CashAvailableForTrading; !got.Equal(dec("198247.50")) {
		t.Errorf("cash after fill = %s, want 198247.50", got)
	}
	if len(acct.Positions) != 1 {
		t.Fatalf("positions = %d, want 1", len(acct.Positions))
	}
	pos := acct.Positions[0]
	if !pos.LongQuantity.Equal(dec("10")) {
		t.Errorf("long quantity = %s, want 10", pos.LongQuantity)
	}
	if !pos.AveragePrice.Equal(dec("175.25")) {
		t.Errorf("average price = %s, want 175.25", pos.AveragePrice)
	}

	if len(ledger.trades) != 1 {
		t.Fatalf("trades recorded = %d, want 1", len(ledger.trades))
	}
	trade := ledger.trades[0]
	if trade.Type != types.TransactionTypeTrade || trade.ActivityType != types.ActivityTypeExecution {
		t.Errorf("trade type = %s/%s, want TRADE/EXECUTION", trade.Type, trade.ActivityType)
	}
	if !trade.NetAmount.Equal(dec("-1752.50")) {
		t.Errorf("net amount = %s, want -1752.50", trade.NetAmount)
	}
}

func TestSweepLimitSellStaysWorking(t *testing.T) {
	acct := model.NewAccount(types.AccountTypeCash, "12345678", "HASH1", dec("200000"), time.Now().UTC())
	acct.Positions = []model.Position{{
		Instrument:   model.Instrument{AssetType: types.AssetTypeEquity, Symbol: "AAPL"},
		LongQuantity: dec("5"),
		AveragePrice: dec("170"),
	}}
	o := newOrder(types.OrderTypeLimit, types.InstructionSell, "AAPL", "5")
	o.OrderID = 1001
	o.Price = decPtr("200")

	ledger := newMemLedger(&acct, o)
	engine := NewEngine(ledger, stubQuotes{"AAPL": dec("175.25")}, discardLogger())

	stats, err := engine.Sweep(context.Background())
	if err != nil {
		t.Fatalf("Sweep: %v", err)
	}
	if stats.Filled != 0 || stats.Skipped != 0 {
		t.Errorf("stats = %+v, want nothing filled or skipped", stats)
	}
	if ledger.orders[0].Status != types.OrderStatusWorking {
		t.Errorf("status = %s, want WORKING", ledger.orders[0].Status)
	}
	if len(ledger.trades) != 0 {
		t.Errorf("trades recorded = %d, want 0", len(ledger.trades))
	}
}

func TestSweepInsufficientFundsLeavesOrderWorking(t *testing.T) {
	acct := model.NewAccount(types.AccountTypeCash, "12345678", "HASH1", dec("100"), time.Now().UTC())
	o := newOrder(types.OrderTypeMarket, types.InstructionBuy, "AAPL", "10")
	o.OrderID = 1001

	ledger := newMemLedger(&acct, o)
	engine := NewEngine(ledger, stubQuotes{"AAPL": dec("175.25")}, discardLogger())

	stats, err := engine.Sweep(context.Background())
	if err != nil {
		t.Fatalf("Sweep: %v", err)
	}
	if stats.Filled != 0 || stats.Skipped != 1 {
		t.Errorf("stats = %+v, want filled 0 skipped 1", stats)
	}
	if ledger.orders[0].Status != types.OrderStatusWorking {
		t.Errorf("status = %s, want WORKING", ledger.orders[0].Status)
	}
	if got := acct.CurrentBalances.Cash.CashAvailableForTrading; !got.Equal(dec("100")) {
		t.Errorf("cash = %s, want untouched 100", got)
	}
}
