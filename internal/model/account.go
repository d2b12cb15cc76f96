package model

import (
	"time"

	"papertrader/internal/types"

	"github.com/shopspring/decimal"
)

// Account is a closed union of the CASH and MARGIN variants. Type is the
// discriminant; exactly one variant of each balance set is populated.
type Account struct {
	Type          types.AccountType `json:"type"`
	AccountNumber string            `json:"accountNumber"`
	HashValue     string            `json:"hashValue"`
	RoundTrips    int               `json:"roundTrips"`
	IsDayTrader   bool              `json:"isDayTrader"`

	Positions []Position `json:"positions,omitempty"`

	InitialBalances   Balances `json:"initialBalances"`
	CurrentBalances   Balances `json:"currentBalances"`
	ProjectedBalances Balances `json:"projectedBalances"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type Balances struct {
	Cash   *CashBalances   `json:"cash,omitempty"`
	Margin *MarginBalances `json:"margin,omitempty"`
}

type CashBalances struct {
	CashAvailableForTrading    decimal.Decimal `json:"cashAvailableForTrading"`
	CashAvailableForWithdrawal decimal.Decimal `json:"cashAvailableForWithdrawal"`
	TotalCash                  decimal.Decimal `json:"totalCash"`
	UnsettledCash              decimal.Decimal `json:"unsettledCash"`
}

type MarginBalances struct {
	AvailableFunds         decimal.Decimal `json:"availableFunds"`
	BuyingPower            decimal.Decimal `json:"buyingPower"`
	DayTradingBuyingPower  decimal.Decimal `json:"dayTradingBuyingPower"`
	Equity                 decimal.Decimal `json:"equity"`
	LongMarginValue        decimal.Decimal `json:"longMarginValue"`
	MaintenanceRequirement decimal.Decimal `json:"maintenanceRequirement"`
}

type Position struct {
	Instrument           Instrument      `json:"instrument"`
	LongQuantity         decimal.Decimal `json:"longQuantity"`
	ShortQuantity        decimal.Decimal `json:"shortQuantity"`
	AveragePrice         decimal.Decimal `json:"averagePrice"`
	MarketValue          decimal.Decimal `json:"marketValue"`
	CurrentDayProfitLoss decimal.Decimal `json:"currentDayProfitLoss"`
}

type Instrument struct {
	AssetType   types.AssetType `json:"assetType"`
	Symbol      string          `json:"symbol"`
	Cusip       string          `json:"cusip,omitempty"`
	Description string          `json:"description,omitempty"`
}

// NewAccount builds a freshly seeded account of the given variant. All three
// balance sets start at the seed value; margin buying power doubles it.
func NewAccount(accountType types.AccountType, accountNumber, hashValue string, seed decimal.Decimal, now time.Time) Account {
	a := Account{
		Type:          accountType,
		AccountNumber: accountNumber,
		HashValue:     hashValue,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	a.InitialBalances = seedBalances(accountType, seed)
	a.CurrentBalances = seedBalances(accountType, seed)
	a.ProjectedBalances = seedBalances(accountType, seed)
	return a
}

func seedBalances(accountType types.AccountType, seed decimal.Decimal) Balances {
	if accountType == types.AccountTypeMargin {
		return Balances{Margin: &MarginBalances{
			AvailableFunds:        seed,
			BuyingPower:           seed.Mul(decimal.NewFromInt(2)),
			DayTradingBuyingPower: seed.Mul(decimal.NewFromInt(2)),
			Equity:                seed,
		}}
	}
	return Balances{Cash: &CashBalances{
		CashAvailableForTrading:    seed,
		CashAvailableForWithdrawal: seed,
		TotalCash:                  seed,
	}}
}

// Clone deep-copies the populated variant so two balance sets never share
// a record.
func (b Balances) Clone() Balances {
	var out Balances
	if b.Cash != nil {
		c := *b.Cash
		out.Cash = &c
	}
	if b.Margin != nil {
		m := *b.Margin
		out.Margin = &m
	}
	return out
}

// AvailableFunds returns the amount the account may spend on a buy: cash
// available for a CASH account, buying power for a MARGIN account.
func (a *Account) AvailableFunds() decimal.Decimal {
	switch a.Type {
	case types.AccountTypeMargin:
		if a.CurrentBalances.Margin != nil {
			return a.CurrentBalances.Margin.BuyingPower
		}
	default:
		if a.CurrentBalances.Cash != nil {
			return a.CurrentBalances.Cash.CashAvailableForTrading
		}
	}
	return decimal.Zero
}

// ApplyCashDelta moves the current balances by delta (negative for buys) and
// keeps the variant's derived figures consistent.
func (a *Account) ApplyCashDelta(delta decimal.Decimal) {
	switch a.Type {
	case types.AccountTypeMargin:
		if m := a.CurrentBalances.Margin; m != nil {
			m.AvailableFunds = m.AvailableFunds.Add(delta)
			m.BuyingPower = m.AvailableFunds.Mul(decimal.NewFromInt(2))
			m.DayTradingBuyingPower = m.BuyingPower
			m.Equity = m.Equity.Add(delta)
		}
	default:
		if c := a.CurrentBalances.Cash; c != nil {
			c.CashAvailableForTrading = c.CashAvailableForTrading.Add(delta)
			c.CashAvailableForWithdrawal = c.CashAvailableForWithdrawal.Add(delta)
			c.TotalCash = c.TotalCash.Add(delta)
		}
	}
}

// Position returns the position for symbol, creating it when absent.
func (a *Account) Position(instrument Instrument) *Position {
	for i := range a.Positions {
		if a.Positions[i].Instrument.Symbol == instrument.Symbol {
			return &a.Positions[i]
		}
	}
	a.Positions = append(a.Positions, Position{Instrument: instrument})
	return &a.Positions[len(a.Positions)-1]
}
