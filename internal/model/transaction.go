package model

import (
	"time"

	"papertrader/internal/types"

	"github.com/shopspring/decimal"
)

// Transaction is an immutable ledger entry. Rows are only ever inserted.
type Transaction struct {
	ActivityID    int64                 `json:"activityId"`
	Time          time.Time             `json:"time"`
	Type          types.TransactionType `json:"type"`
	ActivityType  types.ActivityType    `json:"activityType"`
	Status        string                `json:"status"`
	AccountNumber string                `json:"accountNumber"`
	NetAmount     decimal.Decimal       `json:"netAmount"`
	TradeDate     time.Time             `json:"tradeDate"`
	TransferItems []TransferItem        `json:"transferItems,omitempty"`
}

type TransferItem struct {
	Instrument     Instrument           `json:"instrument"`
	Amount         decimal.Decimal      `json:"amount"`
	Cost           decimal.Decimal      `json:"cost"`
	Price          decimal.Decimal      `json:"price"`
	PositionEffect types.PositionEffect `json:"positionEffect,omitempty"`
}

// NewTradeTransaction records one executed fill. NetAmount is signed from the
// account's point of view: buys debit (negative), sells credit (positive).
func NewTradeTransaction(accountHash string, leg OrderLeg, quantity, price decimal.Decimal, now time.Time) Transaction {
	cost := price.Mul(quantity).Round(2)
	net := cost
	effect := types.PositionEffectOpening
	if leg.Instruction.IsBuy() {
		net = cost.Neg()
		if leg.Instruction == types.InstructionBuyToClose || leg.Instruction == types.InstructionBuyToCover {
			effect = types.PositionEffectClosing
		}
	} else if leg.Instruction == types.InstructionSell || leg.Instruction == types.InstructionSellToClose {
		effect = types.PositionEffectClosing
	}
	return Transaction{
		Time:          now,
		Type:          types.TransactionTypeTrade,
		ActivityType:  types.ActivityTypeExecution,
		Status:        "VALID",
		AccountNumber: accountHash,
		NetAmount:     net,
		TradeDate:     now,
		TransferItems: []TransferItem{{
			Instrument:     leg.Instrument,
			Amount:         quantity,
			Cost:           cost,
			Price:          price,
			PositionEffect: effect,
		}},
	}
}

// Symbol returns the instrument symbol of the first transfer item, if any.
func (t *Transaction) Symbol() string {
	for _, item := range t.TransferItems {
		if item.Instrument.Symbol != "" {
			return item.Instrument.Symbol
		}
	}
	return ""
}
