package model

import (
	"time"

	"papertrader/internal/types"

	"github.com/shopspring/decimal"
)

// Order is the persisted order document. AccountNumber carries the account
// hash, the only identifier this API exposes.
type Order struct {
	OrderID            int64             `json:"orderId"`
	AccountNumber      string            `json:"accountNumber"`
	Session            types.Session     `json:"session"`
	Duration           types.Duration    `json:"duration"`
	OrderType          types.OrderType   `json:"orderType"`
	Quantity           decimal.Decimal   `json:"quantity"`
	FilledQuantity     decimal.Decimal   `json:"filledQuantity"`
	RemainingQuantity  decimal.Decimal   `json:"remainingQuantity"`
	Price              *decimal.Decimal  `json:"price,omitempty"`
	StopPrice          *decimal.Decimal  `json:"stopPrice,omitempty"`
	OrderLegCollection []OrderLeg        `json:"orderLegCollection,omitempty"`
	Status             types.OrderStatus `json:"status"`
	Cancelable         bool              `json:"cancelable"`
	Editable           bool              `json:"editable"`
	EnteredTime        time.Time         `json:"enteredTime"`
	CloseTime          *time.Time        `json:"closeTime,omitempty"`
}

type OrderLeg struct {
	OrderLegType   types.AssetType      `json:"orderLegType"`
	LegID          int64                `json:"legId"`
	Instrument     Instrument           `json:"instrument"`
	Instruction    types.Instruction    `json:"instruction"`
	PositionEffect types.PositionEffect `json:"positionEffect,omitempty"`
	Quantity       decimal.Decimal      `json:"quantity"`
}

// OrderRequest is the inbound placement/replacement body. Pointer fields
// distinguish absent from zero.
type OrderRequest struct {
	Session            types.Session    `json:"session"`
	Duration           types.Duration   `json:"duration"`
	OrderType          types.OrderType  `json:"orderType"`
	Quantity           decimal.Decimal  `json:"quantity"`
	Price              *decimal.Decimal `json:"price,omitempty"`
	StopPrice          *decimal.Decimal `json:"stopPrice,omitempty"`
	OrderLegCollection []OrderLeg       `json:"orderLegCollection,omitempty"`
}

// NewWorkingOrder normalizes a request into a complete WORKING order so the
// stored document never disagrees with the indexed columns. The order id is
// assigned by the repository at insert.
func NewWorkingOrder(accountHash string, req OrderRequest, now time.Time) Order {
	qty := req.Quantity
	if qty.IsZero() && len(req.OrderLegCollection) > 0 {
		for _, leg := range req.OrderLegCollection {
			qty = qty.Add(leg.Quantity)
		}
	}
	legs := make([]OrderLeg, len(req.OrderLegCollection))
	copy(legs, req.OrderLegCollection)
	for i := range legs {
		legs[i].LegID = int64(i + 1)
		if legs[i].OrderLegType == "" {
			legs[i].OrderLegType = legs[i].Instrument.AssetType
		}
	}
	return Order{
		AccountNumber:      accountHash,
		Session:            req.Session,
		Duration:           req.Duration,
		OrderType:          req.OrderType,
		Quantity:           qty,
		FilledQuantity:     decimal.Zero,
		RemainingQuantity:  qty,
		Price:              req.Price,
		StopPrice:          req.StopPrice,
		OrderLegCollection: legs,
		Status:             types.OrderStatusWorking,
		Cancelable:         true,
		Editable:           false,
		EnteredTime:        now,
	}
}

// PrimaryLeg returns the first leg carrying an instrument symbol. Orders
// without one cannot be evaluated against a quote.
func (o *Order) PrimaryLeg() (OrderLeg, bool) {
	for _, leg := range o.OrderLegCollection {
		if leg.Instrument.Symbol != "" {
			return leg, true
		}
	}
	return OrderLeg{}, false
}
