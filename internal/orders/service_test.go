package orders

import (
	"context"
	"testing"
	"time"

	"papertrader/internal/model"
	"papertrader/internal/types"

	"github.com/shopspring/decimal"
)

func dec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("bad decimal %q: %v", s, err)
	}
	return d
}

type stubQuotes struct {
	price decimal.Decimal
	err   error
}

func (q stubQuotes) CurrentPrice(string) (decimal.Decimal, error) {
	return q.price, q.err
}

func equityRequest(t *testing.T, orderType types.OrderType, qty string) model.OrderRequest {
	t.Helper()
	return model.OrderRequest{
		Session:   types.SessionNormal,
		Duration:  types.DurationDay,
		OrderType: orderType,
		OrderLegCollection: []model.OrderLeg{{
			Instruction: types.InstructionBuy,
			Quantity:    dec(t, qty),
			Instrument:  model.Instrument{AssetType: types.AssetTypeEquity, Symbol: "AAPL"},
		}},
	}
}

func TestValidateRequest(t *testing.T) {
	tests := []struct {
		name string
		req  model.OrderRequest
		ok   bool
	}{
		{"complete", model.OrderRequest{Session: types.SessionNormal, Duration: types.DurationDay, OrderType: types.OrderTypeMarket}, true},
		{"missing session", model.OrderRequest{Duration: types.DurationDay, OrderType: types.OrderTypeMarket}, false},
		{"missing duration", model.OrderRequest{Session: types.SessionNormal, OrderType: types.OrderTypeMarket}, false},
		{"missing order type", model.OrderRequest{Session: types.SessionNormal, Duration: types.DurationDay}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateRequest(tt.req)
			if tt.ok && err != nil {
				t.Fatalf("validateRequest: %v", err)
			}
			if !tt.ok {
				if !types.IsInvalidInput(err) {
					t.Fatalf("want invalid-input, got %v", err)
				}
			}
		})
	}
}

func TestValidateRange(t *testing.T) {
	now := time.Now()
	if err := validateRange(now.Add(-time.Hour), now); err != nil {
		t.Fatalf("valid range rejected: %v", err)
	}
	if err := validateRange(time.Time{}, now); !types.IsInvalidInput(err) {
		t.Fatalf("missing from: got %v", err)
	}
	if err := validateRange(now, time.Time{}); !types.IsInvalidInput(err) {
		t.Fatalf("missing to: got %v", err)
	}
	if err := validateRange(now, now.Add(-time.Minute)); !types.IsInvalidInput(err) {
		t.Fatalf("inverted range: got %v", err)
	}
}

func TestValidateStatus(t *testing.T) {
	for _, s := range []types.OrderStatus{"", types.OrderStatusWorking, types.OrderStatusFilled, types.OrderStatusCanceled, types.OrderStatusRejected} {
		if err := validateStatus(s); err != nil {
			t.Fatalf("status %q rejected: %v", s, err)
		}
	}
	if err := validateStatus("PENDING_ACTIVATION"); !types.IsInvalidInput(err) {
		t.Fatalf("unknown status: got %v", err)
	}
}

func TestPreviewMarketUsesQuote(t *testing.T) {
	svc := NewService(nil, stubQuotes{price: dec(t, "175.25")})

	p, err := svc.Preview(context.Background(), "HASH1", equityRequest(t, types.OrderTypeMarket, "10"))
	if err != nil {
		t.Fatalf("Preview: %v", err)
	}
	if p.Symbol != "AAPL" {
		t.Fatalf("symbol = %q", p.Symbol)
	}
	if !p.EstimatedPrice.Equal(dec(t, "175.25")) {
		t.Fatalf("estimated price = %s", p.EstimatedPrice)
	}
	if !p.EstimatedCost.Equal(dec(t, "1752.50")) {
		t.Fatalf("estimated cost = %s", p.EstimatedCost)
	}
	if !p.Commission.IsZero() {
		t.Fatalf("commission = %s", p.Commission)
	}
}

func TestPreviewLimitUsesLimitPrice(t *testing.T) {
	svc := NewService(nil, stubQuotes{price: dec(t, "175.25")})

	req := equityRequest(t, types.OrderTypeLimit, "4")
	limit := dec(t, "150")
	req.Price = &limit

	p, err := svc.Preview(context.Background(), "HASH1", req)
	if err != nil {
		t.Fatalf("Preview: %v", err)
	}
	if !p.EstimatedPrice.Equal(limit) {
		t.Fatalf("estimated price = %s, want limit", p.EstimatedPrice)
	}
	if !p.EstimatedCost.Equal(dec(t, "600")) {
		t.Fatalf("estimated cost = %s", p.EstimatedCost)
	}
}

func TestPreviewWithoutLeg(t *testing.T) {
	svc := NewService(nil, stubQuotes{price: dec(t, "175.25")})

	req := model.OrderRequest{Session: types.SessionNormal, Duration: types.DurationDay, OrderType: types.OrderTypeMarket}
	if _, err := svc.Preview(context.Background(), "HASH1", req); !types.IsInvalidInput(err) {
		t.Fatalf("want invalid-input, got %v", err)
	}
}

func TestPreviewUnknownSymbol(t *testing.T) {
	svc := NewService(nil, stubQuotes{err: types.NotFound("Symbol", "AAPL")})

	if _, err := svc.Preview(context.Background(), "HASH1", equityRequest(t, types.OrderTypeMarket, "1")); !types.IsNotFound(err) {
		t.Fatalf("want not-found, got %v", err)
	}
}

func TestPlaceRejectsBlankHash(t *testing.T) {
	svc := NewService(nil, stubQuotes{})
	if _, err := svc.Place(context.Background(), "", equityRequest(t, types.OrderTypeMarket, "1")); !types.IsInvalidInput(err) {
		t.Fatalf("want invalid-input, got %v", err)
	}
}
