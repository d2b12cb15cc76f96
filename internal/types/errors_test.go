package types

import (
	"errors"
	"fmt"
	"testing"
)

func TestNotFoundMatching(t *testing.T) {
	err := NotFound("Order", "1001")
	if !IsNotFound(err) {
		t.Fatalf("IsNotFound(%v) = false, want true", err)
	}
	if IsInvalidInput(err) {
		t.Fatalf("IsInvalidInput(%v) = true, want false", err)
	}

	wrapped := fmt.Errorf("sweep: %w", err)
	if !IsNotFound(wrapped) {
		t.Fatalf("IsNotFound should see through wrapping")
	}

	var nf *NotFoundError
	if !errors.As(wrapped, &nf) {
		t.Fatalf("errors.As failed on wrapped not-found")
	}
	if nf.Resource != "Order" || nf.ID != "1001" {
		t.Fatalf("got resource=%q id=%q, want Order/1001", nf.Resource, nf.ID)
	}
}

func TestInvalidInputMatching(t *testing.T) {
	err := InvalidInput("session is required")
	if !IsInvalidInput(err) {
		t.Fatalf("IsInvalidInput(%v) = false, want true", err)
	}
	if err.Error() != "session is required" {
		t.Fatalf("Error() = %q", err.Error())
	}
}

func TestStorageUnwrap(t *testing.T) {
	cause := errors.New("connection reset")
	err := Storage("orders.insert", cause)
	if !errors.Is(err, cause) {
		t.Fatalf("Storage error should unwrap to its cause")
	}
	if IsNotFound(err) || IsInvalidInput(err) {
		t.Fatalf("storage error must not match the other kinds")
	}
}

func TestStatusTerminal(t *testing.T) {
	cases := []struct {
		status OrderStatus
		want   bool
	}{
		{OrderStatusWorking, false},
		{OrderStatusFilled, true},
		{OrderStatusCanceled, true},
		{OrderStatusRejected, true},
	}
	for _, tc := range cases {
		if got := tc.status.Terminal(); got != tc.want {
			t.Errorf("Terminal(%s) = %v, want %v", tc.status, got, tc.want)
		}
	}
}

func TestInstructionSides(t *testing.T) {
	buys := []Instruction{InstructionBuy, InstructionBuyToOpen, InstructionBuyToClose, InstructionBuyToCover}
	for _, in := range buys {
		if !in.IsBuy() || in.IsSell() {
			t.Errorf("%s should be buy-side only", in)
		}
	}
	sells := []Instruction{InstructionSell, InstructionSellToOpen, InstructionSellToClose, InstructionSellShort}
	for _, in := range sells {
		if !in.IsSell() || in.IsBuy() {
			t.Errorf("%s should be sell-side only", in)
		}
	}
}
