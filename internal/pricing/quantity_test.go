package pricing

import (
	"errors"
	"math"
	"testing"
)

func TestNormalizeStep(t *testing.T) {
	res, err := Normalize(10, 5, 5, 100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Quantity != 15 || res.Removed || res.Clamped || res.Exceeded {
		t.Fatalf("unexpected result: %+v", res)
	}
}

func TestNormalizeStockRejectionKeepsCurrent(t *testing.T) {
	res, err := Normalize(50, 10, 10, 55)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Exceeded {
		t.Fatalf("expected exceeded flag, got %+v", res)
	}
	if res.Quantity != 50 {
		t.Fatalf("quantity must stay at 50 on rejection, got %d", res.Quantity)
	}
}

func TestNormalizeZeroSignalsRemoval(t *testing.T) {
	res, err := Normalize(5, -5, 5, 100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Removed || res.Quantity != 0 {
		t.Fatalf("expected removal at zero, got %+v", res)
	}
}

func TestNormalizeFloorsAtZero(t *testing.T) {
	res, err := Normalize(5, -20, 5, 100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Quantity != 0 || !res.Clamped || !res.Removed {
		t.Fatalf("expected clamped removal, got %+v", res)
	}
}

func TestNormalizeRejectsOverflowingDelta(t *testing.T) {
	if _, err := Normalize(15, math.MaxInt64, 5, 100); !errors.Is(err, ErrInvalidQuantity) {
		t.Fatalf("expected ErrInvalidQuantity on wraparound, got %v", err)
	}
}

func TestNormalizeInvalidInputs(t *testing.T) {
	if _, err := Normalize(5, 1, 0, 100); !errors.Is(err, ErrInvalidQuantity) {
		t.Fatalf("expected ErrInvalidQuantity for zero unit set, got %v", err)
	}
	if _, err := Normalize(-1, 1, 5, 100); !errors.Is(err, ErrInvalidQuantity) {
		t.Fatalf("expected ErrInvalidQuantity for negative current, got %v", err)
	}
}

func TestIsSetMultiple(t *testing.T) {
	if !IsSetMultiple(15, 5) {
		t.Fatalf("15 should be a multiple of 5")
	}
	if IsSetMultiple(16, 5) {
		t.Fatalf("16 should not be a multiple of 5")
	}
	if IsSetMultiple(10, 0) {
		t.Fatalf("zero unit set is never a multiple")
	}
}
