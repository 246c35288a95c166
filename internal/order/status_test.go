package order

import (
	"testing"

	"github.com/noah-isme/backend-mandi/internal/db"
)

func TestAdminTargetsExcludePlaced(t *testing.T) {
	if isAllowedAdminTarget(db.OrderStatusPlaced) {
		t.Fatal("PLACED is the initial state, not an admin target")
	}
	for _, status := range []string{db.OrderStatusConfirmed, db.OrderStatusShipped, db.OrderStatusDelivered, db.OrderStatusCanceled} {
		if !isAllowedAdminTarget(status) {
			t.Fatalf("expected %s to be an allowed admin target", status)
		}
	}
	if isAllowedAdminTarget("PACKED") {
		t.Fatal("unknown status must not be an admin target")
	}
}

func TestOrderStatusRankOrdering(t *testing.T) {
	forward := []string{db.OrderStatusPlaced, db.OrderStatusConfirmed, db.OrderStatusShipped, db.OrderStatusDelivered}
	for i := 1; i < len(forward); i++ {
		if orderStatusRank(forward[i-1]) >= orderStatusRank(forward[i]) {
			t.Fatalf("expected %s to rank below %s", forward[i-1], forward[i])
		}
	}
	if orderStatusRank(db.OrderStatusCanceled) >= 0 {
		t.Fatal("canceled must rank outside the forward chain")
	}
	if orderStatusRank("???") != unknownStatusRank {
		t.Fatal("unknown status must map to the unknown rank")
	}
}
