package ledger

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestPendingAmount(t *testing.T) {
	cases := []struct {
		name          string
		contributions string
		paid          string
		expected      string
	}{
		{"partial payment", "10000", "4000", "6000"},
		{"exact payment", "5000", "5000", "0"},
		{"overpayment clamps to zero", "10000", "15000", "0"},
		{"nothing owed", "0", "0", "0"},
		{"nothing paid", "7500.50", "0", "7500.5"},
		{"kobo precision survives", "0.1", "0.02", "0.08"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			total := decimal.RequireFromString(tc.contributions)
			paid := decimal.RequireFromString(tc.paid)
			got := PendingAmount(total, paid)
			if got.String() != tc.expected {
				t.Fatalf("PendingAmount(%s, %s) = %s, want %s", tc.contributions, tc.paid, got, tc.expected)
			}
		})
	}
}

func TestPendingAmountNeverNegative(t *testing.T) {
	got := PendingAmount(decimal.NewFromInt(100), decimal.NewFromInt(100000))
	if got.IsNegative() {
		t.Fatalf("pending amount went negative: %s", got)
	}
}

func TestContributionScope(t *testing.T) {
	global := Contribution{}
	if !global.Scope().Global {
		t.Fatal("nil user id should be global scope")
	}
	if !global.Scope().AppliesTo("anyone") {
		t.Fatal("global contribution should apply to every user")
	}

	target := "user-a"
	targeted := Contribution{UserID: &target}
	s := targeted.Scope()
	if s.Global {
		t.Fatal("targeted contribution reported global scope")
	}
	if !s.AppliesTo("user-a") {
		t.Fatal("targeted contribution should apply to its user")
	}
	if s.AppliesTo("user-b") {
		t.Fatal("targeted contribution applied to a different user")
	}
}

func TestReceiptStatusValid(t *testing.T) {
	for _, s := range []ReceiptStatus{ReceiptPending, ReceiptApproved, ReceiptRejected} {
		if !s.Valid() {
			t.Fatalf("%s should be valid", s)
		}
	}
	if ReceiptStatus("SHIPPED").Valid() {
		t.Fatal("unknown status passed validation")
	}
	if ReceiptStatus("approved").Valid() {
		t.Fatal("status check should be case-sensitive")
	}
}
