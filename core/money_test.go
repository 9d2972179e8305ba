package core

import "testing"

func TestRound4(t *testing.T) {
	cases := []struct {
		name string
		in   float64
		want float64
	}{
		{"exact", 10.0, 10.0},
		{"rounds down", 10.00004, 10.0},
		{"rounds up", 10.00006, 10.0001},
		{"drifted sum", 0.1 + 0.2, 0.3},
		{"four places kept", 3.1415, 3.1415},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Round4(tc.in); got != tc.want {
				t.Errorf("Round4(%v) = %v, want %v", tc.in, got, tc.want)
			}
		})
	}
}

func TestTradeFee(t *testing.T) {
	if got := TradeFee(10); got != 0.5 {
		t.Errorf("TradeFee(10) = %v, want 0.5", got)
	}
	if got := TradeFee(20); got != 1.0 {
		t.Errorf("TradeFee(20) = %v, want 1.0", got)
	}
}

func TestNewTransactionRoundsBeforeFee(t *testing.T) {
	tx := NewTransaction("b", "s", "coding", 10.00009, 1, "")
	if tx.Amount != 10.0001 {
		t.Errorf("amount = %v, want 10.0001", tx.Amount)
	}
	if tx.Fee != TradeFee(tx.Amount) {
		t.Errorf("fee = %v, want %v", tx.Fee, TradeFee(tx.Amount))
	}
	if tx.ID == "" {
		t.Error("transaction id not generated")
	}
}

func TestValidAction(t *testing.T) {
	for _, action := range []string{ActionSell, ActionBuy, ActionWait} {
		if !ValidAction(action) {
			t.Errorf("ValidAction(%q) = false", action)
		}
	}
	for _, action := range []string{"", "sell", "HOLD", "TRADE"} {
		if ValidAction(action) {
			t.Errorf("ValidAction(%q) = true", action)
		}
	}
}
