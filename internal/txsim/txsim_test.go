package txsim

import (
	"fmt"
	"testing"
)

func TestSimulateDeterministic(t *testing.T) {
	addrs := []string{"MULE_0", "HUB_COLLECTOR_01", "STU_7", "GOVT_SCHOLARSHIP_DEPT", "RANDOM_WALLET"}
	for _, addr := range addrs {
		first := Simulate(addr)
		for i := 0; i < 3; i++ {
			again := Simulate(addr)
			if len(again) != len(first) {
				t.Fatalf("%s: run %d produced %d txns, want %d", addr, i, len(again), len(first))
			}
			for j := range first {
				if again[j] != first[j] {
					t.Fatalf("%s: txn %d differs between runs: %+v vs %+v", addr, j, again[j], first[j])
				}
			}
		}
	}
}

func TestSeedStable(t *testing.T) {
	if Seed("MULE_0") != Seed("MULE_0") {
		t.Error("seed not stable for identical address")
	}
	if Seed("MULE_0") == Seed("MULE_1") {
		t.Error("distinct addresses produced the same seed")
	}
}

func TestMulePattern(t *testing.T) {
	addr := "MULE_3"
	txns := Simulate(addr)

	if len(txns) < 15 || len(txns) > 30 {
		t.Errorf("mule txn count %d outside [15,30]", len(txns))
	}
	for i, tx := range txns {
		if tx.Sender != addr {
			t.Errorf("txn %d: sender = %q, want %q", i, tx.Sender, addr)
		}
		if tx.Receiver != HubCollector {
			t.Errorf("txn %d: receiver = %q, want %q", i, tx.Receiver, HubCollector)
		}
		if tx.Amount < 100 || tx.Amount > 500 {
			t.Errorf("txn %d: amount %d outside [100,500]", i, tx.Amount)
		}
	}
}

func TestHubPattern(t *testing.T) {
	addr := "HUB_COLLECTOR_01"
	txns := Simulate(addr)

	if len(txns) < 20 || len(txns) > 40 {
		t.Errorf("hub txn count %d outside [20,40]", len(txns))
	}
	for i, tx := range txns {
		want := fmt.Sprintf("MULE_%d", i%10)
		if tx.Sender != want {
			t.Errorf("txn %d: sender = %q, want %q", i, tx.Sender, want)
		}
		if tx.Receiver != addr {
			t.Errorf("txn %d: receiver = %q, want %q", i, tx.Receiver, addr)
		}
	}
}

func TestStudentPattern(t *testing.T) {
	addr := "STU_0"
	txns := Simulate(addr)

	if len(txns) < 1 || len(txns) > 5 {
		t.Errorf("student txn count %d outside [1,5]", len(txns))
	}
	for i, tx := range txns {
		if tx.Sender != ScholarshipDept {
			t.Errorf("txn %d: sender = %q, want %q", i, tx.Sender, ScholarshipDept)
		}
		if tx.Receiver != addr {
			t.Errorf("txn %d: receiver = %q, want %q", i, tx.Receiver, addr)
		}
		if tx.Amount < 1000 || tx.Amount > 5000 {
			t.Errorf("txn %d: amount %d outside [1000,5000]", i, tx.Amount)
		}
	}
}

func TestGovernmentPattern(t *testing.T) {
	addr := "GOVT_TREASURY"
	txns := Simulate(addr)

	if len(txns) < 40 || len(txns) > 60 {
		t.Errorf("government txn count %d outside [40,60]", len(txns))
	}
	for i, tx := range txns {
		if tx.Sender != addr {
			t.Errorf("txn %d: sender = %q, want %q", i, tx.Sender, addr)
		}
		want := fmt.Sprintf("STU_%d", i%50)
		if tx.Receiver != want {
			t.Errorf("txn %d: receiver = %q, want %q", i, tx.Receiver, want)
		}
	}
}

func TestDefaultPattern(t *testing.T) {
	txns := Simulate("SOME_ORDINARY_WALLET")

	if len(txns) < 1 || len(txns) > 3 {
		t.Errorf("default txn count %d outside [1,3]", len(txns))
	}
	for i, tx := range txns {
		if tx.Receiver != "UNKNOWN_RECIPIENT" {
			t.Errorf("txn %d: receiver = %q, want UNKNOWN_RECIPIENT", i, tx.Receiver)
		}
		if tx.Amount < 100 || tx.Amount > 1000 {
			t.Errorf("txn %d: amount %d outside [100,1000]", i, tx.Amount)
		}
	}
}

// Pattern dispatch is ordered: an address matching several markers takes the
// first branch.
func TestPatternPrecedence(t *testing.T) {
	addr := "MULE_WITH_HUB_AND_STU"
	txns := Simulate(addr)
	for i, tx := range txns {
		if tx.Receiver != HubCollector {
			t.Fatalf("txn %d: expected MULE branch (receiver %q), got receiver %q", i, HubCollector, tx.Receiver)
		}
	}

	// HUB outranks STU
	txns = Simulate("HUB_FOR_STU")
	for i, tx := range txns {
		if tx.Receiver != "HUB_FOR_STU" {
			t.Fatalf("txn %d: expected HUB branch, got receiver %q", i, tx.Receiver)
		}
	}
}

func TestScholarshipDeptIsGovt(t *testing.T) {
	txns := Simulate("GOVT_SCHOLARSHIP_DEPT")
	if len(txns) < 40 || len(txns) > 60 {
		t.Errorf("expected GOVT branch count in [40,60], got %d", len(txns))
	}
}
