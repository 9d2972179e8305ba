package storage

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/hyunwoooim-star/ai-market-sub000/core"
)

func newTestStore(t *testing.T) *DBStorage {
	t.Helper()
	store, err := Open(InMemoryConfig())
	if err != nil {
		t.Fatalf("failed to open in-memory store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestAgentRepository(t *testing.T) {
	repo := NewAgentRepository(newTestStore(t))

	agents := []core.Agent{
		{ID: "c", Name: "Cara", Balance: 70, Status: core.AgentActive},
		{ID: "a", Name: "Alice", Balance: 50, Status: core.AgentActive},
		{ID: "b", Name: "Bob", Balance: 90, Status: core.AgentBankrupt},
	}
	for _, a := range agents {
		if err := repo.Save(a); err != nil {
			t.Fatalf("Save failed: %v", err)
		}
	}

	t.Run("get", func(t *testing.T) {
		got, err := repo.Get("a")
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if got.Name != "Alice" || got.Balance != 50 {
			t.Errorf("got %+v", got)
		}
	})

	t.Run("get missing", func(t *testing.T) {
		if _, err := repo.Get("nope"); !errors.Is(err, ErrNotFound) {
			t.Errorf("err = %v, want ErrNotFound", err)
		}
	})

	t.Run("all sorted by id", func(t *testing.T) {
		all, err := repo.All()
		if err != nil {
			t.Fatalf("All failed: %v", err)
		}
		if len(all) != 3 {
			t.Fatalf("got %d agents, want 3", len(all))
		}
		for i, want := range []string{"a", "b", "c"} {
			if all[i].ID != want {
				t.Errorf("all[%d].ID = %s, want %s", i, all[i].ID, want)
			}
		}
	})

	t.Run("active by balance", func(t *testing.T) {
		active, err := repo.ActiveByBalance()
		if err != nil {
			t.Fatalf("ActiveByBalance failed: %v", err)
		}
		if len(active) != 2 {
			t.Fatalf("got %d active agents, want 2 (bankrupt excluded)", len(active))
		}
		if active[0].ID != "c" || active[1].ID != "a" {
			t.Errorf("order = [%s %s], want [c a]", active[0].ID, active[1].ID)
		}
	})

	t.Run("save both is atomic", func(t *testing.T) {
		buyer, _ := repo.Get("a")
		seller, _ := repo.Get("c")
		buyer.Balance = 40
		seller.Balance = 79.5
		if err := repo.SaveBoth(buyer, seller); err != nil {
			t.Fatalf("SaveBoth failed: %v", err)
		}
		got, _ := repo.Get("c")
		if got.Balance != 79.5 {
			t.Errorf("seller balance = %v, want 79.5", got.Balance)
		}
	})

	t.Run("tie broken by id", func(t *testing.T) {
		if err := repo.Save(core.Agent{ID: "z", Name: "Zed", Balance: 79.5, Status: core.AgentActive}); err != nil {
			t.Fatal(err)
		}
		active, err := repo.ActiveByBalance()
		if err != nil {
			t.Fatal(err)
		}
		// c and z tie at 79.5; id order decides.
		var tied []string
		for _, a := range active {
			if a.Balance == 79.5 {
				tied = append(tied, a.ID)
			}
		}
		if len(tied) != 2 || tied[0] != "c" || tied[1] != "z" {
			t.Errorf("tied order = %v, want [c z]", tied)
		}
	})
}

func TestEpochRepository(t *testing.T) {
	repo := NewEpochRepository(newTestStore(t))

	t.Run("max of empty store", func(t *testing.T) {
		max, err := repo.MaxNumber()
		if err != nil {
			t.Fatalf("MaxNumber failed: %v", err)
		}
		if max != 0 {
			t.Errorf("max = %d, want 0", max)
		}
	})

	for _, n := range []int{1, 2, 3} {
		epoch := core.Epoch{EpochNumber: n, EventType: "normal", CreatedAt: time.Now().UTC()}
		if err := repo.Create(epoch); err != nil {
			t.Fatalf("Create(%d) failed: %v", n, err)
		}
	}

	t.Run("duplicate rejected", func(t *testing.T) {
		err := repo.Create(core.Epoch{EpochNumber: 2})
		if !errors.Is(err, ErrEpochExists) {
			t.Errorf("err = %v, want ErrEpochExists", err)
		}
	})

	t.Run("max number", func(t *testing.T) {
		max, err := repo.MaxNumber()
		if err != nil {
			t.Fatal(err)
		}
		if max != 3 {
			t.Errorf("max = %d, want 3", max)
		}
	})

	t.Run("recent newest first", func(t *testing.T) {
		recent, err := repo.Recent(2)
		if err != nil {
			t.Fatal(err)
		}
		if len(recent) != 2 {
			t.Fatalf("got %d epochs, want 2", len(recent))
		}
		if recent[0].EpochNumber != 3 || recent[1].EpochNumber != 2 {
			t.Errorf("order = [%d %d], want [3 2]", recent[0].EpochNumber, recent[1].EpochNumber)
		}
	})
}

func TestTransactionRepositoryOrdering(t *testing.T) {
	repo := NewTransactionRepository(newTestStore(t))

	// More than ten transactions so key ordering depends on zero padding.
	var txs []core.Transaction
	for i := 0; i < 12; i++ {
		txs = append(txs, core.NewTransaction(
			fmt.Sprintf("buyer-%d", i), "seller", "coding", float64(i+1), 5, ""))
	}
	if err := repo.SaveAll(5, txs); err != nil {
		t.Fatalf("SaveAll failed: %v", err)
	}

	loaded, err := repo.ByEpoch(5)
	if err != nil {
		t.Fatalf("ByEpoch failed: %v", err)
	}
	if len(loaded) != 12 {
		t.Fatalf("got %d transactions, want 12", len(loaded))
	}
	for i, tx := range loaded {
		if tx.ID != txs[i].ID {
			t.Errorf("position %d holds %s, want %s (creation order broken)", i, tx.ID, txs[i].ID)
		}
	}

	t.Run("epochs isolated", func(t *testing.T) {
		other, err := repo.ByEpoch(6)
		if err != nil {
			t.Fatal(err)
		}
		if len(other) != 0 {
			t.Errorf("epoch 6 returned %d transactions from epoch 5", len(other))
		}
	})

	t.Run("empty save is a no-op", func(t *testing.T) {
		if err := repo.SaveAll(7, nil); err != nil {
			t.Errorf("SaveAll with no transactions failed: %v", err)
		}
	})
}

func TestAnchorRepository(t *testing.T) {
	repo := NewAnchorRepository(newTestStore(t))

	first := core.AnchorRecord{EpochNumber: 1, Hash: "aa", Status: core.AnchorHashOnly, AnchoredAt: time.Now().UTC()}
	if err := repo.Save(first); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	t.Run("upsert", func(t *testing.T) {
		first.Status = core.AnchorLedgerConfirmed
		first.LedgerRef = "sig"
		if err := repo.Save(first); err != nil {
			t.Fatal(err)
		}
		got, err := repo.Get(1)
		if err != nil {
			t.Fatal(err)
		}
		if got.Status != core.AnchorLedgerConfirmed || got.LedgerRef != "sig" {
			t.Errorf("got %+v after upsert", got)
		}
	})

	t.Run("missing", func(t *testing.T) {
		if _, err := repo.Get(99); !errors.Is(err, ErrNotFound) {
			t.Errorf("err = %v, want ErrNotFound", err)
		}
	})

	t.Run("all sorted", func(t *testing.T) {
		if err := repo.Save(core.AnchorRecord{EpochNumber: 3, Hash: "cc", Status: core.AnchorHashOnly}); err != nil {
			t.Fatal(err)
		}
		if err := repo.Save(core.AnchorRecord{EpochNumber: 2, Hash: "bb", Status: core.AnchorHashOnly}); err != nil {
			t.Fatal(err)
		}
		all, err := repo.All()
		if err != nil {
			t.Fatal(err)
		}
		if len(all) != 3 {
			t.Fatalf("got %d records, want 3", len(all))
		}
		for i, want := range []int{1, 2, 3} {
			if all[i].EpochNumber != want {
				t.Errorf("all[%d] = epoch %d, want %d", i, all[i].EpochNumber, want)
			}
		}
	})
}
