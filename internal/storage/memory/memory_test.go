package memory

import (
	"context"
	"errors"
	"sync"
	"testing"

	"khata/internal/core"
)

func seedUser(t *testing.T, repo *Repository, id string) {
	t.Helper()
	if err := repo.CreateUser(context.Background(), core.User{ID: id, Name: "Asha", Email: id + "@example.com"}); err != nil {
		t.Fatalf("seed user %s: %v", id, err)
	}
}

func TestApplyTransactionRequiresUser(t *testing.T) {
	repo := NewRepository()

	_, err := repo.ApplyTransaction(context.Background(), "ghost", core.Credit, core.Money{Paise: 100})
	if !errors.Is(err, core.ErrUserNotFound) {
		t.Fatalf("unknown owner: expected ErrUserNotFound, got %v", err)
	}
}

func TestExpenseIsolationBetweenOwners(t *testing.T) {
	repo := NewRepository()
	ctx := context.Background()
	seedUser(t, repo, "a")

	if _, err := repo.ApplyTransaction(ctx, "a", core.Credit, core.Money{Paise: 10000}); err != nil {
		t.Fatalf("credit: %v", err)
	}
	if _, _, err := repo.RecordCategoryExpense(ctx, "a", "Food", core.Money{Paise: 5000}); err != nil {
		t.Fatalf("expense: %v", err)
	}

	if _, err := repo.Account(ctx, "b"); !errors.Is(err, core.ErrAccountNotFound) {
		t.Errorf("owner b sees an account: %v", err)
	}
	cats, _ := repo.Categories(ctx, "b")
	if len(cats) != 0 {
		t.Errorf("owner b sees %d categories", len(cats))
	}
}

func TestDeleteCategoryUnlinksHistory(t *testing.T) {
	repo := NewRepository()
	ctx := context.Background()
	seedUser(t, repo, "a")

	if _, err := repo.ApplyTransaction(ctx, "a", core.Credit, core.Money{Paise: 10000}); err != nil {
		t.Fatalf("credit: %v", err)
	}
	cat, _, err := repo.RecordCategoryExpense(ctx, "a", "Food", core.Money{Paise: 5000})
	if err != nil {
		t.Fatalf("expense: %v", err)
	}

	if err := repo.DeleteCategory(ctx, "a", cat.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	account, err := repo.Account(ctx, "a")
	if err != nil {
		t.Fatalf("account: %v", err)
	}
	if len(account.History) != 2 {
		t.Fatalf("history length = %d, want 2", len(account.History))
	}
	if account.History[1].CategoryID != 0 {
		t.Errorf("history category link = %d, want 0", account.History[1].CategoryID)
	}
}

func TestSnapshotsAreCopies(t *testing.T) {
	repo := NewRepository()
	ctx := context.Background()
	seedUser(t, repo, "a")

	if _, err := repo.ApplyTransaction(ctx, "a", core.Credit, core.Money{Paise: 10000}); err != nil {
		t.Fatalf("credit: %v", err)
	}
	cat, _, err := repo.RecordCategoryExpense(ctx, "a", "Food", core.Money{Paise: 1000})
	if err != nil {
		t.Fatalf("expense: %v", err)
	}

	// Mutating returned slices must not touch the stored state.
	cat.Expenses[0].Amount.Paise = 999999
	account, _ := repo.Account(ctx, "a")
	account.History[0].Amount.Paise = 999999

	freshCat, _ := repo.Category(ctx, "a", cat.ID)
	if freshCat.Expenses[0].Amount.Paise != 1000 {
		t.Errorf("stored expense mutated: %d", freshCat.Expenses[0].Amount.Paise)
	}
	freshAcc, _ := repo.Account(ctx, "a")
	if freshAcc.History[0].Amount.Paise != 10000 {
		t.Errorf("stored history mutated: %d", freshAcc.History[0].Amount.Paise)
	}
}

func TestConcurrentTransactions(t *testing.T) {
	repo := NewRepository()
	ctx := context.Background()
	seedUser(t, repo, "a")

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := repo.ApplyTransaction(ctx, "a", core.Credit, core.Money{Paise: 100}); err != nil {
				t.Errorf("credit: %v", err)
			}
		}()
	}
	wg.Wait()

	account, err := repo.Account(ctx, "a")
	if err != nil {
		t.Fatalf("account: %v", err)
	}
	if account.Balance.Paise != 5000 {
		t.Errorf("balance = %d, want 5000", account.Balance.Paise)
	}
	if len(account.History) != 50 {
		t.Errorf("history length = %d, want 50", len(account.History))
	}
}
