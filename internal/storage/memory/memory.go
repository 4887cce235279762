// Package memory provides an in-memory store with the same semantics as the
// SQLite repository. It backs tests and the DATA_BACKEND=memory mode.
package memory

import (
	"context"
	"sync"
	"time"

	"khata/internal/core"
)

type account struct {
	balance core.Money
	history []core.Transaction
}

type Repository struct {
	mu         sync.Mutex
	users      map[string]core.User // keyed by id
	accounts   map[string]*account  // keyed by owner
	categories map[string][]*core.Category
	nextCatID  int64
}

func NewRepository() *Repository {
	return &Repository{
		users:      make(map[string]core.User),
		accounts:   make(map[string]*account),
		categories: make(map[string][]*core.Category),
		nextCatID:  1,
	}
}

func (r *Repository) Close() error { return nil }

func (r *Repository) CreateUser(_ context.Context, u core.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.users {
		if existing.Email == u.Email {
			return core.ErrEmailTaken
		}
	}
	r.users[u.ID] = u
	return nil
}

func (r *Repository) UserByEmail(_ context.Context, email string) (core.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return core.User{}, core.ErrUserNotFound
}

func (r *Repository) UserByID(_ context.Context, id string) (core.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return core.User{}, core.ErrUserNotFound
	}
	return u, nil
}

func (r *Repository) ApplyTransaction(_ context.Context, owner string, kind core.Kind, amount core.Money) (core.BalanceChange, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Accounts belong to known users, matching the SQLite foreign key.
	if _, ok := r.users[owner]; !ok {
		return core.BalanceChange{}, core.ErrUserNotFound
	}

	acc, ok := r.accounts[owner]
	if !ok {
		acc = &account{}
		r.accounts[owner] = acc
	}

	now := time.Now().UTC()
	previous := acc.balance
	newBalance, txn := core.Apply(previous, kind, amount, now)
	acc.balance = newBalance
	acc.history = append(acc.history, txn)

	return core.BalanceChange{
		Owner:    owner,
		Kind:     kind,
		Amount:   amount,
		Previous: previous,
		Current:  newBalance,
		At:       now,
	}, nil
}

func (r *Repository) Account(_ context.Context, owner string) (core.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	acc, ok := r.accounts[owner]
	if !ok {
		return core.Account{}, core.ErrAccountNotFound
	}
	history := make([]core.Transaction, len(acc.history))
	copy(history, acc.history)
	return core.Account{Owner: owner, Balance: acc.balance, History: history}, nil
}

func (r *Repository) RecordCategoryExpense(_ context.Context, owner, title string, amount core.Money) (core.Category, core.BalanceChange, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	acc, ok := r.accounts[owner]
	if !ok {
		return core.Category{}, core.BalanceChange{}, core.ErrAccountNotFound
	}
	if acc.balance.Paise < amount.Paise {
		return core.Category{}, core.BalanceChange{}, core.ErrInsufficientBalance
	}

	var cat *core.Category
	for _, c := range r.categories[owner] {
		if c.Title == title {
			cat = c
			break
		}
	}
	if cat == nil {
		cat = &core.Category{ID: r.nextCatID, Owner: owner, Title: title}
		r.nextCatID++
		r.categories[owner] = append(r.categories[owner], cat)
	}

	now := time.Now().UTC()
	previous := acc.balance
	newBalance, txn := core.Apply(previous, core.Debit, amount, now)
	txn.CategoryID = cat.ID
	acc.balance = newBalance
	acc.history = append(acc.history, txn)
	cat.Expenses = append(cat.Expenses, core.CategoryExpense{
		Amount:           amount,
		ResultingBalance: newBalance,
		Timestamp:        now,
	})

	return snapshotCategory(cat), core.BalanceChange{
		Owner:    owner,
		Kind:     core.Debit,
		Amount:   amount,
		Previous: previous,
		Current:  newBalance,
		At:       now,
	}, nil
}

func (r *Repository) Categories(_ context.Context, owner string) ([]core.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []core.Category
	for _, c := range r.categories[owner] {
		out = append(out, snapshotCategory(c))
	}
	return out, nil
}

func (r *Repository) Category(_ context.Context, owner string, id int64) (core.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, c := range r.categories[owner] {
		if c.ID == id {
			return snapshotCategory(c), nil
		}
	}
	return core.Category{}, core.ErrCategoryNotFound
}

func (r *Repository) DeleteCategory(_ context.Context, owner string, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cats := r.categories[owner]
	for i, c := range cats {
		if c.ID == id {
			r.categories[owner] = append(cats[:i], cats[i+1:]...)
			// History keeps the debits; only the category link is cleared.
			if acc, ok := r.accounts[owner]; ok {
				for j := range acc.history {
					if acc.history[j].CategoryID == id {
						acc.history[j].CategoryID = 0
					}
				}
			}
			return nil
		}
	}
	return core.ErrCategoryNotFound
}

func snapshotCategory(c *core.Category) core.Category {
	out := *c
	out.Expenses = make([]core.CategoryExpense, len(c.Expenses))
	copy(out.Expenses, c.Expenses)
	return out
}
