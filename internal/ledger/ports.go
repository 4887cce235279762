package ledger

import (
	"context"

	"khata/internal/core"
)

// Store is the persistence boundary for users, accounts and categories.
// Implementations must apply each balance mutation atomically: the balance
// update and the history append either both happen or neither does.
type Store interface {
	CreateUser(ctx context.Context, u core.User) error
	UserByEmail(ctx context.Context, email string) (core.User, error)
	UserByID(ctx context.Context, id string) (core.User, error)

	// ApplyTransaction find-or-creates the owner's account and applies a
	// credit or debit. Debits clamp at zero. The owner must be an existing
	// user id; unknown owners report core.ErrUserNotFound.
	ApplyTransaction(ctx context.Context, owner string, kind core.Kind, amount core.Money) (core.BalanceChange, error)
	Account(ctx context.Context, owner string) (core.Account, error)

	// RecordCategoryExpense debits the account for a categorized expense,
	// creating the (owner, title) category on first use. Overdrafts are
	// rejected with core.ErrInsufficientBalance.
	RecordCategoryExpense(ctx context.Context, owner, title string, amount core.Money) (core.Category, core.BalanceChange, error)
	Categories(ctx context.Context, owner string) ([]core.Category, error)
	Category(ctx context.Context, owner string, id int64) (core.Category, error)
	DeleteCategory(ctx context.Context, owner string, id int64) error

	Close() error
}
