package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"khata/internal/core"

	_ "modernc.org/sqlite"
)

// SQLiteRepository persists users, accounts and categories. Every balance
// mutation runs inside a single database transaction so the read-modify-write
// of (balance, history) is serialized per account.
type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	// SQLite allows a single writer; serializing through one connection
	// avoids SQLITE_BUSY under concurrent requests.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	// Run migrations
	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// CreateUser inserts a new user. A duplicate email reports core.ErrEmailTaken.
func (r *SQLiteRepository) CreateUser(ctx context.Context, u core.User) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO users (id, name, email, dob, pic, password_hash, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.Name, u.Email, u.DOB, u.Pic, u.PasswordHash, u.CreatedAt.UTC())
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed: users.email") {
			return core.ErrEmailTaken
		}
		return fmt.Errorf("create user: %w", err)
	}

	slog.InfoContext(ctx, "User created", "owner", u.ID, "email", u.Email)
	return nil
}

func (r *SQLiteRepository) UserByEmail(ctx context.Context, email string) (core.User, error) {
	return r.scanUser(r.db.QueryRowContext(ctx,
		`SELECT id, name, email, dob, pic, password_hash, created_at
		 FROM users WHERE email = ?`, email))
}

func (r *SQLiteRepository) UserByID(ctx context.Context, id string) (core.User, error) {
	return r.scanUser(r.db.QueryRowContext(ctx,
		`SELECT id, name, email, dob, pic, password_hash, created_at
		 FROM users WHERE id = ?`, id))
}

func (r *SQLiteRepository) scanUser(row *sql.Row) (core.User, error) {
	var u core.User
	var createdAt sql.NullTime
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.DOB, &u.Pic, &u.PasswordHash, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return core.User{}, core.ErrUserNotFound
	}
	if err != nil {
		return core.User{}, fmt.Errorf("scan user: %w", err)
	}
	u.CreatedAt = createdAt.Time
	return u, nil
}

// ApplyTransaction find-or-creates the owner's account and applies one
// credit/debit, appending the history row and updating the stored balance
// in the same transaction.
func (r *SQLiteRepository) ApplyTransaction(ctx context.Context, owner string, kind core.Kind, amount core.Money) (core.BalanceChange, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return core.BalanceChange{}, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()

	// Lazy account creation on first credit/debit. The owner column
	// references users(id), so an unknown owner trips the FK check.
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO accounts (owner, balance_paise, created_at, updated_at)
		 VALUES (?, 0, ?, ?)
		 ON CONFLICT(owner) DO NOTHING`,
		owner, now, now); err != nil {
		if strings.Contains(err.Error(), "FOREIGN KEY constraint failed") {
			return core.BalanceChange{}, core.ErrUserNotFound
		}
		return core.BalanceChange{}, fmt.Errorf("ensure account: %w", err)
	}

	var accountID int64
	var balancePaise int64
	if err := tx.QueryRowContext(ctx,
		`SELECT id, balance_paise FROM accounts WHERE owner = ?`, owner).
		Scan(&accountID, &balancePaise); err != nil {
		return core.BalanceChange{}, fmt.Errorf("read account: %w", err)
	}

	previous := core.Money{Paise: balancePaise}
	newBalance, txn := core.Apply(previous, kind, amount, now)

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO transactions (account_id, kind, amount_paise, resulting_balance_paise, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		accountID, string(txn.Kind), txn.Amount.Paise, txn.ResultingBalance.Paise, now); err != nil {
		return core.BalanceChange{}, fmt.Errorf("append transaction: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE accounts SET balance_paise = ?, updated_at = ? WHERE id = ?`,
		newBalance.Paise, now, accountID); err != nil {
		return core.BalanceChange{}, fmt.Errorf("update balance: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return core.BalanceChange{}, fmt.Errorf("commit: %w", err)
	}

	slog.InfoContext(ctx, "Balance updated",
		"owner", owner,
		"kind", kind,
		"amount_paise", amount.Paise,
		"balance_paise", newBalance.Paise)

	return core.BalanceChange{
		Owner:    owner,
		Kind:     kind,
		Amount:   amount,
		Previous: previous,
		Current:  newBalance,
		At:       now,
	}, nil
}

// Account loads the owner's account with its full history in insertion order.
func (r *SQLiteRepository) Account(ctx context.Context, owner string) (core.Account, error) {
	var accountID int64
	account := core.Account{Owner: owner}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, balance_paise FROM accounts WHERE owner = ?`, owner).
		Scan(&accountID, &account.Balance.Paise)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Account{}, core.ErrAccountNotFound
	}
	if err != nil {
		return core.Account{}, fmt.Errorf("read account: %w", err)
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT kind, amount_paise, resulting_balance_paise, COALESCE(category_id, 0), created_at
		 FROM transactions WHERE account_id = ? ORDER BY id`, accountID)
	if err != nil {
		return core.Account{}, fmt.Errorf("read history: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var t core.Transaction
		var kind string
		var createdAt sql.NullTime
		if err := rows.Scan(&kind, &t.Amount.Paise, &t.ResultingBalance.Paise, &t.CategoryID, &createdAt); err != nil {
			return core.Account{}, fmt.Errorf("scan transaction: %w", err)
		}
		t.Kind = core.Kind(kind)
		t.Timestamp = createdAt.Time
		account.History = append(account.History, t)
	}
	if err := rows.Err(); err != nil {
		return core.Account{}, fmt.Errorf("iterate history: %w", err)
	}

	return account, nil
}

// RecordCategoryExpense debits the owner's account for a category expense.
// Unlike ApplyTransaction this path rejects overdrafts outright: if the
// balance cannot cover the amount nothing is written and
// core.ErrInsufficientBalance is returned.
func (r *SQLiteRepository) RecordCategoryExpense(ctx context.Context, owner, title string, amount core.Money) (core.Category, core.BalanceChange, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return core.Category{}, core.BalanceChange{}, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	var accountID, balancePaise int64
	err = tx.QueryRowContext(ctx,
		`SELECT id, balance_paise FROM accounts WHERE owner = ?`, owner).
		Scan(&accountID, &balancePaise)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Category{}, core.BalanceChange{}, core.ErrAccountNotFound
	}
	if err != nil {
		return core.Category{}, core.BalanceChange{}, fmt.Errorf("read account: %w", err)
	}

	if balancePaise < amount.Paise {
		return core.Category{}, core.BalanceChange{}, core.ErrInsufficientBalance
	}

	now := time.Now().UTC()

	// Keyed upsert: an existing (owner, title) category absorbs the expense.
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO categories (owner, account_id, title, created_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(owner, title) DO NOTHING`,
		owner, accountID, title, now); err != nil {
		return core.Category{}, core.BalanceChange{}, fmt.Errorf("ensure category: %w", err)
	}

	var categoryID int64
	if err := tx.QueryRowContext(ctx,
		`SELECT id FROM categories WHERE owner = ? AND title = ?`, owner, title).
		Scan(&categoryID); err != nil {
		return core.Category{}, core.BalanceChange{}, fmt.Errorf("read category: %w", err)
	}

	previous := core.Money{Paise: balancePaise}
	newBalance, txn := core.Apply(previous, core.Debit, amount, now)

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO category_expenses (category_id, amount_paise, resulting_balance_paise, created_at)
		 VALUES (?, ?, ?, ?)`,
		categoryID, amount.Paise, txn.ResultingBalance.Paise, now); err != nil {
		return core.Category{}, core.BalanceChange{}, fmt.Errorf("append category expense: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO transactions (account_id, kind, amount_paise, resulting_balance_paise, category_id, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		accountID, string(core.Debit), amount.Paise, txn.ResultingBalance.Paise, categoryID, now); err != nil {
		return core.Category{}, core.BalanceChange{}, fmt.Errorf("append transaction: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE accounts SET balance_paise = ?, updated_at = ? WHERE id = ?`,
		newBalance.Paise, now, accountID); err != nil {
		return core.Category{}, core.BalanceChange{}, fmt.Errorf("update balance: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return core.Category{}, core.BalanceChange{}, fmt.Errorf("commit: %w", err)
	}

	slog.InfoContext(ctx, "Category expense recorded",
		"owner", owner,
		"category_title", title,
		"amount_paise", amount.Paise,
		"balance_paise", newBalance.Paise)

	category, err := r.Category(ctx, owner, categoryID)
	if err != nil {
		return core.Category{}, core.BalanceChange{}, err
	}

	return category, core.BalanceChange{
		Owner:    owner,
		Kind:     core.Debit,
		Amount:   amount,
		Previous: previous,
		Current:  newBalance,
		At:       now,
	}, nil
}

// Categories lists the owner's expense categories with their expenses.
func (r *SQLiteRepository) Categories(ctx context.Context, owner string) ([]core.Category, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, title FROM categories WHERE owner = ? ORDER BY id`, owner)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var categories []core.Category
	for rows.Next() {
		c := core.Category{Owner: owner}
		if err := rows.Scan(&c.ID, &c.Title); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate categories: %w", err)
	}

	for i := range categories {
		expenses, err := r.categoryExpenses(ctx, categories[i].ID)
		if err != nil {
			return nil, err
		}
		categories[i].Expenses = expenses
	}
	return categories, nil
}

// Category loads one category by id, scoped to the owner.
func (r *SQLiteRepository) Category(ctx context.Context, owner string, id int64) (core.Category, error) {
	c := core.Category{Owner: owner}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, title FROM categories WHERE id = ? AND owner = ?`, id, owner).
		Scan(&c.ID, &c.Title)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Category{}, core.ErrCategoryNotFound
	}
	if err != nil {
		return core.Category{}, fmt.Errorf("read category: %w", err)
	}

	expenses, err := r.categoryExpenses(ctx, c.ID)
	if err != nil {
		return core.Category{}, err
	}
	c.Expenses = expenses
	return c, nil
}

func (r *SQLiteRepository) categoryExpenses(ctx context.Context, categoryID int64) ([]core.CategoryExpense, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT amount_paise, resulting_balance_paise, created_at
		 FROM category_expenses WHERE category_id = ? ORDER BY id`, categoryID)
	if err != nil {
		return nil, fmt.Errorf("list category expenses: %w", err)
	}
	defer rows.Close()

	var expenses []core.CategoryExpense
	for rows.Next() {
		var e core.CategoryExpense
		var createdAt sql.NullTime
		if err := rows.Scan(&e.Amount.Paise, &e.ResultingBalance.Paise, &createdAt); err != nil {
			return nil, fmt.Errorf("scan category expense: %w", err)
		}
		e.Timestamp = createdAt.Time
		expenses = append(expenses, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate category expenses: %w", err)
	}
	return expenses, nil
}

// DeleteCategory removes a category and its expenses. The account balance
// and history are left untouched: deletion is record keeping, not a refund.
func (r *SQLiteRepository) DeleteCategory(ctx context.Context, owner string, id int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	var categoryID int64
	err = tx.QueryRowContext(ctx,
		`SELECT id FROM categories WHERE id = ? AND owner = ?`, id, owner).
		Scan(&categoryID)
	if errors.Is(err, sql.ErrNoRows) {
		return core.ErrCategoryNotFound
	}
	if err != nil {
		return fmt.Errorf("read category: %w", err)
	}

	// History rows keep their debits; only the category link is cleared.
	if _, err := tx.ExecContext(ctx,
		`UPDATE transactions SET category_id = NULL WHERE category_id = ?`, categoryID); err != nil {
		return fmt.Errorf("unlink transactions: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM category_expenses WHERE category_id = ?`, categoryID); err != nil {
		return fmt.Errorf("delete category expenses: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM categories WHERE id = ?`, categoryID); err != nil {
		return fmt.Errorf("delete category: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	slog.InfoContext(ctx, "Category deleted", "owner", owner, "category_id", categoryID)
	return nil
}
