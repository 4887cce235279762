package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Credit Kind = "credit"
	Debit  Kind = "debit"
)

type (
	// Kind classifies a balance movement.
	Kind string

	Money struct {
		Paise int64 `json:"paise"`
	}

	// Transaction is one credit or debit event recorded against an account.
	// ResultingBalance is a snapshot taken when the transaction was applied
	// and is never recomputed afterwards.
	Transaction struct {
		Kind             Kind      `json:"kind"`
		Amount           Money     `json:"amount"`
		ResultingBalance Money     `json:"resulting_balance"`
		CategoryID       int64     `json:"category_id,omitempty"`
		Timestamp        time.Time `json:"timestamp"`
	}

	// Account is the single running balance record per user.
	Account struct {
		Owner   string        `json:"owner"`
		Balance Money         `json:"balance"`
		History []Transaction `json:"history"`
	}

	// CategoryExpense is one debit recorded inside an expense category,
	// stamped with the account balance right after the debit.
	CategoryExpense struct {
		Amount           Money     `json:"amount"`
		ResultingBalance Money     `json:"resulting_balance"`
		Timestamp        time.Time `json:"timestamp"`
	}

	// Category is a user-defined expense bucket. Title is a dedup key per
	// owner: recording against an existing title appends to that category.
	Category struct {
		ID       int64             `json:"id"`
		Owner    string            `json:"owner"`
		Title    string            `json:"title"`
		Expenses []CategoryExpense `json:"expenses"`
	}

	// User is an application account holder.
	User struct {
		ID           string    `json:"id"`
		Name         string    `json:"name"`
		Email        string    `json:"email"`
		DOB          string    `json:"dob"`
		Pic          string    `json:"pic,omitempty"`
		PasswordHash string    `json:"-"`
		CreatedAt    time.Time `json:"created_at"`
	}

	// BalanceChange describes a completed balance mutation, for callers
	// that need both sides of the movement (e.g. notifications).
	BalanceChange struct {
		Owner    string
		Kind     Kind
		Amount   Money
		Previous Money
		Current  Money
		At       time.Time
	}
)

var (
	ErrInvalidAmount       = errors.New("invalid amount")
	ErrInvalidKind         = errors.New("invalid transaction kind")
	ErrEmptyTitle          = errors.New("empty category title")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrAccountNotFound     = errors.New("account not found")
	ErrCategoryNotFound    = errors.New("category not found")
	ErrUserNotFound        = errors.New("user not found")
	ErrEmailTaken          = errors.New("user already exists")
)

// ParseKind validates a transaction kind string.
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case Credit, Debit:
		return Kind(s), nil
	default:
		return "", ErrInvalidKind
	}
}

func (m Money) Validate() error {
	if m.Paise <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

// Apply computes the balance mutation for one transaction.
//
// Credits add to the balance. Debits subtract and clamp at zero: debiting
// more than the current balance succeeds and leaves the balance at zero.
// Callers that must not overdraw (the category-expense path) check the
// balance before calling.
//
// Apply has no side effects and does not persist; the caller writes the new
// balance and appends the returned transaction atomically.
func Apply(balance Money, kind Kind, amount Money, now time.Time) (Money, Transaction) {
	newBalance := balance
	switch kind {
	case Credit:
		newBalance.Paise += amount.Paise
	case Debit:
		newBalance.Paise -= amount.Paise
		if newBalance.Paise < 0 {
			newBalance.Paise = 0
		}
	}
	return newBalance, Transaction{
		Kind:             kind,
		Amount:           amount,
		ResultingBalance: newBalance,
		Timestamp:        now,
	}
}

// ValidateTitle checks a category title for use as a lookup key.
func ValidateTitle(title string) error {
	if len(strings.TrimSpace(title)) == 0 {
		return ErrEmptyTitle
	}
	if len(title) > 100 {
		return errors.New("title too long (max 100 characters)")
	}
	return nil
}

func (u User) Validate() error {
	if strings.TrimSpace(u.Name) == "" {
		return errors.New("empty name")
	}
	if !strings.Contains(u.Email, "@") {
		return errors.New("invalid email")
	}
	if u.DOB != "" {
		if _, err := time.Parse("2006-01-02", u.DOB); err != nil {
			return errors.New("invalid date of birth (want YYYY-MM-DD)")
		}
	}
	return nil
}
