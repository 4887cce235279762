// Package ledger orchestrates balance mutations across storage and AMQP.
package ledger

import (
	"context"
	"fmt"

	"khata/internal/amqp"
	"khata/internal/core"
	applog "khata/internal/log"
)

// Service wraps a Store and publishes a notification after every balance
// mutation. Publishing is best effort: a queue failure is logged and never
// rolls back or fails the mutation.
type Service struct {
	store      Store
	amqpClient *amqp.Client
	log        *applog.Logger
}

func NewService(store Store, amqpClient *amqp.Client) *Service {
	return &Service{
		store:      store,
		amqpClient: amqpClient,
		log:        applog.New(applog.DefaultConfig()).WithComponent(applog.ComponentLedger),
	}
}

// UpdateBalance applies a raw credit or debit to the owner's account,
// creating the account on first use.
func (s *Service) UpdateBalance(ctx context.Context, owner string, kind core.Kind, amount core.Money) (core.Account, error) {
	if err := amount.Validate(); err != nil {
		return core.Account{}, err
	}

	change, err := s.store.ApplyTransaction(ctx, owner, kind, amount)
	if err != nil {
		return core.Account{}, fmt.Errorf("apply transaction: %w", err)
	}

	s.publish(ctx, amqp.NewBalanceChangedMessage(change))

	account, err := s.store.Account(ctx, owner)
	if err != nil {
		return core.Account{}, fmt.Errorf("load account: %w", err)
	}
	return account, nil
}

// Account returns the owner's account with full history.
func (s *Service) Account(ctx context.Context, owner string) (core.Account, error) {
	return s.store.Account(ctx, owner)
}

// RecordExpense debits the account for a categorized expense. The category
// is created on first use of the title; an overdraft is rejected before
// anything is written.
func (s *Service) RecordExpense(ctx context.Context, owner, title string, amount core.Money) (core.Category, core.Money, error) {
	if err := core.ValidateTitle(title); err != nil {
		return core.Category{}, core.Money{}, err
	}
	if err := amount.Validate(); err != nil {
		return core.Category{}, core.Money{}, err
	}

	category, change, err := s.store.RecordCategoryExpense(ctx, owner, title, amount)
	if err != nil {
		return core.Category{}, core.Money{}, err
	}

	s.publish(ctx, amqp.NewExpenseRecordedMessage(category.Title, change))

	return category, change.Current, nil
}

// Categories lists the owner's expense categories.
func (s *Service) Categories(ctx context.Context, owner string) ([]core.Category, error) {
	return s.store.Categories(ctx, owner)
}

// Category returns one category by id.
func (s *Service) Category(ctx context.Context, owner string, id int64) (core.Category, error) {
	return s.store.Category(ctx, owner, id)
}

// DeleteCategory removes a category and its expenses. The account balance
// stays as is: past debits are not refunded.
func (s *Service) DeleteCategory(ctx context.Context, owner string, id int64) error {
	return s.store.DeleteCategory(ctx, owner, id)
}

// NotifyOTP queues a signup verification mail.
func (s *Service) NotifyOTP(ctx context.Context, email, code string) {
	s.publish(ctx, amqp.NewOTPMessage(email, code))
}

// CreateUser stores a new application user.
func (s *Service) CreateUser(ctx context.Context, u core.User) error {
	return s.store.CreateUser(ctx, u)
}

// UserByEmail looks a user up for signin.
func (s *Service) UserByEmail(ctx context.Context, email string) (core.User, error) {
	return s.store.UserByEmail(ctx, email)
}

// UserByID looks a user up for the profile endpoint.
func (s *Service) UserByID(ctx context.Context, id string) (core.User, error) {
	return s.store.UserByID(ctx, id)
}

func (s *Service) publish(ctx context.Context, msg *amqp.NotificationMessage) {
	if s.amqpClient == nil {
		s.log.WarnContext(ctx, "AMQP client not available, skipping notification", "type", msg.Type)
		return
	}
	if err := s.amqpClient.PublishNotification(ctx, msg); err != nil {
		// Mutation already committed; the mail is lost, not the money.
		s.log.ErrorContext(ctx, "Failed to publish notification",
			"type", msg.Type, applog.FieldOwner, msg.Owner, applog.FieldError, err)
	}
}

// Close closes both storage and AMQP connections.
func (s *Service) Close() error {
	var errs []error

	if s.store != nil {
		if err := s.store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}
	if s.amqpClient != nil {
		if err := s.amqpClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close ledger service: %v", errs)
	}
	return nil
}
