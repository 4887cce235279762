// Package worker consumes notification messages and delivers mails.
package worker

import (
	"context"
	"fmt"
	"time"

	"khata/internal/amqp"
	"khata/internal/core"
	applog "khata/internal/log"
	"khata/internal/mail"
)

// UserLookup resolves the mail recipient for owner-addressed notifications.
type UserLookup interface {
	UserByID(ctx context.Context, id string) (core.User, error)
}

// Notifier turns queue messages into mails. A returned error makes the
// consumer requeue the delivery, so only transient failures (lookup, SMTP)
// propagate; malformed messages are dropped with a log line.
type Notifier struct {
	users  UserLookup
	mailer mail.Sender
	otpTTL time.Duration
	log    *applog.Logger
}

func NewNotifier(users UserLookup, mailer mail.Sender, otpTTL time.Duration) *Notifier {
	return &Notifier{
		users:  users,
		mailer: mailer,
		otpTTL: otpTTL,
		log:    applog.New(applog.DefaultConfig()).WithComponent(applog.ComponentWorker),
	}
}

// HandleNotification processes a single message from the notifications queue.
func (n *Notifier) HandleNotification(ctx context.Context, msg *amqp.NotificationMessage) error {
	n.log.InfoContext(ctx, "Processing notification",
		"type", msg.Type,
		"owner", msg.Owner)

	switch msg.Type {
	case amqp.NotificationOTP:
		return n.sendOTP(ctx, msg)
	case amqp.NotificationBalanceChanged, amqp.NotificationExpenseRecorded:
		return n.sendBalanceNotice(ctx, msg)
	default:
		// Unknown types are dropped, not requeued: redelivery cannot fix them.
		n.log.WarnContext(ctx, "Dropping notification of unknown type", "type", msg.Type)
		return nil
	}
}

func (n *Notifier) sendOTP(ctx context.Context, msg *amqp.NotificationMessage) error {
	if msg.Email == "" || msg.Code == "" {
		n.log.WarnContext(ctx, "Dropping OTP notification without email or code")
		return nil
	}

	subject, body, err := mail.RenderOTP(msg.Code, n.otpTTL.String())
	if err != nil {
		return fmt.Errorf("render otp mail: %w", err)
	}
	if err := n.mailer.Send(msg.Email, subject, body); err != nil {
		return fmt.Errorf("send otp mail: %w", err)
	}

	n.log.InfoContext(ctx, "OTP mail sent", "email", msg.Email)
	return nil
}

func (n *Notifier) sendBalanceNotice(ctx context.Context, msg *amqp.NotificationMessage) error {
	if msg.Owner == "" {
		n.log.WarnContext(ctx, "Dropping balance notification without owner")
		return nil
	}

	user, err := n.users.UserByID(ctx, msg.Owner)
	if err != nil {
		return fmt.Errorf("resolve recipient %s: %w", msg.Owner, err)
	}

	var subject, body string
	if msg.Type == amqp.NotificationExpenseRecorded {
		subject, body, err = mail.RenderExpenseRecorded(
			user.Name, msg.Category, msg.AmountPaise, msg.PreviousPaise, msg.CurrentPaise)
	} else {
		subject, body, err = mail.RenderBalanceChanged(
			user.Name, msg.Kind, msg.AmountPaise, msg.PreviousPaise, msg.CurrentPaise)
	}
	if err != nil {
		return fmt.Errorf("render balance mail: %w", err)
	}

	if err := n.mailer.Send(user.Email, subject, body); err != nil {
		return fmt.Errorf("send balance mail: %w", err)
	}

	n.log.InfoContext(ctx, "Balance mail sent",
		"type", msg.Type,
		"owner", msg.Owner,
		"email", user.Email)
	return nil
}
