package amqp

import (
	"encoding/json"
	"time"

	"khata/internal/core"
)

// NotificationType discriminates the messages flowing over the
// notifications queue.
type NotificationType string

const (
	NotificationBalanceChanged  NotificationType = "balance_changed"
	NotificationExpenseRecorded NotificationType = "expense_recorded"
	NotificationOTP             NotificationType = "otp"
)

// NotificationMessage is the envelope published by the API process and
// consumed by the mailer worker. Balance notifications carry the owner id;
// the worker resolves the recipient address from storage. OTP notifications
// carry the address directly since no user exists yet.
type NotificationMessage struct {
	Type          NotificationType `json:"type"`
	Owner         string           `json:"owner,omitempty"`
	Email         string           `json:"email,omitempty"`
	Kind          string           `json:"kind,omitempty"`
	Category      string           `json:"category,omitempty"`
	AmountPaise   int64            `json:"amount_paise,omitempty"`
	PreviousPaise int64            `json:"previous_paise,omitempty"`
	CurrentPaise  int64            `json:"current_paise,omitempty"`
	Code          string           `json:"code,omitempty"`
	Timestamp     time.Time        `json:"timestamp"`
}

// NewBalanceChangedMessage builds a notification for a raw credit/debit.
func NewBalanceChangedMessage(change core.BalanceChange) *NotificationMessage {
	return &NotificationMessage{
		Type:          NotificationBalanceChanged,
		Owner:         change.Owner,
		Kind:          string(change.Kind),
		AmountPaise:   change.Amount.Paise,
		PreviousPaise: change.Previous.Paise,
		CurrentPaise:  change.Current.Paise,
		Timestamp:     change.At,
	}
}

// NewExpenseRecordedMessage builds a notification for a category expense.
func NewExpenseRecordedMessage(title string, change core.BalanceChange) *NotificationMessage {
	msg := NewBalanceChangedMessage(change)
	msg.Type = NotificationExpenseRecorded
	msg.Category = title
	return msg
}

// NewOTPMessage builds a signup verification mail request.
func NewOTPMessage(email, code string) *NotificationMessage {
	return &NotificationMessage{
		Type:      NotificationOTP,
		Email:     email,
		Code:      code,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *NotificationMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// NotificationMessageFromJSON creates a message from JSON bytes
func NotificationMessageFromJSON(data []byte) (*NotificationMessage, error) {
	var msg NotificationMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
