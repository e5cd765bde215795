package notify

import (
	"context"
	"encoding/json"
	"time"

	"github.com/sirupsen/logrus"
)

// Message is a password-recovery notification for one account
type Message struct {
	Email     string    `json:"email"`
	OTP       string    `json:"otp"`
	ResetLink string    `json:"reset_link"`
	ExpiresAt time.Time `json:"expires_at"`
}

// ToJSON encodes the message body
func (m Message) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// MessageFromJSON decodes a message body
func MessageFromJSON(b []byte) (Message, error) {
	var m Message
	err := json.Unmarshal(b, &m)
	return m, err
}

// Notifier delivers OTP messages to account holders
type Notifier interface {
	SendOTP(ctx context.Context, msg Message) error
}

// LogNotifier writes OTP messages to the log instead of delivering them.
// It is selected when no broker is configured.
type LogNotifier struct {
	Logger logrus.FieldLogger
}

// SendOTP logs the message
func (n LogNotifier) SendOTP(_ context.Context, msg Message) error {
	logger := n.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	logger.WithFields(logrus.Fields{
		"email":      msg.Email,
		"otp":        msg.OTP,
		"reset_link": msg.ResetLink,
		"expires_at": msg.ExpiresAt.Format(time.RFC3339),
	}).Info("OTP issued")
	return nil
}
