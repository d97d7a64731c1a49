package amqp

import (
	"encoding/json"
	"time"
)

// PeriodChangedMessage announces that the data of a month changed. It only
// carries the period and the state revision; consumers reload the store.
type PeriodChangedMessage struct {
	Year      int       `json:"year"`
	Month     int       `json:"month"`
	Revision  int64     `json:"revision"`
	Timestamp time.Time `json:"timestamp"`
}

// NewPeriodChangedMessage creates a message for a zero-based month.
func NewPeriodChangedMessage(year, month int, revision int64) *PeriodChangedMessage {
	return &PeriodChangedMessage{
		Year:      year,
		Month:     month,
		Revision:  revision,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *PeriodChangedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// PeriodChangedMessageFromJSON creates a message from JSON bytes
func PeriodChangedMessageFromJSON(data []byte) (*PeriodChangedMessage, error) {
	var msg PeriodChangedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// NotificationMessage mirrors a user notification on the bus.
type NotificationMessage struct {
	Level     string    `json:"level"`
	Message   string    `json:"message"`
	Blocking  bool      `json:"blocking"`
	Timestamp time.Time `json:"timestamp"`
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
