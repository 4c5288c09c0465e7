package amqp

import (
	"encoding/json"
	"time"
)

// MonthSyncMessage asks the backup worker to refresh one month's summary.
// It carries only the competence key and snapshot timestamp, the worker
// reads the full document from storage.
type MonthSyncMessage struct {
	Competence string    `json:"competence"`
	UpdatedAt  string    `json:"updatedAt"`
	Timestamp  time.Time `json:"timestamp"`
}

// NewMonthSyncMessage creates a sync message for the given competence key.
func NewMonthSyncMessage(competence, updatedAt string) *MonthSyncMessage {
	return &MonthSyncMessage{
		Competence: competence,
		UpdatedAt:  updatedAt,
		Timestamp:  time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *MonthSyncMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// MonthSyncMessageFromJSON creates a message from JSON bytes
func MonthSyncMessageFromJSON(data []byte) (*MonthSyncMessage, error) {
	var msg MonthSyncMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
