package amqp

import (
	"time"

	json "github.com/goccy/go-json"
)

// DatasetRefreshMessage tells the refresh worker that the upstream
// donation export changed. It carries no data: the worker always reloads
// the full dataset through the configured source, never an increment.
type DatasetRefreshMessage struct {
	Reason    string    `json:"reason"`
	Timestamp time.Time `json:"timestamp"`
}

// NewDatasetRefreshMessage creates a refresh message with the given reason.
func NewDatasetRefreshMessage(reason string) *DatasetRefreshMessage {
	return &DatasetRefreshMessage{
		Reason:    reason,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *DatasetRefreshMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// DatasetRefreshMessageFromJSON creates a message from JSON bytes
func DatasetRefreshMessageFromJSON(data []byte) (*DatasetRefreshMessage, error) {
	var msg DatasetRefreshMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
