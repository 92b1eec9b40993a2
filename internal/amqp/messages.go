package amqp

import (
	"encoding/json"
	"time"
)

// Export actions.
const (
	ActionSync   = "sync"
	ActionDelete = "delete"
)

// ExportMessage is the lightweight envelope published when a transaction
// needs to reach the backup spreadsheet. It carries only the ID and action;
// the worker fetches the full transaction from the database.
type ExportMessage struct {
	TransactionID string    `json:"transaction_id"`
	Action        string    `json:"action"`
	Timestamp     time.Time `json:"timestamp"`
}

// NewExportMessage creates an export message for the given transaction.
func NewExportMessage(transactionID, action string) *ExportMessage {
	return &ExportMessage{
		TransactionID: transactionID,
		Action:        action,
		Timestamp:     time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *ExportMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ExportMessageFromJSON creates a message from JSON bytes
func ExportMessageFromJSON(data []byte) (*ExportMessage, error) {
	var msg ExportMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
