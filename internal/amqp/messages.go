package amqp

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ChangeEvent announces that a ledger collection changed. It carries only the
// affected ids; consumers reload the collection from storage.
type ChangeEvent struct {
	ID         uuid.UUID `json:"id"`
	Collection string    `json:"collection"`
	Op         string    `json:"op"`
	IDs        []string  `json:"ids"`
	Timestamp  time.Time `json:"timestamp"`
}

// NewChangeEvent creates an event with a fresh id
func NewChangeEvent(collection, op string, ids []string) *ChangeEvent {
	return &ChangeEvent{
		ID:         uuid.New(),
		Collection: collection,
		Op:         op,
		IDs:        ids,
		Timestamp:  time.Now().UTC(),
	}
}

// ToJSON converts the event to JSON bytes
func (m *ChangeEvent) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ChangeEventFromJSON decodes an event and rejects ones missing their routing fields
func ChangeEventFromJSON(data []byte) (*ChangeEvent, error) {
	var msg ChangeEvent
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.ID == uuid.Nil || msg.Collection == "" {
		return nil, fmt.Errorf("change event missing id or collection")
	}
	return &msg, nil
}
