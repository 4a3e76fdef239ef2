package events

import (
	"encoding/json"
	"time"
)

// Actions carried by a RecordChange message.
const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

// RecordChange is a lightweight notification that a record changed.
// It carries only identity, not the record itself; consumers that need the
// data fetch it from the database.
type RecordChange struct {
	Profile   string    `json:"profile"`
	Entity    string    `json:"entity"`
	ID        int64     `json:"id"`
	Action    string    `json:"action"`
	Timestamp time.Time `json:"timestamp"`
}

// NewRecordChange builds a change message stamped with the current time.
func NewRecordChange(profile, entity string, id int64, action string) *RecordChange {
	return &RecordChange{
		Profile:   profile,
		Entity:    entity,
		ID:        id,
		Action:    action,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes.
func (m *RecordChange) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// RecordChangeFromJSON creates a message from JSON bytes.
func RecordChangeFromJSON(data []byte) (*RecordChange, error) {
	var msg RecordChange
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
