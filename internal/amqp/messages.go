package amqp

import (
	"encoding/json"
	"time"
)

// TableChangedMessage announces that a snapshot table was rewritten. The
// mirror worker uses it to know which table to re-copy; it carries no row
// data because the store only deals in whole snapshots anyway.
type TableChangedMessage struct {
	Table     string    `json:"table"`
	Action    string    `json:"action"` // append, update, delete
	Actor     string    `json:"actor"`
	ChangedAt time.Time `json:"changed_at"`
}

func NewTableChangedMessage(table, action, actor string) *TableChangedMessage {
	return &TableChangedMessage{
		Table:     table,
		Action:    action,
		Actor:     actor,
		ChangedAt: time.Now().UTC(),
	}
}

func (m *TableChangedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func TableChangedMessageFromJSON(data []byte) (*TableChangedMessage, error) {
	var m TableChangedMessage
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return &m, nil
}
