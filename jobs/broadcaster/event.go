package broadcaster

import (
	"encoding/json"

	"github.com/cockroachdb/errors"
)

type EventType string

const (
	EventPut    EventType = "put"
	EventDelete EventType = "delete"
)

const eventVersion = 1

// Event describes one applied mutation of the store.
type Event struct {
	V     int       `json:"v"`
	Type  EventType `json:"type"`
	Key   string    `json:"key"`
	Value string    `json:"value,omitempty"`
	Seq   uint64    `json:"seq"`
}

func NewEvent(t EventType, seq uint64, key, value string) Event {
	return Event{V: eventVersion, Type: t, Key: key, Value: value, Seq: seq}
}

// Encode returns the message key and JSON payload for ev.
func (ev Event) Encode() (key, value []byte, err error) {
	value, err = json.Marshal(ev)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "encode event %d", ev.Seq)
	}
	return []byte(ev.Key), value, nil
}
