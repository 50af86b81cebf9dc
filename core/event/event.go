package event

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// ObjectRef identifies an object in the store.
type ObjectRef struct {
	Bucket string
	Key    string
}

// ID returns the document identifier used by the index: "<bucket>.<key>".
func (r ObjectRef) ID() string {
	return r.Bucket + "." + r.Key
}

// ObjectEvent is a single storage modification notification.
// ID is supplied by the producer and is not required to be unique.
type ObjectEvent struct {
	ID        string
	Kind      Kind
	Timestamp time.Time
	Object    ObjectRef
}

// Batch is the ordered set of events received in one publish call.
type Batch []ObjectEvent

// timestampLayouts are tried in order when decoding event timestamps.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.000000Z",
	"2006-01-02 15:04:05.000Z",
	"2006-01-02 15:04:05Z",
	"2006-01-02T15:04:05.000000Z",
}

type wireName struct {
	Name string `json:"name"`
}

type wireInfo struct {
	Bucket wireName `json:"bucket"`
	Key    wireName `json:"key"`
}

type wireEvent struct {
	ID        string   `json:"id"`
	Event     Kind     `json:"event"`
	Timestamp string   `json:"timestamp"`
	Info      wireInfo `json:"info"`
}

type wireEnvelope struct {
	Events []wireEvent `json:"events"`
}

// ParseBatch decodes a publish body. Both a bare JSON array of events and the
// {"events": [...]} envelope are accepted; unknown fields are ignored.
// Any failure is reported as ErrParse and no partial batch is returned.
func ParseBatch(data []byte) (Batch, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty body", ErrParse)
	}

	var events []wireEvent
	switch data[0] {
	case '[':
		if err := json.Unmarshal(data, &events); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrParse, err)
		}
	case '{':
		var env wireEnvelope
		if err := json.Unmarshal(data, &env); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrParse, err)
		}
		events = env.Events
	default:
		return nil, fmt.Errorf("%w: unexpected leading byte %q", ErrParse, data[0])
	}

	batch := make(Batch, 0, len(events))
	for i, we := range events {
		ts, err := parseTimestamp(we.Timestamp)
		if err != nil {
			return nil, fmt.Errorf("%w: event %d: %v", ErrParse, i, err)
		}
		batch = append(batch, ObjectEvent{
			ID:        we.ID,
			Kind:      we.Event,
			Timestamp: ts,
			Object: ObjectRef{
				Bucket: we.Info.Bucket.Name,
				Key:    we.Info.Key.Name,
			},
		})
	}
	return batch, nil
}

func parseTimestamp(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised timestamp %q", s)
}
