package event

import (
	"encoding/json"
	"fmt"
	"time"
)

// CreateTimeLayout is the layout of the create_time document field.
const CreateTimeLayout = "2006-01-02 15:04:05.000"

// Metadata is the flat description of an object as returned by the metadata service.
// Values are strings or scalars. It is also the root mapping for filter evaluation.
type Metadata map[string]any

// Record is an event enriched with object metadata.
// Only successfully enriched create events produce a Record.
type Record struct {
	Object    ObjectRef
	EventID   string
	Timestamp time.Time
	Metadata  Metadata
}

// NewRecord builds the record for a created object.
func NewRecord(ev ObjectEvent, md Metadata) Record {
	return Record{
		Object:    ev.Object,
		EventID:   ev.ID,
		Timestamp: ev.Timestamp,
		Metadata:  md,
	}
}

type document struct {
	Bucket     string   `json:"bucket"`
	Name       string   `json:"name"`
	Instance   string   `json:"instance,omitempty"`
	CreateTime string   `json:"create_time,omitempty"`
	Meta       Metadata `json:"meta"`
}

// Document serializes the record into the bytes that are both indexed and broadcast.
func (r Record) Document() ([]byte, error) {
	doc := document{
		Bucket:   r.Object.Bucket,
		Name:     r.Object.Key,
		Instance: r.EventID,
		Meta:     r.Metadata,
	}
	if doc.Meta == nil {
		doc.Meta = Metadata{}
	}
	if !r.Timestamp.IsZero() {
		doc.CreateTime = r.Timestamp.UTC().Format(CreateTimeLayout)
	}

	b, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSerialize, err)
	}
	return b, nil
}
