// Package event defines the object storage notification model: event kinds,
// individual events, publish batches and the enriched record that is indexed
// and broadcast to subscribers.
//
// Batches are decoded from the body of a publish call:
//
//	batch, err := event.ParseBatch(body)
//	if err != nil {
//		// errors.Is(err, event.ErrParse)
//	}
//	for _, ev := range batch {
//		switch ev.Kind {
//		case event.KindCreated:
//		case event.KindDeleted:
//		}
//	}
//
// A created event that was enriched with metadata becomes a Record whose
// Document is the JSON payload shared by the index and the subscriber frames:
//
//	{"bucket":"b1","name":"k1","instance":"1","create_time":"2020-05-29 09:00:00.000","meta":{"content_type":"text/plain"}}
package event
