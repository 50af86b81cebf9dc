// Package frame implements the length-prefixed wire unit streamed to
// subscribers: the decimal payload length, CRLF, the payload, CRLF.
//
// A Frame is encoded once into pooled storage and shared between
// destinations. Each destination takes its own handle with Duplicate, reads
// through its own cursor and calls Release exactly once when delivery ends,
// successful or not. Storage returns to the pool after the last release.
//
//	f := frame.New(doc)
//	defer f.Release()
//
//	d, err := f.Duplicate()
//	if err != nil {
//		return err
//	}
//	in := frame.NewChunkedInput(d, frame.DefaultChunkSize)
//	defer in.Close()
//	_, err = in.WriteTo(w)
//
// ReadFrame is the client side decoder for a stream of frames.
package frame
