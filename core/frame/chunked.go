package frame

import "io"

// DefaultChunkSize is the chunk size used when none is configured.
const DefaultChunkSize = 8192

// ChunkedInput streams one frame handle in fixed-size chunks.
// It owns the handle: Close releases it.
type ChunkedInput struct {
	f         *Frame
	chunkSize int
	total     int
	progress  int
}

// NewChunkedInput wraps f. A non-positive chunkSize selects DefaultChunkSize.
func NewChunkedInput(f *Frame, chunkSize int) *ChunkedInput {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	return &ChunkedInput{f: f, chunkSize: chunkSize, total: f.Len()}
}

// ReadChunk returns the next chunk, or io.EOF when the input is exhausted.
// The chunk aliases frame storage and is valid until Close.
func (c *ChunkedInput) ReadChunk() ([]byte, error) {
	if c.f.Released() {
		return nil, ErrReleased
	}
	if c.IsEndOfInput() {
		return nil, io.EOF
	}
	b := c.f.Next(c.chunkSize)
	c.progress += len(b)
	return b, nil
}

// WriteTo writes every remaining chunk to w.
func (c *ChunkedInput) WriteTo(w io.Writer) (int64, error) {
	var written int64
	for {
		b, err := c.ReadChunk()
		if err == io.EOF {
			return written, nil
		}
		if err != nil {
			return written, err
		}
		n, err := w.Write(b)
		written += int64(n)
		if err != nil {
			return written, err
		}
	}
}

// IsEndOfInput reports whether every byte has been read.
func (c *ChunkedInput) IsEndOfInput() bool {
	return c.f.Len() == 0
}

// Length returns the number of bytes the input started with.
func (c *ChunkedInput) Length() int {
	return c.total
}

// Progress returns the number of bytes read so far.
func (c *ChunkedInput) Progress() int {
	return c.progress
}

// ChunkSize returns the configured chunk size.
func (c *ChunkedInput) ChunkSize() int {
	return c.chunkSize
}

// Close releases the underlying frame handle.
func (c *ChunkedInput) Close() error {
	return c.f.Release()
}
