package frame

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
)

// MaxFrameSize caps the payload accepted by ReadFrame.
const MaxFrameSize = 8 << 20

var crlf = []byte("\r\n")

// AppendFrame appends the wire form of payload to dst:
// the decimal payload length, CRLF, the payload, CRLF.
func AppendFrame(dst, payload []byte) []byte {
	dst = strconv.AppendInt(dst, int64(len(payload)), 10)
	dst = append(dst, crlf...)
	dst = append(dst, payload...)
	return append(dst, crlf...)
}

// EncodedLen returns the wire size of a frame carrying n payload bytes.
func EncodedLen(n int) int {
	return len(strconv.Itoa(n)) + n + 2*len(crlf)
}

// WriteFrame writes a single frame to w.
func WriteFrame(w io.Writer, payload []byte) error {
	if len(payload) > MaxFrameSize {
		return fmt.Errorf("%w: %d", ErrTooLarge, len(payload))
	}
	_, err := w.Write(AppendFrame(make([]byte, 0, EncodedLen(len(payload))), payload))
	return err
}

// ReadFrame reads one frame from r and returns its payload.
// io.EOF is returned only when r is exhausted before the first header byte.
func ReadFrame(r *bufio.Reader) ([]byte, error) {
	line, err := r.ReadSlice('\n')
	if err != nil {
		if err == io.EOF && len(line) == 0 {
			return nil, io.EOF
		}
		if err == bufio.ErrBufferFull {
			return nil, fmt.Errorf("%w: header too long", ErrMalformed)
		}
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if len(line) < 3 || line[len(line)-2] != '\r' {
		return nil, fmt.Errorf("%w: bad header %q", ErrMalformed, line)
	}
	digits := line[:len(line)-2]
	for _, c := range digits {
		if c < '0' || c > '9' {
			return nil, fmt.Errorf("%w: bad length %q", ErrMalformed, digits)
		}
	}
	sz, err := strconv.Atoi(string(digits))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if sz > MaxFrameSize {
		return nil, fmt.Errorf("%w: %d", ErrTooLarge, sz)
	}

	buf := make([]byte, sz+len(crlf))
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if buf[sz] != '\r' || buf[sz+1] != '\n' {
		return nil, fmt.Errorf("%w: missing trailer", ErrMalformed)
	}
	return buf[:sz:sz], nil
}
