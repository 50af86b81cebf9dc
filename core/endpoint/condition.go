package endpoint

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrymomot/rgwnotify/core/filter"
)

// Rejection reasons reported to the Recorder.
const (
	ReasonEmpty       = "empty"
	ReasonCompile     = "compile"
	ReasonUnsupported = "unsupported"
	ReasonAlwaysTrue  = "always_true"
)

// Rejection is a refused subscription with the text sent to the client.
type Rejection struct {
	Reason  string
	Message string
	Err     error
}

func (r *Rejection) Error() string { return fmt.Sprintf("%s: %v", r.Message, r.Err) }

func (r *Rejection) Unwrap() error { return r.Err }

// DecodeCondition decodes a base64 condition leniently: both the standard
// and URL-safe alphabets are accepted, padding is optional, and characters
// outside the alphabet are ignored.
func DecodeCondition(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for i := 0; i < len(raw); i++ {
		switch c := raw[i]; {
		case c >= 'A' && c <= 'Z', c >= 'a' && c <= 'z', c >= '0' && c <= '9', c == '+', c == '/':
			b.WriteByte(c)
		case c == '-':
			b.WriteByte('+')
		case c == '_':
			b.WriteByte('/')
		}
	}
	s := b.String()
	if len(s)%4 == 1 {
		s = s[:len(s)-1]
	}
	// The input is filtered to the alphabet with a valid length, so decoding
	// cannot fail; a partial result is kept regardless.
	out, _ := base64.RawStdEncoding.DecodeString(s)
	return string(out)
}

// ParseCondition turns the raw query value into an accepted predicate.
func ParseCondition(raw string) (*filter.Predicate, *Rejection) {
	if strings.TrimSpace(raw) == "" {
		return nil, &Rejection{Reason: ReasonEmpty, Message: "Condition cannot be empty string", Err: ErrEmptyCondition}
	}

	p, err := filter.Compile(DecodeCondition(raw))
	if err != nil {
		return nil, &Rejection{Reason: ReasonCompile, Message: "Failed to parse expression", Err: err}
	}

	if err := p.Probe(); err != nil {
		reason := ReasonAlwaysTrue
		if errors.Is(err, filter.ErrUnsupported) {
			reason = ReasonUnsupported
		}
		return nil, &Rejection{Reason: reason, Message: "Invalid expression", Err: err}
	}
	return p, nil
}
