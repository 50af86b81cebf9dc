package endpoint_test

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/rgwnotify/core/endpoint"
	"github.com/dmitrymomot/rgwnotify/core/filter"
)

func b64(s string) string {
	return base64.StdEncoding.EncodeToString([]byte(s))
}

func TestDecodeCondition(t *testing.T) {
	t.Parallel()

	expr := "content_type == 'text/plain' && content_length > 10"
	tests := []struct {
		name string
		in   string
	}{
		{"standard", base64.StdEncoding.EncodeToString([]byte(expr))},
		{"url safe", base64.URLEncoding.EncodeToString([]byte(expr))},
		{"no padding", base64.RawStdEncoding.EncodeToString([]byte(expr))},
		{"with noise", " " + base64.StdEncoding.EncodeToString([]byte(expr)) + "\n"},
	}
	for _, tt := range tests {
		assert.Equal(t, expr, endpoint.DecodeCondition(tt.in), tt.name)
	}

	assert.Empty(t, endpoint.DecodeCondition("!!!"))
}

func TestParseCondition(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		raw        string
		wantReason string
		wantMsg    string
		wantErr    error
	}{
		{"blank", "   ", endpoint.ReasonEmpty, "Condition cannot be empty string", endpoint.ErrEmptyCondition},
		{"not an expression", b64("content_type ==="), endpoint.ReasonCompile, "Failed to parse expression", filter.ErrCompile},
		{"decodes to nothing", "!!!!", endpoint.ReasonCompile, "Failed to parse expression", filter.ErrCompile},
		{"always true", b64("true"), endpoint.ReasonAlwaysTrue, "Invalid expression", filter.ErrAlwaysTrue},
		{"null result", b64("null"), endpoint.ReasonAlwaysTrue, "Invalid expression", filter.ErrAlwaysTrue},
		{"non boolean", b64("'text'"), endpoint.ReasonUnsupported, "Invalid expression", filter.ErrUnsupported},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, rej := endpoint.ParseCondition(tt.raw)
			assert.Nil(t, p)
			require.NotNil(t, rej)
			assert.Equal(t, tt.wantReason, rej.Reason)
			assert.Equal(t, tt.wantMsg, rej.Message)
			assert.ErrorIs(t, rej, tt.wantErr)
		})
	}

	for _, ok := range []string{"false", "content_type == 'text/plain'", "metadata['content_length'] > 100"} {
		p, rej := endpoint.ParseCondition(b64(ok))
		assert.Nil(t, rej, ok)
		require.NotNil(t, p, ok)
		assert.Equal(t, ok, p.String())
	}
}
