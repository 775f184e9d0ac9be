package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.trai.ch/witshim/internal/core/domain"
)

func TestDetectKind(t *testing.T) {
	tests := []struct {
		name  string
		input []byte
		want  domain.Kind
	}{
		{name: "nil", input: nil, want: domain.KindUnknown},
		{name: "empty", input: []byte{}, want: domain.KindUnknown},
		{name: "magic only", input: []byte{0x00, 0x61, 0x73, 0x6D}, want: domain.KindUnknown},
		{name: "truncated version", input: []byte{0x00, 0x61, 0x73, 0x6D, 0x01, 0x00, 0x00}, want: domain.KindUnknown},
		{name: "module with trailing byte", input: []byte{0x00, 0x61, 0x73, 0x6D, 0x01, 0x00, 0x00, 0x00, 0xFF}, want: domain.KindModule},
		{name: "module exact", input: []byte{0x00, 0x61, 0x73, 0x6D, 0x01, 0x00, 0x00, 0x00}, want: domain.KindModule},
		{name: "component", input: []byte{0x00, 0x61, 0x73, 0x6D, 0x0D, 0x00, 0x01, 0x00}, want: domain.KindComponent},
		{name: "component version layer 0", input: []byte{0x00, 0x61, 0x73, 0x6D, 0x0D, 0x00, 0x00, 0x00}, want: domain.KindUnknown},
		{name: "future version", input: []byte{0x00, 0x61, 0x73, 0x6D, 0x02, 0x00, 0x00, 0x00}, want: domain.KindUnknown},
		{name: "big endian module", input: []byte{0x00, 0x61, 0x73, 0x6D, 0x00, 0x00, 0x00, 0x01}, want: domain.KindUnknown},
		{name: "text", input: []byte("export const answer = 42;\n"), want: domain.KindUnknown},
		{name: "bad magic good version", input: []byte{0x00, 0x61, 0x73, 0x6E, 0x01, 0x00, 0x00, 0x00}, want: domain.KindUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, domain.DetectKind(tt.input))
		})
	}
}

func TestDetectKind_ShortBuffersNeverPanic(t *testing.T) {
	full := []byte{0x00, 0x61, 0x73, 0x6D, 0x0D, 0x00, 0x01, 0x00}
	for n := 0; n < domain.PreambleSize; n++ {
		assert.NotPanics(t, func() {
			assert.Equal(t, domain.KindUnknown, domain.DetectKind(full[:n]))
		})
	}
}

func TestDetectKind_WrongMagicIgnoresRest(t *testing.T) {
	for b := 0; b < 256; b++ {
		if byte(b) == domain.Magic[0] {
			continue
		}
		input := []byte{byte(b), 0x61, 0x73, 0x6D, 0x0D, 0x00, 0x01, 0x00, 0x01}
		assert.Equal(t, domain.KindUnknown, domain.DetectKind(input), "first byte %#x", b)
	}
}

func TestKind_String(t *testing.T) {
	assert.Equal(t, "module", domain.KindModule.String())
	assert.Equal(t, "component", domain.KindComponent.String())
	assert.Equal(t, "unknown", domain.KindUnknown.String())
	assert.Equal(t, "unknown", domain.Kind(42).String())
}
