package domain

import "encoding/binary"

// Kind classifies a binary asset by its WebAssembly preamble.
type Kind uint8

const (
	// KindUnknown is anything that is not a recognized WebAssembly binary.
	KindUnknown Kind = iota
	// KindModule is a core WebAssembly module (version field 1).
	KindModule
	// KindComponent is a component-model binary (version field 0x1000D).
	KindComponent
)

// Preamble layout of every WebAssembly binary.
const (
	// PreambleSize is the length of the magic plus the version/kind field.
	PreambleSize = 8

	// ModuleVersion is the version field of a core module.
	ModuleVersion uint32 = 0x1

	// ComponentVersion is the version field of a component: version 0x0d, layer 1.
	ComponentVersion uint32 = 0x1000D
)

// Magic is the WebAssembly magic number "\0asm".
var Magic = [4]byte{0x00, 0x61, 0x73, 0x6D}

// String returns the lowercase name of the kind.
func (k Kind) String() string {
	switch k {
	case KindModule:
		return "module"
	case KindComponent:
		return "component"
	default:
		return "unknown"
	}
}

// DetectKind inspects the first eight bytes of b.
// Short or truncated buffers are reported as KindUnknown.
func DetectKind(b []byte) Kind {
	if len(b) < PreambleSize {
		return KindUnknown
	}
	if b[0] != Magic[0] || b[1] != Magic[1] || b[2] != Magic[2] || b[3] != Magic[3] {
		return KindUnknown
	}

	switch binary.LittleEndian.Uint32(b[4:PreambleSize]) {
	case ModuleVersion:
		return KindModule
	case ComponentVersion:
		return KindComponent
	default:
		return KindUnknown
	}
}
