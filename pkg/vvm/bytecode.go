package vvm

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/dchest/siphash"
	"github.com/fxamacker/cbor/v2"
)

// Bytecode container errors
var (
	ErrInvalidMagic       = errors.New("invalid bytecode magic")
	ErrUnsupportedVersion = errors.New("unsupported bytecode version")
	ErrChecksumMismatch   = errors.New("bytecode checksum mismatch")
	ErrTruncatedBytecode  = errors.New("truncated bytecode")
)

// Container layout: 4-byte magic, 1-byte format version, 8-byte
// SipHash of the payload, then the canonical CBOR payload.
const (
	bytecodeMagic   = "VVMB"
	bytecodeVersion = 1
	headerSize      = 4 + 1 + 8
)

// Fixed SipHash key; the checksum guards against corruption, not tampering.
const (
	sipKey0 = 0x7656564d42303156 // "vVVMB01V"
	sipKey1 = 0x0123456789abcdef
)

var encMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("vvm: cbor encoder: %v", err))
	}
	encMode = em
}

// Serialize renders a program as a checksummed binary container.
func Serialize(p *Program) ([]byte, error) {
	payload, err := encMode.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("vvm: serializing program: %w", err)
	}
	out := make([]byte, headerSize+len(payload))
	copy(out, bytecodeMagic)
	out[4] = bytecodeVersion
	binary.LittleEndian.PutUint64(out[5:], siphash.Hash(sipKey0, sipKey1, payload))
	copy(out[headerSize:], payload)
	return out, nil
}

// Deserialize parses a binary container back into a program.
func Deserialize(data []byte) (*Program, error) {
	if len(data) < headerSize {
		return nil, ErrTruncatedBytecode
	}
	if string(data[:4]) != bytecodeMagic {
		return nil, ErrInvalidMagic
	}
	if data[4] != bytecodeVersion {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, data[4])
	}
	payload := data[headerSize:]
	want := binary.LittleEndian.Uint64(data[5:])
	if siphash.Hash(sipKey0, sipKey1, payload) != want {
		return nil, ErrChecksumMismatch
	}
	p := NewProgram()
	if err := cbor.Unmarshal(payload, p); err != nil {
		return nil, fmt.Errorf("vvm: deserializing program: %w", err)
	}
	return p, nil
}
