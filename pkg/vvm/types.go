package vvm

import (
	"errors"
	"fmt"
	"strconv"
)

// Type encoding errors
var (
	ErrTypeTooLarge  = errors.New("type id too large")
	ErrUnknownType   = errors.New("unknown type")
	ErrNotUserType   = errors.New("not a user-defined type")
	ErrUndefinedType = errors.New("type was never defined")
)

const typeTagBits = 1

// Type is a tagged type id. The low bit distinguishes builtin types
// from user-defined ones; the payload is a BuiltinType code or a
// user-defined type number.
type Type uint64

// EncodeType tags id as a builtin or user-defined type.
func EncodeType(id uint64, userDefined bool) (Type, error) {
	if (id<<typeTagBits)>>typeTagBits != id {
		return 0, fmt.Errorf("%w: %d", ErrTypeTooLarge, id)
	}
	t := Type(id << typeTagBits)
	if userDefined {
		t |= 1
	}
	return t, nil
}

// UserDefined reports whether the type is user-defined.
func (t Type) UserDefined() bool { return t&1 == 1 }

// Value returns the untagged id.
func (t Type) Value() uint64 { return uint64(t >> typeTagBits) }

// Builtin returns the builtin code for a builtin type.
func (t Type) Builtin() BuiltinType { return BuiltinType(t.Value()) }

// ScalarKind enumerates the element classes a register can hold.
// Timestamp, Timedelta, Time and Date share int64 storage.
type ScalarKind int

const (
	KInt64 ScalarKind = iota
	KFloat64
	KBool
	KString
	KChar
	KTimestamp
	KTimedelta
	KTime
	KDate
	numScalarKinds
)

var kindSuffix = [numScalarKinds]string{
	"i64", "f64", "b8", "S", "c8", "T", "D", "TI", "DA",
}

// BuiltinType enumerates builtin type codes: each kind contributes a
// scalar code followed by its vector code.
type BuiltinType uint64

const (
	I64s BuiltinType = iota
	I64v
	F64s
	F64v
	B8s
	B8v
	Ss
	Sv
	C8s
	C8v
	Ts
	Tv
	Ds
	Dv
	TIs
	TIv
	DAs
	DAv
	numBuiltinTypes
)

// Kind returns the element class of a builtin code.
func (b BuiltinType) Kind() ScalarKind { return ScalarKind(b / 2) }

// Vector reports whether the code denotes a vector.
func (b BuiltinType) Vector() bool { return b%2 == 1 }

// BuiltinOf returns the builtin code for a kind and shape.
func BuiltinOf(k ScalarKind, vector bool) BuiltinType {
	b := BuiltinType(k) * 2
	if vector {
		b++
	}
	return b
}

// TypeOf returns the tagged builtin type for a kind and shape.
func TypeOf(k ScalarKind, vector bool) Type {
	return Type(BuiltinOf(k, vector)) << typeTagBits
}

var builtinTypeNames [numBuiltinTypes]string
var builtinTypesByName map[string]BuiltinType

func init() {
	builtinTypesByName = make(map[string]BuiltinType, numBuiltinTypes)
	for k := ScalarKind(0); k < numScalarKinds; k++ {
		builtinTypeNames[BuiltinOf(k, false)] = kindSuffix[k] + "s"
		builtinTypeNames[BuiltinOf(k, true)] = kindSuffix[k] + "v"
	}
	for b, name := range builtinTypeNames {
		builtinTypesByName[name] = BuiltinType(b)
	}
}

// String renders the textual form: the builtin name (i64s, f64v, ...)
// or $n for user-defined types.
func (t Type) String() string {
	if t.UserDefined() {
		return "$" + strconv.FormatUint(t.Value(), 10)
	}
	if t.Builtin() < numBuiltinTypes {
		return builtinTypeNames[t.Builtin()]
	}
	return fmt.Sprintf("?type:%d", uint64(t))
}

// ParseType parses a builtin type name or a $n user-defined reference.
func ParseType(s string) (Type, error) {
	if len(s) > 1 && s[0] == '$' {
		id, err := strconv.ParseUint(s[1:], 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrUnknownType, s)
		}
		return EncodeType(id, true)
	}
	b, ok := builtinTypesByName[s]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownType, s)
	}
	return EncodeType(uint64(b), false)
}

// NamedType is one member of a user-defined type definition.
type NamedType struct {
	Name string `cbor:"name"`
	Type Type   `cbor:"type"`
}

// TypeDef lists the members of a user-defined type in order.
type TypeDef []NamedType
