package vvm

import (
	"errors"
	"reflect"
	"testing"
)

func sampleProgram(t *testing.T) *Program {
	t.Helper()
	p := NewProgram()
	ut, err := EncodeType(0, true)
	if err != nil {
		t.Fatal(err)
	}
	i64v, err := ParseType("i64v")
	if err != nil {
		t.Fatal(err)
	}
	p.Types[ut] = TypeDef{{Name: "k", Type: i64v}}
	g0, err := EncodeOperand(0, KindGlobal)
	if err != nil {
		t.Fatal(err)
	}
	g1, err := EncodeOperand(1, KindGlobal)
	if err != nil {
		t.Fatal(err)
	}
	p.Constants[g0] = StrConstant("trades.csv")
	p.Constants[g1] = FuncConstant(&FunctionDef{
		Name:    "id",
		Args:    TypeDef{{Name: "x", Type: TypeOf(KInt64, false)}},
		RetType: TypeOf(KInt64, false),
		Body:    []uint64{uint64(OpRet), 1, uint64(OpHalt)},
	})
	p.Instructions = []uint64{uint64(OpHalt)}
	return p
}

func TestSerializeRoundTrip(t *testing.T) {
	p := sampleProgram(t)
	data, err := Serialize(p)
	if err != nil {
		t.Fatal(err)
	}
	back, err := Deserialize(data)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(p.Instructions, back.Instructions) {
		t.Errorf("instructions: got %v, want %v", back.Instructions, p.Instructions)
	}
	if !reflect.DeepEqual(p.Types, back.Types) {
		t.Errorf("types: got %v, want %v", back.Types, p.Types)
	}
	if !reflect.DeepEqual(p.Constants, back.Constants) {
		t.Errorf("constants: got %v, want %v", back.Constants, p.Constants)
	}
}

func TestDeserializeBadMagic(t *testing.T) {
	data, err := Serialize(sampleProgram(t))
	if err != nil {
		t.Fatal(err)
	}
	data[0] = 'X'
	if _, err := Deserialize(data); !errors.Is(err, ErrInvalidMagic) {
		t.Fatalf("got %v, want ErrInvalidMagic", err)
	}
}

func TestDeserializeBadVersion(t *testing.T) {
	data, err := Serialize(sampleProgram(t))
	if err != nil {
		t.Fatal(err)
	}
	data[4] = 99
	if _, err := Deserialize(data); !errors.Is(err, ErrUnsupportedVersion) {
		t.Fatalf("got %v, want ErrUnsupportedVersion", err)
	}
}

func TestDeserializeCorruptPayload(t *testing.T) {
	data, err := Serialize(sampleProgram(t))
	if err != nil {
		t.Fatal(err)
	}
	data[len(data)-1] ^= 0xFF
	if _, err := Deserialize(data); !errors.Is(err, ErrChecksumMismatch) {
		t.Fatalf("got %v, want ErrChecksumMismatch", err)
	}
}

func TestDeserializeTruncated(t *testing.T) {
	if _, err := Deserialize([]byte("VVMB")); !errors.Is(err, ErrTruncatedBytecode) {
		t.Fatalf("got %v, want ErrTruncatedBytecode", err)
	}
}
