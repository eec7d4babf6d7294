package vvm

import (
	"errors"
	"fmt"
)

// Opcode table errors
var (
	ErrUnknownOpcode = errors.New("unknown opcode")
)

// execFn executes one instruction. args holds the operand words
// following the opcode; code is the enclosing instruction stream so
// variadic forms (call) can read their trailing words.
type execFn func(in *Interpreter, args []uint64, code []uint64) error

type opInfo struct {
	name  string
	arity int
	exec  execFn
}

// Opcode indexes the global opcode table. The binary encoding of an
// instruction is the opcode word followed by its operand words.
type Opcode uint64

var opcodeTable []opInfo
var opcodesByName map[string]Opcode

// Fixed-form opcodes. The generated families (arithmetic, casts,
// comparisons, ...) follow them in the table.
var (
	OpHalt         Opcode
	OpAlloc        Opcode
	OpWrite        Opcode
	OpSave         Opcode
	OpMember       Opcode
	OpAssign       Opcode
	OpAppend       Opcode
	OpRepr         Opcode
	OpLoad         Opcode
	OpStore        Opcode
	OpWhere        Opcode
	OpBr           Opcode
	OpBtrue        Opcode
	OpBfalse       Opcode
	OpRet          Opcode
	OpCall         Opcode
	OpIsort        Opcode
	OpMultidx      Opcode
	OpGroup        Opcode
	OpEqmatch      Opcode
	OpAsofmatch    Opcode
	OpAsofnear     Opcode
	OpAsofwithin   Opcode
	OpEqasofmatch  Opcode
	OpEqasofnear   Opcode
	OpEqasofwithin Opcode
	OpTake         Opcode
	OpConcat       Opcode
	OpNow          Opcode
)

func registerOp(name string, arity int, exec execFn) Opcode {
	op := Opcode(len(opcodeTable))
	opcodeTable = append(opcodeTable, opInfo{name: name, arity: arity, exec: exec})
	opcodesByName[name] = op
	return op
}

func init() {
	opcodesByName = make(map[string]Opcode)
	buildOpcodeTable()
}

// buildOpcodeTable registers every opcode. Table order is the binary
// encoding, so entries must never be reordered.
func buildOpcodeTable() {
	OpHalt = registerOp("halt", 0, nil)
	OpAlloc = registerOp("alloc", 2, (*Interpreter).execAlloc)
	OpWrite = registerOp("write", 1, (*Interpreter).execWrite)
	OpSave = registerOp("save", 1, (*Interpreter).execSave)
	OpMember = registerOp("member", 3, (*Interpreter).execMember)
	OpAssign = registerOp("assign", 3, (*Interpreter).execAssign)
	OpAppend = registerOp("append", 3, (*Interpreter).execAppend)
	OpRepr = registerOp("repr", 3, (*Interpreter).execRepr)
	OpLoad = registerOp("load", 3, (*Interpreter).execLoad)
	OpStore = registerOp("store", 4, (*Interpreter).execStore)
	OpWhere = registerOp("where", 4, (*Interpreter).execWhere)
	OpBr = registerOp("br", 1, (*Interpreter).execBr)
	OpBtrue = registerOp("btrue", 2, (*Interpreter).execBtrue)
	OpBfalse = registerOp("bfalse", 2, (*Interpreter).execBfalse)
	OpRet = registerOp("ret", 1, (*Interpreter).execRet)
	OpCall = registerOp("call", 2, (*Interpreter).execCall)
	OpIsort = registerOp("isort", 3, (*Interpreter).execIsort)
	OpMultidx = registerOp("multidx", 4, (*Interpreter).execMultidx)
	OpGroup = registerOp("group", 8, (*Interpreter).execGroup)
	OpEqmatch = registerOp("eqmatch", 5, (*Interpreter).execEqmatch)
	OpAsofmatch = registerOp("asofmatch", 7, (*Interpreter).execAsofmatch)
	OpAsofnear = registerOp("asofnear", 7, (*Interpreter).execAsofnear)
	OpAsofwithin = registerOp("asofwithin", 8, (*Interpreter).execAsofwithin)
	OpEqasofmatch = registerOp("eqasofmatch", 10, (*Interpreter).execEqasofmatch)
	OpEqasofnear = registerOp("eqasofnear", 10, (*Interpreter).execEqasofnear)
	OpEqasofwithin = registerOp("eqasofwithin", 11, (*Interpreter).execEqasofwithin)
	OpTake = registerOp("take", 4, (*Interpreter).execTake)
	OpConcat = registerOp("concat", 4, (*Interpreter).execConcat)
	OpNow = registerOp("now_Ts", 1, (*Interpreter).execNow)

	registerCasts()
	registerPrints()
	registerLogical()
	registerIntegerOps()
	registerArithmetic()
	registerComparisons()
	registerUnary()
	registerMath()
	registerReductions()
	registerStringOps()
	registerTimeOps()
	registerUnits()
	registerLengths()
	registerRange()
	registerDels()
	registerIdx()
}

// String returns the opcode's mnemonic.
func (op Opcode) String() string {
	if int(op) < len(opcodeTable) {
		return opcodeTable[op].name
	}
	return fmt.Sprintf("?op:%d", uint64(op))
}

// Arity returns the number of fixed operand words.
func (op Opcode) Arity() int {
	if int(op) < len(opcodeTable) {
		return opcodeTable[op].arity
	}
	return 0
}

// OpcodeFromString resolves a mnemonic to its opcode.
func OpcodeFromString(name string) (Opcode, error) {
	op, ok := opcodesByName[name]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownOpcode, name)
	}
	return op, nil
}

// NumOpcodes reports the table size.
func NumOpcodes() int { return len(opcodeTable) }

func sv(vector bool) string {
	if vector {
		return "v"
	}
	return "s"
}

// opSuffix renders a parameter suffix such as i64s or Tv.
func opSuffix(k ScalarKind, vector bool) string {
	return kindSuffix[k] + sv(vector)
}
