package ast

import "fmt"

// OpCode is an operator of the intermediate representation.
type OpCode int

const (
	// unops
	UnopNegate OpCode = iota
	UnopSin
	UnopCos
	UnopAbs
	UnopSqrt
	UnopLog
	UnopExp
	UnopInt
	UnopBitwiseNot
	UnopBoolNot
	UnopPreInc
	UnopPreDec
	UnopPostInc
	UnopPostDec

	// binops
	BinopAdd
	BinopSubtract
	BinopMultiply
	BinopDivide
	BinopModulo
	BinopAtan2
	BinopPow
	BinopLeftShift
	BinopRightShift
	BinopBitwiseAnd
	BinopBitwiseOr
	BinopBitwiseXor
	BinopEq
	BinopNe
	BinopLt
	BinopLe
	BinopGt
	BinopGe
	BinopBoolAnd
	BinopBoolOr
	BinopDefinedOr
	BinopSAssign

	// listops
	ListopTernary
	ListopList
	ListopRand
	ListopSrand

	numOpCodes
)

// OpClass is the arity class of an operator.
type OpClass int

const (
	ClassUnop OpClass = iota
	ClassBinop
	ClassListop
)

func (c OpClass) String() string {
	switch c {
	case ClassUnop:
		return "unop"
	case ClassBinop:
		return "binop"
	case ClassListop:
		return "listop"
	}
	return fmt.Sprintf("OpClass(%d)", int(c))
}

// OpFlags describe evaluation properties of an operator.
type OpFlags uint

const (
	// FlagConditional marks operators that do not unconditionally evaluate
	// all of their operands.
	FlagConditional OpFlags = 1 << iota
	// FlagAssignment marks operators that store into their first operand.
	FlagAssignment
)

type opInfo struct {
	name  string
	class OpClass
	flags OpFlags
}

// opTable is indexed by OpCode.
var opTable = [...]opInfo{
	UnopNegate:     {"unary -", ClassUnop, 0},
	UnopSin:        {"sin", ClassUnop, 0},
	UnopCos:        {"cos", ClassUnop, 0},
	UnopAbs:        {"abs", ClassUnop, 0},
	UnopSqrt:       {"sqrt", ClassUnop, 0},
	UnopLog:        {"log", ClassUnop, 0},
	UnopExp:        {"exp", ClassUnop, 0},
	UnopInt:        {"int", ClassUnop, 0},
	UnopBitwiseNot: {"~", ClassUnop, 0},
	UnopBoolNot:    {"!", ClassUnop, 0},
	UnopPreInc:     {"++ (pre)", ClassUnop, FlagAssignment},
	UnopPreDec:     {"-- (pre)", ClassUnop, FlagAssignment},
	UnopPostInc:    {"++ (post)", ClassUnop, FlagAssignment},
	UnopPostDec:    {"-- (post)", ClassUnop, FlagAssignment},

	BinopAdd:        {"+", ClassBinop, 0},
	BinopSubtract:   {"-", ClassBinop, 0},
	BinopMultiply:   {"*", ClassBinop, 0},
	BinopDivide:     {"/", ClassBinop, 0},
	BinopModulo:     {"%", ClassBinop, 0},
	BinopAtan2:      {"atan2", ClassBinop, 0},
	BinopPow:        {"pow", ClassBinop, 0},
	BinopLeftShift:  {"<<", ClassBinop, 0},
	BinopRightShift: {">>", ClassBinop, 0},
	BinopBitwiseAnd: {"&", ClassBinop, 0},
	BinopBitwiseOr:  {"|", ClassBinop, 0},
	BinopBitwiseXor: {"^", ClassBinop, 0},
	BinopEq:         {"==", ClassBinop, 0},
	BinopNe:         {"!=", ClassBinop, 0},
	BinopLt:         {"<", ClassBinop, 0},
	BinopLe:         {"<=", ClassBinop, 0},
	BinopGt:         {">", ClassBinop, 0},
	BinopGe:         {">=", ClassBinop, 0},
	BinopBoolAnd:    {"&&", ClassBinop, FlagConditional},
	BinopBoolOr:     {"||", ClassBinop, FlagConditional},
	BinopDefinedOr:  {"//", ClassBinop, FlagConditional},
	BinopSAssign:    {"=", ClassBinop, FlagAssignment},

	ListopTernary: {"?:", ClassListop, FlagConditional},
	ListopList:    {"list", ClassListop, 0},
	ListopRand:    {"rand", ClassListop, 0},
	ListopSrand:   {"srand", ClassListop, 0},
}

// compile-time check that every OpCode has metadata
var _ = opTable[numOpCodes-1]

func (c OpCode) valid() bool {
	return c >= 0 && c < numOpCodes
}

// Name is the display name of the operator.
func (c OpCode) Name() string {
	if !c.valid() {
		return fmt.Sprintf("OpCode(%d)", int(c))
	}
	return opTable[c].name
}

func (c OpCode) String() string { return c.Name() }

// Flags returns the evaluation flags of the operator.
func (c OpCode) Flags() OpFlags {
	if !c.valid() {
		return 0
	}
	return opTable[c].flags
}

// Class returns the arity class of the operator.
func (c OpCode) Class() OpClass {
	if !c.valid() {
		panic(fmt.Sprintf("ast: invalid op code %d", int(c)))
	}
	return opTable[c].class
}

// IsConditional reports whether some operands are evaluated conditionally.
func (c OpCode) IsConditional() bool {
	return c.Flags()&FlagConditional != 0
}

// OpCodes returns every operator in table order.
func OpCodes() []OpCode {
	codes := make([]OpCode, numOpCodes)
	for i := range codes {
		codes[i] = OpCode(i)
	}
	return codes
}
