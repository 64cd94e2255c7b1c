package optree

import "fmt"

// Kind identifies the type of a host op.
type Kind int

const (
	KindNull Kind = iota // ex-op left behind by the host optimizer

	// Leaves and stack plumbing
	KindStub
	KindConst
	KindPadSV
	KindPadAV
	KindPadHV
	KindGV
	KindPushMark
	KindList

	// Assignment
	KindSAssign
	KindAAssign

	// Arithmetic
	KindAdd
	KindSubtract
	KindMultiply
	KindDivide
	KindModulo
	KindPow
	KindAtan2
	KindNegate
	KindInt
	KindAbs
	KindSqrt
	KindSin
	KindCos
	KindExp
	KindLog
	KindRand
	KindSrand
	KindPreInc
	KindPreDec
	KindPostInc
	KindPostDec

	// Bitwise
	KindLeftShift
	KindRightShift
	KindBitAnd
	KindBitOr
	KindBitXor
	KindComplement

	// Comparison
	KindEq
	KindNe
	KindLt
	KindLe
	KindGt
	KindGe

	// Logic and conditionals
	KindNot
	KindAnd
	KindOr
	KindDOr
	KindAndAssign
	KindOrAssign
	KindDOrAssign
	KindCondExpr

	// Strings, aggregates, calls
	KindConcat
	KindAElem
	KindHElem
	KindSRefGen
	KindRV2SV
	KindEnterSub
	KindMethodNamed
	KindPrint

	// Statements and control flow
	KindNextState
	KindLineSeq
	KindEnter
	KindLeave
	KindScope
	KindLeaveSub
	KindReturn
	KindEnterLoop
	KindLeaveLoop
	KindNext
	KindLast
	KindRedo
	KindGoto
	KindDie

	numKinds
)

// kindNames is indexed by Kind and holds the host's op names.
var kindNames = [...]string{
	KindNull:        "null",
	KindStub:        "stub",
	KindConst:       "const",
	KindPadSV:       "padsv",
	KindPadAV:       "padav",
	KindPadHV:       "padhv",
	KindGV:          "gv",
	KindPushMark:    "pushmark",
	KindList:        "list",
	KindSAssign:     "sassign",
	KindAAssign:     "aassign",
	KindAdd:         "add",
	KindSubtract:    "subtract",
	KindMultiply:    "multiply",
	KindDivide:      "divide",
	KindModulo:      "modulo",
	KindPow:         "pow",
	KindAtan2:       "atan2",
	KindNegate:      "negate",
	KindInt:         "int",
	KindAbs:         "abs",
	KindSqrt:        "sqrt",
	KindSin:         "sin",
	KindCos:         "cos",
	KindExp:         "exp",
	KindLog:         "log",
	KindRand:        "rand",
	KindSrand:       "srand",
	KindPreInc:      "preinc",
	KindPreDec:      "predec",
	KindPostInc:     "postinc",
	KindPostDec:     "postdec",
	KindLeftShift:   "left_shift",
	KindRightShift:  "right_shift",
	KindBitAnd:      "bit_and",
	KindBitOr:       "bit_or",
	KindBitXor:      "bit_xor",
	KindComplement:  "complement",
	KindEq:          "eq",
	KindNe:          "ne",
	KindLt:          "lt",
	KindLe:          "le",
	KindGt:          "gt",
	KindGe:          "ge",
	KindNot:         "not",
	KindAnd:         "and",
	KindOr:          "or",
	KindDOr:         "dor",
	KindAndAssign:   "andassign",
	KindOrAssign:    "orassign",
	KindDOrAssign:   "dorassign",
	KindCondExpr:    "cond_expr",
	KindConcat:      "concat",
	KindAElem:       "aelem",
	KindHElem:       "helem",
	KindSRefGen:     "srefgen",
	KindRV2SV:       "rv2sv",
	KindEnterSub:    "entersub",
	KindMethodNamed: "method_named",
	KindPrint:       "print",
	KindNextState:   "nextstate",
	KindLineSeq:     "lineseq",
	KindEnter:       "enter",
	KindLeave:       "leave",
	KindScope:       "scope",
	KindLeaveSub:    "leavesub",
	KindReturn:      "return",
	KindEnterLoop:   "enterloop",
	KindLeaveLoop:   "leaveloop",
	KindNext:        "next",
	KindLast:        "last",
	KindRedo:        "redo",
	KindGoto:        "goto",
	KindDie:         "die",
}

// compile-time check that every Kind has a name
var _ = kindNames[numKinds-1]

var kindsByName = func() map[string]Kind {
	m := make(map[string]Kind, len(kindNames))
	for k, name := range kindNames {
		m[name] = Kind(k)
	}
	return m
}()

func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// KindByName resolves a host op name such as "padsv" or "cond_expr".
func KindByName(name string) (Kind, bool) {
	k, ok := kindsByName[name]
	return k, ok
}

// Kinds returns every kind in declaration order.
func Kinds() []Kind {
	kinds := make([]Kind, numKinds)
	for i := range kinds {
		kinds[i] = Kind(i)
	}
	return kinds
}

// Flags mirrors the generic op flags of the host.
type Flags uint8

const (
	// The two low bits carry the evaluation context.
	WantVoid   Flags = 1
	WantScalar Flags = 2
	WantList   Flags = 3
	WantMask   Flags = 3

	Special Flags = 1 << 2 // kind-specific meaning; on entersub it marks a method call made by the compiler
	Stacked Flags = 1 << 3
)

// Want is the evaluation context encoded in the flags.
type Want uint8

const (
	WantUnknown Want = iota
	ContextVoid
	ContextScalar
	ContextList
)

func (w Want) String() string {
	switch w {
	case ContextVoid:
		return "void"
	case ContextScalar:
		return "scalar"
	case ContextList:
		return "list"
	}
	return "unknown"
}

// Want extracts the evaluation context.
func (f Flags) Want() Want {
	return Want(f & WantMask)
}

// Private holds kind-specific private flags.
type Private uint8

const (
	LvalIntro Private = 1 << 0 // pad op is the declaring occurrence ("my $x")
)

// Slot is a lexical pad offset.
type Slot uint32
