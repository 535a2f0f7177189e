package code

import (
	"fmt"
	"math"
	"math/big"
	"sort"
	"strconv"
	"strings"
)

// Constant is a value stored in a code object's constant pool. The
// concrete types mirror the value kinds CPython marshals into co_consts.
type Constant interface {
	// Key writes a canonical identity string for the value. Values with
	// equal keys are interchangeable in a constant pool; values that
	// Python distinguishes by type or sign (0 vs False, 0.0 vs -0.0)
	// produce different keys. All NaN payloads share one key.
	Key(b *strings.Builder)
}

// ConstKey returns the canonical identity string for c.
func ConstKey(c Constant) string {
	var b strings.Builder
	c.Key(&b)
	return b.String()
}

// None is Python's None singleton.
type None struct{}

func (None) Key(b *strings.Builder) { b.WriteString("N") }

func (None) String() string { return "None" }

// Ellipsis is Python's Ellipsis singleton.
type Ellipsis struct{}

func (Ellipsis) Key(b *strings.Builder) { b.WriteString("E") }

func (Ellipsis) String() string { return "Ellipsis" }

// Bool is a Python bool constant.
type Bool bool

func (v Bool) Key(b *strings.Builder) {
	if v {
		b.WriteString("bT")
	} else {
		b.WriteString("bF")
	}
}

func (v Bool) String() string {
	if v {
		return "True"
	}
	return "False"
}

// Int is an arbitrary-precision Python int constant.
type Int struct {
	Value *big.Int
}

// NewInt returns an Int holding v.
func NewInt(v int64) Int {
	return Int{Value: big.NewInt(v)}
}

func (v Int) Key(b *strings.Builder) {
	b.WriteString("i")
	b.WriteString(v.Value.String())
}

func (v Int) String() string { return v.Value.String() }

// Float is a Python float constant. Negative zero and every NaN payload
// are preserved through encoding but NaNs compare equal by key.
type Float float64

func (v Float) Key(b *strings.Builder) {
	b.WriteString("f")
	keyFloat(b, float64(v))
}

func (v Float) String() string { return formatFloat(float64(v)) }

// Complex is a Python complex constant.
type Complex complex128

func (v Complex) Key(b *strings.Builder) {
	b.WriteString("c")
	keyFloat(b, real(complex128(v)))
	b.WriteString(",")
	keyFloat(b, imag(complex128(v)))
}

func (v Complex) String() string {
	return fmt.Sprintf("(%s+%sj)", formatFloat(real(complex128(v))), formatFloat(imag(complex128(v))))
}

// Str is a Python str constant.
type Str string

func (v Str) Key(b *strings.Builder) {
	b.WriteString("s")
	b.WriteString(strconv.Quote(string(v)))
}

func (v Str) String() string { return strconv.Quote(string(v)) }

// Bytes is a Python bytes constant.
type Bytes []byte

func (v Bytes) Key(b *strings.Builder) {
	b.WriteString("y")
	b.WriteString(strconv.Quote(string(v)))
}

func (v Bytes) String() string { return "b" + strconv.Quote(string(v)) }

// Tuple is a Python tuple constant. Elements are ordered.
type Tuple []Constant

func (v Tuple) Key(b *strings.Builder) {
	b.WriteString("t(")
	for i, e := range v {
		if i > 0 {
			b.WriteString(",")
		}
		e.Key(b)
	}
	b.WriteString(")")
}

func (v Tuple) String() string { return constsString([]Constant(v), "(", ")") }

// FrozenSet is a Python frozenset constant. Element order is not part of
// the value's identity.
type FrozenSet []Constant

func (v FrozenSet) Key(b *strings.Builder) {
	keys := make([]string, len(v))
	for i, e := range v {
		keys[i] = ConstKey(e)
	}
	sort.Strings(keys)
	b.WriteString("z{")
	for i, k := range keys {
		if i > 0 {
			b.WriteString(",")
		}
		b.WriteString(k)
	}
	b.WriteString("}")
}

func (v FrozenSet) String() string { return constsString([]Constant(v), "frozenset({", "})") }

// CodeConst is a nested code object stored as a constant, as produced
// for function bodies, comprehensions and class bodies.
type CodeConst struct {
	Code *Code
}

func (v CodeConst) Key(b *strings.Builder) {
	b.WriteString("C<")
	v.Code.key(b)
	b.WriteString(">")
}

func (v CodeConst) String() string {
	return fmt.Sprintf("<code %s at %s:%d>", v.Code.Name, v.Code.Filename, v.Code.FirstLine)
}

func constsString(cs []Constant, open, close string) string {
	var b strings.Builder
	b.WriteString(open)
	for i, c := range cs {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%v", c)
	}
	b.WriteString(close)
	return b.String()
}

func keyFloat(b *strings.Builder, f float64) {
	switch {
	case math.IsNaN(f):
		b.WriteString("nan")
	case f == 0 && math.Signbit(f):
		b.WriteString("-0.0")
	default:
		b.WriteString(strconv.FormatFloat(f, 'g', -1, 64))
	}
}

func formatFloat(f float64) string {
	switch {
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	case math.IsNaN(f):
		return "nan"
	}
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}
