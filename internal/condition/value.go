package condition

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind is the runtime type of a Value.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindList
)

func (k Kind) String() string {
	switch k {
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindList:
		return "list"
	default:
		return "null"
	}
}

// Value is an evaluated expression result.
type Value struct {
	Kind Kind
	B    bool
	N    float64
	S    string
	L    []string
}

func boolValue(b bool) Value      { return Value{Kind: KindBool, B: b} }
func numberValue(n float64) Value { return Value{Kind: KindNumber, N: n} }
func stringValue(s string) Value  { return Value{Kind: KindString, S: s} }
func listValue(l []string) Value  { return Value{Kind: KindList, L: l} }
func nullValue() Value            { return Value{} }

// Truthy reports the boolean interpretation of v: non-zero numbers,
// non-empty strings and non-empty lists are true; null is false.
func (v Value) Truthy() bool {
	switch v.Kind {
	case KindBool:
		return v.B
	case KindNumber:
		return v.N != 0
	case KindString:
		return v.S != ""
	case KindList:
		return len(v.L) > 0
	default:
		return false
	}
}

func (v Value) String() string {
	switch v.Kind {
	case KindBool:
		return strconv.FormatBool(v.B)
	case KindNumber:
		return strconv.FormatFloat(v.N, 'f', -1, 64)
	case KindString:
		return strconv.Quote(v.S)
	case KindList:
		return "[" + strings.Join(v.L, ", ") + "]"
	default:
		return "null"
	}
}

func (v Value) number() (float64, error) {
	switch v.Kind {
	case KindNumber:
		return v.N, nil
	case KindString:
		n, err := strconv.ParseFloat(strings.TrimSpace(v.S), 64)
		if err != nil {
			return 0, fmt.Errorf("%s is not numeric", v)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("%s value is not numeric", v.Kind)
	}
}

func equalValues(a, b Value) (bool, error) {
	if a.Kind == KindNumber || b.Kind == KindNumber {
		x, err := a.number()
		if err != nil {
			return false, err
		}
		y, err := b.number()
		if err != nil {
			return false, err
		}
		return x == y, nil
	}
	if a.Kind != b.Kind {
		return false, fmt.Errorf("cannot compare %s with %s", a.Kind, b.Kind)
	}
	switch a.Kind {
	case KindBool:
		return a.B == b.B, nil
	case KindString:
		return a.S == b.S, nil
	case KindNull:
		return true, nil
	case KindList:
		if len(a.L) != len(b.L) {
			return false, nil
		}
		for i := range a.L {
			if a.L[i] != b.L[i] {
				return false, nil
			}
		}
		return true, nil
	}
	return false, nil
}

// compareValues returns -1, 0 or 1. Numbers compare numerically, strings
// lexically; anything else is an error.
func compareValues(a, b Value) (int, error) {
	if a.Kind == KindString && b.Kind == KindString {
		return strings.Compare(a.S, b.S), nil
	}
	x, err := a.number()
	if err != nil {
		return 0, err
	}
	y, err := b.number()
	if err != nil {
		return 0, err
	}
	switch {
	case x < y:
		return -1, nil
	case x > y:
		return 1, nil
	default:
		return 0, nil
	}
}
