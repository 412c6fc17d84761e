// Package value holds the tagged union every parsed document is converted
// into. The zero Value is Absent: the result of a path that matched nothing.
package value

import (
	"math"
	"strconv"
)

type Kind uint8

const (
	KindAbsent Kind = iota
	KindNull
	KindBool
	KindNumber
	KindString
	KindList
	KindMap
)

func (k Kind) String() string {
	switch k {
	case KindAbsent:
		return "absent"
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindList:
		return "list"
	case KindMap:
		return "map"
	default:
		return "unknown"
	}
}

type Value struct {
	kind    Kind
	boolean bool
	number  Number
	text    string
	list    []Value
	object  *Map
}

// Absent is the explicit spelling of the zero Value.
var Absent = Value{}

func Null() Value {
	return Value{kind: KindNull}
}

func Bool(b bool) Value {
	return Value{kind: KindBool, boolean: b}
}

func Int(i int64) Value {
	return Value{kind: KindNumber, number: Number{integer: i}}
}

func Float(f float64) Value {
	return Value{kind: KindNumber, number: Number{float: f, isFloat: true}}
}

func String(s string) Value {
	return Value{kind: KindString, text: s}
}

func List(items ...Value) Value {
	copied := make([]Value, len(items))
	copy(copied, items)
	return Value{kind: KindList, list: copied}
}

// FromMap wraps m; a nil map becomes an empty one.
func FromMap(m *Map) Value {
	if m == nil {
		m = NewMap()
	}
	return Value{kind: KindMap, object: m}
}

func (v Value) Kind() Kind {
	return v.kind
}

func (v Value) IsAbsent() bool {
	return v.kind == KindAbsent
}

func (v Value) IsNull() bool {
	return v.kind == KindNull
}

func (v Value) AsBool() (bool, bool) {
	return v.boolean, v.kind == KindBool
}

func (v Value) AsNumber() (Number, bool) {
	return v.number, v.kind == KindNumber
}

func (v Value) AsString() (string, bool) {
	return v.text, v.kind == KindString
}

// AsList exposes the backing slice; callers must not modify it.
func (v Value) AsList() ([]Value, bool) {
	return v.list, v.kind == KindList
}

func (v Value) AsMap() (*Map, bool) {
	if v.kind != KindMap {
		return nil, false
	}
	return v.object, true
}

// Get looks up key when v is a Map.
func (v Value) Get(key string) (Value, bool) {
	object, ok := v.AsMap()
	if !ok {
		return Absent, false
	}
	return object.Get(key)
}

// Index looks up position idx when v is a List.
func (v Value) Index(idx int) (Value, bool) {
	items, ok := v.AsList()
	if !ok || idx < 0 || idx >= len(items) {
		return Absent, false
	}
	return items[idx], true
}

// Number keeps integers and floats apart so integer text round-trips exactly.
type Number struct {
	integer int64
	float   float64
	isFloat bool
}

func (n Number) IsInt() bool {
	return !n.isFloat
}

func (n Number) Int64() (int64, bool) {
	if !n.isFloat {
		return n.integer, true
	}
	if n.float == math.Trunc(n.float) && n.float >= math.MinInt64 && n.float < math.MaxInt64 {
		return int64(n.float), true
	}
	return 0, false
}

func (n Number) Float64() float64 {
	if n.isFloat {
		return n.float
	}
	return float64(n.integer)
}

func (n Number) String() string {
	if !n.isFloat {
		return strconv.FormatInt(n.integer, 10)
	}
	switch {
	case math.IsInf(n.float, 1):
		return ".inf"
	case math.IsInf(n.float, -1):
		return "-.inf"
	case math.IsNaN(n.float):
		return ".nan"
	}
	return strconv.FormatFloat(n.float, 'g', -1, 64)
}

// equal compares numerically: 3 and 3.0 are the same number.
func (n Number) equal(other Number) bool {
	if !n.isFloat && !other.isFloat {
		return n.integer == other.integer
	}
	if n.isFloat && other.isFloat {
		return n.float == other.float
	}
	if n.isFloat {
		asInt, ok := n.Int64()
		return ok && asInt == other.integer
	}
	asInt, ok := other.Int64()
	return ok && asInt == n.integer
}
