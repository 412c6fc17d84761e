package value

import (
	"encoding/json"
	"fmt"
	"math"
	"math/big"
	"reflect"
	"sort"

	"github.com/crmarques/snapdiff/faults"
)

// FromAny converts plain Go data (maps, slices, scalars, json.Number) into a
// Value. Go maps carry no order, so their keys are inserted sorted.
func FromAny(input any) (Value, error) {
	switch typed := input.(type) {
	case nil:
		return Null(), nil
	case Value:
		return typed, nil
	case *Map:
		return FromMap(typed), nil
	case bool:
		return Bool(typed), nil
	case string:
		return String(typed), nil
	case float32:
		return fromFloat(float64(typed))
	case float64:
		return fromFloat(typed)
	case int:
		return Int(int64(typed)), nil
	case int8:
		return Int(int64(typed)), nil
	case int16:
		return Int(int64(typed)), nil
	case int32:
		return Int(int64(typed)), nil
	case int64:
		return Int(typed), nil
	case uint:
		return fromUint(uint64(typed))
	case uint8:
		return fromUint(uint64(typed))
	case uint16:
		return fromUint(uint64(typed))
	case uint32:
		return fromUint(uint64(typed))
	case uint64:
		return fromUint(typed)
	case *big.Int:
		if typed.IsInt64() {
			return Int(typed.Int64()), nil
		}
		return Absent, faults.NewTypedError(faults.ValidationError, "integer out of range", nil)
	case json.Number:
		return fromJSONNumber(typed)
	case []any:
		return fromSlice(typed)
	case map[string]any:
		return fromStringMap(typed)
	}

	return fromReflectValue(input)
}

// MustFromAny panics on conversion failure; intended for literals in tests.
func MustFromAny(input any) Value {
	converted, err := FromAny(input)
	if err != nil {
		panic(err)
	}
	return converted
}

// ToAny converts v back into plain Go data. Integers become int, maps become
// map[string]any. Absent converts to nil.
func ToAny(v Value) any {
	switch v.kind {
	case KindBool:
		return v.boolean
	case KindNumber:
		if v.number.IsInt() && v.number.integer >= math.MinInt && v.number.integer <= math.MaxInt {
			return int(v.number.integer)
		}
		return v.number.Float64()
	case KindString:
		return v.text
	case KindList:
		items := make([]any, len(v.list))
		for idx, item := range v.list {
			items[idx] = ToAny(item)
		}
		return items
	case KindMap:
		object := make(map[string]any, v.object.Len())
		for key, item := range v.object.All() {
			object[key] = ToAny(item)
		}
		return object
	default:
		return nil
	}
}

func fromFloat(f float64) (Value, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Absent, faults.NewTypedError(faults.ValidationError, "value contains non-finite float", nil)
	}
	return Float(f), nil
}

func fromUint(u uint64) (Value, error) {
	if u > math.MaxInt64 {
		return Absent, faults.NewTypedError(faults.ValidationError, "integer out of range", nil)
	}
	return Int(int64(u)), nil
}

func fromJSONNumber(n json.Number) (Value, error) {
	if asInt, err := n.Int64(); err == nil {
		return Int(asInt), nil
	}
	if _, ok := new(big.Int).SetString(n.String(), 10); ok {
		return Absent, faults.NewTypedError(faults.ValidationError, "integer out of range", nil)
	}

	asFloat, err := n.Float64()
	if err != nil {
		return Absent, faults.NewTypedError(faults.ValidationError, "invalid number", err)
	}
	return fromFloat(asFloat)
}

func fromSlice(items []any) (Value, error) {
	converted := make([]Value, len(items))
	for idx, item := range items {
		itemValue, err := FromAny(item)
		if err != nil {
			return Absent, err
		}
		converted[idx] = itemValue
	}
	return Value{kind: KindList, list: converted}, nil
}

func fromStringMap(items map[string]any) (Value, error) {
	keys := make([]string, 0, len(items))
	for key := range items {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	object := NewMap()
	for _, key := range keys {
		itemValue, err := FromAny(items[key])
		if err != nil {
			return Absent, err
		}
		object.Set(key, itemValue)
	}
	return FromMap(object), nil
}

func fromReflectValue(input any) (Value, error) {
	reflected := reflect.ValueOf(input)
	switch reflected.Kind() {
	case reflect.Map:
		if reflected.Type().Key().Kind() != reflect.String {
			return Absent, faults.NewTypedError(faults.ValidationError, "map keys must be strings", nil)
		}

		keys := reflected.MapKeys()
		sort.Slice(keys, func(i int, j int) bool {
			return keys[i].String() < keys[j].String()
		})

		object := NewMap()
		for _, key := range keys {
			itemValue, err := FromAny(reflected.MapIndex(key).Interface())
			if err != nil {
				return Absent, err
			}
			object.Set(key.String(), itemValue)
		}
		return FromMap(object), nil
	case reflect.Slice, reflect.Array:
		converted := make([]Value, reflected.Len())
		for idx := range reflected.Len() {
			itemValue, err := FromAny(reflected.Index(idx).Interface())
			if err != nil {
				return Absent, err
			}
			converted[idx] = itemValue
		}
		return Value{kind: KindList, list: converted}, nil
	case reflect.Pointer:
		if reflected.IsNil() {
			return Null(), nil
		}
		return FromAny(reflected.Elem().Interface())
	default:
		return Absent, faults.NewTypedError(
			faults.ValidationError,
			fmt.Sprintf("unsupported value type %T", input),
			nil,
		)
	}
}
