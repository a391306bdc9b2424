package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
)

// JSONKind identifies which variant a JSONValue holds.
type JSONKind uint8

const (
	JSONNull JSONKind = iota
	JSONBool
	JSONNumber
	JSONString
	JSONArray
	JSONObject
)

func (k JSONKind) String() string {
	switch k {
	case JSONNull:
		return "null"
	case JSONBool:
		return "bool"
	case JSONNumber:
		return "number"
	case JSONString:
		return "string"
	case JSONArray:
		return "array"
	case JSONObject:
		return "object"
	default:
		return fmt.Sprintf("JSONKind(%d)", uint8(k))
	}
}

// JSONValue is a learner-supplied answer payload. The zero value is JSON null.
type JSONValue struct {
	kind JSONKind
	b    bool
	n    float64
	s    string
	arr  []JSONValue
	obj  map[string]JSONValue
}

func NullValue() JSONValue { return JSONValue{} }

func BoolValue(b bool) JSONValue { return JSONValue{kind: JSONBool, b: b} }

func NumberValue(n float64) JSONValue { return JSONValue{kind: JSONNumber, n: n} }

func StringValue(s string) JSONValue { return JSONValue{kind: JSONString, s: s} }

func ArrayValue(items ...JSONValue) JSONValue {
	if items == nil {
		items = []JSONValue{}
	}
	return JSONValue{kind: JSONArray, arr: items}
}

func ObjectValue(fields map[string]JSONValue) JSONValue {
	if fields == nil {
		fields = map[string]JSONValue{}
	}
	return JSONValue{kind: JSONObject, obj: fields}
}

// StringsValue builds an array of strings.
func StringsValue(items ...string) JSONValue {
	arr := make([]JSONValue, len(items))
	for i, s := range items {
		arr[i] = StringValue(s)
	}
	return ArrayValue(arr...)
}

// StringMapValue builds an object whose members are all strings.
func StringMapValue(fields map[string]string) JSONValue {
	obj := make(map[string]JSONValue, len(fields))
	for k, v := range fields {
		obj[k] = StringValue(v)
	}
	return ObjectValue(obj)
}

func (v JSONValue) Kind() JSONKind { return v.kind }

func (v JSONValue) IsNull() bool { return v.kind == JSONNull }

func (v JSONValue) AsBool() (bool, bool) {
	return v.b, v.kind == JSONBool
}

func (v JSONValue) AsNumber() (float64, bool) {
	return v.n, v.kind == JSONNumber
}

func (v JSONValue) AsString() (string, bool) {
	return v.s, v.kind == JSONString
}

func (v JSONValue) AsArray() ([]JSONValue, bool) {
	return v.arr, v.kind == JSONArray
}

func (v JSONValue) AsObject() (map[string]JSONValue, bool) {
	return v.obj, v.kind == JSONObject
}

// AsStrings returns the elements of an array whose members are all strings.
func (v JSONValue) AsStrings() ([]string, bool) {
	if v.kind != JSONArray {
		return nil, false
	}
	out := make([]string, 0, len(v.arr))
	for _, item := range v.arr {
		s, ok := item.AsString()
		if !ok {
			return nil, false
		}
		out = append(out, s)
	}
	return out, true
}

// AsStringMap returns the string members of an object, skipping members of any other kind.
func (v JSONValue) AsStringMap() (map[string]string, bool) {
	if v.kind != JSONObject {
		return nil, false
	}
	out := make(map[string]string, len(v.obj))
	for k, item := range v.obj {
		if s, ok := item.AsString(); ok {
			out[k] = s
		}
	}
	return out, true
}

// Equal reports deep equality.
func (v JSONValue) Equal(other JSONValue) bool {
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case JSONNull:
		return true
	case JSONBool:
		return v.b == other.b
	case JSONNumber:
		return v.n == other.n
	case JSONString:
		return v.s == other.s
	case JSONArray:
		if len(v.arr) != len(other.arr) {
			return false
		}
		for i := range v.arr {
			if !v.arr[i].Equal(other.arr[i]) {
				return false
			}
		}
		return true
	case JSONObject:
		if len(v.obj) != len(other.obj) {
			return false
		}
		for k, item := range v.obj {
			o, ok := other.obj[k]
			if !ok || !item.Equal(o) {
				return false
			}
		}
		return true
	}
	return false
}

func (v JSONValue) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case JSONNull:
		return []byte("null"), nil
	case JSONBool:
		return json.Marshal(v.b)
	case JSONNumber:
		return json.Marshal(v.n)
	case JSONString:
		return json.Marshal(v.s)
	case JSONArray:
		var buf bytes.Buffer
		buf.WriteByte('[')
		for i, item := range v.arr {
			if i > 0 {
				buf.WriteByte(',')
			}
			b, err := item.MarshalJSON()
			if err != nil {
				return nil, err
			}
			buf.Write(b)
		}
		buf.WriteByte(']')
		return buf.Bytes(), nil
	case JSONObject:
		keys := make([]string, 0, len(v.obj))
		for k := range v.obj {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		var buf bytes.Buffer
		buf.WriteByte('{')
		for i, k := range keys {
			if i > 0 {
				buf.WriteByte(',')
			}
			kb, err := json.Marshal(k)
			if err != nil {
				return nil, err
			}
			buf.Write(kb)
			buf.WriteByte(':')
			b, err := v.obj[k].MarshalJSON()
			if err != nil {
				return nil, err
			}
			buf.Write(b)
		}
		buf.WriteByte('}')
		return buf.Bytes(), nil
	}
	return nil, fmt.Errorf("unknown json kind %s", v.kind)
}

func (v *JSONValue) UnmarshalJSON(data []byte) error {
	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*v = fromInterface(raw)
	return nil
}

func fromInterface(raw interface{}) JSONValue {
	switch t := raw.(type) {
	case nil:
		return NullValue()
	case bool:
		return BoolValue(t)
	case float64:
		return NumberValue(t)
	case string:
		return StringValue(t)
	case []interface{}:
		arr := make([]JSONValue, len(t))
		for i, item := range t {
			arr[i] = fromInterface(item)
		}
		return ArrayValue(arr...)
	case map[string]interface{}:
		obj := make(map[string]JSONValue, len(t))
		for k, item := range t {
			obj[k] = fromInterface(item)
		}
		return ObjectValue(obj)
	default:
		return NullValue()
	}
}
