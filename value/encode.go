package value

import (
	"bytes"
	"math"
	"strings"

	gojson "github.com/goccy/go-json"
	"go.yaml.in/yaml/v3"

	"github.com/crmarques/snapdiff/faults"
)

// MarshalJSON writes maps in insertion order. Absent and Null both encode as null.
func (v Value) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := writeJSON(&buf, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeJSON(buf *bytes.Buffer, v Value) error {
	switch v.kind {
	case KindAbsent, KindNull:
		buf.WriteString("null")
	case KindBool:
		if v.boolean {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}
	case KindNumber:
		if v.number.isFloat && (math.IsNaN(v.number.float) || math.IsInf(v.number.float, 0)) {
			return faults.NewTypedError(faults.ValidationError, "non-finite number cannot be encoded as json", nil)
		}
		buf.WriteString(v.number.String())
	case KindString:
		encoded, err := gojson.Marshal(v.text)
		if err != nil {
			return err
		}
		buf.Write(encoded)
	case KindList:
		buf.WriteByte('[')
		for idx, item := range v.list {
			if idx > 0 {
				buf.WriteByte(',')
			}
			if err := writeJSON(buf, item); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case KindMap:
		buf.WriteByte('{')
		first := true
		for key, item := range v.object.All() {
			if !first {
				buf.WriteByte(',')
			}
			first = false
			encodedKey, err := gojson.Marshal(key)
			if err != nil {
				return err
			}
			buf.Write(encodedKey)
			buf.WriteByte(':')
			if err := writeJSON(buf, item); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	}
	return nil
}

// MarshalYAML returns a node tree so maps keep their insertion order.
func (v Value) MarshalYAML() (any, error) {
	return ToNode(v), nil
}

func ToNode(v Value) *yaml.Node {
	switch v.kind {
	case KindBool:
		text := "false"
		if v.boolean {
			text = "true"
		}
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: text}
	case KindNumber:
		tag := "!!int"
		if v.number.isFloat {
			tag = "!!float"
		}
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: v.number.String()}
	case KindString:
		node := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: v.text}
		if strings.Contains(v.text, "\n") {
			node.Style = yaml.LiteralStyle
		}
		return node
	case KindList:
		node := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, item := range v.list {
			node.Content = append(node.Content, ToNode(item))
		}
		return node
	case KindMap:
		node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		for key, item := range v.object.All() {
			node.Content = append(node.Content,
				&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key},
				ToNode(item),
			)
		}
		return node
	default:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}
	}
}

// Text renders scalars as plain text, the way they would appear in a
// key=value file. Null and Absent render empty; containers render as JSON.
func Text(v Value) string {
	switch v.kind {
	case KindAbsent, KindNull:
		return ""
	case KindBool:
		if v.boolean {
			return "true"
		}
		return "false"
	case KindNumber:
		return v.number.String()
	case KindString:
		return v.text
	default:
		encoded, err := v.MarshalJSON()
		if err != nil {
			return ""
		}
		return string(encoded)
	}
}

// String is the display form used in logs and text output.
func (v Value) String() string {
	switch v.kind {
	case KindAbsent:
		return "<absent>"
	case KindNull:
		return "null"
	default:
		return Text(v)
	}
}
