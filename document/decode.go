// Package document converts YAML text into value.Value trees. Both the tree
// loader and the embedded-content decoder parse through here.
package document

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"

	"go.yaml.in/yaml/v3"

	"github.com/crmarques/snapdiff/value"
)

const (
	maxNestingDepth = 10000
	maxAliasNodes   = 1 << 20
)

// Document is one entry of a multi-document stream. Index counts every
// document in the stream, including empty ones.
type Document struct {
	Index int
	Line  int
	Value value.Value
}

// DecodeAll parses every document in data. An error anywhere in the stream
// fails the whole call. Empty documents decode to Null.
func DecodeAll(data []byte) ([]Document, error) {
	decoder := yaml.NewDecoder(bytes.NewReader(data))

	var documents []Document
	for idx := 0; ; idx++ {
		var root yaml.Node
		if err := decoder.Decode(&root); err != nil {
			if errors.Is(err, io.EOF) {
				return documents, nil
			}
			return nil, err
		}

		converted, err := FromNode(&root)
		if err != nil {
			return nil, err
		}
		documents = append(documents, Document{Index: idx, Line: root.Line, Value: converted})
	}
}

// DecodeFirst parses the first document of data. An empty stream decodes to Null.
func DecodeFirst(data []byte) (value.Value, error) {
	decoder := yaml.NewDecoder(bytes.NewReader(data))

	var root yaml.Node
	if err := decoder.Decode(&root); err != nil {
		if errors.Is(err, io.EOF) {
			return value.Null(), nil
		}
		return value.Absent, err
	}
	return FromNode(&root)
}

func FromNode(node *yaml.Node) (value.Value, error) {
	c := &converter{}
	return c.convert(node)
}

type converter struct {
	depth      int
	aliasDepth int
	aliasNodes int
}

func (c *converter) convert(node *yaml.Node) (value.Value, error) {
	if node == nil {
		return value.Null(), nil
	}

	c.depth++
	defer func() { c.depth-- }()
	if c.depth > maxNestingDepth {
		return value.Absent, fmt.Errorf("document nesting exceeds %d levels", maxNestingDepth)
	}
	if c.aliasDepth > 0 {
		c.aliasNodes++
		if c.aliasNodes > maxAliasNodes {
			return value.Absent, errors.New("document expands too many aliased nodes")
		}
	}

	switch node.Kind {
	case yaml.DocumentNode:
		if len(node.Content) == 0 {
			return value.Null(), nil
		}
		return c.convert(node.Content[0])
	case yaml.AliasNode:
		c.aliasDepth++
		defer func() { c.aliasDepth-- }()
		return c.convert(node.Alias)
	case yaml.MappingNode:
		return c.mapping(node)
	case yaml.SequenceNode:
		items := make([]value.Value, 0, len(node.Content))
		for _, child := range node.Content {
			item, err := c.convert(child)
			if err != nil {
				return value.Absent, err
			}
			items = append(items, item)
		}
		return value.List(items...), nil
	case yaml.ScalarNode:
		return scalar(node), nil
	default:
		return value.Null(), nil
	}
}

// mapping keeps the position of a key's first occurrence and the value of its
// last. Keys set explicitly win over keys pulled in through "<<" merges.
func (c *converter) mapping(node *yaml.Node) (value.Value, error) {
	explicit := make(map[string]struct{}, len(node.Content)/2)
	for idx := 0; idx+1 < len(node.Content); idx += 2 {
		if isMergeKey(node.Content[idx]) {
			continue
		}
		key, err := c.keyText(node.Content[idx])
		if err != nil {
			return value.Absent, err
		}
		explicit[key] = struct{}{}
	}

	object := value.NewMap()
	for idx := 0; idx+1 < len(node.Content); idx += 2 {
		keyNode := node.Content[idx]
		valueNode := node.Content[idx+1]

		if isMergeKey(keyNode) {
			if err := c.merge(object, explicit, valueNode); err != nil {
				return value.Absent, err
			}
			continue
		}

		key, err := c.keyText(keyNode)
		if err != nil {
			return value.Absent, err
		}
		item, err := c.convert(valueNode)
		if err != nil {
			return value.Absent, err
		}
		object.Set(key, item)
	}
	return value.FromMap(object), nil
}

func (c *converter) merge(object *value.Map, explicit map[string]struct{}, source *yaml.Node) error {
	resolved := source
	for resolved != nil && resolved.Kind == yaml.AliasNode {
		resolved = resolved.Alias
	}
	if resolved == nil {
		return nil
	}

	var sources []*yaml.Node
	switch resolved.Kind {
	case yaml.MappingNode:
		sources = []*yaml.Node{source}
	case yaml.SequenceNode:
		sources = resolved.Content
	default:
		return fmt.Errorf("line %d: merge value must be a mapping or a list of mappings", source.Line)
	}

	for _, candidate := range sources {
		merged, err := c.convert(candidate)
		if err != nil {
			return err
		}
		mergedMap, ok := merged.AsMap()
		if !ok {
			return fmt.Errorf("line %d: merge value must be a mapping", candidate.Line)
		}
		for key, item := range mergedMap.All() {
			if _, found := explicit[key]; found {
				continue
			}
			if object.Has(key) {
				continue
			}
			object.Set(key, item)
		}
	}
	return nil
}

func (c *converter) keyText(node *yaml.Node) (string, error) {
	if node.Kind == yaml.ScalarNode {
		return node.Value, nil
	}
	converted, err := c.convert(node)
	if err != nil {
		return "", err
	}
	return value.Text(converted), nil
}

func isMergeKey(node *yaml.Node) bool {
	return node.Kind == yaml.ScalarNode && node.Value == "<<" && node.ShortTag() == "!!merge"
}

func scalar(node *yaml.Node) value.Value {
	switch node.ShortTag() {
	case "!!null":
		return value.Null()
	case "!!bool":
		var b bool
		if err := node.Decode(&b); err == nil {
			return value.Bool(b)
		}
	case "!!int":
		var i int64
		if err := node.Decode(&i); err == nil {
			return value.Int(i)
		}
		var f float64
		if err := node.Decode(&f); err == nil && !math.IsInf(f, 0) {
			return value.Float(f)
		}
	case "!!float":
		var f float64
		if err := node.Decode(&f); err == nil {
			return value.Float(f)
		}
	}
	return value.String(node.Value)
}
