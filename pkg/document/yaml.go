// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package document

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Reference and expression tag spellings recognized during decoding.
// The short forms are legacy aliases kept for backwards compatibility.
var (
	getTags  = []string{"!get", "!cc"}
	evalTags = []string{"!eval", "!ee"}
)

// ErrUnsupportedTag is returned when a document carries a local tag that is
// neither a reference nor an expression marker.
var ErrUnsupportedTag = errors.New("unsupported document tag")

// ErrNotMapping is returned when a decoded document root is not a mapping.
var ErrNotMapping = errors.New("document root is not a mapping")

// encodeIndent keeps parameter files in their four-space layout.
const encodeIndent = 4

// Decode parses a YAML document into a value tree.
//
// The two paramsweep markers decode to GetTag and EvalTag values; they are
// not resolved here. Standard YAML scalars map onto Int, Float, String,
// Bool, and Null.
func Decode(data []byte) (Value, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}
	if root.Kind == 0 || len(root.Content) == 0 {
		return NewMapping(), nil
	}
	return FromNode(root.Content[0])
}

// DecodeMapping parses a YAML document whose root must be a mapping.
func DecodeMapping(data []byte) (*Mapping, error) {
	v, err := Decode(data)
	if err != nil {
		return nil, err
	}
	m, ok := v.(*Mapping)
	if !ok {
		return nil, fmt.Errorf("got %s: %w", v.Kind(), ErrNotMapping)
	}
	return m, nil
}

// FromNode converts one parsed YAML node into a Value.
//
// Exposed so other packages (e.g. sweep plans) can embed document values
// inside their own YAML structures.
func FromNode(n *yaml.Node) (Value, error) {
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return Null{}, nil
		}
		return FromNode(n.Content[0])
	case yaml.AliasNode:
		return FromNode(n.Alias)
	case yaml.MappingNode:
		m := NewMapping()
		for i := 0; i+1 < len(n.Content); i += 2 {
			key := n.Content[i].Value
			v, err := FromNode(n.Content[i+1])
			if err != nil {
				return nil, err
			}
			m.Set(key, v)
		}
		return m, nil
	case yaml.SequenceNode:
		s := NewSequence()
		for _, c := range n.Content {
			v, err := FromNode(c)
			if err != nil {
				return nil, err
			}
			s.Append(v)
		}
		return s, nil
	case yaml.ScalarNode:
		return scalarFromNode(n)
	default:
		return nil, fmt.Errorf("line %d: unexpected node kind %d", n.Line, n.Kind)
	}
}

func scalarFromNode(n *yaml.Node) (Value, error) {
	for _, t := range getTags {
		if n.Tag == t {
			return GetTag{Name: n.Value}, nil
		}
	}
	for _, t := range evalTags {
		if n.Tag == t {
			return EvalTag{Expr: n.Value}, nil
		}
	}
	switch n.Tag {
	case "!!int":
		i, err := strconv.ParseInt(n.Value, 0, 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: parse int %q: %w", n.Line, n.Value, err)
		}
		return Int(i), nil
	case "!!float":
		f, err := strconv.ParseFloat(n.Value, 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: parse float %q: %w", n.Line, n.Value, err)
		}
		return Float(f), nil
	case "!!bool":
		b, err := strconv.ParseBool(n.Value)
		if err != nil {
			return nil, fmt.Errorf("line %d: parse bool %q: %w", n.Line, n.Value, err)
		}
		return Bool(b), nil
	case "!!null":
		return Null{}, nil
	case "!!str", "":
		return String(n.Value), nil
	default:
		return nil, fmt.Errorf("line %d: tag %q: %w", n.Line, n.Tag, ErrUnsupportedTag)
	}
}

// Encode serializes a value tree as YAML in block style.
//
// Unresolved GetTag/EvalTag markers round-trip to their canonical long
// spellings (!get, !eval), so a verbatim-loaded document can be written
// back without losing its tags.
func Encode(v Value) ([]byte, error) {
	node, err := toNode(v)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(encodeIndent)
	if err := enc.Encode(node); err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	return buf.Bytes(), nil
}

func toNode(v Value) (*yaml.Node, error) {
	switch val := v.(type) {
	case *Mapping:
		n := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		for _, k := range val.Keys() {
			child, _ := val.Get(k)
			cn, err := toNode(child)
			if err != nil {
				return nil, err
			}
			n.Content = append(n.Content,
				&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: k}, cn)
		}
		return n, nil
	case *Sequence:
		n := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for i := 0; i < val.Len(); i++ {
			cn, err := toNode(val.At(i))
			if err != nil {
				return nil, err
			}
			n.Content = append(n.Content, cn)
		}
		return n, nil
	case Int:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int",
			Value: strconv.FormatInt(int64(val), 10)}, nil
	case Float:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!float",
			Value: formatFloat(float64(val))}, nil
	case String:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: string(val)}, nil
	case Bool:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool",
			Value: strconv.FormatBool(bool(val))}, nil
	case Null:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}, nil
	case GetTag:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!get", Value: val.Name}, nil
	case EvalTag:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!eval", Value: val.Expr}, nil
	default:
		return nil, fmt.Errorf("cannot encode value of type %T", v)
	}
}

// formatFloat keeps whole floats recognizable as floats on re-parse.
func formatFloat(f float64) string {
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !bytes.ContainsAny([]byte(s), ".eEnI") {
		s += ".0"
	}
	return s
}
