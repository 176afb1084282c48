package evaluator

import (
	"fmt"
	"math"

	"gopkg.in/yaml.v3"

	"github.com/alexisbouchez/beautygo/object"
)

// yamlPackage decodes through yaml.Node so mapping order is kept.
func yamlPackage() map[string]any {
	return map[string]any{
		"parse": &object.NativeFunction{Name: "parse", Raw: true, Fn: func(args ...any) (any, error) {
			src, ok := rawArg(args, 0).(*object.String)
			if !ok {
				return nil, hostError("yaml.parse", "expected a string")
			}
			var doc yaml.Node
			if err := yaml.Unmarshal([]byte(src.Value), &doc); err != nil {
				return nil, hostError("yaml.parse", "%v", err)
			}
			return yamlToValue(&doc)
		}},
		"stringify": &object.NativeFunction{Name: "stringify", Raw: true, Fn: func(args ...any) (any, error) {
			node, err := valueToYAML(rawArg(args, 0), visiting{})
			if err != nil {
				return nil, hostError("yaml.stringify", "%v", err)
			}
			out, err := yaml.Marshal(node)
			if err != nil {
				return nil, hostError("yaml.stringify", "%v", err)
			}
			return string(out), nil
		}},
	}
}

func yamlToValue(node *yaml.Node) (object.Object, error) {
	switch node.Kind {
	case 0:
		return object.NULL, nil
	case yaml.DocumentNode:
		if len(node.Content) == 0 {
			return object.NULL, nil
		}
		return yamlToValue(node.Content[0])
	case yaml.AliasNode:
		return yamlToValue(node.Alias)
	case yaml.SequenceNode:
		arr := &object.Array{Elements: make([]object.Object, 0, len(node.Content))}
		for _, item := range node.Content {
			el, err := yamlToValue(item)
			if err != nil {
				return nil, err
			}
			arr.Elements = append(arr.Elements, el)
		}
		return arr, nil
	case yaml.MappingNode:
		hash := object.NewHash()
		for i := 0; i+1 < len(node.Content); i += 2 {
			key := node.Content[i].Value
			val, err := yamlToValue(node.Content[i+1])
			if err != nil {
				return nil, err
			}
			hash.Attach(key, assigned(key, val))
		}
		return hash, nil
	case yaml.ScalarNode:
		var v any
		if err := node.Decode(&v); err != nil {
			return nil, err
		}
		return FromNative(v, nil), nil
	}
	return nil, fmt.Errorf("unsupported YAML node kind %d", node.Kind)
}

func valueToYAML(obj object.Object, seen visiting) (*yaml.Node, error) {
	switch o := obj.(type) {
	case *object.Array:
		return yamlSequence(o, seen)
	case *object.Range:
		return yamlSequence(o.Elements, seen)
	case *object.Hash:
		return yamlMapping(o, seen)
	case *object.ClassInstance:
		return yamlMapping(o.Members, seen)
	case *object.NativeInstance:
		if host, ok := o.Host.(object.Object); ok {
			return valueToYAML(host, seen)
		}
		return yamlMapping(o.Members, seen)
	case *object.Number:
		if o.Value == math.Trunc(o.Value) && math.Abs(o.Value) < 1e15 {
			return yamlScalar(int64(o.Value))
		}
		return yamlScalar(o.Value)
	case *object.String:
		return yamlScalar(o.Value)
	case *object.Boolean:
		return yamlScalar(o.Value)
	}
	return yamlScalar(nil)
}

func yamlScalar(v any) (*yaml.Node, error) {
	node := &yaml.Node{}
	if err := node.Encode(v); err != nil {
		return nil, err
	}
	return node, nil
}

func yamlSequence(arr *object.Array, seen visiting) (*yaml.Node, error) {
	if err := seen.enter(arr); err != nil {
		return nil, err
	}
	defer seen.leave(arr)

	node := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
	for _, el := range arr.Elements {
		item, err := valueToYAML(el, seen)
		if err != nil {
			return nil, err
		}
		node.Content = append(node.Content, item)
	}
	return node, nil
}

func yamlMapping(h *object.Hash, seen visiting) (*yaml.Node, error) {
	if err := seen.enter(h); err != nil {
		return nil, err
	}
	defer seen.leave(h)

	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	keys := make(map[string]bool, len(h.Entries))
	for _, e := range h.Entries {
		if keys[e.Key] {
			continue
		}
		keys[e.Key] = true
		val := e.Var.Get(nil)
		if !jsonEncodable(val) {
			continue
		}
		item, err := valueToYAML(val, seen)
		if err != nil {
			return nil, err
		}
		key := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: e.Key}
		node.Content = append(node.Content, key, item)
	}
	return node, nil
}
