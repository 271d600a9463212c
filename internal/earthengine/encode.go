package earthengine

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
)

// Expression is the serialized form of a graph as accepted by the platform.
type Expression struct {
	Result string                    `json:"result"`
	Values map[string]map[string]any `json:"values"`
}

type encoder struct {
	values map[string]map[string]any
	seen   map[string]string
}

// Encode flattens the graph rooted at v. Invocations are emitted once and
// referenced by id; ids are assigned children first so equal graphs always
// produce equal expressions.
func Encode(v Valuer) (*Expression, error) {
	if v == nil || v.Node() == nil {
		return nil, fmt.Errorf("encode: nil expression")
	}
	e := &encoder{values: map[string]map[string]any{}, seen: map[string]string{}}
	root, err := e.reference(v.Node())
	if err != nil {
		return nil, err
	}
	return &Expression{Result: root, Values: e.values}, nil
}

// Digest returns a stable hex key for the expression rooted at v.
func Digest(v Valuer) (string, error) {
	expr, err := Encode(v)
	if err != nil {
		return "", err
	}
	raw, err := json.Marshal(expr)
	if err != nil {
		return "", fmt.Errorf("digest: %w", err)
	}
	sum := sha1.Sum(raw)
	return hex.EncodeToString(sum[:]), nil
}

// reference stores n in the value table and returns its id.
func (e *encoder) reference(n *Node) (string, error) {
	value, err := e.value(n)
	if err != nil {
		return "", err
	}
	if ref, ok := value["valueReference"].(string); ok {
		return ref, nil
	}
	return e.store(value)
}

func (e *encoder) store(value map[string]any) (string, error) {
	raw, err := json.Marshal(value)
	if err != nil {
		return "", fmt.Errorf("encode value: %w", err)
	}
	if id, ok := e.seen[string(raw)]; ok {
		return id, nil
	}
	id := strconv.Itoa(len(e.values))
	e.seen[string(raw)] = id
	e.values[id] = value
	return id, nil
}

func (e *encoder) value(n *Node) (map[string]any, error) {
	if n == nil {
		return map[string]any{"constantValue": nil}, nil
	}
	switch n.Kind {
	case KindConstant:
		return map[string]any{"constantValue": n.Constant}, nil
	case KindArgument:
		if n.Name == "" {
			return nil, fmt.Errorf("encode: unbound argument reference")
		}
		return map[string]any{"argumentReference": n.Name}, nil
	case KindArray:
		items := make([]any, 0, len(n.Items))
		for _, item := range n.Items {
			v, err := e.value(item)
			if err != nil {
				return nil, err
			}
			items = append(items, v)
		}
		return map[string]any{"arrayValue": map[string]any{"values": items}}, nil
	case KindDictionary:
		entries := map[string]any{}
		for _, key := range sortedKeys(n.Entries) {
			v, err := e.value(n.Entries[key])
			if err != nil {
				return nil, err
			}
			entries[key] = v
		}
		return map[string]any{"dictionaryValue": map[string]any{"values": entries}}, nil
	case KindFunction:
		body, err := e.reference(n.Body)
		if err != nil {
			return nil, err
		}
		return map[string]any{"functionDefinitionValue": map[string]any{
			"argumentNames": n.Params,
			"body":          body,
		}}, nil
	case KindInvocation:
		args := map[string]any{}
		for _, key := range sortedKeys(n.Args) {
			v, err := e.value(n.Args[key])
			if err != nil {
				return nil, fmt.Errorf("%s(%s): %w", n.Function, key, err)
			}
			args[key] = v
		}
		id, err := e.store(map[string]any{"functionInvocationValue": map[string]any{
			"functionName": n.Function,
			"arguments":    args,
		}})
		if err != nil {
			return nil, err
		}
		return map[string]any{"valueReference": id}, nil
	}
	return nil, fmt.Errorf("encode: unknown node kind %d", n.Kind)
}

func sortedKeys(m map[string]*Node) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
