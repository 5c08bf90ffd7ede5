package topology

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrTokenInKey is returned when a substitution token appears in an object
// key. The engine only substitutes values; such objects must be declared
// through JSONValue instead.
var ErrTokenInKey = errors.New("substitution token in object key")

// HasTokens reports whether s contains a ${ID} or ${ID.Attr} token.
func HasTokens(s string) bool {
	return tokenRegex.MatchString(s)
}

// JSONValue returns a resource that resolves v at apply time and exposes the
// result as its Value attribute. Tokens anywhere in v, keys included, become
// references inside a Fn::Join over the encoded document.
func JSONValue(id string, v any) (Resource, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return Resource{}, fmt.Errorf("failed to encode %s: %w", id, err)
	}
	return Resource{
		ID:         id,
		Kind:       KindJSON,
		Properties: map[string]any{"Value": splitTokens(string(data))},
	}, nil
}

// splitTokens turns s into a join of its literal text and the references its
// tokens stand for.
func splitTokens(s string) Join {
	parts := []any{}
	last := 0
	for _, m := range tokenRegex.FindAllStringSubmatchIndex(s, -1) {
		if m[0] > last {
			parts = append(parts, s[last:m[0]])
		}
		id := s[m[2]:m[3]]
		if m[4] >= 0 {
			parts = append(parts, GetAtt(id, s[m[4]:m[5]]))
		} else {
			parts = append(parts, RefTo(id))
		}
		last = m[1]
	}
	if last < len(s) {
		parts = append(parts, s[last:])
	}
	return Join{Delimiter: "", Parts: parts}
}

// substitute returns the generic form of v with every token-bearing string
// wrapped in Fn::Sub. Strings already inside a Fn::Sub are left alone.
func substitute(v any) (any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode value: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var generic any
	if err := dec.Decode(&generic); err != nil {
		return nil, fmt.Errorf("failed to decode value: %w", err)
	}
	return substituteNode(generic)
}

func substituteNode(node any) (any, error) {
	switch n := node.(type) {
	case map[string]any:
		if _, ok := n["Fn::Sub"]; ok && len(n) == 1 {
			return n, nil
		}
		for k, child := range n {
			if HasTokens(k) {
				return nil, fmt.Errorf("%w: %q", ErrTokenInKey, k)
			}
			resolved, err := substituteNode(child)
			if err != nil {
				return nil, err
			}
			n[k] = resolved
		}
		return n, nil
	case []any:
		for i, child := range n {
			resolved, err := substituteNode(child)
			if err != nil {
				return nil, err
			}
			n[i] = resolved
		}
		return n, nil
	case string:
		if HasTokens(n) {
			return map[string]any{"Fn::Sub": n}, nil
		}
	}
	return node, nil
}
