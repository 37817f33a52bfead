package pipeline

import "github.com/allisson/enclaved/internal/fieldcrypt"

// encryptAtPath descends node along segments, encrypting every matching
// string leaf, and returns the (possibly replaced) node for the caller to
// write back into its parent container.
//
// At Key(k): if node is a map containing k, descend into node[k];
// otherwise the path does not match this payload and the walk stops
// silently - a schema's PII paths describe the superset of fields a
// payload *may* contain, not a contract every payload must satisfy.
//
// At ArrayItem: if node is a slice, recurse into every element;
// otherwise stop silently.
//
// At the empty segment list: if node is a string, encrypt it and return
// the token's textual form. Any other leaf type (number, bool, nil, or an
// object/array the path simply didn't reach the bottom of) is returned
// unchanged.
func encryptAtPath(node any, segments []segment, key []byte) (any, error) {
	if len(segments) == 0 {
		s, ok := node.(string)
		if !ok {
			return node, nil
		}

		token, err := fieldcrypt.Encrypt(key, []byte(s))
		if err != nil {
			return nil, err
		}
		return token.String(), nil
	}

	head, rest := segments[0], segments[1:]

	switch head.kind {
	case segmentKey:
		obj, ok := node.(map[string]any)
		if !ok {
			return node, nil
		}
		child, present := obj[head.key]
		if !present {
			return node, nil
		}

		replaced, err := encryptAtPath(child, rest, key)
		if err != nil {
			return nil, err
		}
		obj[head.key] = replaced
		return obj, nil

	case segmentArrayItem:
		arr, ok := node.([]any)
		if !ok {
			return node, nil
		}
		for i, elem := range arr {
			replaced, err := encryptAtPath(elem, rest, key)
			if err != nil {
				return nil, err
			}
			arr[i] = replaced
		}
		return arr, nil
	}

	return node, nil
}
