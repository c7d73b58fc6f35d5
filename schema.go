package neutralipc

import (
	"encoding/json"
	"fmt"
)

// Schema is the data tree supplied to a template render, conventionally
// rooted under a "data" key. Values are strings, numbers, booleans, nested
// mappings, or sequences.
type Schema map[string]any

// Merge deep-merges other into s. Keys whose values are both mappings are
// merged recursively; any other conflict is resolved in favor of other.
func (s Schema) Merge(other Schema) {
	deepMerge(s, other)
}

func deepMerge(dst map[string]any, src map[string]any) {
	for key, newVal := range src {
		if newMap, ok := asMap(newVal); ok {
			if oldMap, ok := asMap(dst[key]); ok {
				merged := make(map[string]any, len(oldMap))
				for k, v := range oldMap {
					merged[k] = v
				}
				deepMerge(merged, newMap)
				dst[key] = merged
				continue
			}
		}
		dst[key] = newVal
	}
}

func asMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case Schema:
		return m, true
	}
	return nil, false
}

// Builder assembles a Schema from partial fragments, merged in call order.
// Later fragments win scalar conflicts; nested mappings merge key by key.
type Builder struct {
	schema Schema
	err    error
}

// NewBuilder returns a Builder with an empty schema.
func NewBuilder() *Builder {
	return &Builder{schema: Schema{}}
}

// Merge adds a fragment. Accepted types: Schema, map[string]any, or a JSON
// object as string or []byte. The first failure sticks and is reported by
// Build; later Merge calls become no-ops.
func (b *Builder) Merge(fragment any) *Builder {
	if b.err != nil {
		return b
	}
	frag, err := normalizeFragment(fragment)
	if err != nil {
		b.err = err
		return b
	}
	deepMerge(b.schema, frag)
	return b
}

// Build returns the merged schema, or the first error a fragment produced.
func (b *Builder) Build() (Schema, error) {
	if b.err != nil {
		return nil, b.err
	}
	return b.schema, nil
}

func normalizeFragment(fragment any) (map[string]any, error) {
	switch f := fragment.(type) {
	case nil:
		return map[string]any{}, nil
	case Schema:
		return f, nil
	case map[string]any:
		return f, nil
	case string:
		return unmarshalFragment([]byte(f))
	case []byte:
		return unmarshalFragment(f)
	case json.RawMessage:
		return unmarshalFragment(f)
	default:
		return nil, newSerializationError("bad_fragment",
			fmt.Sprintf("schema fragment must be a mapping or JSON object, got %T", fragment), nil)
	}
}

func unmarshalFragment(raw []byte) (map[string]any, error) {
	var frag map[string]any
	if err := json.Unmarshal(raw, &frag); err != nil {
		return nil, newSerializationError("bad_fragment", "schema fragment is not a JSON object", err)
	}
	return frag, nil
}
