//go:build property
// +build property

package neutralipc

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// TestSchemaMergeProperties checks the merge contract over generated
// fragments: nested mappings merge recursively, non-mapping conflicts
// resolve to the later value, and merging preserves the key union.
func TestSchemaMergeProperties(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("later scalar wins", prop.ForAll(
		func(key, oldVal, newVal string) bool {
			s := Schema{key: oldVal}
			s.Merge(Schema{key: newVal})
			return s[key] == newVal
		},
		gen.Identifier(), gen.AnyString(), gen.AnyString(),
	))

	properties.Property("nested mappings merge recursively", prop.ForAll(
		func(outer, keyA, keyB string, valA, valB int) bool {
			if keyA == keyB {
				return true // distinct sub-keys only
			}
			s := Schema{outer: map[string]any{keyA: valA}}
			s.Merge(Schema{outer: map[string]any{keyB: valB}})
			inner, ok := s[outer].(map[string]any)
			return ok && inner[keyA] == valA && inner[keyB] == valB
		},
		gen.Identifier(), gen.Identifier(), gen.Identifier(), gen.Int(), gen.Int(),
	))

	properties.Property("merging an empty fragment is identity", prop.ForAll(
		func(keys []string, values []int) bool {
			s := Schema{}
			for i, k := range keys {
				if i < len(values) {
					s[k] = values[i]
				}
			}
			before := len(s)
			s.Merge(Schema{})
			if len(s) != before {
				return false
			}
			for i, k := range keys {
				if i < len(values) && s[k] != values[i] {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.Identifier()), gen.SliceOf(gen.Int()),
	))

	properties.Property("merge result holds the key union", prop.ForAll(
		func(keysA, keysB []string) bool {
			a := Schema{}
			for _, k := range keysA {
				a[k] = "a"
			}
			b := Schema{}
			for _, k := range keysB {
				b[k] = "b"
			}
			a.Merge(b)
			for _, k := range keysA {
				if _, ok := a[k]; !ok {
					return false
				}
			}
			for _, k := range keysB {
				if a[k] != "b" {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.Identifier()), gen.SliceOf(gen.Identifier()),
	))

	properties.TestingRun(t)
}
