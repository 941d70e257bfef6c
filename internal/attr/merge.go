package attr

// Action selects how a parsed set of assignments combines with the
// attributes already on an object during an update.
type Action int

const (
	// ActionAdd adds new keys and overwrites existing ones. This is the
	// default update behavior.
	ActionAdd Action = iota
	// ActionDelete removes the named keys; assignment values are ignored.
	ActionDelete
	// ActionReplace discards the existing attributes entirely.
	ActionReplace
)

// Merge applies updates to existing under the given action and returns the
// result as a fresh map. Neither input is modified.
func Merge(existing, updates Map, action Action) Map {
	merged := make(Map)
	switch action {
	case ActionDelete:
		for k, v := range existing {
			merged[k] = v
		}
		for k := range updates {
			delete(merged, k)
		}
	case ActionReplace:
		for k, v := range updates {
			merged[k] = v
		}
	default:
		for k, v := range existing {
			merged[k] = v
		}
		for k, v := range updates {
			merged[k] = v
		}
	}
	return merged
}

// Coerce converts a decoded attributes field back into a Map. JSON decoding
// hands attributes over as map[string]any; anything unrecognized yields an
// empty Map.
func Coerce(v any) Map {
	m := make(Map)
	switch t := v.(type) {
	case Map:
		for k, val := range t {
			m[k] = val
		}
	case map[string]string:
		for k, val := range t {
			m[k] = val
		}
	case map[string]any:
		for k, val := range t {
			m[k] = Stringify(val)
		}
	}
	return m
}
