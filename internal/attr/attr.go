// Package attr parses free-form key/value attribute assignments attached to
// inventory resources, distinct from a resource's fixed schema fields.
package attr

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dmar42/nsot/internal/errs"
)

// Pair is a single accepted attribute assignment.
type Pair struct {
	Key   string
	Value string
}

// ParseLog accumulates every accepted attribute assignment across one
// command invocation, in the order the assignments were processed. It is
// owned by the invocation context and threaded explicitly into each parse.
type ParseLog struct {
	pairs []Pair
}

// Append records an accepted assignment. A nil log is a no-op receiver so
// callers without an invocation context can pass nil.
func (l *ParseLog) Append(key, value string) {
	if l == nil {
		return
	}
	l.pairs = append(l.pairs, Pair{Key: key, Value: value})
}

// Pairs returns the accumulated assignments in processed order.
func (l *ParseLog) Pairs() []Pair {
	if l == nil {
		return nil
	}
	return l.pairs
}

// Len returns the number of accumulated assignments.
func (l *ParseLog) Len() int {
	if l == nil {
		return 0
	}
	return len(l.pairs)
}

// Map holds parsed attributes, one value per key. Keys are never empty.
type Map map[string]string

// Parse turns raw attribute arguments into a Map. Each element of rawValues
// may itself contain multiple comma-separated key=value pairs; all pairs are
// flattened into one working set before parsing. Identical tokens collapse
// to one, keeping their first position; distinct tokens sharing a key
// overwrite in argument order, so the last write wins deterministically.
//
// Each pair splits on the first '='. A pair missing the separator, or with
// an empty key, fails with a ValidationError naming the offending token. Every accepted pair is
// appended to log and stored in the result.
func Parse(rawValues []string, log *ParseLog) (Map, error) {
	var tokens []string
	seen := make(map[string]struct{})
	for _, raw := range rawValues {
		for _, tok := range strings.Split(raw, ",") {
			if _, ok := seen[tok]; ok {
				continue
			}
			seen[tok] = struct{}{}
			tokens = append(tokens, tok)
		}
	}

	attrs := make(Map)
	for _, tok := range tokens {
		key, val, found := strings.Cut(tok, "=")
		if !found || key == "" {
			return nil, errs.Validationf(tok, "invalid attribute: %s; format should be key=value", tok)
		}
		log.Append(key, val)
		attrs[key] = val
	}
	return attrs, nil
}

// Stringify renders a raw flag value in the string form attributes store.
// Integer values become their decimal representation; everything else goes
// through the default formatting.
func Stringify(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	default:
		return fmt.Sprint(t)
	}
}
