package attr

// ConstraintsKey is the record key constrained fields are grouped under, per
// API convention.
const ConstraintsKey = "constraints"

// Apply moves each named field present in rec into a nested map under
// ConstraintsKey, leaving the rest of the record untouched. Absent fields
// are skipped silently. The record always ends up with a constraints key,
// even when none of the fields were present. Mutation is in place; the
// record is returned for chaining.
func Apply(rec map[string]any, fields []string) map[string]any {
	constraints := make(map[string]any)
	for _, f := range fields {
		if v, ok := rec[f]; ok {
			constraints[f] = v
			delete(rec, f)
		}
	}
	rec[ConstraintsKey] = constraints
	return rec
}

// ApplyAll applies Apply to every record in order.
func ApplyAll(recs []map[string]any, fields []string) []map[string]any {
	for _, rec := range recs {
		Apply(rec, fields)
	}
	return recs
}
