// internal/sanitize/sanitize.go
package sanitize

// Record is an outbound document record. Field-level filtering works on the
// map shape the store hands back.
type Record = map[string]any

// Sanitize returns a shallow copy of rec with every sensitive field removed
// and, for non-admin callers, every admin-only field removed as well. The
// input is never mutated; absent fields are no-ops.
func Sanitize(rec Record, sensitive, adminOnly []string, isAdmin bool) Record {
	if rec == nil {
		return nil
	}
	out := make(Record, len(rec))
	for k, v := range rec {
		out[k] = v
	}
	for _, f := range sensitive {
		delete(out, f)
	}
	if !isAdmin {
		for _, f := range adminOnly {
			delete(out, f)
		}
	}
	return out
}

// SanitizeList applies Sanitize to every record.
func SanitizeList(recs []Record, sensitive, adminOnly []string, isAdmin bool) []Record {
	out := make([]Record, 0, len(recs))
	for _, r := range recs {
		out = append(out, Sanitize(r, sensitive, adminOnly, isAdmin))
	}
	return out
}
