package ir

// Set algebra over relations, keyed by one field. All operations keep the
// left operand's header and the relative order of its surviving rows.

// Intersect returns the rows of left whose key also occurs in right.
// The key field is looked up in each relation's own header, so right may be
// a single-column key relation.
func Intersect(left, right Relation, field string) (Relation, error) {
	keys, err := right.KeySet(field)
	if err != nil {
		return Relation{}, err
	}
	return keepByKey(left, field, func(t Term) bool {
		_, ok := keys[t]
		return ok
	})
}

// Difference returns the rows of left whose key does not occur in right.
func Difference(left, right Relation, field string) (Relation, error) {
	keys, err := right.KeySet(field)
	if err != nil {
		return Relation{}, err
	}
	return keepByKey(left, field, func(t Term) bool {
		_, ok := keys[t]
		return !ok
	})
}

// Union returns left followed by the rows of right whose key is not already
// present. Duplicate keys within left are collapsed to their first row.
// The relations must be schema compatible; right is reordered to left's
// header.
func Union(left, right Relation, field string) (Relation, error) {
	if !left.SchemaCompatible(right) {
		return Relation{}, NewPlanningError(ErrCodeMalformedRelation,
			"union of incompatible relations %v and %v", left.header, right.header)
	}
	i, ok := left.Index(field)
	if !ok {
		return Relation{}, missingField(left, field)
	}
	aligned, err := right.Project(left.header)
	if err != nil {
		return Relation{}, err
	}
	seen := make(map[Term]struct{}, left.Len()+aligned.Len())
	out := Relation{header: left.header, index: left.index}
	for _, rel := range []Relation{left, aligned} {
		for _, row := range rel.rows {
			if _, dup := seen[row[i]]; dup {
				continue
			}
			seen[row[i]] = struct{}{}
			out.rows = append(out.rows, row)
		}
	}
	return out, nil
}

// Distinct collapses rows with a repeated key to the first occurrence.
func Distinct(r Relation, field string) (Relation, error) {
	seen := make(map[Term]struct{}, r.Len())
	return keepByKey(r, field, func(t Term) bool {
		if _, dup := seen[t]; dup {
			return false
		}
		seen[t] = struct{}{}
		return true
	})
}

func keepByKey(r Relation, field string, keep func(Term) bool) (Relation, error) {
	i, ok := r.Index(field)
	if !ok {
		return Relation{}, missingField(r, field)
	}
	return r.Filter(func(row Tuple) bool { return keep(row[i]) }), nil
}
