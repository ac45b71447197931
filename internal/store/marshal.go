package store

import (
	"fmt"

	"github.com/roach88/vcube/internal/ir"
)

// marshalRow converts a tuple to its column values: the N-Triples encoding
// of each term, in header order.
func marshalRow(row ir.Tuple) ([]any, error) {
	out := make([]any, len(row))
	for i, t := range row {
		if t.IsZero() {
			return nil, fmt.Errorf("marshal row: column %d has no term", i+1)
		}
		out[i] = t.String()
	}
	return out, nil
}

// unmarshalRow parses scanned column values back into a tuple.
func unmarshalRow(k ir.Kind, cols []string) (ir.Tuple, error) {
	header := k.Header()
	row := make(ir.Tuple, len(cols))
	for i, s := range cols {
		t, err := ir.ParseTerm(s)
		if err != nil {
			return nil, fmt.Errorf("unmarshal %s.%s: %w", k, header[i], err)
		}
		row[i] = t
	}
	return row, nil
}
