package query

import (
	"strings"

	"github.com/ledgerq/ledgerq/ledgerq/errors"
)

// ParseQueries lexes and parses a batch of query strings into one flat
// filter list. Each string is trimmed first. The batch is fail-fast: the
// first malformed string aborts the whole call, with the error annotated
// with the offending raw input.
func ParseQueries(queries []string) ([]FilterNode, error) {
	var filters []FilterNode
	for _, raw := range queries {
		trimmed := strings.TrimSpace(raw)
		parsed, err := Parse(trimmed)
		if err != nil {
			return nil, errors.WithQuery(err, trimmed)
		}
		filters = append(filters, parsed...)
	}
	return filters, nil
}

// FieldsFromQueries reports the set of fields referenced by a query batch,
// without optimization or default-field resolution: FieldDefault stays as
// is, so callers can decide which optional joins a batch actually needs.
func FieldsFromQueries(queries []string) (map[Field]bool, error) {
	filters, err := ParseQueries(queries)
	if err != nil {
		return nil, err
	}
	fields := make(map[Field]bool, len(filters))
	for _, f := range filters {
		fields[f.Field] = true
	}
	return fields, nil
}
