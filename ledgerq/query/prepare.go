package query

// combinedTarget maps mergeable operators to the list operator their
// bucket collapses into.
var combinedTarget = map[Operator]Operator{
	OpIn:        OpIn,
	OpNotIn:     OpNotIn,
	OpEquals:    OpIn,
	OpNotEquals: OpNotIn,
}

// PrepareFilters optimizes a flat filter list for compilation. Filters are
// grouped by field with FieldDefault resolved to defaultField, then within
// each group equality filters merge into one IN and inequality filters into
// one NOT_IN, values kept in original order. Grouping and merging both
// preserve first-occurrence order; merged filters follow untouched ones
// within their group.
func PrepareFilters(filters []FilterNode, defaultField Field) []FilterNode {
	fieldOrder, grouped := groupFilters(filters, defaultField)

	var combined []FilterNode
	for _, field := range fieldOrder {
		combined = append(combined, combineFilters(field, grouped[field])...)
	}
	return combined
}

func groupFilters(filters []FilterNode, defaultField Field) ([]Field, map[Field][]FilterNode) {
	var order []Field
	grouped := make(map[Field][]FilterNode)

	for _, f := range filters {
		if f.Field == FieldDefault {
			f.Field = defaultField
		}
		if _, seen := grouped[f.Field]; !seen {
			order = append(order, f.Field)
		}
		grouped[f.Field] = append(grouped[f.Field], f)
	}
	return order, grouped
}

func combineFilters(field Field, filters []FilterNode) []FilterNode {
	var opOrder []Operator
	buckets := make(map[Operator][]FilterNode)
	var others []FilterNode

	for _, f := range filters {
		target, ok := combinedTarget[f.Operator]
		if !ok {
			others = append(others, f)
			continue
		}
		if _, seen := buckets[target]; !seen {
			opOrder = append(opOrder, target)
		}
		buckets[target] = append(buckets[target], f)
	}

	results := others
	for _, op := range opOrder {
		var values []Value
		for _, f := range buckets[op] {
			values = appendValues(values, f.Value)
		}
		results = append(results, FilterNode{
			Field:    field,
			Operator: op,
			Value:    listValue(values),
		})
	}
	return results
}

// appendValues flattens a scalar or list value onto the accumulator.
func appendValues(acc []Value, v Value) []Value {
	switch t := v.(type) {
	case Strings:
		for _, s := range t {
			acc = append(acc, String(s))
		}
	case Numbers:
		for _, n := range t {
			acc = append(acc, Number{n})
		}
	case Dates:
		for _, d := range t {
			acc = append(acc, Date{d})
		}
	default:
		acc = append(acc, v)
	}
	return acc
}

// listValue packs homogeneous scalars back into the matching list type.
// The grammar guarantees one value type per field, so the first element
// decides.
func listValue(values []Value) Value {
	if len(values) == 0 {
		return Strings(nil)
	}
	switch values[0].(type) {
	case Number:
		out := make(Numbers, 0, len(values))
		for _, v := range values {
			if n, ok := v.(Number); ok {
				out = append(out, n.Decimal)
			}
		}
		return out
	case Date:
		out := make(Dates, 0, len(values))
		for _, v := range values {
			if d, ok := v.(Date); ok {
				out = append(out, d.Time)
			}
		}
		return out
	default:
		out := make(Strings, 0, len(values))
		for _, v := range values {
			if s, ok := v.(String); ok {
				out = append(out, string(s))
			}
		}
		return out
	}
}
