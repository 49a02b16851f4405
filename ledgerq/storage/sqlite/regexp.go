package sqlite

import (
	"database/sql/driver"
	"fmt"
	"regexp"

	"modernc.org/sqlite"
)

// matchPattern backs the REGEXP operator for both drivers. Matching is
// always case-insensitive, mirroring the postgres ~* operator.
func matchPattern(pattern, s string) (bool, error) {
	re, err := regexp.Compile("(?i)" + pattern)
	if err != nil {
		return false, fmt.Errorf("invalid regex pattern %q: %w", pattern, err)
	}
	return re.MatchString(s), nil
}

func init() {
	// SQLite rewrites `X REGEXP Y` as regexp(Y, X): pattern first.
	sqlite.MustRegisterDeterministicScalarFunction("regexp", 2,
		func(ctx *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
			pattern, ok := args[0].(string)
			if !ok {
				return nil, fmt.Errorf("regexp: pattern must be text, got %T", args[0])
			}
			s, ok := args[1].(string)
			if !ok {
				// Non-text column values never match.
				return int64(0), nil
			}
			matched, err := matchPattern(pattern, s)
			if err != nil {
				return nil, err
			}
			if matched {
				return int64(1), nil
			}
			return int64(0), nil
		})
}
