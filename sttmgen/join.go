package sttmgen

import (
	"fmt"
	"strings"
)

const defaultJoinAlias = "j"

var joinKinds = map[string]bool{
	"INNER": true,
	"LEFT":  true,
	"RIGHT": true,
	"FULL":  true,
}

// joinClause picks at most one join for the unit: the first row in table
// order carrying both a JoinTable and a JoinCondition. The join kind is
// normalized to INNER/LEFT/RIGHT/FULL with LEFT as the default, the alias
// defaults to "j". Returns "" when no row qualifies; extra join
// declarations are ignored here and flagged by the validator.
func joinClause(rows []*MappingRow) string {
	for _, r := range rows {
		if r.JoinTable == "" || r.JoinCondition == "" {
			continue
		}
		kind := strings.ToUpper(strings.TrimSpace(r.JoinType))
		if !joinKinds[kind] {
			kind = "LEFT"
		}
		alias := r.JoinAlias
		if alias == "" {
			alias = defaultJoinAlias
		}
		return fmt.Sprintf("\n  %s JOIN %s %s ON %s", kind, qident(r.JoinTable), alias, r.JoinCondition)
	}
	return ""
}
