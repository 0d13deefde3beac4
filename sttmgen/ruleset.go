package sttmgen

import "fmt"

/*

A RuleSet names one generation behavior. Historically the generator lived
as a family of near-identical scripts, each tweaking naming and where the
per-table storage options came from; the rule set collapses those into one
implementation with an explicit switch.

  - matrix (canonical): per-table options come from the Config_TableMatrix
    grid, emitted names are the TargetTable values untouched, and
    cross-reference tables must resolve an upsert changelog mode.
  - legacy: per-table options come from a flat key/value config sheet, and
    emitted names get the configured view/table prefix and suffix.
*/
type RuleSet struct {
	Version string

	// UseMatrix selects the Config_TableMatrix grid as the source of
	// per-table storage options and enables the matrix cross-checks.
	UseMatrix bool

	// ApplyAffixes prepends/appends the configured name affixes to
	// emitted view and table names.
	ApplyAffixes bool
}

var (
	RulesMatrix = RuleSet{Version: "matrix", UseMatrix: true}
	RulesLegacy = RuleSet{Version: "legacy", ApplyAffixes: true}
)

// RuleSetByName resolves a rule-set name from configuration or the CLI.
func RuleSetByName(name string) (RuleSet, error) {
	switch name {
	case "", "matrix":
		return RulesMatrix, nil
	case "legacy":
		return RulesLegacy, nil
	}
	return RuleSet{}, fmt.Errorf("unknown rule set %q (want matrix or legacy)", name)
}

// emittedName applies the rule set's naming to a logical table name.
func (rs RuleSet) emittedName(logical string, isView bool, opts Options) string {
	if !rs.ApplyAffixes {
		return logical
	}
	if isView {
		return opts.ViewPrefix + logical + opts.ViewSuffix
	}
	return opts.TablePrefix + logical + opts.TableSuffix
}
