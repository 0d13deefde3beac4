package sttmgen

import (
	"regexp"
	"strconv"
)

var digitsOnly = regexp.MustCompile(`^\d+$`)

/*

csvIndexAllocator assigns positional indices for CSV-extracted columns
that do not spell one out in FieldSelector.

The rules, over the unit's rows in table order:

  - an explicit numeric FieldSelector reserves that index up front;
  - every other CSV row gets the smallest free index at or after a cursor
    that advances monotonically through the unit, so an auto-assigned
    index can never collide with an explicit one and no two rows share an
    index;
  - the cursor jumps past an explicit index once the scan reaches it, so a
    row placed before an explicit "2" still gets 0, it does not wait
    behind the reservation.

The allocator is created fresh for each unit inside one generation run and
is never shared; all state is in the struct.
*/
type csvIndexAllocator struct {
	reserved map[int]bool
	cursor   int
}

// csvAutoRow reports whether this row participates in automatic CSV index
// assignment: CSV format with no override or transform taking precedence.
func csvAutoRow(r *MappingRow) bool {
	if !messageFormatIs(r, "CSV") {
		return false
	}
	return r.ExprOverride == "" && r.SourceTransformExpr == ""
}

// allocateCSVIndexes computes TargetColumn -> index for every CSV row of
// the unit without an explicit numeric selector.
func allocateCSVIndexes(rows []*MappingRow) map[string]int {
	a := &csvIndexAllocator{reserved: make(map[int]bool)}

	for _, r := range rows {
		if !csvAutoRow(r) {
			continue
		}
		if idx, ok := csvIndex(r.FieldSelector); ok {
			a.reserved[idx] = true
		}
	}

	assigned := make(map[string]int)
	for _, r := range rows {
		if !csvAutoRow(r) {
			continue
		}
		if idx, ok := csvIndex(r.FieldSelector); ok {
			if idx+1 > a.cursor {
				a.cursor = idx + 1
			}
			continue
		}
		idx := a.nextFree()
		assigned[r.TargetColumn] = idx
		a.reserved[idx] = true
		a.cursor = idx + 1
	}
	return assigned
}

func (a *csvIndexAllocator) nextFree() int {
	i := a.cursor
	for a.reserved[i] {
		i++
	}
	return i
}

// csvIndex parses an explicit positional FieldSelector. The digits-only
// shape alone is not enough: a value that overflows int must not count as
// explicit, it falls back to auto-assignment like any other selector.
func csvIndex(s string) (int, bool) {
	if !digitsOnly.MatchString(s) {
		return 0, false
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}
