package sttmgen

import (
	"fmt"
	"regexp"
	"strings"
)

const defaultDataType = "STRING"

var castPrefix = regexp.MustCompile(`(?is)^\s*CAST\s*\(`)

func messageFormatIs(r *MappingRow, format string) bool {
	return strings.ToUpper(r.MessageFormat) == format
}

// castUnlessCast wraps expr in a cast to typ unless the author already
// starts it with an explicit CAST.
func castUnlessCast(expr, typ string) string {
	if castPrefix.MatchString(expr) {
		return expr
	}
	return fmt.Sprintf("CAST(%s AS %s)", expr, typ)
}

func jsonLookup(payload, key string) string {
	return fmt.Sprintf("JSON_VALUE(CAST(%s AS STRING), '$.%s')", payload, key)
}

func splitLookup(source, delim string, idx int) string {
	return fmt.Sprintf("SPLIT_INDEX(CAST(%s AS STRING), '%s', %d)", source, delim, idx)
}

/*
chooseExpr decides the SQL expression selected for one output column.

Precedence, same for both stages: ExprOverride, then SourceTransformExpr,
then (views only) an auto-generated extraction from the payload column,
based on MessageFormat:

	JSON  -> JSON_VALUE against the payload, key from SourceField or
	         FieldSelector
	CSV   -> SPLIT_INDEX against SourceField (or, absent that, the payload
	         column), index from a numeric FieldSelector or the per-unit
	         allocator
	other -> SourceField as-is, or the payload column

View expressions are normalized with TRIM (non-string targets also map the
empty string to NULL) and cast to the target type. XREF/FGAC rows never
get an implicit cast: with no override or transform the SourceField is
used verbatim, then the bare TargetColumn, then NULL.

Missing inputs never fail here; the validator reports them and generation
still emits something readable.
*/
func chooseExpr(r *MappingRow, isView bool, payloadCol, csvDelim string, autoIdx map[string]int) string {
	targetType := r.TargetDataType
	if targetType == "" {
		targetType = defaultDataType
	}

	if isView {
		if r.ExprOverride != "" {
			return castUnlessCast(r.ExprOverride, targetType)
		}
		if r.SourceTransformExpr != "" {
			return castUnlessCast(r.SourceTransformExpr, targetType)
		}

		var base string
		switch {
		case messageFormatIs(r, "JSON"):
			key := r.SourceField
			if key == "" {
				key = r.FieldSelector
			}
			base = jsonLookup(payloadCol, key)
		case messageFormatIs(r, "CSV"):
			source := r.SourceField
			if source == "" {
				source = payloadCol
			}
			idx, explicit := csvIndex(r.FieldSelector)
			if !explicit {
				idx = autoIdx[r.TargetColumn]
			}
			base = splitLookup(source, csvDelim, idx)
		default:
			base = r.SourceField
			if base == "" {
				base = payloadCol
			}
		}

		norm := fmt.Sprintf("TRIM(%s)", base)
		if !strings.HasPrefix(strings.ToUpper(targetType), "STRING") {
			norm = fmt.Sprintf("NULLIF(TRIM(%s), '')", base)
		}
		return fmt.Sprintf("CAST(%s AS %s)", norm, targetType)
	}

	if r.ExprOverride != "" {
		return r.ExprOverride
	}
	if r.SourceTransformExpr != "" {
		return r.SourceTransformExpr
	}
	if r.SourceField != "" {
		return r.SourceField
	}
	if r.TargetColumn != "" {
		return r.TargetColumn
	}
	return "NULL"
}
