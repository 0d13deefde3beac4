package sttmgen

import (
	"regexp"
	"strings"
)

/*

Predicate handling is a best-effort lexical rewrite, not a SQL parser: the
FilterPredicate cell holds free text, and for VIEW units the bare
field-like tokens in it have to become payload lookups because the view
selects from a raw topic, not from a parsed schema.

The reserved-word list and the token shape are data, not logic, so the set
can grow from configuration without touching the scanner.
*/

// DefaultReservedWords are tokens never rewritten into payload lookups.
var DefaultReservedWords = []string{
	"LIKE", "AND", "OR", "NOT", "IN", "BETWEEN", "IS", "NULL", "EXISTS",
	"ALL", "ANY", "SOME", "TRUE", "FALSE", "CASE", "WHEN", "THEN", "ELSE",
	"END", "ON", "AS", "JOIN", "LEFT", "RIGHT", "FULL", "INNER", "OUTER",
	"GROUP", "BY", "ORDER", "HAVING", "DISTINCT", "ASC", "DESC", "LIMIT",
	"OFFSET",
}

var (
	leadingKeyword = regexp.MustCompile(`(?i)^\s*(WHERE|AND|OR)\b`)
	fieldToken     = regexp.MustCompile(`^[A-Z][A-Z0-9_]*[A-Z0-9]\b`)
)

// reservedSet builds the lookup set from the default list plus any extra
// words from configuration.
func reservedSet(extra []string) map[string]bool {
	set := make(map[string]bool, len(DefaultReservedWords)+len(extra))
	for _, w := range DefaultReservedWords {
		set[w] = true
	}
	for _, w := range extra {
		set[strings.ToUpper(strings.TrimSpace(w))] = true
	}
	return set
}

// sanitizePredicate strips a single leading WHERE/AND/OR keyword and any
// trailing semicolons. It is idempotent and otherwise leaves the text
// alone, internal whitespace included.
func sanitizePredicate(raw string) string {
	s := strings.TrimSpace(raw)
	s = strings.TrimSpace(leadingKeyword.ReplaceAllString(s, ""))
	return strings.TrimRight(s, "; \t")
}

// hasLeadingKeyword reports whether the raw cell text starts with a
// boolean keyword the author should have left off.
func hasLeadingKeyword(raw string) bool {
	return leadingKeyword.MatchString(raw)
}

func rewriteToken(token, payloadCol string, reserved map[string]bool) string {
	if reserved[token] {
		return token
	}
	if digitsOnly.MatchString(token) {
		return token
	}
	// Short bare tokens without underscores are almost always aliases or
	// units, not payload fields.
	if !strings.Contains(token, "_") && len(token) <= 3 {
		return token
	}
	return jsonLookup(payloadCol, token)
}

/*
rewritePredicateAsJSON rewrites bare field-like tokens in a VIEW filter
into JSON_VALUE lookups against the payload column, scanning character by
character and leaving anything inside single- or double-quoted literals
untouched. A predicate that already contains a JSON_VALUE call is returned
unchanged, which keeps the rewrite idempotent.
*/
func rewritePredicateAsJSON(fp, payloadCol string, reserved map[string]bool) string {
	if fp == "" || strings.Contains(strings.ToUpper(fp), "JSON_VALUE") {
		return fp
	}

	var out strings.Builder
	inSingle, inDouble := false, false
	i := 0
	for i < len(fp) {
		ch := fp[i]
		switch {
		case ch == '\'' && !inDouble:
			out.WriteByte(ch)
			inSingle = !inSingle
			i++
			continue
		case ch == '"' && !inSingle:
			out.WriteByte(ch)
			inDouble = !inDouble
			i++
			continue
		case inSingle || inDouble:
			out.WriteByte(ch)
			i++
			continue
		}

		if atWordBoundary(fp, i) {
			if loc := fieldToken.FindString(fp[i:]); loc != "" {
				out.WriteString(rewriteToken(loc, payloadCol, reserved))
				i += len(loc)
				continue
			}
		}
		out.WriteByte(ch)
		i++
	}
	return out.String()
}

// atWordBoundary reports whether position i starts a fresh token, i.e. the
// previous byte is not part of an identifier.
func atWordBoundary(s string, i int) bool {
	if i == 0 {
		return true
	}
	return !isWordByte(s[i-1])
}

func isWordByte(c byte) bool {
	return c == '_' ||
		('0' <= c && c <= '9') ||
		('A' <= c && c <= 'Z') ||
		('a' <= c && c <= 'z')
}
